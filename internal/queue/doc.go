// Package queue persists validated file events in SQLite and tracks each
// item through the organize pipeline.
//
// Items are enqueued by the notification watcher and the startup
// reconciliation walk, claimed by the workflow manager, and finish as
// completed (moved, duplicate-removed, or vanished) or failed. The database
// doubles as the inspection surface for the CLI, so a failed item's error
// message and a completed item's final path are first-class columns.
package queue
