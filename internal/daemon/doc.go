// Package daemon owns the tidyd process lifecycle: the single-instance lock,
// startup reconciliation, and the wiring between the notification watcher and
// the workflow manager.
package daemon
