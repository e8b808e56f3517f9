// Package workflow drives queue items through the organize pipeline.
//
// The Manager polls the queue for pending file events, applies the live-event
// settle delay, and hands each item to the organizer, persisting the outcome
// (moved, duplicate, vanished, or a recoverable failure). It also owns the
// periodic archival sweep and the startup reconciliation walk that brings
// files which arrived while the daemon was stopped into the same organized
// state as live arrivals.
//
// One consumer goroutine processes items sequentially; per-directory ordering
// beyond that is enforced by the pathlock table shared between the organizer
// and the sweeper.
package workflow
