// Package watch turns raw filesystem notifications into validated queue
// events.
//
// The fsnotify adapter delivers create events for the watched roots; the
// Filter discards noise (transient download names, dotfiles, archive
// bundles, directories, paths outside a root, paths that no longer exist)
// before anything reaches the queue. A notification that fails validation is
// a no-op, never an error.
package watch
