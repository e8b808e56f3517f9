// Package organizer decides what happens to a single observed file: it
// classifies the file by extension, resolves content duplicates against the
// target category folder, and relocates unique files.
//
// Processing one file is independent of every other file. All folder-level
// work (listing for duplicates, creating the folder, moving in) happens under
// the destination directory's pathlock so concurrent processing and archival
// sweeps never interleave on the same folder.
package organizer
