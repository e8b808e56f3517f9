// Package archive migrates stale files into per-directory compressed bundles.
//
// Every directory under a watched root (the root included) owns at most one
// archive.zip. The zip format cannot be appended in place, so adding entries
// rewrites the bundle: existing entries are copied raw into a temp file, new
// entries are streamed in while hashed, the temp bundle is re-read to verify
// every new entry's digest, and only then is it renamed over archive.zip and
// the source files removed. A file is never deleted before its content is
// verified recoverable from the bundle.
package archive
