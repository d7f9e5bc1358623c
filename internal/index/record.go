package index

import "time"

// FileRecord is the unit of indexing: one entry per accepted file. Once
// constructed by the indexer, a FileRecord is never mutated; it is
// discarded along with the enclosing Index.
type FileRecord struct {
	// RelativePath is the file's path relative to the index root, always
	// using forward-slash separators regardless of host OS.
	RelativePath string

	// Digest is the fixed-width hex content fingerprint (see
	// internal/digest).
	Digest string

	// MTime is the file's last-modified timestamp, seconds with
	// fractional precision preserved.
	MTime time.Time

	// Size is the file size in bytes.
	Size int64
}
