package index

// Index is a dual-keyed, read-only-after-construction collection of
// FileRecords for a single tree. Every record in byPath also appears in
// exactly one sequence in byDigest; duplicates in byDigest are expected
// and are the basis of move detection.
//
// The records slice and both maps hold the same *FileRecord pointers
// rather than each owning independent copies, so the two lookup
// structures always agree on a record's contents.
type Index struct {
	records  []*FileRecord
	byPath   map[string]*FileRecord
	byDigest map[string][]*FileRecord
}

// New returns an empty Index ready for population via Add.
func New() *Index {
	return &Index{
		byPath:   make(map[string]*FileRecord),
		byDigest: make(map[string][]*FileRecord),
	}
}

// Add inserts rec into both lookup structures. The caller owns rec and
// must not mutate it afterwards.
func (idx *Index) Add(rec *FileRecord) {
	idx.records = append(idx.records, rec)
	idx.byPath[rec.RelativePath] = rec
	idx.byDigest[rec.Digest] = append(idx.byDigest[rec.Digest], rec)
}

// ByPath returns the record at relativePath, or nil if none exists.
func (idx *Index) ByPath(relativePath string) *FileRecord {
	return idx.byPath[relativePath]
}

// ByDigest returns every record sharing digest, in insertion order. The
// returned slice is owned by the Index and must not be mutated.
func (idx *Index) ByDigest(digest string) []*FileRecord {
	return idx.byDigest[digest]
}

// All returns every record in the Index, in insertion order.
func (idx *Index) All() []*FileRecord {
	return idx.records
}

// Len reports the number of records in the Index.
func (idx *Index) Len() int {
	return len(idx.records)
}
