// Package verify confirms that a destination tree mirrors a source Index
// before any destructive (delete) operation runs, per spec.md §4.8.
package verify

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/backupsync/backupsync/internal/digest"
	"github.com/backupsync/backupsync/internal/index"
)

// Mismatch records one source file that the destination fails to mirror.
type Mismatch struct {
	Path   string
	Reason string
}

// Verify checks, for every record in src, that dstRoot contains a file at
// the same relative path with matching size and recomputed digest. Size
// is checked first as a cheap pre-filter; the digest is the authoritative
// check. Progress, if set, is invoked once per file checked.
func Verify(fsys afero.Fs, src *index.Index, dstRoot string, progress func(current, total int, relPath string)) (bool, []Mismatch) {
	var mismatches []Mismatch

	total := src.Len()

	for i, rec := range src.All() {
		if progress != nil {
			progress(i+1, total, rec.RelativePath)
		}

		dstPath := filepath.Join(dstRoot, filepath.FromSlash(rec.RelativePath))

		info, err := fsys.Stat(dstPath)
		if err != nil {
			mismatches = append(mismatches, Mismatch{Path: rec.RelativePath, Reason: "File missing in destination"})

			continue
		}

		if info.Size() != rec.Size {
			mismatches = append(mismatches, Mismatch{
				Path:   rec.RelativePath,
				Reason: fmt.Sprintf("Size mismatch: source=%d, dest=%d", rec.Size, info.Size()),
			})

			continue
		}

		f, err := fsys.Open(dstPath)
		if err != nil {
			mismatches = append(mismatches, Mismatch{
				Path:   rec.RelativePath,
				Reason: fmt.Sprintf("Error reading destination: %v", err),
			})

			continue
		}

		sum, err := digest.Of(f)
		f.Close()

		if err != nil {
			mismatches = append(mismatches, Mismatch{
				Path:   rec.RelativePath,
				Reason: fmt.Sprintf("Error reading destination: %v", err),
			})

			continue
		}

		if sum != rec.Digest {
			mismatches = append(mismatches, Mismatch{
				Path:   rec.RelativePath,
				Reason: fmt.Sprintf("Digest mismatch: source=%s, dest=%s", rec.Digest, sum),
			})
		}
	}

	return len(mismatches) == 0, mismatches
}
