package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/backupsync/backupsync/internal/digest"
	"github.com/backupsync/backupsync/internal/hydrate"
)

// Skipped records one file or directory that the indexer did not add to
// the Index, with a human-readable reason (filter rejection or I/O
// failure).
type Skipped struct {
	Path     string
	Filename string
	SizeMB   float64
	Reason   string
}

// BuildOptions configures a single indexing run.
type BuildOptions struct {
	Filter FilterConfig

	// Cache supplies prior digests; a file whose cached (size, mtime) still
	// matches the on-disk file reuses the cached digest instead of
	// rehashing. Nil means "no cache".
	Cache *Cache

	// Hydrator is consulted immediately before a file's size/mtime are
	// read during the walk, giving platform-specific logic a chance to
	// force a cloud placeholder to materialize. Defaults to hydrate.Nop
	// when nil.
	Hydrator hydrate.Hydrator

	// Workers bounds the digest worker pool size. Values <= 1 hash
	// sequentially.
	Workers int

	// Progress, if set, is invoked once per file visited during the walk,
	// before hashing. It is best-effort only, never a correctness input.
	Progress func(current, total int, relPath string)
}

type pendingFile struct {
	relPath string
	absPath string
	size    int64
	mtime   time.Time
	digest  string // non-empty if reused from cache
}

// BuildIndex walks root, applies opts.Filter (pruning excluded directories
// from descent rather than merely filtering results), and returns the
// resulting Index along with every skipped path and its reason.
func BuildIndex(ctx context.Context, fsys afero.Fs, root string, opts BuildOptions) (*Index, []Skipped, error) {
	hyd := opts.Hydrator
	if hyd == nil {
		hyd = hydrate.Nop{}
	}

	total := countFiles(fsys, root)

	var (
		pendings []pendingFile
		skipped  []Skipped
		current  int
	)

	walkErr := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("failed checking context: %w", cerr)
		}

		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}

			skipped = append(skipped, Skipped{
				Path:     path,
				Filename: filepath.Base(path),
				Reason:   fmt.Sprintf("Error reading file: %v", err),
			})

			return nil
		}

		if info.IsDir() {
			if path != root && isDirExcluded(info.Name(), opts.Filter.ExcludedDirNames) {
				return filepath.SkipDir
			}

			return nil
		}

		current++
		if opts.Progress != nil {
			opts.Progress(current, total, path)
		}

		if info.Name() == CacheFileName {
			// The cache file's name matches none of the default filter
			// rules, so it needs this explicit self-exclusion rather than
			// appearing as a stray destination-only file on every run.
			return nil
		}

		if hydrateErr := hyd.Hydrate(ctx, path); hydrateErr != nil {
			skipped = append(skipped, Skipped{
				Path:     path,
				Filename: info.Name(),
				SizeMB:   float64(info.Size()) / (1024 * 1024),
				Reason:   fmt.Sprintf("failed to hydrate: %v", hydrateErr),
			})

			return nil
		}

		// Re-stat after hydration: a cloud placeholder's size and mtime are
		// only trustworthy once Hydrate has forced it to materialize.
		refreshed, statErr := fsys.Stat(path)
		if statErr != nil {
			skipped = append(skipped, Skipped{
				Path:     path,
				Filename: info.Name(),
				Reason:   fmt.Sprintf("Error reading file: %v", statErr),
			})

			return nil
		}
		info = refreshed

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = filepath.Base(path)
		}
		relPath = filepath.ToSlash(relPath)

		decision := Decide(path, true, info.Size(), opts.Filter)
		if !decision.Accepted {
			skipped = append(skipped, Skipped{
				Path:     path,
				Filename: info.Name(),
				SizeMB:   float64(info.Size()) / (1024 * 1024),
				Reason:   decision.Reason,
			})

			return nil
		}

		pf := pendingFile{
			relPath: relPath,
			absPath: path,
			size:    info.Size(),
			mtime:   info.ModTime(),
		}

		if opts.Cache != nil {
			if cached, ok := opts.Cache.Files[relPath]; ok {
				if cached.Size == pf.size && cachedMTimeMatches(cached.MTime, pf.mtime) {
					pf.digest = cached.Digest
				}
			}
		}

		pendings = append(pendings, pf)

		return nil
	})
	if walkErr != nil {
		return nil, skipped, walkErr
	}

	digests, hashErrs := hashPendings(fsys, pendings, opts.Workers)

	idx := New()
	for i, pf := range pendings {
		if pf.digest != "" {
			idx.Add(&FileRecord{RelativePath: pf.relPath, Digest: pf.digest, MTime: pf.mtime, Size: pf.size})

			continue
		}

		if err := hashErrs[i]; err != nil {
			skipped = append(skipped, Skipped{
				Path:     pf.absPath,
				Filename: filepath.Base(pf.absPath),
				SizeMB:   float64(pf.size) / (1024 * 1024),
				Reason:   fmt.Sprintf("Error reading file: %v", err),
			})

			continue
		}

		idx.Add(&FileRecord{RelativePath: pf.relPath, Digest: digests[i], MTime: pf.mtime, Size: pf.size})
	}

	return idx, skipped, nil
}

// cachedMTimeMatches compares a cached float-seconds mtime to a time.Time
// for exact equality, per spec.md's acceptance that filesystem mtime
// precision differences cause only spurious rehashing, never incorrect
// results.
func cachedMTimeMatches(cachedSeconds float64, mtime time.Time) bool {
	return cachedSeconds == float64(mtime.UnixNano())/1e9
}

func isDirExcluded(name string, excludedDirNames []string) bool {
	for _, excluded := range excludedDirNames {
		if name == excluded {
			return true
		}
	}

	return false
}

// countFiles performs a best-effort, unfiltered count of regular files
// under root, used only to report progress denominators.
func countFiles(fsys afero.Fs, root string) int {
	total := 0

	_ = afero.Walk(fsys, root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr
		}
		if !info.IsDir() {
			total++
		}

		return nil
	})

	return total
}

// hashPendings computes the digest of every pendingFile lacking one,
// dispatching across a bounded worker pool when opts.Workers > 1. Results
// are written back indexed by position so the caller's insertion order
// into the Index is identical regardless of completion order, satisfying
// spec.md §5's requirement that parallel hashing reproduce the sequential
// result.
func hashPendings(
	fsys afero.Fs,
	pendings []pendingFile,
	workers int,
) ([]string, []error) {
	digests := make([]string, len(pendings))
	errs := make([]error, len(pendings))

	var jobIndices []int
	for i, pf := range pendings {
		if pf.digest == "" {
			jobIndices = append(jobIndices, i)
		}
	}

	hashOne := func(i int) {
		pf := pendings[i]

		f, err := fsys.Open(pf.absPath)
		if err != nil {
			errs[i] = fmt.Errorf("failed to open: %q (%w)", pf.absPath, err)

			return
		}
		defer f.Close()

		sum, err := digest.Of(f)
		if err != nil {
			errs[i] = fmt.Errorf("failed to hash: %q (%w)", pf.absPath, err)

			return
		}

		digests[i] = sum
	}

	if workers <= 1 || len(jobIndices) <= 1 {
		for _, i := range jobIndices {
			hashOne(i)
		}

		return digests, errs
	}

	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				hashOne(i)
			}
		}()
	}

	for _, i := range jobIndices {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return digests, errs
}
