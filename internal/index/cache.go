package index

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// CacheFileName is the destination-root-relative name of the persisted
// index cache. Its name matches no default filter rule, so BuildIndex
// skips it by name during the walk, independent of FilterConfig.
const CacheFileName = ".backup_index.json"

// CacheVersion is the only value the on-disk schema version may carry. A
// stronger digest algorithm (per spec.md's Open Questions) would require
// bumping this; BLAKE3's adoption here does not, since the version
// describes the cache's JSON shape, not the hash function.
const CacheVersion = 1

// CacheEntry is one file's persisted fingerprint, keyed by relative path
// in Cache.Files.
type CacheEntry struct {
	Digest string  `json:"digest"`
	MTime  float64 `json:"mtime"`
	Size   int64   `json:"size"`
}

// Cache is the versioned, on-disk form of a destination Index.
type Cache struct {
	Version int                   `json:"version"`
	Created string                `json:"created"`
	Files   map[string]CacheEntry `json:"files"`
}

// CachePath returns the path of the persisted cache file under root.
func CachePath(root string) string {
	return filepath.Join(root, CacheFileName)
}

// LoadCache reads and validates the cache at path. Any failure — missing
// file, malformed JSON, or a version other than CacheVersion — is treated
// as "no cache": it returns (nil, nil), never an error, matching spec.md
// §4.4 and the CacheInvalid error kind in §7 (advisory-only, never fatal).
func LoadCache(fsys afero.Fs, path string) (*Cache, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, nil //nolint:nilerr
	}
	defer f.Close()

	var c Cache
	dec := json.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return nil, nil //nolint:nilerr
	}

	if c.Version != CacheVersion {
		return nil, nil
	}

	return &c, nil
}

// SaveCache serializes idx to path, writing to a uniquely-suffixed
// temporary file first and renaming it into place so a crash mid-write
// never corrupts a previously valid cache.
func SaveCache(fsys afero.Fs, path string, idx *Index, now time.Time) error {
	c := Cache{
		Version: CacheVersion,
		Created: now.UTC().Format(time.RFC3339),
		Files:   make(map[string]CacheEntry, idx.Len()),
	}

	for _, rec := range idx.All() {
		c.Files[rec.RelativePath] = CacheEntry{
			Digest: rec.Digest,
			MTime:  float64(rec.MTime.UnixNano()) / 1e9,
			Size:   rec.Size,
		}
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())

	out, err := fsys.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create: %q (%w)", tmpPath, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(c); err != nil {
		out.Close()

		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close: %q (%w)", tmpPath, err)
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename: %q -> %q (%w)", tmpPath, path, err)
	}

	return nil
}
