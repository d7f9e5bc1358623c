package index

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Unbounded is used as FilterConfig.MaxSizeBytes to disable the size rule
// entirely; the destination indexer runs with this so that a file already
// present in the mirror is still seen (and so remains a delete candidate)
// even if it now exceeds the configured cap.
const Unbounded int64 = -1

// DefaultExcludedDirNames mirrors spec.md's compiled-in EXCLUDE_DIR_NAMES.
var DefaultExcludedDirNames = []string{
	"node_modules", "dist", "build", "libs",
	"__pycache__", ".venv", "venv",
	".git", ".idea", ".vscode",
}

// DefaultExcludedExtensions mirrors spec.md's compiled-in EXCLUDE_EXTENSIONS.
var DefaultExcludedExtensions = []string{
	".tmp", ".log", ".pyc", ".pyo", ".pyd", ".DS_Store",
}

// DefaultMaxFileSizeMB mirrors spec.md's compiled-in MAX_FILE_SIZE_MB.
const DefaultMaxFileSizeMB = 256

// FilterConfig configures the exclusion filter (C2).
type FilterConfig struct {
	ExcludedDirNames   []string
	ExcludedExtensions []string
	MaxSizeBytes       int64 // Unbounded disables the size rule.
}

// Decision is the outcome of evaluating a path against a FilterConfig.
type Decision struct {
	Accepted bool
	Reason   string // populated only when !Accepted
}

var accept = Decision{Accepted: true}

// Decide evaluates path against cfg in the order specified by spec.md §4.2:
// directory-name match, then extension match, then (for regular files
// only) the size bound.
func Decide(path string, isRegularFile bool, size int64, cfg FilterConfig) Decision {
	for _, part := range pathComponents(path) {
		for _, excluded := range cfg.ExcludedDirNames {
			if part == excluded {
				return Decision{Reason: "Excluded directory: " + excluded}
			}
		}
	}

	lower := strings.ToLower(path)
	for _, ext := range cfg.ExcludedExtensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return Decision{Reason: "Excluded extension: " + ext}
		}
	}

	if isRegularFile && cfg.MaxSizeBytes != Unbounded && size > cfg.MaxSizeBytes {
		return Decision{Reason: formatSizeReason(size, cfg.MaxSizeBytes)}
	}

	return accept
}

func formatSizeReason(size, max int64) string {
	sizeMB := float64(size) / (1024 * 1024)
	maxMB := float64(max) / (1024 * 1024)

	return fmt.Sprintf("File size %.1fMB > %.1fMB", sizeMB, maxMB)
}

func pathComponents(path string) []string {
	path = filepath.ToSlash(filepath.Clean(path))

	return strings.Split(strings.Trim(path, "/"), "/")
}
