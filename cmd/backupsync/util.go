package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/backupsync/backupsync/internal/index"
)

type excludeArg []string

func (s *excludeArg) String() string {
	return fmt.Sprint(*s)
}

func (s *excludeArg) Set(value string) error {
	*s = append(*s, strings.TrimSpace(value))

	return nil
}

func parseLogLevel(levelStr string) (slog.Level, error) {
	switch strings.TrimSpace(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return defaultLogLevel, errArgInvalidLogLevel
	}
}

// filterConfig builds the engine's FilterConfig from the CLI options,
// falling back to the compiled-in defaults when the user gave no
// exclusion list of their own.
func (prog *program) filterConfig(maxSizeBytes int64) index.FilterConfig {
	dirs := []string(prog.opts.ExcludeDirs)
	if len(dirs) == 0 {
		dirs = index.DefaultExcludedDirNames
	}

	exts := []string(prog.opts.ExcludeExts)
	if len(exts) == 0 {
		exts = index.DefaultExcludedExtensions
	}

	return index.FilterConfig{
		ExcludedDirNames:   dirs,
		ExcludedExtensions: exts,
		MaxSizeBytes:       maxSizeBytes,
	}
}

func maxSizeBytes(maxMB int) int64 {
	return int64(maxMB) * 1024 * 1024
}
