package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/backupsync/backupsync/internal/index"
)

func TestExcludeArgSetAppendsTrimmed(t *testing.T) {
	var e excludeArg

	require.NoError(t, e.Set("node_modules"))
	require.NoError(t, e.Set("  .git  "))
	require.Equal(t, excludeArg{"node_modules", ".git"}, e)
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}

	for in, want := range cases {
		got, err := parseLogLevel(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseLogLevelRejectsUnknown(t *testing.T) {
	_, err := parseLogLevel("trace")
	require.ErrorIs(t, err, errArgInvalidLogLevel)
}

func TestFilterConfigFallsBackToDefaults(t *testing.T) {
	prog := &program{opts: &cliOptions{}}

	fc := prog.filterConfig(maxSizeBytes(10))
	require.Equal(t, index.DefaultExcludedDirNames, fc.ExcludedDirNames)
	require.Equal(t, index.DefaultExcludedExtensions, fc.ExcludedExtensions)
	require.Equal(t, int64(10*1024*1024), fc.MaxSizeBytes)
}

func TestFilterConfigUsesUserSuppliedLists(t *testing.T) {
	prog := &program{opts: &cliOptions{
		ExcludeDirs: excludeArg{"vendor"},
		ExcludeExts: excludeArg{".bak"},
	}}

	fc := prog.filterConfig(maxSizeBytes(1))
	require.Equal(t, []string{"vendor"}, fc.ExcludedDirNames)
	require.Equal(t, []string{".bak"}, fc.ExcludedExtensions)
}

func TestMaxSizeBytes(t *testing.T) {
	require.Equal(t, int64(0), maxSizeBytes(0))
	require.Equal(t, int64(256*1024*1024), maxSizeBytes(256))
}
