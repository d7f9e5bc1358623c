package verify

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/backupsync/backupsync/internal/digest"
	"github.com/backupsync/backupsync/internal/index"
)

func recordFor(t *testing.T, relPath, content string) *index.FileRecord {
	t.Helper()

	sum, err := digest.Of(strings.NewReader(content))
	require.NoError(t, err)

	return &index.FileRecord{RelativePath: relPath, Digest: sum, MTime: time.Now(), Size: int64(len(content))}
}

func TestVerifyPassesOnMatchingDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/dst/a.txt", []byte("hello"), 0o644))

	src := index.New()
	src.Add(recordFor(t, "a.txt", "hello"))

	ok, mismatches := Verify(fsys, src, "/dst", nil)
	require.True(t, ok)
	require.Empty(t, mismatches)
}

func TestVerifyFailsOnMissingFile(t *testing.T) {
	fsys := afero.NewMemMapFs()

	src := index.New()
	src.Add(recordFor(t, "a.txt", "hello"))

	ok, mismatches := Verify(fsys, src, "/dst", nil)
	require.False(t, ok)
	require.Len(t, mismatches, 1)
	require.Contains(t, mismatches[0].Reason, "missing")
}

func TestVerifyFailsOnSizeMismatch(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/dst/a.txt", []byte("hi"), 0o644))

	src := index.New()
	src.Add(recordFor(t, "a.txt", "hello"))

	ok, mismatches := Verify(fsys, src, "/dst", nil)
	require.False(t, ok)
	require.Contains(t, mismatches[0].Reason, "Size mismatch")
}

func TestVerifyFailsOnDigestMismatchWithMatchingSize(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/dst/a.txt", []byte("xxxxx"), 0o644))

	src := index.New()
	src.Add(recordFor(t, "a.txt", "hello")) // also 5 bytes, different content

	ok, mismatches := Verify(fsys, src, "/dst", nil)
	require.False(t, ok)
	require.Contains(t, mismatches[0].Reason, "Digest mismatch")
}

func TestVerifyProgressCallback(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/dst/a.txt", []byte("hello"), 0o644))

	src := index.New()
	src.Add(recordFor(t, "a.txt", "hello"))

	var calls int
	_, _ = Verify(fsys, src, "/dst", func(current, total int, relPath string) {
		calls++
		require.Equal(t, 1, total)
		require.Equal(t, "a.txt", relPath)
	})
	require.Equal(t, 1, calls)
}
