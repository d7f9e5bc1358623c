package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/backupsync/backupsync/internal/classify"
	"github.com/backupsync/backupsync/internal/index"
)

func rec(relPath, digest string, size int64) *index.FileRecord {
	return &index.FileRecord{RelativePath: relPath, Digest: digest, MTime: time.Now(), Size: size}
}

func idxOf(recs ...*index.FileRecord) *index.Index {
	idx := index.New()
	for _, r := range recs {
		idx.Add(r)
	}

	return idx
}

// S1 cold copy.
func TestGenerateColdCopy(t *testing.T) {
	src := idxOf(rec("a.txt", "h1", 2), rec("sub/b.txt", "h2", 3))
	dst := idxOf()

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	require.Len(t, p.Copies(), 2)
	require.Empty(t, p.Moves())
	require.Empty(t, p.Deletes())
	require.Empty(t, p.Skips())
}

// S2 no-op.
func TestGenerateNoOp(t *testing.T) {
	src := idxOf(rec("a.txt", "h1", 2), rec("sub/b.txt", "h2", 3))
	dst := idxOf(rec("a.txt", "h1", 2), rec("sub/b.txt", "h2", 3))

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	require.True(t, p.IsEmpty())
	require.Len(t, p.Skips(), 2)
}

// S3 rename.
func TestGenerateRename(t *testing.T) {
	src := idxOf(rec("a.txt", "h1", 2), rec("sub/b2.txt", "h2", 3))
	dst := idxOf(rec("a.txt", "h1", 2), rec("sub/b.txt", "h2", 3))

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	require.Len(t, p.Skips(), 1)
	require.Len(t, p.Moves(), 1)
	require.Empty(t, p.Copies())
	require.Empty(t, p.Deletes())

	m := p.Moves()[0]
	require.Equal(t, "sub/b.txt", m.MoveFromRelativePath)
	require.Equal(t, "sub/b2.txt", m.DstRelativePath)
}

// S4 content update.
func TestGenerateContentUpdate(t *testing.T) {
	src := idxOf(rec("a.txt", "h1-new", 3), rec("sub/b.txt", "h2", 3))
	dst := idxOf(rec("a.txt", "h1-old", 2), rec("sub/b.txt", "h2", 3))

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	require.Len(t, p.Copies(), 1)
	require.Equal(t, "Content changed", p.Copies()[0].Reason)
	require.Len(t, p.Skips(), 1)
}

// S5 boilerplate across projects.
func TestGenerateBoilerplateAcrossProjects(t *testing.T) {
	src := idxOf(
		rec("app1/package.json", "pkg", 1),
		rec("app1/.gitignore", "gi", 1),
		rec("app2/package.json", "pkg", 1),
		rec("app2/.gitignore", "gi", 1),
	)
	dst := idxOf(rec("app1/.gitignore", "gi", 1))

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	copies := p.Copies()
	var sawApp2Gitignore bool
	for _, c := range copies {
		if c.DstRelativePath == "app2/.gitignore" {
			sawApp2Gitignore = true
		}
	}
	require.True(t, sawApp2Gitignore, "app2/.gitignore must be copied, not moved")

	for _, m := range p.Moves() {
		require.NotEqual(t, "app2/.gitignore", m.DstRelativePath)
	}
}

// S6 plan shape (verify-gated delete is exercised at the orchestrator level).
func TestGenerateDeleteOfStaleFile(t *testing.T) {
	src := idxOf(rec("a.txt", "h1", 2))
	dst := idxOf(rec("a.txt", "h1", 2), rec("stale.txt", "h3", 1))

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	require.Len(t, p.Skips(), 1)
	require.Len(t, p.Deletes(), 1)
	require.Equal(t, "stale.txt", p.Deletes()[0].DstRelativePath)
}

func TestGenerateMoveTieBreakPrefersSameBasename(t *testing.T) {
	src := idxOf(rec("a/dir/file.txt", "h1", 1))
	dst := idxOf(
		rec("b/other/file.txt", "h1", 1),
		rec("c/renamed.txt", "h1", 1),
	)

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	require.Len(t, p.Moves(), 1)
	require.Equal(t, "b/other/file.txt", p.Moves()[0].MoveFromRelativePath)
}

func TestGenerateMoveTieBreakMinimizesPathDistance(t *testing.T) {
	src := idxOf(rec("a/b/c/file.bin", "h1", 1))
	dst := idxOf(
		rec("a/b/other.bin", "h1", 1),
		rec("x/y/z/other.bin", "h1", 1),
	)

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	require.Len(t, p.Moves(), 1)
	require.Equal(t, "a/b/other.bin", p.Moves()[0].MoveFromRelativePath)
}

func TestGenerateDoesNotReuseSameDstCandidateTwice(t *testing.T) {
	src := idxOf(rec("one.txt", "dup", 1), rec("two.txt", "dup", 1))
	dst := idxOf(rec("orig.txt", "dup", 1))

	p := Generate(src, dst, classify.Build(src), "/src", "/dst")

	require.Len(t, p.Moves(), 1)
	require.Len(t, p.Copies(), 1)
}
