package syncexec

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/backupsync/backupsync/internal/plan"
)

func TestExecuteCopiesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/a.txt", []byte("hello"), 0o644))

	p := &plan.Plan{Actions: []plan.Action{plan.NewCopy("/src/a.txt", "a.txt", "New file")}}

	result := Execute(fsys, p, "/dst", false)
	require.Equal(t, 1, result.Copied)
	require.Empty(t, result.Errors)

	content, err := afero.ReadFile(fsys, "/dst/a.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestExecuteDryRunWritesNothing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/a.txt", []byte("hello"), 0o644))

	p := &plan.Plan{Actions: []plan.Action{plan.NewCopy("/src/a.txt", "a.txt", "New file")}}

	result := Execute(fsys, p, "/dst", true)
	require.Equal(t, 1, result.Copied)

	exists, err := afero.Exists(fsys, "/dst/a.txt")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestExecuteMovesFileWithinDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/dst/old.txt", []byte("bye"), 0o644))

	p := &plan.Plan{Actions: []plan.Action{plan.NewMove("old.txt", "sub/new.txt", "Moved from old.txt")}}

	result := Execute(fsys, p, "/dst", false)
	require.Equal(t, 1, result.Moved)
	require.Empty(t, result.Errors)

	exists, err := afero.Exists(fsys, "/dst/old.txt")
	require.NoError(t, err)
	require.False(t, exists)

	content, err := afero.ReadFile(fsys, "/dst/sub/new.txt")
	require.NoError(t, err)
	require.Equal(t, "bye", string(content))
}

func TestExecutePartialFailureDoesNotAbortRemainingActions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/ok.txt", []byte("ok"), 0o644))
	// "missing.txt" is never created, so its copy will fail.

	p := &plan.Plan{Actions: []plan.Action{
		plan.NewCopy("/src/missing.txt", "missing.txt", "New file"),
		plan.NewCopy("/src/ok.txt", "ok.txt", "New file"),
	}}

	result := Execute(fsys, p, "/dst", false)
	require.Equal(t, 1, result.Copied)
	require.Len(t, result.Errors, 1)

	exists, err := afero.Exists(fsys, "/dst/ok.txt")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestExecuteDeletesRemovesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/dst/stale.txt", []byte("x"), 0o644))

	p := &plan.Plan{Actions: []plan.Action{plan.NewDelete("stale.txt", "Not in source")}}

	result := ExecuteDeletes(fsys, p, "/dst", false)
	require.Empty(t, result.Errors)

	exists, err := afero.Exists(fsys, "/dst/stale.txt")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSweepEmptyDirsRemovesBottomUp(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/dst/a/b/c", 0o777))
	require.NoError(t, afero.WriteFile(fsys, "/dst/keep/file.txt", []byte("x"), 0o644))

	removed, err := SweepEmptyDirs(fsys, "/dst", false)
	require.NoError(t, err)
	require.Equal(t, 3, removed)

	exists, err := afero.Exists(fsys, "/dst/a")
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = afero.DirExists(fsys, "/dst/keep")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestSweepEmptyDirsDryRunLeavesDirsInPlace(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/dst/empty", 0o777))

	removed, err := SweepEmptyDirs(fsys, "/dst", true)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	exists, err := afero.DirExists(fsys, "/dst/empty")
	require.NoError(t, err)
	require.True(t, exists)
}
