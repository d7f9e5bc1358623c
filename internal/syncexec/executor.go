// Package syncexec applies a plan.Plan to the destination tree in the
// safe phase ordering required by spec.md §4.7: directory preparation,
// then moves, then copies. Execute never deletes; deletes are applied
// separately by ExecuteDeletes, which internal/orchestrator calls only
// after a passing verification (internal/verify).
package syncexec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/backupsync/backupsync/internal/plan"
)

// ActionError records a single action's failure without aborting the
// remaining actions of the same phase.
type ActionError struct {
	Action string
	Path   string
	Target string
	Err    error
}

func (e ActionError) Error() string {
	return fmt.Sprintf("%s: %q -> %q: %v", e.Action, e.Path, e.Target, e.Err)
}

// Result summarizes a single Execute call.
type Result struct {
	Moved  int
	Copied int
	Errors []ActionError
}

const dirPerm = 0o777

// Execute applies every Move then every Copy action in p to dstRoot.
// Per-action failures are appended to Result.Errors and do not abort
// subsequent actions. In dry-run mode, counters increment but the
// filesystem is never touched.
func Execute(fsys afero.Fs, p *plan.Plan, dstRoot string, dryRun bool) *Result {
	result := &Result{}

	if !dryRun {
		prepareDirs(fsys, p, dstRoot)
	}

	for _, m := range p.Moves() {
		if dryRun {
			result.Moved++

			continue
		}

		if err := applyMove(fsys, dstRoot, m); err != nil {
			result.Errors = append(result.Errors, ActionError{
				Action: "move",
				Path:   filepath.Join(dstRoot, filepath.FromSlash(m.MoveFromRelativePath)),
				Target: filepath.Join(dstRoot, filepath.FromSlash(m.DstRelativePath)),
				Err:    err,
			})

			continue
		}

		result.Moved++
	}

	for _, c := range p.Copies() {
		if dryRun {
			result.Copied++

			continue
		}

		dst := filepath.Join(dstRoot, filepath.FromSlash(c.DstRelativePath))
		if err := copyFile(fsys, c.SrcAbsPath, dst); err != nil {
			result.Errors = append(result.Errors, ActionError{
				Action: "copy",
				Path:   c.SrcAbsPath,
				Target: dst,
				Err:    err,
			})

			continue
		}

		result.Copied++
	}

	return result
}

// prepareDirs creates every parent directory of a Copy or Move
// destination, recursively. Missing parents are not an error at this
// phase — only a subsequent Mkdir/copy failure is.
func prepareDirs(fsys afero.Fs, p *plan.Plan, dstRoot string) {
	dirs := make(map[string]struct{})

	for _, a := range p.Actions {
		if a.Kind != plan.Copy && a.Kind != plan.Move {
			continue
		}

		dir := filepath.Dir(filepath.Join(dstRoot, filepath.FromSlash(a.DstRelativePath)))
		dirs[dir] = struct{}{}
	}

	for dir := range dirs {
		_ = fsys.MkdirAll(dir, dirPerm)
	}
}

// applyMove renames the destination-tree file at move.MoveFromRelativePath
// to move.DstRelativePath, falling back to copy-then-delete if the
// rename fails (e.g. a cross-device move).
func applyMove(fsys afero.Fs, dstRoot string, move plan.Action) error {
	src := filepath.Join(dstRoot, filepath.FromSlash(move.MoveFromRelativePath))
	dst := filepath.Join(dstRoot, filepath.FromSlash(move.DstRelativePath))

	if err := fsys.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("failed to create parent: %q (%w)", filepath.Dir(dst), err)
	}

	if err := fsys.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(fsys, src, dst); err != nil {
		return fmt.Errorf("failed cross-device move fallback: %w", err)
	}

	if err := fsys.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source after move fallback: %q (%w)", src, err)
	}

	return nil
}

// copyFile copies src to dst via a uniquely-named temporary file in dst's
// directory, preserving src's modification time, then renames the
// temporary file into place. This guarantees dst never observes a
// partially-written file at its final name.
func copyFile(fsys afero.Fs, src, dst string) error {
	if err := fsys.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("failed to create parent: %q (%w)", filepath.Dir(dst), err)
	}

	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open: %q (%w)", src, err)
	}
	defer in.Close()

	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat: %q (%w)", src, err)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", dst, uuid.NewString())

	out, err := fsys.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create: %q (%w)", tmp, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return fmt.Errorf("failed during copy: %q -> %q (%w)", src, tmp, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close: %q (%w)", tmp, err)
	}

	if err := fsys.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to preserve mtime: %q (%w)", tmp, err)
	}

	if err := fsys.Rename(tmp, dst); err != nil {
		return fmt.Errorf("failed to rename: %q -> %q (%w)", tmp, dst, err)
	}

	return nil
}

// ExecuteDeletes applies every Delete action in p. Callers must only
// invoke this after a passing verification, per spec.md's
// verify-before-delete invariant; this package does not enforce that
// ordering itself (internal/orchestrator does).
func ExecuteDeletes(fsys afero.Fs, p *plan.Plan, dstRoot string, dryRun bool) *Result {
	result := &Result{}

	for _, d := range p.Deletes() {
		if dryRun {
			continue
		}

		target := filepath.Join(dstRoot, filepath.FromSlash(d.DstRelativePath))
		if err := fsys.Remove(target); err != nil {
			result.Errors = append(result.Errors, ActionError{
				Action: "delete",
				Path:   target,
				Err:    err,
			})
		}
	}

	return result
}

// SweepEmptyDirs removes empty directories under root, bottom-up,
// stopping short of removing root itself.
func SweepEmptyDirs(fsys afero.Fs, root string, dryRun bool) (int, error) {
	var dirs []string

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr
		}
		if info.IsDir() && path != root {
			dirs = append(dirs, path)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk: %q (%w)", root, err)
	}

	removed := 0
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]

		entries, err := afero.ReadDir(fsys, dir)
		if err != nil || len(entries) > 0 {
			continue
		}

		if dryRun {
			removed++

			continue
		}

		if err := fsys.Remove(dir); err == nil {
			removed++
		}
	}

	return removed, nil
}
