// Package orchestrator sequences the indexer, classifier, planner,
// executor, and verifier for a single synchronization run, enforcing the
// verify-before-delete gate (C9).
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/backupsync/backupsync/internal/classify"
	"github.com/backupsync/backupsync/internal/hydrate"
	"github.com/backupsync/backupsync/internal/index"
	"github.com/backupsync/backupsync/internal/plan"
	"github.com/backupsync/backupsync/internal/syncexec"
	"github.com/backupsync/backupsync/internal/verify"
)

// ErrSourceNotExist is returned when the source root does not exist.
var ErrSourceNotExist = errors.New("source root does not exist")

// ErrDestinationUnwritable is returned by the pre-flight check that runs
// before any index is built for a run that is neither verify-only nor
// dry-run.
var ErrDestinationUnwritable = errors.New("destination root is not writable")

// Config parameterizes a single run.
type Config struct {
	SrcRoot    string
	DstRoot    string
	Filter     index.FilterConfig
	Workers    int
	Hydrator   hydrate.Hydrator
	DryRun     bool
	VerifyOnly bool

	// Progress callbacks, all optional.
	OnIndexProgress  func(current, total int, relPath string)
	OnVerifyProgress func(current, total int, relPath string)
}

// Result summarizes one orchestrator run.
type Result struct {
	Plan *plan.Plan // nil for a verify-only run

	Moved     int
	Copied    int
	Deleted   int
	Skipped   int
	DirsSwept int

	// SourceSkipped and DestSkipped record every file the indexer rejected
	// (filter exclusion or I/O failure) while walking the source and
	// destination trees respectively, per spec.md §7's requirement that
	// indexing-phase rejections be recorded and surfaced in summaries.
	SourceSkipped []index.Skipped
	DestSkipped   []index.Skipped

	Errors []syncexec.ActionError

	VerificationRan bool
	VerificationOK  bool
	Mismatches      []verify.Mismatch

	// Aborted is true when a verification failure skipped the delete and
	// cache-update phases, leaving the destination exactly as it was
	// after moves/copies.
	Aborted bool
}

// Run executes a single synchronization according to cfg.
func Run(ctx context.Context, fsys afero.Fs, cfg Config) (*Result, error) {
	if _, err := fsys.Stat(cfg.SrcRoot); err != nil {
		return nil, fmt.Errorf("%w: %q (%w)", ErrSourceNotExist, cfg.SrcRoot, err)
	}

	srcFilter := cfg.Filter
	srcIndex, srcSkipped, err := index.BuildIndex(ctx, fsys, cfg.SrcRoot, index.BuildOptions{
		Filter:   srcFilter,
		Hydrator: cfg.Hydrator,
		Workers:  cfg.Workers,
		Progress: cfg.OnIndexProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index source: %w", err)
	}

	if cfg.VerifyOnly {
		ok, mismatches := verify.Verify(fsys, srcIndex, cfg.DstRoot, cfg.OnVerifyProgress)

		return &Result{
			SourceSkipped:   srcSkipped,
			VerificationRan: true,
			VerificationOK:  ok,
			Mismatches:      mismatches,
		}, nil
	}

	if !cfg.DryRun {
		if err := checkDestinationWritable(fsys, cfg.DstRoot); err != nil {
			return nil, err
		}
	}

	cachePath := index.CachePath(cfg.DstRoot)

	cache, err := index.LoadCache(fsys, cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	dstFilter := cfg.Filter
	dstFilter.MaxSizeBytes = index.Unbounded

	dstIndex, dstSkipped, err := index.BuildIndex(ctx, fsys, cfg.DstRoot, index.BuildOptions{
		Filter:   dstFilter,
		Cache:    cache,
		Hydrator: cfg.Hydrator,
		Workers:  cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index destination: %w", err)
	}

	classification := classify.Build(srcIndex)
	p := plan.Generate(srcIndex, dstIndex, classification, cfg.SrcRoot, cfg.DstRoot)

	result := &Result{
		Plan:          p,
		Skipped:       len(p.Skips()),
		SourceSkipped: srcSkipped,
		DestSkipped:   dstSkipped,
	}

	if p.IsEmpty() {
		return result, nil
	}

	if cfg.DryRun {
		execResult := syncexec.Execute(fsys, p, cfg.DstRoot, true)
		result.Moved = execResult.Moved
		result.Copied = execResult.Copied
		result.Deleted = len(p.Deletes())

		return result, nil
	}

	execResult := syncexec.Execute(fsys, p, cfg.DstRoot, false)
	result.Moved = execResult.Moved
	result.Copied = execResult.Copied
	result.Errors = append(result.Errors, execResult.Errors...)

	ok, mismatches := verify.Verify(fsys, srcIndex, cfg.DstRoot, cfg.OnVerifyProgress)
	result.VerificationRan = true
	result.VerificationOK = ok
	result.Mismatches = mismatches

	if !ok {
		result.Aborted = true

		return result, nil
	}

	deleteResult := syncexec.ExecuteDeletes(fsys, p, cfg.DstRoot, false)
	result.Deleted = len(p.Deletes()) - len(deleteResult.Errors)
	result.Errors = append(result.Errors, deleteResult.Errors...)

	swept, err := syncexec.SweepEmptyDirs(fsys, cfg.DstRoot, false)
	if err != nil {
		result.Errors = append(result.Errors, syncexec.ActionError{Action: "sweep", Path: cfg.DstRoot, Err: err})
	}
	result.DirsSwept = swept

	newDstIndex, rebuildSkipped, err := index.BuildIndex(ctx, fsys, cfg.DstRoot, index.BuildOptions{
		Filter:   dstFilter,
		Cache:    cache,
		Hydrator: cfg.Hydrator,
		Workers:  cfg.Workers,
	})
	if err != nil {
		return result, fmt.Errorf("failed to rebuild destination index: %w", err)
	}
	result.DestSkipped = append(result.DestSkipped, rebuildSkipped...)

	if err := index.SaveCache(fsys, cachePath, newDstIndex, time.Now()); err != nil {
		return result, fmt.Errorf("failed to save cache: %w", err)
	}

	return result, nil
}

// checkDestinationWritable performs the pre-flight check required before
// any index is built for a mutating run: the destination root must exist
// (or be creatable) and accept a throwaway write.
func checkDestinationWritable(fsys afero.Fs, dstRoot string) error {
	if err := fsys.MkdirAll(dstRoot, 0o777); err != nil {
		return fmt.Errorf("%w: %q (%w)", ErrDestinationUnwritable, dstRoot, err)
	}

	probe := filepath.Join(dstRoot, ".backupsync-write-test")

	f, err := fsys.Create(probe)
	if err != nil {
		return fmt.Errorf("%w: %q (%w)", ErrDestinationUnwritable, dstRoot, err)
	}
	f.Close()

	if err := fsys.Remove(probe); err != nil {
		return fmt.Errorf("%w: %q (%w)", ErrDestinationUnwritable, dstRoot, err)
	}

	return nil
}
