package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/backupsync/backupsync/internal/drives"
	"github.com/backupsync/backupsync/internal/hydrate"
	"github.com/backupsync/backupsync/internal/orchestrator"
)

func (prog *program) runSync(ctx context.Context) (int, error) {
	cfg := orchestrator.Config{
		SrcRoot:    prog.opts.Source,
		DstRoot:    prog.opts.Destination,
		Filter:     prog.filterConfig(maxSizeBytes(prog.opts.MaxFileSizeMB)),
		Workers:    prog.opts.Workers,
		Hydrator:   hydrate.Nop{},
		DryRun:     prog.opts.DryRun,
		VerifyOnly: prog.opts.VerifyOnly,
		OnIndexProgress: func(current, total int, relPath string) {
			prog.log.Debug("indexing", "op", "index", "current", current, "total", total, "path", relPath)
		},
		OnVerifyProgress: func(current, total int, relPath string) {
			prog.log.Debug("verifying", "op", "verify", "current", current, "total", total, "path", relPath)
		},
	}

	result, err := orchestrator.Run(ctx, prog.fsys, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return exitCodeFailure, err
		}

		prog.log.Error("run failed", "op", prog.opts.Verb, "error", err, "error-type", "fatal")

		return exitCodeFailure, err
	}

	if prog.provokeTestPanic {
		panic("testing program panic")
	}

	if prog.opts.VerifyOnly {
		printSkipped(prog.stdout, "source", result.SourceSkipped)

		return prog.reportVerifyOnly(result)
	}

	if result.Plan != nil {
		printPlanSummary(prog.stdout, result.Plan)
	}

	printSkipped(prog.stdout, "source", result.SourceSkipped)
	printSkipped(prog.stdout, "destination", result.DestSkipped)

	if result.Plan == nil || result.Plan.IsEmpty() {
		prog.log.Info("nothing to do; destination already mirrors source", "op", prog.opts.Verb)

		return exitCodeSuccess, nil
	}

	if prog.opts.DryRun {
		prog.log.Info("dry run completed; no changes were made",
			"op", prog.opts.Verb,
			"moved", result.Moved,
			"copied", result.Copied,
			"deletes_planned", result.Deleted,
		)

		return exitCodeSuccess, nil
	}

	if result.Aborted {
		prog.log.Error("verification failed; deletes and cache update were skipped",
			"op", "verify",
			"mismatches", len(result.Mismatches),
			"error-type", "fatal",
		)

		for _, m := range result.Mismatches {
			prog.log.Warn("mismatch", "op", "verify", "path", m.Path, "reason", m.Reason)
		}

		return exitCodeVerifyFailed, fmt.Errorf("verification failed with %d mismatch(es)", len(result.Mismatches))
	}

	for _, actionErr := range result.Errors {
		prog.log.Error("action failed",
			"op", prog.opts.Verb,
			"action", actionErr.Action,
			"path", actionErr.Path,
			"target", actionErr.Target,
			"error", actionErr.Err,
			"error-type", "runtime",
		)
	}

	prog.log.Info("sync completed",
		"op", prog.opts.Verb,
		"moved", result.Moved,
		"copied", result.Copied,
		"deleted", result.Deleted,
		"dirs_swept", result.DirsSwept,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)

	if len(result.Errors) > 0 {
		return exitCodePartialFailure, nil
	}

	return exitCodeSuccess, nil
}

func (prog *program) reportVerifyOnly(result *orchestrator.Result) (int, error) {
	if result.VerificationOK {
		prog.log.Info("verification passed; destination mirrors source", "op", "verify")

		return exitCodeSuccess, nil
	}

	prog.log.Error("verification failed", "op", "verify", "mismatches", len(result.Mismatches), "error-type", "fatal")

	for _, m := range result.Mismatches {
		prog.log.Warn("mismatch", "op", "verify", "path", m.Path, "reason", m.Reason)
	}

	return exitCodeVerifyFailed, fmt.Errorf("verification failed with %d mismatch(es)", len(result.Mismatches))
}

func (prog *program) runList() (int, error) {
	list, err := drives.List()
	if err != nil {
		prog.log.Error("failed to enumerate drives", "op", prog.opts.Verb, "error", err, "error-type", "fatal")

		return exitCodeFailure, err
	}

	fmt.Fprintln(prog.stdout, "Candidate destination roots:")

	for _, d := range list {
		fmt.Fprintf(prog.stdout, "  %s\t(%s, %s free of %s)\n",
			d.MountPoint, d.FSType, humanize.Bytes(d.FreeBytes), humanize.Bytes(d.TotalBytes))
	}

	return exitCodeSuccess, nil
}
