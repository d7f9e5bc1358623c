package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/backupsync/backupsync/internal/index"
	"github.com/backupsync/backupsync/internal/plan"
)

const sampleLimit = 10

// printPlanSummary prints a colorized, human-readable summary of p to w,
// independent of the structured slog output. Recovers
// print_sync_plan_summary from the Python reference: per-kind counts, then
// up to sampleLimit entries each for moves, copies and deletes.
func printPlanSummary(w io.Writer, p *plan.Plan) {
	skips := p.Skips()
	copies := p.Copies()
	moves := p.Moves()
	deletes := p.Deletes()

	fmt.Fprintln(w)
	color.New(color.Bold).Fprintln(w, "Sync Plan Summary:")
	fmt.Fprintf(w, "  Files to skip (up-to-date): %d\n", len(skips))
	color.New(color.FgCyan).Fprintf(w, "  Files to copy: %d\n", len(copies))
	color.New(color.FgYellow).Fprintf(w, "  Files to move: %d\n", len(moves))
	color.New(color.FgRed).Fprintf(w, "  Files to delete: %d\n", len(deletes))
	fmt.Fprintln(w)

	if len(moves) > 0 {
		fmt.Fprintln(w, "Files to MOVE:")
		for _, a := range truncate(moves) {
			fmt.Fprintf(w, "  %s -> %s\n", a.MoveFromRelativePath, a.DstRelativePath)
		}
		printOverflow(w, len(moves))
		fmt.Fprintln(w)
	}

	if len(copies) > 0 {
		fmt.Fprintln(w, "Files to COPY:")
		for _, a := range truncate(copies) {
			fmt.Fprintf(w, "  %s (%s)\n", a.DstRelativePath, a.Reason)
		}
		printOverflow(w, len(copies))
		fmt.Fprintln(w)
	}

	if len(deletes) > 0 {
		fmt.Fprintln(w, "Files to DELETE (after verification):")
		for _, a := range truncate(deletes) {
			fmt.Fprintf(w, "  %s\n", a.DstRelativePath)
		}
		printOverflow(w, len(deletes))
		fmt.Fprintln(w)
	}
}

func truncate(actions []plan.Action) []plan.Action {
	if len(actions) > sampleLimit {
		return actions[:sampleLimit]
	}

	return actions
}

func printOverflow(w io.Writer, total int) {
	if total > sampleLimit {
		fmt.Fprintf(w, "  ... and %d more\n", total-sampleLimit)
	}
}

// printSkipped reports files the indexer excluded from tree, with
// human-readable sizes via humanize.Bytes rather than a hand-rolled
// formatter.
func printSkipped(w io.Writer, tree string, skipped []index.Skipped) {
	if len(skipped) == 0 {
		return
	}

	fmt.Fprintf(w, "Files skipped while indexing %s:\n", tree)

	for _, s := range truncateSkipped(skipped) {
		if s.SizeMB > 0 {
			fmt.Fprintf(w, "  %s (%s, %s)\n", s.Path, s.Reason, humanize.Bytes(uint64(s.SizeMB*1024*1024)))
		} else {
			fmt.Fprintf(w, "  %s (%s)\n", s.Path, s.Reason)
		}
	}

	printOverflow(w, len(skipped))
	fmt.Fprintln(w)
}

func truncateSkipped(skipped []index.Skipped) []index.Skipped {
	if len(skipped) > sampleLimit {
		return skipped[:sampleLimit]
	}

	return skipped
}
