/*
backupsync is a CLI utility for one-way, content-addressed directory
synchronization. It mirrors a source directory tree into a destination tree,
detecting files that were only renamed or relocated within the source (via
content digest) so they are moved rather than re-copied at the destination,
and never deletes anything from the destination until a full post-copy
verification pass confirms the destination matches the source.

The tool operates with two verbs:

  - `sync`: Indexes source and destination, computes a plan (skip / copy /
    move / delete), executes moves and copies, verifies the result against
    the source, and only then executes deletes and writes the destination
    index cache. A failed verification aborts before any delete and before
    the cache is touched, leaving the destination as the moves and copies
    left it.

  - `list`: Enumerates mounted filesystem partitions as candidate
    destination roots, with free space, independent of any sync operation.

# FEATURES

  - Move detection: content-identical files that changed path are moved
    at the destination instead of being re-copied from source.
  - Verify-before-delete: deletions only run after a full destination
    re-hash confirms every source file is correctly mirrored.
  - Destination index cache: unchanged files (by size + mtime) skip
    re-hashing on the next run.
  - Project-aware move tie-breaking: refuses to "move" identical
    boilerplate files (lockfiles, `.gitignore`, ...) across unrelated
    project roots.
  - Atomic writes: copies land via rename from a uniquely named
    temporary file; moves are a single rename within the destination.
  - CLI and YAML config: combine a structured config file with flags.
  - Dry-run support: preview the plan without touching the filesystem.
  - Scriptable: JSON log output and return codes support automation.

# USAGE

	backupsync sync --source=ABSPATH --destination=ABSPATH [flags]
	backupsync list

# ARGUMENTS

	--config string
		Optional. Path to a YAML configuration file with any CLI arguments.
		Direct CLI arguments always override values set via configuration file.

	--source string
		Required for `sync`. Absolute path to the source directory tree.

	--destination string
		Required for `sync`. Absolute path to the destination directory tree.

	--exclude-dir string
		Optional. Directory name to exclude from both trees. Can be repeated;
		replaces (not appends to) the compiled-in defaults once set.

	--exclude-ext string
		Optional. File extension (with leading dot) to exclude. Can be
		repeated; replaces the compiled-in defaults once set.

	--max-file-size-mb int
		Optional. Source files larger than this are skipped entirely.

		Default: 256

	--workers int
		Optional. Number of goroutines used to compute file digests.

		Default: number of logical CPUs

	--dry-run
		Optional. Compute and print the plan, but perform no filesystem writes.

		Default: false

	--verify-only
		Optional. Skip planning and execution entirely; only verify that the
		destination already mirrors the source, reporting any mismatch.

		Default: false

	--log-level [debug|info|warn|error]
		Optional. Controls verbosity of the operational logs that are emitted.

		Default: info

	--json
		Optional. Outputs in JSON format the operational logs that are emitted.
		Allows for programmatic parsing of output from standard error (stderr).

		Default: false

# YAML CONFIGURATION EXAMPLE

	source: /data/projects
	destination: /mnt/backup/projects
	exclude-dir:
	  - node_modules
	  - .git
	exclude-ext:
	  - .tmp
	max-file-size-mb: 256
	workers: 4
	dry-run: false
	verify-only: false
	log-level: info
	json: false

Invalid configurations (unknown or malformed fields) are rejected at runtime.

# RETURN CODES

  - `0`: Success (including dry-run and a passing verify-only)
  - `1`: Unrecoverable failure (I/O, internal panic)
  - `2`: Partial failure (one or more per-action errors; run completed)
  - `3`: Verification failed; deletes and cache update were skipped
  - `5`: Invalid command-line arguments and/or configuration file provided

# DESIGN CHOICES AND LIMITATIONS

backupsync assumes it is the only writer of the destination tree while it
runs; a concurrent writer can make the verification pass observe a moving
target. If it cannot proceed safely, it fails early with a descriptive
error, leaving the destination in a known, inspectable state rather than
guessing at the user's intent.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

const (
	exitCodeSuccess        = 0
	exitCodeFailure        = 1
	exitCodePartialFailure = 2
	exitCodeVerifyFailed   = 3
	exitCodeConfigFailure  = 5

	defaultLogLevel = slog.LevelInfo

	exitTimeout = 10 * time.Second
)

// Version is the application's version (filled in during compilation).
var Version string

type program struct {
	fsys   afero.Fs
	stdout io.Writer
	stderr io.Writer

	opts  *cliOptions
	flags *cliFlagSet

	log *slog.Logger

	provokeTestPanic bool
}

func main() {
	var prog *program
	var exitCode int

	defer func() {
		if prog != nil {
			prog.log.Info("program exited", "code", exitCode)
		}
		os.Exit(exitCode)
	}()

	fmt.Fprintf(os.Stdout, "backupsync (v%s) - content-addressed one-way directory mirroring.\n\n", Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	doneChan := make(chan int, 1)

	prog, err := newProgram(os.Args, afero.NewOsFs(), os.Stdout, os.Stderr)
	if prog == nil || err != nil {
		exitCode = exitCodeConfigFailure

		return
	}

	go func() {
		code, _ := prog.run(ctx)
		doneChan <- code
	}()

	select {
	case code := <-doneChan:
		exitCode = code

		return

	case <-sigChan:
		prog.log.Warn("received interrupt signal; shutting down (waiting up to 10s)...", "op", prog.opts.Verb)
		cancel()

		select {
		case code := <-doneChan:
			exitCode = code

			return

		case <-time.After(exitTimeout):
			prog.log.Error("timed out while waiting for program exit; killing...",
				"op", prog.opts.Verb,
				"error-type", "fatal",
			)
			exitCode = exitCodeFailure

			return
		}
	}
}

func newProgram(cliArgs []string, fsys afero.Fs, stdout, stderr io.Writer) (*program, error) {
	prog := &program{
		fsys:   fsys,
		stdout: stdout,
		stderr: stderr,
		opts:   &cliOptions{},
	}

	if err := prog.parseArgs(cliArgs); err != nil {
		fmt.Fprintf(prog.stderr, "fatal: failed to parse configuration: %v\n\n", err)
		if prog.flags != nil {
			prog.flags.fs.Usage()
		}

		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := prog.validateOpts(); err != nil {
		fmt.Fprintf(prog.stderr, "fatal: failed to validate configuration: %v\n\n", err)
		prog.flags.fs.Usage()

		return nil, fmt.Errorf("failed to validate configuration: %w", err)
	}

	if err := prog.printOpts(); err != nil {
		fmt.Fprintf(prog.stderr, "fatal: failed to print configuration: %v\n\n", err)

		return nil, fmt.Errorf("failed to print configuration: %w", err)
	}

	prog.log = slog.New(prog.logHandler())

	return prog, nil
}

func (prog *program) run(ctx context.Context) (retExitCode int, retErr error) {
	defer func() {
		if r := recover(); r != nil {
			prog.log.Error("internal panic recovered",
				"op", prog.opts.Verb,
				"error", r,
				"error-type", "fatal",
			)
			debug.PrintStack()
			retExitCode = exitCodeFailure
		}
	}()

	switch prog.opts.Verb {
	case verbList:
		return prog.runList()
	case verbSync:
		return prog.runSync(ctx)
	default:
		return exitCodeConfigFailure, errArgVerbMismatch
	}
}
