package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"

	"github.com/backupsync/backupsync/internal/index"
)

const (
	verbSync = "sync"
	verbList = "list"
)

var (
	errArgConfigMalformed  = errors.New("--config yaml file is malformed")
	errArgConfigMissing    = errors.New("--config yaml file does not exist")
	errArgVerbMismatch     = errors.New("first argument must be 'sync' or 'list'")
	errArgMissingSrcDst    = errors.New("--source and --destination must both be set for 'sync'")
	errArgSrcDstNotAbs     = errors.New("--source and --destination paths must be absolute")
	errArgSrcDstSame       = errors.New("--source and --destination paths cannot be the same")
	errArgInvalidLogLevel  = errors.New("--log-level has a not recognized value")
	errArgInvalidWorkers   = errors.New("--workers must be a positive integer")
	errArgInvalidMaxSizeMB = errors.New("--max-file-size-mb must be zero or a positive integer")
)

// cliOptions is the full set of flag- and YAML-overridable run parameters,
// layered the same way as the rest of the fields: a flag explicitly set on
// the command line always wins over the YAML file's value.
type cliOptions struct {
	Verb string `yaml:"-"`

	Source        string     `yaml:"source"`
	Destination   string     `yaml:"destination"`
	ExcludeDirs   excludeArg `yaml:"exclude-dir"`
	ExcludeExts   excludeArg `yaml:"exclude-ext"`
	MaxFileSizeMB int        `yaml:"max-file-size-mb"`
	Workers       int        `yaml:"workers"`
	DryRun        bool       `yaml:"dry-run"`
	VerifyOnly    bool       `yaml:"verify-only"`
	LogLevel      string     `yaml:"log-level"`
	JSON          bool       `yaml:"json"`
}

type cliFlagSet struct {
	fs *flag.FlagSet
}

func (prog *program) parseArgs(cliArgs []string) error {
	if len(cliArgs) < 2 {
		return errArgVerbMismatch
	}

	verb := cliArgs[1]
	if verb != verbSync && verb != verbList {
		return errArgVerbMismatch
	}

	prog.opts.Verb = verb

	var (
		yamlFile string
		yamlOpts cliOptions
	)

	fs := flag.NewFlagSet("backupsync "+verb, flag.ExitOnError)
	fs.SetOutput(prog.stderr)
	fs.Usage = func() {
		fmt.Fprintf(prog.stderr, "usage: %q %s --source=ABSPATH --destination=ABSPATH [flags]\n", cliArgs[0], verbSync)
		fmt.Fprintf(prog.stderr, "\t[--exclude-dir=NAME]... [--exclude-ext=.ext]... [--max-file-size-mb=N]\n")
		fmt.Fprintf(prog.stderr, "\t[--workers=N] [--dry-run] [--verify-only] [--log-level=LEVEL] [--json]\n\n")
		fmt.Fprintf(prog.stderr, "       %q %s\n\n", cliArgs[0], verbList)
		fs.PrintDefaults()
	}
	prog.flags = &cliFlagSet{fs: fs}

	fs.StringVar(&yamlFile, "config", "", "path to a yaml configuration file")
	fs.StringVar(&prog.opts.Source, "source", "", "absolute path to the source directory tree")
	fs.StringVar(&prog.opts.Destination, "destination", "", "absolute path to the destination directory tree")
	fs.Var(&prog.opts.ExcludeDirs, "exclude-dir", "directory name to exclude; can be repeated")
	fs.Var(&prog.opts.ExcludeExts, "exclude-ext", "file extension (with leading dot) to exclude; can be repeated")
	fs.IntVar(&prog.opts.MaxFileSizeMB, "max-file-size-mb", index.DefaultMaxFileSizeMB, "source files larger than this are skipped")
	fs.IntVar(&prog.opts.Workers, "workers", runtime.NumCPU(), "number of goroutines used to compute file digests")
	fs.BoolVar(&prog.opts.DryRun, "dry-run", false, "compute and print the plan, but perform no filesystem writes")
	fs.BoolVar(&prog.opts.VerifyOnly, "verify-only", false, "only verify that the destination already mirrors the source")
	fs.StringVar(&prog.opts.LogLevel, "log-level", "info", "decides the verbosity of emitted logs; debug, info, warn, error")
	fs.BoolVar(&prog.opts.JSON, "json", false, "output all emitted logs in the JSON format; results can be read from stderr")

	if err := fs.Parse(cliArgs[2:]); err != nil {
		return fmt.Errorf("failed parsing flags: %w", err)
	}

	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	if yamlFile != "" {
		f, err := prog.fsys.Open(yamlFile)
		if err != nil {
			return fmt.Errorf("%w: %w", errArgConfigMissing, err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)

		if err := dec.Decode(&yamlOpts); err != nil {
			return fmt.Errorf("%w: %w", errArgConfigMalformed, err)
		}
	}

	if !setFlags["source"] {
		prog.opts.Source = yamlOpts.Source
	}
	if !setFlags["destination"] {
		prog.opts.Destination = yamlOpts.Destination
	}
	if !setFlags["exclude-dir"] {
		prog.opts.ExcludeDirs = yamlOpts.ExcludeDirs
	}
	if !setFlags["exclude-ext"] {
		prog.opts.ExcludeExts = yamlOpts.ExcludeExts
	}
	if !setFlags["max-file-size-mb"] && yamlOpts.MaxFileSizeMB != 0 {
		prog.opts.MaxFileSizeMB = yamlOpts.MaxFileSizeMB
	}
	if !setFlags["workers"] && yamlOpts.Workers != 0 {
		prog.opts.Workers = yamlOpts.Workers
	}
	if !setFlags["dry-run"] {
		prog.opts.DryRun = yamlOpts.DryRun
	}
	if !setFlags["verify-only"] {
		prog.opts.VerifyOnly = yamlOpts.VerifyOnly
	}
	if !setFlags["log-level"] && yamlOpts.LogLevel != "" {
		prog.opts.LogLevel = yamlOpts.LogLevel
	}
	if !setFlags["json"] {
		prog.opts.JSON = yamlOpts.JSON
	}

	return nil
}

func (prog *program) validateOpts() error {
	if prog.opts.Verb == verbList {
		return nil
	}

	if prog.opts.Source == "" || prog.opts.Destination == "" {
		return errArgMissingSrcDst
	}

	prog.opts.Source = filepath.Clean(strings.TrimSpace(prog.opts.Source))
	prog.opts.Destination = filepath.Clean(strings.TrimSpace(prog.opts.Destination))

	if prog.opts.Source == prog.opts.Destination {
		return errArgSrcDstSame
	}

	if !filepath.IsAbs(prog.opts.Source) || !filepath.IsAbs(prog.opts.Destination) {
		return errArgSrcDstNotAbs
	}

	if prog.opts.MaxFileSizeMB < 0 {
		return errArgInvalidMaxSizeMB
	}

	if prog.opts.Workers < 1 {
		return errArgInvalidWorkers
	}

	if prog.opts.LogLevel != "" {
		if _, err := parseLogLevel(prog.opts.LogLevel); err != nil {
			return fmt.Errorf("%w: %q", err, prog.opts.LogLevel)
		}
	} else {
		prog.opts.LogLevel = strings.ToLower(defaultLogLevel.String())
	}

	return nil
}

func (prog *program) printOpts() error {
	if prog.opts.Verb == verbList {
		return nil
	}

	out, err := yaml.Marshal(prog.opts)
	if err != nil {
		return fmt.Errorf("failed printing configuration: %w", err)
	}

	fmt.Fprintf(prog.stdout, "configuration for '%s':\n", prog.opts.Verb)

	lines := strings.SplitSeq(string(out), "\n")
	for line := range lines {
		if line != "" {
			fmt.Fprintf(prog.stdout, "\t%s\n", line)
		}
	}

	fmt.Fprintln(prog.stdout)

	return nil
}

func (prog *program) logHandler() slog.Handler {
	logLevel, _ := parseLogLevel(prog.opts.LogLevel)

	if prog.opts.JSON {
		return slog.NewJSONHandler(prog.stderr, &slog.HandlerOptions{Level: logLevel})
	}

	return tint.NewHandler(prog.stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.TimeOnly,
	})
}
