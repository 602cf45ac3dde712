// Package main is the entry point for the typedconf command, which reads,
// writes and exports typed values from a configuration file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/dshills/typedconf/internal/config"
	"github.com/dshills/typedconf/internal/config/loader"
	"github.com/dshills/typedconf/internal/config/notify"
	"github.com/dshills/typedconf/internal/config/store"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	file      string
	section   string
	typeName  string
	logLevel  string
	envPrefix string
	write     string
	pretty    bool
	command   string
	args      []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	opts, code, ok := parseFlags(argv, stdout, stderr)
	if !ok {
		return code
	}

	logger := newLogger(stderr, opts.logLevel)

	session, err := openSession(opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer session.notifier.Close()

	cmd, found := commands[opts.command]
	if !found {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", opts.command)
		return 2
	}

	if err := cmd(session, opts.args, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}

	if session.dirty && opts.write != "" {
		if err := session.save(opts.write); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		logger.Info("configuration written", "path", opts.write)
	}
	return 0
}

func parseFlags(argv []string, stdout, stderr io.Writer) (options, int, bool) {
	var opts options
	var showVersion bool

	flagSet := pflag.NewFlagSet("typedconf", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.file, "file", "f", "", "configuration file (.toml, .yaml, .json, .jsonc, .hcl)")
	flagSet.StringVarP(&opts.section, "section", "s", loader.GlobalSection, "section to read and write")
	flagSet.StringVarP(&opts.typeName, "type", "t", "string", "value type ("+typeNames()+")")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.StringVar(&opts.envPrefix, "env-prefix", "", "read PREFIX_SECTION_KEY environment overrides")
	flagSet.StringVarP(&opts.write, "write", "w", "", "persist changes as JSON to this file")
	flagSet.BoolVar(&opts.pretty, "pretty", false, "indent exported JSON")
	flagSet.BoolVarP(&showVersion, "version", "v", false, "show version information")

	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return opts, 0, false
		}
		return opts, 2, false
	}

	if showVersion {
		fmt.Fprintf(stdout, "typedconf %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, 0, false
	}

	// Validate log level
	switch opts.logLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		return opts, 2, false
	}

	if _, ok := typeOps[opts.typeName]; !ok {
		fmt.Fprintf(stderr, "Error: invalid type %q (must be one of %s)\n", opts.typeName, typeNames())
		return opts, 2, false
	}

	if opts.file == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		return opts, 2, false
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(stderr, flagSet)
		return opts, 2, false
	}
	opts.command = args[0]
	opts.args = args[1:]
	return opts, 0, true
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `typedconf - typed access to configuration files

Usage:
  typedconf --file FILE [flags] COMMAND [ARGS...]

Commands:
  get KEY                 print a single value
  get-array KEY           print each element of a list
  get-matrix KEY          print each row of a two-dimensional list
  set KEY VALUE...        store one value, or a list when several are given
  set-default KEY VALUE   store VALUE only if KEY is absent
  check DECL...           declare KEY:TYPE[=DEFAULT] settings (TYPE[] for a
                          list, TYPE[][] for a matrix), write missing
                          defaults and validate present values
  list [PATTERN]          print keys matching a wildcard pattern
  export                  print every section as JSON
  watch KEY               print KEY again whenever the file changes

Flags:
`)
	flagSet.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  typedconf -f run.toml -s detector -t int get threads
  typedconf -f run.toml -s detector -t float get-array pitch
  typedconf -f run.toml -s detector -t duration -w run.json set timeout 5s
  typedconf -f run.toml -s detector check threads:int=4 pitch:float[] orientation:int[][]
  TC_DETECTOR_THREADS=8 typedconf -f run.toml --env-prefix TC_ -s detector list
`)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// session is the loaded state a command operates on.
type session struct {
	opts     options
	logger   *slog.Logger
	loader   *loader.FileLoader
	sections []*store.Section
	file     *store.Section
	layered  *store.Layered
	cfg      *config.Configuration
	notifier *notify.Notifier
	ops      typedOps
	dirty    bool
}

func openSession(opts options, logger *slog.Logger) (*session, error) {
	fl, err := loader.NewFileLoader(opts.file)
	if err != nil {
		return nil, err
	}
	sections, err := fl.Load()
	if err != nil {
		return nil, err
	}

	var file *store.Section
	for _, s := range sections {
		if s.Name() == opts.section {
			file = s
		}
	}
	if file == nil {
		file = store.NewSection(opts.section)
		sections = append(sections, file)
	}

	layered := store.NewLayered(opts.section, store.Layer{
		Name:     "file",
		Priority: 10,
		Store:    file,
	})

	if opts.envPrefix != "" {
		envSections, err := loader.NewEnvLoader(opts.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		for _, s := range envSections {
			if s.Name() == opts.section {
				layered.AddLayer(store.Layer{
					Name:     "env",
					Priority: 20,
					Store:    s,
					ReadOnly: true,
				})
				logger.Debug("environment overrides loaded", "section", s.Name(), "keys", s.Len())
			}
		}
	}

	baseDir := filepath.Dir(opts.file)
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}

	s := &session{
		opts:     opts,
		logger:   logger,
		loader:   fl,
		sections: sections,
		file:     file,
		layered:  layered,
		notifier: notify.New(),
		ops:      typeOps[opts.typeName],
	}
	s.cfg = config.New(layered,
		config.WithLogger(logger),
		config.WithBaseDir(baseDir),
		config.WithNotifier(s.notifier),
	)

	// Writes made by commands mark the session for --write; reloads of
	// the source file do not.
	s.notifier.Subscribe(func(c notify.Change) {
		if c.Source == "reload" {
			return
		}
		s.dirty = true
		logger.Info("configuration changed",
			"section", c.Section,
			"key", c.Key,
			"old", c.OldValue,
			"new", c.NewValue,
			"source", c.Source,
		)
	})
	return s, nil
}

func (s *session) save(path string) error {
	data, err := loader.ExportJSON(s.sections, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
