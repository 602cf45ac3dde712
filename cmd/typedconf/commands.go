package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/tidwall/match"
	"golang.org/x/term"

	"github.com/dshills/typedconf/internal/config"
	"github.com/dshills/typedconf/internal/config/convert"
	"github.com/dshills/typedconf/internal/config/loader"
	"github.com/dshills/typedconf/internal/config/notify"
	"github.com/dshills/typedconf/internal/config/registry"
	"github.com/dshills/typedconf/internal/config/store"
	"github.com/dshills/typedconf/internal/config/watcher"
)

var errUsage = errors.New("usage")

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

type command func(s *session, args []string, out io.Writer) error

var commands = map[string]command{
	"get":         cmdGet,
	"get-array":   cmdGetArray,
	"get-matrix":  cmdGetMatrix,
	"set":         cmdSet,
	"set-default": cmdSetDefault,
	"check":       cmdCheck,
	"list":        cmdList,
	"export":      cmdExport,
	"watch":       cmdWatch,
}

// typedOps runs the generic accessors for one converter and renders
// results back to text.
type typedOps struct {
	get        func(c *config.Configuration, key string) (string, error)
	getArray   func(c *config.Configuration, key string) ([]string, error)
	getMatrix  func(c *config.Configuration, key string) ([][]string, error)
	set        func(c *config.Configuration, key string, texts []string) error
	setDefault func(c *config.Configuration, key, text string) error
	define     func(r *registry.Registry, d declaration) error
}

func opsFor[T any](conv convert.Converter[T]) typedOps {
	return typedOps{
		get: func(c *config.Configuration, key string) (string, error) {
			v, err := config.Get(c, key, conv)
			if err != nil {
				return "", err
			}
			return conv.Format(v), nil
		},
		getArray: func(c *config.Configuration, key string) ([]string, error) {
			vs, err := config.GetArray(c, key, conv)
			if err != nil {
				return nil, err
			}
			return formatRow(vs, conv), nil
		},
		getMatrix: func(c *config.Configuration, key string) ([][]string, error) {
			m, err := config.GetMatrix(c, key, conv)
			if err != nil {
				return nil, err
			}
			rows := make([][]string, len(m))
			for i, row := range m {
				rows[i] = formatRow(row, conv)
			}
			return rows, nil
		},
		set: func(c *config.Configuration, key string, texts []string) error {
			vs := make([]T, len(texts))
			for i, text := range texts {
				v, err := conv.Parse(text)
				if err != nil {
					return err
				}
				vs[i] = v
			}
			if len(vs) == 1 {
				config.Set(c, key, vs[0], conv)
			} else {
				config.SetArray(c, key, vs, conv)
			}
			return nil
		},
		setDefault: func(c *config.Configuration, key, text string) error {
			v, err := conv.Parse(text)
			if err != nil {
				return err
			}
			config.SetDefault(c, key, v, conv)
			return nil
		},
		define: func(r *registry.Registry, d declaration) error {
			var opts []registry.Option
			if !d.hasDefault {
				opts = append(opts, registry.Required())
			}
			// Defaults go through the same grammar as stored values.
			scratch := config.New(store.NewSectionWithValues("default", map[string]string{d.key: d.def}))

			switch d.kind {
			case registry.KindArray:
				var def []T
				if d.hasDefault {
					var err error
					if def, err = config.GetArray(scratch, d.key, conv); err != nil {
						return err
					}
				}
				return registry.DefineArray(r, d.key, def, conv, opts...)
			case registry.KindMatrix:
				var def config.Matrix[T]
				if d.hasDefault {
					var err error
					if def, err = config.GetMatrix(scratch, d.key, conv); err != nil {
						return err
					}
				}
				return registry.DefineMatrix(r, d.key, def, conv, opts...)
			default:
				var def T
				if d.hasDefault {
					var err error
					if def, err = config.Get(scratch, d.key, conv); err != nil {
						return err
					}
				}
				return registry.Define(r, d.key, def, conv, opts...)
			}
		},
	}
}

func formatRow[T any](vs []T, conv convert.Converter[T]) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = conv.Format(v)
	}
	return out
}

var typeOps = map[string]typedOps{
	"int":      opsFor(convert.Int[int64]()),
	"uint":     opsFor(convert.Uint[uint64]()),
	"float":    opsFor(convert.Float[float64]()),
	"bool":     opsFor(convert.Bool()),
	"string":   opsFor(convert.String()),
	"duration": opsFor(convert.Duration()),
	"size":     opsFor(convert.Size()),
	"color":    opsFor(convert.Color()),
}

func typeNames() string {
	names := make([]string, 0, len(typeOps))
	for name := range typeOps {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func cmdGet(s *session, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usagef("get takes exactly one key")
	}
	text, err := s.ops.get(s.cfg, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}

func cmdGetArray(s *session, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usagef("get-array takes exactly one key")
	}
	elems, err := s.ops.getArray(s.cfg, args[0])
	if err != nil {
		return err
	}
	for _, e := range elems {
		fmt.Fprintln(out, e)
	}
	return nil
}

func cmdGetMatrix(s *session, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usagef("get-matrix takes exactly one key")
	}
	rows, err := s.ops.getMatrix(s.cfg, args[0])
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, " "))
	}
	return nil
}

func cmdSet(s *session, args []string, out io.Writer) error {
	if len(args) < 2 {
		return usagef("set takes a key and at least one value")
	}
	key := args[0]
	shadowed := s.layered.Shadowed(key)
	if err := s.ops.set(s.cfg, key, args[1:]); err != nil {
		return fmt.Errorf("key '%s': %w", key, err)
	}

	text, _ := s.cfg.Text(key)
	if shadowed {
		// The session sees the new value; the file keeps it for --write.
		if old, err := s.file.At(key); err != nil || old != text {
			s.file.Set(key, text)
			s.dirty = true
		}
		source, _ := s.layered.Source(key)
		s.logger.Warn("stored value is overridden by a read-only layer",
			"section", s.opts.section,
			"key", key,
			"source", source,
		)
	}
	fmt.Fprintf(out, "%s = %s\n", key, text)
	return nil
}

func cmdSetDefault(s *session, args []string, out io.Writer) error {
	if len(args) != 2 {
		return usagef("set-default takes a key and a value")
	}
	key := args[0]
	if err := s.ops.setDefault(s.cfg, key, args[1]); err != nil {
		return fmt.Errorf("key '%s': %w", key, err)
	}

	text, _ := s.cfg.Text(key)
	fmt.Fprintf(out, "%s = %s\n", key, text)
	return nil
}

func cmdList(s *session, args []string, out io.Writer) error {
	if len(args) > 1 {
		return usagef("list takes at most one pattern")
	}
	pattern := "*"
	if len(args) == 1 {
		pattern = args[0]
	}

	for _, key := range s.layered.Keys() {
		if !match.Match(key, pattern) {
			continue
		}
		text, err := s.cfg.Text(key)
		if err != nil {
			continue
		}
		source, _ := s.layered.Source(key)
		fmt.Fprintf(out, "%s = %s\t(%s)\n", key, text, source)
	}
	return nil
}

func cmdExport(s *session, args []string, out io.Writer) error {
	if len(args) != 0 {
		return usagef("export takes no arguments")
	}
	data, err := loader.ExportJSON(s.sections, s.opts.pretty || isTerminal(out))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func cmdWatch(s *session, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usagef("watch takes exactly one key")
	}
	key := args[0]

	show := func() {
		text, err := s.ops.get(s.cfg, key)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", key, err)
			return
		}
		fmt.Fprintf(out, "%s = %s\n", key, text)
	}

	sub := s.notifier.SubscribePath(s.opts.section+"."+key, func(c notify.Change) {
		if c.Type != notify.ChangeReload {
			show()
		}
	})
	defer sub.Unsubscribe()

	reloader := watcher.NewReloader(s.loader, s.logger, s.file)
	reloader.SetNotifier(s.notifier)
	w := watcher.New(watcher.WithLogger(s.logger))
	w.OnChange(reloader.Handler())

	if err := w.Watch(s.loader.Path()); err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	show()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	<-signals
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
