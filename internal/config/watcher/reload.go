package watcher

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/dshills/typedconf/internal/config/loader"
	"github.com/dshills/typedconf/internal/config/notify"
	"github.com/dshills/typedconf/internal/config/store"
)

// Reloader refreshes live sections from a loader. Sections are matched by
// name; a target whose section disappeared from the source is emptied.
type Reloader struct {
	mu       sync.Mutex
	loader   loader.Loader
	targets  map[string]*store.Section
	logger   *slog.Logger
	notifier *notify.Notifier
}

// NewReloader creates a reloader for the given target sections.
func NewReloader(l loader.Loader, logger *slog.Logger, targets ...*store.Section) *Reloader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Reloader{
		loader:  l,
		targets: make(map[string]*store.Section, len(targets)),
		logger:  logger,
	}
	for _, s := range targets {
		r.targets[s.Name()] = s
	}
	return r
}

// SetNotifier publishes one change per modified key, followed by a reload
// event per section, after every successful reload.
func (r *Reloader) SetNotifier(n *notify.Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifier = n
}

// Reload reads the source and replaces the content of every target
// section. On error the targets are left untouched.
func (r *Reloader) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sections, err := r.loader.Load()
	if err != nil {
		return err
	}

	fresh := make(map[string]map[string]string, len(sections))
	for _, s := range sections {
		fresh[s.Name()] = s.Snapshot()
	}

	var batch *notify.Batch
	if r.notifier != nil {
		batch = r.notifier.NewBatch()
	}

	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target := r.targets[name]
		values, ok := fresh[name]
		if !ok {
			values = map[string]string{}
		}
		if batch != nil {
			batch.Diff(name, target.Snapshot(), values, "reload")
		}
		target.Replace(values)
		r.logger.Debug("configuration section reloaded", "section", name, "keys", len(values))
	}

	if batch != nil {
		batch.Commit()
		for _, name := range names {
			r.notifier.NotifyReload(name, "reload")
		}
	}
	return nil
}

// Handler returns a watch handler that reloads on every event and logs
// failures.
func (r *Reloader) Handler() Handler {
	return func(event Event) {
		if err := r.Reload(); err != nil {
			r.logger.Error("configuration reload failed",
				"path", event.Path,
				"op", event.Op.String(),
				"error", err,
			)
			return
		}
		r.logger.Info("configuration reloaded", "path", event.Path, "op", event.Op.String())
	}
}
