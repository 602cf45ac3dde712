package config

import (
	"io"
	"log/slog"

	"github.com/dshills/typedconf/internal/config/notify"
	"github.com/dshills/typedconf/internal/config/store"
)

// Configuration provides typed access to one block of raw configuration
// text. It holds no state of its own beyond the store: every read parses
// the current raw text afresh.
//
// Configuration does not synchronize access. Stores shared between
// goroutines must synchronize themselves, as store.Section does.
type Configuration struct {
	store    store.Store
	baseDir  string
	logger   *slog.Logger
	notifier *notify.Notifier
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithLogger sets the logger used for write and migration messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Configuration) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseDir sets the directory relative paths are resolved against,
// usually the directory of the file the values were loaded from.
func WithBaseDir(dir string) Option {
	return func(c *Configuration) {
		c.baseDir = dir
	}
}

// WithNotifier publishes every write made through the Configuration.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *Configuration) {
		c.notifier = n
	}
}

// New creates a Configuration over s.
func New(s store.Store, opts ...Option) *Configuration {
	c := &Configuration{
		store:  s,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the owning block's name.
func (c *Configuration) Name() string {
	return c.store.Name()
}

// Store returns the underlying store.
func (c *Configuration) Store() store.Store {
	return c.store
}

// Has reports whether key has an entry.
func (c *Configuration) Has(key string) bool {
	return c.store.Has(key)
}

// Count returns how many of keys have an entry.
func (c *Configuration) Count(keys ...string) int {
	n := 0
	for _, key := range keys {
		if c.store.Has(key) {
			n++
		}
	}
	return n
}

// Keys returns every key when the store can enumerate them, nil otherwise.
func (c *Configuration) Keys() []string {
	if lister, ok := c.store.(store.Lister); ok {
		return lister.Keys()
	}
	return nil
}

// Text returns the raw, unparsed text of key.
func (c *Configuration) Text(key string) (string, error) {
	return c.lookup(key)
}

// SetText stores raw text for key without any conversion.
func (c *Configuration) SetText(key, text string) {
	c.write(key, text, "set")
	c.logger.Debug("set configuration value", "section", c.Name(), "key", key, "value", text)
}

// SetAlias copies the value of oldKey to newKey when newKey is absent. It
// is used when a key is renamed, so values written under the old name keep
// working. With warn set, a deprecation warning is logged when the alias
// is used.
func (c *Configuration) SetAlias(newKey, oldKey string, warn bool) {
	if !c.Has(oldKey) || c.Has(newKey) {
		return
	}

	text, err := c.store.At(oldKey)
	if err != nil {
		return
	}
	c.write(newKey, text, "alias")

	if warn {
		c.logger.Warn("deprecated configuration key",
			"section", c.Name(), "key", oldKey, "replacement", newKey)
	}
}

func (c *Configuration) write(key, text, source string) {
	if c.notifier == nil {
		c.store.Set(key, text)
		return
	}
	had := c.store.Has(key)
	old, _ := c.store.At(key)
	c.store.Set(key, text)
	if !had || old != text {
		c.notifier.NotifySet(c.Name(), key, old, text, source)
	}
}

// lookup fetches raw text. Any store failure, normally one wrapping
// store.ErrKeyNotFound, becomes a MissingKeyError.
func (c *Configuration) lookup(key string) (string, error) {
	text, err := c.store.At(key)
	if err != nil {
		return "", c.missing(key, err)
	}
	return text, nil
}
