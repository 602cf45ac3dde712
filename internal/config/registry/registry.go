package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/typedconf/internal/config"
	"github.com/dshills/typedconf/internal/config/convert"
	"github.com/dshills/typedconf/internal/config/value"
)

// ErrSettingAlreadyRegistered indicates an attempt to define a key twice.
var ErrSettingAlreadyRegistered = errors.New("setting already registered")

// Registry maintains the settings declared for a configuration block.
type Registry struct {
	mu       sync.RWMutex
	settings map[string]*Setting
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		settings: make(map[string]*Setting),
	}
}

// Define declares a scalar setting with a typed default.
func Define[T any](r *Registry, key string, def T, conv convert.Converter[T], opts ...Option) error {
	return r.register(&Setting{
		Key:     key,
		Kind:    KindScalar,
		Type:    conv.TypeName(),
		Default: conv.Format(def),
		applyDefault: func(c *config.Configuration) {
			config.SetDefault(c, key, def, conv)
		},
		check: func(c *config.Configuration) error {
			_, err := config.Get(c, key, conv)
			return err
		},
	}, opts)
}

// DefineArray declares a list setting with a typed default.
func DefineArray[T any](r *Registry, key string, def []T, conv convert.Converter[T], opts ...Option) error {
	text := make([]string, len(def))
	for i, v := range def {
		text[i] = conv.Format(v)
	}
	return r.register(&Setting{
		Key:     key,
		Kind:    KindArray,
		Type:    conv.TypeName(),
		Default: value.FormatList(text),
		applyDefault: func(c *config.Configuration) {
			config.SetDefaultArray(c, key, def, conv)
		},
		check: func(c *config.Configuration) error {
			_, err := config.GetArray(c, key, conv)
			return err
		},
	}, opts)
}

// ErrEmptyRow indicates a matrix default with a row that has no cells.
var ErrEmptyRow = errors.New("matrix default has an empty row")

// DefineMatrix declares a matrix setting with a typed default. A default
// with an empty row is rejected with ErrEmptyRow.
func DefineMatrix[T any](r *Registry, key string, def config.Matrix[T], conv convert.Converter[T], opts ...Option) error {
	rows := make([][]string, len(def))
	for i, row := range def {
		if len(row) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyRow, key)
		}
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = conv.Format(v)
		}
	}
	return r.register(&Setting{
		Key:     key,
		Kind:    KindMatrix,
		Type:    conv.TypeName(),
		Default: value.FormatMatrix(rows),
		applyDefault: func(c *config.Configuration) {
			// Rows were checked above, so the write cannot fail.
			_ = config.SetDefaultMatrix(c, key, def, conv)
		},
		check: func(c *config.Configuration) error {
			_, err := config.GetMatrix(c, key, conv)
			return err
		},
	}, opts)
}

// MustDefine is like Define but panics on error.
// Useful for declaring built-in settings at init time.
func MustDefine[T any](r *Registry, key string, def T, conv convert.Converter[T], opts ...Option) {
	if err := Define(r, key, def, conv, opts...); err != nil {
		panic(err)
	}
}

func (r *Registry) register(s *Setting, opts []Option) error {
	for _, opt := range opts {
		opt(s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[s.Key]; exists {
		return fmt.Errorf("%w: %s", ErrSettingAlreadyRegistered, s.Key)
	}
	r.settings[s.Key] = s
	return nil
}

// Get returns the setting for key, or nil if it is not registered.
func (r *Registry) Get(key string) *Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings[key]
}

// Has checks if a setting is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.settings[key]
	return exists
}

// Len returns the number of registered settings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.settings)
}

// All returns all settings sorted by key.
func (r *Registry) All() []*Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Setting, 0, len(r.settings))
	for _, s := range r.settings {
		result = append(result, s)
	}
	sortSettings(result)
	return result
}

// ByTag returns all settings with the given tag.
func (r *Registry) ByTag(tag string) []*Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Setting
	for _, s := range r.settings {
		if s.HasTag(tag) {
			result = append(result, s)
		}
	}
	sortSettings(result)
	return result
}

// Apply migrates deprecated keys to their replacements and then persists
// every default whose key is absent. It returns the keys that received a
// default.
func (r *Registry) Apply(c *config.Configuration) []string {
	settings := r.All()

	for _, s := range settings {
		if s.Deprecated() {
			c.SetAlias(s.ReplacedBy, s.Key, true)
		}
	}

	var written []string
	for _, s := range settings {
		if s.Deprecated() || s.Required || c.Has(s.Key) {
			continue
		}
		s.applyDefault(c)
		written = append(written, s.Key)
	}
	return written
}

// Validate reads every registered key that is present with its declared
// type and shape and returns the resulting errors, sorted by key. An
// absent required key yields a MissingKeyError.
func (r *Registry) Validate(c *config.Configuration) []error {
	var errs []error
	for _, s := range r.All() {
		if !s.Required && !c.Has(s.Key) {
			continue
		}
		if err := s.check(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Unknown returns the keys present in c that are not registered. It
// returns nil when the store cannot enumerate its keys.
func (r *Registry) Unknown(c *config.Configuration) []string {
	var unknown []string
	for _, key := range c.Keys() {
		if !r.Has(key) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func sortSettings(settings []*Setting) {
	sort.Slice(settings, func(i, j int) bool {
		return settings[i].Key < settings[j].Key
	})
}
