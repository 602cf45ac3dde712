// Package registry declares the settings a configuration block expects.
//
// Each setting records its key, shape, value type and default. A registry
// persists defaults into a Configuration without touching user-supplied
// values, checks present values against their declared types, and reports
// keys nobody declared.
package registry

import (
	"github.com/dshills/typedconf/internal/config"
)

// Kind is the shape of a setting's value.
type Kind uint8

const (
	// KindScalar is a single value.
	KindScalar Kind = iota
	// KindArray is a flat list.
	KindArray
	// KindMatrix is a list of rows.
	KindMatrix
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindMatrix:
		return "matrix"
	default:
		return "unknown"
	}
}

// Setting describes one configuration key.
type Setting struct {
	// Key is the configuration key.
	Key string

	// Kind is the value shape.
	Kind Kind

	// Type is the element type name.
	Type string

	// Default is the default value as raw text.
	Default string

	// Description is human-readable documentation.
	Description string

	// ReplacedBy names the key that supersedes a deprecated setting.
	ReplacedBy string

	// Required settings have no usable default and must be present.
	Required bool

	// Tags for filtering/grouping settings.
	Tags []string

	applyDefault func(*config.Configuration)
	check        func(*config.Configuration) error
}

// Deprecated reports whether the setting has been superseded.
func (s *Setting) Deprecated() bool {
	return s.ReplacedBy != ""
}

// HasTag reports whether the setting carries tag.
func (s *Setting) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Option configures a Setting at definition time.
type Option func(*Setting)

// WithDescription sets the setting's documentation.
func WithDescription(text string) Option {
	return func(s *Setting) {
		s.Description = text
	}
}

// WithTags attaches tags to the setting.
func WithTags(tags ...string) Option {
	return func(s *Setting) {
		s.Tags = append(s.Tags, tags...)
	}
}

// ReplacedBy marks the setting deprecated in favour of key. When the
// registry is applied, a value under the old key is copied to key.
func ReplacedBy(key string) Option {
	return func(s *Setting) {
		s.ReplacedBy = key
	}
}

// Required marks the setting mandatory. Apply never writes its default and
// Validate reports it when absent.
func Required() Option {
	return func(s *Setting) {
		s.Required = true
	}
}
