package loader

import (
	"os"
	"sort"
	"strings"

	"github.com/dshills/typedconf/internal/config/store"
)

// EnvLoader loads configuration from environment variables.
//
// A variable named PREFIX_SECTION_KEY sets key in section, both lower
// cased; underscores after the section name stay part of the key, so
// TC_DETECTOR_NUMBER_OF_PIXELS maps to detector.number_of_pixels. Values
// are taken verbatim as raw text.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "TC_")
	mapping map[string]string // Env var -> section.key
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "TC_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
		environ: os.Environ,
	}
}

// NewEnvLoaderWithMapping creates a loader with explicit variable to
// section.key mappings. Mapped variables need not carry the prefix.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	l := NewEnvLoader(prefix)
	for env, path := range mapping {
		l.mapping[env] = path
	}
	return l
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, path string) {
	l.mapping[envVar] = path
}

// RemoveMapping removes an environment variable mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// Load reads the environment and returns one section per section name
// found, sorted by name.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() ([]*store.Section, error) {
	values := make(map[string]map[string]string)
	set := func(path, text string) {
		section, key, ok := strings.Cut(path, ".")
		if !ok || section == "" || key == "" {
			return
		}
		if values[section] == nil {
			values[section] = make(map[string]string)
		}
		values[section][key] = text
	}

	env := make(map[string]string)
	for _, kv := range l.environ() {
		name, val, ok := strings.Cut(kv, "=")
		if ok {
			env[name] = val
		}
	}

	for name, val := range env {
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		if l.prefix == "" || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		set(l.envToPath(name), val)
	}

	// Explicit mappings win over derived names.
	for name, path := range l.mapping {
		if val, ok := env[name]; ok {
			set(path, val)
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]*store.Section, 0, len(names))
	for _, name := range names {
		sections = append(sections, store.NewSectionWithValues(name, values[name]))
	}
	return sections, nil
}

// envToPath converts TC_DETECTOR_TIME_OFFSET to detector.time_offset.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return ""
	}
	return section + "." + key
}
