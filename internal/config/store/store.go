// Package store holds raw configuration text keyed by name.
//
// Stores are deliberately untyped: every value is the unparsed text the
// user wrote. Typed access lives in the config package.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrKeyNotFound is returned by At when a key has no entry.
var ErrKeyNotFound = errors.New("key not found")

// Store is a mapping from keys to raw text.
type Store interface {
	// Name identifies the configuration block, for diagnostics.
	Name() string
	// Has reports whether key has an entry.
	Has(key string) bool
	// At returns the raw text for key, or an error wrapping ErrKeyNotFound.
	At(key string) (string, error)
	// Set stores raw text for key, replacing any existing entry.
	Set(key, text string)
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	// Keys returns every key in sorted order.
	Keys() []string
}

// Section is an in-memory Store safe for concurrent use.
type Section struct {
	mu     sync.RWMutex
	name   string
	values map[string]string
}

// NewSection creates an empty section.
func NewSection(name string) *Section {
	return &Section{
		name:   name,
		values: make(map[string]string),
	}
}

// NewSectionWithValues creates a section holding a copy of values.
func NewSectionWithValues(name string, values map[string]string) *Section {
	s := NewSection(name)
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Name returns the section name.
func (s *Section) Name() string {
	return s.name
}

// Has reports whether key has an entry.
func (s *Section) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// At returns the raw text for key.
func (s *Section) At(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return text, nil
}

// Set stores raw text for key.
func (s *Section) Set(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = text
}

// Delete removes key. It reports whether the key existed.
func (s *Section) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return false
	}
	delete(s.values, key)
	return true
}

// Keys returns every key in sorted order.
func (s *Section) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.values)
}

// Len returns the number of entries.
func (s *Section) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a copy of all entries.
func (s *Section) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Replace swaps the section's entries for a copy of values in one step.
func (s *Section) Replace(values map[string]string) {
	next := make(map[string]string, len(values))
	for k, v := range values {
		next[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = next
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
