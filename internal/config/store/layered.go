package store

import (
	"fmt"
	"sort"
	"sync"
)

// Layer is one source of values inside a Layered store.
type Layer struct {
	// Name identifies the layer (e.g., "file", "env").
	Name string

	// Priority determines lookup order (higher wins).
	Priority int

	// Store holds the layer's values.
	Store Store

	// ReadOnly prevents Set from writing to this layer.
	ReadOnly bool
}

// Layered combines several stores. Lookups consult layers from highest to
// lowest priority. Writes go to the highest priority writable layer unless
// a read-only layer above it holds the key; such writes land in a
// "runtime" layer on top so that At returns what was written.
type Layered struct {
	mu      sync.RWMutex
	name    string
	layers  []Layer // sorted by priority, descending
	runtime *Section
}

// NewLayered creates an empty layered store named name.
func NewLayered(name string, layers ...Layer) *Layered {
	l := &Layered{name: name}
	for _, layer := range layers {
		l.AddLayer(layer)
	}
	return l
}

// AddLayer adds a layer and keeps layers ordered by priority. Layers with
// equal priority keep insertion order.
func (l *Layered) AddLayer(layer Layer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.layers = append(l.layers, layer)
	sort.SliceStable(l.layers, func(i, j int) bool {
		return l.layers[i].Priority > l.layers[j].Priority
	})
}

// RemoveLayer removes a layer by name and reports whether it was found.
func (l *Layered) RemoveLayer(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, layer := range l.layers {
		if layer.Name == name {
			if l.isRuntime(layer) {
				l.runtime = nil
			}
			l.layers = append(l.layers[:i], l.layers[i+1:]...)
			return true
		}
	}
	return false
}

// Layers returns the layers from highest to lowest priority.
func (l *Layered) Layers() []Layer {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Layer, len(l.layers))
	copy(out, l.layers)
	return out
}

// Name returns the block name.
func (l *Layered) Name() string {
	return l.name
}

// Has reports whether any layer has key.
func (l *Layered) Has(key string) bool {
	_, ok := l.Source(key)
	return ok
}

// At returns the text from the highest priority layer holding key.
func (l *Layered) At(key string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, layer := range l.layers {
		if layer.Store.Has(key) {
			return layer.Store.At(key)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}

// Shadowed reports whether a read-only layer supplies key ahead of every
// writable layer, so a write to key would not reach persistent storage.
func (l *Layered) Shadowed(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, layer := range l.layers {
		if l.isRuntime(layer) {
			continue
		}
		if !layer.ReadOnly {
			return false
		}
		if layer.Store.Has(key) {
			return true
		}
	}
	return false
}

// Source returns the name of the layer that currently supplies key.
func (l *Layered) Source(key string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, layer := range l.layers {
		if layer.Store.Has(key) {
			return layer.Name, true
		}
	}
	return "", false
}

// Set writes to the highest priority writable layer. When every layer is
// read-only, or a read-only layer shadows key, the write goes to a
// "runtime" layer above all others, created on first use. A key already
// held by the runtime layer stays there.
func (l *Layered) Set(key, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, layer := range l.layers {
		if l.isRuntime(layer) {
			if layer.Store.Has(key) {
				break
			}
			continue
		}
		if !layer.ReadOnly {
			layer.Store.Set(key, text)
			return
		}
		if layer.Store.Has(key) {
			break
		}
	}

	if l.runtime == nil {
		l.runtime = NewSection(l.name)
		priority := 0
		if len(l.layers) > 0 {
			priority = l.layers[0].Priority + 1
		}
		l.layers = append([]Layer{{Name: "runtime", Priority: priority, Store: l.runtime}}, l.layers...)
	}
	l.runtime.Set(key, text)
}

func (l *Layered) isRuntime(layer Layer) bool {
	return l.runtime != nil && layer.Store == Store(l.runtime)
}

// Keys returns the union of keys across layers that implement Lister.
func (l *Layered) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]string)
	for _, layer := range l.layers {
		lister, ok := layer.Store.(Lister)
		if !ok {
			continue
		}
		for _, k := range lister.Keys() {
			seen[k] = ""
		}
	}
	return sortedKeys(seen)
}
