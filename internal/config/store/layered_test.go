package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestLayered_Precedence(t *testing.T) {
	file := NewSectionWithValues("app", map[string]string{"port": "80", "host": "localhost"})
	env := NewSectionWithValues("app", map[string]string{"port": "8080"})

	l := NewLayered("app",
		Layer{Name: "file", Priority: 10, Store: file},
		Layer{Name: "env", Priority: 20, Store: env, ReadOnly: true},
	)

	tests := []struct {
		key    string
		want   string
		source string
	}{
		{"port", "8080", "env"},
		{"host", "localhost", "file"},
	}
	for _, tt := range tests {
		got, err := l.At(tt.key)
		if err != nil {
			t.Fatalf("At(%q): %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("At(%q) = %q, want %q", tt.key, got, tt.want)
		}
		if src, _ := l.Source(tt.key); src != tt.source {
			t.Errorf("Source(%q) = %q, want %q", tt.key, src, tt.source)
		}
	}

	if _, err := l.At("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("At(missing): err = %v, want ErrKeyNotFound", err)
	}
	if l.Has("missing") {
		t.Error("Has(missing) = true")
	}

	if keys := l.Keys(); !reflect.DeepEqual(keys, []string{"host", "port"}) {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestLayered_SetSkipsReadOnly(t *testing.T) {
	file := NewSection("app")
	env := NewSection("app")
	l := NewLayered("app",
		Layer{Name: "file", Priority: 10, Store: file},
		Layer{Name: "env", Priority: 20, Store: env, ReadOnly: true},
	)

	l.Set("debug", "true")

	if !file.Has("debug") {
		t.Error("write did not reach the writable layer")
	}
	if env.Has("debug") {
		t.Error("write reached the read-only layer")
	}
}

func TestLayered_RuntimeLayer(t *testing.T) {
	env := NewSectionWithValues("app", map[string]string{"port": "8080"})
	l := NewLayered("app", Layer{Name: "env", Priority: 5, Store: env, ReadOnly: true})

	l.Set("port", "9090")

	got, err := l.At("port")
	if err != nil {
		t.Fatal(err)
	}
	if got != "9090" {
		t.Errorf("At(port) = %q, want '9090'", got)
	}
	if src, _ := l.Source("port"); src != "runtime" {
		t.Errorf("Source(port) = %q, want 'runtime'", src)
	}
	if v, _ := env.At("port"); v != "8080" {
		t.Errorf("read-only layer modified: %q", v)
	}

	layers := l.Layers()
	if len(layers) != 2 || layers[0].Name != "runtime" || layers[0].Priority != 6 {
		t.Errorf("unexpected layers: %+v", layers)
	}
}

func TestLayered_SetShadowedKey(t *testing.T) {
	file := NewSectionWithValues("app", map[string]string{"threads": "4"})
	env := NewSectionWithValues("app", map[string]string{"threads": "8"})
	l := NewLayered("app",
		Layer{Name: "file", Priority: 10, Store: file},
		Layer{Name: "env", Priority: 20, Store: env, ReadOnly: true},
	)

	if !l.Shadowed("threads") {
		t.Error("Shadowed(threads) = false")
	}
	if l.Shadowed("debug") {
		t.Error("Shadowed(debug) = true")
	}

	l.Set("threads", "2")
	if got, _ := l.At("threads"); got != "2" {
		t.Errorf("At(threads) = %q, want '2'", got)
	}
	if src, _ := l.Source("threads"); src != "runtime" {
		t.Errorf("Source(threads) = %q, want 'runtime'", src)
	}
	if v, _ := file.At("threads"); v != "4" {
		t.Errorf("file layer modified: %q", v)
	}
	if v, _ := env.At("threads"); v != "8" {
		t.Errorf("read-only layer modified: %q", v)
	}

	// Unshadowed keys still reach the writable layer.
	l.Set("debug", "true")
	if !file.Has("debug") {
		t.Error("unshadowed write did not reach the file layer")
	}

	// Later writes to a runtime key stay in the runtime layer.
	l.Set("threads", "3")
	if got, _ := l.At("threads"); got != "3" {
		t.Errorf("At(threads) = %q, want '3'", got)
	}

	if !l.RemoveLayer("runtime") {
		t.Fatal("RemoveLayer(runtime) = false")
	}
	l.Set("threads", "5")
	if got, _ := l.At("threads"); got != "5" {
		t.Errorf("At(threads) after removing runtime = %q, want '5'", got)
	}
}

func TestLayered_RemoveLayer(t *testing.T) {
	l := NewLayered("app",
		Layer{Name: "a", Priority: 1, Store: NewSectionWithValues("app", map[string]string{"k": "a"})},
		Layer{Name: "b", Priority: 2, Store: NewSectionWithValues("app", map[string]string{"k": "b"})},
	)

	if !l.RemoveLayer("b") {
		t.Fatal("RemoveLayer(b) = false")
	}
	if l.RemoveLayer("b") {
		t.Error("second RemoveLayer(b) = true")
	}
	if v, _ := l.At("k"); v != "a" {
		t.Errorf("At(k) = %q, want 'a'", v)
	}
}
