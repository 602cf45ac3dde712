package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/typedconf/internal/config/convert"
	"github.com/dshills/typedconf/internal/config/store"
	"github.com/dshills/typedconf/internal/config/value"
)

func newTestConfig(values map[string]string) *Configuration {
	return New(store.NewSectionWithValues("detector", values))
}

func TestGet_MissingKey(t *testing.T) {
	cfg := newTestConfig(nil)

	_, err := Get(cfg, "absent", convert.Int[int]())
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("err = %v, want ErrMissingKey", err)
	}
	if errors.Is(err, ErrInvalidKey) {
		t.Error("missing key also matches ErrInvalidKey")
	}
	if !errors.Is(err, store.ErrKeyNotFound) {
		t.Error("store error is not reachable through MissingKeyError")
	}

	var missing *MissingKeyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingKeyError, got %T", err)
	}
	if missing.Key != "absent" || missing.Section != "detector" {
		t.Errorf("MissingKeyError = %+v", missing)
	}
}

func TestGetOr(t *testing.T) {
	cfg := newTestConfig(map[string]string{"present": "7", "bad": "x"})

	tests := []struct {
		key     string
		want    int
		wantErr error
	}{
		{"absent", 42, nil},
		{"present", 7, nil},
		{"bad", 0, ErrInvalidKey},
	}

	for _, tt := range tests {
		got, err := GetOr(cfg, tt.key, 42, convert.Int[int]())
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("GetOr(%q): err = %v, want %v", tt.key, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("GetOr(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestGet_InvalidValue(t *testing.T) {
	cfg := newTestConfig(map[string]string{"bad": "notanumber"})

	_, err := Get(cfg, "bad", convert.Int[int]())
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("err = %v, want ErrInvalidKey", err)
	}
	if !errors.Is(err, convert.ErrMalformed) {
		t.Error("conversion cause is not reachable")
	}

	var invalid *InvalidKeyError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidKeyError, got %T", err)
	}
	if invalid.Text != "notanumber" {
		t.Errorf("Text = %q, want 'notanumber'", invalid.Text)
	}
	if invalid.Type != "int" {
		t.Errorf("Type = %q, want 'int'", invalid.Type)
	}
	if invalid.Section != "detector" || invalid.Key != "bad" {
		t.Errorf("InvalidKeyError = %+v", invalid)
	}
	if !strings.Contains(err.Error(), "notanumber") || !strings.Contains(err.Error(), "detector") {
		t.Errorf("message lacks context: %s", err)
	}
}

func TestGet_Overflow(t *testing.T) {
	cfg := newTestConfig(map[string]string{"huge": "99999999999999999999"})

	_, err := Get(cfg, "huge", convert.Int[int]())
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("err = %v, want ErrInvalidKey", err)
	}
	if !errors.Is(err, convert.ErrOverflow) {
		t.Errorf("err = %v, want overflow cause", err)
	}

	var invalid *InvalidKeyError
	errors.As(err, &invalid)
	if invalid.Reason != convert.ErrOverflow.Error() {
		t.Errorf("Reason = %q", invalid.Reason)
	}
}

func TestGet_ListIsNotScalar(t *testing.T) {
	cfg := newTestConfig(map[string]string{"list": "1,2", "broken": "[1"})

	_, err := Get(cfg, "list", convert.Int[int]())
	if !errors.Is(err, ErrInvalidKey) || !errors.Is(err, errNotSingleValue) {
		t.Errorf("list as scalar: err = %v", err)
	}

	_, err = Get(cfg, "broken", convert.Int[int]())
	if !errors.Is(err, ErrInvalidKey) || !errors.Is(err, value.ErrMalformed) {
		t.Errorf("malformed structure: err = %v", err)
	}
}

func TestGet_QuotedString(t *testing.T) {
	cfg := newTestConfig(map[string]string{"name": `"telescope, upstream"`})

	got, err := cfg.GetString("name")
	if err != nil {
		t.Fatalf("GetString failed: %v", err)
	}
	if got != "telescope, upstream" {
		t.Errorf("name = %q", got)
	}
}

func TestGet_Idempotent(t *testing.T) {
	cfg := newTestConfig(map[string]string{"m": "[1,2],[3]"})

	a, err := GetMatrix(cfg, "m", convert.Int[int]())
	if err != nil {
		t.Fatal(err)
	}
	b, err := GetMatrix(cfg, "m", convert.Int[int]())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated reads differ: %v vs %v", a, b)
	}
}

func TestGetArray(t *testing.T) {
	cfg := newTestConfig(map[string]string{
		"a":      "1,2,3",
		"empty":  "",
		"single": "5",
		"spaced": " 4 , 5 ",
	})

	tests := []struct {
		key  string
		want []int
	}{
		{"a", []int{1, 2, 3}},
		{"empty", []int{}},
		{"single", []int{5}},
		{"spaced", []int{4, 5}},
	}

	for _, tt := range tests {
		got, err := GetArray(cfg, tt.key, convert.Int[int]())
		if err != nil {
			t.Errorf("GetArray(%q) error: %v", tt.key, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("GetArray(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGetArray_ElementFailure(t *testing.T) {
	cfg := newTestConfig(map[string]string{"a": "1,two,3"})

	_, err := GetArray(cfg, "a", convert.Int[int]())
	var invalid *InvalidKeyError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidKeyError, got %v", err)
	}
	if invalid.Text != "two" {
		t.Errorf("Text = %q, want the failing element 'two'", invalid.Text)
	}
	if invalid.Type != "int" {
		t.Errorf("Type = %q, want 'int'", invalid.Type)
	}
}

func TestGetArray_Nested(t *testing.T) {
	cfg := newTestConfig(map[string]string{
		"rows":      "[1,2],[3]",
		"bracketed": "[1,2]",
		"brackets":  "[]",
		"tail":      "1,[]",
	})

	for _, key := range []string{"rows", "bracketed", "brackets", "tail"} {
		_, err := GetArray(cfg, key, convert.Int[int]())
		if !errors.Is(err, ErrInvalidKey) || !errors.Is(err, errArrayDimensions) {
			t.Errorf("GetArray[int](%q): err = %v, want array dimension error", key, err)
		}
		_, err = GetArray(cfg, key, convert.String())
		if !errors.Is(err, errArrayDimensions) {
			t.Errorf("GetArray[string](%q): err = %v, want array dimension error", key, err)
		}
	}
}

func TestGetArrayOr(t *testing.T) {
	cfg := newTestConfig(map[string]string{"a": "1"})

	got, err := GetArrayOr(cfg, "absent", []int{9, 8}, convert.Int[int]())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{9, 8}) {
		t.Errorf("default = %v", got)
	}

	got, err = GetArrayOr(cfg, "a", []int{9, 8}, convert.Int[int]())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("present = %v", got)
	}

	if _, err := GetArray(cfg, "absent", convert.Int[int]()); !errors.Is(err, ErrMissingKey) {
		t.Errorf("GetArray(absent): err = %v", err)
	}
}

func TestGetMatrix(t *testing.T) {
	cfg := newTestConfig(map[string]string{
		"m":     "[1,2],[3,4,5]",
		"one":   "[7]",
		"empty": "",
	})

	tests := []struct {
		key  string
		want Matrix[int]
	}{
		{"m", Matrix[int]{{1, 2}, {3, 4, 5}}},
		{"one", Matrix[int]{{7}}},
		{"empty", Matrix[int]{}},
	}

	for _, tt := range tests {
		got, err := GetMatrix(cfg, tt.key, convert.Int[int]())
		if err != nil {
			t.Errorf("GetMatrix(%q) error: %v", tt.key, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("GetMatrix(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestGetMatrix_Rejects(t *testing.T) {
	cfg := newTestConfig(map[string]string{
		"flat":     "1,2,3",
		"scalar":   "1",
		"emptyrow": "[1,2],[]",
		"brackets": "[ ]",
		"mixed":    "[1,2],3",
		"deep":     "[[1]]",
		"cell":     "[1,x]",
	})

	tests := []struct {
		key    string
		reason error
		text   string
	}{
		{"flat", errMatrixTooFlat, "1,2,3"},
		{"scalar", errMatrixTooFlat, "1"},
		{"emptyrow", errMatrixTooFlat, "[1,2],[]"},
		{"brackets", errMatrixTooFlat, "[ ]"},
		{"mixed", errMatrixTooFlat, "[1,2],3"},
		{"deep", errMatrixTooDeep, "[[1]]"},
		{"cell", convert.ErrMalformed, "x"},
	}

	for _, tt := range tests {
		_, err := GetMatrix(cfg, tt.key, convert.Int[int]())
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("GetMatrix(%q): err = %v, want ErrInvalidKey", tt.key, err)
			continue
		}
		if !errors.Is(err, tt.reason) {
			t.Errorf("GetMatrix(%q): err = %v, want %v", tt.key, err, tt.reason)
		}
		var invalid *InvalidKeyError
		errors.As(err, &invalid)
		if invalid.Text != tt.text {
			t.Errorf("GetMatrix(%q): Text = %q, want %q", tt.key, invalid.Text, tt.text)
		}
	}

	_, err := GetMatrix(cfg, "flat", convert.Int[int]())
	if !strings.Contains(err.Error(), "matrix has less than two dimensions") {
		t.Errorf("message = %q", err)
	}
}

func TestGetMatrixOr(t *testing.T) {
	cfg := newTestConfig(nil)
	def := Matrix[float64]{{1, 0}, {0, 1}}

	got, err := GetMatrixOr(cfg, "rot", def, convert.Float[float64]())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, def) {
		t.Errorf("GetMatrixOr = %v", got)
	}
}

func TestSet_RoundTrip(t *testing.T) {
	cfg := newTestConfig(nil)

	for _, v := range []int{0, 1, -1, 1 << 40, -(1 << 62)} {
		Set(cfg, "n", v, convert.Int[int]())
		got, err := Get(cfg, "n", convert.Int[int]())
		if err != nil {
			t.Fatalf("Get after Set(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}

	for _, s := range []string{"plain", "", "a, b", "[x]", `q"uote`} {
		Set(cfg, "s", s, convert.String())
		got, err := cfg.GetString("s")
		if err != nil {
			t.Fatalf("Get after Set(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestSetArray(t *testing.T) {
	cfg := newTestConfig(nil)

	SetArray(cfg, "a", []int{1, 2, 3}, convert.Int[int]())
	if text, _ := cfg.Text("a"); text != "1,2,3" {
		t.Errorf("raw text = %q, want '1,2,3'", text)
	}

	got, err := GetArray(cfg, "a", convert.Int[int]())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("GetArray = %v", got)
	}

	SetArray(cfg, "empty", []int{}, convert.Int[int]())
	got, err = GetArray(cfg, "empty", convert.Int[int]())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("empty array round trip = %v", got)
	}

	words := []string{"a,b", "", "c"}
	SetArray(cfg, "w", words, convert.String())
	gotWords, err := cfg.GetStringArray("w")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotWords, words) {
		t.Errorf("string array round trip = %q", gotWords)
	}
}

func TestSetMatrix(t *testing.T) {
	cfg := newTestConfig(nil)
	m := Matrix[int]{{1, 2}, {3, 4, 5}}

	if err := SetMatrix(cfg, "m", m, convert.Int[int]()); err != nil {
		t.Fatal(err)
	}
	if text, _ := cfg.Text("m"); text != "[1,2],[3,4,5]" {
		t.Errorf("raw text = %q", text)
	}

	got, err := GetMatrix(cfg, "m", convert.Int[int]())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("GetMatrix = %v", got)
	}
}

func TestSetMatrix_EmptyRows(t *testing.T) {
	cfg := newTestConfig(map[string]string{"kept": "[9]"})

	tests := []struct {
		name string
		m    Matrix[int]
		raw  string
	}{
		{"trailing", Matrix[int]{{1}, {}}, "[1],[]"},
		{"leading", Matrix[int]{{}, {2, 3}}, "[],[2,3]"},
		{"only", Matrix[int]{{}}, "[]"},
	}

	for _, tt := range tests {
		err := SetMatrix(cfg, "kept", tt.m, convert.Int[int]())
		if !errors.Is(err, ErrInvalidKey) || !errors.Is(err, errMatrixTooFlat) {
			t.Errorf("%s: err = %v, want matrix dimension error", tt.name, err)
			continue
		}
		var invalid *InvalidKeyError
		errors.As(err, &invalid)
		if invalid.Text != tt.raw {
			t.Errorf("%s: Text = %q, want %q", tt.name, invalid.Text, tt.raw)
		}
		if text, _ := cfg.Text("kept"); text != "[9]" {
			t.Errorf("%s: store modified to %q", tt.name, text)
		}
	}

	if err := SetDefaultMatrix(cfg, "fresh", Matrix[int]{{1}, {}}, convert.Int[int]()); err == nil {
		t.Error("SetDefaultMatrix accepted an empty row")
	}
	if cfg.Has("fresh") {
		t.Error("SetDefaultMatrix stored a rejected matrix")
	}

	// Every matrix SetMatrix accepts reads back unchanged.
	for _, m := range []Matrix[int]{{}, {{1}}, {{1, 2}, {3}}} {
		if err := SetMatrix(cfg, "m", m, convert.Int[int]()); err != nil {
			t.Fatalf("SetMatrix(%v): %v", m, err)
		}
		got, err := GetMatrix(cfg, "m", convert.Int[int]())
		if err != nil {
			t.Fatalf("GetMatrix after SetMatrix(%v): %v", m, err)
		}
		if !reflect.DeepEqual(got, m) {
			t.Errorf("round trip %v -> %v", m, got)
		}
	}
}

func TestSetDefault(t *testing.T) {
	cfg := newTestConfig(map[string]string{"user": "5"})

	SetDefault(cfg, "user", 1, convert.Int[int]())
	if text, _ := cfg.Text("user"); text != "5" {
		t.Errorf("SetDefault overwrote user value: %q", text)
	}

	SetDefault(cfg, "fresh", 1, convert.Int[int]())
	if text, _ := cfg.Text("fresh"); text != "1" {
		t.Errorf("SetDefault did not write absent key: %q", text)
	}

	SetDefaultArray(cfg, "user", []int{1, 2}, convert.Int[int]())
	SetDefaultArray(cfg, "list", []int{1, 2}, convert.Int[int]())
	if text, _ := cfg.Text("user"); text != "5" {
		t.Errorf("SetDefaultArray overwrote user value: %q", text)
	}
	if text, _ := cfg.Text("list"); text != "1,2" {
		t.Errorf("SetDefaultArray wrote %q", text)
	}

	SetDefaultMatrix(cfg, "list", Matrix[int]{{0}}, convert.Int[int]())
	SetDefaultMatrix(cfg, "grid", Matrix[int]{{0}}, convert.Int[int]())
	if text, _ := cfg.Text("list"); text != "1,2" {
		t.Errorf("SetDefaultMatrix overwrote value: %q", text)
	}
	if text, _ := cfg.Text("grid"); text != "[0]" {
		t.Errorf("SetDefaultMatrix wrote %q", text)
	}
}

func TestTypedHelpers(t *testing.T) {
	cfg := newTestConfig(map[string]string{
		"threads": "4",
		"seed":    "123456789012",
		"ratio":   "0.25",
		"verbose": "yes",
		"timeout": "1m",
	})

	if v, err := cfg.GetInt("threads"); err != nil || v != 4 {
		t.Errorf("GetInt = %v, %v", v, err)
	}
	if v, err := cfg.GetInt64("seed"); err != nil || v != 123456789012 {
		t.Errorf("GetInt64 = %v, %v", v, err)
	}
	if v, err := cfg.GetFloat64("ratio"); err != nil || v != 0.25 {
		t.Errorf("GetFloat64 = %v, %v", v, err)
	}
	if v, err := cfg.GetBool("verbose"); err != nil || !v {
		t.Errorf("GetBool = %v, %v", v, err)
	}
	if v, err := cfg.GetDuration("timeout"); err != nil || v.Seconds() != 60 {
		t.Errorf("GetDuration = %v, %v", v, err)
	}
}
