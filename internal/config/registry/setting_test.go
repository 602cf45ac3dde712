package registry

import "testing"

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindScalar, "scalar"},
		{KindArray, "array"},
		{KindMatrix, "matrix"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestSetting_Options(t *testing.T) {
	s := &Setting{Key: "old"}
	for _, opt := range []Option{WithTags("a", "b"), ReplacedBy("new"), WithDescription("doc")} {
		opt(s)
	}

	if !s.HasTag("b") || s.HasTag("c") {
		t.Errorf("HasTag mismatch for tags %v", s.Tags)
	}
	if !s.Deprecated() || s.ReplacedBy != "new" {
		t.Errorf("ReplacedBy not applied: %+v", s)
	}
	if s.Description != "doc" {
		t.Errorf("Description = %q", s.Description)
	}
}
