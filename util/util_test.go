package util

import (
	"strings"
	"testing"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input  string
		prefix int
		want   string
	}{
		{"sk-abcdefghijklmnop", 3, "sk-***"},
		{"short", 10, "***"},
		{"exactly10!", 10, "***"},
		{"", 5, "***"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := MaskSecret(tc.input, tc.prefix); got != tc.want {
				t.Errorf("MaskSecret(%q, %d) = %q, want %q", tc.input, tc.prefix, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 150)
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"shorter than limit", "not valid json", 100, "not valid json"},
		{"exactly at limit", strings.Repeat("b", 100), 100, strings.Repeat("b", 100)},
		{"cut with marker", long, 100, strings.Repeat("a", 100) + "..."},
		{"multibyte runes kept whole", "ééééé", 3, "ééé..."},
		{"zero limit", "abc", 0, "..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.input, tc.max, "..."); got != tc.want {
				t.Errorf("Truncate() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "x", "y"); got != "x" {
		t.Errorf("Coalesce() = %q, want x", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce() = %d, want 0", got)
	}
}

func TestPtr(t *testing.T) {
	p := Ptr(float32(0.1))
	if p == nil || *p != 0.1 {
		t.Errorf("Ptr(0.1) = %v", p)
	}
	v := 1
	if q := Ptr(v); q == &v {
		t.Error("Ptr must return a pointer to a copy")
	}
}
