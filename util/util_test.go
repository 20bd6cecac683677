package util

import (
	"testing"
	"time"
)

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "b", "c"); got != "b" {
		t.Errorf("got %q", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("got %d", got)
	}
	if got := Coalesce(time.Duration(0), time.Second); got != time.Second {
		t.Errorf("got %v", got)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input  string
		prefix int
		want   string
	}{
		{"60009dfa81c54cf99ac843b8b3bc0db1", 4, "6000***"},
		{"abc", 4, "***"},
		{"abcd", 4, "***"},
		{"", 4, ""},
	}
	for _, tc := range tests {
		if got := MaskSecret(tc.input, tc.prefix); got != tc.want {
			t.Errorf("MaskSecret(%q, %d) = %q, want %q", tc.input, tc.prefix, got, tc.want)
		}
	}
}
