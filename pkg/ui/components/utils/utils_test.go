package utils

import (
	"strings"
	"testing"
)

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"hello", 0, ""},
		{"日本語テキスト", 7, "日本..."},
	}
	for _, tt := range tests {
		if got := TruncateToWidth(tt.in, tt.width); got != tt.want {
			t.Errorf("TruncateToWidth(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadPlain(t *testing.T) {
	if got := PadPlain("ab", 5); got != "ab   " {
		t.Errorf("PadPlain() = %q", got)
	}
	if got := PadPlain("abcdef", 3); got != "abcdef" {
		t.Errorf("PadPlain() must not truncate, got %q", got)
	}
}

func TestWrapPlain(t *testing.T) {
	got := WrapPlain("the quick brown fox\n\njumps", 10)
	want := []string{"the quick", "brown fox", "", "jumps"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("WrapPlain() = %q, want %q", got, want)
	}

	long := WrapPlain("abcdefghijkl", 5)
	if strings.Join(long, "|") != "abcde|fghij|kl" {
		t.Fatalf("Expected long word split, got %q", long)
	}

	if WrapPlain("x", 0) != nil {
		t.Fatal("Expected nil for zero width")
	}
}

func TestSanitizeContent(t *testing.T) {
	if got := SanitizeContent("a\x1b[31mb\tc\n\x07"); got != "a[31mb\tc\n" {
		t.Fatalf("SanitizeContent() = %q", got)
	}
}
