package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestCenterRectOddSizes(t *testing.T) {
	x, y, w, h := CenterRect(3, 1, 9, 5)
	if x != 3 || y != 2 || w != 3 || h != 1 {
		t.Fatalf("unexpected rect: x=%d y=%d w=%d h=%d", x, y, w, h)
	}
}

func TestCenterRectClampsToScreen(t *testing.T) {
	x, y, w, h := CenterRect(10, 7, 6, 4)
	if x != 0 || y != 0 || w != 6 || h != 4 {
		t.Fatalf("unexpected rect: x=%d y=%d w=%d h=%d", x, y, w, h)
	}
}

func TestClampRectNegativeOrigin(t *testing.T) {
	x, y, w, h := ClampRect(-2, -1, 5, 4, 4, 3)
	if x != 0 || y != 0 || w != 4 || h != 3 {
		t.Fatalf("unexpected rect: x=%d y=%d w=%d h=%d", x, y, w, h)
	}
}

func TestOverlayCentersPanel(t *testing.T) {
	base := strings.Repeat("abcdefghij\n", 4) + "abcdefghij"
	out := strings.Split(Overlay(base, "XY\nZW", 10, 5), "\n")

	want := []string{"abcdefghij", "abcdXYghij", "abcdZWghij", "abcdefghij", "abcdefghij"}
	if len(out) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(out))
	}
	for i := range want {
		if got := ansi.Strip(out[i]); got != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got, want[i])
		}
	}
}

func TestOverlayPadsShortBase(t *testing.T) {
	out := strings.Split(Overlay("ab", "XY", 6, 3), "\n")

	if len(out) != 3 {
		t.Fatalf("expected base to be padded to 3 lines, got %d", len(out))
	}
	if got := ansi.Strip(out[1]); got != "  XY" {
		t.Fatalf("expected panel on the padded middle line, got %q", got)
	}
}

func TestOverlayClipsWidePanel(t *testing.T) {
	out := Overlay("....", "123456", 4, 1)
	if got := ansi.Strip(out); got != "1234" {
		t.Fatalf("expected panel clipped to the screen, got %q", got)
	}
}
