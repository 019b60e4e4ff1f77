// Package render composes overlay panels on top of the main view.
package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// CenterRect returns a rectangle centered within the screen bounds.
// Width/height are clamped to the screen size before centering.
func CenterRect(panelW, panelH, screenW, screenH int) (x, y, w, h int) {
	w = panelW
	h = panelH
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if screenW < 0 {
		screenW = 0
	}
	if screenH < 0 {
		screenH = 0
	}
	if w > screenW {
		w = screenW
	}
	if h > screenH {
		h = screenH
	}
	if screenW > w {
		x = (screenW - w) / 2
	}
	if screenH > h {
		y = (screenH - h) / 2
	}
	return ClampRect(x, y, w, h, screenW, screenH)
}

// ClampRect clamps a rectangle to the screen bounds.
func ClampRect(x, y, w, h, screenW, screenH int) (int, int, int, int) {
	if screenW < 0 {
		screenW = 0
	}
	if screenH < 0 {
		screenH = 0
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > screenW {
		x = screenW
	}
	if y > screenH {
		y = screenH
	}
	if x+w > screenW {
		w = screenW - x
	}
	if y+h > screenH {
		h = screenH - y
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return x, y, w, h
}

// Overlay draws panel centered over base, which is treated as a screen of
// screenW x screenH cells. Base lines outside the panel are kept as they are.
func Overlay(base, panel string, screenW, screenH int) string {
	lines := strings.Split(base, "\n")
	for len(lines) < screenH {
		lines = append(lines, "")
	}

	panelLines := strings.Split(panel, "\n")
	panelW := 0
	for _, l := range panelLines {
		if w := ansi.StringWidth(l); w > panelW {
			panelW = w
		}
	}

	x, y, w, h := CenterRect(panelW, len(panelLines), screenW, screenH)
	for i := 0; i < h; i++ {
		row := y + i
		line := lines[row]

		left := ansi.Truncate(line, x, "")
		if gap := x - ansi.StringWidth(left); gap > 0 {
			left += strings.Repeat(" ", gap)
		}
		mid := ansi.Truncate(panelLines[i], w, "")
		if gap := w - ansi.StringWidth(mid); gap > 0 {
			mid += strings.Repeat(" ", gap)
		}
		right := ansi.TruncateLeft(line, x+w, "")

		lines[row] = left + ansi.ResetStyle + mid + ansi.ResetStyle + right
	}
	return strings.Join(lines, "\n")
}
