package transcript

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"

	"twinchat/pkg/ui/components/utils"
)

// markdownRenderer caches a glamour renderer for the current wrap width.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(style string) *markdownRenderer {
	if strings.TrimSpace(style) == "" {
		style = "dark"
	}
	return &markdownRenderer{style: style}
}

// render returns content as display lines no wider than width. Plain wrapping
// is used when glamour cannot render.
func (m *markdownRenderer) render(content string, width int) []string {
	if width <= 0 {
		return nil
	}
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			slog.Warn("markdown_renderer_error", "style", m.style, "error", err)
			m.renderer = nil
			return utils.WrapPlain(content, width)
		}
		m.renderer = r
		m.width = width
	}

	out, err := m.renderer.Render(content)
	if err != nil {
		slog.Warn("markdown_render_error", "error", err)
		return utils.WrapPlain(content, width)
	}
	return trimBlankLines(strings.Split(strings.TrimRight(out, "\n"), "\n"))
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return lines[start:end]
}
