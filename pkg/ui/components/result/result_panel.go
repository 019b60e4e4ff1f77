// Package result shows the output of slash commands such as /help.
package result

import (
	"strings"

	"twinchat/pkg/ui/components/utils"
	"twinchat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"
)

// ResultPanel displays command output in a scrollable box.
type ResultPanel struct {
	title   string
	content string
	visible bool
	width   int
	height  int
	scrollY int
	lines   []string
}

// NewResultPanel creates a new result panel
func NewResultPanel() *ResultPanel {
	return &ResultPanel{}
}

// Show displays the result panel with content
func (rp *ResultPanel) Show(title, content string) {
	rp.title = title
	rp.content = content
	rp.visible = true
	rp.scrollY = 0
	rp.reflow()
}

// Hide hides the result panel
func (rp *ResultPanel) Hide() {
	rp.visible = false
}

// IsVisible returns whether the panel is visible
func (rp *ResultPanel) IsVisible() bool {
	return rp.visible
}

// Title returns the panel title.
func (rp *ResultPanel) Title() string {
	return rp.title
}

// SetSize sets the panel dimensions
func (rp *ResultPanel) SetSize(width, height int) {
	rp.width = width
	rp.height = height
	rp.reflow()
}

// ResultPanelCloseMsg is sent when the result panel is closed
type ResultPanelCloseMsg struct{}

// Update handles keyboard input for the result panel
func (rp *ResultPanel) Update(msg tea.KeyPressMsg) tea.Cmd {
	maxScroll := len(rp.lines) - rp.visibleLines()
	if maxScroll < 0 {
		maxScroll = 0
	}

	switch msg.String() {
	case "esc", "enter", "q":
		rp.Hide()
		return func() tea.Msg {
			return ResultPanelCloseMsg{}
		}

	case "up":
		if rp.scrollY > 0 {
			rp.scrollY--
		}

	case "down":
		if rp.scrollY < maxScroll {
			rp.scrollY++
		}

	case "pgup":
		rp.scrollY -= 10
		if rp.scrollY < 0 {
			rp.scrollY = 0
		}

	case "pgdown":
		rp.scrollY += 10
		if rp.scrollY > maxScroll {
			rp.scrollY = maxScroll
		}
	}

	return nil
}

// View renders the result panel
func (rp *ResultPanel) View() string {
	if !rp.visible {
		return ""
	}

	panelWidth := rp.panelWidth()
	contentWidth := panelWidth - 6
	if contentWidth < 1 {
		contentWidth = 1
	}

	var sb strings.Builder
	sb.WriteString(styles.TitleStyle.Render(utils.TruncateToWidth(rp.title, contentWidth)))
	sb.WriteString("\n\n")

	visible := rp.visibleLines()
	end := rp.scrollY + visible
	if end > len(rp.lines) {
		end = len(rp.lines)
	}
	for i := rp.scrollY; i < end; i++ {
		sb.WriteString(styles.TextStyle.Render(rp.lines[i]))
		sb.WriteString("\n")
	}

	if len(rp.lines) > visible {
		sb.WriteString(styles.FooterStyle.Render("↑↓ Scroll • "))
	}
	sb.WriteString(styles.FooterStyle.Render("Esc/q Close"))

	return styles.BoxStyle.Width(panelWidth).Render(sb.String())
}

func (rp *ResultPanel) reflow() {
	width := rp.panelWidth() - 6
	if width < 1 {
		width = 1
	}
	rp.lines = rp.lines[:0]
	for _, line := range strings.Split(rp.content, "\n") {
		if runewidth.StringWidth(line) <= width {
			rp.lines = append(rp.lines, line)
			continue
		}
		rp.lines = append(rp.lines, utils.WrapPlain(line, width)...)
	}
}

func (rp *ResultPanel) panelWidth() int {
	w := rp.width - 4
	if w > 80 {
		w = 80
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (rp *ResultPanel) visibleLines() int {
	h := rp.height - 4
	if h > 30 {
		h = 30
	}
	// title, blank, footer and the box frame
	visible := h - 8
	if visible < 5 {
		visible = 5
	}
	return visible
}
