// Package recall is a searchable list of messages already sent in the
// current conversation. Picking one puts it back into the input.
package recall

import (
	"strings"

	"twinchat/pkg/ui/components/utils"
	"twinchat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

// RecallSelectMsg is sent when an earlier message is picked.
type RecallSelectMsg struct {
	Text string
}

// RecallPanel lists previous user messages, newest first.
type RecallPanel struct {
	entries  []string
	filtered []string
	filter   string
	selected int
	scroll   int
	visible  bool
	width    int
	height   int
}

// NewRecallPanel creates a hidden panel.
func NewRecallPanel() *RecallPanel {
	return &RecallPanel{}
}

// Show opens the panel over sent, given oldest first. Repeats collapse onto
// their most recent use.
func (rp *RecallPanel) Show(sent []string) {
	rp.entries = rp.entries[:0]
	seen := make(map[string]bool, len(sent))
	for i := len(sent) - 1; i >= 0; i-- {
		text := strings.TrimSpace(sent[i])
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		rp.entries = append(rp.entries, text)
	}
	rp.visible = true
	rp.filter = ""
	rp.selected = 0
	rp.scroll = 0
	rp.applyFilter()
}

// Hide hides the panel
func (rp *RecallPanel) Hide() {
	rp.visible = false
}

// IsVisible returns whether the panel is visible
func (rp *RecallPanel) IsVisible() bool {
	return rp.visible
}

// SetSize updates the panel dimensions
func (rp *RecallPanel) SetSize(width, height int) {
	rp.width = width
	rp.height = height
}

// Entries returns the entries matching the current filter.
func (rp *RecallPanel) Entries() []string {
	return rp.filtered
}

func (rp *RecallPanel) applyFilter() {
	if rp.filter == "" {
		rp.filtered = rp.entries
		return
	}
	needle := strings.ToLower(rp.filter)
	rp.filtered = nil
	for _, e := range rp.entries {
		if strings.Contains(strings.ToLower(e), needle) {
			rp.filtered = append(rp.filtered, e)
		}
	}
}

func (rp *RecallPanel) setFilter(filter string) {
	rp.filter = filter
	rp.applyFilter()
	rp.selected = 0
	rp.ensureVisible()
}

// Update handles keyboard input for the panel
func (rp *RecallPanel) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !rp.visible {
		return nil
	}

	switch msg.String() {
	case "up":
		rp.selected--
	case "down":
		rp.selected++
	case "pgup":
		rp.selected -= rp.listHeight()
	case "pgdown":
		rp.selected += rp.listHeight()
	case "home":
		rp.selected = 0
	case "end":
		rp.selected = len(rp.filtered) - 1

	case "enter", "tab":
		if rp.selected < 0 || rp.selected >= len(rp.filtered) {
			return nil
		}
		text := rp.filtered[rp.selected]
		rp.Hide()
		return func() tea.Msg {
			return RecallSelectMsg{Text: text}
		}

	case "esc":
		rp.Hide()
		return nil

	case "backspace":
		if rp.filter != "" {
			runes := []rune(rp.filter)
			rp.setFilter(string(runes[:len(runes)-1]))
		}
		return nil

	case "ctrl+u":
		if rp.filter != "" {
			rp.setFilter("")
		}
		return nil

	default:
		if text := msg.Key().Text; text != "" {
			rp.setFilter(rp.filter + text)
		}
		return nil
	}

	rp.ensureVisible()
	return nil
}

// View renders the panel
func (rp *RecallPanel) View() string {
	if !rp.visible {
		return ""
	}

	boxWidth, contentWidth, listHeight := rp.dimensions()

	var content strings.Builder
	content.WriteString(styles.TitleStyle.Render("Recall a message"))
	content.WriteString("\n")

	if rp.filter != "" {
		content.WriteString(styles.FilterStyle.Render("Filter: " + rp.filter))
	} else {
		content.WriteString(styles.TextMutedStyle.Render("Type to search..."))
	}
	content.WriteString("\n\n")

	if len(rp.filtered) == 0 {
		empty := "Nothing sent yet"
		if rp.filter != "" {
			empty = "No matching messages"
		}
		content.WriteString(styles.TextMutedStyle.Render(empty))
		content.WriteString(strings.Repeat("\n", listHeight))
	} else {
		for i := 0; i < listHeight; i++ {
			index := rp.scroll + i
			if index < len(rp.filtered) {
				line := "  " + utils.TruncateToWidth(firstLine(rp.filtered[index]), contentWidth-2)
				if index == rp.selected {
					content.WriteString(styles.SelectedStyle.Render(utils.PadPlain(line, contentWidth)))
				} else {
					content.WriteString(styles.TextStyle.Render(line))
				}
			}
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(styles.FooterStyle.Render("↑↓ Navigate | Enter Use | Ctrl+U Clear | Esc Cancel"))

	return styles.BoxStyle.Width(boxWidth).Render(content.String())
}

// firstLine marks multi-line messages with an ellipsis.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i] + " …"
	}
	return text
}

func (rp *RecallPanel) ensureVisible() {
	listHeight := rp.listHeight()

	if len(rp.filtered) == 0 {
		rp.selected = 0
		rp.scroll = 0
		return
	}
	rp.selected = max(0, min(rp.selected, len(rp.filtered)-1))

	if rp.selected < rp.scroll {
		rp.scroll = rp.selected
	}
	if rp.selected >= rp.scroll+listHeight {
		rp.scroll = rp.selected - listHeight + 1
	}
	rp.scroll = max(0, min(rp.scroll, len(rp.filtered)-listHeight))
}

// dimensions returns box width, content width and list height.
func (rp *RecallPanel) dimensions() (int, int, int) {
	width := rp.width
	height := rp.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	available := max(width-2, 1)
	boxWidth := min(available, 80)
	boxWidth = max(boxWidth, min(40, available))
	contentWidth := max(boxWidth-4, 4)

	// Title, filter, blank line, blank line, footer.
	const fixedLines = 5
	listHeight := max(height-4-fixedLines, 1)
	listHeight = min(listHeight, 10)

	return boxWidth, contentWidth, listHeight
}

func (rp *RecallPanel) listHeight() int {
	_, _, h := rp.dimensions()
	return h
}
