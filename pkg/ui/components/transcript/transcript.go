// Package transcript renders the scrollable conversation pane.
package transcript

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"twinchat/pkg/chat"
	"twinchat/pkg/ui/components/utils"
	"twinchat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

const pageSize = 10

// Transcript shows the messages of the selected persona.
type Transcript struct {
	width   int
	height  int
	scrollY int
	follow  bool
	lines   []string

	messages  []chat.Message
	assistant string
	typing    string
	empty     string
	banner    string

	markdown *markdownRenderer
}

// New creates a transcript that renders assistant Markdown in the given
// glamour style.
func New(markdownStyle string) *Transcript {
	return &Transcript{
		follow:    true,
		assistant: "Assistant",
		markdown:  newMarkdownRenderer(markdownStyle),
	}
}

// SetSize updates the pane dimensions, border included.
func (t *Transcript) SetSize(width, height int) {
	if width == t.width && height == t.height {
		return
	}
	t.width = width
	t.height = height
	t.reflow()
}

// SetMessages replaces the transcript. The view sticks to the bottom unless
// the user scrolled up.
func (t *Transcript) SetMessages(msgs []chat.Message) {
	t.messages = msgs
	t.reflow()
}

// SetMarkdownStyle switches the glamour style used for assistant messages.
func (t *Transcript) SetMarkdownStyle(style string) {
	t.markdown = newMarkdownRenderer(style)
	t.reflow()
}

// SetAssistantName sets the label shown on assistant messages.
func (t *Transcript) SetAssistantName(name string) {
	if strings.TrimSpace(name) == "" {
		name = "Assistant"
	}
	if name == t.assistant {
		return
	}
	t.assistant = name
	t.reflow()
}

// SetTyping shows an indicator line below the last message. An empty string
// hides it.
func (t *Transcript) SetTyping(indicator string) {
	if indicator == t.typing {
		return
	}
	t.typing = indicator
	t.reflow()
}

// SetEmptyText sets the placeholder for an empty transcript.
func (t *Transcript) SetEmptyText(text string) {
	if text == t.empty {
		return
	}
	t.empty = text
	t.reflow()
}

// SetBanner sets a preformatted block shown instead of the empty text when
// there are no messages.
func (t *Transcript) SetBanner(block string) {
	if block == t.banner {
		return
	}
	t.banner = block
	t.reflow()
}

// Update handles scroll keys. It reports whether the key was consumed.
func (t *Transcript) Update(msg tea.KeyPressMsg) bool {
	maxScroll := t.maxScroll()

	switch msg.String() {
	case "pgup", "ctrl+up":
		step := pageSize
		if msg.String() == "ctrl+up" {
			step = 1
		}
		t.scrollY -= step
		if t.scrollY < 0 {
			t.scrollY = 0
		}
		t.follow = false
	case "pgdown", "ctrl+down":
		step := pageSize
		if msg.String() == "ctrl+down" {
			step = 1
		}
		t.scrollY += step
		if t.scrollY > maxScroll {
			t.scrollY = maxScroll
		}
		t.follow = t.scrollY >= maxScroll
	case "ctrl+home":
		t.scrollY = 0
		t.follow = false
	case "ctrl+end":
		t.scrollY = maxScroll
		t.follow = true
	default:
		return false
	}
	return true
}

// ScrollToBottom makes the view follow new messages again.
func (t *Transcript) ScrollToBottom() {
	t.follow = true
	t.scrollY = t.maxScroll()
}

// View renders the pane.
func (t *Transcript) View() string {
	contentWidth := t.contentWidth()
	bodyHeight := t.bodyHeight()

	rows := make([]string, 0, bodyHeight)
	end := t.scrollY + bodyHeight
	if end > len(t.lines) {
		end = len(t.lines)
	}
	for i := t.scrollY; i < end; i++ {
		rows = append(rows, utils.PadStyled(ansi.Truncate(t.lines[i], contentWidth, ""), contentWidth))
	}
	for len(rows) < bodyHeight {
		rows = append(rows, strings.Repeat(" ", contentWidth))
	}

	return styles.TranscriptBoxStyle.Render(strings.Join(rows, "\n"))
}

// Lines returns the rendered lines, for tests and copy.
func (t *Transcript) Lines() []string {
	return t.lines
}

// AtBottom reports whether the view follows new messages.
func (t *Transcript) AtBottom() bool {
	return t.follow
}

func (t *Transcript) reflow() {
	width := t.contentWidth()
	t.lines = t.render(width)
	if t.follow {
		t.scrollY = t.maxScroll()
	}
	if t.scrollY > t.maxScroll() {
		t.scrollY = t.maxScroll()
	}
	if t.scrollY < 0 {
		t.scrollY = 0
	}
}

func (t *Transcript) render(width int) []string {
	if width <= 0 {
		return nil
	}
	if len(t.messages) == 0 && t.typing == "" {
		if t.banner != "" {
			return strings.Split(t.banner, "\n")
		}
		if t.empty == "" {
			return nil
		}
		var lines []string
		for _, l := range utils.WrapPlain(t.empty, width) {
			lines = append(lines, styles.TextMutedStyle.Render(l))
		}
		return lines
	}

	var lines []string
	for i, msg := range t.messages {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, t.header(msg, width))
		if msg.Role == chat.RoleUser {
			for _, l := range utils.WrapPlain(utils.SanitizeContent(msg.Content), width) {
				lines = append(lines, styles.TextStyle.Render(l))
			}
			continue
		}
		lines = append(lines, t.markdown.render(utils.SanitizeContent(msg.Content), width)...)
	}

	if t.typing != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, styles.TextMutedStyle.Render(utils.TruncateToWidth(t.typing, width)))
	}
	return lines
}

func (t *Transcript) header(msg chat.Message, width int) string {
	name := "You"
	style := styles.UserLabelStyle
	if msg.Role == chat.RoleAssistant {
		name = t.assistant
		style = styles.AssistantLabelStyle
	}

	label := style.Render(utils.TruncateToWidth(name, width))
	meta := ""
	if !msg.Timestamp.IsZero() {
		meta = msg.Timestamp.Local().Format("15:04")
	}
	if msg.Pending {
		meta = strings.TrimSpace(meta + " sending...")
	}
	if meta == "" {
		return label
	}
	return label + " " + styles.TimestampStyle.Render(meta)
}

func (t *Transcript) contentWidth() int {
	width := t.width - 2
	if width < 1 {
		return 1
	}
	return width
}

func (t *Transcript) bodyHeight() int {
	height := t.height - 2
	if height < 1 {
		return 1
	}
	return height
}

func (t *Transcript) maxScroll() int {
	max := len(t.lines) - t.bodyHeight()
	if max < 0 {
		return 0
	}
	return max
}

func isBlank(line string) bool {
	return strings.TrimSpace(ansi.Strip(line)) == ""
}
