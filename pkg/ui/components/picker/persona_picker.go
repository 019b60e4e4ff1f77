package picker

import (
	"strings"

	"twinchat/pkg/chat"
	"twinchat/pkg/ui/components/utils"
	"twinchat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

// PersonaSelectMsg is emitted when the user picks a persona.
type PersonaSelectMsg struct {
	PersonaID string
}

// PersonaPickerPanel is a filterable list of personas.
type PersonaPickerPanel struct {
	personas []chat.Persona
	current  string
	filter   string
	selected int
	scroll   int
	visible  bool
	width    int
	height   int
}

// NewPersonaPickerPanel creates a hidden picker.
func NewPersonaPickerPanel() *PersonaPickerPanel {
	return &PersonaPickerPanel{}
}

// Show opens the picker with the cursor on current.
func (p *PersonaPickerPanel) Show(personas []chat.Persona, current string) {
	p.visible = true
	p.personas = append([]chat.Persona(nil), personas...)
	p.current = current
	p.filter = ""
	p.selected = 0
	p.scroll = 0

	for i, persona := range p.personas {
		if persona.ID == current {
			p.selected = i
			break
		}
	}
	p.ensureVisible(p.filtered(), p.listHeight())
}

// Hide hides the picker.
func (p *PersonaPickerPanel) Hide() {
	p.visible = false
}

// IsVisible reports whether the picker is visible.
func (p *PersonaPickerPanel) IsVisible() bool {
	return p.visible
}

// SetSize updates the picker dimensions.
func (p *PersonaPickerPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Update handles keyboard input for the picker.
func (p *PersonaPickerPanel) Update(msg tea.KeyPressMsg) tea.Cmd {
	if !p.visible {
		return nil
	}

	filtered := p.filtered()
	listHeight := p.listHeight()

	switch msg.String() {
	case "up", "ctrl+k":
		if p.selected > 0 {
			p.selected--
		}
	case "down", "ctrl+j":
		if p.selected < len(filtered)-1 {
			p.selected++
		}
	case "pgup":
		p.selected -= listHeight
	case "pgdown":
		p.selected += listHeight
	case "home":
		p.selected = 0
	case "end":
		p.selected = len(filtered) - 1

	case "enter":
		if p.selected >= 0 && p.selected < len(filtered) {
			id := filtered[p.selected].ID
			p.Hide()
			return func() tea.Msg {
				return PersonaSelectMsg{PersonaID: id}
			}
		}
		return nil

	case "esc":
		p.Hide()
		return nil

	case "backspace":
		if len(p.filter) > 0 {
			runes := []rune(p.filter)
			p.filter = string(runes[:len(runes)-1])
			p.selected = 0
			p.scroll = 0
		}
		return nil

	default:
		if text := msg.Key().Text; text != "" {
			p.filter += text
			p.selected = 0
			p.scroll = 0
		}
		return nil
	}

	p.ensureVisible(filtered, listHeight)
	return nil
}

// View renders the picker.
func (p *PersonaPickerPanel) View() string {
	if !p.visible {
		return ""
	}

	boxWidth, contentWidth, listHeight := p.dimensions()

	var content strings.Builder
	content.WriteString(styles.TitleStyle.Render("Choose a persona"))
	content.WriteString("\n")
	content.WriteString(styles.TextMutedStyle.Render("Search: "))
	if p.filter == "" {
		content.WriteString(styles.PlaceholderStyle.Render("type to filter"))
	} else {
		content.WriteString(styles.FilterStyle.Render(p.filter))
	}
	content.WriteString("\n\n")

	filtered := p.filtered()
	if len(filtered) == 0 {
		content.WriteString(styles.TextMutedStyle.Render("No matching personas"))
		for i := 1; i < listHeight; i++ {
			content.WriteString("\n")
		}
	} else {
		for i := 0; i < listHeight; i++ {
			index := p.scroll + i
			if index >= len(filtered) {
				content.WriteString("\n")
				continue
			}
			line := utils.TruncateToWidth(p.label(filtered[index]), contentWidth)
			if index == p.selected {
				content.WriteString(styles.SelectedStyle.Render(utils.PadPlain(line, contentWidth)))
			} else {
				content.WriteString(styles.TextStyle.Render(line))
			}
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")
	content.WriteString(styles.FooterStyle.Render("Up/Down Navigate | Enter Select | Esc Cancel"))

	return styles.BoxStyle.Width(boxWidth).Render(content.String())
}

func (p *PersonaPickerPanel) label(persona chat.Persona) string {
	marker := "  "
	if persona.ID == p.current {
		marker = "* "
	}
	if persona.IsSupervisor() {
		return marker + persona.Name + " (routes to the best persona)"
	}
	return marker + persona.Name
}

func (p *PersonaPickerPanel) filtered() []chat.Persona {
	query := strings.ToLower(strings.TrimSpace(p.filter))
	if query == "" {
		return p.personas
	}
	out := make([]chat.Persona, 0, len(p.personas))
	for _, persona := range p.personas {
		if strings.Contains(strings.ToLower(persona.Name), query) {
			out = append(out, persona)
		}
	}
	return out
}

func (p *PersonaPickerPanel) ensureVisible(filtered []chat.Persona, listHeight int) {
	if len(filtered) == 0 {
		p.selected = 0
		p.scroll = 0
		return
	}

	if p.selected < 0 {
		p.selected = 0
	}
	if p.selected >= len(filtered) {
		p.selected = len(filtered) - 1
	}

	maxScroll := len(filtered) - listHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if p.scroll > maxScroll {
		p.scroll = maxScroll
	}
	if p.selected < p.scroll {
		p.scroll = p.selected
	}
	if p.selected >= p.scroll+listHeight {
		p.scroll = p.selected - listHeight + 1
	}
	if p.scroll < 0 {
		p.scroll = 0
	}
}

func (p *PersonaPickerPanel) dimensions() (int, int, int) {
	width := p.width
	height := p.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	boxWidth := width - 2
	if boxWidth > 60 {
		boxWidth = 60
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	contentWidth := boxWidth - 6
	if contentWidth < 10 {
		contentWidth = 10
	}

	// title, search, blank, blank, footer, plus box border and padding
	const fixedLines = 5 + 4
	listHeight := height - fixedLines
	if listHeight < 1 {
		listHeight = 1
	}
	if listHeight > 12 {
		listHeight = 12
	}

	return boxWidth, contentWidth, listHeight
}

func (p *PersonaPickerPanel) listHeight() int {
	_, _, listHeight := p.dimensions()
	return listHeight
}
