package settings

import (
	"fmt"
	"strconv"
	"strings"

	"twinchat/pkg/config"
	"twinchat/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
)

// SettingField represents a single editable setting
type SettingField struct {
	Label   string
	Key     string
	Value   string
	Type    string   // "string", "int", "choice"
	Options []string // for "choice"
}

// SettingsPanel displays and edits configuration
type SettingsPanel struct {
	config     config.Config
	configPath string
	fields     []SettingField
	selected   int
	editing    bool
	editValue  string
	editCursor int
	changed    bool
	width      int
	height     int
	visible    bool
	errorMsg   string
}

// NewSettingsPanel creates a new settings panel
func NewSettingsPanel() *SettingsPanel {
	return &SettingsPanel{}
}

// Show displays the settings panel with the given config
func (sp *SettingsPanel) Show(cfg config.Config, configPath string) {
	sp.config = cfg
	sp.configPath = configPath
	sp.visible = true
	sp.selected = 0
	sp.editing = false
	sp.changed = false
	sp.errorMsg = ""
	sp.buildFields()
}

// buildFields creates the field list from config
func (sp *SettingsPanel) buildFields() {
	sp.fields = []SettingField{
		{Label: "API URL", Key: "api_url", Value: sp.config.API.BaseURL, Type: "string"},
		{Label: "API Timeout (sec)", Key: "api_timeout", Value: strconv.Itoa(sp.config.API.TimeoutSeconds), Type: "int"},
		{Label: "Markdown Style", Key: "markdown_style", Value: strings.ToLower(strings.TrimSpace(sp.config.MarkdownStyle)), Type: "choice", Options: markdownStyleOptions()},
		{Label: "Log Level", Key: "log_level", Value: normalizeLogLevel(sp.config.LogLevel), Type: "choice", Options: logLevelOptions()},
		{Label: "Log Format", Key: "log_format", Value: strings.ToLower(strings.TrimSpace(sp.config.LogFormat)), Type: "choice", Options: []string{"json", "text"}},
		{Label: "Log File", Key: "log_file", Value: sp.config.LogFile, Type: "string"},
		{Label: "Auth File", Key: "auth_file", Value: sp.config.AuthFile, Type: "string"},
	}
}

// Hide hides the settings panel
func (sp *SettingsPanel) Hide() {
	sp.visible = false
	sp.editing = false
}

// IsVisible returns whether the panel is visible
func (sp *SettingsPanel) IsVisible() bool {
	return sp.visible
}

// SetSize sets the panel dimensions
func (sp *SettingsPanel) SetSize(width, height int) {
	sp.width = width
	sp.height = height
}

// HasChanges returns whether settings have been modified
func (sp *SettingsPanel) HasChanges() bool {
	return sp.changed
}

// SettingsSaveMsg is sent when settings should be saved
type SettingsSaveMsg struct {
	Config     config.Config
	ConfigPath string
}

// SettingsCloseMsg is sent when settings panel closes
type SettingsCloseMsg struct{}

// Update handles keyboard input for the settings panel
func (sp *SettingsPanel) Update(msg tea.KeyPressMsg) tea.Cmd {
	if sp.editing {
		return sp.handleEditMode(msg)
	}

	switch msg.String() {
	case "up":
		if sp.selected > 0 {
			sp.selected--
		}
		return nil

	case "down":
		if sp.selected < len(sp.fields)-1 {
			sp.selected++
		}
		return nil

	case "enter":
		field := &sp.fields[sp.selected]
		if field.Type == "choice" {
			field.Value = nextOption(field.Options, field.Value)
			sp.changed = true
			sp.applyField(field)
			return nil
		}
		sp.editing = true
		sp.editValue = field.Value
		sp.editCursor = len([]rune(sp.editValue))
		return nil

	case "esc":
		if sp.changed {
			return sp.saveAndClose()
		}
		sp.Hide()
		return func() tea.Msg {
			return SettingsCloseMsg{}
		}

	case "s":
		if sp.changed {
			return sp.saveAndClose()
		}
		return nil
	}

	return nil
}

// handleEditMode handles input when editing a field
func (sp *SettingsPanel) handleEditMode(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.Key()

	switch msg.String() {
	case "enter":
		field := &sp.fields[sp.selected]
		if sp.validateValue(field.Type, sp.editValue) {
			field.Value = strings.TrimSpace(sp.editValue)
			sp.changed = true
			sp.applyField(field)
			sp.errorMsg = ""
		} else {
			sp.errorMsg = "Invalid value for " + field.Label
		}
		sp.editing = false
		return nil

	case "esc":
		sp.editing = false
		sp.errorMsg = ""
		return nil

	case "backspace":
		runes := []rune(sp.editValue)
		if sp.editCursor > len(runes) {
			sp.editCursor = len(runes)
		}
		if sp.editCursor > 0 {
			runes = append(runes[:sp.editCursor-1], runes[sp.editCursor:]...)
			sp.editCursor--
			sp.editValue = string(runes)
		}
		return nil

	case "delete":
		runes := []rune(sp.editValue)
		if sp.editCursor > len(runes) {
			sp.editCursor = len(runes)
		}
		if sp.editCursor < len(runes) {
			runes = append(runes[:sp.editCursor], runes[sp.editCursor+1:]...)
			sp.editValue = string(runes)
		}
		return nil

	case "left":
		if sp.editCursor > 0 {
			sp.editCursor--
		}
		return nil

	case "right":
		if sp.editCursor < len([]rune(sp.editValue)) {
			sp.editCursor++
		}
		return nil

	case "home":
		sp.editCursor = 0
		return nil

	case "end":
		sp.editCursor = len([]rune(sp.editValue))
		return nil

	default:
		if key.Text != "" {
			filtered := make([]rune, 0, len(key.Text))
			for _, r := range key.Text {
				if r != '\n' && r != '\r' {
					filtered = append(filtered, r)
				}
			}
			if len(filtered) == 0 {
				return nil
			}
			runes := []rune(sp.editValue)
			if sp.editCursor > len(runes) {
				sp.editCursor = len(runes)
			}
			runes = append(runes[:sp.editCursor], append(filtered, runes[sp.editCursor:]...)...)
			sp.editCursor += len(filtered)
			sp.editValue = string(runes)
		}
		return nil
	}
}

// validateValue checks if a value is valid for its type
func (sp *SettingsPanel) validateValue(fieldType, value string) bool {
	switch fieldType {
	case "int":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		return err == nil && n > 0
	default:
		return true
	}
}

// applyField updates the config with the field value
func (sp *SettingsPanel) applyField(field *SettingField) {
	switch field.Key {
	case "api_url":
		sp.config.API.BaseURL = field.Value
	case "api_timeout":
		if v, err := strconv.Atoi(field.Value); err == nil {
			sp.config.API.TimeoutSeconds = v
		}
	case "markdown_style":
		sp.config.MarkdownStyle = field.Value
	case "log_level":
		sp.config.LogLevel = field.Value
	case "log_format":
		sp.config.LogFormat = field.Value
	case "log_file":
		sp.config.LogFile = field.Value
	case "auth_file":
		sp.config.AuthFile = field.Value
	}
}

// saveAndClose validates the edited config, then closes the panel with a save
// request. An invalid config keeps the panel open.
func (sp *SettingsPanel) saveAndClose() tea.Cmd {
	if err := sp.config.Validate(); err != nil {
		sp.errorMsg = err.Error()
		return nil
	}
	cfg := sp.config
	path := sp.configPath
	sp.Hide()
	return func() tea.Msg {
		return SettingsSaveMsg{Config: cfg, ConfigPath: path}
	}
}

// View renders the settings panel
func (sp *SettingsPanel) View() string {
	if !sp.visible {
		return ""
	}

	width := sp.width
	if width <= 0 {
		width = 80
	}
	available := width - 2
	if available < 1 {
		available = 1
	}

	boxWidth := available
	if boxWidth > 90 {
		boxWidth = 90
	}
	minWidth := 60
	if minWidth > available {
		minWidth = available
	}
	if boxWidth < minWidth {
		boxWidth = minWidth
	}

	var content strings.Builder

	content.WriteString(styles.TitleStyle.Render("Settings"))
	content.WriteString("\n\n")

	for i, field := range sp.fields {
		label := styles.LabelStyle.Render(field.Label + ":")

		value := field.Value
		if sp.editing && i == sp.selected {
			value = styles.EditStyle.Render(renderEditValue(sp.editValue, sp.editCursor))
		}

		var line string
		if i == sp.selected {
			if sp.editing {
				line = "▶ " + label + " " + value
			} else {
				labelText := fmt.Sprintf("%-20s", field.Label+":")
				line = styles.SelectedStyle.Render("  " + labelText + " " + value + " ")
			}
		} else {
			line = "  " + label + " " + styles.ValueStyle.Render(value)
		}
		content.WriteString(line + "\n")
	}

	if sp.errorMsg != "" {
		content.WriteString("\n")
		content.WriteString(styles.ErrorStyle.Render(sp.errorMsg))
	}

	content.WriteString("\n\n")
	if sp.editing {
		content.WriteString(styles.FooterStyle.Render("Enter: Confirm • Esc: Cancel"))
	} else {
		action := "Edit"
		if sp.selectedFieldType() == "choice" {
			action = "Next value"
		}
		hint := "↑↓ Navigate • Enter: " + action + " • Esc: Close"
		if sp.changed {
			hint = "↑↓ Navigate • Enter: " + action + " • s: Save • Esc: Save & Close"
		}
		content.WriteString(styles.FooterStyle.Render(hint))
	}

	return styles.BoxStyle.Width(boxWidth).Render(content.String())
}

// GetConfig returns the current config
func (sp *SettingsPanel) GetConfig() config.Config {
	return sp.config
}

func (sp *SettingsPanel) selectedFieldType() string {
	if sp.selected < 0 || sp.selected >= len(sp.fields) {
		return ""
	}
	return sp.fields[sp.selected].Type
}

func nextOption(options []string, current string) string {
	if len(options) == 0 {
		return current
	}
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func renderEditValue(value string, cursor int) string {
	runes := []rune(value)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	withCursor := make([]rune, 0, len(runes)+1)
	withCursor = append(withCursor, runes[:cursor]...)
	withCursor = append(withCursor, '█')
	withCursor = append(withCursor, runes[cursor:]...)
	return string(withCursor)
}

func normalizeLogLevel(value string) string {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "warning" {
		return "warn"
	}
	return level
}

func logLevelOptions() []string {
	return []string{"trace", "debug", "info", "warn", "error"}
}

func markdownStyleOptions() []string {
	return []string{"dark", "light", "notty", "ascii"}
}
