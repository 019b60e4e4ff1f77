// Package welcome renders the box shown before a persona is picked.
package welcome

import (
	"fmt"
	"strings"

	"twinchat/pkg/ui/components/utils"
	"twinchat/pkg/ui/styles"
	"twinchat/pkg/version"

	"github.com/mattn/go-runewidth"
)

const boxWidth = 53

// WelcomeMessage returns the welcome box greeting name. An empty name gives a
// generic greeting.
func WelcomeMessage(name string) string {
	makeLine := func(content string, visualWidth int) string {
		pad := boxWidth - visualWidth
		if pad < 0 {
			pad = 0
		}
		return styles.WelcomeBorderStyle.Render("│") + content + strings.Repeat(" ", pad) + styles.WelcomeBorderStyle.Render("│")
	}
	centered := func(text string, style func(...string) string) string {
		text = utils.TruncateToWidth(text, boxWidth-4)
		w := runewidth.StringWidth(text)
		left := (boxWidth - w) / 2
		return makeLine(strings.Repeat(" ", left)+style(text), left+w)
	}

	top := styles.WelcomeBorderStyle.Render("╭" + strings.Repeat("─", boxWidth) + "╮")
	bottom := styles.WelcomeBorderStyle.Render("╰" + strings.Repeat("─", boxWidth) + "╯")
	empty := makeLine("", 0)

	title := "Welcome to twinchat"
	if n := strings.TrimSpace(name); n != "" {
		title = "Welcome, " + n
	}

	lines := []string{top}
	lines = append(lines, centered(title, styles.WelcomeTitleStyle.Render))
	lines = append(lines, centered("Pick a persona to start chatting", styles.TextStyle.Render))
	lines = append(lines, empty)

	header := "  Shortcuts:"
	lines = append(lines, makeLine(styles.WelcomeHeaderStyle.Render(header), runewidth.StringWidth(header)))

	shortcuts := []struct{ key, desc string }{
		{"Ctrl+P", "Choose a persona"},
		{"Enter", "Send message"},
		{"PgUp/PgDn", "Scroll the conversation"},
		{"Ctrl+Y", "Copy the last reply"},
		{"Ctrl+L", "Log out"},
		{"/help", "List slash commands"},
	}
	for _, s := range shortcuts {
		key := fmt.Sprintf("    %-11s", s.key)
		line := styles.WelcomeKeyStyle.Render(key) + styles.TextStyle.Render(s.desc)
		lines = append(lines, makeLine(line, runewidth.StringWidth(key)+runewidth.StringWidth(s.desc)))
	}

	lines = append(lines, empty)
	lines = append(lines, centered(version.Summary(), styles.WelcomeVersionStyle.Render))
	lines = append(lines, bottom)

	return strings.Join(lines, "\n")
}
