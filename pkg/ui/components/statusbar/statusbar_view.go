package statusbar

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"twinchat/pkg/ui/styles"
)

// ToastKind selects the toast color.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// StatusBarView renders the bottom line: who is logged in, which persona is
// active and what the session is doing. A toast replaces the hints.
type StatusBarView struct {
	user    string
	persona string
	state   string
	toast   string
	kind    ToastKind
	seq     int
	width   int
}

// NewStatusBarView creates a new status bar view
func NewStatusBarView() *StatusBarView {
	return &StatusBarView{width: 80}
}

// SetUser updates the logged-in user label.
func (s *StatusBarView) SetUser(user string) {
	s.user = strings.TrimSpace(user)
}

// SetPersona updates the active persona label.
func (s *StatusBarView) SetPersona(persona string) {
	s.persona = strings.TrimSpace(persona)
}

// SetState shows a short activity word, e.g. "loading" or "typing".
func (s *StatusBarView) SetState(state string) {
	s.state = strings.TrimSpace(state)
}

// SetToast shows a transient message and returns its sequence number for
// ClearToast.
func (s *StatusBarView) SetToast(msg string, kind ToastKind) int {
	s.seq++
	s.toast = msg
	s.kind = kind
	return s.seq
}

// ClearToast removes the toast if no newer one replaced it.
func (s *StatusBarView) ClearToast(seq int) {
	if seq == s.seq {
		s.toast = ""
		s.kind = ToastInfo
	}
}

// Toast returns the current toast text.
func (s *StatusBarView) Toast() string {
	return s.toast
}

// SetWidth updates the width for rendering
func (s *StatusBarView) SetWidth(width int) {
	s.width = width
}

// Render returns the styled status bar string
func (s *StatusBarView) Render() string {
	parts := []string{"[twinchat]"}
	if s.user != "" {
		parts = append(parts, s.user)
	}
	persona := s.persona
	if persona == "" {
		persona = "no persona"
	}
	parts = append(parts, "[persona]: "+persona)
	if s.state != "" {
		parts = append(parts, s.state)
	}
	if s.toast != "" {
		parts = append(parts, s.toast)
	} else {
		parts = append(parts, "Ctrl+P personas | / commands")
	}
	content := strings.Join(parts, " | ")

	// Padding(0, 1) takes two columns.
	maxWidth := s.width - 2
	if maxWidth < 10 {
		maxWidth = 10
	}
	if ansi.StringWidth(content) > maxWidth {
		content = ansi.Truncate(content, maxWidth, "...")
	}
	if pad := maxWidth - ansi.StringWidth(content); pad > 0 {
		content += strings.Repeat(" ", pad)
	}

	style := styles.StatusBarStyle
	if s.toast != "" {
		switch s.kind {
		case ToastError:
			style = styles.StatusBarErrorStyle
		case ToastSuccess:
			style = styles.StatusBarSuccessStyle
		}
	}
	return style.Render(content)
}
