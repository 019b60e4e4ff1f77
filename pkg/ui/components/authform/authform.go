// Package authform renders the login and registration forms.
package authform

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"twinchat/pkg/forms"
	"twinchat/pkg/ui/styles"
)

// Kind identifies which form was submitted.
type Kind int

const (
	KindLogin Kind = iota
	KindRegister
)

// SubmitMsg is emitted when Enter is pressed on the last field.
type SubmitMsg struct {
	Kind Kind
}

type field struct {
	key   string
	label string
	input textinput.Model
}

// Form is a vertical list of labeled text inputs with inline errors.
type Form struct {
	kind   Kind
	title  string
	hint   string
	fields []field
	focus  int
	errors forms.Errors
	busy   bool
	width  int
	height int
}

// NewLogin creates the email and password form.
func NewLogin() *Form {
	return newForm(KindLogin, "Log in to twinchat", "Tab: Next field • Enter: Log in • Ctrl+R: Create account • Ctrl+C: Quit",
		newField(forms.FieldEmail, "Email", "you@example.com", false),
		newField(forms.FieldPassword, "Password", "", true),
	)
}

// NewRegister creates the account creation form.
func NewRegister() *Form {
	return newForm(KindRegister, "Create an account", "Tab: Next field • Enter: Register • Esc: Back to login",
		newField(forms.FieldName, "Name", "Your name", false),
		newField(forms.FieldEmail, "Email", "you@example.com", false),
		newField(forms.FieldPassword, "Password", "at least 8 characters", true),
		newField(forms.FieldConfirmPassword, "Confirm password", "", true),
		newField(forms.FieldBirthdate, "Birthdate", "YYYY-MM-DD", false),
	)
}

func newForm(kind Kind, title, hint string, fields ...field) *Form {
	f := &Form{kind: kind, title: title, hint: hint, fields: fields, width: 80}
	f.applyFocus()
	return f
}

func newField(key, label, placeholder string, secret bool) field {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 256
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return field{key: key, label: label, input: in}
}

// Kind returns the form kind.
func (f *Form) Kind() Kind {
	return f.kind
}

// SetSize updates the available area.
func (f *Form) SetSize(width, height int) {
	f.width = width
	f.height = height
	inputWidth := f.boxWidth() - 6 - 18
	if inputWidth < 8 {
		inputWidth = 8
	}
	for i := range f.fields {
		f.fields[i].input.SetWidth(inputWidth)
	}
}

// Focused returns the key of the focused field.
func (f *Form) Focused() string {
	return f.fields[f.focus].key
}

// FocusField moves focus to the field with key.
func (f *Form) FocusField(key string) {
	for i, fl := range f.fields {
		if fl.key == key {
			f.focus = i
			f.applyFocus()
			return
		}
	}
}

// Value returns the raw text of the field with key.
func (f *Form) Value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return fl.input.Value()
		}
	}
	return ""
}

// SetValue replaces the text of the field with key.
func (f *Form) SetValue(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(value)
			return
		}
	}
}

// Login returns the login input.
func (f *Form) Login() forms.Login {
	return forms.Login{
		Email:    f.Value(forms.FieldEmail),
		Password: f.Value(forms.FieldPassword),
	}
}

// Register returns the registration input.
func (f *Form) Register() forms.Register {
	return forms.Register{
		Name:            f.Value(forms.FieldName),
		Email:           f.Value(forms.FieldEmail),
		Password:        f.Value(forms.FieldPassword),
		ConfirmPassword: f.Value(forms.FieldConfirmPassword),
		Birthdate:       f.Value(forms.FieldBirthdate),
	}
}

// SetErrors shows field errors from err inline and moves focus to the first
// failing field. Errors that are not field errors are ignored.
func (f *Form) SetErrors(err error) {
	errs, ok := forms.AsErrors(err)
	if !ok {
		f.errors = nil
		return
	}
	f.errors = errs
	for i, fl := range f.fields {
		if errs.Get(fl.key) != "" {
			f.focus = i
			f.applyFocus()
			return
		}
	}
}

// Errors returns the current inline errors.
func (f *Form) Errors() forms.Errors {
	return f.errors
}

// SetBusy marks a submission in flight. Input is ignored while busy.
func (f *Form) SetBusy(busy bool) {
	f.busy = busy
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool {
	return f.busy
}

// Reset clears values, errors and focus.
func (f *Form) Reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
	}
	f.errors = nil
	f.busy = false
	f.focus = 0
	f.applyFocus()
}

// ClearSecrets empties password fields only.
func (f *Form) ClearSecrets() {
	for i := range f.fields {
		if f.fields[i].input.EchoMode == textinput.EchoPassword {
			f.fields[i].input.Reset()
		}
	}
}

// Update handles focus movement and submission, and forwards everything else
// to the focused input.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	if f.busy {
		return nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.move(1)
			return nil
		case "shift+tab", "up":
			f.move(-1)
			return nil
		case "enter":
			if f.focus < len(f.fields)-1 {
				f.move(1)
				return nil
			}
			kind := f.kind
			return func() tea.Msg { return SubmitMsg{Kind: kind} }
		}
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *Form) move(delta int) {
	n := len(f.fields)
	f.focus = (f.focus + delta + n) % n
	f.applyFocus()
}

func (f *Form) applyFocus() {
	for i := range f.fields {
		if i == f.focus {
			f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
}

// View renders the form box.
func (f *Form) View() string {
	var content strings.Builder

	content.WriteString(styles.TitleStyle.Render(f.title))
	content.WriteString("\n\n")

	for i, fl := range f.fields {
		label := styles.LabelStyle.Render(fl.label)
		if i == f.focus {
			label = styles.FocusedLabelStyle.Render(fl.label)
		}
		content.WriteString(label + fl.input.View() + "\n")
		if msg := f.errors.Get(fl.key); msg != "" {
			content.WriteString(strings.Repeat(" ", 18) + styles.ErrorStyle.Render(msg) + "\n")
		}
	}

	content.WriteString("\n")
	if f.busy {
		content.WriteString(styles.TextMutedStyle.Render("Please wait..."))
	} else {
		content.WriteString(styles.FooterStyle.Render(f.hint))
	}

	return styles.BoxStyle.Width(f.boxWidth()).Render(content.String())
}

func (f *Form) boxWidth() int {
	w := f.width - 2
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}
