// Package ui is the Bubble Tea front end: login, registration and the chat
// screen built around a chat.Session.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"twinchat/pkg/chat"
	"twinchat/pkg/commands"
	"twinchat/pkg/config"
	"twinchat/pkg/ui/components/authform"
	"twinchat/pkg/ui/components/picker"
	"twinchat/pkg/ui/components/recall"
	"twinchat/pkg/ui/components/result"
	"twinchat/pkg/ui/components/settings"
	"twinchat/pkg/ui/components/statusbar"
	"twinchat/pkg/ui/components/transcript"
	"twinchat/pkg/ui/render"
	"twinchat/pkg/ui/styles"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Screen is the top-level view.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenChat
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenRegister:
		return "register"
	case ScreenChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Options configures NewModel. Service is required.
type Options struct {
	Service    *chat.Service
	Config     config.Config
	ConfigPath string

	// Clipboard receives OSC 52 sequences. Defaults to os.Stdout.
	Clipboard io.Writer
	// Context bounds every request. Defaults to context.Background().
	Context context.Context
	Now     func() time.Time
}

// Model represents the Bubble Tea application state
type Model struct {
	ctx        context.Context
	service    *chat.Service
	session    *chat.Session
	dispatcher *commands.Dispatcher
	cfg        config.Config
	configPath string
	clipboard  io.Writer
	now        func() time.Time

	screen   Screen
	login    *authform.Form
	register *authform.Form

	layout     *LayoutManager
	transcript *transcript.Transcript
	input      textarea.Model
	spinner    spinner.Model
	statusBar  *statusbar.StatusBarView
	picker     *picker.PersonaPickerPanel
	recall     *recall.RecallPanel
	settings   *settings.SettingsPanel
	result     *result.ResultPanel

	spinning bool

	width  int
	height int
	ready  bool
}

// NewModel creates a new Bubble Tea model. A stored token starts on the
// chat screen; otherwise the login form is shown.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	clipboard := opts.Clipboard
	if clipboard == nil {
		clipboard = os.Stdout
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message, or / for commands"
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(inputRows)
	ta.Focus()

	m := Model{
		ctx:        ctx,
		service:    opts.Service,
		session:    chat.NewSession(chat.WithContext(ctx), chat.WithClock(now)),
		dispatcher: commands.NewDispatcher(),
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		clipboard:  clipboard,
		now:        now,
		screen:     ScreenLogin,
		login:      authform.NewLogin(),
		register:   authform.NewRegister(),
		layout:     NewLayoutManager(),
		transcript: transcript.New(opts.Config.MarkdownStyle),
		input:      ta,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		statusBar:  statusbar.NewStatusBarView(),
		picker:     picker.NewPersonaPickerPanel(),
		recall:     recall.NewRecallPanel(),
		settings:   settings.NewSettingsPanel(),
		result:     result.NewResultPanel(),
	}
	if m.service.LoggedIn() {
		m.screen = ScreenChat
	}
	m.refreshChat()
	return m
}

// Init starts the profile fetch when a token is already stored.
func (m Model) Init() tea.Cmd {
	if m.screen == ScreenChat {
		return loadProfileCmd(m.ctx, m.service)
	}
	return nil
}

// Screen returns the active screen.
func (m Model) Screen() Screen {
	return m.screen
}

// Session exposes the chat state, mainly for tests.
func (m Model) Session() *chat.Session {
	return m.session
}

// Update handles messages and updates model state (Bubble Tea lifecycle method)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.session.Close()
			return m, tea.Quit
		}
		if m.screen == ScreenChat {
			return m.updateChatKey(msg)
		}
		return m.updateAuthKey(msg)

	case authform.SubmitMsg:
		return m.submitAuth(msg.Kind)

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case registerDoneMsg:
		return m.handleRegisterDone(msg)

	case profileLoadedMsg:
		return m.handleProfile(msg)

	case personasLoadedMsg:
		return m.handlePersonas(msg)

	case historyLoadedMsg:
		return m.handleHistory(msg)

	case replyMsg:
		return m.handleReply(msg)

	case picker.PersonaSelectMsg:
		return m.selectPersona(msg.PersonaID)

	case recall.RecallSelectMsg:
		m.input.SetValue(msg.Text)
		return m, nil

	case settings.SettingsSaveMsg:
		return m.saveSettings(msg)

	case settings.SettingsCloseMsg, result.ResultPanelCloseMsg:
		return m, nil

	case clearToastMsg:
		m.statusBar.ClearToast(msg.seq)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshChat()
		return m, cmd
	}

	// Paste and cursor blink go to whichever input has focus.
	var cmd tea.Cmd
	if m.screen == ScreenChat {
		m.input, cmd = m.input.Update(msg)
	} else {
		cmd = m.activeForm().Update(msg)
	}
	return m, cmd
}

// View renders the UI (Bubble Tea lifecycle method)
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	if !m.ready {
		return "Initializing..."
	}

	m.statusBar.SetWidth(m.width)
	status := m.statusBar.Render()

	if m.screen != ScreenChat {
		return lipgloss.JoinVertical(lipgloss.Left, m.layout.Center(m.activeForm().View()), status)
	}

	screen := m.layout.RenderLayout(
		m.transcript.View(),
		styles.InputBoxStyle.Render(m.input.View()),
		status,
	)
	if overlay := m.overlayView(); overlay != "" {
		screen = render.Overlay(screen, overlay, m.width, m.layout.BodyHeight())
	}
	return screen
}

func (m Model) overlayView() string {
	switch {
	case m.result.IsVisible():
		return m.result.View()
	case m.settings.IsVisible():
		return m.settings.View()
	case m.picker.IsVisible():
		return m.picker.View()
	case m.recall.IsVisible():
		return m.recall.View()
	}
	return ""
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	m.layout.SetSize(width, height)
	m.transcript.SetSize(width, m.layout.TranscriptHeight())
	m.input.SetWidth(width - 2)
	m.input.SetHeight(m.layout.InputRows())
	m.statusBar.SetWidth(width)

	body := m.layout.BodyHeight()
	m.login.SetSize(width, body)
	m.register.SetSize(width, body)
	m.picker.SetSize(width, body)
	m.recall.SetSize(width, body)
	m.settings.SetSize(width, body)
	m.result.SetSize(width, body)
}

func (m *Model) toast(text string, kind statusbar.ToastKind) tea.Cmd {
	return clearToastCmd(m.statusBar.SetToast(text, kind))
}

func (m *Model) busy() bool {
	return m.session.LoadingHistory() || m.session.Typing() || m.login.Busy() || m.register.Busy()
}

// spin starts the spinner if work is outstanding and it is not running yet.
// It sets m.spinning, so call it before m is copied into a return.
func (m *Model) spin() tea.Cmd {
	if m.spinning || !m.busy() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}
