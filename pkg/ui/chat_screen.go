package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"twinchat/pkg/api"
	"twinchat/pkg/chat"
	"twinchat/pkg/commands"
	"twinchat/pkg/config"
	"twinchat/pkg/ui/components/settings"
	"twinchat/pkg/ui/components/statusbar"
	"twinchat/pkg/ui/components/welcome"

	tea "charm.land/bubbletea/v2"
)

func (m Model) updateChatKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.result.IsVisible():
		return m, m.result.Update(msg)
	case m.settings.IsVisible():
		return m, m.settings.Update(msg)
	case m.picker.IsVisible():
		return m, m.picker.Update(msg)
	case m.recall.IsVisible():
		return m, m.recall.Update(msg)
	}

	switch msg.String() {
	case "ctrl+p":
		return m, m.openPicker()
	case "ctrl+l":
		return m.logout()
	case "ctrl+y":
		return m, m.copyLast()
	case "ctrl+o":
		m.recall.Show(m.sentMessages())
		return m, nil
	case "ctrl+r":
		return m.reload()
	case "enter":
		return m.submitInput()
	case "esc":
		m.input.Reset()
		return m, nil
	}

	if m.transcript.Update(msg) {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	if res, ok := m.dispatcher.Run(text, commands.NewContext(m.session, m.clipboard, m.now())); ok {
		m.input.Reset()
		return m.applyCommand(res)
	}

	if m.session.SelectedID() == "" {
		return m, m.toast(msgChoosePersona, statusbar.ToastError)
	}
	if m.session.User().ID == "" {
		return m, m.toast(msgProfileNotLoaded, statusbar.ToastError)
	}

	req, ok := m.session.BeginSend(text)
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.transcript.ScrollToBottom()
	m.refreshChat()
	slog.Debug("chat_message_sent", "persona_id", req.PersonaID, "supervisor", req.Supervisor())
	spin := m.spin()
	return m, tea.Batch(sendCmd(m.service, req), spin)
}

func (m Model) applyCommand(res *commands.Result) (tea.Model, tea.Cmd) {
	if res.Error != nil {
		return m, m.toast(res.Content, statusbar.ToastError)
	}

	switch res.Action {
	case commands.ActionOpenPersonas:
		return m, m.openPicker()
	case commands.ActionLogout:
		return m.logout()
	case commands.ActionReload:
		return m.reload()
	case commands.ActionOpenSettings:
		m.settings.Show(m.cfg, m.configPath)
		return m, nil
	}

	switch {
	case strings.Contains(res.Content, "\n"):
		m.result.Show(res.Title, res.Content)
		return m, nil
	case res.Content != "":
		return m, m.toast(res.Content, statusbar.ToastSuccess)
	}
	return m, nil
}

func (m *Model) openPicker() tea.Cmd {
	personas := m.session.Personas()
	if len(personas) == 0 {
		return tea.Batch(
			m.toast("Loading personas...", statusbar.ToastInfo),
			loadPersonasCmd(m.ctx, m.service),
		)
	}
	m.picker.Show(personas, m.session.SelectedID())
	return nil
}

func (m Model) selectPersona(id string) (tea.Model, tea.Cmd) {
	req, ok := m.session.Select(id)
	slog.Debug("persona_selected", "persona_id", id, "fetch_history", ok)
	m.transcript.ScrollToBottom()
	m.refreshChat()
	if !ok {
		return m, nil
	}
	spin := m.spin()
	return m, tea.Batch(loadHistoryCmd(m.service, req), spin)
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.toast("Reloading...", statusbar.ToastInfo)}
	if m.session.User().ID == "" {
		// Personas and history follow once the profile arrives.
		cmds = append(cmds, loadProfileCmd(m.ctx, m.service))
	} else {
		cmds = append(cmds, loadPersonasCmd(m.ctx, m.service))
		if req, ok := m.session.Reload(); ok {
			cmds = append(cmds, loadHistoryCmd(m.service, req))
		}
	}
	m.refreshChat()
	cmds = append(cmds, m.spin())
	return m, tea.Batch(cmds...)
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if err := m.service.Logout(); err != nil {
		slog.Error("logout_failed", "error", err)
	}
	m.toLogin()
	return m, m.toast(msgLoggedOut, statusbar.ToastInfo)
}

// sentMessages returns the user's messages in the current conversation.
func (m *Model) sentMessages() []string {
	var out []string
	for _, msg := range m.session.Messages() {
		if msg.Role == chat.RoleUser {
			out = append(out, msg.Content)
		}
	}
	return out
}

func (m *Model) copyLast() tea.Cmd {
	msg, ok := m.session.LastAssistant()
	if !ok {
		return m.toast("Nothing to copy yet", statusbar.ToastError)
	}
	if err := commands.CopyToClipboard(m.clipboard, msg.Content); err != nil {
		return m.toast(err.Error(), statusbar.ToastError)
	}
	return m.toast("Copied last reply to clipboard", statusbar.ToastSuccess)
}

func (m Model) handleProfile(msg profileLoadedMsg) (tea.Model, tea.Cmd) {
	if m.screen != ScreenChat {
		return m, nil
	}
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) || errors.Is(msg.err, chat.ErrLoggedOut) {
			m.toLogin()
			return m, m.toast(msgSessionExpired, statusbar.ToastError)
		}
		// Personas wait for a profile; /reload retries it.
		return m, m.toast("Could not load your profile", statusbar.ToastError)
	}

	req, ok := m.session.SetUser(msg.user)
	m.refreshChat()
	cmds := []tea.Cmd{loadPersonasCmd(m.ctx, m.service)}
	if ok {
		cmds = append(cmds, loadHistoryCmd(m.service, req), m.spin())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handlePersonas(msg personasLoadedMsg) (tea.Model, tea.Cmd) {
	if m.screen != ScreenChat {
		return m, nil
	}
	var cmd tea.Cmd
	if msg.err != nil {
		if len(m.session.Personas()) == 0 {
			m.session.SetPersonas(nil)
		}
		cmd = m.toast("Could not load personas", statusbar.ToastError)
	} else {
		m.session.SetPersonas(msg.personas)
	}
	if m.picker.IsVisible() {
		m.picker.Show(m.session.Personas(), m.session.SelectedID())
	}
	m.refreshChat()
	return m, cmd
}

func (m Model) handleHistory(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.session.ApplyHistory(msg.generation, msg.messages, msg.err) {
		slog.Debug("chat_history_discarded", "generation", msg.generation)
		return m, nil
	}
	m.transcript.ScrollToBottom()
	m.refreshChat()
	if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
		return m, m.toast("Could not load the conversation", statusbar.ToastError)
	}
	return m, nil
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	if !m.session.ApplyReply(msg.req, msg.reply, msg.err) {
		slog.Debug("chat_reply_discarded", "generation", msg.req.Generation)
		return m, nil
	}
	m.refreshChat()
	return m, nil
}

func (m Model) saveSettings(msg settings.SettingsSaveMsg) (tea.Model, tea.Cmd) {
	if err := config.Save(msg.ConfigPath, msg.Config); err != nil {
		slog.Error("settings_save_failed", "error", err)
		return m, m.toast("Could not save settings", statusbar.ToastError)
	}
	m.cfg = msg.Config
	m.transcript.SetMarkdownStyle(m.cfg.MarkdownStyle)
	slog.Info("settings_saved", "path", msg.ConfigPath)
	return m, m.toast("Settings saved. Connection changes apply after restart.", statusbar.ToastSuccess)
}

// refreshChat pushes session state into the transcript and status bar.
func (m *Model) refreshChat() {
	persona, selected := m.session.Selected()
	user := m.session.User()

	m.transcript.SetAssistantName(persona.Name)
	m.transcript.SetMessages(m.session.Messages())

	state := ""
	switch {
	case m.session.LoadingHistory():
		state = "loading"
		m.transcript.SetTyping(m.spinner.View() + " Loading conversation...")
	case m.session.Typing():
		state = "typing"
		m.transcript.SetTyping(m.spinner.View() + " " + persona.Name + " is typing...")
	default:
		m.transcript.SetTyping("")
	}

	switch {
	case !selected:
		m.transcript.SetBanner(welcome.WelcomeMessage(user.Name))
	case persona.IsSupervisor():
		m.transcript.SetBanner("")
		m.transcript.SetEmptyText("Ask anything. The supervisor routes each question to the best persona.")
	default:
		m.transcript.SetBanner("")
		m.transcript.SetEmptyText("No messages yet. Say hello to " + persona.Name + ".")
	}

	label := user.Name
	if label == "" {
		label = user.Email
	}
	m.statusBar.SetUser(label)
	m.statusBar.SetPersona(persona.Name)
	m.statusBar.SetState(state)
}
