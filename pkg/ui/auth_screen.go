package ui

import (
	"log/slog"

	"twinchat/pkg/chat"
	"twinchat/pkg/forms"
	"twinchat/pkg/ui/components/authform"
	"twinchat/pkg/ui/components/statusbar"

	tea "charm.land/bubbletea/v2"
)

const (
	msgSessionExpired   = "Session expired. Please log in again."
	msgLoggedOut        = "Logged out"
	msgChoosePersona    = "Choose a persona first (Ctrl+P)"
	msgProfileNotLoaded = "Profile not loaded yet. Try /reload"
)

func (m *Model) activeForm() *authform.Form {
	if m.screen == ScreenRegister {
		return m.register
	}
	return m.login
}

func (m Model) updateAuthKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	form := m.activeForm()
	if !form.Busy() {
		switch msg.String() {
		case "ctrl+r":
			if m.screen == ScreenLogin {
				m.register.Reset()
				m.register.SetValue(forms.FieldEmail, m.login.Value(forms.FieldEmail))
				m.screen = ScreenRegister
				return m, nil
			}
		case "esc":
			if m.screen == ScreenRegister {
				m.screen = ScreenLogin
				return m, nil
			}
		}
	}
	return m, form.Update(msg)
}

func (m Model) submitAuth(kind authform.Kind) (tea.Model, tea.Cmd) {
	switch kind {
	case authform.KindLogin:
		f := m.login.Login()
		if err := forms.ValidateLogin(f); err != nil {
			m.login.SetErrors(err)
			return m, nil
		}
		m.login.SetErrors(nil)
		m.login.SetBusy(true)
		spin := m.spin()
		return m, tea.Batch(loginCmd(m.ctx, m.service, f), spin)

	case authform.KindRegister:
		f := m.register.Register()
		if err := forms.ValidateRegister(f, m.now()); err != nil {
			m.register.SetErrors(err)
			return m, nil
		}
		m.register.SetErrors(nil)
		m.register.SetBusy(true)
		spin := m.spin()
		return m, tea.Batch(registerCmd(m.ctx, m.service, f), spin)
	}
	return m, nil
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.login.SetBusy(false)
	if msg.err != nil {
		m.login.ClearSecrets()
		m.login.FocusField(forms.FieldPassword)
		return m, m.toast(chat.LoginFailureText(msg.err), statusbar.ToastError)
	}

	m.login.Reset()
	m.session.Reset()
	m.screen = ScreenChat
	m.refreshChat()
	slog.Debug("screen_changed", "screen", m.screen.String())
	focus := m.input.Focus()
	return m, tea.Batch(
		m.toast(chat.MsgLoginOK, statusbar.ToastSuccess),
		loadProfileCmd(m.ctx, m.service),
		focus,
	)
}

func (m Model) handleRegisterDone(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	m.register.SetBusy(false)
	if msg.err != nil {
		return m, m.toast(chat.RegisterFailureText(msg.err), statusbar.ToastError)
	}

	m.register.Reset()
	m.login.Reset()
	m.login.SetValue(forms.FieldEmail, msg.email)
	m.login.FocusField(forms.FieldPassword)
	m.screen = ScreenLogin
	return m, m.toast(chat.MsgRegisterOK, statusbar.ToastSuccess)
}

// toLogin drops all chat state and shows the login form.
func (m *Model) toLogin() {
	m.session.Reset()
	m.input.Reset()
	m.picker.Hide()
	m.settings.Hide()
	m.result.Hide()
	m.recall.Hide()
	m.login.Reset()
	m.screen = ScreenLogin
	m.refreshChat()
	slog.Debug("screen_changed", "screen", m.screen.String())
}
