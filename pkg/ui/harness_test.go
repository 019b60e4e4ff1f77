package ui

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"twinchat/pkg/api"
	"twinchat/pkg/api/apitest"
	"twinchat/pkg/auth"
	"twinchat/pkg/chat"
	"twinchat/pkg/config"
	"twinchat/pkg/ui/components/authform"
	"twinchat/pkg/ui/components/picker"
	"twinchat/pkg/ui/components/recall"
	"twinchat/pkg/ui/components/result"
	"twinchat/pkg/ui/components/settings"

	tea "charm.land/bubbletea/v2"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "Secret123"
	cmdTimeout   = 5 * time.Second
)

// harness drives a Model against the fake backend, running commands
// synchronously and feeding their messages back in.
type harness struct {
	t         *testing.T
	srv       *apitest.Server
	auth      *auth.Session
	svc       *chat.Service
	clipboard *bytes.Buffer
	userID    string
	model     Model
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()

	prev := toastDuration
	toastDuration = 0
	t.Cleanup(func() { toastDuration = prev })

	srv := apitest.New(t)
	userID := srv.AddUser("Ada", testEmail, testPassword)

	client, err := api.NewClient(config.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 5})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	session := auth.NewSession(auth.NewTokenStore(filepath.Join(t.TempDir(), "auth.json")))
	if loggedIn {
		if err := session.SetToken(srv.IssueToken(testEmail), "bearer", testEmail); err != nil {
			t.Fatalf("SetToken() error: %v", err)
		}
	}

	cfg := config.Default()
	cfg.MarkdownStyle = "notty"

	h := &harness{
		t:         t,
		srv:       srv,
		auth:      session,
		svc:       chat.NewService(session, client),
		clipboard: &bytes.Buffer{},
		userID:    userID,
	}
	h.model = NewModel(Options{
		Service:    h.svc,
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.json"),
		Clipboard:  h.clipboard,
		Now:        func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	h.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

// start runs Init to completion.
func (h *harness) start() {
	h.run(h.model.Init())
}

// send delivers msg and runs everything it triggers.
func (h *harness) send(msg tea.Msg) {
	h.run(h.update(msg))
}

// update delivers msg and returns its command without running it.
func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) run(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := h.exec(c).(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case profileLoadedMsg, personasLoadedMsg, historyLoadedMsg, replyMsg,
			loginDoneMsg, registerDoneMsg, authform.SubmitMsg, picker.PersonaSelectMsg,
			recall.RecallSelectMsg, settings.SettingsSaveMsg, settings.SettingsCloseMsg, result.ResultPanelCloseMsg:
			queue = append(queue, h.update(msg))
		}
	}
}

// exec runs one command. Timers that never fire in time are dropped.
func (h *harness) exec(c tea.Cmd) tea.Msg {
	done := make(chan tea.Msg, 1)
	go func() { done <- c() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(cmdTimeout):
		h.t.Logf("command timed out after %s", cmdTimeout)
		return nil
	}
}

// typeInput replaces the message input and presses Enter.
func (h *harness) typeInput(text string) tea.Cmd {
	h.model.input.SetValue(text)
	return h.update(testKeyEnter)
}

func (h *harness) toast() string {
	return h.model.statusBar.Toast()
}

func (h *harness) selectPersona(id string) {
	h.send(picker.PersonaSelectMsg{PersonaID: id})
}
