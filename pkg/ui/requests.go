package ui

import (
	"context"
	"time"

	"twinchat/pkg/chat"
	"twinchat/pkg/forms"

	tea "charm.land/bubbletea/v2"
)

// Results of backend calls. Each call runs in its own command goroutine and
// reports back through the update loop.
type (
	profileLoadedMsg struct {
		user chat.User
		err  error
	}

	personasLoadedMsg struct {
		personas []chat.Persona
		err      error
	}

	historyLoadedMsg struct {
		generation uint64
		messages   []chat.Message
		err        error
	}

	replyMsg struct {
		req   chat.SendRequest
		reply chat.Message
		err   error
	}

	loginDoneMsg struct {
		email string
		err   error
	}

	registerDoneMsg struct {
		email string
		err   error
	}

	clearToastMsg struct {
		seq int
	}
)

var toastDuration = 4 * time.Second

func loadProfileCmd(ctx context.Context, svc *chat.Service) tea.Cmd {
	return func() tea.Msg {
		u, err := svc.Profile(ctx)
		return profileLoadedMsg{user: u, err: err}
	}
}

func loadPersonasCmd(ctx context.Context, svc *chat.Service) tea.Cmd {
	return func() tea.Msg {
		list, err := svc.Personas(ctx)
		return personasLoadedMsg{personas: list, err: err}
	}
}

func loadHistoryCmd(svc *chat.Service, req chat.HistoryRequest) tea.Cmd {
	return func() tea.Msg {
		msgs, err := svc.History(req)
		return historyLoadedMsg{generation: req.Generation, messages: msgs, err: err}
	}
}

func sendCmd(svc *chat.Service, req chat.SendRequest) tea.Cmd {
	return func() tea.Msg {
		reply, err := svc.Send(req)
		return replyMsg{req: req, reply: reply, err: err}
	}
}

func loginCmd(ctx context.Context, svc *chat.Service, f forms.Login) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{email: f.Email, err: svc.Login(ctx, f)}
	}
}

func registerCmd(ctx context.Context, svc *chat.Service, f forms.Register) tea.Cmd {
	return func() tea.Msg {
		return registerDoneMsg{email: f.Email, err: svc.Register(ctx, f)}
	}
}

func clearToastCmd(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}
