package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"twinchat/pkg/api"
	"twinchat/pkg/auth"
	"twinchat/pkg/forms"
)

// ErrLoggedOut is returned when an authenticated call finds no stored token.
var ErrLoggedOut = errors.New("not logged in")

// Service performs the network half of the chat flow. The token is read from
// the auth session on every call.
type Service struct {
	auth   *auth.Session
	client *api.Client
}

// NewService joins an auth session and an API client.
func NewService(session *auth.Session, client *api.Client) *Service {
	return &Service{auth: session, client: client}
}

// LoggedIn reports whether a token is stored.
func (s *Service) LoggedIn() bool {
	return s.auth.LoggedIn()
}

// Login authenticates and stores the returned token.
func (s *Service) Login(ctx context.Context, f forms.Login) error {
	tok, err := s.client.Login(ctx, api.LoginRequest{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	})
	if err != nil {
		slog.Info("login_failed", "status", api.StatusCode(err), "error", err)
		return err
	}
	if err := s.auth.SetToken(tok.AccessToken, tok.TokenType, strings.TrimSpace(f.Email)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	slog.Info("login_succeeded")
	return nil
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, f forms.Register) error {
	err := s.client.Register(ctx, api.RegisterRequest{
		Name:      strings.TrimSpace(f.Name),
		Birthdate: strings.TrimSpace(f.Birthdate),
		Email:     strings.TrimSpace(f.Email),
		Password:  f.Password,
	})
	if err != nil {
		slog.Info("register_failed", "status", api.StatusCode(err), "error", err)
		return err
	}
	slog.Info("register_succeeded")
	return nil
}

// Logout forgets the stored token.
func (s *Service) Logout() error {
	return s.auth.Logout()
}

// Profile fetches the logged-in user. A 401 clears the stored token before
// the error is returned.
func (s *Service) Profile(ctx context.Context) (User, error) {
	token, err := s.token()
	if err != nil {
		return User{}, err
	}
	u, err := s.client.Profile(ctx, token)
	if err != nil {
		if api.IsUnauthorized(err) {
			slog.Warn("profile_unauthorized")
			if clearErr := s.auth.Logout(); clearErr != nil {
				slog.Error("auth_clear_failed", "error", clearErr)
			}
		} else {
			slog.Error("profile_load_failed", "error", err)
		}
		return User{}, err
	}
	slog.Debug("profile_loaded", "user_id", u.ID.String())
	return User{ID: u.ID.String(), Name: u.Name, Email: u.Email}, nil
}

// Personas lists the backend personas. The supervisor is not included.
func (s *Service) Personas(ctx context.Context) ([]Persona, error) {
	list, err := s.client.ListPersonas(ctx)
	if err != nil {
		slog.Error("personas_load_failed", "error", err)
		return nil, err
	}
	slog.Debug("personas_loaded", "count", len(list))
	return personasFromAPI(list), nil
}

// History fetches the transcript described by req.
func (s *Service) History(req HistoryRequest) ([]Message, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	msgs, err := s.client.ChatHistory(req.Ctx, token, req.UserID, req.PersonaID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("chat_history_failed", "persona_id", req.PersonaID, "error", err)
		}
		return nil, err
	}
	slog.Debug("chat_history_loaded", "persona_id", req.PersonaID, "count", len(msgs))
	return messagesFromAPI(msgs), nil
}

// Send posts the message described by req and returns the assistant reply.
func (s *Service) Send(req SendRequest) (Message, error) {
	token, err := s.token()
	if err != nil {
		return Message{}, err
	}
	body := api.ChatMessageCreate{Role: api.RoleUser, Content: req.Content}

	var reply api.ChatMessage
	if req.Supervisor() {
		reply, err = s.client.SendMultiAgent(req.Ctx, token, req.UserID, body)
	} else {
		reply, err = s.client.SendChat(req.Ctx, token, req.UserID, req.PersonaID, body)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("chat_send_failed", "persona_id", req.PersonaID, "error", err)
		}
		return Message{}, err
	}
	slog.Debug("chat_reply_received", "persona_id", req.PersonaID)

	msg := messageFromAPI(reply)
	msg.Role = RoleAssistant
	return msg, nil
}

func (s *Service) token() (string, error) {
	token, err := s.auth.Token()
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			return "", ErrLoggedOut
		}
		return "", err
	}
	return token, nil
}
