package auth

import (
	"log/slog"
)

// Session is the explicit authentication context handed to the networking
// layer. The token is read from the store on every call; nothing is cached.
type Session struct {
	store *TokenStore
}

// NewSession wraps a token store.
func NewSession(store *TokenStore) *Session {
	return &Session{store: store}
}

// Token returns the current bearer token or ErrNoToken.
func (s *Session) Token() (string, error) {
	tok, err := s.store.Load()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// LoggedIn reports whether a token is present.
func (s *Session) LoggedIn() bool {
	return s.store.HasToken()
}

// SetToken stores a freshly issued token.
func (s *Session) SetToken(accessToken, tokenType, email string) error {
	return s.store.Save(StoredToken{
		AccessToken: accessToken,
		TokenType:   tokenType,
		Email:       email,
	})
}

// Email returns the address used for the last login, if recorded.
func (s *Session) Email() string {
	tok, err := s.store.Load()
	if err != nil {
		return ""
	}
	return tok.Email
}

// Logout clears the stored token.
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		slog.Error("auth_logout_error", "error", err)
		return err
	}
	slog.Info("auth_logout")
	return nil
}
