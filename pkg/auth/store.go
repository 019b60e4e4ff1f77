package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TokenKey is the key the bearer token is stored under.
const TokenKey = "token"

// ErrNoToken is returned when no bearer token has been stored.
var ErrNoToken = errors.New("no stored token")

// StoredToken is a bearer token issued by the backend at login.
type StoredToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	Email       string    `json:"email,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// tokenStore is the on-disk format for storing credentials.
type tokenStore struct {
	Entries map[string]StoredToken `json:"entries"`
}

// TokenStore persists the bearer token in a JSON file with 0600 permissions.
type TokenStore struct {
	path string
	mu   sync.RWMutex
}

// NewTokenStore creates a TokenStore backed by the given file.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Path returns the backing file path.
func (s *TokenStore) Path() string {
	return s.path
}

// Save stores the token.
func (s *TokenStore) Save(tok StoredToken) error {
	if strings.TrimSpace(tok.AccessToken) == "" {
		return fmt.Errorf("access token is empty")
	}
	if tok.SavedAt.IsZero() {
		tok.SavedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.loadStore()
	if err != nil {
		store = &tokenStore{Entries: make(map[string]StoredToken)}
	}
	store.Entries[TokenKey] = tok

	slog.Debug("auth_save",
		"path", s.path,
		"token_type", tok.TokenType,
		"has_email", tok.Email != "",
	)
	return s.saveStore(store)
}

// Load retrieves the stored token. It returns ErrNoToken when none is stored.
func (s *TokenStore) Load() (*StoredToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	store, err := s.loadStore()
	if err != nil {
		slog.Debug("auth_load_error", "error", err)
		return nil, err
	}

	tok, ok := store.Entries[TokenKey]
	if !ok || strings.TrimSpace(tok.AccessToken) == "" {
		slog.Debug("auth_load_missing", "path", s.path)
		return nil, ErrNoToken
	}
	return &tok, nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.loadStore()
	if err != nil {
		// Unreadable file: replace it rather than leave a stale token around.
		store = &tokenStore{Entries: make(map[string]StoredToken)}
	}
	if _, ok := store.Entries[TokenKey]; !ok {
		if _, statErr := os.Stat(s.path); os.IsNotExist(statErr) {
			return nil
		}
	}
	delete(store.Entries, TokenKey)

	slog.Debug("auth_clear", "path", s.path)
	return s.saveStore(store)
}

// HasToken reports whether a token is stored.
func (s *TokenStore) HasToken() bool {
	_, err := s.Load()
	return err == nil
}

// loadStore reads the store from disk.
func (s *TokenStore) loadStore() (*tokenStore, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &tokenStore{Entries: make(map[string]StoredToken)}, nil
		}
		return nil, fmt.Errorf("failed to read auth file: %w", err)
	}

	var store tokenStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("failed to parse auth file: %w", err)
	}
	if store.Entries == nil {
		store.Entries = make(map[string]StoredToken)
	}
	return &store, nil
}

// saveStore writes the store to disk with secure permissions.
func (s *TokenStore) saveStore(store *tokenStore) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create auth directory: %w", err)
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal auth data: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}
	return nil
}
