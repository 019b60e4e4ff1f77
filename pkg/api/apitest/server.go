// Package apitest runs an in-process Digital Twin backend for tests. It keeps
// users, tokens, personas and transcripts in memory and records every request.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"twinchat/pkg/api"
)

// Request is one call seen by the server.
type Request struct {
	Method     string
	Path       string
	Authorized bool
	Body       string
}

type user struct {
	id        int
	name      string
	email     string
	password  string
	birthdate string
}

type persona struct {
	id   int
	name string
}

type message struct {
	id        int
	role      string
	content   string
	createdAt time.Time
}

type chatKey struct {
	userID    string
	personaID string
}

// Server is a fake backend listening on a loopback port.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int
	users    map[string]*user
	tokens   map[string]int
	personas []persona
	chats    map[chatKey][]message
	requests []Request
	failures map[string]int
	now      func() time.Time
}

// New starts a server seeded with two personas, Ana (1) and Bruno (2).
// It is closed automatically when the test ends.
func New(tb testingTB) *Server {
	s := &Server{
		nextID:   100,
		users:    make(map[string]*user),
		tokens:   make(map[string]int),
		personas: []persona{{id: 1, name: "Ana"}, {id: 2, name: "Bruno"}},
		chats:    make(map[chatKey][]message),
		failures: make(map[string]int),
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.Server = httptest.NewServer(s.routes())
	tb.Cleanup(s.Close)
	return s
}

// testingTB is the subset of testing.TB the server needs.
type testingTB interface {
	Cleanup(func())
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route("/api/v1", func(v1 chi.Router) {
		route := func(method, pattern string, h http.HandlerFunc) {
			v1.Method(method, pattern, s.handle(method, pattern, h))
		}
		route(http.MethodPost, "/users/login", s.handleLogin)
		route(http.MethodPost, "/users/register", s.handleRegister)
		route(http.MethodGet, "/users/profile", s.authed(s.handleProfile))
		route(http.MethodGet, "/personas/", s.handlePersonas)
		route(http.MethodGet, "/users/{userID}/chats/{personaID}", s.authed(s.handleHistory))
		route(http.MethodPost, "/users/{userID}/chats/{personaID}", s.authed(s.handleSend))
		route(http.MethodPost, "/users/{userID}/multi-agent", s.authed(s.handleMultiAgent))
	})
	return r
}

// SetClock fixes the time stamped on new messages.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUserLocked(name, email, password, "")
	return strconv.Itoa(u.id)
}

// IssueToken returns a fresh bearer token for a registered email.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		panic(fmt.Sprintf("apitest: unknown user %q", email))
	}
	return s.issueTokenLocked(u)
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]int)
}

// HasUser reports whether an account exists for email.
func (s *Server) HasUser(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[strings.ToLower(email)]
	return ok
}

// AddPersona appends a persona and returns its id.
func (s *Server) AddPersona(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.personas = append(s.personas, persona{id: s.nextID, name: name})
	return strconv.Itoa(s.nextID)
}

// SetHistory replaces the stored transcript for a user and persona.
// Each entry is a role ("User" or "Assistant") followed by its content.
func (s *Server) SetHistory(userID, personaID string, pairs ...[2]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := chatKey{userID: userID, personaID: personaID}
	s.chats[key] = nil
	for _, p := range pairs {
		s.appendLocked(key, p[0], p[1])
	}
}

// Fail makes every call matching method and route pattern answer with status.
// The pattern is relative to /api/v1, for example "/users/{userID}/multi-agent".
// A status of 0 clears the failure.
func (s *Server) Fail(method, pattern string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + pattern
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = status
}

// Requests returns every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests hit method and the exact path.
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:     r.Method,
			Path:       r.URL.Path,
			Authorized: strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "),
			Body:       string(body),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handle(method, pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, failing := s.failures[method+" "+pattern]
		s.mu.Unlock()
		if failing {
			respondError(w, status, http.StatusText(status))
			return
		}
		next(w, r)
	}
}

type authedHandler func(w http.ResponseWriter, r *http.Request, u *user)

func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		s.mu.Lock()
		id, known := s.tokens[token]
		var u *user
		if known {
			u = s.userByIDLocked(id)
		}
		s.mu.Unlock()

		if u == nil {
			respondError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if pathUser := chi.URLParam(r, "userID"); pathUser != "" && pathUser != strconv.Itoa(u.id) {
			respondError(w, http.StatusForbidden, "Not allowed")
			return
		}
		next(w, r, u)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondValidation(w, "body", "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(payload.Email)]
	if !ok || u.password != payload.Password {
		respondError(w, http.StatusNotFound, "Credentials invalid. Try again.")
		return
	}
	respondJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken: s.issueTokenLocked(u),
		TokenType:   "bearer",
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondValidation(w, "body", "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		respondValidation(w, "email", "field required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[strings.ToLower(payload.Email)]; exists {
		respondError(w, http.StatusNotFound, "Email already in use. Try another one.")
		return
	}
	s.addUserLocked(payload.Name, payload.Email, payload.Password, payload.Birthdate)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request, u *user) {
	respondJSON(w, http.StatusOK, map[string]any{
		"id":        u.id,
		"name":      u.name,
		"email":     u.email,
		"birthdate": u.birthdate,
	})
}

func (s *Server) handlePersonas(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.personas))
	for _, p := range s.personas {
		out = append(out, map[string]any{"id": p.id, "name": p.name})
	}
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, u *user) {
	personaID := chi.URLParam(r, "personaID")

	s.mu.Lock()
	if !s.hasPersonaLocked(personaID) {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "Persona not found")
		return
	}
	msgs := s.chats[chatKey{userID: strconv.Itoa(u.id), personaID: personaID}]
	var out []map[string]any
	for _, m := range msgs {
		out = append(out, encodeMessage(m))
	}
	s.mu.Unlock()

	// The backend answers null when no chat exists yet.
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request, u *user) {
	personaID := chi.URLParam(r, "personaID")
	var payload api.ChatMessageCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Content) == "" {
		respondValidation(w, "content", "field required")
		return
	}

	s.mu.Lock()
	if !s.hasPersonaLocked(personaID) {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "Persona not found")
		return
	}
	key := chatKey{userID: strconv.Itoa(u.id), personaID: personaID}
	s.appendLocked(key, api.RoleUser, payload.Content)
	reply := s.appendLocked(key, api.RoleAssistant, "echo: "+payload.Content)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, encodeMessage(reply))
}

func (s *Server) handleMultiAgent(w http.ResponseWriter, r *http.Request, _ *user) {
	var payload api.ChatMessageCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Content) == "" {
		respondValidation(w, "content", "field required")
		return
	}

	s.mu.Lock()
	p := s.personas[0]
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"output":     p.name + ": " + payload.Content,
		"persona":    p.name,
		"persona_id": p.id,
		"confidence": 0.9,
	})
}

func (s *Server) addUserLocked(name, email, password, birthdate string) *user {
	s.nextID++
	u := &user{id: s.nextID, name: name, email: email, password: password, birthdate: birthdate}
	s.users[strings.ToLower(email)] = u
	return u
}

func (s *Server) issueTokenLocked(u *user) string {
	token := uuid.NewString()
	s.tokens[token] = u.id
	return token
}

func (s *Server) userByIDLocked(id int) *user {
	for _, u := range s.users {
		if u.id == id {
			return u
		}
	}
	return nil
}

func (s *Server) hasPersonaLocked(id string) bool {
	for _, p := range s.personas {
		if strconv.Itoa(p.id) == id {
			return true
		}
	}
	return false
}

func (s *Server) appendLocked(key chatKey, role, content string) message {
	s.nextID++
	m := message{id: s.nextID, role: role, content: content, createdAt: s.now()}
	s.chats[key] = append(s.chats[key], m)
	return m
}

func encodeMessage(m message) map[string]any {
	return map[string]any{
		"id":         m.id,
		"role":       m.role,
		"content":    m.content,
		"created_at": m.createdAt.Format("2006-01-02T15:04:05.000000"),
	}
}
