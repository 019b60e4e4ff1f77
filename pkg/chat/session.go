package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is the selection state of a Session.
type State int

const (
	StateUnselected State = iota
	StateLoadingHistory
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnselected:
		return "unselected"
	case StateLoadingHistory:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// HistoryRequest describes a history fetch issued by Select.
type HistoryRequest struct {
	Ctx        context.Context
	Generation uint64
	UserID     string
	PersonaID  string
}

// SendRequest describes a send issued by BeginSend.
type SendRequest struct {
	Ctx        context.Context
	Generation uint64
	UserID     string
	PersonaID  string
	Content    string
	// LocalID is the id of the optimistic user message.
	LocalID string
}

// Supervisor reports whether the send goes to the multi-agent endpoint.
func (r SendRequest) Supervisor() bool {
	return r.PersonaID == SupervisorID
}

// Session holds the chat state for one logged-in user. It performs no I/O;
// callers run the requests it returns and feed the results back.
//
// Every selection starts a new generation. Results carry the generation they
// were issued under and are dropped when it is no longer current.
type Session struct {
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	user     User
	personas []Persona
	selected string
	messages []Message

	loading    bool
	inflight   int
	generation uint64

	now   func() time.Time
	newID func() string
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source for optimistic and synthetic messages.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator sets the id source for client-created messages.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// WithContext sets the parent of every per-generation context.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.parent = ctx }
}

// NewSession returns an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		parent: context.Background(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(s.parent)
	return s
}

// User returns the current user.
func (s *Session) User() User { return s.user }

// SetUser records the logged-in user. If the user id changed while a persona
// is selected, the history is refetched.
func (s *Session) SetUser(u User) (HistoryRequest, bool) {
	changed := u.ID != s.user.ID
	s.user = u
	if !changed || s.selected == "" {
		return HistoryRequest{}, false
	}
	return s.Select(s.selected)
}

// SetPersonas replaces the persona list. The supervisor is always first.
func (s *Session) SetPersonas(list []Persona) {
	out := make([]Persona, 0, len(list)+1)
	out = append(out, supervisorPersona())
	seen := map[string]bool{SupervisorID: true}
	for _, p := range list {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	s.personas = out
}

// Personas returns the persona list, supervisor first. It is empty until
// SetPersonas is called.
func (s *Session) Personas() []Persona {
	out := make([]Persona, len(s.personas))
	copy(out, s.personas)
	return out
}

// Persona looks up a persona by id.
func (s *Session) Persona(id string) (Persona, bool) {
	if id == SupervisorID {
		return supervisorPersona(), true
	}
	for _, p := range s.personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// Selected returns the selected persona.
func (s *Session) Selected() (Persona, bool) {
	if s.selected == "" {
		return Persona{}, false
	}
	if p, ok := s.Persona(s.selected); ok {
		return p, true
	}
	return Persona{ID: s.selected, Name: s.selected}, true
}

// SelectedID returns the selected persona id, or "".
func (s *Session) SelectedID() string { return s.selected }

// Select switches to personaID. The transcript is cleared, the previous
// generation's requests are cancelled, and a history request is returned
// unless no fetch is needed (no user, no persona, or the supervisor).
func (s *Session) Select(personaID string) (HistoryRequest, bool) {
	s.nextGeneration()
	s.selected = personaID
	s.messages = nil
	s.loading = false

	if personaID == "" || s.user.ID == "" || personaID == SupervisorID {
		return HistoryRequest{}, false
	}

	s.loading = true
	return HistoryRequest{
		Ctx:        s.ctx,
		Generation: s.generation,
		UserID:     s.user.ID,
		PersonaID:  personaID,
	}, true
}

// Reload refetches the current selection. Replies to sends still in flight
// are discarded; the refetched history includes them once the server has them.
func (s *Session) Reload() (HistoryRequest, bool) {
	return s.Select(s.selected)
}

// ApplyHistory installs the result of a history request. It reports false
// when the result belongs to a superseded generation and was dropped. On
// error the transcript is left empty.
func (s *Session) ApplyHistory(generation uint64, msgs []Message, err error) bool {
	if generation != s.generation {
		return false
	}
	s.loading = false
	if err != nil {
		s.messages = nil
		return true
	}
	s.messages = make([]Message, len(msgs))
	copy(s.messages, msgs)
	return true
}

// BeginSend appends an optimistic user message and returns the request to
// issue. Text is sent as typed. Blank text, or no user or persona, is a no-op.
func (s *Session) BeginSend(text string) (SendRequest, bool) {
	content := text
	if strings.TrimSpace(content) == "" || s.selected == "" || s.user.ID == "" {
		return SendRequest{}, false
	}

	local := Message{
		ID:        s.newID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: s.now(),
		Pending:   true,
	}
	s.messages = append(s.messages, local)
	s.inflight++

	return SendRequest{
		Ctx:        s.ctx,
		Generation: s.generation,
		UserID:     s.user.ID,
		PersonaID:  s.selected,
		Content:    content,
		LocalID:    local.ID,
	}, true
}

// ApplyReply installs the result of a send. The optimistic message stays in
// place; on error a synthetic assistant message is appended. It reports
// false when the reply belongs to a superseded generation and was dropped.
func (s *Session) ApplyReply(req SendRequest, reply Message, err error) bool {
	if req.Generation != s.generation {
		return false
	}
	if s.inflight > 0 {
		s.inflight--
	}

	for i := range s.messages {
		if s.messages[i].ID == req.LocalID {
			s.messages[i].Pending = false
			break
		}
	}

	if err != nil {
		reply = Message{Content: FailureReply}
	}
	if reply.ID == "" {
		reply.ID = s.newID()
	}
	if reply.Timestamp.IsZero() {
		reply.Timestamp = s.now()
	}
	reply.Role = RoleAssistant
	reply.Pending = false
	s.messages = append(s.messages, reply)
	return true
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastAssistant returns the most recent assistant message.
func (s *Session) LastAssistant() (Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant {
			return s.messages[i], true
		}
	}
	return Message{}, false
}

// LoadingHistory reports whether a history fetch is outstanding.
func (s *Session) LoadingHistory() bool { return s.loading }

// Typing reports whether any send of the current generation is in flight.
func (s *Session) Typing() bool { return s.inflight > 0 }

// State returns the selection state.
func (s *Session) State() State {
	switch {
	case s.selected == "":
		return StateUnselected
	case s.loading:
		return StateLoadingHistory
	default:
		return StateReady
	}
}

// Generation returns the current generation.
func (s *Session) Generation() uint64 { return s.generation }

// Context returns the context of the current generation.
func (s *Session) Context() context.Context { return s.ctx }

// Reset drops everything, as on logout.
func (s *Session) Reset() {
	s.nextGeneration()
	s.user = User{}
	s.personas = nil
	s.selected = ""
	s.messages = nil
	s.loading = false
}

// Close cancels outstanding requests.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) nextGeneration() {
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(s.parent)
	s.generation++
	s.inflight = 0
}
