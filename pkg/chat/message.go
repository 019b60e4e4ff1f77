package chat

import (
	"strings"
	"time"

	"twinchat/pkg/api"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the display name of the role.
func (r Role) Label() string {
	if r == RoleUser {
		return "User"
	}
	return "Assistant"
}

// SupervisorID selects the multi-agent supervisor instead of a single persona.
const (
	SupervisorID   = "supervisor"
	SupervisorName = "Supervisor"
)

// FailureReply is appended in place of an assistant reply when a send fails.
const FailureReply = "Failed to get a response. Please try again."

// Message is one transcript entry.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	// Pending marks an optimistic user message whose reply has not landed.
	Pending bool
}

// Persona is a chat target.
type Persona struct {
	ID   string
	Name string
}

// IsSupervisor reports whether p routes to the multi-agent endpoint.
func (p Persona) IsSupervisor() bool {
	return p.ID == SupervisorID
}

// User is the logged-in account.
type User struct {
	ID    string
	Name  string
	Email string
}

func supervisorPersona() Persona {
	return Persona{ID: SupervisorID, Name: SupervisorName}
}

func messageFromAPI(m api.ChatMessage) Message {
	role := RoleAssistant
	if strings.EqualFold(strings.TrimSpace(m.Role), api.RoleUser) {
		role = RoleUser
	}
	return Message{
		ID:        m.ID.String(),
		Role:      role,
		Content:   m.Content,
		Timestamp: m.CreatedAt.Time,
	}
}

func messagesFromAPI(in []api.ChatMessage) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		out = append(out, messageFromAPI(m))
	}
	return out
}

func personasFromAPI(in []api.Persona) []Persona {
	out := make([]Persona, 0, len(in))
	for _, p := range in {
		out = append(out, Persona{ID: p.ID.String(), Name: p.Name})
	}
	return out
}
