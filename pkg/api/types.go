package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is a backend identifier. The backend emits integers; the client treats
// every id as an opaque string and also accepts string ids.
type ID string

// String returns the id as a string.
func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// Timestamp parses the backend's ISO-8601 datetimes, which may omit the zone.
// Zoneless values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON parses a quoted datetime or null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp format: %q", raw)
}

// MarshalJSON writes RFC 3339.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// Wire roles for chat messages.
const (
	RoleUser      = "User"
	RoleAssistant = "Assistant"
)

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"` // YYYY-MM-DD
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// User is the authenticated user's profile.
type User struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Birthdate string `json:"birthdate,omitempty"`
}

// Persona is an assistant personality listed by the backend.
type Persona struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Birthdate   string `json:"birthdate,omitempty"`
}

// ChatMessage is a persisted transcript entry.
type ChatMessage struct {
	ID        ID        `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}

// ChatMessageCreate is the body sent when posting a message.
type ChatMessageCreate struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatReply covers both reply shapes: a stored chat message, or the
// multi-agent supervisor's summary object.
type chatReply struct {
	ChatMessage
	Output     string  `json:"output"`
	Persona    string  `json:"persona"`
	PersonaID  ID      `json:"persona_id"`
	Confidence float64 `json:"confidence"`
}

func (r chatReply) message() ChatMessage {
	msg := r.ChatMessage
	if strings.TrimSpace(msg.Content) == "" && r.Output != "" {
		msg.Content = r.Output
	}
	if msg.Role == "" {
		msg.Role = RoleAssistant
	}
	return msg
}
