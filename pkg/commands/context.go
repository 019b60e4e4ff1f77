package commands

import (
	"io"
	"time"

	"twinchat/pkg/chat"
)

// Context contains all the context needed for command execution
type Context struct {
	Args     []string
	Persona  chat.Persona
	Selected bool
	Messages []chat.Message
	// Clipboard receives OSC 52 sequences.
	Clipboard io.Writer
	Now       time.Time
}

// NewContext snapshots the chat session for a command.
func NewContext(s *chat.Session, clipboard io.Writer, now time.Time) *Context {
	ctx := &Context{
		Clipboard: clipboard,
		Now:       now,
	}
	if s == nil {
		return ctx
	}
	ctx.Persona, ctx.Selected = s.Selected()
	ctx.Messages = s.Messages()
	return ctx
}

// LastAssistant returns the most recent assistant message.
func (c *Context) LastAssistant() (chat.Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == chat.RoleAssistant {
			return c.Messages[i], true
		}
	}
	return chat.Message{}, false
}
