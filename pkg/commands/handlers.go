package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"

	"twinchat/pkg/chat"
)

// PersonasHandler handles the /personas command
type PersonasHandler struct{}

func (h *PersonasHandler) Name() string        { return "/personas" }
func (h *PersonasHandler) Description() string { return "Choose who to talk to" }

func (h *PersonasHandler) Execute(ctx *Context) *Result {
	return &Result{Title: "Personas", Action: ActionOpenPersonas}
}

// ReloadHandler handles the /reload command
type ReloadHandler struct{}

func (h *ReloadHandler) Name() string        { return "/reload" }
func (h *ReloadHandler) Description() string { return "Reload personas and history" }

func (h *ReloadHandler) Execute(ctx *Context) *Result {
	return &Result{Title: "Reload", Content: "Reloading...", Action: ActionReload}
}

// SettingsHandler handles the /settings command
type SettingsHandler struct{}

func (h *SettingsHandler) Name() string        { return "/settings" }
func (h *SettingsHandler) Description() string { return "Edit connection and display settings" }

func (h *SettingsHandler) Execute(ctx *Context) *Result {
	return &Result{Title: "Settings", Action: ActionOpenSettings}
}

// LogoutHandler handles the /logout command
type LogoutHandler struct{}

func (h *LogoutHandler) Name() string        { return "/logout" }
func (h *LogoutHandler) Description() string { return "Log out and return to the login screen" }

func (h *LogoutHandler) Execute(ctx *Context) *Result {
	return &Result{Title: "Logout", Action: ActionLogout}
}

// ExportHandler handles the /export command
type ExportHandler struct{}

func (h *ExportHandler) Name() string        { return "/export" }
func (h *ExportHandler) Description() string { return "Save the conversation as Markdown" }

func (h *ExportHandler) Execute(ctx *Context) *Result {
	if !ctx.Selected {
		return errorResult("Export", errors.New("select a persona first"))
	}

	path := ""
	if len(ctx.Args) > 0 {
		path = strings.Join(ctx.Args, " ")
	}
	written, err := chat.WriteExport(path, ctx.Persona, ctx.Messages, ctx.Now)
	if err != nil {
		return errorResult("Export", err)
	}
	return &Result{
		Title:   "Export",
		Content: fmt.Sprintf("Saved %d messages to %s", len(ctx.Messages), written),
	}
}

// CopyHandler handles the /copy command
type CopyHandler struct{}

func (h *CopyHandler) Name() string        { return "/copy" }
func (h *CopyHandler) Description() string { return "Copy the last reply to the clipboard" }

func (h *CopyHandler) Execute(ctx *Context) *Result {
	msg, ok := ctx.LastAssistant()
	if !ok {
		return errorResult("Copy", errors.New("nothing to copy yet"))
	}
	if err := CopyToClipboard(ctx.Clipboard, msg.Content); err != nil {
		return errorResult("Copy", err)
	}
	return &Result{Title: "Copy", Content: "Copied last reply to clipboard"}
}

// CopyToClipboard writes text to w as an OSC 52 clipboard sequence.
func CopyToClipboard(w io.Writer, text string) error {
	if w == nil {
		return errors.New("clipboard unavailable")
	}
	if _, err := osc52.New(text).WriteTo(w); err != nil {
		return fmt.Errorf("write clipboard sequence: %w", err)
	}
	return nil
}

// HelpHandler handles the /help command
type HelpHandler struct {
	dispatcher *Dispatcher
}

func (h *HelpHandler) Name() string        { return "/help" }
func (h *HelpHandler) Description() string { return "Show help" }

func (h *HelpHandler) Execute(ctx *Context) *Result {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	if h.dispatcher != nil {
		for _, handler := range h.dispatcher.Handlers() {
			fmt.Fprintf(&sb, "  %-10s %s\n", handler.Name(), handler.Description())
		}
	}
	sb.WriteString(`
Shortcuts:
  Enter      Send message
  Ctrl+P     Choose persona
  Ctrl+Y     Copy last reply
  Ctrl+O     Recall a sent message
  Ctrl+R     Reload personas and history
  Ctrl+L     Log out
  PgUp/PgDn  Scroll conversation
  Ctrl+C     Quit`)

	return &Result{
		Title:   "Help",
		Content: sb.String(),
	}
}

func errorResult(title string, err error) *Result {
	return &Result{Title: title, Content: err.Error(), Error: err}
}
