package commands

import (
	"fmt"
	"strings"
)

// Action tells the UI what to do after a command ran.
type Action int

const (
	ActionNone Action = iota
	ActionOpenPersonas
	ActionLogout
	ActionReload
	ActionOpenSettings
)

// Result represents the result of a command execution
type Result struct {
	Title   string
	Content string
	Action  Action
	Error   error
}

// Handler is the interface for command handlers
type Handler interface {
	Execute(ctx *Context) *Result
	Name() string
	Description() string
}

// Dispatcher routes commands to their handlers
type Dispatcher struct {
	handlers map[string]Handler
	order    []string
}

// NewDispatcher creates a new command dispatcher
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
	}

	d.Register(&PersonasHandler{})
	d.Register(&ReloadHandler{})
	d.Register(&ExportHandler{})
	d.Register(&CopyHandler{})
	d.Register(&SettingsHandler{})
	d.Register(&LogoutHandler{})
	d.Register(&HelpHandler{dispatcher: d})

	return d
}

// Register adds a handler to the dispatcher
func (d *Dispatcher) Register(h Handler) {
	if _, exists := d.handlers[h.Name()]; !exists {
		d.order = append(d.order, h.Name())
	}
	d.handlers[h.Name()] = h
}

// Dispatch executes a command by name
func (d *Dispatcher) Dispatch(cmdName string, ctx *Context) *Result {
	handler, ok := d.handlers[cmdName]
	if !ok {
		return errorResult("Error", fmt.Errorf("unknown command: %s", cmdName))
	}

	return handler.Execute(ctx)
}

// Run parses a line of input and dispatches it. ok is false when the line
// is not a command and should be sent as a chat message.
func (d *Dispatcher) Run(input string, ctx *Context) (result *Result, ok bool) {
	name, args, ok := Parse(input)
	if !ok {
		return nil, false
	}
	ctx.Args = args
	return d.Dispatch(name, ctx), true
}

// GetHandler returns a handler by name
func (d *Dispatcher) GetHandler(cmdName string) (Handler, bool) {
	h, ok := d.handlers[cmdName]
	return h, ok
}

// Handlers returns every handler in registration order.
func (d *Dispatcher) Handlers() []Handler {
	out := make([]Handler, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.handlers[name])
	}
	return out
}

// Parse splits "/name arg..." into its parts. Text not starting with "/" is
// not a command.
func Parse(input string) (name string, args []string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") || len(trimmed) == 1 {
		return "", nil, false
	}
	fields := strings.Fields(trimmed)
	return strings.ToLower(fields[0]), fields[1:], true
}
