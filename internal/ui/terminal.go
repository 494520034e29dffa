package ui

import (
	"fmt"
	"io"
	"sync"
)

// Terminal renders view changes to a writer while keeping a State as the
// source of truth. Response chunks are written raw as they arrive; status
// changes are written on their own line.
type Terminal struct {
	*State

	mu       sync.Mutex
	out      io.Writer
	midReply bool // last write was response text without a trailing newline
}

// NewTerminal creates a Terminal writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{State: NewState(), out: out}
}

// SetMessage updates the message and prints it when it changes.
func (t *Terminal) SetMessage(msg string) {
	prev := t.State.Message()
	t.State.SetMessage(msg)
	if msg == "" || msg == prev {
		return
	}
	t.printStatus(msg)
}

// SetSubmitEnabled updates the submit flag and prints a marker on transitions.
func (t *Terminal) SetSubmitEnabled(enabled bool) {
	prev := t.State.SubmitEnabled()
	t.State.SetSubmitEnabled(enabled)
	if prev == enabled {
		return
	}
	if enabled {
		t.printStatus("ready")
	}
}

// ClearResponse resets the buffer and starts a fresh reply block.
func (t *Terminal) ClearResponse() {
	t.State.ClearResponse()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLine()
}

// AppendResponse appends text to the buffer and writes it immediately.
func (t *Terminal) AppendResponse(text string) {
	t.State.AppendResponse(text)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.out, text)
	t.midReply = len(text) > 0 && text[len(text)-1] != '\n'
}

// Notice prints a one-off status line without changing the state.
func (t *Terminal) Notice(msg string) {
	t.printStatus(msg)
}

// Prompt writes the input prompt.
func (t *Terminal) Prompt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLine()
	_, _ = io.WriteString(t.out, "> ")
}

func (t *Terminal) printStatus(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endLine()
	_, _ = fmt.Fprintf(t.out, "[status] %s\n", msg)
}

// endLine terminates a dangling response line. Caller holds t.mu.
func (t *Terminal) endLine() {
	if t.midReply {
		_, _ = io.WriteString(t.out, "\n")
		t.midReply = false
	}
}
