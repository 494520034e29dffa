// Package ui holds the client-facing surface: the authoritative view state
// and its terminal rendering.
package ui

import (
	"strings"
	"sync"
)

// Snapshot is a point-in-time copy of the view state.
type Snapshot struct {
	SubmitEnabled bool
	Message       string
	Response      string
}

// State is the single authoritative view model shared by the submission,
// polling and finalization flows. Writes are last-write-wins.
type State struct {
	mu            sync.Mutex
	submitEnabled bool
	message       string
	response      strings.Builder
}

// NewState creates a State with submission enabled.
func NewState() *State {
	return &State{submitEnabled: true}
}

// SetSubmitEnabled sets the submit control state.
func (s *State) SetSubmitEnabled(enabled bool) {
	s.mu.Lock()
	s.submitEnabled = enabled
	s.mu.Unlock()
}

// SubmitEnabled reports whether the submit control is enabled.
func (s *State) SubmitEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitEnabled
}

// SetMessage replaces the status message.
func (s *State) SetMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

// Message returns the current status message.
func (s *State) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// ClearMessageIf clears the status message only when it equals expected.
// Reports whether it was cleared.
func (s *State) ClearMessageIf(expected string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.message != expected {
		return false
	}
	s.message = ""
	return true
}

// ClearResponse empties the response buffer.
func (s *State) ClearResponse() {
	s.mu.Lock()
	s.response.Reset()
	s.mu.Unlock()
}

// AppendResponse appends a decoded chunk to the response buffer.
func (s *State) AppendResponse(text string) {
	s.mu.Lock()
	s.response.WriteString(text)
	s.mu.Unlock()
}

// Response returns the response buffer contents.
func (s *State) Response() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response.String()
}

// Snapshot returns a copy of the whole state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SubmitEnabled: s.submitEnabled,
		Message:       s.message,
		Response:      s.response.String(),
	}
}
