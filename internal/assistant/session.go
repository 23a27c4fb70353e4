// Package assistant keeps the chat transcript between the user and the
// receipt assistant. Each exchange is a generation: the prompt appends
// optimistically, and exactly one assistant message lands for it,
// carrying either the reply or a readable rendering of the failure.
package assistant

import (
	"errors"
	"strings"
)

// Role says who authored a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role Role
	Text string
}

var (
	// ErrEmptyPrompt means Begin was called with nothing to ask.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrBusy means the previous ask has not resolved yet.
	ErrBusy = errors.New("assistant is still answering")
)

// Session belongs to the UI update loop.
type Session struct {
	messages []Message
	gen      uint64
	pending  bool
}

func NewSession() *Session {
	return &Session{}
}

// Begin validates the prompt, appends the user's message to the
// transcript and returns the generation the eventual reply must carry.
// Rejected prompts leave the transcript untouched.
func (s *Session) Begin(prompt string) (uint64, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return 0, ErrEmptyPrompt
	}

	if s.pending {
		return 0, ErrBusy
	}

	s.messages = append(s.messages, Message{Role: RoleUser, Text: prompt})
	s.pending = true
	s.gen++

	return s.gen, nil
}

// Finish appends the assistant's side of the exchange: the reply, or
// "Error: ..." when the ask failed. Stale generations are ignored.
// Authorization failures must not reach Finish; the caller escalates
// those before the transcript sees them.
func (s *Session) Finish(gen uint64, reply string, err error) bool {
	if gen != s.gen || !s.pending {
		return false
	}

	s.pending = false

	text := strings.TrimSpace(reply)
	if err != nil {
		text = "Error: " + err.Error()
	}

	s.messages = append(s.messages, Message{Role: RoleAssistant, Text: text})

	return true
}

// Pending reports whether an ask is unresolved.
func (s *Session) Pending() bool {
	return s.pending
}

// Messages returns a copy of the transcript in order.
func (s *Session) Messages() []Message {
	return append([]Message(nil), s.messages...)
}

// Len is the number of transcript entries.
func (s *Session) Len() int {
	return len(s.messages)
}

// Clear wipes the transcript and invalidates any unresolved ask.
func (s *Session) Clear() {
	s.messages = nil
	s.pending = false
	s.gen++
}
