// Package notify holds the single transient status message the UI
// shows. Posting hands back a token, and expiry only honors the token
// of the message it was scheduled for, so a superseded message is
// never cleared by its predecessor's timer.
package notify

import "time"

// Kind tells success notices from error notices.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

// Message is one transient notification.
type Message struct {
	Kind Kind
	Text string
}

// DefaultTTL applies when the Center is built without one.
const DefaultTTL = 4 * time.Second

// Center belongs to the UI update loop.
type Center struct {
	current *Message
	token   uint64
	ttl     time.Duration
}

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Center{ttl: ttl}
}

// Post replaces the live notification and returns the token its expiry
// must present.
func (c *Center) Post(kind Kind, text string) uint64 {
	c.token++
	c.current = &Message{Kind: kind, Text: text}

	return c.token
}

// Success posts a success notice.
func (c *Center) Success(text string) uint64 {
	return c.Post(KindSuccess, text)
}

// Error posts an error notice.
func (c *Center) Error(text string) uint64 {
	return c.Post(KindError, text)
}

// Expire clears the live notification if token still refers to it,
// reporting whether anything changed.
func (c *Center) Expire(token uint64) bool {
	if token != c.token || c.current == nil {
		return false
	}

	c.current = nil

	return true
}

// Clear removes the live notification immediately.
func (c *Center) Clear() {
	c.current = nil
}

// Current returns the live notification, if any.
func (c *Center) Current() (Message, bool) {
	if c.current == nil {
		return Message{}, false
	}

	return *c.current, true
}

// TTL is how long after a post its expiry should fire.
func (c *Center) TTL() time.Duration {
	return c.ttl
}
