// Package email delivers the meal reminder through a provider, or records it
// in memory when no provider key is configured.
package email

import (
	"context"
	"time"
)

// Message is one outgoing email.
type Message struct {
	To       []string
	From     string // empty means the sender's default
	Subject  string
	HTML     string
	Text     string
	ReplyTo  string
	Category string // provider tag, e.g. "meal_reminder"
}

// Receipt is what the provider returned for an accepted Message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages.
// POST: SendBatch returns one Receipt per accepted message, in order
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
	SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error)
}
