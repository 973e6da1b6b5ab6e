package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them and keeps them
// for inspection.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender returns an empty recorder.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records the email without delivering it.
// POST: msg is appended to Sent()
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	slog.Info("noop_email_send", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()
	return Receipt{MessageID: fmt.Sprintf("noop-%d", n), SentAt: time.Now()}, nil
}

// SendBatch records each message in order.
func (s *NoopSender) SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error) {
	receipts := make([]Receipt, 0, len(msgs))
	for _, msg := range msgs {
		res, _ := s.Send(ctx, msg)
		receipts = append(receipts, res)
	}
	return receipts, nil
}

// Sent returns a copy of every recorded message.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
