package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the most emails Resend accepts per batch call.
const resendBatchLimit = 100

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender returns a sender whose messages default to from and replyTo.
// PRE: from is a valid sender address
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		replyTo: replyTo,
	}
}

func (s *ResendSender) params(msg Message) *resend.SendEmailRequest {
	p := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}
	if p.From == "" {
		p.From = s.from
	}
	if p.ReplyTo == "" {
		p.ReplyTo = s.replyTo
	}
	if msg.Category != "" {
		p.Tags = []resend.Tag{{Name: "category", Value: msg.Category}}
	}
	return p
}

// Send delivers one message.
// PRE: msg has at least one recipient
func (s *ResendSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(msg))
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "to", msg.To, "category", msg.Category)
		return Receipt{}, fmt.Errorf("resend send failed: %w", err)
	}
	slog.Info("resend_sent", "message_id", sent.Id, "category", msg.Category)
	return Receipt{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch delivers msgs through the batch endpoint, resendBatchLimit at a time.
// POST: on error the receipts cover the chunks already accepted
func (s *ResendSender) SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error) {
	var receipts []Receipt
	for start := 0; start < len(msgs); start += resendBatchLimit {
		chunk := msgs[start:min(start+resendBatchLimit, len(msgs))]

		batch := make([]*resend.SendEmailRequest, 0, len(chunk))
		for _, msg := range chunk {
			batch = append(batch, s.params(msg))
		}

		resp, err := s.client.Batch.SendWithContext(ctx, batch)
		if err != nil {
			slog.Error("resend_batch_failed", "error", err, "batch_size", len(chunk))
			return receipts, fmt.Errorf("resend batch send failed: %w", err)
		}
		for _, item := range resp.Data {
			receipts = append(receipts, Receipt{MessageID: item.Id, SentAt: time.Now()})
		}
		slog.Info("resend_batch_sent", "count", len(chunk), "total_sent", len(receipts))
	}
	return receipts, nil
}
