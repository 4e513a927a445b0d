// Package mail defines the outbound mail boundary used by the event-request
// form. Delivery backends live elsewhere (see internal/common/aws).
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"campus-forms/internal/common/logger"
)

// Message is a single outbound mail.
type Message struct {
	From     string
	To       []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
	// CorrelationID ties the mail to the form action that produced it.
	CorrelationID string
}

// Validate checks the fields every provider needs.
func (m *Message) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return fmt.Errorf("recipient address is empty")
		}
	}
	if m.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		return fmt.Errorf("a text or html body is required")
	}
	return nil
}

// Mailer delivers a message and returns a provider message id.
type Mailer interface {
	Send(ctx context.Context, msg *Message) (string, error)
	Provider() string
}

// LogMailer only logs messages. It stands in for a real provider when mail
// delivery is disabled.
type LogMailer struct {
	logger logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &LogMailer{logger: log}
}

func (m *LogMailer) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}
	id := fmt.Sprintf("log-%s", uuid.NewString())
	m.logger.Info("Mail delivery skipped, logging message", map[string]interface{}{
		"messageId":     id,
		"to":            strings.Join(msg.To, ","),
		"subject":       msg.Subject,
		"correlationId": msg.CorrelationID,
		"bodyBytes":     len(msg.TextBody) + len(msg.HTMLBody),
	})
	return id, nil
}

func (m *LogMailer) Provider() string { return "log" }
