// Package reminders scans for expiring documents and overdue assemblies and
// composes the notification emails. Delivery itself belongs to the external
// transactional mail provider behind the Mailer port.
package reminders

import (
	"context"
	"log/slog"

	"normativa/pkg/email"
)

// Mailer hands a composed message to the delivery provider.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// LogMailer writes messages to the log instead of delivering them. Used in
// development and as the default until a provider adapter is wired.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg email.Message) error {
	m.logger.InfoContext(ctx, "reminder email (log mailer)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
