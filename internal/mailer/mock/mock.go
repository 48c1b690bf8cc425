package mock

import (
	"context"
	"log/slog"

	"github.com/emmanuelnwankwo/api-template/internal/mailer"
)

// Mailer logs messages instead of delivering them and always succeeds. Used
// in development when no SendGrid key is configured.
type Mailer struct {
	logger *slog.Logger
}

// New creates a logging mailer.
func New(logger *slog.Logger) *Mailer {
	return &Mailer{logger: logger}
}

// Send logs the message details.
func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	m.logger.InfoContext(ctx, "mock mailer: message sent",
		slog.String("to", msg.To),
		slog.String("template_id", msg.TemplateID),
		slog.String("link", msg.Link),
	)
	return nil
}
