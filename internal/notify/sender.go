package notify

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/redact"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// LogSender writes messages to the log instead of delivering them.
// It stands in for the provider when notifications are disabled.
type LogSender struct {
	logger *slog.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "log_sender")}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, to, body string) error {
	logger.FromContextOrDefault(ctx, s.logger).Info("notification delivery disabled, message logged",
		"to", redact.Phone(to),
		"body_length", len(body))
	return nil
}
