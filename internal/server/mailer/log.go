package mailer

import (
	"context"

	"github.com/dmitrijs2005/beppofit-auth/internal/logging"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "mailer")}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info(ctx, "Email not delivered (log driver)", "to", to, "subject", subject, "body", body)
	return nil
}
