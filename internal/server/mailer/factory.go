package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/beppofit-auth/internal/logging"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/config"
)

// NewSender picks the Sender named by cfg.MailDriver.
func NewSender(ctx context.Context, cfg *config.Config, l logging.Logger) (Sender, error) {
	switch cfg.MailDriver {
	case config.MailDriverLog:
		return NewLogSender(l), nil
	case config.MailDriverSMTP:
		s, err := NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.MailDriverSES:
		s, err := NewSESSender(ctx, SESOptions{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
			Endpoint:        cfg.SESEndpoint,
			From:            cfg.MailFrom,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}
