package notify

import (
	"time"

	"github.com/rs/zerolog"
	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds SMTP configuration for sending digests.
type EmailConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	SMTPServer string `mapstructure:"smtp_server"`
	SMTPPort   int    `mapstructure:"smtp_port"`
	SMTPUser   string `mapstructure:"smtp_user"`
	SMTPPass   string `mapstructure:"smtp_pass"`
	FromEmail  string `mapstructure:"from_email"`
	ToEmail    string `mapstructure:"to_email"`
}

// EmailSender delivers rendered digests via SMTP.
type EmailSender struct {
	cfg    EmailConfig
	logger zerolog.Logger
}

// NewEmailSender creates a sender with the given SMTP configuration.
func NewEmailSender(cfg EmailConfig, logger zerolog.Logger) *EmailSender {
	return &EmailSender{
		cfg:    cfg,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Send delivers the digest with HTML body and plain text fallback. Disabled
// senders drop the message silently.
func (s *EmailSender) Send(msg *RenderedMessage) error {
	if !s.cfg.Enabled {
		s.logger.Debug().Str("subject", msg.Subject).Msg("email disabled, skipping send")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" && msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("subject", msg.Subject).Msg("failed to send digest email")
		return err
	}

	s.logger.Info().Str("subject", msg.Subject).Msg("digest email sent")
	return nil
}
