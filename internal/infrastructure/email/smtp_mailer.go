package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/baechuer/user-service/internal/domain"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool // opportunistic TLS instead of mandatory (local relays, mailpit)
}

// SMTPMailer delivers HTML emails through an SMTP relay.
type SMTPMailer struct {
	lg  zerolog.Logger
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig, lg zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		lg:  lg.With().Str("component", "smtp_mailer").Logger(),
		cfg: cfg,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return domain.ErrEmailDispatchFailed(fmt.Errorf("invalid from address: %w", err))
	}
	if err := m.To(to); err != nil {
		return domain.ErrEmailDispatchFailed(fmt.Errorf("invalid to address: %w", err))
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	c, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return domain.ErrEmailDispatchFailed(fmt.Errorf("smtp client init: %w", err))
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		permanent := containsAny(err.Error(), "535", "5.7.8", "authentication")
		s.lg.Error().Err(err).Str("to", to).Bool("permanent", permanent).Msg("smtp send failed")
		return domain.ErrEmailDispatchFailed(err)
	}

	s.lg.Info().Str("to", to).Str("subject", subject).Msg("smtp send ok")
	return nil
}

func (s *SMTPMailer) clientOptions() []mail.Option {
	tlsPolicy := mail.TLSMandatory
	if s.cfg.Insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, x := range subs {
		if x != "" && strings.Contains(s, strings.ToLower(x)) {
			return true
		}
	}
	return false
}
