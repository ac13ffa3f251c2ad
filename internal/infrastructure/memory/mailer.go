package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

type SentMail struct {
	To      string
	Subject string
	Body    string
}

// LogMailer logs outgoing emails instead of sending them and keeps them for inspection.
type LogMailer struct {
	lg zerolog.Logger

	mu   sync.Mutex
	sent []SentMail
}

func NewLogMailer(lg zerolog.Logger) *LogMailer {
	return &LogMailer{lg: lg.With().Str("component", "log_mailer").Logger()}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: htmlBody})
	m.mu.Unlock()

	m.lg.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(htmlBody)).
		Msg("email not sent (log transport)")
	return nil
}

// Sent returns a copy of everything passed to Send.
func (m *LogMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}
