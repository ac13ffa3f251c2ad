package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/baechuer/user-service/internal/domain"
)

const (
	DefaultExchange = "user.events"

	// RoutingKeyEmailSend is consumed by the email worker.
	RoutingKeyEmailSend = "user.email.send.requested"

	defaultConfirmWait = 2 * time.Second

	// Grace period for a Return that races the Ack of the same publish.
	returnGrace = 50 * time.Millisecond
)

// EmailJob is the message body published for every outgoing email.
type EmailJob struct {
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	HTML        string    `json:"html"`
	RequestedAt time.Time `json:"requested_at"`
}

// Mailer hands emails to a broker with publisher confirms; a worker on the
// other side does the SMTP delivery.
type Mailer struct {
	url         string
	exchange    string
	confirmWait time.Duration
	lg          zerolog.Logger
	now         func() time.Time

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

type Config struct {
	URL         string
	Exchange    string
	ConfirmWait time.Duration
}

func NewMailer(cfg Config, lg zerolog.Logger) (*Mailer, error) {
	m := &Mailer{
		url:         cfg.URL,
		exchange:    cfg.Exchange,
		confirmWait: cfg.ConfirmWait,
		lg:          lg.With().Str("component", "rabbitmq_mailer").Logger(),
		now:         time.Now,
	}
	if m.exchange == "" {
		m.exchange = DefaultExchange
	}
	if m.confirmWait <= 0 {
		m.confirmWait = defaultConfirmWait
	}
	if err := m.connect(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetConn()
	return nil
}

// Send publishes an EmailJob and waits for the broker to confirm it.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := buildPublishing(EmailJob{
		To:          to,
		Subject:     subject,
		HTML:        htmlBody,
		RequestedAt: m.now().UTC(),
	})
	if err != nil {
		return domain.ErrEmailDispatchFailed(err)
	}
	if err := m.publish(ctx, RoutingKeyEmailSend, msg); err != nil {
		m.lg.Error().Err(err).Str("to", to).Msg("email publish failed")
		return domain.ErrEmailDispatchFailed(err)
	}
	m.lg.Debug().Str("to", to).Str("routing_key", RoutingKeyEmailSend).Msg("email job published")
	return nil
}

func buildPublishing(job EmailJob) (amqp.Publishing, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal payload: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    job.RequestedAt,
		Body:         body,
	}, nil
}

// ---- internal ----

func (m *Mailer) connect() error {
	conn, err := amqp.Dial(m.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	// Declare topic exchange (idempotent).
	if err := ch.ExchangeDeclare(
		m.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	m.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	m.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	m.conn = conn
	m.ch = ch
	return nil
}

func (m *Mailer) ensureConnected() error {
	if m.conn != nil && !m.conn.IsClosed() && m.ch != nil {
		return nil
	}
	return m.connect()
}

func (m *Mailer) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnected(); err != nil {
		return err
	}

	// Drain stale confirm / return messages to avoid mixing results.
drain:
	for {
		select {
		case <-m.confirmCh:
		case <-m.returnCh:
		default:
			break drain
		}
	}

	if err := m.ch.PublishWithContext(ctx, m.exchange, routingKey,
		true,  // mandatory
		false, // immediate
		msg,
	); err != nil {
		m.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	timer := time.NewTimer(m.confirmWait)
	defer timer.Stop()

	select {
	case ret := <-m.returnCh:
		return unroutable(routingKey, ret)

	case conf := <-m.confirmCh:
		// The broker sends basic.return before basic.ack, but the client
		// delivers them on separate channels.
		select {
		case ret := <-m.returnCh:
			return unroutable(routingKey, ret)
		case <-time.After(returnGrace):
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-timer.C:
		return fmt.Errorf("rabbitmq publish timeout: key=%s", routingKey)

	case <-ctx.Done():
		return ctx.Err()
	}
}

func unroutable(routingKey string, ret amqp.Return) error {
	return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)
}

func (m *Mailer) resetConn() {
	if m.ch != nil {
		_ = m.ch.Close()
		m.ch = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}
