// Package events emits relay lifecycle events over NATS for any observers
// that care (dashboards, audit trails). The publisher is optional: a nil
// *Publisher is safe to call and does nothing, so the relay runs unchanged
// when NATS is not configured.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectStarted        = "relay.service.started"
	SubjectSessionCreated = "relay.session.created"
	SubjectSetupConfirmed = "relay.setup.confirmed"
)

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: nc, logger: logger}, nil
}

// Publish sends an event; failures are logged, never surfaced, since events
// are observability, not control flow.
func (p *Publisher) Publish(subject string, data any) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		p.logger.Error("failed to marshal event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.conn.Close()
}
