// Package notify publishes procurement workflow events to NATS for
// consumption by downstream notification services.
//
// Subject convention: procurement.<resource>.<event_type>
// Event types: pr_created, pr_approved, pr_rejected, workflow_created,
// approval_approved, approval_rejected, exception_raised, exception_escalated.
//
// All publish operations are non-fatal: errors are logged but never propagated
// to the caller, so notification failures never interrupt workflow operations.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/hpcl-dt/be-procurement/internal/logger"
)

// Publisher publishes events to NATS. A nil Publisher (or one constructed
// with a nil connection) drops all events, which is the configured behaviour
// when no NATS URL is set.
type Publisher struct {
	conn *nats.Conn
	log  *logger.Logger
}

// Event is the JSON schema published to NATS.
type Event struct {
	EventType    string         `json:"event_type"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	ActorID      string         `json:"actor_id,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// Connect dials NATS and returns a publisher. An empty URL yields a disabled
// publisher and no error.
func Connect(url string, log *logger.Logger) (*Publisher, error) {
	if url == "" {
		return &Publisher{log: log}, nil
	}
	conn, err := nats.Connect(url, nats.Name("be-procurement"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: conn, log: log}, nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		_ = p.conn.Drain()
	}
}

// Publish emits one event. Subject: procurement.<resource_type>.<event_type>.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn().Err(err).Str("event_type", event.EventType).Msg("notify: failed to marshal event")
		return
	}

	subject := fmt.Sprintf("procurement.%s.%s", event.ResourceType, event.EventType)
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn().Err(err).
			Str("subject", subject).
			Str("resource_id", event.ResourceID).
			Msg("notify: failed to publish event (non-fatal)")
		return
	}

	p.log.Debug().
		Str("subject", subject).
		Str("resource_id", event.ResourceID).
		Msg("notify: event published")
}
