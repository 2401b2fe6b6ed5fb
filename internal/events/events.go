// Package events publishes order lifecycle events to NATS so fulfilment
// tooling can react without polling the database. Publishing is best
// effort: a failed publish is logged and never fails the request.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// OrderCreated is emitted after an order transaction commits.
type OrderCreated struct {
	OrderID   uuid.UUID `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	LineCount int       `json:"line_count"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderLineDispatched is emitted when a seller dispatches a line.
type OrderLineDispatched struct {
	OrderID uuid.UUID `json:"order_id"`
	ItemID  uuid.UUID `json:"item_id"`
}

// Publisher emits order lifecycle events.
type Publisher interface {
	OrderCreated(evt OrderCreated)
	OrderLineDispatched(evt OrderLineDispatched)
}

// NatsPublisher publishes events to NATS subjects under a prefix.
type NatsPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

func NewNatsPublisher(conn *nats.Conn, prefix string, logger *slog.Logger) *NatsPublisher {
	return &NatsPublisher{conn: conn, prefix: prefix, logger: logger}
}

func (p *NatsPublisher) OrderCreated(evt OrderCreated) {
	p.publish(p.prefix+".created", evt)
}

func (p *NatsPublisher) OrderLineDispatched(evt OrderLineDispatched) {
	p.publish(p.prefix+".dispatched", evt)
}

func (p *NatsPublisher) publish(subject string, evt any) {
	data, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("failed to marshal event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish event", "subject", subject, "error", err)
	}
}

// NoopPublisher satisfies Publisher when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) OrderCreated(evt OrderCreated)               {}
func (NoopPublisher) OrderLineDispatched(evt OrderLineDispatched) {}

// Connect dials NATS with a short timeout and sensible defaults.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}
