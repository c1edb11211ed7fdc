// Package events publishes domain events (contact merges, escalations,
// ledger reconciliations) to a topic exchange. Without a broker configured
// the fallback publisher logs and drops, so the core never blocks on broker
// availability.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys.
const (
	KeyContactMerged         = "contact.merged"
	KeyConversationEscalated = "conversation.escalated"
	KeyLedgerReconciliation  = "ledger.reconciliation"
)

// Envelope wraps every published payload with delivery metadata.
type Envelope struct {
	ID         string      `json:"id"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
	Close() error
}

type amqpPublisher struct {
	conn     *amqp.Connection
	exchange string
}

// NewAMQP connects to the broker and declares the topic exchange.
func NewAMQP(url, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &amqpPublisher{conn: conn, exchange: exchange}, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	env := Envelope{
		ID:         uuid.NewString(),
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    env.ID,
		Timestamp:    env.OccurredAt,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *amqpPublisher) Close() error {
	return p.conn.Close()
}

// NopPublisher logs and drops. Used when no broker URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	xlog.Debug("Event publishing disabled, dropping", "key", key)
	return nil
}

func (NopPublisher) Close() error { return nil }
