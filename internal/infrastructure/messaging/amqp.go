// Package messaging publishes lead events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/carbonwallet/leads-service/internal/core/ports"
)

const (
	DefaultExchange   = "leads.events"
	DefaultRoutingKey = "lead.created"
	eventType         = "lead.created"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Connection owns the broker connection and the channel publishers share.
type Connection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to url and declares exchange as a durable topic exchange.
func Dial(url, exchange string) (*Connection, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp declare exchange %s: %w", exchange, err)
	}

	return &Connection{conn: conn, ch: ch}, nil
}

// Channel returns the publishing channel.
func (c *Connection) Channel() *amqp.Channel { return c.ch }

// Close closes the channel and the connection.
func (c *Connection) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}

// Publisher is a ports.LeadNotifier that emits lead.created messages.
type Publisher struct {
	ch         Channel
	exchange   string
	routingKey string
	now        func() time.Time
}

// NewPublisher publishes to exchange with routingKey; empty values use the
// defaults.
func NewPublisher(ch Channel, exchange, routingKey string) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if routingKey == "" {
		routingKey = DefaultRoutingKey
	}
	return &Publisher{ch: ch, exchange: exchange, routingKey: routingKey, now: time.Now}
}

func (p *Publisher) Name() string { return "amqp" }

// Notify publishes event as a persistent JSON message.
func (p *Publisher) Notify(ctx context.Context, event ports.LeadCreatedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.LeadID,
			Type:         eventType,
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.routingKey, err)
	}
	return nil
}
