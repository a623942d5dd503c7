// Package events publishes booking lifecycle events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	BookingStatusChanged  = "booking.status.changed"
	BookingDriverAssigned = "booking.driver.assigned"
	BookingQuoteRequested = "booking.quote.requested"
)

type Event struct {
	Type       string         `json:"type"`
	BookingID  string         `json:"booking_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// Publisher is best-effort: callers log a failed publish and move on.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close()
}

type rabbitPublisher struct {
	exchange string
	conn     *amqp.Connection
	ch       *amqp.Channel
	mu       sync.Mutex
	closed   bool
	log      *zap.Logger
}

// NewRabbitPublisher dials url and declares a durable topic exchange.
func NewRabbitPublisher(url, exchange string, log *zap.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &rabbitPublisher{
		exchange: exchange,
		conn:     conn,
		ch:       ch,
		log:      log.With(zap.String("component", "events")),
	}, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publisher closed")
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(publishCtx, p.exchange, evt.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.OccurredAt,
		MessageId:    evt.BookingID,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	p.log.Debug("Event published", zap.String("type", evt.Type), zap.String("booking_id", evt.BookingID))
	return nil
}

func (p *rabbitPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	_ = p.ch.Close()
	_ = p.conn.Close()
}

type noopPublisher struct{}

// Noop discards every event; used when RABBITMQ_URL is empty.
func Noop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close()                               {}
