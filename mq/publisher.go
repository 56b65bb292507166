// Package mq publishes allocator events to a RabbitMQ topic exchange.
// Delivery is at-least-once; consumers must tolerate duplicates.
package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys for allocator events.
const (
	RKMatchCreated     = "match.created"
	RKBookingRequested = "booking.requested"
)

// MatchCreated carries enough for the conversation opener.
type MatchCreated struct {
	ConversationID string `json:"conversation_id"`
	UserA          string `json:"user_a"`
	UserB          string `json:"user_b"`
}

// BookingRequested announces a new pending booking to the expert.
type BookingRequested struct {
	BookingID string `json:"booking_id"`
	ExpertID  string `json:"expert_id"`
	UserID    string `json:"user_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
