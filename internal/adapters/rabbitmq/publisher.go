// Package rabbitmq publishes post lifecycle events to a durable queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	eventPort "xpilot/internal/ports/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const DefaultQueue = "post.lifecycle"

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer opens a channel for one publish.
type Dialer func() (Channel, func(), error)

type Publisher struct {
	queue  string
	dial   Dialer
	logger *zap.Logger
}

// NewPublisher opens a fresh connection to url for every publish.
func NewPublisher(url, queue string, logger *zap.Logger) *Publisher {
	return NewPublisherWithDialer(queue, func() (Channel, func(), error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
		}
		return ch, func() { _ = conn.Close() }, nil
	}, logger)
}

func NewPublisherWithDialer(queue string, dial Dialer, logger *zap.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{queue: queue, dial: dial, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, evt eventPort.PostEvent) error {
	ch, closeConn, err := p.dial()
	if err != nil {
		return err
	}
	defer closeConn()
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         evt.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	p.logger.Debug("event published", zap.String("type", evt.Type), zap.String("postID", evt.PostID))
	return nil
}
