package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"ordermenu/internal/logger"
)

// MessageHandler defines the interface for processing messages
type MessageHandler func(ctx context.Context, body []byte) error

// Consumer handles message consumption from RabbitMQ
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a new message consumer
func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// StartConsuming starts consuming messages from the queue
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	// Check if connection is alive
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(); err != nil {
			return errors.Wrap(err, "failed to reconnect")
		}
	}

	ch := c.conn.Channel()
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return errors.Wrap(err, "failed to set QoS")
	}

	// manual ack
	msgs, err := ch.Consume(c.queueName, c.consumerTag, false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "failed to register consumer")
	}

	c.logger.Info("consumer_started",
		fmt.Sprintf("Started consuming from queue %s", c.queueName),
		"", map[string]interface{}{
			"queue":    c.queueName,
			"consumer": c.consumerTag,
			"prefetch": c.prefetch,
		})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				c.logger.Error("consumer_channel_closed", "Message channel closed, attempting to reconnect", "", nil, nil)
				if err := c.conn.Reconnect(); err != nil {
					return errors.Wrap(err, "failed to reconnect after channel closed")
				}
				return c.StartConsuming(ctx, handler)
			}

			c.processMessage(ctx, d, handler)
		}
	}
}

// processMessage runs handler on one delivery. A failed message is requeued
// once and dropped when it fails again on redelivery.
func (c *Consumer) processMessage(ctx context.Context, delivery amqp091.Delivery, handler MessageHandler) {
	start := time.Now()
	fields := map[string]interface{}{
		"queue":        c.queueName,
		"routing_key":  delivery.RoutingKey,
		"delivery_tag": delivery.DeliveryTag,
	}

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := handler(processingCtx, delivery.Body)
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		fields["requeue"] = !delivery.Redelivered
		c.logger.Error("message_processing_failed", "Failed to process message", "", err, fields)
		if nackErr := delivery.Nack(false, !delivery.Redelivered); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, nil)
		}
		return
	}

	c.logger.Debug("message_processed", "Successfully processed message", "", fields)
	if ackErr := delivery.Ack(false); ackErr != nil {
		c.logger.Error("message_ack_failed", "Failed to ack message", "", ackErr, nil)
	}
}

// ParseMessage parses a JSON message into the provided struct
func ParseMessage(body []byte, v interface{}) error {
	return json.Unmarshal(body, v)
}

// Close stops consuming messages
func (c *Consumer) Close() error {
	if c.conn != nil && !c.conn.IsClosed() {
		err := c.conn.Channel().Cancel(c.consumerTag, false)
		if err != nil {
			c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
		}
		return c.conn.Close()
	}
	return nil
}
