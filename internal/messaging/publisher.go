package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"ordermenu/internal/logger"
	"ordermenu/internal/models"
)

// EventPublisher announces committed order events
type EventPublisher interface {
	PublishOrder(ctx context.Context, msg *models.OrderPlacedMessage) error
	PublishNotification(ctx context.Context, msg *models.StatusUpdateMessage) error
}

// Publisher publishes order events to RabbitMQ
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a new message publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{conn: conn, logger: log}
}

// PublishOrder sends a placed order to the orders topic keyed by order type
func (p *Publisher) PublishOrder(ctx context.Context, msg *models.OrderPlacedMessage) error {
	return p.publish(ctx, OrdersExchange, models.GenerateRoutingKey(msg.OrderType), msg, true)
}

// PublishNotification sends a status change to the notifications fanout
func (p *Publisher) PublishNotification(ctx context.Context, msg *models.StatusUpdateMessage) error {
	return p.publish(ctx, NotificationsExchange, "", msg, false)
}

func (p *Publisher) publish(ctx context.Context, exchange, routingKey string, message interface{}, persistent bool) error {
	if p.conn.IsClosed() {
		if err := p.conn.Reconnect(); err != nil {
			return errors.Wrap(err, "failed to reconnect")
		}
	}

	body, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	deliveryMode := amqp091.Transient
	if persistent {
		deliveryMode = amqp091.Persistent
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: deliveryMode,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to publish to exchange %s", exchange)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", exchange),
		"", map[string]interface{}{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_size": len(body),
		})
	return nil
}

// Close closes the underlying connection
func (p *Publisher) Close() error {
	return p.conn.Close()
}

// NopPublisher drops every event; used when RabbitMQ is disabled
type NopPublisher struct{}

func (NopPublisher) PublishOrder(context.Context, *models.OrderPlacedMessage) error { return nil }

func (NopPublisher) PublishNotification(context.Context, *models.StatusUpdateMessage) error {
	return nil
}
