package messaging

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"ordermenu/internal/config"
	"ordermenu/internal/logger"
)

const (
	OrdersExchange        = "orders_topic"
	NotificationsExchange = "notifications_fanout"

	KitchenDineInQueue   = "kitchen_dine_in_queue"
	KitchenTakeAwayQueue = "kitchen_take_away_queue"
	TenantOrdersQueue    = "tenant_orders_queue"
	NotificationsQueue   = "notifications_queue"
)

type binding struct {
	queue      string
	routingKey string
	exchange   string
}

var bindings = []binding{
	{KitchenDineInQueue, "kitchen.dine_in", OrdersExchange},
	{KitchenTakeAwayQueue, "kitchen.take_away", OrdersExchange},
	{TenantOrdersQueue, "kitchen.*", OrdersExchange},
	{NotificationsQueue, "", NotificationsExchange},
}

// Connection wraps a RabbitMQ connection with reconnection logic
type Connection struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *logger.Logger
	url     string
	retries int
}

// New connects to RabbitMQ and declares the order topology
func New(cfg *config.Config, log *logger.Logger) (*Connection, error) {
	c := &Connection{
		logger:  log,
		url:     cfg.RabbitMQURL(),
		retries: 5,
	}
	if err := c.connect(); err != nil {
		return nil, errors.Wrap(err, "failed to establish initial connection")
	}
	return c, nil
}

func (c *Connection) connect() error {
	var err error
	for i := 0; i < c.retries; i++ {
		if err = c.dial(); err == nil {
			return nil
		}
		if i < c.retries-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", wait),
				"startup", err, nil)
			time.Sleep(wait)
		}
	}
	return errors.Wrapf(err, "failed to connect to RabbitMQ after %d attempts", c.retries)
}

func (c *Connection) dial() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := setupTopology(ch); err != nil {
		c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "startup", err, nil)
		ch.Close()
		conn.Close()
		return err
	}
	c.conn, c.channel = conn, ch
	return nil
}

func setupTopology(ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare %s exchange", OrdersExchange)
	}
	if err := ch.ExchangeDeclare(NotificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare %s exchange", NotificationsExchange)
	}

	for _, b := range bindings {
		var args amqp091.Table
		if b.exchange == OrdersExchange {
			args = amqp091.Table{"x-message-ttl": int32(300000)}
		}
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, args); err != nil {
			return errors.Wrapf(err, "failed to declare queue %s", b.queue)
		}
		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return errors.Wrapf(err, "failed to bind queue %s with routing key %q", b.queue, b.routingKey)
		}
	}
	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// Close closes channel and connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsClosed reports whether the connection is gone
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect drops the current connection and dials again
func (c *Connection) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
	return c.connect()
}
