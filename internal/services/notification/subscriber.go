// Package notification turns order events into tenant notifications.
package notification

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
	"ordermenu/internal/messaging"
	"ordermenu/internal/models"
)

// TenantReader resolves the tenant an event belongs to
type TenantReader interface {
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
}

// Subscriber handles order placed and status update messages
type Subscriber struct {
	orders  *messaging.Consumer
	updates *messaging.Consumer
	tenants TenantReader
	sender  Sender
	logger  *logger.Logger

	// Graceful shutdown
	shutdown chan os.Signal
}

// NewSubscriber creates a notification subscriber. sender may be nil, in
// which case notifications are only logged.
func NewSubscriber(orders, updates *messaging.Consumer, tenants TenantReader, sender Sender, log *logger.Logger) *Subscriber {
	return &Subscriber{
		orders:   orders,
		updates:  updates,
		tenants:  tenants,
		sender:   sender,
		logger:   log,
		shutdown: make(chan os.Signal, 1),
	}
}

// Start consumes both queues until a shutdown signal arrives or ctx ends
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.shutdown)

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	consume := func(c *messaging.Consumer, handler messaging.MessageHandler) {
		defer wg.Done()
		if err := c.StartConsuming(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
			errs <- err
		}
	}
	wg.Add(2)
	go consume(s.orders, s.HandleOrderPlaced)
	go consume(s.updates, s.HandleStatusUpdate)

	var err error
	select {
	case <-s.shutdown:
		s.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	case <-ctx.Done():
	case err = <-errs:
		s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
	}
	cancel()
	wg.Wait()
	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return err
}

// HandleOrderPlaced announces a new order to the tenant
func (s *Subscriber) HandleOrderPlaced(ctx context.Context, body []byte) error {
	var msg models.OrderPlacedMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		return errors.Wrap(err, "failed to parse order message")
	}
	s.logger.Info("order_notification", "New order received", "", map[string]interface{}{
		"tenant":       msg.TenantSlug,
		"order_number": msg.OrderNumber,
		"order_type":   msg.OrderType,
		"total":        msg.TotalAmount,
	})
	return s.deliver(ctx, msg.TenantID, FormatOrderPlaced(&msg))
}

// HandleStatusUpdate announces a status change to the tenant
func (s *Subscriber) HandleStatusUpdate(ctx context.Context, body []byte) error {
	var msg models.StatusUpdateMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		return errors.Wrap(err, "failed to parse notification message")
	}
	s.logger.Info("notification_displayed", "Order status changed", "", map[string]interface{}{
		"tenant":       msg.TenantSlug,
		"order_number": msg.OrderNumber,
		"old_status":   msg.OldStatus,
		"new_status":   msg.NewStatus,
		"changed_by":   msg.ChangedBy,
	})
	return s.deliver(ctx, msg.TenantID, FormatStatusUpdate(&msg))
}

// deliver sends text to the tenant's chat when one is configured. Messages
// for tenants that no longer exist are dropped.
func (s *Subscriber) deliver(ctx context.Context, tenantID, text string) error {
	if s.sender == nil {
		return nil
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return errors.Wrap(err, "failed to load tenant")
	}
	if tenant.TelegramChatID == nil {
		return nil
	}
	return s.sender.Send(ctx, *tenant.TelegramChatID, text)
}

// FormatOrderPlaced renders a kitchen ticket for a new order
func FormatOrderPlaced(msg *models.OrderPlacedMessage) string {
	var b strings.Builder
	kind := "Take away"
	if msg.OrderType == models.DineIn {
		kind = "Dine in"
	}
	fmt.Fprintf(&b, "🧾 New order %s (%s)\n", msg.OrderNumber, kind)
	if msg.CustomerName != nil {
		fmt.Fprintf(&b, "Customer: %s\n", *msg.CustomerName)
	}
	for _, it := range msg.Items {
		line := fmt.Sprintf("%dx %s", it.Quantity, it.Name)
		if it.Variant != "" {
			line += " (" + it.Variant + ")"
		}
		if len(it.Modifiers) > 0 {
			line += " + " + strings.Join(it.Modifiers, ", ")
		}
		fmt.Fprintf(&b, "• %s\n", line)
		if it.Note != nil {
			fmt.Fprintf(&b, "  note: %s\n", *it.Note)
		}
	}
	fmt.Fprintf(&b, "Total: %s", msg.TotalAmount)
	return b.String()
}

// FormatStatusUpdate renders a human-readable status change
func FormatStatusUpdate(msg *models.StatusUpdateMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")

	switch msg.NewStatus {
	case models.StatusPreparing:
		return fmt.Sprintf("🍳 [%s] Order %s is now being prepared.", timestamp, msg.OrderNumber)
	case models.StatusReady:
		return fmt.Sprintf("✅ [%s] Order %s is ready!", timestamp, msg.OrderNumber)
	case models.StatusServed:
		return fmt.Sprintf("🎉 [%s] Order %s has been served.", timestamp, msg.OrderNumber)
	case models.StatusCanceled:
		return fmt.Sprintf("❌ [%s] Order %s has been canceled by %s.", timestamp, msg.OrderNumber, msg.ChangedBy)
	default:
		return fmt.Sprintf("📋 [%s] Order %s status changed from '%s' to '%s' by %s.",
			timestamp, msg.OrderNumber, msg.OldStatus, msg.NewStatus, msg.ChangedBy)
	}
}
