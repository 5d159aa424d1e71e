// Package kitchen runs kitchen workers that accept placed orders from the
// per-order-type kitchen queues.
package kitchen

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
	"ordermenu/internal/messaging"
	"ordermenu/internal/models"
)

const acceptNote = "accepted by kitchen"

// StatusUpdater moves orders through their status machine
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, tenantID, id string, next models.OrderStatus, changedBy string, note *string) (*models.Order, models.OrderStatus, error)
}

// Worker accepts orders of the types it handles by moving them to preparing
type Worker struct {
	name       string
	orderTypes []models.OrderType

	consumer *messaging.Consumer
	orders   StatusUpdater
	events   messaging.EventPublisher
	logger   *logger.Logger

	// Graceful shutdown
	shutdown chan os.Signal
	done     chan error
}

// NewWorker creates a kitchen worker. No order types means it handles all of them.
func NewWorker(name string, orderTypes []models.OrderType, consumer *messaging.Consumer,
	orders StatusUpdater, events messaging.EventPublisher, log *logger.Logger) *Worker {

	return &Worker{
		name:       name,
		orderTypes: orderTypes,
		consumer:   consumer,
		orders:     orders,
		events:     events,
		logger:     log,
		shutdown:   make(chan os.Signal, 1),
		done:       make(chan error, 1),
	}
}

// Start consumes the kitchen queue until a shutdown signal arrives or ctx ends
func (w *Worker) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signal.Notify(w.shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(w.shutdown)

	go func() {
		w.done <- w.consumer.StartConsuming(ctx, w.HandleMessage)
	}()

	w.logger.Info("worker_started", fmt.Sprintf("Kitchen worker %s started", w.name), requestID, map[string]interface{}{
		"worker_name": w.name,
		"order_types": w.orderTypes,
	})

	select {
	case <-w.shutdown:
		w.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
		<-w.done
		return nil
	case err := <-w.done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// HandleMessage accepts one order placed message. Returning an error nacks it.
func (w *Worker) HandleMessage(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var msg models.OrderPlacedMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		w.logger.Error("message_parsing_failed", "Failed to parse order message", requestID, err, nil)
		return errors.Wrap(err, "failed to parse order message")
	}

	if !w.canHandleOrderType(msg.OrderType) {
		w.logger.Debug("order_rejected", fmt.Sprintf("Worker %s cannot handle order type %s", w.name, msg.OrderType), requestID, map[string]interface{}{
			"order_number":           msg.OrderNumber,
			"order_type":             msg.OrderType,
			"worker_specializations": w.orderTypes,
		})
		return errors.Errorf("worker cannot handle order type %s", msg.OrderType)
	}

	return w.acceptOrder(ctx, &msg, requestID)
}

func (w *Worker) acceptOrder(ctx context.Context, msg *models.OrderPlacedMessage, requestID string) error {
	note := acceptNote
	changedBy := "kitchen:" + w.name
	_, old, err := w.orders.UpdateStatus(ctx, msg.TenantID, msg.OrderID, models.StatusPreparing, changedBy, &note)
	switch {
	case apperr.IsConflict(err), apperr.IsNotFound(err):
		// staff already moved or canceled the order
		w.logger.Debug("order_skipped", err.Error(), requestID, map[string]interface{}{
			"order_number": msg.OrderNumber,
		})
		return nil
	case err != nil:
		return errors.Wrap(err, "failed to accept order")
	}

	w.logger.Info("order_accepted", fmt.Sprintf("Order %s accepted", msg.OrderNumber), requestID, map[string]interface{}{
		"tenant":       msg.TenantSlug,
		"order_number": msg.OrderNumber,
		"worker_name":  w.name,
		"items":        len(msg.Items),
	})

	tenant := &models.Tenant{ID: msg.TenantID, Slug: msg.TenantSlug}
	update := models.NewStatusUpdateMessage(tenant, msg.OrderNumber, old, models.StatusPreparing, changedBy)
	if err := w.events.PublishNotification(ctx, update); err != nil {
		w.logger.Error("notification_publish_failed", "Failed to publish preparing notification", requestID, err, map[string]interface{}{
			"order_number": msg.OrderNumber,
		})
	}
	return nil
}

func (w *Worker) canHandleOrderType(orderType models.OrderType) bool {
	if len(w.orderTypes) == 0 {
		return true
	}
	for _, t := range w.orderTypes {
		if t == orderType {
			return true
		}
	}
	return false
}

// QueueFor is the kitchen queue a worker for orderType consumes
func QueueFor(orderType models.OrderType) string {
	if orderType == models.TakeAway {
		return messaging.KitchenTakeAwayQueue
	}
	return messaging.KitchenDineInQueue
}
