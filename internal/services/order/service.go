package order

import (
	"context"

	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
	"ordermenu/internal/messaging"
	"ordermenu/internal/models"
	"ordermenu/internal/pricing"
	"ordermenu/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100

	placedBy = "customer"
)

// Service places orders and moves them through the kitchen workflow
type Service struct {
	orders   repository.OrderRepository
	engine   *pricing.Engine
	events   messaging.EventPublisher
	logger   *logger.Logger
	maxItems int
}

// NewService creates an order service
func NewService(orders repository.OrderRepository, engine *pricing.Engine, events messaging.EventPublisher, log *logger.Logger, maxItems int) *Service {
	return &Service{
		orders:   orders,
		engine:   engine,
		events:   events,
		logger:   log,
		maxItems: maxItems,
	}
}

// CreateOrder validates the cart, prices it against the menu as seen inside
// the order transaction and persists the order with its snapshots. The
// kitchen event is published only after the transaction commits.
func (s *Service) CreateOrder(ctx context.Context, tenant *models.Tenant, req *models.CreateOrderRequest, requestID string) (*models.Order, error) {
	if err := ValidateOrderRequest(req, s.maxItems); err != nil {
		return nil, err
	}

	order, err := s.orders.Place(ctx, tenant, placedBy, func(ctx context.Context, view repository.MenuView) (*models.Order, error) {
		if req.OrderType == models.DineIn {
			if err := s.checkSession(ctx, view, tenant.ID, *req.TableSessionID); err != nil {
				return nil, err
			}
		}

		menu, err := view.MenuItems(ctx, tenant.ID, menuItemIDs(req.Items))
		if err != nil {
			return nil, err
		}

		quote, err := s.engine.Quote(req, menu)
		if err != nil {
			return nil, err
		}

		return &models.Order{
			OrderType:      req.OrderType,
			TableSessionID: req.TableSessionID,
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			CustomerEmail:  req.CustomerEmail,
			Note:           req.Note,
			Totals:         quote.Totals,
			Items:          quote.Items,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_created", "Order created", requestID, map[string]interface{}{
		"tenant":       tenant.Slug,
		"order_number": order.OrderNumber,
		"order_type":   order.OrderType,
		"items":        len(order.Items),
		"total_amount": order.Total,
	})

	if err := s.events.PublishOrder(context.WithoutCancel(ctx), models.NewOrderPlacedMessage(tenant, order)); err != nil {
		s.logger.Error("order_publish_failed", "Failed to publish placed order", requestID, err, map[string]interface{}{
			"order_number": order.OrderNumber,
		})
	}
	return order, nil
}

func (s *Service) checkSession(ctx context.Context, view repository.MenuView, tenantID, sessionID string) error {
	session, err := view.TableSession(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if !session.IsActive {
		return apperr.Invalid("tableSessionId", "table session is closed")
	}
	return nil
}

// menuItemIDs returns the distinct menu item ids of a cart in order
func menuItemIDs(items []models.CartItem) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.MenuItemID] {
			seen[it.MenuItemID] = true
			ids = append(ids, it.MenuItemID)
		}
	}
	return ids
}

// ListOrders returns one page of the tenant's orders, newest first
func (s *Service) ListOrders(ctx context.Context, tenantID string, filter models.OrderFilter) ([]models.Order, int, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, apperr.Invalid("status", "unknown order status")
	}
	if filter.OrderType != nil && !filter.OrderType.Valid() {
		return nil, 0, apperr.Invalid("type", "unknown order type")
	}
	filter.Limit = pageLimit(filter.Limit)

	orders, total, err := s.orders.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list orders")
	}
	return orders, total, nil
}

func pageLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	}
	return limit
}

// GetOrder returns one order with its full snapshot tree
func (s *Service) GetOrder(ctx context.Context, tenantID, id string) (*models.Order, error) {
	return s.orders.Get(ctx, tenantID, id)
}

// UpdateOrderStatus moves an order along the status workflow and announces
// the change on the notifications exchange
func (s *Service) UpdateOrderStatus(ctx context.Context, tenant *models.Tenant, id string, status models.OrderStatus, changedBy string, note *string, requestID string) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Invalid("status", "unknown order status")
	}

	order, prev, err := s.orders.UpdateStatus(ctx, tenant.ID, id, status, changedBy, trimmed(note))
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_status_updated", "Order status updated", requestID, map[string]interface{}{
		"order_number": order.OrderNumber,
		"old_status":   prev,
		"new_status":   order.Status,
		"changed_by":   changedBy,
	})

	msg := models.NewStatusUpdateMessage(tenant, order.OrderNumber, prev, order.Status, changedBy)
	if err := s.events.PublishNotification(context.WithoutCancel(ctx), msg); err != nil {
		s.logger.Error("status_publish_failed", "Failed to publish status update", requestID, err, map[string]interface{}{
			"order_number": order.OrderNumber,
		})
	}
	return order, nil
}
