package tracking

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
)

// Service answers customers' "where is my order" questions
type Service struct {
	orders OrderReader
	logger *logger.Logger
}

// NewService creates a new tracking service
func NewService(orders OrderReader, log *logger.Logger) *Service {
	return &Service{orders: orders, logger: log}
}

// TrackOrder returns the current status and status history of an order by
// its public number. Numbers are matched case-insensitively.
func (s *Service) TrackOrder(ctx context.Context, tenant *models.Tenant, orderNumber, requestID string) (*models.OrderTracking, error) {
	order, err := s.lookup(ctx, tenant, orderNumber)
	if err != nil {
		return nil, err
	}

	history, err := s.orders.History(ctx, order.ID)
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to query order history", requestID, err, map[string]interface{}{
			"order_number": order.OrderNumber,
		})
		return nil, errors.Wrap(err, "failed to load order history")
	}

	return &models.OrderTracking{
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		OrderType:   order.OrderType,
		Total:       order.Total,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		History:     history,
	}, nil
}

// GetOrderHistory returns only the status history of an order
func (s *Service) GetOrderHistory(ctx context.Context, tenant *models.Tenant, orderNumber string) ([]models.OrderStatusLog, error) {
	order, err := s.lookup(ctx, tenant, orderNumber)
	if err != nil {
		return nil, err
	}
	return s.orders.History(ctx, order.ID)
}

func (s *Service) lookup(ctx context.Context, tenant *models.Tenant, orderNumber string) (*models.Order, error) {
	number := strings.ToUpper(strings.TrimSpace(orderNumber))
	if number == "" {
		return nil, apperr.Invalid("orderNumber", "order number is required")
	}
	return s.orders.GetByNumber(ctx, tenant.ID, number)
}
