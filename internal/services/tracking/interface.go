package tracking

import (
	"context"

	"ordermenu/internal/models"
)

// OrderReader is the read side of the order store that tracking needs
type OrderReader interface {
	GetByNumber(ctx context.Context, tenantID, number string) (*models.Order, error)
	History(ctx context.Context, orderID string) ([]models.OrderStatusLog, error)
}
