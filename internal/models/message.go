package models

import (
	"fmt"
	"time"
)

// OrderPlacedMessage is published to the orders exchange after checkout commits
type OrderPlacedMessage struct {
	TenantID     string        `json:"tenant_id"`
	TenantSlug   string        `json:"tenant_slug"`
	OrderID      string        `json:"order_id"`
	OrderNumber  string        `json:"order_number"`
	OrderType    OrderType     `json:"order_type"`
	CustomerName *string       `json:"customer_name,omitempty"`
	Items        []MessageItem `json:"items"`
	TotalAmount  Money         `json:"total_amount"`
	PlacedAt     time.Time     `json:"placed_at"`
}

// MessageItem is the kitchen view of one order line
type MessageItem struct {
	Name      string   `json:"name"`
	Variant   string   `json:"variant,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	Quantity  int      `json:"quantity"`
	Note      *string  `json:"note,omitempty"`
}

// StatusUpdateMessage represents a status update notification
type StatusUpdateMessage struct {
	TenantID    string      `json:"tenant_id"`
	TenantSlug  string      `json:"tenant_slug"`
	OrderNumber string      `json:"order_number"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	ChangedBy   string      `json:"changed_by"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewOrderPlacedMessage builds the kitchen message for a committed order
func NewOrderPlacedMessage(tenant *Tenant, order *Order) *OrderPlacedMessage {
	items := make([]MessageItem, 0, len(order.Items))
	for _, it := range order.Items {
		mi := MessageItem{Name: it.NameSnapshot, Quantity: it.Quantity, Note: it.Note}
		if it.Variant != nil {
			mi.Variant = it.Variant.NameSnapshot
		}
		for _, m := range it.Modifiers {
			mi.Modifiers = append(mi.Modifiers, m.NameSnapshot)
		}
		items = append(items, mi)
	}

	return &OrderPlacedMessage{
		TenantID:     tenant.ID,
		TenantSlug:   tenant.Slug,
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		OrderType:    order.OrderType,
		CustomerName: order.CustomerName,
		Items:        items,
		TotalAmount:  order.Total,
		PlacedAt:     order.CreatedAt,
	}
}

// NewStatusUpdateMessage creates a StatusUpdateMessage for order status changes
func NewStatusUpdateMessage(tenant *Tenant, orderNumber string, oldStatus, newStatus OrderStatus, changedBy string) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		TenantID:    tenant.ID,
		TenantSlug:  tenant.Slug,
		OrderNumber: orderNumber,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ChangedBy:   changedBy,
		Timestamp:   time.Now().UTC(),
	}
}

// GenerateRoutingKey generates a routing key for order messages
func GenerateRoutingKey(orderType OrderType) string {
	return fmt.Sprintf("kitchen.%s", orderType)
}
