package models

import "time"

// OrderType represents the type of an order
type OrderType string

const (
	DineIn   OrderType = "dine_in"
	TakeAway OrderType = "take_away"
)

// Valid reports whether t is a known order type
func (t OrderType) Valid() bool {
	return t == DineIn || t == TakeAway
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
	StatusCanceled  OrderStatus = "canceled"
)

var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:    {StatusPreparing, StatusCanceled},
	StatusPreparing: {StatusReady, StatusCanceled},
	StatusReady:     {StatusServed},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusPreparing, StatusReady, StatusServed, StatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is the persisted checkout aggregate. Everything except Status is
// fixed at creation.
type Order struct {
	ID             string      `json:"id"`
	TenantID       string      `json:"tenantId"`
	OrderNumber    string      `json:"orderNumber"`
	OrderType      OrderType   `json:"orderType"`
	TableSessionID *string     `json:"tableSessionId,omitempty"`
	CustomerName   *string     `json:"customerName,omitempty"`
	CustomerPhone  *string     `json:"customerPhone,omitempty"`
	CustomerEmail  *string     `json:"customerEmail,omitempty"`
	Note           *string     `json:"note,omitempty"`
	Status         OrderStatus `json:"status"`
	Totals
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Items     []OrderItem `json:"items"`
}

// Totals are the money fields of an order
type Totals struct {
	Subtotal      Money `json:"subtotalAmount"`
	Discount      Money `json:"discountAmount"`
	ServiceCharge Money `json:"serviceChargeAmount"`
	Tax           Money `json:"taxAmount"`
	Total         Money `json:"totalAmount"`
}

// OrderItem is one ordered line carrying frozen copies of what was ordered
type OrderItem struct {
	ID                string              `json:"id"`
	OrderID           string              `json:"orderId"`
	MenuItemID        string              `json:"menuItemId"`
	NameSnapshot      string              `json:"nameSnapshot"`
	BasePriceSnapshot Money               `json:"basePriceSnapshot"`
	UnitPrice         Money               `json:"unitPrice"`
	Quantity          int                 `json:"qty"`
	LineTotal         Money               `json:"lineTotal"`
	Note              *string             `json:"note,omitempty"`
	Position          int                 `json:"position"`
	Variant           *OrderItemVariant   `json:"variant,omitempty"`
	Modifiers         []OrderItemModifier `json:"modifiers"`
}

// OrderItemVariant is the frozen copy of the chosen variant
type OrderItemVariant struct {
	ID                 string `json:"id"`
	OrderItemID        string `json:"orderItemId"`
	VariantID          string `json:"variantId"`
	NameSnapshot       string `json:"nameSnapshot"`
	PriceDeltaSnapshot Money  `json:"priceDeltaSnapshot"`
}

// OrderItemModifier is the frozen copy of one chosen modifier option
type OrderItemModifier struct {
	ID                   string `json:"id"`
	OrderItemID          string `json:"orderItemId"`
	ModifierID           string `json:"modifierId"`
	OptionID             string `json:"optionId"`
	ModifierNameSnapshot string `json:"modifierNameSnapshot"`
	NameSnapshot         string `json:"nameSnapshot"`
	PriceDeltaSnapshot   Money  `json:"priceDeltaSnapshot"`
}

// OrderStatusLog is one status history entry
type OrderStatusLog struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changedBy"`
	Note      *string     `json:"note,omitempty"`
	ChangedAt time.Time   `json:"changedAt"`
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	Status    *OrderStatus
	OrderType *OrderType
	Limit     int
	Offset    int
}

// CreateOrderRequest is the checkout payload submitted by a customer
type CreateOrderRequest struct {
	OrderType      OrderType  `json:"orderType"`
	TableSessionID *string    `json:"tableSessionId,omitempty"`
	CustomerName   *string    `json:"customerName,omitempty"`
	CustomerPhone  *string    `json:"customerPhone,omitempty"`
	CustomerEmail  *string    `json:"customerEmail,omitempty"`
	Note           *string    `json:"note,omitempty"`
	Items          []CartItem `json:"items"`
}

// CartItem is one requested line. ModifierIDs holds modifier option ids.
type CartItem struct {
	MenuItemID        string   `json:"menuItemId"`
	VariantID         *string  `json:"variantId,omitempty"`
	ModifierIDs       []string `json:"modifierIds"`
	Quantity          int      `json:"quantity"`
	Note              *string  `json:"note,omitempty"`
	NameSnapshot      string   `json:"nameSnapshot"`
	BasePriceSnapshot Money    `json:"basePriceSnapshot"`
}

// OrderTracking is the public status view of an order
type OrderTracking struct {
	OrderNumber string           `json:"orderNumber"`
	Status      OrderStatus      `json:"status"`
	OrderType   OrderType        `json:"orderType"`
	Total       Money            `json:"totalAmount"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	History     []OrderStatusLog `json:"history"`
}
