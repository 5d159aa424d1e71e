package order

import (
	"fmt"
	"net/mail"
	"strings"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

const (
	maxNameLength  = 100
	maxPhoneLength = 30
	maxNoteLength  = 500
	maxQuantity    = 99
)

// ValidateOrderRequest checks the shape of a checkout request before any
// menu lookup happens. Blank optional strings are normalised to nil.
func ValidateOrderRequest(req *models.CreateOrderRequest, maxItems int) error {
	verr := &apperr.ValidationError{}

	req.CustomerName = trimmed(req.CustomerName)
	req.CustomerPhone = trimmed(req.CustomerPhone)
	req.CustomerEmail = trimmed(req.CustomerEmail)
	req.Note = trimmed(req.Note)
	req.TableSessionID = trimmed(req.TableSessionID)

	validateOrderType(req, verr)
	validateCustomer(req, verr)
	validateItems(req.Items, maxItems, verr)

	return verr.OrNil()
}

func validateOrderType(req *models.CreateOrderRequest, verr *apperr.ValidationError) {
	if req.OrderType == "" {
		verr.Add("orderType", "order type is required")
		return
	}
	if !req.OrderType.Valid() {
		verr.Add("orderType", fmt.Sprintf("invalid order type %q", req.OrderType))
		return
	}

	switch req.OrderType {
	case models.DineIn:
		if req.TableSessionID == nil {
			verr.Add("tableSessionId", "table session is required for dine-in orders")
		}
	case models.TakeAway:
		req.TableSessionID = nil
	}
}

func validateCustomer(req *models.CreateOrderRequest, verr *apperr.ValidationError) {
	if req.CustomerName != nil && len(*req.CustomerName) > maxNameLength {
		verr.Add("customerName", fmt.Sprintf("customer name must be at most %d characters", maxNameLength))
	}
	if req.CustomerPhone != nil && len(*req.CustomerPhone) > maxPhoneLength {
		verr.Add("customerPhone", fmt.Sprintf("customer phone must be at most %d characters", maxPhoneLength))
	}
	if req.CustomerEmail != nil {
		if addr, err := mail.ParseAddress(*req.CustomerEmail); err != nil || addr.Address != *req.CustomerEmail {
			verr.Add("customerEmail", "invalid email address")
		}
	}
	if req.Note != nil && len(*req.Note) > maxNoteLength {
		verr.Add("note", fmt.Sprintf("note must be at most %d characters", maxNoteLength))
	}
}

func validateItems(items []models.CartItem, maxItems int, verr *apperr.ValidationError) {
	if len(items) == 0 {
		verr.Add("items", "items cannot be empty")
		return
	}
	if maxItems > 0 && len(items) > maxItems {
		verr.Add("items", fmt.Sprintf("a maximum of %d items is allowed", maxItems))
		return
	}

	for i := range items {
		validateItem(&items[i], fmt.Sprintf("items[%d]", i), verr)
	}
}

func validateItem(item *models.CartItem, field string, verr *apperr.ValidationError) {
	item.MenuItemID = strings.TrimSpace(item.MenuItemID)
	item.VariantID = trimmed(item.VariantID)
	item.Note = trimmed(item.Note)

	if item.MenuItemID == "" {
		verr.Add(field+".menuItemId", "menu item is required")
	}
	if item.Quantity < 1 {
		verr.Add(field+".quantity", "quantity must be at least 1")
	} else if item.Quantity > maxQuantity {
		verr.Add(field+".quantity", fmt.Sprintf("quantity must be at most %d", maxQuantity))
	}
	for j, id := range item.ModifierIDs {
		if strings.TrimSpace(id) == "" {
			verr.Add(fmt.Sprintf("%s.modifierIds[%d]", field, j), "modifier option id is empty")
		}
	}
	if item.Note != nil && len(*item.Note) > maxNoteLength {
		verr.Add(field+".note", fmt.Sprintf("note must be at most %d characters", maxNoteLength))
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
