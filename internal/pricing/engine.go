package pricing

import (
	"fmt"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

// Quote is the priced content of an order before it is numbered and stored
type Quote struct {
	Items  []models.OrderItem
	Totals models.Totals
}

// Engine prices a cart against a point-in-time view of the menu
type Engine struct {
	snapshotter *Snapshotter
	rates       Rates
}

// NewEngine creates an engine with the given rates and snapshot source
func NewEngine(rates Rates, source SnapshotSource) *Engine {
	return &Engine{snapshotter: NewSnapshotter(source), rates: rates}
}

// Rates returns the surcharge rates in use
func (e *Engine) Rates() Rates { return e.rates }

// Quote prices every cart line in the order given. menu holds the tenant's
// live items keyed by id; a line whose item is absent fails the whole quote
// with a NotFoundError. Selection and snapshot problems across all lines are
// reported together as one ValidationError.
func (e *Engine) Quote(req *models.CreateOrderRequest, menu map[string]*models.MenuItem) (*Quote, error) {
	q := &Quote{Items: make([]models.OrderItem, 0, len(req.Items))}
	verr := &apperr.ValidationError{}

	for i, cart := range req.Items {
		field := fmt.Sprintf("items[%d]", i)

		item, ok := menu[cart.MenuItemID]
		if !ok {
			return nil, apperr.NotFound("menu item", cart.MenuItemID)
		}

		line, err := ResolveLine(item, cart.VariantID, cart.ModifierIDs)
		if err != nil {
			return nil, err
		}

		if item.Availability != models.Available {
			verr.Add(field+".menuItemId", fmt.Sprintf("menu item %q is unavailable", item.Name))
			continue
		}

		if err := ValidateSelections(line, field); err != nil {
			verr.Fields = append(verr.Fields, apperr.Fields(err)...)
			continue
		}

		oi, err := e.snapshotter.Build(line, cart, field)
		if err != nil {
			verr.Fields = append(verr.Fields, apperr.Fields(err)...)
			continue
		}
		oi.Position = i
		q.Items = append(q.Items, oi)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	totals, err := ComputeTotals(q.Items, req.OrderType, e.rates)
	if err != nil {
		return nil, err
	}
	q.Totals = totals
	return q, nil
}
