package pricing

import (
	"strings"

	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

// SnapshotSource selects where the top-level item name and base price
// snapshots come from.
type SnapshotSource string

const (
	// SnapshotServer copies name and base price from the menu record
	SnapshotServer SnapshotSource = "server"
	// SnapshotClient stores the name and base price the client confirmed
	SnapshotClient SnapshotSource = "client"
)

// ParseSnapshotSource maps a config value to a SnapshotSource
func ParseSnapshotSource(s string) (SnapshotSource, error) {
	switch SnapshotSource(s) {
	case SnapshotServer, SnapshotClient:
		return SnapshotSource(s), nil
	}
	return "", errors.Errorf("unknown snapshot source %q", s)
}

// Snapshotter freezes resolved lines into order item records
type Snapshotter struct {
	Source SnapshotSource
}

// NewSnapshotter creates a snapshotter; an empty source means server
func NewSnapshotter(source SnapshotSource) *Snapshotter {
	if source == "" {
		source = SnapshotServer
	}
	return &Snapshotter{Source: source}
}

// Build assembles the order item for one cart line. Variant and modifier
// snapshots always come from the resolved records. Unit price and line total
// always come from the resolved price, whatever the snapshot source.
func (s *Snapshotter) Build(line *ResolvedLine, cart models.CartItem, field string) (models.OrderItem, error) {
	item := models.OrderItem{
		MenuItemID: line.Item.ID,
		UnitPrice:  line.UnitPrice,
		Quantity:   cart.Quantity,
		LineTotal:  line.UnitPrice.Times(cart.Quantity),
		Note:       cloneString(cart.Note),
		Modifiers:  make([]models.OrderItemModifier, 0, len(line.Options)),
	}

	switch s.Source {
	case SnapshotClient:
		name := strings.TrimSpace(cart.NameSnapshot)
		verr := &apperr.ValidationError{}
		if name == "" {
			verr.Add(field+".nameSnapshot", "name snapshot is required")
		}
		if cart.BasePriceSnapshot < 0 {
			verr.Add(field+".basePriceSnapshot", "base price snapshot cannot be negative")
		}
		if err := verr.OrNil(); err != nil {
			return models.OrderItem{}, err
		}
		item.NameSnapshot = name
		item.BasePriceSnapshot = cart.BasePriceSnapshot
	default:
		item.NameSnapshot = line.Item.Name
		item.BasePriceSnapshot = line.Item.BasePrice
	}

	if line.Variant != nil {
		item.Variant = &models.OrderItemVariant{
			VariantID:          line.Variant.ID,
			NameSnapshot:       line.Variant.Name,
			PriceDeltaSnapshot: line.Variant.PriceDelta,
		}
	}

	for _, sel := range line.Options {
		item.Modifiers = append(item.Modifiers, models.OrderItemModifier{
			ModifierID:           sel.Modifier.ID,
			OptionID:             sel.Option.ID,
			ModifierNameSnapshot: sel.Modifier.Name,
			NameSnapshot:         sel.Option.Name,
			PriceDeltaSnapshot:   sel.Option.PriceDelta,
		})
	}

	return item, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
