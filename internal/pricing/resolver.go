// Package pricing prices and snapshots checkout lines. Everything here is
// pure: callers load menu state and persist the results.
package pricing

import (
	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

// SelectedOption is a resolved modifier option together with its group
type SelectedOption struct {
	Modifier *models.Modifier
	Option   *models.ModifierOption
}

// ResolvedLine is the authoritative menu state behind one cart line
type ResolvedLine struct {
	Item      *models.MenuItem
	Variant   *models.Variant
	Options   []SelectedOption
	UnitPrice models.Money
}

// ResolveLine prices one unit of item with the chosen variant and modifier
// options: base price + variant delta + the sum of option deltas. The result
// is not clamped and may be zero or negative. Any id that is missing,
// soft-deleted, or owned by another item yields a NotFoundError.
func ResolveLine(item *models.MenuItem, variantID *string, optionIDs []string) (*ResolvedLine, error) {
	if item == nil || item.Lifecycle.IsDeleted() {
		id := ""
		if item != nil {
			id = item.ID
		}
		return nil, apperr.NotFound("menu item", id)
	}

	line := &ResolvedLine{Item: item, UnitPrice: item.BasePrice}

	if variantID != nil && *variantID != "" {
		v := findVariant(item, *variantID)
		if v == nil {
			return nil, apperr.NotFound("variant", *variantID)
		}
		line.Variant = v
		line.UnitPrice += v.PriceDelta
	}

	for _, id := range optionIDs {
		sel, ok := findOption(item, id)
		if !ok {
			return nil, apperr.NotFound("modifier option", id)
		}
		line.Options = append(line.Options, sel)
		line.UnitPrice += sel.Option.PriceDelta
	}

	return line, nil
}

func findVariant(item *models.MenuItem, id string) *models.Variant {
	for i := range item.Variants {
		v := &item.Variants[i]
		if v.ID == id && v.MenuItemID == item.ID && !v.Lifecycle.IsDeleted() {
			return v
		}
	}
	return nil
}

func findOption(item *models.MenuItem, id string) (SelectedOption, bool) {
	for i := range item.Modifiers {
		m := &item.Modifiers[i]
		if m.MenuItemID != item.ID || m.Lifecycle.IsDeleted() {
			continue
		}
		for j := range m.Options {
			o := &m.Options[j]
			if o.ID == id && o.ModifierID == m.ID && !o.Lifecycle.IsDeleted() {
				return SelectedOption{Modifier: m, Option: o}, true
			}
		}
	}
	return SelectedOption{}, false
}
