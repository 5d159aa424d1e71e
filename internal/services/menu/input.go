package menu

import (
	"fmt"
	"strings"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

// Inputs use pointers so an update only touches the fields that were sent.

type CategoryInput struct {
	Name      *string `json:"name"`
	IsActive  *bool   `json:"isActive"`
	SortOrder *int    `json:"sortOrder"`
}

type ItemInput struct {
	CategoryID   *string              `json:"categoryId"`
	Name         *string              `json:"name"`
	Description  *string              `json:"description"`
	BasePrice    *models.Money        `json:"basePrice"`
	Availability *models.Availability `json:"availability"`
	PhotoURL     *string              `json:"photoUrl"`
	SortOrder    *int                 `json:"sortOrder"`
}

type VariantInput struct {
	Name       *string       `json:"name"`
	PriceDelta *models.Money `json:"priceDelta"`
	SortOrder  *int          `json:"sortOrder"`
}

// ModifierInput sets MaxSelect to nil (unbounded) when 0 is sent
type ModifierInput struct {
	Name       *string `json:"name"`
	IsRequired *bool   `json:"isRequired"`
	MaxSelect  *int    `json:"maxSelect"`
	SortOrder  *int    `json:"sortOrder"`
}

type OptionInput struct {
	Name       *string       `json:"name"`
	PriceDelta *models.Money `json:"priceDelta"`
	SortOrder  *int          `json:"sortOrder"`
}

func applyName(dst *string, src *string, creating bool, field string, verr *apperr.ValidationError) {
	if src == nil {
		if creating {
			verr.Add(field, "name is required")
		}
		return
	}
	name := strings.TrimSpace(*src)
	if name == "" {
		verr.Add(field, "name is required")
		return
	}
	*dst = name
}

func applyPriceDelta(dst *models.Money, src *models.Money, verr *apperr.ValidationError) {
	if src == nil {
		return
	}
	if !src.InRange() {
		verr.Add("priceDelta", fmt.Sprintf("price delta must be between -%s and %s", models.MaxAmount, models.MaxAmount))
		return
	}
	*dst = *src
}

func applySortOrder(dst *int, src *int, verr *apperr.ValidationError) {
	if src == nil {
		return
	}
	if *src < 0 {
		verr.Add("sortOrder", "sort order cannot be negative")
		return
	}
	*dst = *src
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (in CategoryInput) apply(c *models.Category, creating bool) error {
	verr := &apperr.ValidationError{}
	applyName(&c.Name, in.Name, creating, "name", verr)
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	} else if creating {
		c.IsActive = true
	}
	if !creating {
		applySortOrder(&c.SortOrder, in.SortOrder, verr)
	}
	return verr.OrNil()
}

func (in ItemInput) apply(it *models.MenuItem, creating bool) error {
	verr := &apperr.ValidationError{}
	applyName(&it.Name, in.Name, creating, "name", verr)

	if in.CategoryID != nil {
		it.CategoryID = strings.TrimSpace(*in.CategoryID)
	}
	if it.CategoryID == "" {
		verr.Add("categoryId", "category is required")
	}

	if in.BasePrice != nil {
		it.BasePrice = *in.BasePrice
	}
	if creating || in.BasePrice != nil {
		switch {
		case it.BasePrice <= 0:
			verr.Add("basePrice", "base price must be greater than 0")
		case it.BasePrice > models.MaxAmount:
			verr.Add("basePrice", fmt.Sprintf("base price must be at most %s", models.MaxAmount))
		}
	}

	if in.Availability != nil {
		it.Availability = *in.Availability
	} else if creating {
		it.Availability = models.Available
	}
	if !it.Availability.Valid() {
		verr.Add("availability", "availability must be available or unavailable")
	}

	if in.Description != nil {
		it.Description = optional(in.Description)
	}
	if in.PhotoURL != nil {
		it.PhotoURL = optional(in.PhotoURL)
	}
	if !creating {
		applySortOrder(&it.SortOrder, in.SortOrder, verr)
	}
	return verr.OrNil()
}

func (in VariantInput) apply(v *models.Variant, creating bool) error {
	verr := &apperr.ValidationError{}
	applyName(&v.Name, in.Name, creating, "name", verr)
	applyPriceDelta(&v.PriceDelta, in.PriceDelta, verr)
	if !creating {
		applySortOrder(&v.SortOrder, in.SortOrder, verr)
	}
	return verr.OrNil()
}

func (in ModifierInput) apply(m *models.Modifier, creating bool) error {
	verr := &apperr.ValidationError{}
	applyName(&m.Name, in.Name, creating, "name", verr)
	if in.IsRequired != nil {
		m.IsRequired = *in.IsRequired
	}
	if in.MaxSelect != nil {
		switch {
		case *in.MaxSelect == 0:
			m.MaxSelect = nil
		case *in.MaxSelect < 0:
			verr.Add("maxSelect", "max select must be at least 1")
		default:
			n := *in.MaxSelect
			m.MaxSelect = &n
		}
	}
	if !creating {
		applySortOrder(&m.SortOrder, in.SortOrder, verr)
	}
	return verr.OrNil()
}

func (in OptionInput) apply(o *models.ModifierOption, creating bool) error {
	verr := &apperr.ValidationError{}
	applyName(&o.Name, in.Name, creating, "name", verr)
	applyPriceDelta(&o.PriceDelta, in.PriceDelta, verr)
	if !creating {
		applySortOrder(&o.SortOrder, in.SortOrder, verr)
	}
	return verr.OrNil()
}
