package models

import "time"

// Availability of a menu item for ordering
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
)

// Valid reports whether a is a known availability value
func (a Availability) Valid() bool {
	return a == Available || a == Unavailable
}

// Category groups menu items
type Category struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	Lifecycle Lifecycle `json:"deletedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MenuItem is one orderable dish with its variants and modifiers
type MenuItem struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenantId"`
	CategoryID   string       `json:"categoryId"`
	Name         string       `json:"name"`
	Description  *string      `json:"description,omitempty"`
	BasePrice    Money        `json:"basePrice"`
	Availability Availability `json:"availability"`
	PhotoURL     *string      `json:"photoUrl,omitempty"`
	SortOrder    int          `json:"sortOrder"`
	Lifecycle    Lifecycle    `json:"deletedAt"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	Category  *Category  `json:"category,omitempty"`
	Variants  []Variant  `json:"variants"`
	Modifiers []Modifier `json:"modifiers"`
}

// Variant is a mutually exclusive size/type option on a menu item
type Variant struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	MenuItemID string    `json:"menuItemId"`
	Name       string    `json:"name"`
	PriceDelta Money     `json:"priceDelta"`
	SortOrder  int       `json:"sortOrder"`
	Lifecycle  Lifecycle `json:"deletedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Modifier is a named group of add-on options on a menu item.
// A nil MaxSelect means the number of selections is unbounded.
type Modifier struct {
	ID         string           `json:"id"`
	TenantID   string           `json:"tenantId"`
	MenuItemID string           `json:"menuItemId"`
	Name       string           `json:"name"`
	IsRequired bool             `json:"isRequired"`
	MaxSelect  *int             `json:"maxSelect,omitempty"`
	SortOrder  int              `json:"sortOrder"`
	Lifecycle  Lifecycle        `json:"deletedAt"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	Options    []ModifierOption `json:"options"`
}

// ModifierOption is one selectable add-on within a modifier
type ModifierOption struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	ModifierID string    `json:"modifierId"`
	Name       string    `json:"name"`
	PriceDelta Money     `json:"priceDelta"`
	SortOrder  int       `json:"sortOrder"`
	Lifecycle  Lifecycle `json:"deletedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PublicMenu is the customer-facing menu of one tenant
type PublicMenu struct {
	Tenant     Tenant         `json:"tenant"`
	Categories []MenuCategory `json:"categories"`
}

// MenuCategory is a category with its orderable items
type MenuCategory struct {
	Category
	Items []MenuItem `json:"items"`
}
