// Package repository persists tenants, menus, tables and orders. Every
// repository has a PostgreSQL implementation and an in-memory one with the
// same semantics; lookups never return soft-deleted records.
package repository

import (
	"context"

	"ordermenu/internal/models"
)

// TenantRepository stores tenants and their dashboard accounts
type TenantRepository interface {
	// Register creates user, tenant and an admin membership atomically.
	// A taken email or slug yields a ConflictError.
	Register(ctx context.Context, user *models.User, tenant *models.Tenant) error
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Stats(ctx context.Context, tenantID string) (*models.TenantStats, error)
}

// UserRepository reads dashboard accounts
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Tenants(ctx context.Context, userID string) ([]models.TenantSummary, error)
}

// CategoryRepository stores menu categories
type CategoryRepository interface {
	// List orders by sort_order ascending, newest first on ties
	List(ctx context.Context, tenantID string) ([]models.Category, error)
	Get(ctx context.Context, tenantID, id string) (*models.Category, error)
	// Create assigns SortOrder = last + 1
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, tenantID, id string) error
}

// MenuRepository stores menu items with their variants, modifiers and options.
// Items are always returned with live children ordered by sort_order.
type MenuRepository interface {
	ListItems(ctx context.Context, tenantID string, categoryID *string) ([]models.MenuItem, error)
	GetItem(ctx context.Context, tenantID, id string) (*models.MenuItem, error)
	CreateItem(ctx context.Context, item *models.MenuItem) error
	UpdateItem(ctx context.Context, item *models.MenuItem) error
	DeleteItem(ctx context.Context, tenantID, id string) error

	CreateVariant(ctx context.Context, v *models.Variant) error
	UpdateVariant(ctx context.Context, v *models.Variant) error
	DeleteVariant(ctx context.Context, tenantID, itemID, id string) error

	CreateModifier(ctx context.Context, m *models.Modifier) error
	UpdateModifier(ctx context.Context, m *models.Modifier) error
	DeleteModifier(ctx context.Context, tenantID, itemID, id string) error

	CreateOption(ctx context.Context, o *models.ModifierOption) error
	UpdateOption(ctx context.Context, o *models.ModifierOption) error
	DeleteOption(ctx context.Context, tenantID, modifierID, id string) error
}

// TableRepository stores tables and their sessions
type TableRepository interface {
	List(ctx context.Context, tenantID string) ([]models.Table, error)
	Get(ctx context.Context, tenantID, id string) (*models.Table, error)
	GetByToken(ctx context.Context, tenantID, token string) (*models.Table, error)
	Create(ctx context.Context, t *models.Table) error
	Update(ctx context.Context, t *models.Table) error
	Delete(ctx context.Context, tenantID, id string) error

	// OpenSession returns the table's active session, starting one if none is open
	OpenSession(ctx context.Context, tenantID, tableID string) (*models.TableSession, error)
	GetSession(ctx context.Context, tenantID, id string) (*models.TableSession, error)
	CloseSession(ctx context.Context, tenantID, id string) error
}

// MenuView is the menu state visible inside an order transaction
type MenuView interface {
	// MenuItems returns the tenant's live items among ids, keyed by id.
	// Missing, foreign and soft-deleted ids are simply absent.
	MenuItems(ctx context.Context, tenantID string, ids []string) (map[string]*models.MenuItem, error)
	TableSession(ctx context.Context, tenantID, id string) (*models.TableSession, error)
}

// BuildOrderFunc prices an order against menu state read inside the order
// transaction. It must not set ids or the order number.
type BuildOrderFunc func(ctx context.Context, view MenuView) (*models.Order, error)

// OrderRepository stores orders and their status history
type OrderRepository interface {
	// Place runs build and persists its result with a freshly reserved
	// per-tenant order number, all in one transaction. Nothing is stored
	// when build or any insert fails.
	Place(ctx context.Context, tenant *models.Tenant, changedBy string, build BuildOrderFunc) (*models.Order, error)
	Get(ctx context.Context, tenantID, id string) (*models.Order, error)
	GetByNumber(ctx context.Context, tenantID, number string) (*models.Order, error)
	List(ctx context.Context, tenantID string, filter models.OrderFilter) ([]models.Order, int, error)
	// UpdateStatus moves the order to next and appends a history entry.
	// An illegal transition yields a ConflictError.
	UpdateStatus(ctx context.Context, tenantID, id string, next models.OrderStatus, changedBy string, note *string) (*models.Order, models.OrderStatus, error)
	History(ctx context.Context, orderID string) ([]models.OrderStatusLog, error)
}

// Store bundles every repository over one backend
type Store struct {
	Tenants    TenantRepository
	Users      UserRepository
	Categories CategoryRepository
	Menu       MenuRepository
	Tables     TableRepository
	Orders     OrderRepository

	ping func(ctx context.Context) error
}

// Ping checks the backend
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}
