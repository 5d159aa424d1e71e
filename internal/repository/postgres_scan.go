package repository

import (
	"time"

	"github.com/jackc/pgx/v5"

	"ordermenu/internal/models"
)

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.Address, &t.Phone, &t.LogoURL,
		&t.TelegramChatID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanCategory(row pgx.Row) (models.Category, error) {
	var (
		c         models.Category
		deletedAt *time.Time
	)
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &deletedAt)
	c.Lifecycle = models.LifecycleFromNullable(deletedAt)
	return c, err
}

func scanMenuItem(row pgx.Row) (models.MenuItem, error) {
	var (
		it        models.MenuItem
		deletedAt *time.Time
	)
	err := row.Scan(&it.ID, &it.TenantID, &it.CategoryID, &it.Name, &it.Description, &it.BasePrice,
		&it.Availability, &it.PhotoURL, &it.SortOrder, &it.CreatedAt, &it.UpdatedAt, &deletedAt)
	it.Lifecycle = models.LifecycleFromNullable(deletedAt)
	return it, err
}

func scanVariant(row pgx.Row) (models.Variant, error) {
	var (
		v         models.Variant
		deletedAt *time.Time
	)
	err := row.Scan(&v.ID, &v.TenantID, &v.MenuItemID, &v.Name, &v.PriceDelta, &v.SortOrder,
		&v.CreatedAt, &v.UpdatedAt, &deletedAt)
	v.Lifecycle = models.LifecycleFromNullable(deletedAt)
	return v, err
}

func scanModifier(row pgx.Row) (models.Modifier, error) {
	var (
		m         models.Modifier
		deletedAt *time.Time
	)
	err := row.Scan(&m.ID, &m.TenantID, &m.MenuItemID, &m.Name, &m.IsRequired, &m.MaxSelect, &m.SortOrder,
		&m.CreatedAt, &m.UpdatedAt, &deletedAt)
	m.Lifecycle = models.LifecycleFromNullable(deletedAt)
	return m, err
}

func scanOption(row pgx.Row) (models.ModifierOption, error) {
	var (
		o         models.ModifierOption
		deletedAt *time.Time
	)
	err := row.Scan(&o.ID, &o.TenantID, &o.ModifierID, &o.Name, &o.PriceDelta, &o.SortOrder,
		&o.CreatedAt, &o.UpdatedAt, &deletedAt)
	o.Lifecycle = models.LifecycleFromNullable(deletedAt)
	return o, err
}

func scanTable(row pgx.Row) (*models.Table, error) {
	var (
		t         models.Table
		deletedAt *time.Time
	)
	err := row.Scan(&t.ID, &t.TenantID, &t.Code, &t.Name, &t.Capacity, &t.QRCodeToken,
		&t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	t.Lifecycle = models.LifecycleFromNullable(deletedAt)
	return &t, nil
}

func scanSession(row pgx.Row) (*models.TableSession, error) {
	var s models.TableSession
	if err := row.Scan(&s.ID, &s.TenantID, &s.TableID, &s.IsActive, &s.StartedAt, &s.EndedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// orderDest returns the scan targets of the order column list
func orderDest(o *models.Order) []interface{} {
	return []interface{}{
		&o.ID, &o.TenantID, &o.OrderNumber, &o.OrderType, &o.TableSessionID, &o.CustomerName,
		&o.CustomerPhone, &o.CustomerEmail, &o.Note, &o.Status, &o.Subtotal, &o.Discount,
		&o.ServiceCharge, &o.Tax, &o.Total, &o.CreatedAt, &o.UpdatedAt,
	}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(orderDest(&o)...); err != nil {
		return nil, err
	}
	return &o, nil
}
