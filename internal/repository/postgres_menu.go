package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/database"
	"ordermenu/internal/models"
)

type pgCategories struct {
	db *database.DB
}

func (r *pgCategories) List(ctx context.Context, tenantID string) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, database.ListCategoriesSQL, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan category")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgCategories) Get(ctx context.Context, tenantID, id string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, database.GetCategorySQL, tenantID, id))
	if err != nil {
		return nil, notFoundOr(err, "category", id)
	}
	return &c, nil
}

func (r *pgCategories) Create(ctx context.Context, c *models.Category) error {
	c.ID = newID()
	c.Lifecycle = models.Active()
	err := r.db.QueryRow(ctx, database.InsertCategorySQL, c.ID, c.TenantID, c.Name, c.IsActive).
		Scan(&c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return errors.Wrap(err, "failed to insert category")
}

func (r *pgCategories) Update(ctx context.Context, c *models.Category) error {
	err := r.db.QueryRow(ctx, database.UpdateCategorySQL, c.TenantID, c.ID, c.Name, c.IsActive, c.SortOrder).
		Scan(&c.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "category", c.ID)
	}
	return nil
}

func (r *pgCategories) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, database.DeleteCategorySQL, tenantID, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete category")
	}
	return requireAffected(tag.RowsAffected(), "category", id)
}

type pgMenu struct {
	db *database.DB
}

func (r *pgMenu) ListItems(ctx context.Context, tenantID string, categoryID *string) ([]models.MenuItem, error) {
	items, err := loadMenuItems(ctx, r.db, database.ListMenuItemsSQL, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := attachCategories(ctx, r.db, tenantID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *pgMenu) GetItem(ctx context.Context, tenantID, id string) (*models.MenuItem, error) {
	items, err := loadMenuItems(ctx, r.db, database.GetMenuItemSQL, tenantID, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.NotFound("menu item", id)
	}
	if err := attachCategories(ctx, r.db, tenantID, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *pgMenu) CreateItem(ctx context.Context, it *models.MenuItem) error {
	it.ID = newID()
	it.Lifecycle = models.Active()
	err := r.db.QueryRow(ctx, database.InsertMenuItemSQL, it.ID, it.TenantID, it.CategoryID, it.Name,
		it.Description, it.BasePrice, it.Availability, it.PhotoURL).
		Scan(&it.SortOrder, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to insert menu item")
	}
	it.Variants = []models.Variant{}
	it.Modifiers = []models.Modifier{}
	return nil
}

func (r *pgMenu) UpdateItem(ctx context.Context, it *models.MenuItem) error {
	err := r.db.QueryRow(ctx, database.UpdateMenuItemSQL, it.TenantID, it.ID, it.CategoryID, it.Name,
		it.Description, it.BasePrice, it.Availability, it.PhotoURL, it.SortOrder).Scan(&it.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "menu item", it.ID)
	}
	return nil
}

func (r *pgMenu) DeleteItem(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, database.DeleteMenuItemSQL, tenantID, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete menu item")
	}
	return requireAffected(tag.RowsAffected(), "menu item", id)
}

func (r *pgMenu) CreateVariant(ctx context.Context, v *models.Variant) error {
	v.ID = newID()
	v.Lifecycle = models.Active()
	err := r.db.QueryRow(ctx, database.InsertVariantSQL, v.ID, v.TenantID, v.MenuItemID, v.Name, v.PriceDelta).
		Scan(&v.SortOrder, &v.CreatedAt, &v.UpdatedAt)
	return errors.Wrap(err, "failed to insert variant")
}

func (r *pgMenu) UpdateVariant(ctx context.Context, v *models.Variant) error {
	err := r.db.QueryRow(ctx, database.UpdateVariantSQL, v.TenantID, v.MenuItemID, v.ID, v.Name, v.PriceDelta, v.SortOrder).
		Scan(&v.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "variant", v.ID)
	}
	return nil
}

func (r *pgMenu) DeleteVariant(ctx context.Context, tenantID, itemID, id string) error {
	tag, err := r.db.Exec(ctx, database.DeleteVariantSQL, tenantID, itemID, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete variant")
	}
	return requireAffected(tag.RowsAffected(), "variant", id)
}

func (r *pgMenu) CreateModifier(ctx context.Context, m *models.Modifier) error {
	m.ID = newID()
	m.Lifecycle = models.Active()
	err := r.db.QueryRow(ctx, database.InsertModifierSQL, m.ID, m.TenantID, m.MenuItemID, m.Name, m.IsRequired, m.MaxSelect).
		Scan(&m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to insert modifier")
	}
	m.Options = []models.ModifierOption{}
	return nil
}

func (r *pgMenu) UpdateModifier(ctx context.Context, m *models.Modifier) error {
	err := r.db.QueryRow(ctx, database.UpdateModifierSQL, m.TenantID, m.MenuItemID, m.ID, m.Name, m.IsRequired,
		m.MaxSelect, m.SortOrder).Scan(&m.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "modifier", m.ID)
	}
	return nil
}

func (r *pgMenu) DeleteModifier(ctx context.Context, tenantID, itemID, id string) error {
	tag, err := r.db.Exec(ctx, database.DeleteModifierSQL, tenantID, itemID, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete modifier")
	}
	return requireAffected(tag.RowsAffected(), "modifier", id)
}

func (r *pgMenu) CreateOption(ctx context.Context, o *models.ModifierOption) error {
	o.ID = newID()
	o.Lifecycle = models.Active()
	err := r.db.QueryRow(ctx, database.InsertOptionSQL, o.ID, o.TenantID, o.ModifierID, o.Name, o.PriceDelta).
		Scan(&o.SortOrder, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "modifier", o.ModifierID)
	}
	return nil
}

func (r *pgMenu) UpdateOption(ctx context.Context, o *models.ModifierOption) error {
	err := r.db.QueryRow(ctx, database.UpdateOptionSQL, o.TenantID, o.ModifierID, o.ID, o.Name, o.PriceDelta, o.SortOrder).
		Scan(&o.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "modifier option", o.ID)
	}
	return nil
}

func (r *pgMenu) DeleteOption(ctx context.Context, tenantID, modifierID, id string) error {
	tag, err := r.db.Exec(ctx, database.DeleteOptionSQL, tenantID, modifierID, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete modifier option")
	}
	return requireAffected(tag.RowsAffected(), "modifier option", id)
}

// loadMenuItems runs an item query and attaches live variants, modifiers and options
func loadMenuItems(ctx context.Context, q database.Querier, sql string, args ...interface{}) ([]models.MenuItem, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query menu items")
	}
	items := []models.MenuItem{}
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan menu item")
		}
		it.Variants = []models.Variant{}
		it.Modifiers = []models.Modifier{}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read menu items")
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
		index[it.ID] = i
	}

	variants, err := queryAll(ctx, q, database.ListVariantsForItemsSQL, scanVariant, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load variants")
	}
	for _, v := range variants {
		i := index[v.MenuItemID]
		items[i].Variants = append(items[i].Variants, v)
	}

	modifiers, err := queryAll(ctx, q, database.ListModifiersForItemsSQL, scanModifier, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load modifiers")
	}
	if len(modifiers) == 0 {
		return items, nil
	}

	modIDs := make([]string, len(modifiers))
	for i := range modifiers {
		modIDs[i] = modifiers[i].ID
		modifiers[i].Options = []models.ModifierOption{}
	}
	options, err := queryAll(ctx, q, database.ListOptionsForModifiersSQL, scanOption, modIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load modifier options")
	}
	modIndex := make(map[string]int, len(modifiers))
	for i, m := range modifiers {
		modIndex[m.ID] = i
	}
	for _, o := range options {
		i := modIndex[o.ModifierID]
		modifiers[i].Options = append(modifiers[i].Options, o)
	}
	for _, m := range modifiers {
		i := index[m.MenuItemID]
		items[i].Modifiers = append(items[i].Modifiers, m)
	}

	return items, nil
}

func attachCategories(ctx context.Context, q database.Querier, tenantID string, items []models.MenuItem) error {
	cats, err := queryAll(ctx, q, database.ListCategoriesSQL, scanCategory, tenantID)
	if err != nil {
		return errors.Wrap(err, "failed to load categories")
	}
	byID := make(map[string]models.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	for i := range items {
		if c, ok := byID[items[i].CategoryID]; ok {
			c := c
			items[i].Category = &c
		}
	}
	return nil
}

// queryAll scans every row of sql with scan
func queryAll[T any](ctx context.Context, q database.Querier, sql string, scan func(row pgx.Row) (T, error), args ...interface{}) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
