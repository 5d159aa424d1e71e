package repository

import (
	"context"
	"sort"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

type memMenu struct{ db *memoryDB }

// assembleItem copies a stored item together with its live children
func (db *memoryDB) assembleItem(stored *models.MenuItem) models.MenuItem {
	it := *stored
	it.Category = nil
	it.Variants = []models.Variant{}
	it.Modifiers = []models.Modifier{}

	for _, v := range db.variants {
		if v.MenuItemID == it.ID && !v.Lifecycle.IsDeleted() {
			it.Variants = append(it.Variants, *v)
		}
	}
	sort.SliceStable(it.Variants, func(i, j int) bool { return it.Variants[i].SortOrder < it.Variants[j].SortOrder })

	for _, m := range db.modifiers {
		if m.MenuItemID != it.ID || m.Lifecycle.IsDeleted() {
			continue
		}
		mod := *m
		mod.Options = []models.ModifierOption{}
		for _, o := range db.options {
			if o.ModifierID == mod.ID && !o.Lifecycle.IsDeleted() {
				mod.Options = append(mod.Options, *o)
			}
		}
		sort.SliceStable(mod.Options, func(i, j int) bool { return mod.Options[i].SortOrder < mod.Options[j].SortOrder })
		it.Modifiers = append(it.Modifiers, mod)
	}
	sort.SliceStable(it.Modifiers, func(i, j int) bool { return it.Modifiers[i].SortOrder < it.Modifiers[j].SortOrder })

	if c, ok := db.categories[it.CategoryID]; ok && !c.Lifecycle.IsDeleted() {
		cp := *c
		it.Category = &cp
	}
	return it
}

func (db *memoryDB) liveItem(tenantID, id string) (*models.MenuItem, bool) {
	it, ok := db.items[id]
	if !ok || it.TenantID != tenantID || it.Lifecycle.IsDeleted() {
		return nil, false
	}
	return it, true
}

func (r *memMenu) ListItems(_ context.Context, tenantID string, categoryID *string) ([]models.MenuItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []models.MenuItem{}
	for _, it := range r.db.items {
		if it.TenantID != tenantID || it.Lifecycle.IsDeleted() {
			continue
		}
		if categoryID != nil && it.CategoryID != *categoryID {
			continue
		}
		out = append(out, r.db.assembleItem(it))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memMenu) GetItem(_ context.Context, tenantID, id string) (*models.MenuItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	it, ok := r.db.liveItem(tenantID, id)
	if !ok {
		return nil, apperr.NotFound("menu item", id)
	}
	out := r.db.assembleItem(it)
	return &out, nil
}

func (r *memMenu) CreateItem(_ context.Context, it *models.MenuItem) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	last := 0
	for _, other := range r.db.items {
		if other.CategoryID == it.CategoryID && !other.Lifecycle.IsDeleted() && other.SortOrder > last {
			last = other.SortOrder
		}
	}
	now := nowUTC()
	it.ID = newID()
	it.SortOrder = last + 1
	it.Lifecycle = models.Active()
	it.CreatedAt, it.UpdatedAt = now, now
	it.Variants = []models.Variant{}
	it.Modifiers = []models.Modifier{}

	stored := *it
	stored.Category, stored.Variants, stored.Modifiers = nil, nil, nil
	r.db.items[it.ID] = &stored
	return nil
}

func (r *memMenu) UpdateItem(_ context.Context, it *models.MenuItem) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.liveItem(it.TenantID, it.ID)
	if !ok {
		return apperr.NotFound("menu item", it.ID)
	}
	it.CreatedAt, it.Lifecycle = cur.CreatedAt, cur.Lifecycle
	it.UpdatedAt = nowUTC()

	stored := *it
	stored.Category, stored.Variants, stored.Modifiers = nil, nil, nil
	r.db.items[it.ID] = &stored
	return nil
}

func (r *memMenu) DeleteItem(_ context.Context, tenantID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	it, ok := r.db.liveItem(tenantID, id)
	if !ok {
		return apperr.NotFound("menu item", id)
	}
	it.Lifecycle = models.Deleted(nowUTC())
	return nil
}

func (r *memMenu) CreateVariant(_ context.Context, v *models.Variant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.liveItem(v.TenantID, v.MenuItemID); !ok {
		return apperr.NotFound("menu item", v.MenuItemID)
	}

	last := 0
	for _, other := range r.db.variants {
		if other.MenuItemID == v.MenuItemID && !other.Lifecycle.IsDeleted() && other.SortOrder > last {
			last = other.SortOrder
		}
	}
	now := nowUTC()
	v.ID = newID()
	v.SortOrder = last + 1
	v.Lifecycle = models.Active()
	v.CreatedAt, v.UpdatedAt = now, now
	cp := *v
	r.db.variants[v.ID] = &cp
	return nil
}

func (r *memMenu) UpdateVariant(_ context.Context, v *models.Variant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.variants[v.ID]
	if !ok || cur.TenantID != v.TenantID || cur.MenuItemID != v.MenuItemID || cur.Lifecycle.IsDeleted() {
		return apperr.NotFound("variant", v.ID)
	}
	v.CreatedAt, v.Lifecycle = cur.CreatedAt, cur.Lifecycle
	v.UpdatedAt = nowUTC()
	cp := *v
	r.db.variants[v.ID] = &cp
	return nil
}

func (r *memMenu) DeleteVariant(_ context.Context, tenantID, itemID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.variants[id]
	if !ok || v.TenantID != tenantID || v.MenuItemID != itemID || v.Lifecycle.IsDeleted() {
		return apperr.NotFound("variant", id)
	}
	v.Lifecycle = models.Deleted(nowUTC())
	return nil
}

func (r *memMenu) CreateModifier(_ context.Context, m *models.Modifier) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.liveItem(m.TenantID, m.MenuItemID); !ok {
		return apperr.NotFound("menu item", m.MenuItemID)
	}

	last := 0
	for _, other := range r.db.modifiers {
		if other.MenuItemID == m.MenuItemID && !other.Lifecycle.IsDeleted() && other.SortOrder > last {
			last = other.SortOrder
		}
	}
	now := nowUTC()
	m.ID = newID()
	m.SortOrder = last + 1
	m.Lifecycle = models.Active()
	m.CreatedAt, m.UpdatedAt = now, now
	m.Options = []models.ModifierOption{}
	cp := *m
	cp.Options = nil
	r.db.modifiers[m.ID] = &cp
	return nil
}

func (r *memMenu) UpdateModifier(_ context.Context, m *models.Modifier) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.modifiers[m.ID]
	if !ok || cur.TenantID != m.TenantID || cur.MenuItemID != m.MenuItemID || cur.Lifecycle.IsDeleted() {
		return apperr.NotFound("modifier", m.ID)
	}
	m.CreatedAt, m.Lifecycle = cur.CreatedAt, cur.Lifecycle
	m.UpdatedAt = nowUTC()
	cp := *m
	cp.Options = nil
	r.db.modifiers[m.ID] = &cp
	return nil
}

func (r *memMenu) DeleteModifier(_ context.Context, tenantID, itemID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.modifiers[id]
	if !ok || m.TenantID != tenantID || m.MenuItemID != itemID || m.Lifecycle.IsDeleted() {
		return apperr.NotFound("modifier", id)
	}
	m.Lifecycle = models.Deleted(nowUTC())
	return nil
}

func (r *memMenu) CreateOption(_ context.Context, o *models.ModifierOption) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.modifiers[o.ModifierID]
	if !ok || m.TenantID != o.TenantID || m.Lifecycle.IsDeleted() {
		return apperr.NotFound("modifier", o.ModifierID)
	}

	last := 0
	for _, other := range r.db.options {
		if other.ModifierID == o.ModifierID && !other.Lifecycle.IsDeleted() && other.SortOrder > last {
			last = other.SortOrder
		}
	}
	now := nowUTC()
	o.ID = newID()
	o.SortOrder = last + 1
	o.Lifecycle = models.Active()
	o.CreatedAt, o.UpdatedAt = now, now
	cp := *o
	r.db.options[o.ID] = &cp
	return nil
}

func (r *memMenu) UpdateOption(_ context.Context, o *models.ModifierOption) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.options[o.ID]
	if !ok || cur.TenantID != o.TenantID || cur.ModifierID != o.ModifierID || cur.Lifecycle.IsDeleted() {
		return apperr.NotFound("modifier option", o.ID)
	}
	o.CreatedAt, o.Lifecycle = cur.CreatedAt, cur.Lifecycle
	o.UpdatedAt = nowUTC()
	cp := *o
	r.db.options[o.ID] = &cp
	return nil
}

func (r *memMenu) DeleteOption(_ context.Context, tenantID, modifierID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.options[id]
	if !ok || o.TenantID != tenantID || o.ModifierID != modifierID || o.Lifecycle.IsDeleted() {
		return apperr.NotFound("modifier option", id)
	}
	o.Lifecycle = models.Deleted(nowUTC())
	return nil
}
