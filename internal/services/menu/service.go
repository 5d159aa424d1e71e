// Package menu administers categories, menu items and their variants,
// modifiers and options, and serves the cached public menu.
package menu

import (
	"context"

	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/cache"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/repository"
)

type Service struct {
	categories repository.CategoryRepository
	menu       repository.MenuRepository
	cache      cache.Menus
	logger     *logger.Logger
}

func NewService(categories repository.CategoryRepository, menu repository.MenuRepository, menus cache.Menus, log *logger.Logger) *Service {
	return &Service{categories: categories, menu: menu, cache: menus, logger: log}
}

// invalidate drops the cached public menu. A failure only delays freshness
// until the entry expires, so it is logged and not returned.
func (s *Service) invalidate(ctx context.Context, tenant *models.Tenant) {
	if err := s.cache.Invalidate(ctx, tenant.Slug); err != nil {
		s.logger.Warn("menu_cache_invalidate_failed", err.Error(), "", map[string]interface{}{"tenant": tenant.Slug})
	}
}

// Categories

func (s *Service) ListCategories(ctx context.Context, tenantID string) ([]models.Category, error) {
	return s.categories.List(ctx, tenantID)
}

func (s *Service) CreateCategory(ctx context.Context, tenant *models.Tenant, in CategoryInput) (*models.Category, error) {
	c := &models.Category{TenantID: tenant.ID}
	if err := in.apply(c, true); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}
	s.invalidate(ctx, tenant)
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, tenant *models.Tenant, id string, in CategoryInput) (*models.Category, error) {
	c, err := s.categories.Get(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(c, false); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, tenant *models.Tenant, id string) error {
	if err := s.categories.Delete(ctx, tenant.ID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenant)
	return nil
}

// Menu items

func (s *Service) ListItems(ctx context.Context, tenantID string, categoryID *string) ([]models.MenuItem, error) {
	return s.menu.ListItems(ctx, tenantID, categoryID)
}

func (s *Service) GetItem(ctx context.Context, tenantID, id string) (*models.MenuItem, error) {
	return s.menu.GetItem(ctx, tenantID, id)
}

func (s *Service) CreateItem(ctx context.Context, tenant *models.Tenant, in ItemInput) (*models.MenuItem, error) {
	it := &models.MenuItem{TenantID: tenant.ID}
	if err := in.apply(it, true); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, tenant.ID, it.CategoryID); err != nil {
		return nil, err
	}
	if err := s.menu.CreateItem(ctx, it); err != nil {
		return nil, errors.Wrap(err, "failed to create menu item")
	}
	s.invalidate(ctx, tenant)
	return it, nil
}

func (s *Service) UpdateItem(ctx context.Context, tenant *models.Tenant, id string, in ItemInput) (*models.MenuItem, error) {
	it, err := s.menu.GetItem(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(it, false); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, tenant.ID, it.CategoryID); err != nil {
		return nil, err
	}
	if err := s.menu.UpdateItem(ctx, it); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)
	return s.menu.GetItem(ctx, tenant.ID, id)
}

func (s *Service) DeleteItem(ctx context.Context, tenant *models.Tenant, id string) error {
	if err := s.menu.DeleteItem(ctx, tenant.ID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenant)
	return nil
}

func (s *Service) requireCategory(ctx context.Context, tenantID, categoryID string) error {
	_, err := s.categories.Get(ctx, tenantID, categoryID)
	return err
}

// Variants

func (s *Service) ListVariants(ctx context.Context, tenantID, itemID string) ([]models.Variant, error) {
	it, err := s.menu.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	return it.Variants, nil
}

func (s *Service) CreateVariant(ctx context.Context, tenant *models.Tenant, itemID string, in VariantInput) (*models.Variant, error) {
	if _, err := s.menu.GetItem(ctx, tenant.ID, itemID); err != nil {
		return nil, err
	}
	v := &models.Variant{TenantID: tenant.ID, MenuItemID: itemID}
	if err := in.apply(v, true); err != nil {
		return nil, err
	}
	if err := s.menu.CreateVariant(ctx, v); err != nil {
		return nil, errors.Wrap(err, "failed to create variant")
	}
	s.invalidate(ctx, tenant)
	return v, nil
}

func (s *Service) UpdateVariant(ctx context.Context, tenant *models.Tenant, itemID, id string, in VariantInput) (*models.Variant, error) {
	it, err := s.menu.GetItem(ctx, tenant.ID, itemID)
	if err != nil {
		return nil, err
	}
	var v *models.Variant
	for i := range it.Variants {
		if it.Variants[i].ID == id {
			v = &it.Variants[i]
		}
	}
	if v == nil {
		return nil, apperr.NotFound("variant", id)
	}
	if err := in.apply(v, false); err != nil {
		return nil, err
	}
	if err := s.menu.UpdateVariant(ctx, v); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)
	return v, nil
}

func (s *Service) DeleteVariant(ctx context.Context, tenant *models.Tenant, itemID, id string) error {
	if err := s.menu.DeleteVariant(ctx, tenant.ID, itemID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenant)
	return nil
}

// Modifiers and options

func (s *Service) ListModifiers(ctx context.Context, tenantID, itemID string) ([]models.Modifier, error) {
	it, err := s.menu.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	return it.Modifiers, nil
}

func (s *Service) CreateModifier(ctx context.Context, tenant *models.Tenant, itemID string, in ModifierInput) (*models.Modifier, error) {
	if _, err := s.menu.GetItem(ctx, tenant.ID, itemID); err != nil {
		return nil, err
	}
	m := &models.Modifier{TenantID: tenant.ID, MenuItemID: itemID}
	if err := in.apply(m, true); err != nil {
		return nil, err
	}
	if err := s.menu.CreateModifier(ctx, m); err != nil {
		return nil, errors.Wrap(err, "failed to create modifier")
	}
	s.invalidate(ctx, tenant)
	return m, nil
}

// findModifier returns the live modifier id of item itemID
func (s *Service) findModifier(ctx context.Context, tenantID, itemID, id string) (*models.Modifier, error) {
	it, err := s.menu.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	for i := range it.Modifiers {
		if it.Modifiers[i].ID == id {
			return &it.Modifiers[i], nil
		}
	}
	return nil, apperr.NotFound("modifier", id)
}

func (s *Service) UpdateModifier(ctx context.Context, tenant *models.Tenant, itemID, id string, in ModifierInput) (*models.Modifier, error) {
	m, err := s.findModifier(ctx, tenant.ID, itemID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(m, false); err != nil {
		return nil, err
	}
	if err := s.menu.UpdateModifier(ctx, m); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)
	return m, nil
}

func (s *Service) DeleteModifier(ctx context.Context, tenant *models.Tenant, itemID, id string) error {
	if err := s.menu.DeleteModifier(ctx, tenant.ID, itemID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenant)
	return nil
}

func (s *Service) CreateOption(ctx context.Context, tenant *models.Tenant, itemID, modifierID string, in OptionInput) (*models.ModifierOption, error) {
	if _, err := s.findModifier(ctx, tenant.ID, itemID, modifierID); err != nil {
		return nil, err
	}
	o := &models.ModifierOption{TenantID: tenant.ID, ModifierID: modifierID}
	if err := in.apply(o, true); err != nil {
		return nil, err
	}
	if err := s.menu.CreateOption(ctx, o); err != nil {
		return nil, errors.Wrap(err, "failed to create modifier option")
	}
	s.invalidate(ctx, tenant)
	return o, nil
}

func (s *Service) UpdateOption(ctx context.Context, tenant *models.Tenant, itemID, modifierID, id string, in OptionInput) (*models.ModifierOption, error) {
	m, err := s.findModifier(ctx, tenant.ID, itemID, modifierID)
	if err != nil {
		return nil, err
	}
	var o *models.ModifierOption
	for i := range m.Options {
		if m.Options[i].ID == id {
			o = &m.Options[i]
		}
	}
	if o == nil {
		return nil, apperr.NotFound("modifier option", id)
	}
	if err := in.apply(o, false); err != nil {
		return nil, err
	}
	if err := s.menu.UpdateOption(ctx, o); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenant)
	return o, nil
}

func (s *Service) DeleteOption(ctx context.Context, tenant *models.Tenant, itemID, modifierID, id string) error {
	if _, err := s.findModifier(ctx, tenant.ID, itemID, modifierID); err != nil {
		return err
	}
	if err := s.menu.DeleteOption(ctx, tenant.ID, modifierID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenant)
	return nil
}

// Public menu

// PublicMenu returns the tenant's active categories with their available
// items. Categories without orderable items are left out.
func (s *Service) PublicMenu(ctx context.Context, tenant *models.Tenant, requestID string) (*models.PublicMenu, error) {
	cached, err := s.cache.Get(ctx, tenant.Slug)
	if err == nil {
		return cached, nil
	}
	if err != cache.ErrMiss {
		s.logger.Warn("menu_cache_read_failed", err.Error(), requestID, map[string]interface{}{"tenant": tenant.Slug})
	}

	categories, err := s.categories.List(ctx, tenant.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	items, err := s.menu.ListItems(ctx, tenant.ID, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list menu items")
	}

	byCategory := make(map[string][]models.MenuItem)
	for _, it := range items {
		if it.Availability != models.Available {
			continue
		}
		it.Category = nil
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], it)
	}

	menu := &models.PublicMenu{Tenant: *tenant, Categories: []models.MenuCategory{}}
	for _, c := range categories {
		if !c.IsActive || len(byCategory[c.ID]) == 0 {
			continue
		}
		menu.Categories = append(menu.Categories, models.MenuCategory{Category: c, Items: byCategory[c.ID]})
	}

	if err := s.cache.Set(ctx, tenant.Slug, menu); err != nil {
		s.logger.Warn("menu_cache_write_failed", err.Error(), requestID, map[string]interface{}{"tenant": tenant.Slug})
	}
	return menu, nil
}
