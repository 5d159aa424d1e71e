package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ordermenu/internal/cache"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/repository"
	"ordermenu/internal/services/auth"
	"ordermenu/internal/services/menu"
	"ordermenu/internal/services/table"
	"ordermenu/internal/services/tenant"
)

const (
	demoSlug     = "demo-resto"
	demoEmail    = "admin@demo-resto.test"
	demoPassword = "demo1234"
)

type seedOption struct {
	name  string
	delta models.Money
}

type seedModifier struct {
	name      string
	required  bool
	maxSelect int
	options   []seedOption
}

type seedItem struct {
	name      string
	price     models.Money
	variants  []seedOption
	modifiers []seedModifier
}

var demoMenu = []struct {
	category string
	items    []seedItem
}{
	{"Makanan", []seedItem{
		{
			name:     "Nasi Goreng",
			price:    25000,
			variants: []seedOption{{"Regular", 0}, {"Large", 10000}},
			modifiers: []seedModifier{
				{"Spice Level", true, 1, []seedOption{{"Mild", 0}, {"Hot", 2000}}},
				{"Toppings", false, 2, []seedOption{{"Fried Egg", 5000}, {"Chicken", 8000}}},
			},
		},
		{name: "Mie Goreng", price: 22000, variants: []seedOption{{"Regular", 0}, {"Large", 8000}}},
	}},
	{"Minuman", []seedItem{
		{name: "Es Teh", price: 5500},
		{
			name:      "Kopi Susu",
			price:     18000,
			variants:  []seedOption{{"Hot", 0}, {"Iced", 2000}},
			modifiers: []seedModifier{{"Sugar", false, 1, []seedOption{{"Less Sugar", 0}, {"No Sugar", 0}}}},
		},
	}},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo-resto tenant with a sample menu and table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup("seed")
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()
			return seed(ctx, store, cfg.Auth.JWTSecret, cfg.HTTP.PublicBaseURL, log)
		},
	}
}

func seed(ctx context.Context, store *repository.Store, secret, baseURL string, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()
	if exists, err := store.Tenants.SlugExists(ctx, demoSlug); err != nil {
		return err
	} else if exists {
		log.Info("seed_skipped", "Demo tenant already exists", requestID, map[string]interface{}{"tenant": demoSlug})
		return nil
	}

	authn := auth.NewService(store.Users, auth.NewTokens(secret, time.Hour), cache.NopThrottle{}, log)
	reg, err := tenant.NewService(store.Tenants, store.Users, authn, log).Register(ctx, tenant.RegisterRequest{
		Name:     "Demo Resto",
		Email:    demoEmail,
		Password: demoPassword,
		Slug:     demoSlug,
	}, requestID)
	if err != nil {
		return errors.Wrap(err, "failed to register demo tenant")
	}
	t := reg.Tenant

	menus := menu.NewService(store.Categories, store.Menu, cache.NopMenus{}, log)
	for _, c := range demoMenu {
		cat, err := menus.CreateCategory(ctx, t, menu.CategoryInput{Name: &c.category})
		if err != nil {
			return err
		}
		for _, si := range c.items {
			if err := seedMenuItem(ctx, menus, t, cat.ID, si); err != nil {
				return err
			}
		}
	}

	tables := table.NewService(store.Tables, baseURL, log)
	code, name, capacity := "T1", "Table 1", 4
	tbl, err := tables.Create(ctx, t, table.Input{Code: &code, Name: &name, Capacity: &capacity}, requestID)
	if err != nil {
		return err
	}

	log.Info("seed_completed", "Demo data created", requestID, map[string]interface{}{
		"tenant":   t.Slug,
		"email":    demoEmail,
		"table":    tbl.Code,
		"menu_url": tables.MenuURL(t, tbl),
	})
	return nil
}

func seedMenuItem(ctx context.Context, menus *menu.Service, t *models.Tenant, categoryID string, si seedItem) error {
	name, price := si.name, si.price
	it, err := menus.CreateItem(ctx, t, menu.ItemInput{CategoryID: &categoryID, Name: &name, BasePrice: &price})
	if err != nil {
		return err
	}
	for _, v := range si.variants {
		vname, delta := v.name, v.delta
		if _, err := menus.CreateVariant(ctx, t, it.ID, menu.VariantInput{Name: &vname, PriceDelta: &delta}); err != nil {
			return err
		}
	}
	for _, m := range si.modifiers {
		mname, required, maxSelect := m.name, m.required, m.maxSelect
		mod, err := menus.CreateModifier(ctx, t, it.ID, menu.ModifierInput{Name: &mname, IsRequired: &required, MaxSelect: &maxSelect})
		if err != nil {
			return err
		}
		for _, o := range m.options {
			oname, delta := o.name, o.delta
			if _, err := menus.CreateOption(ctx, t, it.ID, mod.ID, menu.OptionInput{Name: &oname, PriceDelta: &delta}); err != nil {
				return err
			}
		}
	}
	return nil
}
