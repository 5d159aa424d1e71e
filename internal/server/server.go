// Package server assembles the HTTP API from the service handlers.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ordermenu/internal/cache"
	"ordermenu/internal/config"
	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
	"ordermenu/internal/messaging"
	"ordermenu/internal/pricing"
	"ordermenu/internal/repository"
	"ordermenu/internal/services/auth"
	"ordermenu/internal/services/menu"
	"ordermenu/internal/services/order"
	"ordermenu/internal/services/table"
	"ordermenu/internal/services/tenant"
	"ordermenu/internal/services/tracking"
)

// Deps are the backends the API runs on
type Deps struct {
	Store    *repository.Store
	Events   messaging.EventPublisher
	Menus    cache.Menus
	Throttle cache.Throttle
}

// NewRouter builds the full API router.
//
//	/health
//	/api/auth/...                 login, logout, me
//	/api/tenants/...              registration, slug check, tenant lookup
//	/api/{slug}/...               public menu, table sessions, checkout, tracking
//	/api/{slug}/admin/...         dashboard; requires a member of {slug}
func NewRouter(cfg *config.Config, deps Deps, log *logger.Logger) (http.Handler, error) {
	rates, err := pricing.ParseRates(cfg.Ordering.TaxRate, cfg.Ordering.ServiceChargeRate)
	if err != nil {
		return nil, err
	}
	source, err := pricing.ParseSnapshotSource(cfg.Ordering.SnapshotSource)
	if err != nil {
		return nil, err
	}
	engine := pricing.NewEngine(rates, source)
	store := deps.Store
	cookies := auth.Cookies{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}

	authService := auth.NewService(store.Users, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), deps.Throttle, log)
	tenantService := tenant.NewService(store.Tenants, store.Users, authService, log)
	menuService := menu.NewService(store.Categories, store.Menu, deps.Menus, log)
	tableService := table.NewService(store.Tables, cfg.HTTP.PublicBaseURL, log)
	orderService := order.NewService(store.Orders, engine, deps.Events, log, cfg.Ordering.MaxItems)
	trackingService := tracking.NewService(store.Orders, log)

	tenantHandler := tenant.NewHandler(tenantService, cookies, log)

	r := mux.NewRouter()
	r.Use(httpx.WithLogging(log))
	r.Use(httpx.Authenticate(authService, cookies.Name))

	r.HandleFunc("/health", health(store, log)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	auth.NewHandler(authService, cookies, log).Routes(api)
	tenantHandler.Routes(api)

	public := api.PathPrefix("/{slug}").Subrouter()
	public.Use(httpx.ResolveTenant(store.Tenants, log))

	admin := public.PathPrefix("/admin").Subrouter()
	admin.Use(httpx.RequireTenantMember(log))

	tenantHandler.AdminRoutes(admin)
	menu.NewHandler(menuService, log).Routes(public, admin)
	table.NewHandler(tableService, log).Routes(public, admin)
	order.NewHandler(orderService, log).Routes(public, admin)
	tracking.NewHandler(trackingService, log).Routes(public)

	return r, nil
}

func health(store *repository.Store, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Error("health_check_failed", "Storage unreachable", httpx.RequestID(r.Context()), err, nil)
			httpx.WriteJSON(w, r, log, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, r, log, http.StatusOK, map[string]string{"status": "ok"})
	}
}
