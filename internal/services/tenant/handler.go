package tenant

import (
	"net/http"

	"github.com/gorilla/mux"

	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
	"ordermenu/internal/services/auth"
)

type Handler struct {
	service *Service
	cookies auth.Cookies
	logger  *logger.Logger
}

func NewHandler(service *Service, cookies auth.Cookies, log *logger.Logger) *Handler {
	return &Handler{service: service, cookies: cookies, logger: log}
}

// Routes mounts registration and lookup under api. They must be registered
// before the /{slug} subrouter.
func (h *Handler) Routes(api *mux.Router) {
	api.HandleFunc("/tenants/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/tenants/check-slug", h.CheckSlug).Methods(http.MethodGet)
	api.HandleFunc("/tenants/{slug}", h.Get).Methods(http.MethodGet)
}

// AdminRoutes mounts the dashboard endpoints
func (h *Handler) AdminRoutes(admin *mux.Router) {
	admin.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	admin.HandleFunc("/settings", h.Update).Methods(http.MethodPut)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	reg, err := h.service.Register(r.Context(), req, httpx.RequestID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	h.cookies.Set(w, reg.Session.Token, reg.Session.ExpiresAt)
	httpx.WriteJSON(w, r, h.logger, http.StatusCreated, reg)
}

func (h *Handler) CheckSlug(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CheckSlug(r.Context(), r.URL.Query().Get("slug"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, t)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), httpx.TenantFrom(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, stats)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	t, err := h.service.Update(r.Context(), httpx.TenantFrom(r.Context()), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, t)
}
