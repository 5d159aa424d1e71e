package order

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
)

// Handler handles HTTP requests for orders
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Routes mounts checkout on the public tenant router and order management
// on the admin router
func (h *Handler) Routes(public, admin *mux.Router) {
	public.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost)

	admin.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{orderId}", h.GetOrder).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{orderId}/status", h.UpdateStatus).Methods(http.MethodPatch)
}

// CreateOrder handles POST /api/{slug}/orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := httpx.RequestID(r.Context())
	tenant := httpx.TenantFrom(r.Context())

	var req models.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.Debug("order_received", "Received order creation request", requestID, map[string]interface{}{
		"tenant":     tenant.Slug,
		"order_type": req.OrderType,
		"items":      len(req.Items),
	})

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	order, err := h.service.CreateOrder(ctx, tenant, &req, requestID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusCreated, order)
}

type orderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ListOrders handles GET /api/{slug}/admin/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	tenant := httpx.TenantFrom(r.Context())

	var filter models.OrderFilter
	if s := httpx.QueryString(r, "status"); s != nil {
		status := models.OrderStatus(*s)
		filter.Status = &status
	}
	if t := httpx.QueryString(r, "type"); t != nil {
		typ := models.OrderType(*t)
		filter.OrderType = &typ
	}

	var err error
	if filter.Limit, err = httpx.QueryInt(r, "limit", defaultPageSize); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if filter.Offset, err = httpx.QueryInt(r, "offset", 0); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	orders, total, err := h.service.ListOrders(r.Context(), tenant.ID, filter)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, orderPage{Orders: orders, Total: total, Limit: pageLimit(filter.Limit), Offset: filter.Offset})
}

// GetOrder handles GET /api/{slug}/admin/orders/{orderId}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	tenant := httpx.TenantFrom(r.Context())
	order, err := h.service.GetOrder(r.Context(), tenant.ID, mux.Vars(r)["orderId"])
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, order)
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
	Note   *string            `json:"note,omitempty"`
}

// UpdateStatus handles PATCH /api/{slug}/admin/orders/{orderId}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenant := httpx.TenantFrom(r.Context())
	principal := httpx.PrincipalFrom(r.Context())

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), tenant, mux.Vars(r)["orderId"], req.Status,
		principal.Email, req.Note, httpx.RequestID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, order)
}
