package tracking

import (
	"net/http"

	"github.com/gorilla/mux"

	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
)

// Handler handles HTTP requests for order tracking
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new tracking handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Routes mounts the public tracking endpoints
func (h *Handler) Routes(public *mux.Router) {
	public.HandleFunc("/orders/{orderNumber}/track", h.TrackOrder).Methods(http.MethodGet)
	public.HandleFunc("/orders/{orderNumber}/history", h.GetOrderHistory).Methods(http.MethodGet)
}

// TrackOrder handles GET /api/{slug}/orders/{orderNumber}/track
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	requestID := httpx.RequestID(r.Context())
	orderNumber := mux.Vars(r)["orderNumber"]

	h.logger.Debug("request_received", "Track order request", requestID, map[string]interface{}{
		"order_number": orderNumber,
	})

	tracking, err := h.service.TrackOrder(r.Context(), httpx.TenantFrom(r.Context()), orderNumber, requestID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, tracking)
}

// GetOrderHistory handles GET /api/{slug}/orders/{orderNumber}/history
func (h *Handler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.GetOrderHistory(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["orderNumber"])
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, history)
}
