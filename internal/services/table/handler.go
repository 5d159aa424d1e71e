package table

import (
	"net/http"

	"github.com/gorilla/mux"

	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
)

type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

type openSessionRequest struct {
	QRCodeToken string `json:"qrcodeToken"`
}

func (h *Handler) Routes(public, admin *mux.Router) {
	public.HandleFunc("/tables/sessions", h.OpenSession).Methods(http.MethodPost)

	admin.HandleFunc("/tables", h.List).Methods(http.MethodGet)
	admin.HandleFunc("/tables", h.Create).Methods(http.MethodPost)
	admin.HandleFunc("/tables/{tableId}", h.Get).Methods(http.MethodGet)
	admin.HandleFunc("/tables/{tableId}", h.Update).Methods(http.MethodPut)
	admin.HandleFunc("/tables/{tableId}", h.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/tables/{tableId}/qrcode", h.QRCode).Methods(http.MethodGet)
	admin.HandleFunc("/table-sessions/{sessionId}", h.CloseSession).Methods(http.MethodDelete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.List(r.Context(), httpx.TenantFrom(r.Context()).ID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, tables)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), httpx.TenantFrom(r.Context()).ID, mux.Vars(r)["tableId"])
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	t, err := h.service.Create(r.Context(), httpx.TenantFrom(r.Context()), in, httpx.RequestID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	t, err := h.service.Update(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["tableId"], in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["tableId"]); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.service.QRCode(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["tableId"])
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, qr)
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	session, err := h.service.OpenSession(r.Context(), httpx.TenantFrom(r.Context()), req.QRCodeToken, httpx.RequestID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, session)
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	err := h.service.CloseSession(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["sessionId"], httpx.RequestID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
