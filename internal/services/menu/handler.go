package menu

import (
	"net/http"

	"github.com/gorilla/mux"

	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
)

// Handler handles HTTP requests for menu administration and the public menu
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) Routes(public, admin *mux.Router) {
	public.HandleFunc("/menu", h.PublicMenu).Methods(http.MethodGet)

	admin.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	admin.HandleFunc("/categories", h.CreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/categories/{categoryId}", h.UpdateCategory).Methods(http.MethodPut)
	admin.HandleFunc("/categories/{categoryId}", h.DeleteCategory).Methods(http.MethodDelete)

	admin.HandleFunc("/menu-items", h.ListItems).Methods(http.MethodGet)
	admin.HandleFunc("/menu-items", h.CreateItem).Methods(http.MethodPost)
	admin.HandleFunc("/menu-items/{itemId}", h.GetItem).Methods(http.MethodGet)
	admin.HandleFunc("/menu-items/{itemId}", h.UpdateItem).Methods(http.MethodPut)
	admin.HandleFunc("/menu-items/{itemId}", h.DeleteItem).Methods(http.MethodDelete)

	admin.HandleFunc("/menu-items/{itemId}/variants", h.ListVariants).Methods(http.MethodGet)
	admin.HandleFunc("/menu-items/{itemId}/variants", h.CreateVariant).Methods(http.MethodPost)
	admin.HandleFunc("/menu-items/{itemId}/variants/{variantId}", h.UpdateVariant).Methods(http.MethodPut)
	admin.HandleFunc("/menu-items/{itemId}/variants/{variantId}", h.DeleteVariant).Methods(http.MethodDelete)

	admin.HandleFunc("/menu-items/{itemId}/modifiers", h.ListModifiers).Methods(http.MethodGet)
	admin.HandleFunc("/menu-items/{itemId}/modifiers", h.CreateModifier).Methods(http.MethodPost)
	admin.HandleFunc("/menu-items/{itemId}/modifiers/{modifierId}", h.UpdateModifier).Methods(http.MethodPut)
	admin.HandleFunc("/menu-items/{itemId}/modifiers/{modifierId}", h.DeleteModifier).Methods(http.MethodDelete)

	admin.HandleFunc("/menu-items/{itemId}/modifiers/{modifierId}/options", h.CreateOption).Methods(http.MethodPost)
	admin.HandleFunc("/menu-items/{itemId}/modifiers/{modifierId}/options/{optionId}", h.UpdateOption).Methods(http.MethodPut)
	admin.HandleFunc("/menu-items/{itemId}/modifiers/{modifierId}/options/{optionId}", h.DeleteOption).Methods(http.MethodDelete)
}

// respond writes v, or the error when err is set
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v interface{}, err error) {
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, status, v)
}

func (h *Handler) PublicMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.service.PublicMenu(r.Context(), httpx.TenantFrom(r.Context()), httpx.RequestID(r.Context()))
	h.respond(w, r, http.StatusOK, menu, err)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), httpx.TenantFrom(r.Context()).ID)
	h.respond(w, r, http.StatusOK, categories, err)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in CategoryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	c, err := h.service.CreateCategory(r.Context(), httpx.TenantFrom(r.Context()), in)
	h.respond(w, r, http.StatusCreated, c, err)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in CategoryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	c, err := h.service.UpdateCategory(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["categoryId"], in)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteCategory(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["categoryId"])
	h.respond(w, r, http.StatusNoContent, nil, err)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), httpx.TenantFrom(r.Context()).ID, httpx.QueryString(r, "categoryId"))
	h.respond(w, r, http.StatusOK, items, err)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.service.GetItem(r.Context(), httpx.TenantFrom(r.Context()).ID, mux.Vars(r)["itemId"])
	h.respond(w, r, http.StatusOK, it, err)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	it, err := h.service.CreateItem(r.Context(), httpx.TenantFrom(r.Context()), in)
	h.respond(w, r, http.StatusCreated, it, err)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	it, err := h.service.UpdateItem(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["itemId"], in)
	h.respond(w, r, http.StatusOK, it, err)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteItem(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["itemId"])
	h.respond(w, r, http.StatusNoContent, nil, err)
}

func (h *Handler) ListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.service.ListVariants(r.Context(), httpx.TenantFrom(r.Context()).ID, mux.Vars(r)["itemId"])
	h.respond(w, r, http.StatusOK, variants, err)
}

func (h *Handler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	var in VariantInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	v, err := h.service.CreateVariant(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["itemId"], in)
	h.respond(w, r, http.StatusCreated, v, err)
}

func (h *Handler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	var in VariantInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	vars := mux.Vars(r)
	v, err := h.service.UpdateVariant(r.Context(), httpx.TenantFrom(r.Context()), vars["itemId"], vars["variantId"], in)
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *Handler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.service.DeleteVariant(r.Context(), httpx.TenantFrom(r.Context()), vars["itemId"], vars["variantId"])
	h.respond(w, r, http.StatusNoContent, nil, err)
}

func (h *Handler) ListModifiers(w http.ResponseWriter, r *http.Request) {
	modifiers, err := h.service.ListModifiers(r.Context(), httpx.TenantFrom(r.Context()).ID, mux.Vars(r)["itemId"])
	h.respond(w, r, http.StatusOK, modifiers, err)
}

func (h *Handler) CreateModifier(w http.ResponseWriter, r *http.Request) {
	var in ModifierInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	m, err := h.service.CreateModifier(r.Context(), httpx.TenantFrom(r.Context()), mux.Vars(r)["itemId"], in)
	h.respond(w, r, http.StatusCreated, m, err)
}

func (h *Handler) UpdateModifier(w http.ResponseWriter, r *http.Request) {
	var in ModifierInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	vars := mux.Vars(r)
	m, err := h.service.UpdateModifier(r.Context(), httpx.TenantFrom(r.Context()), vars["itemId"], vars["modifierId"], in)
	h.respond(w, r, http.StatusOK, m, err)
}

func (h *Handler) DeleteModifier(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.service.DeleteModifier(r.Context(), httpx.TenantFrom(r.Context()), vars["itemId"], vars["modifierId"])
	h.respond(w, r, http.StatusNoContent, nil, err)
}

func (h *Handler) CreateOption(w http.ResponseWriter, r *http.Request) {
	var in OptionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	vars := mux.Vars(r)
	o, err := h.service.CreateOption(r.Context(), httpx.TenantFrom(r.Context()), vars["itemId"], vars["modifierId"], in)
	h.respond(w, r, http.StatusCreated, o, err)
}

func (h *Handler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	var in OptionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	vars := mux.Vars(r)
	o, err := h.service.UpdateOption(r.Context(), httpx.TenantFrom(r.Context()), vars["itemId"], vars["modifierId"], vars["optionId"], in)
	h.respond(w, r, http.StatusOK, o, err)
}

func (h *Handler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.service.DeleteOption(r.Context(), httpx.TenantFrom(r.Context()), vars["itemId"], vars["modifierId"], vars["optionId"])
	h.respond(w, r, http.StatusNoContent, nil, err)
}
