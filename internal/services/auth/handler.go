package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
)

// Cookies writes the auth cookie
type Cookies struct {
	Name   string
	Secure bool
}

func (c Cookies) Set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type Handler struct {
	service *Service
	cookies Cookies
	logger  *logger.Logger
}

func NewHandler(service *Service, cookies Cookies, log *logger.Logger) *Handler {
	return &Handler{service: service, cookies: cookies, logger: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Routes mounts the auth endpoints under api
func (h *Handler) Routes(api *mux.Router) {
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password, httpx.RequestID(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	h.cookies.Set(w, session.Token, session.ExpiresAt)
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, session)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Me(r.Context(), httpx.PrincipalFrom(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, r, h.logger, http.StatusOK, session)
}
