package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
)

// Authenticator turns a token into the user it was issued to
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// TenantLookup resolves active tenants by slug
type TenantLookup interface {
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

// WithLogging assigns a request id and logs start and completion of every request
func WithLogging(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logger.GenerateRequestID()
			}
			r = r.WithContext(WithRequestID(r.Context(), requestID))
			w.Header().Set("X-Request-ID", requestID)

			log.Debug("request_started",
				fmt.Sprintf("%s %s", r.Method, r.URL.Path),
				requestID,
				map[string]interface{}{
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
					"user_agent":  r.Header.Get("User-Agent"),
				})

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			log.Info("request_completed",
				fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
				requestID,
				map[string]interface{}{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status_code": rw.statusCode,
					"duration_ms": time.Since(start).Milliseconds(),
				})
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ResolveTenant loads the tenant named by the {slug} path variable
func ResolveTenant(tenants TenantLookup, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant, err := tenants.GetBySlug(r.Context(), mux.Vars(r)["slug"])
			if err != nil {
				WriteError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenant)))
		})
	}
}

// Authenticate attaches the principal from the auth cookie when it is valid.
// Requests without a valid token continue anonymously.
func Authenticate(authn Authenticator, cookieName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				if p, err := authn.Authenticate(r.Context(), c.Value); err == nil {
					r = r.WithContext(WithPrincipal(r.Context(), p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenantMember rejects anonymous callers with 401 and callers outside
// the resolved tenant with 403.
func RequireTenantMember(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFrom(r.Context())
			if p == nil {
				WriteError(w, r, log, apperr.Unauthorized("authentication required"))
				return
			}
			if !p.CanAccess(mux.Vars(r)["slug"]) {
				WriteError(w, r, log, apperr.Forbidden("no access to this tenant"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
