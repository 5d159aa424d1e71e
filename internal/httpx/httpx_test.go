package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
)

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name        string
		contentType string
		payload     string
		wantErr     string
	}{
		{"ok", "application/json; charset=utf-8", `{"name":"x"}`, ""},
		{"wrong content type", "text/plain", `{"name":"x"}`, "Content-Type"},
		{"empty", "application/json", ``, "empty"},
		{"unknown field", "application/json", `{"nama":"x"}`, "unknown field"},
		{"malformed", "application/json", `{"name":`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", tt.contentType)
			var v body
			err := DecodeJSON(req, &v)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "x", v.Name)
				return
			}
			require.True(t, apperr.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRequestID(req.Context(), "req-9"))
	rec := httptest.NewRecorder()

	WriteError(rec, req, logger.NewNop(), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, apperr.CodeInternal, body.Code)
	assert.Equal(t, "req-9", body.RequestID)
}

func TestWriteError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger.NewNop(), apperr.Invalid("items", "items cannot be empty"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "items", body.Fields[0].Field)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&offset=-1&bad=x", nil)

	n, err := QueryInt(req, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = QueryInt(req, "missing", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	_, err = QueryInt(req, "offset", 0)
	assert.True(t, apperr.IsValidation(err))
	_, err = QueryInt(req, "bad", 0)
	assert.True(t, apperr.IsValidation(err))
}

type staticAuth struct{ p *models.Principal }

func (s staticAuth) Authenticate(_ context.Context, token string) (*models.Principal, error) {
	if token != "good" {
		return nil, apperr.Unauthorized("invalid token")
	}
	return s.p, nil
}

func TestAuthenticateAndRequireTenantMember(t *testing.T) {
	log := logger.NewNop()
	p := &models.Principal{UserID: "u1", Tenants: []models.TenantSummary{{Slug: "demo"}}}

	r := mux.NewRouter()
	r.Use(WithLogging(log))
	r.Use(Authenticate(staticAuth{p: p}, "auth-token"))
	admin := r.PathPrefix("/api/{slug}/admin").Subrouter()
	admin.Use(RequireTenantMember(log))
	admin.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", PrincipalFrom(r.Context()).UserID)
		assert.NotEmpty(t, RequestID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})

	call := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: "auth-token", Value: token})
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("/api/demo/admin/ping", "good"))
	assert.Equal(t, http.StatusUnauthorized, call("/api/demo/admin/ping", ""))
	assert.Equal(t, http.StatusUnauthorized, call("/api/demo/admin/ping", "forged"))
	assert.Equal(t, http.StatusForbidden, call("/api/other/admin/ping", "good"))
}

func TestWithLogging_KeepsIncomingRequestID(t *testing.T) {
	h := WithLogging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc-123", RequestID(r.Context()))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
