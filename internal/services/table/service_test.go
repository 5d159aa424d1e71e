package table

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/apperr"
	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/repository"
)

func setup(t *testing.T) (*Service, *repository.Store, *models.Tenant) {
	t.Helper()
	store := repository.NewMemoryStore()
	tenant := newTenant(t, store, "demo-resto")
	return NewService(store.Tables, "https://order.example.com/", logger.NewNop()), store, tenant
}

func newTenant(t *testing.T, store *repository.Store, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{ID: uuid.NewString(), Name: slug, Slug: slug, IsActive: true}
	user := &models.User{ID: uuid.NewString(), Email: slug + "@owner.test", Name: "Owner", PasswordHash: "x"}
	require.NoError(t, store.Tenants.Register(context.Background(), user, tenant))
	return tenant
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCreate_Validation(t *testing.T) {
	svc, _, tenant := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		in     Input
		fields []string
	}{
		{"empty", Input{}, []string{"code", "name", "capacity"}},
		{"zero capacity", Input{Code: strPtr("T1"), Name: strPtr("Table 1"), Capacity: intPtr(0)}, []string{"capacity"}},
		{"blank code", Input{Code: strPtr(" "), Name: strPtr("Table 1"), Capacity: intPtr(4)}, []string{"code"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tenant, tt.in, "")
			require.True(t, apperr.IsValidation(err))
			var got []string
			for _, f := range apperr.Fields(err) {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	svc, _, tenant := setup(t)
	ctx := context.Background()

	tbl, err := svc.Create(ctx, tenant, Input{Code: strPtr("T1"), Name: strPtr("Table 1"), Capacity: intPtr(4)}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, tbl.ID)
	_, err = uuid.Parse(tbl.QRCodeToken)
	assert.NoError(t, err)

	updated, err := svc.Update(ctx, tenant, tbl.ID, Input{Capacity: intPtr(6)})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Capacity)
	assert.Equal(t, "T1", updated.Code)
	assert.Equal(t, tbl.QRCodeToken, updated.QRCodeToken)

	require.NoError(t, svc.Delete(ctx, tenant, tbl.ID))
	_, err = svc.Get(ctx, tenant.ID, tbl.ID)
	assert.True(t, apperr.IsNotFound(err))

	tables, err := svc.List(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestQRCode(t *testing.T) {
	svc, _, tenant := setup(t)
	ctx := context.Background()
	tbl, err := svc.Create(ctx, tenant, Input{Code: strPtr("T1"), Name: strPtr("Table 1"), Capacity: intPtr(2)}, "")
	require.NoError(t, err)

	qr, err := svc.QRCode(ctx, tenant, tbl.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://order.example.com/demo-resto/menu?table="+tbl.QRCodeToken, qr.URL)
	require.True(t, strings.HasPrefix(qr.QRCode, "data:image/png;base64,"))

	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(qr.QRCode, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestSessions(t *testing.T) {
	svc, store, tenant := setup(t)
	ctx := context.Background()
	tbl, err := svc.Create(ctx, tenant, Input{Code: strPtr("T1"), Name: strPtr("Table 1"), Capacity: intPtr(2)}, "")
	require.NoError(t, err)

	first, err := svc.OpenSession(ctx, tenant, tbl.QRCodeToken, "")
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	require.NotNil(t, first.Table)
	assert.Equal(t, "T1", first.Table.Code)

	again, err := svc.OpenSession(ctx, tenant, tbl.QRCodeToken, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	require.NoError(t, svc.CloseSession(ctx, tenant, first.ID, ""))
	assert.True(t, apperr.IsNotFound(svc.CloseSession(ctx, tenant, first.ID, "")))

	next, err := svc.OpenSession(ctx, tenant, tbl.QRCodeToken, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)

	_, err = svc.OpenSession(ctx, tenant, "  ", "")
	assert.True(t, apperr.IsValidation(err))

	other := newTenant(t, store, "other-resto")
	_, err = svc.OpenSession(ctx, other, tbl.QRCodeToken, "")
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(svc.CloseSession(ctx, other, next.ID, "")))
}

func TestHandler_OpenSessionAndQRCode(t *testing.T) {
	svc, store, tenant := setup(t)
	log := logger.NewNop()
	r := mux.NewRouter()
	public := r.PathPrefix("/api/{slug}").Subrouter()
	public.Use(httpx.ResolveTenant(store.Tenants, log))
	NewHandler(svc, log).Routes(public, public.PathPrefix("/admin").Subrouter())

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/demo-resto/admin/tables", map[string]interface{}{"code": "T9", "name": "Patio", "capacity": 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tbl models.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tbl))
	assert.Equal(t, tenant.ID, tbl.TenantID)

	rec = do(http.MethodGet, "/api/demo-resto/admin/tables/"+tbl.ID+"/qrcode", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var qr QRCode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &qr))
	assert.Contains(t, qr.URL, tbl.QRCodeToken)

	rec = do(http.MethodPost, "/api/demo-resto/tables/sessions", map[string]string{"qrcodeToken": tbl.QRCodeToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session models.TableSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.True(t, session.IsActive)

	rec = do(http.MethodDelete, "/api/demo-resto/admin/table-sessions/"+session.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(http.MethodPost, "/api/demo-resto/tables/sessions", map[string]string{"qrcodeToken": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
