package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/apperr"
	"ordermenu/internal/httpx"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
)

func newTestRouter(env *testEnv) *mux.Router {
	log := logger.NewNop()
	r := mux.NewRouter()
	public := r.PathPrefix("/api/{slug}").Subrouter()
	public.Use(httpx.ResolveTenant(env.store.Tenants, log))
	admin := public.PathPrefix("/admin").Subrouter()
	NewHandler(env.service, log).Routes(public, admin)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_MenuAdministration(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)

	rec := doJSON(t, router, http.MethodPost, "/api/demo-resto/admin/categories", map[string]interface{}{"name": "Makanan"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cat models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))

	rec = doJSON(t, router, http.MethodPost, "/api/demo-resto/admin/menu-items", map[string]interface{}{
		"categoryId": cat.ID,
		"name":       "Nasi Goreng",
		"basePrice":  25000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item models.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))

	rec = doJSON(t, router, http.MethodPost, "/api/demo-resto/admin/menu-items/"+item.ID+"/modifiers", map[string]interface{}{
		"name": "Spice", "isRequired": true, "maxSelect": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var mod models.Modifier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mod))

	rec = doJSON(t, router, http.MethodPost, "/api/demo-resto/admin/menu-items/"+item.ID+"/modifiers/"+mod.ID+"/options", map[string]interface{}{
		"name": "Hot", "priceDelta": 2000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/demo-resto/admin/menu-items?categoryId="+cat.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Len(t, items[0].Modifiers, 1)
	assert.Len(t, items[0].Modifiers[0].Options, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/demo-resto/menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var menu models.PublicMenu
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
	require.Len(t, menu.Categories, 1)
	assert.Equal(t, "Nasi Goreng", menu.Categories[0].Items[0].Name)

	rec = doJSON(t, router, http.MethodDelete, "/api/demo-resto/admin/menu-items/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/demo-resto/admin/menu-items/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(env)

	rec := doJSON(t, router, http.MethodPost, "/api/demo-resto/admin/menu-items", map[string]interface{}{"name": "Nasi"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeValidation, body.Code)
	assert.Len(t, body.Fields, 2)

	rec = doJSON(t, router, http.MethodPost, "/api/demo-resto/admin/categories", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// amounts that do not fit the money range are rejected while decoding
	c := env.category(t, "Makanan")
	rec = doJSON(t, router, http.MethodPost, "/api/demo-resto/admin/menu-items", map[string]interface{}{
		"categoryId": c.ID,
		"name":       "Nasi",
		"basePrice":  json.Number("100000000000000000000000"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	items, err := env.service.ListItems(context.Background(), env.tenant.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHandler_UnknownTenant(t *testing.T) {
	env := newTestEnv(t)
	rec := doJSON(t, newTestRouter(env), http.MethodGet, "/api/nobody/menu", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
