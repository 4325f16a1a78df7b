package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normativa/internal/condo"
	id "normativa/pkg/domain"
	"normativa/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter() (http.Handler, *condo.Service) {
	svc := condo.New(condo.NewInMemory())
	r := chi.NewRouter()
	New(svc, testLogger()).Register(r)
	return r, svc
}

func TestHandleCreate(t *testing.T) {
	t.Run("creates and returns the condo", func(t *testing.T) {
		router, _ := newRouter()

		req := testutil.NewJSONRequest(t, http.MethodPost, "/condos", map[string]string{
			"name":        "Edificio Mirador",
			"admin_email": "admin@mirador.cl",
		})
		req = testutil.WithTime(req, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body map[string]any
		testutil.DecodeJSON(t, rec, &body)
		assert.Equal(t, "Edificio Mirador", body["name"])
		assert.Equal(t, "admin@mirador.cl", body["admin_email"])
		assert.NotEmpty(t, body["id"])
	})

	t.Run("missing name is 400", func(t *testing.T) {
		router, _ := newRouter()

		req := testutil.NewJSONRequest(t, http.MethodPost, "/condos", map[string]string{
			"admin_email": "admin@mirador.cl",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate name is 409", func(t *testing.T) {
		router, _ := newRouter()

		payload := map[string]string{"name": "Torre Norte", "admin_email": "admin@torre.cl"}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/condos", payload))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, "/condos", payload))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed JSON is 400", func(t *testing.T) {
		router, _ := newRouter()

		req := httptest.NewRequest(http.MethodPost, "/condos", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGet(t *testing.T) {
	router, svc := newRouter()

	created, err := svc.Create(context.Background(), "Edificio Central", "admin@central.cl")
	require.NoError(t, err)

	t.Run("existing condo", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodGet, "/condos/"+created.ID.String(), nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		testutil.DecodeJSON(t, rec, &body)
		assert.Equal(t, "Edificio Central", body["name"])
	})

	t.Run("unknown condo is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodGet, "/condos/"+id.NewCondoID().String(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodGet, "/condos/nope", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleList(t *testing.T) {
	router, svc := newRouter()
	ctx := context.Background()
	for _, name := range []string{"Beta", "Alfa"} {
		_, err := svc.Create(ctx, name, "admin@example.cl")
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodGet, "/condos", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	testutil.DecodeJSON(t, rec, &body)
	require.Len(t, body, 2)
	assert.Equal(t, "Alfa", body[0]["name"])
}
