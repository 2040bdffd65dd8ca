package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Victor-armando18/service-policy/internal/domain"
)

func TestHTTPCatalogBackend_FetchCatalog(t *testing.T) {
	t.Run("decodifica as entradas do backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/catalogos/combustibles", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id": "1", "displayName": "Nafta", "code": "NAF"},
				{"id": "2", "displayName": "Diesel", "code": "DIS", "description": "Gasoil común"}
			]`))
		}))
		defer server.Close()

		backend := NewHTTPCatalogBackend(server.URL, 5*time.Second)
		entries, err := backend.FetchCatalog(context.Background(), domain.CatalogFuelType)

		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		// O code, quando presente, é o identificador canónico.
		assert.Equal(t, "NAF", entries[0].ID)
		assert.Equal(t, "Nafta", entries[0].DisplayName)
		assert.Equal(t, "Gasoil común", entries[1].Description)
	})

	t.Run("sem code usa o id da entrada", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id": "PES", "displayName": "Pesos"}]`))
		}))
		defer server.Close()

		backend := NewHTTPCatalogBackend(server.URL, 5*time.Second)
		entries, err := backend.FetchCatalog(context.Background(), domain.CatalogCurrency)

		assert.NoError(t, err)
		assert.Equal(t, "PES", entries[0].ID)
	})

	t.Run("status não-200 devolve erro de catálogo", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		backend := NewHTTPCatalogBackend(server.URL, 5*time.Second)
		_, err := backend.FetchCatalog(context.Background(), domain.CatalogCategory)
		assert.ErrorIs(t, err, domain.ErrCatalogLoad)
	})

	t.Run("resposta ilegível devolve erro de catálogo", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>mantenimiento</html>`))
		}))
		defer server.Close()

		backend := NewHTTPCatalogBackend(server.URL, 5*time.Second)
		_, err := backend.FetchCatalog(context.Background(), domain.CatalogCategory)
		assert.ErrorIs(t, err, domain.ErrCatalogLoad)
	})
}

func TestHTTPCatalogBackend_FetchTariffs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companias/COMP-12/tarifas", r.URL.Path)
		w.Write([]byte(`[{"id": "T100", "displayName": "Tarifa general"}]`))
	}))
	defer server.Close()

	backend := NewHTTPCatalogBackend(server.URL, 5*time.Second)
	entries, err := backend.FetchTariffs(context.Background(), "COMP-12")

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "T100", entries[0].ID)
}
