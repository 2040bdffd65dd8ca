package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Victor-armando18/service-policy/internal/domain"
)

func TestHTTPSubmissionTransport_Submit(t *testing.T) {
	payload := domain.ExternalPayload{
		NumeroPoliza: "4512398",
		Asegurado:    "Juan Pérez",
		Moneda:       "PES",
		FormaPago:    "Tarjeta Cred.",
		Total:        120000,
		Cuotas:       6,
	}

	t.Run("entrega o payload e lê o id criado", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/polizas", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var got map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "4512398", got["nro_poliza"])
			assert.Equal(t, "Tarjeta Cred.", got["forma_pago"])
			assert.EqualValues(t, 6, got["cant_cuotas"])

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": "POL-2026-000991", "message": "creada"}`))
		}))
		defer server.Close()

		transport := NewHTTPSubmissionTransport(server.URL, 5*time.Second)
		result, err := transport.Submit(context.Background(), payload)

		assert.NoError(t, err)
		assert.Equal(t, "POL-2026-000991", result.ID)
	})

	t.Run("rejeição volta como erro com o detalhe do backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`póliza duplicada`))
		}))
		defer server.Close()

		transport := NewHTTPSubmissionTransport(server.URL, 5*time.Second)
		_, err := transport.Submit(context.Background(), payload)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "422")
		assert.Contains(t, err.Error(), "póliza duplicada")
	})

	t.Run("corpo vazio no sucesso é tolerado", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		transport := NewHTTPSubmissionTransport(server.URL, 5*time.Second)
		result, err := transport.Submit(context.Background(), payload)

		assert.NoError(t, err)
		assert.Empty(t, result.ID)
	})

	t.Run("backend inacessível devolve erro de transporte", func(t *testing.T) {
		transport := NewHTTPSubmissionTransport("http://127.0.0.1:1", time.Second)
		_, err := transport.Submit(context.Background(), payload)
		assert.Error(t, err)
	})
}
