package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/internal/platform/metrics"
	request "mintgate/pkg/platform/middleware/request"
)

type pingHandler struct{}

func (pingHandler) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Request-ID", request.GetRequestID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newTestRouter(checks map[string]HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	return NewRouter(Options{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:        metrics.NewWithRegisterer(reg),
		Handlers:       []Registrar{pingHandler{}},
		Checks:         checks,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter(t *testing.T) {
	t.Run("mounts module handlers behind the request id middleware", func(t *testing.T) {
		w := serve(newTestRouter(nil), http.MethodGet, "/ping")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Seen-Request-ID"))
	})

	t.Run("recovers from panics", func(t *testing.T) {
		w := serve(newTestRouter(nil), http.MethodGet, "/boom")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("exposes request metrics", func(t *testing.T) {
		router := newTestRouter(nil)
		serve(router, http.MethodGet, "/ping")
		w := serve(router, http.MethodGet, "/metrics")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `route="/ping"`)
	})

	t.Run("unknown routes are 404", func(t *testing.T) {
		w := serve(newTestRouter(nil), http.MethodGet, "/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealth(t *testing.T) {
	t.Run("ok without checks", func(t *testing.T) {
		w := serve(newTestRouter(nil), http.MethodGet, "/health")
		require.Equal(t, http.StatusOK, w.Code)

		var body healthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Empty(t, body.Components)
	})

	t.Run("a failing component degrades the service", func(t *testing.T) {
		w := serve(newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}), http.MethodGet, "/health")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body healthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "ok", body.Components["postgres"])
		assert.Equal(t, "connection refused", body.Components["redis"])
	})
}
