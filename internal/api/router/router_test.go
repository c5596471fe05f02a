package router

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terravista/whatsapp-concierge/internal/dashboard"
	"github.com/terravista/whatsapp-concierge/internal/http/handlers"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

func TestRouterRoutes(t *testing.T) {
	logger := logging.Default()
	r := New(&Config{
		Logger:          logger,
		Health:          handlers.NewHealthHandler(false, false, false),
		Dashboard:       dashboard.NewHandler(dashboard.NewMemoryStore(), logger),
		DashboardAssets: dashboard.Assets(),
	})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("conversations", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/conversations", nil))
		assert.Equal(t, 200, w.Code)
	})

	t.Run("dashboard page", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard/", nil))
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Body.String(), "app.js")
	})

	t.Run("dashboard redirect", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard", nil))
		assert.Equal(t, 301, w.Code)
		assert.Equal(t, "/dashboard/", w.Header().Get("Location"))
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
		assert.Equal(t, 404, w.Code)
	})

	t.Run("unconfigured handlers are absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/api/send-message", nil))
		assert.Equal(t, 404, w.Code)
	})
}
