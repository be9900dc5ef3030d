package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/http/middleware"
)

func corsRequest(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS_ExplicitOrigins(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"https://admin.bandera.com.ar"},
		AllowedMethods: []string{"GET", "POST"},
		ExposedHeaders: []string{"X-Request-ID"},
	}
	h := middleware.CORS(cfg, "production", zap.NewNop())(okHandler())

	w := corsRequest(h, "https://admin.bandera.com.ar")
	assert.Equal(t, "https://admin.bandera.com.ar", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.EqualFold("X-Request-ID", w.Header().Get("Access-Control-Expose-Headers")))

	w = corsRequest(h, "https://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOrigins(t *testing.T) {
	cfg := &config.CORSConfig{AllowedMethods: []string{"GET"}}

	dev := middleware.CORS(cfg, "development", zap.NewNop())(okHandler())
	assert.Equal(t, "http://localhost:5173", corsRequest(dev, "http://localhost:5173").Header().Get("Access-Control-Allow-Origin"))

	prod := middleware.CORS(cfg, "production", zap.NewNop())(okHandler())
	assert.Empty(t, corsRequest(prod, "http://localhost:5173").Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}
	h := middleware.CORS(cfg, "development", zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "PUT", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "300", w.Header().Get("Access-Control-Max-Age"))
}
