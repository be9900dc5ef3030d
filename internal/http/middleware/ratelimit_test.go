package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/http/middleware"
)

func hit(h http.Handler, path, ip string) *httptest.ResponseRecorder {
	return hitAs(h, path, ip, "")
}

func hitAs(h http.Handler, path, ip, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":40000"
	if userID != "" {
		req = req.WithContext(auth.WithUserContext(context.Background(), &auth.UserContext{UserID: userID}))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 10,
	}, zap.NewNop())
	h := rl.PerClient(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/quotes", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/quotes", "10.0.0.1").Code)

	w := hit(h, "/api/v1/quotes", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"type":"rate_limited"`)
	assert.Contains(t, w.Body.String(), `"status":429`)

	// other clients are counted separately
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/quotes", "10.0.0.2").Code)
}

func TestRateLimiter_PerUser(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     100,
		RequestsPerMinuteAuth: 1,
	}, zap.NewNop())
	h := rl.PerUser(okHandler())

	// one user is limited across addresses
	assert.Equal(t, http.StatusOK, hitAs(h, "/api/v1/orders", "10.0.0.1", "marta").Code)
	assert.Equal(t, http.StatusTooManyRequests, hitAs(h, "/api/v1/orders", "10.0.0.2", "marta").Code)

	// a colleague behind the same address has their own budget
	assert.Equal(t, http.StatusOK, hitAs(h, "/api/v1/orders", "10.0.0.1", "pablo").Code)

	// anonymous requests fall back to the client address
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/orders", "10.0.0.3").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/v1/orders", "10.0.0.3").Code)
}

func TestRateLimiter_ExemptIPs(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     1,
		RequestsPerMinuteAuth: 1,
		ExemptIPs:             []string{"192.168.1.10", "203.0.113.7"},
	}, zap.NewNop())
	client := rl.PerClient(okHandler())
	user := rl.PerUser(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(client, "/api/v1/orders", "192.168.1.10").Code)
		assert.Equal(t, http.StatusOK, hitAs(user, "/api/v1/orders", "192.168.1.10", "marta").Code)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		client.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "forwarded address is exempt")
	}

	assert.Equal(t, http.StatusOK, hit(client, "/api/v1/orders", "10.0.0.5").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(client, "/api/v1/orders", "10.0.0.5").Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               false,
		RequestsPerMinute:     1,
		RequestsPerMinuteAuth: 1,
	}, zap.NewNop())

	for _, h := range []http.Handler{rl.PerClient(okHandler()), rl.PerUser(okHandler())} {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, hit(h, "/api/v1/clients", "10.0.0.9").Code)
		}
	}
}
