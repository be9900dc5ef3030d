package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/domain"
)

// RateLimiter throttles the API by client address ahead of authentication and
// by staff user after it. Requests from exempt addresses skip both limits.
type RateLimiter struct {
	enabled   bool
	exempt    map[string]struct{}
	logger    *zap.Logger
	perClient func(http.Handler) http.Handler
	perUser   func(http.Handler) http.Handler
}

// NewRateLimiter builds both limiters from cfg
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		enabled: cfg.Enabled,
		exempt:  make(map[string]struct{}, len(cfg.ExemptIPs)),
		logger:  logger,
	}
	for _, ip := range cfg.ExemptIPs {
		// same canonical form as the limiter keys
		key, _ := httprate.KeyByIP(&http.Request{RemoteAddr: ip})
		rl.exempt[key] = struct{}{}
	}

	rl.perClient = httprate.Limit(cfg.RequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rl.tooManyRequests))
	rl.perUser = httprate.Limit(cfg.RequestsPerMinuteAuth, time.Minute,
		httprate.WithKeyFuncs(userKey),
		httprate.WithLimitHandler(rl.tooManyRequests))

	if cfg.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("per_client_per_minute", cfg.RequestsPerMinute),
			zap.Int("per_user_per_minute", cfg.RequestsPerMinuteAuth),
			zap.Strings("exempt_ips", cfg.ExemptIPs))
	}
	return rl
}

// PerClient limits requests by client address
func (rl *RateLimiter) PerClient(next http.Handler) http.Handler {
	return rl.guard(rl.perClient, next)
}

// PerUser limits requests by authenticated user. Anonymous requests count
// against their client address.
func (rl *RateLimiter) PerUser(next http.Handler) http.Handler {
	return rl.guard(rl.perUser, next)
}

func (rl *RateLimiter) guard(limit func(http.Handler) http.Handler, next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	limited := limit(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _ := httprate.KeyByRealIP(r)
		if _, ok := rl.exempt[ip]; ok {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func userKey(r *http.Request) (string, error) {
	if user, ok := auth.FromContext(r.Context()); ok && user != nil {
		return "user:" + user.UserID, nil
	}
	ip, err := httprate.KeyByRealIP(r)
	return "ip:" + ip, err
}

func (rl *RateLimiter) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	ip, _ := httprate.KeyByRealIP(r)
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", ip),
	}
	if user, ok := auth.FromContext(r.Context()); ok && user != nil {
		fields = append(fields, zap.String("user_id", user.UserID))
	}
	rl.logger.Warn("rate limit exceeded", fields...)

	w.Header().Set("Retry-After", "60")
	writeProblem(w, &domain.APIError{
		Type:   domain.ErrorTypeRateLimited,
		Title:  "Too Many Requests",
		Status: http.StatusTooManyRequests,
		Detail: "rate limit exceeded, retry in a minute",
	})
}

func writeProblem(w http.ResponseWriter, problem *domain.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}
