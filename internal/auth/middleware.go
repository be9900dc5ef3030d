package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/config"
	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/logger"
)

// UserRecorder keeps the users table in sync with authenticated callers
type UserRecorder interface {
	TouchLogin(ctx context.Context, user *domain.User, at time.Time) error
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	apiKey       string
	disabled     bool
	users        UserRecorder
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware. users may be nil.
func NewMiddleware(cfg *config.AuthConfig, users UserRecorder, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(cfg.JWTSecret, cfg.Issuer),
		apiKey:       cfg.APIKey,
		disabled:     cfg.Disabled,
		users:        users,
		logger:       logger,
	}
}

// Authenticate accepts either an x-api-key header or a Bearer token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			dev := &UserContext{UserID: "dev", DisplayName: "Developer", Email: "dev@bandera.local", Role: domain.UserRoleAdmin}
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), dev)))
			return
		}

		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if !m.validateAPIKey(apiKey) {
				m.logger.Warn("invalid API key attempt",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			system := SystemUser
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), &system)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.jwtValidator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		m.recordLogin(r.Context(), userCtx)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireAdmin rejects callers without the admin role
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no user context", http.StatusForbidden)
			return
		}
		if !userCtx.IsAdmin() {
			http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) recordLogin(ctx context.Context, u *UserContext) {
	if m.users == nil {
		return
	}
	user := &domain.User{ID: u.UserID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
	if err := m.users.TouchLogin(ctx, user, time.Now().UTC()); err != nil {
		logger.WithUser(m.logger, u.UserID, u.DisplayName).Warn("failed to record user login", zap.Error(err))
		return
	}
	// the stored role wins over the token claim
	u.Role = user.Role
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}
