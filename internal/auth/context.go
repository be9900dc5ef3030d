package auth

import (
	"context"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Role        domain.UserRole
	// System is set for API key callers
	System bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// SystemUser is the identity attached to API key requests
var SystemUser = UserContext{
	UserID:      "system",
	DisplayName: "System",
	Email:       "system@bandera.local",
	Role:        domain.UserRoleAdmin,
	System:      true,
}

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// IsAdmin reports whether the user may run administrative operations
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.UserRoleAdmin
}

// ActorName returns the display name of the caller, or "" when unauthenticated
func ActorName(ctx context.Context) string {
	if u, ok := FromContext(ctx); ok {
		return u.DisplayName
	}
	return ""
}
