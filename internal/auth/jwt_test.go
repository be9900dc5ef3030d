package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough"

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := auth.NewJWTValidator(testSecret, "bandera")

	token, err := v.IssueToken(auth.UserContext{
		UserID:      "u-1",
		DisplayName: "Marta Gómez",
		Email:       "marta@bandera.com.ar",
		Role:        domain.UserRoleAdmin,
	}, time.Hour)
	require.NoError(t, err)

	user, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "Marta Gómez", user.DisplayName)
	assert.Equal(t, "marta@bandera.com.ar", user.Email)
	assert.True(t, user.IsAdmin())
}

func TestJWTValidator_DefaultsToStaffAndEmailName(t *testing.T) {
	v := auth.NewJWTValidator(testSecret, "")

	token, err := v.IssueToken(auth.UserContext{UserID: "u-2", Email: "caja@bandera.com.ar", Role: "owner"}, time.Hour)
	require.NoError(t, err)

	user, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleStaff, user.Role)
	assert.Equal(t, "caja@bandera.com.ar", user.DisplayName)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v := auth.NewJWTValidator(testSecret, "bandera")

	expired, err := v.IssueToken(auth.UserContext{UserID: "u-1"}, -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := auth.NewJWTValidator(testSecret, "someone-else").IssueToken(auth.UserContext{UserID: "u-1"}, time.Hour)
	require.NoError(t, err)

	otherSecret, err := auth.NewJWTValidator("another-secret-value", "bandera").IssueToken(auth.UserContext{UserID: "u-1"}, time.Hour)
	require.NoError(t, err)

	noSubject, err := v.IssueToken(auth.UserContext{}, time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u-1",
		Issuer:  "bandera",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong issuer", otherIssuer},
		{"wrong secret", otherSecret},
		{"missing subject", noSubject},
		{"missing expiry", noExpiry},
		{"garbage", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestJWTValidator_MissingSecret(t *testing.T) {
	v := auth.NewJWTValidator("", "")

	_, err := v.IssueToken(auth.UserContext{UserID: "u-1"}, time.Hour)
	assert.ErrorIs(t, err, auth.ErrMissingSecret)

	_, err = v.ValidateToken("anything")
	assert.ErrorIs(t, err, auth.ErrMissingSecret)
}
