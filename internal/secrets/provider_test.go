package secrets_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/secrets"
)

type staticGetter map[string]string

func (s staticGetter) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := s[name]; ok {
		return v, nil
	}
	return "", secrets.ErrSecretNotFound
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source      secrets.Source
		environment string
		expected    secrets.Source
	}{
		{secrets.SourceAuto, "development", secrets.SourceEnvironment},
		{secrets.SourceAuto, "", secrets.SourceEnvironment},
		{secrets.SourceAuto, "production", secrets.SourceVault},
		{"", "staging", secrets.SourceVault},
		{secrets.SourceEnvironment, "production", secrets.SourceEnvironment},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, secrets.ResolveSource(tt.source, tt.environment), "%s/%s", tt.source, tt.environment)
	}
}

func TestProvider_Environment(t *testing.T) {
	p, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceAuto, Environment: "development"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsVaultEnabled())

	t.Setenv("BANDERA_TEST_SECRET", "shh")
	v, err := p.GetSecret(context.Background(), "BANDERA_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "shh", v)

	_, err = p.GetSecret(context.Background(), "BANDERA_TEST_MISSING")
	assert.ErrorIs(t, err, secrets.ErrSecretNotFound)
}

func TestProvider_VaultRequiresName(t *testing.T) {
	_, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceVault, Environment: "production"}, zap.NewNop())
	assert.Error(t, err)
}

func TestProvider_Apply(t *testing.T) {
	t.Setenv("BANDERA_TEST_OVERRIDE", "env-value")
	t.Setenv("BANDERA_TEST_EMPTY", "")

	p := secrets.NewProviderWithGetter(staticGetter{"db-password": "vault-value", "api-key": "vault-key"}, zap.NewNop())

	password, apiKey, untouched := "", "", "keep"
	n := p.Apply(context.Background(), []secrets.Binding{
		{VaultName: "db-password", EnvName: "BANDERA_TEST_EMPTY", Target: &password},
		{VaultName: "api-key", EnvName: "BANDERA_TEST_OVERRIDE", Target: &apiKey},
		{VaultName: "missing", EnvName: "BANDERA_TEST_EMPTY", Target: &untouched},
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, "vault-value", password)
	assert.Equal(t, "env-value", apiKey)
	assert.Equal(t, "keep", untouched)
}
