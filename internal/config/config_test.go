package config

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/secrets"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, int64(25<<20), cfg.Storage.MaxUploadBytes())
	assert.Equal(t, 15, cfg.Pricing.QuoteValidityDays)
	assert.Equal(t, 5, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, []string{"Location", "X-Request-ID"}, cfg.CORS.ExposedHeaders)

	rate, err := cfg.Pricing.TaxRate()
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.21")))
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("PRICING_DEFAULTTAXRATE", "0.105")
	t.Setenv("ADMIN_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "0.105", cfg.Pricing.DefaultTaxRate)
	assert.Equal(t, "from-env", cfg.Auth.APIKey)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestPricingConfig_TaxRate(t *testing.T) {
	tests := []struct {
		rate    string
		wantErr bool
	}{
		{"0.21", false},
		{"0", false},
		{"1", false},
		{"-0.1", true},
		{"1.5", true},
		{"veintiuno", true},
	}

	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			p := PricingConfig{DefaultTaxRate: tt.rate}
			_, err := p.TaxRate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			Storage:  StorageConfig{Mode: "s3"},
			Pricing:  PricingConfig{DefaultTaxRate: "0.21"},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Storage.Mode = "ftp"
	assert.ErrorContains(t, cfg.Validate(), "unsupported storage mode")

	cfg = valid()
	cfg.Mail.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "mail.host")

	cfg.Mail.Host = "smtp.bandera.com.ar"
	cfg.Mail.From = "presupuestos@bandera.com.ar"
	assert.NoError(t, cfg.Validate())
}

type mapGetter map[string]string

func (m mapGetter) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestApplySecrets(t *testing.T) {
	for _, b := range SecretBindings(&Config{}) {
		t.Setenv(b.EnvName, "")
	}
	t.Setenv("MAIL_PASSWORD", "from-env")

	cfg := &Config{Database: DatabaseConfig{Host: "localhost", Password: "configured"}}
	provider := secrets.NewProviderWithGetter(mapGetter{
		"POSTGRES-MAIN-PASSWORD": "vault-password",
		"jwt-secret":             "vault-jwt",
		"smtp-password":          "vault-smtp",
	}, zap.NewNop())

	ApplySecrets(context.Background(), cfg, provider, zap.NewNop())

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "vault-password", cfg.Database.Password)
	assert.Equal(t, "vault-jwt", cfg.Auth.JWTSecret)
	assert.Equal(t, "from-env", cfg.Mail.Password)
}
