package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Source defines where secrets are loaded from
type Source string

const (
	// SourceEnvironment reads secrets from environment variables
	SourceEnvironment Source = "environment"
	// SourceVault reads secrets from Azure Key Vault
	SourceVault Source = "vault"
	// SourceAuto picks environment in development and vault elsewhere
	SourceAuto Source = "auto"
)

// ErrSecretNotFound is returned when a secret has no value in the active source
var ErrSecretNotFound = errors.New("secret not found")

// Getter fetches a single named secret
type Getter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Binding connects a vault secret name and an environment override to a config field
type Binding struct {
	VaultName string
	EnvName   string
	Target    *string
}

// Provider resolves secrets from the configured source
type Provider struct {
	source Source
	vault  Getter
	logger *zap.Logger
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       Source
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ResolveSource turns SourceAuto into a concrete source for the given environment
func ResolveSource(source Source, environment string) Source {
	if source != SourceAuto && source != "" {
		return source
	}
	switch environment {
	case "development", "local", "test", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// NewProvider creates a provider, connecting to Key Vault when the source requires it
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)

	p := &Provider{source: source, logger: logger}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		client, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = client
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return p, nil
}

// NewProviderWithGetter builds a vault-backed provider around an existing getter
func NewProviderWithGetter(getter Getter, logger *zap.Logger) *Provider {
	return &Provider{source: SourceVault, vault: getter, logger: logger}
}

// GetSecret retrieves a secret by name from the active source
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := os.Getenv(name)
		if value == "" {
			return "", fmt.Errorf("%w: environment variable %q", ErrSecretNotFound, name)
		}
		return value, nil
	case SourceVault:
		if p.vault == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv prefers an explicitly set environment variable over the active source
func (p *Provider) GetSecretOrEnv(ctx context.Context, name, envName string) (string, error) {
	if v := os.Getenv(envName); v != "" {
		p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
		return v, nil
	}
	return p.GetSecret(ctx, name)
}

// Apply resolves each binding and writes non-empty values into its target.
// Missing secrets leave the target untouched.
func (p *Provider) Apply(ctx context.Context, bindings []Binding) int {
	resolved := 0
	for _, b := range bindings {
		value, err := p.GetSecretOrEnv(ctx, b.VaultName, b.EnvName)
		if err != nil || value == "" {
			p.logger.Debug("Secret not resolved, keeping configured value",
				zap.String("secret_name", b.VaultName),
				zap.Error(err),
			)
			continue
		}
		*b.Target = value
		resolved++
	}
	return resolved
}

// Source returns the active secret source
func (p *Provider) Source() Source {
	return p.source
}

// IsVaultEnabled reports whether secrets come from Key Vault
func (p *Provider) IsVaultEnabled() bool {
	return p.source == SourceVault
}
