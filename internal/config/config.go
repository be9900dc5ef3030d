package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	Pricing   PricingConfig
	Inventory InventoryConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	AutoMigrate     bool
}

// AuthConfig covers bearer token validation and the system API key.
// Login flows live outside this service; it only verifies tokens.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	APIKey    string
	// Disabled lets every request through as the development user
	Disabled bool
}

type StorageConfig struct {
	// Mode is "local", "azure" or "s3"
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	S3Endpoint            string
	S3AccessKey           string
	S3SecretKey           string
	S3Bucket              string
	S3UseSSL              bool
	MaxUploadSizeMB       int64
	ThumbnailSize         uint
}

type SecretsConfig struct {
	// Source is "environment", "vault" or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
	EnableMetrics  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds the per-client and per-user request budgets of /api/v1
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	// ExemptIPs skip both limits, typically the shop's own network
	ExemptIPs []string
}

// MailConfig is the SMTP account used to send quotes to clients
type MailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// PricingConfig holds commercial defaults applied to new quotes
type PricingConfig struct {
	// DefaultTaxRate is a fraction, 0.21 for 21% IVA
	DefaultTaxRate    string
	QuoteValidityDays int
}

type InventoryConfig struct {
	LowStockThreshold int
}

// JobsConfig holds cron expressions for background jobs
type JobsConfig struct {
	Enabled          bool
	OverdueOrderCron string
	ExpiredQuoteCron string
	Timeout          int
}

// ConnectionString builds the PostgreSQL DSN
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TimeoutDuration returns the per-run job timeout
func (j *JobsConfig) TimeoutDuration() time.Duration {
	return time.Duration(j.Timeout) * time.Second
}

// TaxRate parses DefaultTaxRate as a fraction
func (p *PricingConfig) TaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(p.DefaultTaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid pricing.defaultTaxRate %q: %w", p.DefaultTaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("pricing.defaultTaxRate must be between 0 and 1, got %s", p.DefaultTaxRate)
	}
	return rate, nil
}

// MaxUploadBytes returns the upload limit in bytes
func (s *StorageConfig) MaxUploadBytes() int64 {
	return s.MaxUploadSizeMB << 20
}

// Load reads defaults, an optional config.json and environment variables.
// Secrets are not fetched from the vault here; use LoadWithSecrets for that.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.APIKey == "" {
		cfg.Auth.APIKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Mode {
	case "local", "azure", "s3":
	default:
		return fmt.Errorf("unsupported storage mode %q", c.Storage.Mode)
	}
	if _, err := c.Pricing.TaxRate(); err != nil {
		return err
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		return fmt.Errorf("mail.host and mail.from are required when mail is enabled")
	}
	return nil
}

// LoadWithSecrets loads configuration and, when USE_AZURE_KEY_VAULT=true in
// staging or production, overlays credentials from Azure Key Vault.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isVaultEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault || !isVaultEnv {
		logger.Info("Using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	ApplySecrets(ctx, cfg, provider, logger)
	return cfg, nil
}

// ApplySecrets overlays every secret-backed field using the given provider
func ApplySecrets(ctx context.Context, cfg *Config, provider *secrets.Provider, logger *zap.Logger) {
	n := provider.Apply(ctx, SecretBindings(cfg))
	logger.Info("Secrets loaded", zap.Int("resolved", n), zap.String("source", string(provider.Source())))
}

// SecretBindings lists the config fields that may come from the vault
func SecretBindings(cfg *Config) []secrets.Binding {
	return []secrets.Binding{
		{VaultName: "POSTGRES-MAIN-HOST", EnvName: "DATABASE_HOST", Target: &cfg.Database.Host},
		{VaultName: "POSTGRES-MAIN-USER", EnvName: "DATABASE_USER", Target: &cfg.Database.User},
		{VaultName: "POSTGRES-MAIN-PASSWORD", EnvName: "DATABASE_PASSWORD", Target: &cfg.Database.Password},
		{VaultName: "jwt-secret", EnvName: "AUTH_JWTSECRET", Target: &cfg.Auth.JWTSecret},
		{VaultName: "admin-api-key", EnvName: "ADMIN_API_KEY", Target: &cfg.Auth.APIKey},
		{VaultName: "smtp-password", EnvName: "MAIL_PASSWORD", Target: &cfg.Mail.Password},
		{VaultName: "storage-connection-string", EnvName: "STORAGE_CLOUDCONNECTIONSTRING", Target: &cfg.Storage.CloudConnectionString},
		{VaultName: "s3-secret-key", EnvName: "STORAGE_S3SECRETKEY", Target: &cfg.Storage.S3SecretKey},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Bandera Back Office API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "backoffice")
	v.SetDefault("database.user", "backoffice")
	v.SetDefault("database.password", "backoffice")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "./backoffice.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	v.SetDefault("auth.issuer", "bandera-backoffice")
	v.SetDefault("auth.disabled", false)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "files")
	v.SetDefault("storage.s3Bucket", "backoffice")
	v.SetDefault("storage.s3UseSSL", true)
	v.SetDefault("storage.maxUploadSizeMB", 25)
	v.SetDefault("storage.thumbnailSize", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)
	v.SetDefault("server.enableMetrics", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 600)
	v.SetDefault("rateLimit.exemptIPs", []string{"127.0.0.1", "::1"})

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.fromName", "Bandera")

	v.SetDefault("pricing.defaultTaxRate", "0.21")
	v.SetDefault("pricing.quoteValidityDays", 15)

	v.SetDefault("inventory.lowStockThreshold", 5)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.overdueOrderCron", "0 8 * * *")
	v.SetDefault("jobs.expiredQuoteCron", "30 8 * * *")
	v.SetDefault("jobs.timeout", 120)
}
