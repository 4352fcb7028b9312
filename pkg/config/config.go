package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DocStore DocStoreConfig
	GCP      GCPConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	Payment  PaymentConfig
	Cart     CartConfig
	Orders   OrdersConfig
	Cron     CronConfig
	Webhook  WebhookConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// PORT sits outside the STOREFRONT namespace, so envconfig never sees it.
	if port, ok := os.LookupEnv(EnvPlatformPort); ok {
		cfg.App.PlatformPort = port
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !c.DocStore.UseMemory() && strings.TrimSpace(c.GCP.ProjectID) == "" {
		return fmt.Errorf("%s is required when %s=%s", EnvGCPProjectID, EnvDocStoreDriver, DocStoreFirestore)
	}
	if c.Payment.UseStripe() && strings.TrimSpace(c.Stripe.APIKey) == "" {
		return fmt.Errorf("%s is required when %s=%s", EnvStripeAPIKey, EnvPaymentAdapter, PaymentAdapterStripe)
	}
	if c.Cart.MaxItems <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartMaxItems)
	}
	return nil
}

type AppConfig struct {
	Env          string   `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string   `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
	// PlatformPort is the PORT injected by the hosting platform.
	PlatformPort string `ignored:"true"`
}

// ListenAddr prefers the platform assigned port over the configured one.
func (a AppConfig) ListenAddr() string {
	if port := strings.TrimSpace(a.PlatformPort); port != "" {
		return ":" + port
	}
	return ":" + a.Port
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STOREFRONT_SERVICE_KIND" default:"api"`
}

type DocStoreConfig struct {
	Driver string `envconfig:"STOREFRONT_DOCSTORE_DRIVER" default:"firestore"`
}

// UseMemory reports whether the in-process store replaces Firestore.
func (d DocStoreConfig) UseMemory() bool {
	return strings.EqualFold(strings.TrimSpace(d.Driver), DocStoreMemory)
}

type GCPConfig struct {
	ProjectID       string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
	CredentialsFile string `envconfig:"STOREFRONT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type AuthConfig struct {
	Mode string `envconfig:"STOREFRONT_AUTH_MODE" default:"firebase"`
	// AdminEmail pins privileged-user management to one admin account.
	AdminEmail string `envconfig:"STOREFRONT_AUTH_ADMIN_EMAIL"`
}

func (a AuthConfig) UseMock() bool {
	return strings.EqualFold(strings.TrimSpace(a.Mode), AuthModeMock)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"STOREFRONT_STRIPE_API_KEY"`
	Secret string `envconfig:"STOREFRONT_STRIPE_SECRET"`
	Env    string `envconfig:"STOREFRONT_STRIPE_ENV" default:"test"`
	// WebhookTolerance bounds the age of a signed webhook timestamp.
	WebhookTolerance time.Duration `envconfig:"STOREFRONT_STRIPE_WEBHOOK_TOLERANCE" default:"5m"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type PaymentConfig struct {
	Adapter         string        `envconfig:"STOREFRONT_PAYMENT_ADAPTER" default:"mock"`
	Currency        string        `envconfig:"STOREFRONT_PAYMENT_CURRENCY" default:"jpy"`
	RateLimitWindow time.Duration `envconfig:"STOREFRONT_PAYMENT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimit       int           `envconfig:"STOREFRONT_PAYMENT_RATE_LIMIT" default:"10"`
	BreakerFailures uint32        `envconfig:"STOREFRONT_PAYMENT_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"STOREFRONT_PAYMENT_BREAKER_TIMEOUT" default:"30s"`
}

// UseStripe reports whether checkout goes through the live Stripe adapter.
func (p PaymentConfig) UseStripe() bool {
	return strings.EqualFold(strings.TrimSpace(p.Adapter), PaymentAdapterStripe)
}

type CartConfig struct {
	MaxItems int `envconfig:"STOREFRONT_CART_MAX_ITEMS" default:"50"`
}

type OrdersConfig struct {
	ExpiryWindow     time.Duration `envconfig:"STOREFRONT_ORDERS_EXPIRY_WINDOW" default:"24h"`
	RestoreBatchSize int           `envconfig:"STOREFRONT_ORDERS_RESTORE_BATCH_SIZE" default:"50"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"STOREFRONT_CRON_INTERVAL" default:"24h"`
	LockTTL     time.Duration `envconfig:"STOREFRONT_CRON_LOCK_TTL" default:"1h"`
	JobTimeout  time.Duration `envconfig:"STOREFRONT_CRON_JOB_TIMEOUT" default:"30m"`
	MetricsAddr string        `envconfig:"STOREFRONT_CRON_METRICS_ADDR"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"STOREFRONT_WEBHOOK_IDEMPOTENCY_TTL" default:"24h"`
}
