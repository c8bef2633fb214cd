package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/validator"
)

// Storage drivers for the cart slot.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// HTTP server
	HTTPPort           int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8080" validate:"gte=1,lte=65535"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string      `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// Catalog
	CatalogURL             string        `env:"CATALOG_URL" envDefault:"https://fakestoreapi.com/products" validate:"required,url"`
	CatalogTimeout         time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	CatalogMaxRetries      int           `env:"CATALOG_MAX_RETRIES" envDefault:"0" validate:"gte=0"`
	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"0s" validate:"gte=0"`

	// Cart slot
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"redis" validate:"oneof=redis memory"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass     string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	CartSlot      string `env:"CART_SLOT" envDefault:"cart" validate:"required"`

	// Cart TTL in hours (0: never expires)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"0" validate:"gte=0"`

	ShippingSurcharge decimal.Decimal `env:"SHIPPING_SURCHARGE" envDefault:"30"`

	// Kafka (empty: events disabled)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeTimeoutMargin leaves the request timeout room to send its 504.
const writeTimeoutMargin = 5 * time.Second

// HTTPWriteTimeout is the server write deadline. It always outlasts the
// per-request timeout.
func (c *Config) HTTPWriteTimeout() time.Duration {
	return c.HTTPRequestTimeout + writeTimeoutMargin
}

// CartTTLDuration is the Redis expiry of the cart slot.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// KafkaEnabled reports whether cart events are published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.ShippingSurcharge.IsNegative() {
		return fmt.Errorf("invalid shipping surcharge: %s", c.ShippingSurcharge)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("invalid OTEL sample rate: %v (must be between 0 and 1)", c.OTELSampleRate)
	}
	return nil
}
