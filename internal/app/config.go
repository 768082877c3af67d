package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	CatalogPath string `default:"db/catalog.json" usage:"Path to the catalog document" flag:"catalog-path"`
	Pepper      string `usage:"HMAC pepper for password and API key hashing (STORE_PEPPER)"`
	SessionTTL  time.Duration `default:"24h" usage:"Idle session lifetime" flag:"session-ttl"`
	Gateway     GatewayConfig
	Kafka       KafkaConfig
	Reconcile   ReconcileConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// GatewayConfig points at the payment gateway. When KeyID is empty the
// in-memory fake gateway is used instead; local development only.
type GatewayConfig struct {
	BaseURL   string `default:"https://api.razorpay.com" usage:"Payment gateway base URL" flag:"gateway-url"`
	KeyID     string `usage:"Gateway key id (STORE_GATEWAY_KEY_ID)" flag:"gateway-key-id"`
	KeySecret string `usage:"Gateway key secret (STORE_GATEWAY_KEY_SECRET)" flag:"gateway-key-secret"`
}

// KafkaConfig controls order event publishing. With no brokers configured,
// events are logged instead.
type KafkaConfig struct {
	Brokers []string `usage:"Kafka broker addresses" flag:"kafka-brokers"`
	Topic   string   `default:"storefront.orders" usage:"Topic for order events" flag:"kafka-topic"`
}

// ReconcileConfig controls the pending-checkout reconciliation worker.
type ReconcileConfig struct {
	Interval   time.Duration `default:"1m"  usage:"Sweep interval" flag:"reconcile-interval"`
	StaleAfter time.Duration `default:"30m" usage:"Age before a pending checkout is swept" flag:"reconcile-stale-after"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STORE_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Pepper == "" {
		return nil, errors.New("pepper is required: set STORE_PEPPER")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT to the application's STORE_-
// prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
