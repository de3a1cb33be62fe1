package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Session  SessionConfig
	Redis    RedisConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	MockPay  MockPayConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	PublicURL    string `envconfig:"STOREFRONT_PUBLIC_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the storefront frontends allowed to call the API with credentials.
	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points the storefront at the remote commerce REST API.
type BackendConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_BACKEND_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_BACKEND_TIMEOUT" default:"10s"`
}

// SessionConfig controls the anonymous shopper cookie.
type SessionConfig struct {
	CookieName string        `envconfig:"STOREFRONT_SESSION_COOKIE" default:"sessionId"`
	TTL        time.Duration `envconfig:"STOREFRONT_SESSION_TTL" default:"720h"`
	// AuthTTL bounds how long a signed-in shopper's bearer token is remembered server-side.
	AuthTTL time.Duration `envconfig:"STOREFRONT_SESSION_AUTH_TTL" default:"24h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig tunes the in-process registry of per-shopper cart stores.
type CartConfig struct {
	IdleTTL       time.Duration `envconfig:"STOREFRONT_CART_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"STOREFRONT_CART_SWEEP_INTERVAL" default:"1m"`
}

type CheckoutConfig struct {
	MockGatewayEnabled bool   `envconfig:"STOREFRONT_MOCK_GATEWAY_ENABLED" default:"false"`
	SupportEmail       string `envconfig:"STOREFRONT_SUPPORT_EMAIL" default:"care@maison.example"`
}

// MockPayConfig parameterizes the development payment simulator.
type MockPayConfig struct {
	SuccessRate float64       `envconfig:"STOREFRONT_MOCKPAY_SUCCESS_RATE" default:"0.8"`
	Delay       time.Duration `envconfig:"STOREFRONT_MOCKPAY_DELAY" default:"2s"`
	Seed        uint64        `envconfig:"STOREFRONT_MOCKPAY_SEED" default:"0"`
}

func (c *Config) validate() error {
	if c.MockPay.SuccessRate < 0 || c.MockPay.SuccessRate > 1 {
		return fmt.Errorf("%s must be between 0 and 1", EnvMockPaySuccessRate)
	}
	if c.MockPay.Delay < 0 {
		return fmt.Errorf("%s must not be negative", EnvMockPayDelay)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvSessionTTL)
	}
	if c.Session.AuthTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvSessionAuthTTL)
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return fmt.Errorf("%s must not be blank", EnvSessionCookie)
	}
	return nil
}
