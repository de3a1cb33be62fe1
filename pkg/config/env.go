package config

import "time"

const EnvPrefix = "STOREFRONT"

const (
	DefaultSessionCookie = "sessionId"
	DefaultSessionTTL    = 30 * 24 * time.Hour
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv             = "STOREFRONT_APP_ENV"
	EnvPort               = "STOREFRONT_APP_PORT"
	EnvBackendURL         = "STOREFRONT_BACKEND_URL"
	EnvBackendTimeout     = "STOREFRONT_BACKEND_TIMEOUT"
	EnvSessionCookie      = "STOREFRONT_SESSION_COOKIE"
	EnvSessionTTL         = "STOREFRONT_SESSION_TTL"
	EnvSessionAuthTTL     = "STOREFRONT_SESSION_AUTH_TTL"
	EnvRedisURL           = "STOREFRONT_REDIS_URL"
	EnvCartIdleTTL        = "STOREFRONT_CART_IDLE_TTL"
	EnvMockGateway        = "STOREFRONT_MOCK_GATEWAY_ENABLED"
	EnvMockPaySuccessRate = "STOREFRONT_MOCKPAY_SUCCESS_RATE"
	EnvMockPayDelay       = "STOREFRONT_MOCKPAY_DELAY"
	EnvMockPaySeed        = "STOREFRONT_MOCKPAY_SEED"
)
