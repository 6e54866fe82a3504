package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "grocery"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Gateway       GatewayConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Admin         AdminConfig
	AuthRateLimit AuthRateLimitConfig
	LocalStore    LocalStoreConfig
	Cache         CacheConfig
	Redis         RedisConfig
	Payment       PaymentConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Gateway.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GROCERY_APP_ENV" required:"true"`
	Port         string `envconfig:"GROCERY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GROCERY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROCERY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// GatewayConfig locates the remote product/order/auth service. The storefront
// and admin surfaces historically pointed at different base paths, so both are
// configurable; admin falls back to the storefront base when unset.
type GatewayConfig struct {
	BaseURL      string        `envconfig:"GROCERY_GATEWAY_BASE_URL" required:"true"`
	AdminBaseURL string        `envconfig:"GROCERY_GATEWAY_ADMIN_BASE_URL"`
	AuthBaseURL  string        `envconfig:"GROCERY_GATEWAY_AUTH_BASE_URL"`
	Timeout      time.Duration `envconfig:"GROCERY_GATEWAY_TIMEOUT" default:"10s"`
}

func (g *GatewayConfig) normalize() error {
	g.BaseURL = strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	if g.BaseURL == "" {
		return fmt.Errorf("gateway base url is required")
	}
	g.AdminBaseURL = strings.TrimRight(strings.TrimSpace(g.AdminBaseURL), "/")
	if g.AdminBaseURL == "" {
		g.AdminBaseURL = g.BaseURL
	}
	g.AuthBaseURL = strings.TrimRight(strings.TrimSpace(g.AuthBaseURL), "/")
	if g.AuthBaseURL == "" {
		g.AuthBaseURL = g.BaseURL
	}
	return nil
}

type JWTConfig struct {
	Secret            string `envconfig:"GROCERY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GROCERY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GROCERY_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GROCERY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GROCERY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GROCERY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GROCERY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GROCERY_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig holds the locally provisioned admin credential. The hash is the
// encoded argon2id string produced by pkg/security.
type AdminConfig struct {
	Username     string `envconfig:"GROCERY_ADMIN_USERNAME" default:"admin"`
	PasswordHash string `envconfig:"GROCERY_ADMIN_PASSWORD_HASH"`
}

type AuthRateLimitConfig struct {
	LoginWindow   time.Duration `envconfig:"GROCERY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginLimit    int           `envconfig:"GROCERY_AUTH_RATE_LIMIT_LOGIN_LIMIT" default:"5"`
	LoginIPLimit  int           `envconfig:"GROCERY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow  time.Duration `envconfig:"GROCERY_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupLimit   int           `envconfig:"GROCERY_AUTH_RATE_LIMIT_SIGNUP_LIMIT" default:"3"`
	SignupIPLimit int           `envconfig:"GROCERY_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type LocalStoreConfig struct {
	Path string `envconfig:"GROCERY_LOCAL_STORE_PATH" default:"storefront.db"`
}

type CacheConfig struct {
	Path string `envconfig:"GROCERY_CATALOG_CACHE_PATH" default:"catalog-cache.db"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GROCERY_REDIS_URL"`
	PoolSize     int           `envconfig:"GROCERY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROCERY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROCERY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROCERY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROCERY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all. Rate
// limiting is skipped when it was not.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type PaymentConfig struct {
	Provider       string        `envconfig:"GROCERY_PAYMENT_PROVIDER" default:"simulated"`
	Currency       string        `envconfig:"GROCERY_PAYMENT_CURRENCY" default:"USD"`
	SquareToken    string        `envconfig:"GROCERY_SQUARE_ACCESS_TOKEN"`
	SquareEnv      string        `envconfig:"GROCERY_SQUARE_ENV" default:"sandbox"`
	SimulatedDelay time.Duration `envconfig:"GROCERY_PAYMENT_SIMULATED_DELAY" default:"2s"`
}

// UseSquare reports whether the refined checkout should charge through Square.
func (p PaymentConfig) UseSquare() bool {
	return strings.EqualFold(strings.TrimSpace(p.Provider), "square")
}
