package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix is passed to envconfig; the explicit tags below carry the
	// full variable names.
	EnvPrefix = "pos"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Terminal TerminalConfig
	Cart     CartConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Terminal.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" default:"dev"`
	Port         string `envconfig:"POS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig locates the restaurant backend the POS talks to.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"POS_UPSTREAM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"POS_UPSTREAM_TIMEOUT" default:"30s"`
}

// RedisConfig is optional; without a URL or address the checkout idempotency
// guard is disabled and the service runs standalone.
type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis connection was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"POS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"POS_JWT_ISSUER" default:"pos-backend"`
	ExpirationMinutes int    `envconfig:"POS_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TerminalConfig carries the cashier sign-in gate. The PIN may be supplied as
// an argon2id hash (preferred) or as a literal for small installs.
type TerminalConfig struct {
	Username string `envconfig:"POS_TERMINAL_USERNAME" default:"cashier"`
	PIN      string `envconfig:"POS_TERMINAL_PIN"`
	PINHash  string `envconfig:"POS_TERMINAL_PIN_HASH"`

	ArgonMemoryKB    int `envconfig:"POS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POS_ARGON_KEY_LEN" default:"32"`
}

func (t TerminalConfig) validate() error {
	if t.PIN == "" && t.PINHash == "" {
		return fmt.Errorf("either POS_TERMINAL_PIN or POS_TERMINAL_PIN_HASH is required")
	}
	return nil
}

// CartConfig holds pricing knobs for the order composition core.
type CartConfig struct {
	TaxRate        decimal.Decimal `envconfig:"POS_TAX_RATE" default:"0.07"`
	IdempotencyTTL time.Duration   `envconfig:"POS_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
