package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	OrderAPI OrderAPIConfig
	VietQR   VietQRConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"XTN_APP_ENV" required:"true"`
	Port         string `envconfig:"XTN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"XTN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"XTN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"XTN_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"XTN_DB_DSN" default:"storefront.db"`

	MaxOpenConns    int           `envconfig:"XTN_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"XTN_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"XTN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"XTN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch db.Driver {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	if db.DSN == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"XTN_REDIS_URL" required:"true"`
	Password     string        `envconfig:"XTN_REDIS_PASSWORD"`
	DB           int           `envconfig:"XTN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"XTN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"XTN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"XTN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"XTN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"XTN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// OrderAPIConfig points at the remote order-management API.
type OrderAPIConfig struct {
	BaseURL string        `envconfig:"XTN_ORDER_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"XTN_ORDER_API_TIMEOUT" default:"10s"`
}

// VietQRConfig points at the VietQR image-generation service.
type VietQRConfig struct {
	GenerateURL  string        `envconfig:"XTN_VIETQR_GENERATE_URL" default:"https://api.vietqr.io/v2/generate"`
	ImageBaseURL string        `envconfig:"XTN_VIETQR_IMAGE_BASE_URL" default:"https://img.vietqr.io/image"`
	Template     string        `envconfig:"XTN_VIETQR_TEMPLATE" default:"compact"`
	Timeout      time.Duration `envconfig:"XTN_VIETQR_TIMEOUT" default:"10s"`
}

// CheckoutConfig tunes the checkout workflow.
type CheckoutConfig struct {
	IdemScope  string        `envconfig:"XTN_CHECKOUT_IDEM_SCOPE" default:"checkout"`
	SessionTTL time.Duration `envconfig:"XTN_CHECKOUT_SESSION_TTL" default:"2h"`
	CartTTL    time.Duration `envconfig:"XTN_CART_TTL" default:"168h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"XTN_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
