package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "PRINTSHOP"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "PRINTSHOP_APP_ENV"
	EnvPort   = "PRINTSHOP_APP_PORT"
	EnvDBDSN  = "PRINTSHOP_DB_DSN"
	EnvDBHost = "PRINTSHOP_DB_HOST"
	EnvDBUser = "PRINTSHOP_DB_USER"
	EnvDBName = "PRINTSHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	GCS      GCSConfig
	Checkout CheckoutConfig
	Features FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRINTSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"PRINTSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRINTSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRINTSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PRINTSHOP_DB_DSN"`
	Driver string `envconfig:"PRINTSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRINTSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"PRINTSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRINTSHOP_DB_USER"`
	LegacyPassword string `envconfig:"PRINTSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRINTSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRINTSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRINTSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRINTSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRINTSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRINTSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRINTSHOP_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"PRINTSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRINTSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRINTSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRINTSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRINTSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PRINTSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PRINTSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PRINTSHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StripeConfig struct {
	APIKey         string        `envconfig:"PRINTSHOP_STRIPE_API_KEY"`
	WebhookSecret  string        `envconfig:"PRINTSHOP_STRIPE_WEBHOOK_SECRET"`
	Env            string        `envconfig:"PRINTSHOP_STRIPE_ENV" default:"test"`
	RequestTimeout time.Duration `envconfig:"PRINTSHOP_STRIPE_REQUEST_TIMEOUT" default:"15s"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type GCSConfig struct {
	BucketName      string `envconfig:"PRINTSHOP_GCS_BUCKET_NAME"`
	CredentialsJSON string `envconfig:"PRINTSHOP_GCP_CREDENTIALS_JSON"`
	CredentialsFile string `envconfig:"PRINTSHOP_GOOGLE_APPLICATION_CREDENTIALS"`
	MaxUploadMB     int    `envconfig:"PRINTSHOP_GCS_MAX_UPLOAD_MB" default:"25"`
}

type CheckoutConfig struct {
	WebhookEventTTL time.Duration `envconfig:"PRINTSHOP_WEBHOOK_EVENT_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PRINTSHOP_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:     db.LegacyName,
		RawQuery: url.Values{"sslmode": []string{db.LegacySSLMode}}.Encode(),
	}
	db.DSN = u.String()
	return nil
}
