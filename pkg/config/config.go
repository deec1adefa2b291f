package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SOLEPLUG_DB_DSN"
	EnvDBHost = "SOLEPLUG_DB_HOST"
	EnvDBUser = "SOLEPLUG_DB_USER"
	EnvDBName = "SOLEPLUG_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Fees         FeesConfig
	Market       MarketConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Mailer       MailerConfig
	Outbox       OutboxConfig
	Eventing     EventingConfig
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
	Env          string `envconfig:"SOLEPLUG_APP_ENV" required:"true"`
	Port         string `envconfig:"SOLEPLUG_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOLEPLUG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOLEPLUG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SOLEPLUG_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SOLEPLUG_DB_DSN"`
	Driver string `envconfig:"SOLEPLUG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOLEPLUG_DB_HOST"`
	LegacyPort     int    `envconfig:"SOLEPLUG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOLEPLUG_DB_USER"`
	LegacyPassword string `envconfig:"SOLEPLUG_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOLEPLUG_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOLEPLUG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOLEPLUG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOLEPLUG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOLEPLUG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOLEPLUG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOLEPLUG_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SOLEPLUG_REDIS_ADDR"`
	Password     string        `envconfig:"SOLEPLUG_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOLEPLUG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOLEPLUG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOLEPLUG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOLEPLUG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOLEPLUG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOLEPLUG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SOLEPLUG_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SOLEPLUG_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SOLEPLUG_JWT_EXPIRATION_MINUTES" default:"60"`
}

// FeesConfig bounds the fee-config cache and carries the hardcoded fallback
// used when neither the store nor a previously cached row is available.
type FeesConfig struct {
	CacheTTL           time.Duration `envconfig:"SOLEPLUG_FEES_CACHE_TTL" default:"5m"`
	DefaultPercent     float64       `envconfig:"SOLEPLUG_FEES_DEFAULT_PERCENT" default:"0.20"`
	DefaultFixed       float64       `envconfig:"SOLEPLUG_FEES_DEFAULT_FIXED" default:"5"`
	FetchTimeout       time.Duration `envconfig:"SOLEPLUG_FEES_FETCH_TIMEOUT" default:"3s"`
	UpdateWriteTimeout time.Duration `envconfig:"SOLEPLUG_FEES_UPDATE_TIMEOUT" default:"5s"`
}

type MarketConfig struct {
	PriceCacheTTL time.Duration `envconfig:"SOLEPLUG_MARKET_PRICE_CACHE_TTL" default:"60s"`
	LookupTimeout time.Duration `envconfig:"SOLEPLUG_MARKET_LOOKUP_TIMEOUT" default:"3s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SOLEPLUG_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SOLEPLUG_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SOLEPLUG_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SOLEPLUG_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SOLEPLUG_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SalesTopic        string `envconfig:"SOLEPLUG_PUBSUB_SALES_TOPIC" default:"sp-sale-events"`
	SalesSubscription string `envconfig:"SOLEPLUG_PUBSUB_SALES_SUBSCRIPTION" required:"true"`
}

type MailerConfig struct {
	WebhookURL  string        `envconfig:"SOLEPLUG_MAILER_WEBHOOK_URL"`
	AuthToken   string        `envconfig:"SOLEPLUG_MAILER_AUTH_TOKEN"`
	SendTimeout time.Duration `envconfig:"SOLEPLUG_MAILER_SEND_TIMEOUT" default:"10s"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SOLEPLUG_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SOLEPLUG_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SOLEPLUG_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SOLEPLUG_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
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
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
