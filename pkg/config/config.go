package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Scraper      ScraperConfig
	Warm         WarmConfig
	FeatureFlags FeatureFlagsConfig
	GoogleMaps   GoogleMapsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTCOMPASS_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTCOMPASS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTCOMPASS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTCOMPASS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARTCOMPASS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARTCOMPASS_DB_DSN"`
	Driver string `envconfig:"CARTCOMPASS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARTCOMPASS_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTCOMPASS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTCOMPASS_DB_USER"`
	LegacyPassword string `envconfig:"CARTCOMPASS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTCOMPASS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTCOMPASS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTCOMPASS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTCOMPASS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTCOMPASS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTCOMPASS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTCOMPASS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARTCOMPASS_REDIS_ADDR"`
	Password     string        `envconfig:"CARTCOMPASS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTCOMPASS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTCOMPASS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTCOMPASS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTCOMPASS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTCOMPASS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTCOMPASS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ScraperConfig points at the scraper sidecar and bounds each per-store call.
type ScraperConfig struct {
	BaseURL          string        `envconfig:"CARTCOMPASS_SCRAPER_BASE_URL" required:"true"`
	PerSourceTimeout time.Duration `envconfig:"CARTCOMPASS_SCRAPER_SOURCE_TIMEOUT" default:"30s"`
	Stores           []string      `envconfig:"CARTCOMPASS_SCRAPER_STORES" default:"target,kroger,meijer,99ranch,walmart"`
	DefaultZip       string        `envconfig:"CARTCOMPASS_SCRAPER_DEFAULT_ZIP" default:"47906"`
}

// WarmConfig drives the scheduled cache-warming sweep.
type WarmConfig struct {
	Secret   string        `envconfig:"CARTCOMPASS_WARM_SECRET"`
	Interval time.Duration `envconfig:"CARTCOMPASS_WARM_INTERVAL" default:"24h"`
	// LedgerRetention is how far back price history is kept; zero disables pruning.
	LedgerRetention time.Duration `envconfig:"CARTCOMPASS_LEDGER_RETENTION" default:"2160h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARTCOMPASS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARTCOMPASS_AUTO_MIGRATE" default:"false"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"CARTCOMPASS_GOOGLE_MAPS_API_KEY"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CARTCOMPASS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CARTCOMPASS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CARTCOMPASS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	PriceTopic string `envconfig:"CARTCOMPASS_PUBSUB_PRICE_TOPIC" default:"cc-price-observed"`
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
