package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "velumart"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VELUMART_DB_DSN"
	EnvDBHost = "VELUMART_DB_HOST"
	EnvDBUser = "VELUMART_DB_USER"
	EnvDBName = "VELUMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Workflow     WorkflowConfig
	Uploads      UploadsConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"VELUMART_APP_ENV" default:"dev"`
	Port         string `envconfig:"VELUMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"VELUMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VELUMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VELUMART_DB_DSN"`
	Driver string `envconfig:"VELUMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VELUMART_DB_HOST"`
	LegacyPort     int    `envconfig:"VELUMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VELUMART_DB_USER"`
	LegacyPassword string `envconfig:"VELUMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"VELUMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"VELUMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VELUMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VELUMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VELUMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VELUMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VELUMART_REDIS_URL"`
	Address      string        `envconfig:"VELUMART_REDIS_ADDR"`
	Password     string        `envconfig:"VELUMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"VELUMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VELUMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VELUMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VELUMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VELUMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VELUMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// WorkflowConfig holds tunables for the order/procurement/delivery state
// machines. AdminID replaces the fixed admin recipient id the legacy system
// hard-coded; AllowCancelledReopen controls whether a cancelled order may be
// reopened to "New Order".
type WorkflowConfig struct {
	AdminID               int64 `envconfig:"VELUMART_ADMIN_ID" default:"1"`
	AllowCancelledReopen  bool  `envconfig:"VELUMART_ALLOW_CANCELLED_REOPEN" default:"false"`
	DeliveryNumberRetries int   `envconfig:"VELUMART_DELIVERY_NUMBER_RETRIES" default:"5"`
	IdempotencyTTLHours   int   `envconfig:"VELUMART_IDEMPOTENCY_TTL_HOURS" default:"24"`
}

// IdempotencyTTL returns the replay-cache TTL for idempotent endpoints.
func (w WorkflowConfig) IdempotencyTTL() time.Duration {
	if w.IdempotencyTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(w.IdempotencyTTLHours) * time.Hour
}

type UploadsConfig struct {
	BaseDir             string `envconfig:"VELUMART_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB         int    `envconfig:"VELUMART_MAX_UPLOAD_MB" default:"20"`
	DeliveryImageDir    string `envconfig:"VELUMART_DELIVERY_IMAGE_DIR" default:"delivery_image"`
	ProcurementImageDir string `envconfig:"VELUMART_PROCUREMENT_IMAGE_DIR" default:"procurement_product_image"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VELUMART_AUTO_MIGRATE" default:"false"`
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
