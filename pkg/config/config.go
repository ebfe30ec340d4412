package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "MEDITRACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Sync         SyncConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"MEDITRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDITRACK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MEDITRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDITRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDITRACK_DB_DSN"`
	Driver string `envconfig:"MEDITRACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MEDITRACK_DB_HOST"`
	Port     int    `envconfig:"MEDITRACK_DB_PORT" default:"5432"`
	User     string `envconfig:"MEDITRACK_DB_USER"`
	Password string `envconfig:"MEDITRACK_DB_PASSWORD"`
	Name     string `envconfig:"MEDITRACK_DB_NAME"`
	SSLMode  string `envconfig:"MEDITRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDITRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDITRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDITRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDITRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDITRACK_REDIS_URL"`
	Address      string        `envconfig:"MEDITRACK_REDIS_ADDR"`
	Password     string        `envconfig:"MEDITRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDITRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDITRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDITRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDITRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDITRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDITRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDITRACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDITRACK_JWT_ISSUER" default:"meditrack"`
	ExpirationMinutes int    `envconfig:"MEDITRACK_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// PasswordConfig tunes the Argon2id password hasher.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEDITRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEDITRACK_ARGON_TIME" default:"1"`
	ArgonParallelism int `envconfig:"MEDITRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEDITRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEDITRACK_ARGON_KEY_LEN" default:"32"`
}

// SyncConfig tunes the outbound cart mirror queue.
type SyncConfig struct {
	QueueSize   int           `envconfig:"MEDITRACK_SYNC_QUEUE_SIZE" default:"256"`
	PushTimeout time.Duration `envconfig:"MEDITRACK_SYNC_PUSH_TIMEOUT" default:"5s"`
	MaxAttempts int           `envconfig:"MEDITRACK_SYNC_MAX_ATTEMPTS" default:"3"`
	BaseBackoff time.Duration `envconfig:"MEDITRACK_SYNC_BASE_BACKOFF" default:"100ms"`
	MaxBackoff  time.Duration `envconfig:"MEDITRACK_SYNC_MAX_BACKOFF" default:"2s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MEDITRACK_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDITRACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDITRACK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		"MEDITRACK_DB_HOST": db.Host,
		"MEDITRACK_DB_USER": db.User,
		"MEDITRACK_DB_NAME": db.Name,
	}
	for _, env := range []string{"MEDITRACK_DB_HOST", "MEDITRACK_DB_USER", "MEDITRACK_DB_NAME"} {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either MEDITRACK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
