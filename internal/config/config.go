package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Backend names accepted for DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds application configuration loaded from environment variables,
// optionally merged with a YAML config file.
type Config struct {
	Env               string
	HTTPPort          int
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration

	DataBackend string
	UsersFile   string
	SQLitePath  string

	DatabaseDriver    string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	AdminToken string
}

const (
	defaultEnv               = "development"
	defaultHTTPPort          = 8080
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultDataBackend = BackendMemory
	defaultUsersFile   = "users.json"
	defaultSQLitePath  = "users.db"

	defaultDatabaseDriver    = "pgx"
	defaultDBMaxOpenConns    = 10
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = time.Hour
	defaultDBConnMaxIdleTime = 30 * time.Minute
)

// Load reads configuration from the environment, applying defaults where
// necessary. When CONFIG_FILE is set (or path is non-empty) the YAML file is
// read first and environment variables override it.
func Load() (Config, error) {
	return LoadWithFile(os.Getenv("CONFIG_FILE"))
}

// LoadWithFile behaves like Load with an explicit config file path.
func LoadWithFile(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Env:               defaultEnv,
		HTTPPort:          defaultHTTPPort,
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,

		DataBackend: defaultDataBackend,
		UsersFile:   defaultUsersFile,
		SQLitePath:  defaultSQLitePath,

		DatabaseDriver:    defaultDatabaseDriver,
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBConnMaxIdleTime: defaultDBConnMaxIdleTime,
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.HTTPPort = getInt("HTTP_PORT", cfg.HTTPPort)
	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.ReadHeaderTimeout = getDuration("READ_HEADER_TIMEOUT", cfg.ReadHeaderTimeout)

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.UsersFile = getEnv("USERS_FILE", cfg.UsersFile)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)

	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBMaxOpenConns = getInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxLifetime = getDuration("DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime)
	cfg.DBConnMaxIdleTime = getDuration("DB_CONN_MAX_IDLE_TIME", cfg.DBConnMaxIdleTime)

	cfg.AdminToken = getEnv("ADMIN_TOKEN", cfg.AdminToken)
}

// Validate checks cross-field constraints.
func (cfg Config) Validate() error {
	switch cfg.DataBackend {
	case BackendMemory:
		// no-op
	case BackendJSON:
		if cfg.UsersFile == "" {
			return fmt.Errorf("USERS_FILE is required when DATA_BACKEND=json")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DATA_BACKEND=sqlite")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND value: %s", cfg.DataBackend)
	}

	if cfg.Env != defaultEnv && cfg.AdminToken == "" {
		return fmt.Errorf("ADMIN_TOKEN is required when APP_ENV=%s", cfg.Env)
	}

	return nil
}

func getEnv(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
