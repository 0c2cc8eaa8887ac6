package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidQuizConfig           = errors.New("invalid quiz configuration")
	ErrUnknownDatabaseDriver       = errors.New("unknown database driver")
	ErrInvalidDatabaseConfig       = errors.New("invalid database configuration")
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string   `mapstructure:"env"` // current application environment (local, dev, production etc)
	TelegramAPIToken string   `mapstructure:"-"`   // Telegram API token loaded from environment
	DB               DB       `mapstructure:"database"`
	Quiz             Quiz     `mapstructure:"quiz"`
	Sessions         Sessions `mapstructure:"sessions"`
	HTTP             HTTP     `mapstructure:"http"`
}

// DB contains database-related configuration parameters.
type DB struct {
	Driver          string        `mapstructure:"driver"`            // postgres or sqlite
	URL             string        `mapstructure:"-"`                 // Postgres connection string loaded from environment
	SQLitePath      string        `mapstructure:"sqlite_path"`       // database file used by the sqlite driver
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Quiz tunes the quiz engine.
type Quiz struct {
	AdvanceDelay         time.Duration `mapstructure:"advance_delay"`
	CelebrationThreshold int           `mapstructure:"celebration_threshold"`
	MinOperand           int           `mapstructure:"min_operand"`
	MaxOperand           int           `mapstructure:"max_operand"`
}

// Sessions controls eviction of idle quiz sessions.
type Sessions struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepSchedule string        `mapstructure:"sweep_schedule"` // cron spec, e.g. "@every 10m"
}

// HTTP configures the optional JSON API.
type HTTP struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration from config files, a .env file and environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine, real environment variables still apply.
	_ = godotenv.Load()

	return load("./config")
}

func load(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("env", "local")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.sqlite_path", "data/quiz.db")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("quiz.advance_delay", "1s")
	v.SetDefault("quiz.celebration_threshold", 10)
	v.SetDefault("quiz.min_operand", 2)
	v.SetDefault("quiz.max_operand", 12)
	v.SetDefault("sessions.idle_ttl", "2h")
	v.SetDefault("sessions.sweep_schedule", "@every 10m")
	v.SetDefault("http.enabled", false)
	v.SetDefault("http.addr", ":8080")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}
	cfg.DB.URL = v.GetString("database_url")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
		}
		if c.DB.MaxConnections < 1 || c.DB.MaxConnections > math.MaxInt32 {
			return fmt.Errorf("%w: max connections must be in 1..%d, got %d",
				ErrInvalidDatabaseConfig, math.MaxInt32, c.DB.MaxConnections)
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			return fmt.Errorf("%w: empty sqlite path", ErrUnknownDatabaseDriver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDatabaseDriver, c.DB.Driver)
	}

	q := c.Quiz
	if q.MinOperand < 1 || q.MaxOperand < q.MinOperand {
		return fmt.Errorf("%w: operands must satisfy 1 <= min <= max, got %d..%d",
			ErrInvalidQuizConfig, q.MinOperand, q.MaxOperand)
	}
	if q.AdvanceDelay <= 0 {
		return fmt.Errorf("%w: advance delay must be positive", ErrInvalidQuizConfig)
	}
	if q.CelebrationThreshold < 1 {
		return fmt.Errorf("%w: celebration threshold must be positive", ErrInvalidQuizConfig)
	}

	return nil
}
