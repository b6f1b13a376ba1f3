package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver        string        `yaml:"db_driver"`
	DBHost          string        `yaml:"db_host"`
	DBPort          string        `yaml:"db_port"`
	DBUser          string        `yaml:"db_user"`
	DBPassword      string        `yaml:"db_password"`
	DBName          string        `yaml:"db_name"`
	DBSSLMode       string        `yaml:"db_sslmode"`
	RedisHost       string        `yaml:"redis_host"`
	RedisPort       string        `yaml:"redis_port"`
	SessionSecret   string        `yaml:"session_secret"`
	GinMode         string        `yaml:"gin_mode"`
	ServerPort      string        `yaml:"server_port"`
	LogLevel        string        `yaml:"log_level"`
	LogFile         string        `yaml:"log_file"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration used when neither a file nor the environment set a value.
func Default() *Config {
	return &Config{
		DBDriver:        DriverMySQL,
		DBHost:          "localhost",
		DBPort:          "3306",
		DBUser:          "taskuser",
		DBPassword:      "taskpassword",
		DBName:          "sprint_tracker",
		DBSSLMode:       "disable",
		RedisHost:       "localhost",
		RedisPort:       "6379",
		SessionSecret:   "default-secret-key-change-me",
		GinMode:         "debug",
		ServerPort:      "8080",
		LogLevel:        "info",
		RequestTimeout:  15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from defaults, an optional YAML file (CONFIG_PATH)
// and environment variables, in increasing order of precedence. A .env file in the
// working directory is read first but never overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnv("DB_SSLMODE", cfg.DBSSLMode)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	var err error
	if cfg.RequestTimeout, err = getDurationEnv("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDurationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DBDriver)
	}
	if c.DBName == "" {
		return errors.New("database name is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}

// RedisAddr returns host:port of the session store.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
