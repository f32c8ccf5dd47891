// Package config loads server settings from the environment.
// A .env file in the working directory is read first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/battleship/internal/factory"
	"github.com/mcoot/battleship/internal/services/auth"
	redisstorage "github.com/mcoot/battleship/internal/storage/redis"
	"github.com/mcoot/battleship/internal/storage/sqlstore"
)

// Config is the full server configuration
type Config struct {
	Host     string
	Port     int
	LogLevel slog.Level

	StorageType    string
	RedisURL       string
	DatabaseDriver string
	DatabaseURL    string

	JWTSecret       string
	SessionDuration time.Duration

	StaleMatchAfter time.Duration
	SweepInterval   time.Duration
}

// Load reads .env files (if any) then the environment.
// files defaults to ".env"; missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone
func FromEnv() (*Config, error) {
	cfg := &Config{
		Host:           os.Getenv("HOST"),
		StorageType:    envOr("STORAGE_TYPE", factory.StorageTypeMemory),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseDriver: envOr("DATABASE_DRIVER", sqlstore.DriverSQLite),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	hours, err := intEnv("SESSION_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.SessionDuration = time.Duration(hours) * time.Hour
	if cfg.StaleMatchAfter, err = durationEnv("STALE_MATCH_AFTER", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case factory.StorageTypeSQL:
		if c.DatabaseDriver == sqlstore.DriverPostgres && c.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q", c.StorageType)
	}
	// Persistent stores outlive the process, so their sessions need a stable key
	if c.StorageType != factory.StorageTypeMemory && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET required when STORAGE_TYPE=%s", c.StorageType)
	}
	if c.SessionDuration <= 0 {
		return errors.New("SESSION_HOURS must be positive")
	}
	return nil
}

// Factory converts the settings into a factory.Config
func (c *Config) Factory(logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: c.StorageType,
		AuthConfig: auth.Config{
			Secret:          c.JWTSecret,
			SessionDuration: c.SessionDuration,
		},
		SweepInterval:   c.SweepInterval,
		StaleMatchAfter: c.StaleMatchAfter,
	}

	switch c.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypeSQL:
		sqlCfg := sqlstore.DefaultConfig()
		sqlCfg.Driver = c.DatabaseDriver
		if c.DatabaseURL != "" {
			sqlCfg.DSN = c.DatabaseURL
		}
		sqlCfg.Debug = c.LogLevel <= slog.LevelDebug
		fc.SQLConfig = &sqlCfg
	}
	return fc
}

func envOr(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func intEnv(key string, defaultVal int) (int, error) {
	raw := envOr(key, "")
	if raw == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := envOr(key, "")
	if raw == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
