package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship/internal/factory"
	"github.com/mcoot/battleship/internal/storage/sqlstore"
)

var configKeys = []string{
	"HOST", "PORT", "LOG_LEVEL", "STORAGE_TYPE", "REDIS_URL", "DATABASE_DRIVER",
	"DATABASE_URL", "JWT_SECRET", "SESSION_HOURS", "STALE_MATCH_AFTER", "SWEEP_INTERVAL",
}

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	// t.Setenv restores the previous values after each test
	for _, k := range configKeys {
		s.T().Setenv(k, "")
		s.Require().NoError(os.Unsetenv(k))
	}
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := FromEnv()
	s.Require().NoError(err)

	s.Equal(8080, cfg.Port)
	s.Equal(slog.LevelInfo, cfg.LogLevel)
	s.Equal(factory.StorageTypeMemory, cfg.StorageType)
	s.Equal(24*time.Hour, cfg.SessionDuration)
	s.Equal(time.Hour, cfg.StaleMatchAfter)
	s.Equal(5*time.Minute, cfg.SweepInterval)
}

func (s *ConfigSuite) TestReadsEnvironment() {
	s.T().Setenv("PORT", "9090")
	s.T().Setenv("LOG_LEVEL", "debug")
	s.T().Setenv("STORAGE_TYPE", "sql")
	s.T().Setenv("DATABASE_DRIVER", "postgres")
	s.T().Setenv("DATABASE_URL", "postgres://localhost/battleship")
	s.T().Setenv("JWT_SECRET", "s3cret")
	s.T().Setenv("SESSION_HOURS", "2")
	s.T().Setenv("SWEEP_INTERVAL", "30s")

	cfg, err := FromEnv()
	s.Require().NoError(err)
	s.Equal(9090, cfg.Port)
	s.Equal(slog.LevelDebug, cfg.LogLevel)
	s.Equal(2*time.Hour, cfg.SessionDuration)
	s.Equal(30*time.Second, cfg.SweepInterval)

	fc := cfg.Factory(nil)
	s.Require().NotNil(fc.SQLConfig)
	s.Equal(sqlstore.DriverPostgres, fc.SQLConfig.Driver)
	s.Equal("postgres://localhost/battleship", fc.SQLConfig.DSN)
	s.True(fc.SQLConfig.Debug)
	s.Nil(fc.RedisConfig)
}

func (s *ConfigSuite) TestRedisRequiresURL() {
	s.T().Setenv("STORAGE_TYPE", "redis")
	s.T().Setenv("JWT_SECRET", "s3cret")
	_, err := FromEnv()
	s.Error(err)

	s.T().Setenv("REDIS_URL", "redis://cache:6379/1")
	cfg, err := FromEnv()
	s.Require().NoError(err)
	s.Equal("redis://cache:6379/1", cfg.Factory(nil).RedisConfig.URL)
}

func (s *ConfigSuite) TestPersistentStorageRequiresSecret() {
	s.T().Setenv("STORAGE_TYPE", "sql")
	s.T().Setenv("DATABASE_DRIVER", "postgres")
	s.T().Setenv("DATABASE_URL", "postgres://localhost/battleship")

	_, err := FromEnv()
	s.Require().Error(err)
	s.Contains(err.Error(), "JWT_SECRET")

	s.T().Setenv("STORAGE_TYPE", "redis")
	s.T().Setenv("REDIS_URL", "redis://cache:6379/1")
	_, err = FromEnv()
	s.Require().Error(err)
	s.Contains(err.Error(), "JWT_SECRET")

	s.T().Setenv("JWT_SECRET", "s3cret")
	cfg, err := FromEnv()
	s.Require().NoError(err)
	s.Equal("s3cret", cfg.Factory(nil).AuthConfig.Secret)
}

func (s *ConfigSuite) TestMemoryStorageAllowsGeneratedSecret() {
	cfg, err := FromEnv()
	s.Require().NoError(err)
	s.Empty(cfg.Factory(nil).AuthConfig.Secret)
}

func (s *ConfigSuite) TestRejectsBadValues() {
	s.T().Setenv("PORT", "eighty")
	_, err := FromEnv()
	s.Error(err)

	s.T().Setenv("PORT", "")
	s.T().Setenv("STORAGE_TYPE", "floppy")
	_, err = FromEnv()
	s.Error(err)

	s.T().Setenv("STORAGE_TYPE", "")
	s.T().Setenv("STALE_MATCH_AFTER", "soon")
	_, err = FromEnv()
	s.Error(err)
}

func (s *ConfigSuite) TestLoadReadsDotEnv() {
	path := filepath.Join(s.T().TempDir(), ".env")
	s.Require().NoError(os.WriteFile(path, []byte("PORT=7070\nJWT_SECRET=from-file\n"), 0o600))
	s.T().Setenv("JWT_SECRET", "")
	s.Require().NoError(os.Unsetenv("JWT_SECRET"))

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(7070, cfg.Port)
	s.Equal("from-file", cfg.JWTSecret)
	s.Equal("from-file", cfg.Factory(nil).AuthConfig.Secret)
}

func (s *ConfigSuite) TestLoadIgnoresMissingFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "missing.env"))
	s.NoError(err)
}
