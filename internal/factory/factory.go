package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/battleship/internal/dependencies/clock"
	"github.com/mcoot/battleship/internal/dependencies/random"
	"github.com/mcoot/battleship/internal/services/auth"
	"github.com/mcoot/battleship/internal/services/bot"
	"github.com/mcoot/battleship/internal/services/fleet"
	"github.com/mcoot/battleship/internal/services/game"
	"github.com/mcoot/battleship/internal/services/lobby"
	"github.com/mcoot/battleship/internal/storage"
	"github.com/mcoot/battleship/internal/storage/memory"
	redisstorage "github.com/mcoot/battleship/internal/storage/redis"
	"github.com/mcoot/battleship/internal/storage/sqlstore"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQL    = "sql"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	FleetService    *fleet.Service
	GameController  *game.Controller
	LobbyController *lobby.Controller
	AuthService     *auth.Service
	BotService      *bot.Service

	// Sweeper prunes stale waiting matches. Nil when sweeping is disabled.
	Sweeper *lobby.Sweeper
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLConfig holds database settings (required if StorageType is "sql")
	SQLConfig *sqlstore.Config
	// SweepInterval is how often stale waiting matches are pruned.
	// Zero disables the sweeper.
	SweepInterval time.Duration
	// StaleMatchAfter is how long a match may wait for an opponent
	StaleMatchAfter time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg.AuthConfig, logger)

	if cfg.SweepInterval > 0 {
		staleAfter := cfg.StaleMatchAfter
		if staleAfter <= 0 {
			staleAfter = time.Hour
		}
		sweeper, err := lobby.NewSweeper(app.LobbyController, cfg.SweepInterval, staleAfter, logger)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("failed to create sweeper: %w", err)
		}
		if err := sweeper.AddJob(app.AuthService.CleanExpiredSessions); err != nil {
			_ = sweeper.Stop()
			_ = app.Close()
			return nil, fmt.Errorf("failed to schedule session cleanup: %w", err)
		}
		app.Sweeper = sweeper
	}

	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypeSQL:
		if cfg.SQLConfig == nil {
			return nil, errors.New("SQLConfig required when StorageType is sql")
		}
		store, err := sqlstore.New(*cfg.SQLConfig)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sql'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	fleetService := fleet.New(store, fleet.NewGenerator(rnd), logger)
	gameController := game.NewController(store, fleetService, clk, logger)
	lobbyController := lobby.NewController(store, fleetService, clk, logger)
	authService := auth.New(store, clk, authCfg)
	botService := bot.NewService(store, lobbyController, gameController, bot.DefaultStrategies(rnd), clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		FleetService:    fleetService,
		GameController:  gameController,
		LobbyController: lobbyController,
		AuthService:     authService,
		BotService:      botService,
	}
}

// Start launches background jobs
func (a *App) Start() {
	if a.Sweeper != nil {
		a.Sweeper.Start()
	}
}

// Close stops background jobs and releases the storage connection
func (a *App) Close() error {
	var errs []error
	if a.Sweeper != nil {
		errs = append(errs, a.Sweeper.Stop())
	}
	if closer, ok := a.Storage.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
