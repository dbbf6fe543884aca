package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/whamageddon/internal/changefeed"
	memoryfeed "github.com/mcoot/whamageddon/internal/changefeed/memory"
	redisfeed "github.com/mcoot/whamageddon/internal/changefeed/redis"
	"github.com/mcoot/whamageddon/internal/dependencies/clock"
	"github.com/mcoot/whamageddon/internal/dependencies/random"
	"github.com/mcoot/whamageddon/internal/services/group"
	"github.com/mcoot/whamageddon/internal/services/player"
	"github.com/mcoot/whamageddon/internal/services/season"
	"github.com/mcoot/whamageddon/internal/services/stats"
	"github.com/mcoot/whamageddon/internal/storage"
	"github.com/mcoot/whamageddon/internal/storage/memory"
	redisstorage "github.com/mcoot/whamageddon/internal/storage/redis"
	"github.com/mcoot/whamageddon/internal/storage/sqlite"
	"github.com/mcoot/whamageddon/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage and the change feed announcing its writes
	Storage storage.Storage
	Feed    changefeed.Feed

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	GroupService  *group.Service
	PlayerService *player.Service
	StatsService  *stats.Service
	SeasonService *season.Service
	HubManager    *sse.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// Location decides when the season's days begin (optional, UTC if nil)
	Location *time.Location
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage and feed based on type. Redis shares one client between
	// them so every instance sees every write.
	var (
		store storage.Storage
		feed  changefeed.Feed
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
		feed = memoryfeed.New(logger)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		feed = redisfeed.New(redisStore.Client(), logger)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
		feed = memoryfeed.New(logger)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Create external dependencies
	clk := clock.New(cfg.Location)
	rnd := random.New()

	logger.Info("storage ready",
		slog.String("type", storageType),
		slog.String("location", clk.Location().String()))

	return newWithDependencies(store, feed, clk, rnd, clk.Location(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	feed changefeed.Feed,
	clk clock.Clock,
	rnd random.Random,
	loc *time.Location,
	logger *slog.Logger,
) *App {
	groupService := group.New(store, feed, clk, rnd, logger)
	playerService := player.New(store, groupService, feed, clk, rnd, logger)
	statsService := stats.New(store, logger)
	seasonService := season.New(clk, loc)
	hubManager := sse.NewHubManager(logger)

	return &App{
		Storage:       store,
		Feed:          feed,
		Clock:         clk,
		Random:        rnd,
		GroupService:  groupService,
		PlayerService: playerService,
		StatsService:  statsService,
		SeasonService: seasonService,
		HubManager:    hubManager,
	}
}

// Close releases the feed and storage
func (a *App) Close() error {
	return errors.Join(a.Feed.Close(), a.Storage.Close())
}
