package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata" // WHAM_TIMEZONE must resolve without system zoneinfo

	"github.com/spf13/cobra"

	"github.com/mcoot/whamageddon/internal/api"
	"github.com/mcoot/whamageddon/internal/config"
	"github.com/mcoot/whamageddon/internal/factory"
	redisstorage "github.com/mcoot/whamageddon/internal/storage/redis"
	"github.com/mcoot/whamageddon/internal/web"
	"github.com/mcoot/whamageddon/internal/web/sse"
)

// hubCleanupInterval is how often hubs without viewers are dropped
const hubCleanupInterval = 5 * time.Minute

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := config.Default()
	cmd := &cobra.Command{
		Use:           "whamageddon",
		Short:         "Serve the Whamageddon web UI and JSON API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}
	config.BindFlags(cmd, &cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	loc, _ := cfg.Location()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage,
		SQLitePath:  cfg.SQLitePath,
		Location:    loc,
	}
	if cfg.Storage == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.DataTTL = cfg.RedisDataTTL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close failed", slog.String("error", err.Error()))
		}
	}()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		GroupService:  app.GroupService,
		PlayerService: app.PlayerService,
		StatsService:  app.StatsService,
		SeasonService: app.SeasonService,
		Feed:          app.Feed,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:        logger,
		GroupService:  app.GroupService,
		PlayerService: app.PlayerService,
		StatsService:  app.StatsService,
		SeasonService: app.SeasonService,
		Random:        app.Random,
		HubManager:    app.HubManager,
		StaticDir:     findStaticDir(cfg.StaticDir),
		PublicURL:     cfg.PublicURL,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	// Live refresh: changes reach every open leaderboard through the relay
	go sse.NewRelay(app.Feed, app.GroupService, app.HubManager, logger).Run(ctx)
	go cleanupHubs(ctx, app.HubManager)

	server := api.NewServer(mux, api.DefaultServerConfig(cfg.Addr()), logger)
	server.OnShutdown(app.HubManager.CloseAll)

	if err := server.Start(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func cleanupHubs(ctx context.Context, hubManager *sse.HubManager) {
	ticker := time.NewTicker(hubCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hubManager.CleanupEmptyHubs()
		}
	}
}

// findStaticDir returns the configured static directory, falling back to
// the source layout relative to the working directory
func findStaticDir(configured string) string {
	candidates := []string{
		configured,
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return configured
}
