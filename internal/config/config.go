// Package config holds the server settings, read from flags, WHAM_*
// environment variables and an optional .env file, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the server reads
const EnvPrefix = "WHAM"

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration
type Config struct {
	Bind string
	Port int

	// PublicURL is the externally visible base URL used in share links and
	// QR codes. Empty derives it from each request.
	PublicURL string

	Storage      string
	RedisURL     string
	RedisDataTTL time.Duration
	SQLitePath   string

	// Timezone decides when 24 December begins
	Timezone string

	StaticDir string
	LogLevel  string
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Bind:       "",
		Port:       8080,
		Storage:    StorageMemory,
		RedisURL:   "redis://localhost:6379",
		SQLitePath: "whamageddon.db",
		Timezone:   "UTC",
		StaticDir:  "internal/web/static",
		LogLevel:   "info",
	}
}

// Validate checks the configuration for contradictions
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("--redis-url is required when --storage=redis")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("--sqlite-path is required when --storage=sqlite")
		}
	default:
		return fmt.Errorf("invalid storage %q: must be memory, redis or sqlite", c.Storage)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Location loads the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Level parses the configured log level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// LoadDotEnv loads variables from the given files into the environment.
// Missing files are ignored; variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// BindFlags registers the configuration flags on cmd and applies
// WHAM_* environment variables to every flag not given on the command line
func BindFlags(cmd *cobra.Command, cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := Default()
	flags := cmd.Flags()

	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	flags.StringVarP(&cfg.Bind, "bind", "b", d.Bind, "address to bind to (env: WHAM_BIND)")
	flags.IntVarP(&cfg.Port, "port", "p", d.Port, "port to listen on (env: WHAM_PORT)")
	flags.StringVar(&cfg.PublicURL, "public-url", d.PublicURL, "base URL used in share links (env: WHAM_PUBLIC_URL)")
	flags.StringVar(&cfg.Storage, "storage", d.Storage, "storage backend: memory, redis or sqlite (env: WHAM_STORAGE)")
	flags.StringVar(&cfg.RedisURL, "redis-url", d.RedisURL, "redis connection URL (env: WHAM_REDIS_URL)")
	flags.DurationVar(&cfg.RedisDataTTL, "redis-data-ttl", d.RedisDataTTL, "expire redis data after this long, 0 keeps it (env: WHAM_REDIS_DATA_TTL)")
	flags.StringVar(&cfg.SQLitePath, "sqlite-path", d.SQLitePath, "sqlite database file (env: WHAM_SQLITE_PATH)")
	flags.StringVar(&cfg.Timezone, "timezone", d.Timezone, "IANA timezone for the countdown (env: WHAM_TIMEZONE)")
	flags.StringVar(&cfg.StaticDir, "static-dir", d.StaticDir, "directory of static web assets (env: WHAM_STATIC_DIR)")
	flags.StringVar(&cfg.LogLevel, "log-level", d.LogLevel, "debug, info, warn or error (env: WHAM_LOG_LEVEL)")

	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = flags.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
