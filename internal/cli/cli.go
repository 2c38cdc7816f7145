// Package cli implements the mealyetf command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mealyetf/pkg/buildinfo"
	"github.com/matzehuels/mealyetf/pkg/cache"
	"github.com/matzehuels/mealyetf/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mealyetf"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	configFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	setLevel(c.Logger, level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "mealyetf converts Mealy machines to ETF",
		Long: `mealyetf converts Mealy machines into ETF transition systems with alternating
edges, where every transition s --i/o--> t becomes s --i--> (o,t) --o--> t.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd.Flags().Changed("config")); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), commandLogger(c.Logger, cmd.Name())))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/mealyetf/config.toml)")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig(explicit bool) error {
	path := c.configFile
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			c.Logger.Debug("no config directory", "err", err)
			return nil
		}
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}

	cc := c.Config.Cache
	switch cc.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		var opts []cache.RedisOption
		if cc.Redis.Prefix != "" {
			opts = append(opts, cache.WithRedisPrefix(cc.Redis.Prefix))
		}
		return cache.NewRedisCache(cc.Redis.Addr, cc.Redis.Password, cc.Redis.DB, opts...), nil
	case backendBolt:
		path, err := c.Config.boltPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
		return cache.NewBoltCache(path)
	case backendMongo:
		var opts []cache.MongoOption
		if cc.Mongo.Database != "" || cc.Mongo.Collection != "" {
			db, coll := cc.Mongo.Database, cc.Mongo.Collection
			if db == "" {
				db = appName
			}
			if coll == "" {
				coll = "artifacts"
			}
			opts = append(opts, cache.WithMongoCollection(db, coll))
		}
		return cache.NewMongoCache(ctx, cc.Mongo.URI, opts...)
	default:
		dir, err := c.Config.fileDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mealyetf/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
