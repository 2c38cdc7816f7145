package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mealyetf/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// clearer is implemented by every backend that can drop all its entries.
type clearer interface {
	Clear() error
}

type ctxClearer interface {
	Clear(ctx context.Context) error
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend := c.Config.Cache.Backend

			if backend == backendNone {
				printInfo("Caching is disabled")
				return nil
			}
			if backend == backendFile {
				dir, err := c.Config.fileDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
			}

			store, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := clearCache(ctx, store); err != nil {
				return err
			}
			printSuccess("Cleared %s cache", backend)
			printDetail("Location: %s", c.cacheLocation())
			return nil
		},
	}
}

func clearCache(ctx context.Context, store cache.Cache) error {
	switch s := store.(type) {
	case clearer:
		return s.Clear()
	case ctxClearer:
		return s.Clear(ctx)
	}
	return fmt.Errorf("cache backend %T cannot be cleared", store)
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the configured cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend's storage: a directory,
// a file, or a server address.
func (c *CLI) cacheLocation() string {
	cc := c.Config.Cache
	switch cc.Backend {
	case backendNone:
		return "(disabled)"
	case backendRedis:
		return "redis://" + cc.Redis.Addr
	case backendMongo:
		return cc.Mongo.URI
	case backendBolt:
		path, err := c.Config.boltPath()
		if err != nil {
			return "(unknown)"
		}
		return path
	default:
		dir, err := c.Config.fileDir()
		if err != nil {
			return "(unknown)"
		}
		return dir
	}
}
