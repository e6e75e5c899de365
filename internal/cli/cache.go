package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyflow/pkg/cache"
	"github.com/matzehuels/storyflow/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url := c.Config.Cache.RedisURL; url != "" {
				return c.clearRedis(cmd.Context(), url)
			}

			dir, err := cacheDir()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "locate cache directory")
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(c.Out, "Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			printSuccess(c.Out, "Cleared %d cached artifacts", count)
			printDetail(c.Out, "Directory: %s", dir)
			return nil
		},
	}
}

func (c *CLI) clearRedis(ctx context.Context, url string) error {
	rc, err := cache.NewRedisCache(url)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "open redis cache").WithSubject("cache.redis_url")
	}
	defer rc.Close()

	count, err := rc.Clear(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "clear redis cache")
	}
	if count == 0 {
		printInfo(c.Out, "Cache is empty")
		return nil
	}
	printSuccess(c.Out, "Cleared %d cached artifacts", count)
	printDetail(c.Out, "Redis: %s", url)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url := c.Config.Cache.RedisURL; url != "" {
				fmt.Fprintln(c.Out, url)
				return nil
			}
			dir, err := cacheDir()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "locate cache directory")
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}
