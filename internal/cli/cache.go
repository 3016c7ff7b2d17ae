package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/indoorroute/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persisted route cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all persisted routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cache.Open(c.cfg.CacheBackend())
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("The %s backend keeps nothing to clear", c.cfg.Cache.Backend)
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared route cache")
			printDetail("Backend: %s", c.cfg.Cache.Backend)
			if c.cfg.Cache.Backend != string(cache.BackendRedis) {
				printDetail("Directory: %s", c.cfg.Cache.Dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend == string(cache.BackendRedis) {
				fmt.Println(c.cfg.Cache.RedisAddr)
				return nil
			}
			fmt.Println(c.cfg.Cache.Dir)
			return nil
		},
	}
}
