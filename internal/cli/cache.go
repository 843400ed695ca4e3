package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeffijoe/typesync/pkg/cache"
	"github.com/jeffijoe/typesync/pkg/errors"
)

// cacheCommand manages the on-disk registry response cache used by
// --cache=file. Redis caches expire on their own and are not touched here.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry response cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached registry responses",
			Args:  cobra.NoArgs,
			RunE:  c.runCacheClear,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := fileCacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

func (c *CLI) runCacheClear(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	dir, err := fileCacheDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo(out, "Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "clear cache in %s", dir)
	}

	loggerFromContext(contextOf(cmd)).Debug("cleared cache", "dir", dir, "entries", n)
	if n == 0 {
		printInfo(out, "Cache is empty")
		return nil
	}
	printSuccess(out, "Cleared %d cached entries", n)
	printDetail(out, "Directory: %s", dir)
	return nil
}

func fileCacheDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate cache directory")
	}
	return dir, nil
}
