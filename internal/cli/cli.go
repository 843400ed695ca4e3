package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeffijoe/typesync/pkg/buildinfo"
	"github.com/jeffijoe/typesync/pkg/cache"
	"github.com/jeffijoe/typesync/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "typesync"

	// envPrefix is prepended to flag names when reading the environment,
	// e.g. TYPESYNC_REGISTRY for --registry.
	envPrefix = "TYPESYNC"
)

// Log levels accepted by New.
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
}

// New creates a new CLI instance with a logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command. Running it without a
// subcommand syncs the given package.json.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "typesync [package.json]",
		Short: "TypeSync adds missing TypeScript definitions to package.json",
		Long: `TypeSync looks up every dependency of a package.json (and of its workspace
members) in the npm registry and adds the matching @types packages to
devDependencies when the package does not ship its own type declarations.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(contextOf(cmd), c.Logger))
			return nil
		},
		RunE: c.runSync,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	addSyncFlags(root)

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the registry response cache selected by --cache: "" disables
// caching, "file" uses the user cache directory and a redis:// or rediss://
// URL connects to Redis.
func newCache(ctx context.Context, kind string) (cache.Cache, error) {
	switch {
	case kind == "" || kind == "none":
		return cache.NewNullCache(), nil
	case kind == "file":
		dir, err := fileCacheDir()
		if err != nil {
			return nil, err
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case strings.HasPrefix(kind, "redis://"), strings.HasPrefix(kind, "rediss://"):
		c, err := cache.NewRedisCache(ctx, kind, appName+":")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to redis cache")
		}
		return c, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache %q (want file or a redis:// URL)", kind)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/typesync/).
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
