package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jeffijoe/typesync/pkg/buildinfo"
	"github.com/jeffijoe/typesync/pkg/config"
	"github.com/jeffijoe/typesync/pkg/errors"
	"github.com/jeffijoe/typesync/pkg/integrations/npm"
	"github.com/jeffijoe/typesync/pkg/typesync"
	"github.com/jeffijoe/typesync/pkg/workspace"
)

// Flag names. With the TYPESYNC_ prefix they double as environment
// variable names (dashes become underscores).
const (
	flagDry            = "dry"
	flagIgnoreDeps     = "ignoredeps"
	flagIgnorePackages = "ignorepackages"
	flagIgnoreProjects = "ignoreprojects"
	flagRegistry       = "registry"
	flagToken          = "token"
	flagCache          = "cache"
	flagCacheTTL       = "cache-ttl"
	flagRefresh        = "refresh"
	flagConcurrency    = "concurrency"
)

const (
	defaultManifest = "package.json"
	defaultCacheTTL = time.Hour
)

// dryMode is the parsed value of --dry.
type dryMode int

const (
	dryOff  dryMode = iota
	dryOn           // --dry
	dryFail         // --dry=fail
)

// syncSettings is everything the sync command reads from args, flags and
// the environment.
type syncSettings struct {
	path        string
	dry         dryMode
	overrides   config.File
	registry    string
	token       string
	cache       string
	cacheTTL    time.Duration
	refresh     bool
	concurrency int
}

func addSyncFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(flagDry, "", "dry run, don't save the package.json; --dry=fail exits with an error when typings are missing")
	f.Lookup(flagDry).NoOptDefVal = "true"
	f.String(flagIgnoreDeps, "", "ignore dependencies in these sections, comma separated (deps,dev,optional,peer)")
	f.String(flagIgnorePackages, "", "ignore these packages, comma separated")
	f.String(flagIgnoreProjects, "", "skip workspace members matching these globs, comma separated")
	f.String(flagRegistry, npm.DefaultRegistry, "npm registry URL")
	f.String(flagToken, "", "bearer token for the registry")
	f.String(flagCache, "", `registry response cache: "file" or a redis:// URL (default: no cache)`)
	f.Duration(flagCacheTTL, defaultCacheTTL, "lifetime of cached registry responses")
	f.Bool(flagRefresh, false, "ignore cached registry responses")
	f.Int(flagConcurrency, typesync.DefaultConcurrency, "maximum concurrent registry requests")
	_ = cmd.RegisterFlagCompletionFunc(flagCache, completeCacheFlag)
}

// loadSettings resolves flags over TYPESYNC_* environment variables.
func loadSettings(flags *pflag.FlagSet, args []string) (syncSettings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return syncSettings{}, errors.Wrap(errors.ErrCodeInternal, err, "bind flags")
	}

	s := syncSettings{
		path:        defaultManifest,
		registry:    v.GetString(flagRegistry),
		token:       v.GetString(flagToken),
		cache:       v.GetString(flagCache),
		cacheTTL:    v.GetDuration(flagCacheTTL),
		refresh:     v.GetBool(flagRefresh),
		concurrency: v.GetInt(flagConcurrency),
	}
	if len(args) > 0 {
		s.path = args[0]
	}

	var err error
	if s.dry, err = parseDryMode(v.GetString(flagDry)); err != nil {
		return syncSettings{}, err
	}

	// Only lists that were actually given override the project config.
	if v.IsSet(flagIgnoreDeps) {
		s.overrides.IgnoreDeps = splitList(v.GetString(flagIgnoreDeps))
		if _, err := typesync.ParseSections(s.overrides.IgnoreDeps); err != nil {
			return syncSettings{}, err
		}
	}
	if v.IsSet(flagIgnorePackages) {
		s.overrides.IgnorePackages = splitList(v.GetString(flagIgnorePackages))
	}
	if v.IsSet(flagIgnoreProjects) {
		s.overrides.IgnoreProjects = splitList(v.GetString(flagIgnoreProjects))
	}
	return s, nil
}

func parseDryMode(s string) (dryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false":
		return dryOff, nil
	case "true":
		return dryOn, nil
	case "fail":
		return dryFail, nil
	}
	return dryOff, errors.New(errors.ErrCodeInvalidInput, "invalid --dry value %q (want true or fail)", s)
}

// splitList splits a comma separated flag value. An empty value yields an
// empty, non-nil list.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// runSync is the root command's action.
func (c *CLI) runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	settings, err := loadSettings(cmd.Flags(), args)
	if err != nil {
		return err
	}

	respCache, err := newCache(ctx, settings.cache)
	if err != nil {
		return err
	}
	defer respCache.Close()

	syncer, err := typesync.New(typesync.Config{
		Source: npm.NewClient(npm.Options{
			Registry: settings.registry,
			Token:    settings.token,
			Cache:    respCache,
			CacheTTL: settings.cacheTTL,
			Refresh:  settings.refresh,
		}),
		Workspaces:  workspace.NewResolver(),
		Options:     config.NewLoader(settings.overrides, logger),
		Logger:      logger,
		Concurrency: settings.concurrency,
	})
	if err != nil {
		return err
	}

	printInfo(out, "TypeSync %s", buildinfo.Version)
	if settings.dry != dryOff {
		printInfo(out, "—— DRY RUN — will not modify file ——")
	}

	stats := newRunStats(logger)
	defer stats.register()()

	prog := newProgress(logger)
	stop := func() {}
	if logger.GetLevel() > LogDebug {
		stop = startSpinner(ctx, cmd.ErrOrStderr(), "Syncing type definitions in "+settings.path+"...")
	}
	result, err := syncer.Sync(ctx, settings.path, settings.dry != dryOff)
	stop()
	if err != nil {
		return err
	}
	prog.done(stats.summary())

	r := renderer{w: out, dry: settings.dry, verbose: logger.GetLevel() <= LogDebug}
	r.result(result)

	if settings.dry == dryFail && result.NewTypingsCount() > 0 {
		return errors.New(errors.ErrCodeChangesPending, "typings changed; check failed")
	}
	return nil
}
