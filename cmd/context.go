package cmd

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/szigetigabor/simpleclearcase-plugin/config"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/cleartool"
	gitpkg "github.com/szigetigabor/simpleclearcase-plugin/internal/git"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/logutil"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/output"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/store"
)

// loadConfig loads configuration from file or defaults and layers CLI
// flag overrides on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if view := c.String("view"); view != "" {
		cfg.ViewName = view
	}
	if rules := c.String("load-rules"); rules != "" {
		cfg.LoadRules = rules
	}
	if c.IsSet("quiet-period") {
		cfg.QuietPeriod = c.Duration("quiet-period")
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}

	return cfg, nil
}

// newLogger builds the logger the command and its collaborators share.
func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	return logutil.New(cfg.Verbose)
}

// fetcher bundles the two consumed tool contracts, which every backend
// implements together.
type fetcher interface {
	scm.HistoryFetcher
	scm.ViewChecker
}

// newFetcher creates the configured history fetcher backend.
func newFetcher(cfg *config.Config, log *zap.SugaredLogger) (fetcher, error) {
	switch cfg.Fetcher.Kind {
	case config.FetcherGit:
		return gitpkg.Open(cfg.Fetcher.Mirror.Path, cfg.Fetcher.Mirror.Branch, log)
	case config.FetcherClearCase:
		return cleartool.New(cfg.Fetcher.CleartoolPath, cfg.Fetcher.ViewRoot, cfg.ViewName, log), nil
	default:
		return nil, fmt.Errorf("unknown fetcher kind %q", cfg.Fetcher.Kind)
	}
}

// openStore creates the configured build-state store backend.
func openStore(cfg *config.Config, log *zap.SugaredLogger) (store.Store, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreSQLite:
		return store.OpenSQLite(cfg.Store.Path, log)
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		return store.NewRedisStore(client, cfg.Store.Redis.KeyPrefix, log), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	default:
		return output.FormatConsole
	}
}

// outputOptions assembles writer options from the shared flags.
func outputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		OutputPath: c.String("output"),
	}
}
