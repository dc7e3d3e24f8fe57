package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/szigetigabor/simpleclearcase-plugin/config"
)

// ValidateCmd creates the validate command: the configuration-form
// surface. It checks the view name and load rules without touching the
// tool; --probe-view additionally asks the fetcher whether the view
// exists.
func ValidateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate view name and load rules",
		Flags: append(commonFlags(),
			&cli.BoolFlag{
				Name:  "probe-view",
				Usage: "Also check that the configured view exists",
			},
		),
		Action: validateAction,
	}
}

func validateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				color.Red("  %s: %s", fe.Field, fe.Message)
			}
			return fmt.Errorf("configuration is invalid (%d errors)", len(verr.Errors))
		}
		return err
	}

	if c.Bool("probe-view") {
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		f, err := newFetcher(cfg, log)
		if err != nil {
			return err
		}
		exists, err := f.ViewExists(c.Context, cfg.ViewName)
		if err != nil {
			return fmt.Errorf("view probe failed: %w", err)
		}
		if !exists {
			return fmt.Errorf("view %q does not exist", cfg.ViewName)
		}
	}

	color.Green("Configuration OK: view %q, %d load rules",
		cfg.ViewName, len(config.ParseLoadRules(cfg.LoadRules)))
	return nil
}
