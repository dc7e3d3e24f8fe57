package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/szigetigabor/simpleclearcase-plugin/internal/output"
)

// BuildsCmd creates the builds command: list the recorded build
// watermarks from the state store.
func BuildsCmd() *cli.Command {
	return &cli.Command{
		Name:  "builds",
		Usage: "List recorded builds and their watermarks",
		Flags: append(commonFlags(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of builds to show (0 = all)",
				Value:   20,
			},
		),
		Action: buildsAction,
	}
}

func buildsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open build-state store: %w", err)
	}
	defer st.Close()

	builds, err := st.ListBuilds(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("list builds: %w", err)
	}

	report := &output.BuildListReport{View: cfg.ViewName, Builds: builds}
	return output.NewBuildListReportWriter(getOutputFormat(c.String("format"))).Write(report, outputOptions(c))
}
