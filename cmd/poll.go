package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/szigetigabor/simpleclearcase-plugin/config"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/changelog"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/output"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/store"
)

// PollCmd creates the poll command: compare the recorded baseline with
// the remote state and report BUILD_NOW or NO_CHANGES.
func PollCmd() *cli.Command {
	return &cli.Command{
		Name:   "poll",
		Usage:  "Decide whether remote history has advanced past the last build",
		Flags:  commonFlags(),
		Action: pollAction,
	}
}

func pollAction(c *cli.Context) error {
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

	baseline, err := loadBaseline(c, st)
	if err != nil {
		return err
	}

	f, err := newFetcher(cfg, log)
	if err != nil {
		return err
	}

	engine := scm.NewEngine(f, changelog.FileWriter{}, log)
	now := time.Now()

	rules := config.ParseLoadRules(cfg.LoadRules)
	decision, err := engine.CompareBaseline(c.Context, scm.CompareParams{
		Baseline:    baseline,
		Rules:       rules,
		QuietPeriod: cfg.QuietPeriod,
		Now:         now,
	})
	if err != nil {
		return fmt.Errorf("polling failed: %w", err)
	}

	report := &output.PollReport{
		View:        cfg.ViewName,
		Rules:       rules,
		Decision:    decision,
		QuietPeriod: cfg.QuietPeriod,
		CheckedAt:   now,
	}
	if baseline != nil {
		t := baseline.Time
		report.Baseline = &t
	}

	return output.NewPollReportWriter(getOutputFormat(c.String("format"))).Write(report, outputOptions(c))
}

// loadBaseline derives the comparison baseline from the latest recorded
// build. No builds, or a latest build with an empty change set, means
// there is no baseline and the next poll always builds.
func loadBaseline(c *cli.Context, st store.Store) (*scm.RevisionState, error) {
	rec, err := st.LatestBuild(c.Context)
	if errors.Is(err, store.ErrNoBuilds) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest build: %w", err)
	}
	if rec.LatestCommit == nil {
		return nil, nil
	}
	return &scm.RevisionState{Time: *rec.LatestCommit}, nil
}
