package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/szigetigabor/simpleclearcase-plugin/config"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/changelog"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/output"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/store"
)

// CheckoutCmd creates the checkout command: fetch the history since the
// last build, write the changelog and record the new watermark.
func CheckoutCmd() *cli.Command {
	return &cli.Command{
		Name:   "checkout",
		Usage:  "Fetch incremental change history and write the changelog",
		Flags:  commonFlags(),
		Action: checkoutAction,
	}
}

func checkoutAction(c *cli.Context) error {
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

	prev, err := st.LatestBuild(c.Context)
	if errors.Is(err, store.ErrNoBuilds) {
		prev = nil
	} else if err != nil {
		return fmt.Errorf("load latest build: %w", err)
	}

	f, err := newFetcher(cfg, log)
	if err != nil {
		return err
	}

	build := scm.BuildRef{ID: uuid.NewString(), Number: nextNumber(prev)}

	if err := os.MkdirAll(cfg.ChangelogDir, 0o755); err != nil {
		return fmt.Errorf("create changelog dir: %w", err)
	}
	changelogPath := filepath.Join(cfg.ChangelogDir, fmt.Sprintf("changelog-%d.xml", build.Number))

	engine := scm.NewEngine(f, changelog.FileWriter{}, log)
	set, err := engine.Checkout(c.Context, scm.CheckoutParams{
		Build:         build,
		Previous:      previousChangeSet(prev, log),
		Rules:         config.ParseLoadRules(cfg.LoadRules),
		ChangelogPath: changelogPath,
	})
	if err != nil {
		return fmt.Errorf("checkout failed: %w", err)
	}

	rec := &store.BuildRecord{
		ID:            build.ID,
		Number:        build.Number,
		BuiltAt:       time.Now(),
		Entries:       len(set.Entries),
		ChangelogPath: changelogPath,
	}
	if latest, ok := set.LatestCommit(); ok {
		rec.LatestCommit = &latest
	}
	if err := st.SaveBuild(c.Context, rec); err != nil {
		return fmt.Errorf("record build: %w", err)
	}

	report := &output.CheckoutReport{
		View:          cfg.ViewName,
		Build:         build,
		Entries:       set.Entries,
		LatestCommit:  rec.LatestCommit,
		ChangelogPath: changelogPath,
	}
	return output.NewCheckoutReportWriter(getOutputFormat(c.String("format"))).Write(report, outputOptions(c))
}

func nextNumber(prev *store.BuildRecord) int {
	if prev == nil {
		return 1
	}
	return prev.Number + 1
}

// previousChangeSet reconstructs the last build's change set from its
// changelog file, so the engine can bound the fetch by its latest
// commit. When the file is gone the recorded watermark alone stands in
// for the set.
func previousChangeSet(prev *store.BuildRecord, log *zap.SugaredLogger) *scm.ChangeSet {
	if prev == nil {
		return nil
	}

	if prev.ChangelogPath != "" {
		entries, err := changelog.ReadFile(prev.ChangelogPath)
		if err == nil {
			return &scm.ChangeSet{
				Build:   scm.BuildRef{ID: prev.ID, Number: prev.Number},
				Entries: entries,
			}
		}
		log.Warnw("cannot read previous changelog, falling back to recorded watermark",
			"path", prev.ChangelogPath, "error", err)
	}

	if prev.LatestCommit == nil {
		return nil
	}
	return &scm.ChangeSet{
		Build:   scm.BuildRef{ID: prev.ID, Number: prev.Number},
		Entries: []scm.ChangeEntry{{Time: *prev.LatestCommit}},
	}
}
