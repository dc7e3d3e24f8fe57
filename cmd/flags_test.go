package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/szigetigabor/simpleclearcase-plugin/config"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/output"
)

func TestGetOutputFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected output.OutputFormat
	}{
		{name: "JSON", input: "json", expected: output.FormatJSON},
		{name: "Console", input: "console", expected: output.FormatConsole},
		{name: "Empty defaults to console", input: "", expected: output.FormatConsole},
		{name: "Unknown defaults to console", input: "yaml", expected: output.FormatConsole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getOutputFormat(tt.input); got != tt.expected {
				t.Errorf("getOutputFormat(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func runWithFlags(t *testing.T, args []string) *config.Config {
	t.Helper()
	var got *config.Config
	app := &cli.App{
		Flags: commonFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			got = cfg
			return err
		},
	}
	if err := app.Run(append([]string{"test"}, args...)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return got
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "simpleclearcase.yaml")
	content := `viewName: file_view
loadRules: vobs/from-file
quietPeriod: 2m
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Run("File values without overrides", func(t *testing.T) {
		cfg := runWithFlags(t, []string{"--config", cfgPath})
		if cfg.ViewName != "file_view" {
			t.Errorf("ViewName = %q, expected %q", cfg.ViewName, "file_view")
		}
		if cfg.QuietPeriod != 2*time.Minute {
			t.Errorf("QuietPeriod = %v, expected 2m", cfg.QuietPeriod)
		}
	})

	t.Run("Flags override file", func(t *testing.T) {
		cfg := runWithFlags(t, []string{
			"--config", cfgPath,
			"--view", "flag_view",
			"--load-rules", "vobs/a\nvobs/b",
			"--quiet-period", "30s",
		})
		if cfg.ViewName != "flag_view" {
			t.Errorf("ViewName = %q, expected %q", cfg.ViewName, "flag_view")
		}
		if got := config.ParseLoadRules(cfg.LoadRules); len(got) != 2 {
			t.Errorf("rules = %v, expected two flag rules", got)
		}
		if cfg.QuietPeriod != 30*time.Second {
			t.Errorf("QuietPeriod = %v, expected 30s", cfg.QuietPeriod)
		}
	})
}

func TestNewFetcher_UnknownKind(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fetcher.Kind = "svn"
	if _, err := newFetcher(cfg, testLogger()); err == nil {
		t.Fatal("newFetcher() expected error for unknown kind")
	}
}

func TestOpenStore_Memory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Kind = config.StoreMemory
	st, err := openStore(cfg, testLogger())
	if err != nil {
		t.Fatalf("openStore() error: %v", err)
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}
