package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.ViewName = "dev_view"
	cfg.LoadRules = "vobs/proj\nvobs/libs"
	return cfg
}

func TestParseLoadRules(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "Empty string", input: "", expected: nil},
		{name: "Single rule", input: "vobs/proj", expected: []string{"vobs/proj"}},
		{name: "Unix newlines", input: "a\nb\nc", expected: []string{"a", "b", "c"}},
		{name: "Mixed line endings and empties", input: "a\r\nb\n\nc", expected: []string{"a", "b", "c"}},
		{name: "Whitespace-only segments dropped", input: "a\n   \nb", expected: []string{"a", "b"}},
		{name: "Rules trimmed", input: "  a  \n\tb\t", expected: []string{"a", "b"}},
		{name: "Trailing newline", input: "a\nb\n", expected: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLoadRules(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseLoadRules(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRapidParseLoadRules_NeverEmptyOrUntrimmed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteString(rapid.StringMatching(`[a-z/ ]{0,6}`).Draw(t, "segment"))
			sb.WriteString(rapid.SampledFrom([]string{"\n", "\r\n", "\r", "\n\n"}).Draw(t, "sep"))
		}

		for _, rule := range ParseLoadRules(sb.String()) {
			if rule == "" {
				t.Fatal("ParseLoadRules produced an empty rule")
			}
			if rule != strings.TrimSpace(rule) {
				t.Fatalf("ParseLoadRules produced untrimmed rule %q", rule)
			}
		}
	})
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, expected nil", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "Empty view name", mutate: func(c *Config) { c.ViewName = "  " }, field: "viewName"},
		{name: "View name with space", mutate: func(c *Config) { c.ViewName = "dev view" }, field: "viewName"},
		{name: "Empty load rules", mutate: func(c *Config) { c.LoadRules = "\n\n" }, field: "loadRules"},
		{name: "Rule with internal space", mutate: func(c *Config) { c.LoadRules = "a b" }, field: "loadRules"},
		{name: "Duplicate rules after trim", mutate: func(c *Config) { c.LoadRules = "a\na" }, field: "loadRules"},
		{name: "Duplicate with padding", mutate: func(c *Config) { c.LoadRules = " a \na" }, field: "loadRules"},
		{name: "Negative quiet period", mutate: func(c *Config) { c.QuietPeriod = -time.Second }, field: "quietPeriod"},
		{name: "Unknown fetcher kind", mutate: func(c *Config) { c.Fetcher.Kind = "svn" }, field: "fetcher.kind"},
		{name: "Git fetcher without mirror path", mutate: func(c *Config) { c.Fetcher.Kind = FetcherGit }, field: "fetcher.mirror.path"},
		{name: "Unknown store kind", mutate: func(c *Config) { c.Store.Kind = "dynamo" }, field: "store.kind"},
		{name: "SQLite store without path", mutate: func(c *Config) { c.Store.Path = "" }, field: "store.path"},
		{name: "Redis store without addr", mutate: func(c *Config) {
			c.Store.Kind = StoreRedis
			c.Store.Redis.Addr = ""
		}, field: "store.redis.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, expected error")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Validate() returned %T, expected *ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.ViewName = ""
	cfg.LoadRules = ""
	cfg.QuietPeriod = -time.Minute

	err := cfg.Validate()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("Validate() returned %T, expected *ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("len(Errors) = %d, expected 3: %v", len(verr.Errors), verr.Errors)
	}
	if !strings.Contains(verr.Error(), "3 errors") {
		t.Errorf("Error() = %q, expected aggregate message", verr.Error())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.QuietPeriod != 5*time.Minute {
		t.Errorf("QuietPeriod = %v, expected 5m default", cfg.QuietPeriod)
	}
	if cfg.Fetcher.Kind != FetcherClearCase {
		t.Errorf("Fetcher.Kind = %q, expected %q", cfg.Fetcher.Kind, FetcherClearCase)
	}
	if cfg.Store.Kind != StoreSQLite {
		t.Errorf("Store.Kind = %q, expected %q", cfg.Store.Kind, StoreSQLite)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simpleclearcase.yaml")
	content := `viewName: dev_view
loadRules: |
  vobs/proj
  vobs/libs
quietPeriod: 10m
fetcher:
  kind: git
  mirror:
    path: /srv/mirror
    branch: main
store:
  kind: redis
  redis:
    addr: redis:6379
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ViewName != "dev_view" {
		t.Errorf("ViewName = %q, expected %q", cfg.ViewName, "dev_view")
	}
	if got := ParseLoadRules(cfg.LoadRules); !reflect.DeepEqual(got, []string{"vobs/proj", "vobs/libs"}) {
		t.Errorf("rules = %v, expected two rules", got)
	}
	if cfg.QuietPeriod != 10*time.Minute {
		t.Errorf("QuietPeriod = %v, expected 10m", cfg.QuietPeriod)
	}
	if cfg.Fetcher.Kind != FetcherGit || cfg.Fetcher.Mirror.Path != "/srv/mirror" {
		t.Errorf("Fetcher = %+v, expected git mirror at /srv/mirror", cfg.Fetcher)
	}
	if cfg.Store.Kind != StoreRedis || cfg.Store.Redis.Addr != "redis:6379" {
		t.Errorf("Store = %+v, expected redis at redis:6379", cfg.Store)
	}
	// Defaults survive partial files.
	if cfg.ChangelogDir != "changelogs" {
		t.Errorf("ChangelogDir = %q, expected default", cfg.ChangelogDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, expected nil", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("viewName: [unclosed"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for malformed YAML")
	}
}
