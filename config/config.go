// Package config holds the adapter's configuration surface: the view
// name, the load rules scoping history queries, and the backend
// selection for fetcher and build-state store.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fetcher kinds.
const (
	FetcherClearCase = "clearcase"
	FetcherGit       = "git"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the root configuration structure.
type Config struct {
	// ViewName is the ClearCase view the adapter works against.
	ViewName string `yaml:"viewName"`

	// LoadRules is a newline-delimited block of path scoping rules.
	LoadRules string `yaml:"loadRules"`

	// QuietPeriod is how long the newest remote change must rest
	// before a poll reports it buildable.
	QuietPeriod time.Duration `yaml:"quietPeriod"`

	// ChangelogDir is where checkout writes per-build changelog files.
	ChangelogDir string `yaml:"changelogDir"`

	Fetcher FetcherConfig `yaml:"fetcher"`
	Store   StoreConfig   `yaml:"store"`

	// Verbose switches the logger to development output.
	Verbose bool `yaml:"verbose"`
}

// FetcherConfig selects and configures the history fetcher backend.
type FetcherConfig struct {
	Kind string `yaml:"kind"` // clearcase or git

	// CleartoolPath overrides the cleartool executable; empty means
	// PATH lookup.
	CleartoolPath string `yaml:"cleartoolPath"`

	// ViewRoot is the directory the view is mounted under; cleartool
	// runs inside viewRoot/viewName.
	ViewRoot string `yaml:"viewRoot"`

	Mirror MirrorConfig `yaml:"mirror"`
}

// MirrorConfig configures the git mirror fetcher.
type MirrorConfig struct {
	Path   string `yaml:"path"`
	Branch string `yaml:"branch"`
}

// StoreConfig selects and configures the build-state store backend.
type StoreConfig struct {
	Kind string `yaml:"kind"` // memory, sqlite or redis

	// Path is the sqlite database file.
	Path string `yaml:"path"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the shared Redis store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		QuietPeriod:  5 * time.Minute,
		ChangelogDir: "changelogs",
		Fetcher: FetcherConfig{
			Kind: FetcherClearCase,
		},
		Store: StoreConfig{
			Kind: StoreSQLite,
			Path: "simpleclearcase.db",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "simpleclearcase",
			},
		},
	}
}

// Load reads configuration from a file, merging with defaults. An
// empty path tries the default locations; a missing file yields the
// defaults. Load does not validate: callers layer CLI overrides on top
// and then call Validate.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		candidates := []string{"simpleclearcase.yaml"}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, ".simpleclearcase.yaml"))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

var ruleSeparator = regexp.MustCompile(`[\r\n]+`)

// ParseLoadRules splits the newline-delimited rule block into trimmed,
// non-empty rules. Both line-ending conventions are accepted and runs
// of separators collapse.
func ParseLoadRules(s string) []string {
	var rules []string
	for _, part := range ruleSeparator.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			rules = append(rules, part)
		}
	}
	return rules
}

// FieldError is a validation error for one configuration field.
type FieldError struct {
	Field   string
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("invalid configuration: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid configuration (%d errors):", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a *ValidationError
// carrying every field error, or nil. It never shells out; the live
// view probe is a separate, explicit step.
func (c *Config) Validate() error {
	var errs []FieldError

	view := strings.TrimSpace(c.ViewName)
	if view == "" {
		errs = append(errs, FieldError{Field: "viewName", Message: "view name is required"})
	} else if strings.ContainsAny(view, " \t") {
		errs = append(errs, FieldError{Field: "viewName", Message: "view name must not contain whitespace"})
	}

	errs = append(errs, validateLoadRules(c.LoadRules)...)

	if c.QuietPeriod < 0 {
		errs = append(errs, FieldError{Field: "quietPeriod", Message: "quiet period must not be negative"})
	}

	switch c.Fetcher.Kind {
	case FetcherClearCase:
	case FetcherGit:
		if strings.TrimSpace(c.Fetcher.Mirror.Path) == "" {
			errs = append(errs, FieldError{Field: "fetcher.mirror.path", Message: "mirror path is required for the git fetcher"})
		}
	default:
		errs = append(errs, FieldError{Field: "fetcher.kind", Message: fmt.Sprintf("unknown fetcher kind %q", c.Fetcher.Kind)})
	}

	switch c.Store.Kind {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, FieldError{Field: "store.path", Message: "database path is required for the sqlite store"})
		}
	case StoreRedis:
		if strings.TrimSpace(c.Store.Redis.Addr) == "" {
			errs = append(errs, FieldError{Field: "store.redis.addr", Message: "redis address is required for the redis store"})
		}
	default:
		errs = append(errs, FieldError{Field: "store.kind", Message: fmt.Sprintf("unknown store kind %q", c.Store.Kind)})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validateLoadRules(block string) []FieldError {
	var errs []FieldError

	rules := ParseLoadRules(block)
	if len(rules) == 0 {
		return []FieldError{{Field: "loadRules", Message: "at least one load rule is required"}}
	}

	seen := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if strings.ContainsAny(rule, " \t") {
			errs = append(errs, FieldError{Field: "loadRules", Message: fmt.Sprintf("rule %q must not contain whitespace", rule)})
		}
		if seen[rule] {
			errs = append(errs, FieldError{Field: "loadRules", Message: fmt.Sprintf("rule %q is duplicated", rule)})
		}
		seen[rule] = true
	}
	return errs
}
