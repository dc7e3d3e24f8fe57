package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/store"
)

func TestNewPollReportWriter(t *testing.T) {
	tests := []struct {
		name     string
		format   OutputFormat
		wantJSON bool
	}{
		{name: "JSON", format: FormatJSON, wantJSON: true},
		{name: "Console", format: FormatConsole, wantJSON: false},
		{name: "Unknown falls back to console", format: OutputFormat("csv"), wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewPollReportWriter(tt.format)
			_, isJSON := w.(*JSONPollWriter)
			if isJSON != tt.wantJSON {
				t.Errorf("NewPollReportWriter(%q) = %T", tt.format, w)
			}
		})
	}
}

func TestJSONPollWriter_Write(t *testing.T) {
	baseline := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "poll.json")

	report := &PollReport{
		View:        "dev_view",
		Rules:       []string{"vobs/proj"},
		Decision:    scm.BuildNow,
		Baseline:    &baseline,
		QuietPeriod: 5 * time.Minute,
		CheckedAt:   baseline.Add(time.Hour),
	}

	w := &JSONPollWriter{}
	if err := w.Write(report, OutputOptions{Format: FormatJSON, OutputPath: path}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got JSONPollReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Decision != "BUILD_NOW" {
		t.Errorf("Decision = %q, expected BUILD_NOW", got.Decision)
	}
	if got.Baseline == nil || *got.Baseline != baseline.Format(time.RFC3339) {
		t.Errorf("Baseline = %v, expected %s", got.Baseline, baseline.Format(time.RFC3339))
	}
	if got.QuietPeriod != "5m0s" {
		t.Errorf("QuietPeriod = %q, expected 5m0s", got.QuietPeriod)
	}
}

func TestJSONCheckoutWriter_Write(t *testing.T) {
	when := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
	path := filepath.Join(t.TempDir(), "checkout.json")

	report := &CheckoutReport{
		View:  "dev_view",
		Build: scm.BuildRef{ID: "b-7", Number: 7},
		Entries: []scm.ChangeEntry{
			{
				Time:    when,
				Author:  "tavakoli",
				Files:   []scm.FileElement{{Path: "vobs/a.c", Version: `\main\2`}},
				Comment: "fix",
			},
		},
		LatestCommit:  &when,
		ChangelogPath: "changelogs/7.xml",
	}

	w := &JSONCheckoutWriter{}
	if err := w.Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got JSONCheckoutReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.BuildNumber != 7 || got.BuildID != "b-7" {
		t.Errorf("build = #%d %q, expected #7 b-7", got.BuildNumber, got.BuildID)
	}
	if len(got.Entries) != 1 || len(got.Entries[0].Files) != 1 {
		t.Fatalf("Entries = %+v, expected one entry with one file", got.Entries)
	}
	if got.Entries[0].Time != when.Format(scm.TimestampLayout) {
		t.Errorf("entry time = %q, expected %q", got.Entries[0].Time, when.Format(scm.TimestampLayout))
	}
	if got.Entries[0].Files[0].Version != `\main\2` {
		t.Errorf("version = %q, expected %q", got.Entries[0].Files[0].Version, `\main\2`)
	}
}

func TestJSONBuildListWriter_Write(t *testing.T) {
	builtAt := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "builds.json")

	report := &BuildListReport{
		View: "dev_view",
		Builds: []*store.BuildRecord{
			{ID: "b-2", Number: 2, BuiltAt: builtAt, Entries: 3, ChangelogPath: "2.xml"},
			{ID: "b-1", Number: 1, BuiltAt: builtAt.Add(-time.Hour), Entries: 0, ChangelogPath: "1.xml"},
		},
	}

	w := &JSONBuildListWriter{}
	if err := w.Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got JSONBuildListReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Builds) != 2 {
		t.Fatalf("len(Builds) = %d, expected 2", len(got.Builds))
	}
	if got.Builds[0].LatestCommit != nil {
		t.Errorf("LatestCommit = %v, expected omitted for empty build", got.Builds[0].LatestCommit)
	}
}

func TestConsoleWriters_WriteToFile(t *testing.T) {
	when := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)

	t.Run("Poll", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "poll.txt")
		w := &ConsolePollWriter{}
		err := w.Write(&PollReport{
			View:      "dev_view",
			Rules:     []string{"vobs/proj"},
			Decision:  scm.NoChanges,
			CheckedAt: when,
		}, OutputOptions{OutputPath: path})
		if err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		assertFileContains(t, path, "dev_view")
	})

	t.Run("Checkout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "checkout.txt")
		w := &ConsoleCheckoutWriter{}
		err := w.Write(&CheckoutReport{
			View:  "dev_view",
			Build: scm.BuildRef{Number: 1},
			Entries: []scm.ChangeEntry{
				{Time: when, Author: "a", Files: []scm.FileElement{{Path: "vobs/a.c", Version: "1"}}, Comment: "multi\nline"},
			},
			ChangelogPath: "1.xml",
		}, OutputOptions{OutputPath: path})
		if err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		assertFileContains(t, path, "vobs/a.c")
	})

	t.Run("BuildList", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "builds.txt")
		w := &ConsoleBuildListWriter{}
		err := w.Write(&BuildListReport{
			View:   "dev_view",
			Builds: []*store.BuildRecord{{Number: 1, BuiltAt: when, ChangelogPath: "1.xml"}},
		}, OutputOptions{OutputPath: path})
		if err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		assertFileContains(t, path, "1.xml")
	})
}

func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("output %q does not contain %q", string(data), substr)
	}
}
