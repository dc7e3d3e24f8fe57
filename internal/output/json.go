package output

import (
	"encoding/json"
	"time"

	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
)

// JSONPollWriter writes poll reports as JSON.
type JSONPollWriter struct{}

// JSONPollReport is the JSON output structure for a poll.
type JSONPollReport struct {
	View        string   `json:"view"`
	Rules       []string `json:"rules"`
	Decision    string   `json:"decision"`
	Baseline    *string  `json:"baseline,omitempty"`
	QuietPeriod string   `json:"quietPeriod"`
	CheckedAt   string   `json:"checkedAt"`
}

// Write outputs the poll report as JSON.
func (w *JSONPollWriter) Write(report *PollReport, options OutputOptions) error {
	out := JSONPollReport{
		View:        report.View,
		Rules:       report.Rules,
		Decision:    report.Decision.String(),
		Baseline:    jsonOptionalTime(report.Baseline),
		QuietPeriod: report.QuietPeriod.String(),
		CheckedAt:   report.CheckedAt.Format(time.RFC3339),
	}
	return writeJSON(out, options)
}

// JSONCheckoutWriter writes checkout reports as JSON.
type JSONCheckoutWriter struct{}

// JSONCheckoutReport is the JSON output structure for a checkout.
type JSONCheckoutReport struct {
	View          string      `json:"view"`
	BuildID       string      `json:"buildId"`
	BuildNumber   int         `json:"buildNumber"`
	LatestCommit  *string     `json:"latestCommit,omitempty"`
	ChangelogPath string      `json:"changelogPath"`
	Entries       []JSONEntry `json:"entries"`
}

// JSONEntry is the JSON output structure for one change entry.
type JSONEntry struct {
	Time    string     `json:"time"`
	Author  string     `json:"author"`
	Comment string     `json:"comment"`
	Files   []JSONFile `json:"files"`
}

// JSONFile is the JSON output structure for one file element.
type JSONFile struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Write outputs the checkout report as JSON.
func (w *JSONCheckoutWriter) Write(report *CheckoutReport, options OutputOptions) error {
	entries := make([]JSONEntry, 0, len(report.Entries))
	for _, e := range report.Entries {
		files := make([]JSONFile, 0, len(e.Files))
		for _, f := range e.Files {
			files = append(files, JSONFile{Path: f.Path, Version: f.Version})
		}
		entries = append(entries, JSONEntry{
			Time:    e.Time.Format(scm.TimestampLayout),
			Author:  e.Author,
			Comment: e.Comment,
			Files:   files,
		})
	}

	out := JSONCheckoutReport{
		View:          report.View,
		BuildID:       report.Build.ID,
		BuildNumber:   report.Build.Number,
		LatestCommit:  jsonOptionalTime(report.LatestCommit),
		ChangelogPath: report.ChangelogPath,
		Entries:       entries,
	}
	return writeJSON(out, options)
}

// JSONBuildListWriter writes build-list reports as JSON.
type JSONBuildListWriter struct{}

// JSONBuildListReport is the JSON output structure for a build list.
type JSONBuildListReport struct {
	View   string      `json:"view"`
	Builds []JSONBuild `json:"builds"`
}

// JSONBuild is the JSON output structure for one recorded build.
type JSONBuild struct {
	ID            string  `json:"id"`
	Number        int     `json:"number"`
	BuiltAt       string  `json:"builtAt"`
	LatestCommit  *string `json:"latestCommit,omitempty"`
	Entries       int     `json:"entries"`
	ChangelogPath string  `json:"changelogPath"`
}

// Write outputs the build-list report as JSON.
func (w *JSONBuildListWriter) Write(report *BuildListReport, options OutputOptions) error {
	builds := make([]JSONBuild, 0, len(report.Builds))
	for _, b := range report.Builds {
		builds = append(builds, JSONBuild{
			ID:            b.ID,
			Number:        b.Number,
			BuiltAt:       b.BuiltAt.Format(time.RFC3339),
			LatestCommit:  jsonOptionalTime(b.LatestCommit),
			Entries:       b.Entries,
			ChangelogPath: b.ChangelogPath,
		})
	}
	return writeJSON(JSONBuildListReport{View: report.View, Builds: builds}, options)
}

func writeJSON(v any, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
