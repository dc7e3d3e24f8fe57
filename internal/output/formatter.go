// Package output renders poll, checkout and build-list reports for the
// build server operator, on the console or as JSON.
package output

import (
	"time"

	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
	"github.com/szigetigabor/simpleclearcase-plugin/internal/store"
)

// Compile-time interface conformance checks.
var (
	_ PollReportWriter      = (*ConsolePollWriter)(nil)
	_ PollReportWriter      = (*JSONPollWriter)(nil)
	_ CheckoutReportWriter  = (*ConsoleCheckoutWriter)(nil)
	_ CheckoutReportWriter  = (*JSONCheckoutWriter)(nil)
	_ BuildListReportWriter = (*ConsoleBuildListWriter)(nil)
	_ BuildListReportWriter = (*JSONBuildListWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
}

// PollReport holds the result of one baseline comparison.
type PollReport struct {
	View        string
	Rules       []string
	Decision    scm.Decision
	Baseline    *time.Time
	QuietPeriod time.Duration
	CheckedAt   time.Time
}

// CheckoutReport holds the result of one checkout.
type CheckoutReport struct {
	View          string
	Build         scm.BuildRef
	Entries       []scm.ChangeEntry
	LatestCommit  *time.Time
	ChangelogPath string
}

// BuildListReport holds the recorded build history.
type BuildListReport struct {
	View   string
	Builds []*store.BuildRecord
}

// PollReportWriter writes poll reports.
type PollReportWriter interface {
	Write(report *PollReport, options OutputOptions) error
}

// CheckoutReportWriter writes checkout reports.
type CheckoutReportWriter interface {
	Write(report *CheckoutReport, options OutputOptions) error
}

// BuildListReportWriter writes build-list reports.
type BuildListReportWriter interface {
	Write(report *BuildListReport, options OutputOptions) error
}

// NewPollReportWriter creates a poll report writer for the format.
func NewPollReportWriter(format OutputFormat) PollReportWriter {
	switch format {
	case FormatJSON:
		return &JSONPollWriter{}
	default:
		return &ConsolePollWriter{}
	}
}

// NewCheckoutReportWriter creates a checkout report writer for the
// format.
func NewCheckoutReportWriter(format OutputFormat) CheckoutReportWriter {
	switch format {
	case FormatJSON:
		return &JSONCheckoutWriter{}
	default:
		return &ConsoleCheckoutWriter{}
	}
}

// NewBuildListReportWriter creates a build-list report writer for the
// format.
func NewBuildListReportWriter(format OutputFormat) BuildListReportWriter {
	switch format {
	case FormatJSON:
		return &JSONBuildListWriter{}
	default:
		return &ConsoleBuildListWriter{}
	}
}
