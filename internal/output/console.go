package output

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
)

// ConsolePollWriter writes poll reports to the console.
type ConsolePollWriter struct{}

// Write outputs the poll report to the console.
func (w *ConsolePollWriter) Write(report *PollReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if report.Decision == scm.BuildNow {
		color.Green("Polling result: %s", report.Decision)
	} else {
		color.Yellow("Polling result: %s", report.Decision)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "View:\t%s\n", report.View)
	fmt.Fprintf(tw, "Load rules:\t%s\n", strings.Join(report.Rules, ", "))
	fmt.Fprintf(tw, "Baseline:\t%s\n", formatOptionalTime(report.Baseline))
	fmt.Fprintf(tw, "Quiet period:\t%s\n", report.QuietPeriod)
	fmt.Fprintf(tw, "Checked at:\t%s\n", formatTime(report.CheckedAt))
	return tw.Flush()
}

// ConsoleCheckoutWriter writes checkout reports to the console.
type ConsoleCheckoutWriter struct{}

// Write outputs the checkout report to the console.
func (w *ConsoleCheckoutWriter) Write(report *CheckoutReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	color.Green("Checkout complete: build #%d, %d entries", report.Build.Number, len(report.Entries))
	fmt.Fprintf(out, "View: %s\n", report.View)
	fmt.Fprintf(out, "Changelog: %s\n", report.ChangelogPath)
	fmt.Fprintf(out, "Latest commit: %s\n\n", formatOptionalTime(report.LatestCommit))

	if len(report.Entries) == 0 {
		fmt.Fprintln(out, "No changes since the previous build.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Time\tAuthor\tFile\tVersion\tComment")
	for _, e := range report.Entries {
		for _, f := range e.Files {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				formatTime(e.Time), e.Author, f.Path, f.Version, firstCommentLine(e.Comment))
		}
	}
	return tw.Flush()
}

// ConsoleBuildListWriter writes build-list reports to the console.
type ConsoleBuildListWriter struct{}

// Write outputs the build-list report to the console.
func (w *ConsoleBuildListWriter) Write(report *BuildListReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	color.Green("Recorded builds for %s: %d", report.View, len(report.Builds))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tBuilt at\tLatest commit\tEntries\tChangelog")
	for _, b := range report.Builds {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			b.Number, formatTime(b.BuiltAt), formatOptionalTime(b.LatestCommit), b.Entries, b.ChangelogPath)
	}
	return tw.Flush()
}

func firstCommentLine(comment string) string {
	if idx := strings.IndexByte(comment, '\n'); idx != -1 {
		return comment[:idx]
	}
	return comment
}
