package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/csp2hub/plugin-repository/internal/domain"
	"github.com/csp2hub/plugin-repository/internal/linkcheck"
	"github.com/csp2hub/plugin-repository/internal/manifest"
	"github.com/csp2hub/plugin-repository/internal/validate"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()

	boldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	boldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
	boldCyan  = color.New(color.Bold, color.FgCyan).SprintFunc()
)

const rule = "=================================================="

// printer renders human summaries; structured detail goes to the logger
type printer struct {
	out io.Writer
}

func (p printer) line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p printer) text(s string) {
	fmt.Fprintln(p.out, s)
}

func (p printer) banner(title string) {
	p.text("")
	p.text(boldCyan("== " + title + " =="))
}

func (p printer) generated(result *manifest.Result, path string) {
	stats := result.Manifest.Statistics

	for _, s := range result.Skipped {
		p.line("%s %s: %s", yellow("-"), s.ID, s.Reason)
	}
	for _, d := range result.Downgrades {
		p.line("%s %s: version went from %s to %s", yellow("!"), d.ID, d.Previous, d.Current)
	}
	for _, e := range result.LoadErrors {
		p.line("%s %s: %s", red("x"), e.FilePath, e.Error)
	}

	p.text("")
	p.text(boldGreen("Manifest generated successfully"))
	p.text("Statistics:")
	p.line("   - Total plugins: %d", stats.TotalPlugins)
	p.line("   - Verified plugins: %d", stats.VerifiedPlugins)
	p.line("   - Active authors: %d", stats.ActiveAuthors)
	if n := len(result.Skipped); n > 0 {
		p.line("   - Skipped: %s", yellow(n))
	}
	p.text("")
	p.line("Output: %s", path)
}

func (p printer) validation(report *validate.Report) {
	p.banner("Validating Plugin Configurations")

	for _, problem := range report.Problems {
		p.line("%s %s", red("x"), problem.Message)
	}

	for _, f := range report.Plugins {
		p.text("")
		p.line("%s Validating %s...", blue(">"), bold(f.Name))
		for _, e := range f.Errors {
			p.line("%s %s", red("x"), e.Message)
		}
		for _, w := range f.Warnings {
			p.line("%s %s", yellow("!"), w.Message)
		}
		if f.Valid() && len(f.Warnings) == 0 {
			p.line("%s Valid", green("v"))
		}
	}

	if len(report.Plugins) > 0 {
		p.text("")
		p.text(bold("Summary:"))
		p.line("   Total files: %d", len(report.Plugins))
		p.line("   %s: %d", green("Valid"), report.ValidFiles())
		p.line("   %s: %d", red("Errors"), report.Errors()-len(report.Manifest.Errors)-len(report.Problems))
		p.line("   %s: %d", yellow("Warnings"), report.Warnings())
	}

	p.banner("Validating Manifest")
	m := report.Manifest
	switch {
	case !m.Present:
		p.line("%s Manifest not yet generated (%s)", yellow("!"), m.Path)
	case !m.Valid():
		p.line("%s Manifest validation failed:", red("x"))
		for _, e := range m.Errors {
			p.line("  %s %s", red("*"), e.Message)
		}
	default:
		p.line("%s Manifest is valid", green("v"))
		p.line("   Version: %s", m.Summary.Version)
		p.line("   Plugins: %d", m.Summary.Plugins)
		p.line("   Last updated: %s", m.Summary.LastUpdated)
	}

	p.text("")
	p.text(bold(rule))
	if report.Passed() {
		p.text(boldGreen("All validations passed!"))
		if n := report.Warnings(); n > 0 {
			p.text(yellow(fmt.Sprintf("%d warning(s) found - please review", n)))
		}
		return
	}
	p.text(boldRed("Validation failed!"))
	p.text(red(fmt.Sprintf("   %d error(s) found", report.Errors())))
	if n := report.Warnings(); n > 0 {
		p.text(yellow(fmt.Sprintf("   %d warning(s) found", n)))
	}
}

func (p printer) pluginLinks(entry domain.PluginEntry, results []linkcheck.Result) {
	p.text("")
	p.line("%s %s (%s)", blue(">"), bold(entry.Name), entry.ID)
	for _, r := range results {
		label := fmt.Sprintf("%s: %s", strings.ToUpper(r.Kind[:1])+r.Kind[1:], r.URL)
		if r.OK {
			p.line("%s %s", green("v"), label)
			continue
		}
		p.line("%s %s - %s", red("x"), label, r.Describe())
	}
}

func (p printer) linkSummary(summary *linkcheck.Summary) {
	p.text("")
	p.text(bold(rule))
	p.text(bold("Summary:"))
	p.line("   Total checks: %d", summary.Total)
	p.line("   %s: %d", green("Passed"), summary.Passed())
	p.line("   %s: %d", red("Failed"), summary.Failed)

	if summary.OK() {
		p.text(boldGreen("All links are accessible!"))
		return
	}
	p.text(boldRed("Some links are not accessible!"))
	p.text(yellow("   This might be due to network issues, rate limiting or moved resources"))
}
