package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkrzeminski/autoinstaller/internal/install"
	"github.com/pkrzeminski/autoinstaller/internal/platform"
)

// MarkdownReport summarizes one installation run
type MarkdownReport struct {
	RunID     string
	Platform  platform.Platform
	Results   []install.Outcome
	Generated time.Time
}

// NewMarkdownReport creates a new report generator with a fresh run ID
func NewMarkdownReport(p platform.Platform, results []install.Outcome) *MarkdownReport {
	return &MarkdownReport{
		RunID:     uuid.New().String(),
		Platform:  p,
		Results:   results,
		Generated: time.Now(),
	}
}

// Generate creates the markdown report
func (r *MarkdownReport) Generate() string {
	var b strings.Builder

	// Header
	b.WriteString("# Workload Installation Report\n\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Generated: %s\n", r.Generated.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Platform: %s\n", r.Platform))
	elevated := "no"
	if r.Platform.IsRoot {
		elevated = "yes"
	}
	b.WriteString(fmt.Sprintf("Elevated: %s\n", elevated))

	counts := install.Tally(r.Results)
	b.WriteString(fmt.Sprintf("Attempted: %d, succeeded: %d, failed: %d, timed out: %d\n",
		len(r.Results),
		counts[install.StatusSucceeded],
		counts[install.StatusFailed],
		counts[install.StatusTimedOut]))

	if len(r.Results) == 0 {
		b.WriteString("\nNothing was installed.\n")
		return b.String()
	}

	// Outcome table
	b.WriteString("\n## Workloads\n\n")
	b.WriteString("| Workload | Status | Exit code | Duration |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, result := range r.Results {
		exitCode := "-"
		if result.Status == install.StatusSucceeded || (result.Status == install.StatusFailed && result.ExitCode >= 0) {
			exitCode = fmt.Sprintf("%d", result.ExitCode)
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeCell(result.Name),
			result.Status,
			exitCode,
			result.Duration.Round(time.Millisecond)))
	}

	r.writeErrorsSection(&b)
	return b.String()
}

// WriteFile renders the report to path
func (r *MarkdownReport) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(r.Generate()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// writeErrorsSection lists failing installers with their stderr
func (r *MarkdownReport) writeErrorsSection(b *strings.Builder) {
	var failures []install.Outcome
	for _, result := range r.Results {
		if result.Status == install.StatusFailed || result.Status == install.StatusTimedOut {
			failures = append(failures, result)
		}
	}

	if len(failures) == 0 {
		return
	}

	b.WriteString("\n## Errors\n")
	for _, result := range failures {
		b.WriteString(fmt.Sprintf("\n### %s\n", result.Name))
		if result.Status == install.StatusTimedOut {
			b.WriteString("Installation time exceeded the timeout.\n")
			continue
		}
		b.WriteString(fmt.Sprintf("Error code %d\n", result.ExitCode))
		if result.Stderr != "" {
			b.WriteString("```\n")
			b.WriteString(result.Stderr)
			b.WriteString("\n```\n")
		}
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
