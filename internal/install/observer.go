package install

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

// ConsoleObserver prints run progress for headless mode
type ConsoleObserver struct {
	Out io.Writer
}

// NewConsoleObserver creates an observer writing to out
func NewConsoleObserver(out io.Writer) *ConsoleObserver {
	return &ConsoleObserver{Out: out}
}

func (c *ConsoleObserver) InstallStarted(d workload.Descriptor, index, total int) {
	_, _ = fmt.Fprintln(c.Out, color.CyanString("[%d/%d] Running %s installer...", index+1, total, d.Name))
}

func (c *ConsoleObserver) InstallOutput(_ workload.Descriptor, line string) {
	_, _ = fmt.Fprintf(c.Out, "    %s\n", line)
}

func (c *ConsoleObserver) InstallFinished(o Outcome) {
	_, _ = fmt.Fprintln(c.Out, StatusLine(o))
	if o.Status == StatusFailed && o.Stderr != "" {
		for _, line := range strings.Split(o.Stderr, "\n") {
			_, _ = fmt.Fprintln(c.Out, color.RedString("    %s", line))
		}
	}
}

// StatusLine renders a one-line colored outcome
func StatusLine(o Outcome) string {
	switch o.Status {
	case StatusSucceeded:
		return color.GreenString("  ✓ %s", o.Name)
	case StatusFailed:
		return color.RedString("  ✗ %s (error code %d)", o.Name, o.ExitCode)
	case StatusTimedOut:
		return color.YellowString("  ⏱ %s (timed out)", o.Name)
	case StatusSkipped:
		return color.HiBlackString("  ⊘ %s (already installed)", o.Name)
	case StatusCanceled:
		return color.YellowString("  ⊘ %s (canceled)", o.Name)
	default:
		return fmt.Sprintf("  ? %s", o.Name)
	}
}

// MultiObserver fans events out to several observers
type MultiObserver []Observer

func (m MultiObserver) InstallStarted(d workload.Descriptor, index, total int) {
	for _, o := range m {
		o.InstallStarted(d, index, total)
	}
}

func (m MultiObserver) InstallOutput(d workload.Descriptor, line string) {
	for _, o := range m {
		o.InstallOutput(d, line)
	}
}

func (m MultiObserver) InstallFinished(outcome Outcome) {
	for _, o := range m {
		o.InstallFinished(outcome)
	}
}
