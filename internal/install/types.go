package install

import (
	"time"

	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

// Status represents the state of one workload in a run
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusTimedOut
	StatusSkipped
	StatusCanceled
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusRunning:
		return "Running"
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	case StatusTimedOut:
		return "Timed out"
	case StatusSkipped:
		return "Skipped"
	case StatusCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Outcome is the terminal result of one installer
type Outcome struct {
	Name     string
	Status   Status
	ExitCode int
	Stderr   string // only set for failures
	Duration time.Duration
}

// TimedOut reports whether the installer was killed by the deadline
func (o Outcome) TimedOut() bool {
	return o.Status == StatusTimedOut
}

// Observer receives progress while a run is in flight. Methods are called on
// the goroutine running Run.
type Observer interface {
	InstallStarted(d workload.Descriptor, index, total int)
	InstallOutput(d workload.Descriptor, line string)
	InstallFinished(o Outcome)
}

type nopObserver struct{}

func (nopObserver) InstallStarted(workload.Descriptor, int, int) {}
func (nopObserver) InstallOutput(workload.Descriptor, string)    {}
func (nopObserver) InstallFinished(Outcome)                      {}

// Tally counts outcomes by status
func Tally(outcomes []Outcome) map[Status]int {
	counts := make(map[Status]int)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}
