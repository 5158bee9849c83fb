package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pkrzeminski/autoinstaller/internal/install"
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

// Message types
type InstallStartMsg struct {
	Name  string
	Index int
	Total int
}

type InstallOutputMsg struct {
	Name string
	Line string
}

type InstallDoneMsg struct {
	Outcome install.Outcome
}

type AllDoneMsg struct {
	Outcomes []install.Outcome
}

// MarkersChangedMsg means an installed marker appeared or vanished
type MarkersChangedMsg struct{}

type TickMsg time.Time

type countdownMsg struct{}

// channelObserver forwards runner events into the bubbletea loop
type channelObserver struct {
	events chan<- tea.Msg
}

func (c channelObserver) InstallStarted(d workload.Descriptor, index, total int) {
	c.events <- InstallStartMsg{Name: d.Name, Index: index, Total: total}
}

func (c channelObserver) InstallOutput(d workload.Descriptor, line string) {
	c.events <- InstallOutputMsg{Name: d.Name, Line: line}
}

func (c channelObserver) InstallFinished(o install.Outcome) {
	c.events <- InstallDoneMsg{Outcome: o}
}

// waitForEvent blocks on the next runner event
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// waitForMarkers blocks on the next marker change
func waitForMarkers(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return MarkersChangedMsg{}
	}
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func countdownCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownMsg{}
	})
}
