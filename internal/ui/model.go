package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/pkrzeminski/autoinstaller/internal/humantime"
	"github.com/pkrzeminski/autoinstaller/internal/install"
	"github.com/pkrzeminski/autoinstaller/internal/selection"
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

const (
	flashTicks   = 6
	outputLines  = 8
	nameColWidth = 36
)

const (
	NothingSelectedNotice = "No workloads are selected!"
	AllInstalledNotice    = "All selected workloads are already installed!"
	CompletedText         = "All selected installations have completed."
	AbortedText           = "User activity detected. Auto-start aborted."
	AutoStartingText      = "Auto-starting installations..."
	FinishedCountdownText = "Installations complete."
)

type phase int

const (
	phaseChoosing phase = iota
	phaseInstalling
	phaseDone
)

// Options configures the chooser
type Options struct {
	// AutoStartSeconds starts installation after a countdown when positive.
	AutoStartSeconds int
	// CloseAfterInstall quits as soon as the run finishes.
	CloseAfterInstall bool
	// MarkerChanges triggers a redraw when installed markers change.
	MarkerChanges <-chan struct{}
}

// Model represents the UI state
type Model struct {
	state  *selection.State
	runner *install.Runner
	opts   Options
	keys   keyMap
	help   help.Model

	phase    phase
	cursor   int
	notice   string
	flash    map[string]int
	quitting bool
	width    int

	countdown     int
	countdownText string

	// Run state
	rows       []install.Outcome
	rowIndex   map[string]int
	current    string
	output     []string
	completed  int
	startTime  time.Time
	spinnerIdx int
	events     <-chan tea.Msg
	cancel     context.CancelFunc
	outcomes   []install.Outcome
	canceled   bool
}

// NewModel creates a chooser over the given selection state
func NewModel(state *selection.State, runner *install.Runner, opts Options) Model {
	m := Model{
		state:    state,
		runner:   runner,
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		flash:    make(map[string]int),
		rowIndex: make(map[string]int),
		width:    80,
	}
	if opts.AutoStartSeconds > 0 {
		m.countdown = opts.AutoStartSeconds
		m.countdownText = "Auto-start in " + humantime.Format(opts.AutoStartSeconds)
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.countdown > 0 {
		cmds = append(cmds, countdownCmd())
	}
	if c := waitForMarkers(m.opts.MarkerChanges); c != nil {
		cmds = append(cmds, c)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case TickMsg:
		m.spinnerIdx = (m.spinnerIdx + 1) % len(SpinnerFrames)
		for name, left := range m.flash {
			if left <= 1 {
				delete(m.flash, name)
			} else {
				m.flash[name] = left - 1
			}
		}
		if m.phase != phaseDone {
			return m, tickCmd()
		}

	case countdownMsg:
		if m.phase != phaseChoosing || m.countdown <= 0 {
			return m, nil
		}
		m.countdown--
		if m.countdown > 0 {
			m.countdownText = "Auto-start in " + humantime.Format(m.countdown)
			return m, countdownCmd()
		}
		m.countdownText = AutoStartingText
		return m.install()

	case MarkersChangedMsg:
		// The view re-reads markers on render; just keep listening.
		return m, waitForMarkers(m.opts.MarkerChanges)

	case InstallStartMsg:
		m.current = msg.Name
		m.output = nil
		if idx, ok := m.rowIndex[msg.Name]; ok {
			m.rows[idx].Status = install.StatusRunning
		}
		return m, waitForEvent(m.events)

	case InstallOutputMsg:
		m.output = append(m.output, msg.Line)
		if len(m.output) > outputLines {
			m.output = m.output[len(m.output)-outputLines:]
		}
		return m, waitForEvent(m.events)

	case InstallDoneMsg:
		if idx, ok := m.rowIndex[msg.Outcome.Name]; ok {
			m.rows[idx] = msg.Outcome
			m.completed++
		}
		return m, waitForEvent(m.events)

	case AllDoneMsg:
		m.phase = phaseDone
		m.current = ""
		m.outcomes = msg.Outcomes
		if m.cancel != nil {
			m.cancel()
		}
		if m.opts.CloseAfterInstall && !m.canceled {
			return m, tea.Quit
		}
		if m.countdownText != "" {
			m.countdownText = FinishedCountdownText
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseInstalling:
		if key.Matches(msg, m.keys.Cancel) && m.cancel != nil {
			m.canceled = true
			m.cancel()
		}
		return m, nil

	case phaseDone:
		switch msg.String() {
		case "enter", " ", "space", "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	// Any key press counts as user activity
	m.abortCountdown()

	descriptors := m.state.Descriptors()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(descriptors)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if len(descriptors) > 0 {
			name := descriptors[m.cursor].Name
			m.flash[name] = flashTicks
			if m.state.Toggle(name) {
				m.notice = ""
			}
		}

	case key.Matches(msg, m.keys.NextSuite):
		return m.selectSuite(m.suiteOffset(1))

	case key.Matches(msg, m.keys.PrevSuite):
		return m.selectSuite(m.suiteOffset(-1))

	case key.Matches(msg, m.keys.Install):
		return m.install()

	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			suites := m.pickableSuites()
			if idx := int(s[0] - '1'); idx < len(suites) {
				return m.selectSuite(suites[idx])
			}
		}
	}

	return m, nil
}

// abortCountdown cancels a pending auto-start
func (m *Model) abortCountdown() {
	if m.countdown > 0 {
		m.countdown = 0
		m.countdownText = AbortedText
	}
}

// pickableSuites lists the suites a user can apply directly; Custom is only
// reached by toggling a workload.
func (m Model) pickableSuites() []selection.Suite {
	var out []selection.Suite
	for _, s := range m.state.Catalog().Suites() {
		if s != selection.Custom {
			out = append(out, s)
		}
	}
	return out
}

// suiteOffset returns the suite delta steps away from the active one
func (m Model) suiteOffset(delta int) selection.Suite {
	suites := m.pickableSuites()
	current := -1
	for i, s := range suites {
		if s == m.state.Active() {
			current = i
			break
		}
	}
	if current < 0 {
		if delta > 0 {
			return suites[0]
		}
		return suites[len(suites)-1]
	}
	return suites[(current+delta+len(suites))%len(suites)]
}

func (m Model) selectSuite(s selection.Suite) (tea.Model, tea.Cmd) {
	flagged, err := m.state.Select(s)
	if err != nil {
		// Only catalog suites are offered, so this is a programming error
		panic(err)
	}
	m.notice = ""
	for _, name := range flagged {
		m.flash[name] = flashTicks
	}
	return m, nil
}

// install runs the preflight check and starts the runner in the background
func (m Model) install() (tea.Model, tea.Cmd) {
	queue, err := m.state.Queue()
	switch {
	case errors.Is(err, selection.ErrNothingSelected):
		m.notice = NothingSelectedNotice
		return m, nil
	case errors.Is(err, selection.ErrAllInstalled):
		m.notice = AllInstalledNotice
		return m, nil
	}

	m.notice = ""
	m.phase = phaseInstalling
	m.startTime = time.Now()
	m.rows = make([]install.Outcome, len(queue))
	m.rowIndex = make(map[string]int, len(queue))
	for i, d := range queue {
		m.rows[i] = install.Outcome{Name: d.Name, Status: install.StatusPending}
		m.rowIndex[d.Name] = i
	}

	events := make(chan tea.Msg, 128)
	ctx, cancel := context.WithCancel(context.Background())
	m.events = events
	m.cancel = cancel

	runner := *m.runner
	obs := install.Observer(channelObserver{events: events})
	if m.runner.Observer != nil {
		obs = install.MultiObserver{m.runner.Observer, obs}
	}
	runner.Observer = obs

	go func(queue []workload.Descriptor) {
		outcomes := runner.Run(ctx, queue)
		events <- AllDoneMsg{Outcomes: outcomes}
		close(events)
	}(queue)

	return m, waitForEvent(events)
}

// Outcomes returns the results of the finished run, if any
func (m Model) Outcomes() []install.Outcome {
	return m.outcomes
}

// Quitting reports whether the user left without installing
func (m Model) Quitting() bool {
	return m.quitting
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return "\n  Installation cancelled.\n\n"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("⚙ Workload Installer"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseChoosing:
		b.WriteString(m.renderChooser())
	default:
		b.WriteString(m.renderRun())
	}

	return b.String()
}

func (m Model) renderChooser() string {
	var b strings.Builder

	descriptors := m.state.Descriptors()
	for i, d := range descriptors {
		b.WriteString(m.renderWorkloadRow(i, d))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("  " + m.renderSuites())
	b.WriteString("\n\n")
	b.WriteString("  " + m.state.Summary())
	b.WriteString("\n")

	if m.countdownText != "" {
		b.WriteString("  " + m.countdownText + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n  " + NoticeStyle.Render(m.notice) + "\n")
	}
	if len(descriptors) > 0 {
		if tip := descriptors[m.cursor].Tooltip; tip != "" {
			b.WriteString(FooterStyle.Render("  " + tip))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}

// renderWorkloadRow renders one checkbox line
func (m Model) renderWorkloadRow(i int, d workload.Descriptor) string {
	cursor := "  "
	if i == m.cursor {
		cursor = CursorStyle.Render("› ")
	}

	installed := d.IsInstalled()
	selected := m.state.IsSelected(d.Name)

	box := "[ ]"
	if selected {
		box = "[x]"
	}
	mark := " "
	if installed {
		mark = InstalledMark.String()
	}


	style := UnselectedStyle
	switch {
	case m.flash[d.Name] > 0:
		style = FlashStyle
	case selected || installed:
		style = SelectedStyle
	}

	line := fmt.Sprintf("%s %s %s %6s", box, mark, fitName(d.Name, nameColWidth-2, nameColWidth), humantime.Estimate(d.EstimatedSeconds))
	return cursor + style.Render(line)
}

// renderSuites renders the suite radio row
func (m Model) renderSuites() string {
	var parts []string
	for _, s := range m.state.Catalog().Suites() {
		if s == m.state.Active() {
			parts = append(parts, RadioActive.Render("(•) "+string(s)))
		} else {
			parts = append(parts, RadioInactive.Render("( ) "+string(s)))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderRun() string {
	var b strings.Builder

	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")

	if m.phase == phaseInstalling && len(m.output) > 0 {
		b.WriteString("\n")
		b.WriteString(OutputStyle.Render(strings.Join(m.output, "\n")))
		b.WriteString("\n")
	}

	elapsed := time.Since(m.startTime).Round(time.Second)
	b.WriteString(FooterStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)))

	if m.phase == phaseDone {
		b.WriteString("\n\n")
		if m.countdownText != "" {
			b.WriteString("  " + m.countdownText + "\n")
		}
		done := lipgloss.NewStyle().Foreground(Success).Bold(true).Render(CompletedText)
		if m.canceled {
			done = NoticeStyle.Render("Installation run aborted.")
		}
		b.WriteString("  " + done + "\n\n")
		b.WriteString(FooterStyle.Render("Press Enter to exit..."))
		b.WriteString("\n")
	} else {
		b.WriteString("\n" + FooterStyle.Render("ctrl+c aborts the run"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderProgress renders the progress bar
func (m Model) renderProgress() string {
	total := len(m.rows)
	percent := 0
	if total > 0 {
		percent = m.completed * 100 / total
	}

	barWidth := 40
	filled := barWidth * m.completed / max(total, 1)
	empty := barWidth - filled

	bar := ProgressFull.Render(strings.Repeat("█", filled)) +
		ProgressEmpty.Render(strings.Repeat("░", empty))

	return fmt.Sprintf("  Progress: [%s] %d/%d (%d%%)", bar, m.completed, total, percent)
}

// renderTable renders the workload status table
func (m Model) renderTable() string {
	var rows []string

	header := fmt.Sprintf("  %-*s %-14s %-10s",
		nameColWidth+4,
		HeaderStyle.Render("Workload"),
		HeaderStyle.Render("Status"),
		HeaderStyle.Render("Duration"))
	rows = append(rows, header)
	rows = append(rows, "  "+strings.Repeat("─", nameColWidth+28))

	for _, row := range m.rows {
		rows = append(rows, m.renderOutcomeRow(row))
	}

	return strings.Join(rows, "\n")
}

// renderOutcomeRow renders a single workload row
func (m Model) renderOutcomeRow(o install.Outcome) string {
	var status string
	switch o.Status {
	case install.StatusPending:
		status = StatusPending.String()
	case install.StatusRunning:
		spinner := lipgloss.NewStyle().Foreground(Warning).Render(SpinnerFrames[m.spinnerIdx])
		status = spinner + " Installing"
	case install.StatusSucceeded:
		status = StatusSucceeded.String()
	case install.StatusFailed:
		status = StatusFailed.String() + fmt.Sprintf(" (%d)", o.ExitCode)
	case install.StatusTimedOut:
		status = StatusTimedOut.String()
	case install.StatusSkipped:
		status = StatusSkipped.String()
	case install.StatusCanceled:
		status = StatusCanceled.String()
	}

	duration := ""
	if o.Duration > 0 {
		duration = o.Duration.Round(time.Millisecond).String()
	}

	return fmt.Sprintf("  %s %-14s %-10s", fitName(o.Name, nameColWidth+2, nameColWidth+2), status, duration)
}

// fitName truncates name to limit display cells and pads it to width
func fitName(name string, limit, width int) string {
	return runewidth.FillRight(runewidth.Truncate(name, limit, "..."), width)
}
