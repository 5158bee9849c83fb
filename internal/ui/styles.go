package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#5ADAFF") // Electric blue
	Secondary = lipgloss.Color("#E6FAFF") // Mostly-white blue
	Success   = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#DCCF71") // Yellow
	Error     = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#688B95") // Faded blue

	// Title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	// Header style for table columns
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	// Workload row styles
	SelectedStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	FlashStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	CursorStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	InstalledMark = lipgloss.NewStyle().
			Foreground(Warning).
			SetString("✓")

	// Suite radio styles
	RadioActive = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	RadioInactive = lipgloss.NewStyle().
			Foreground(Muted)

	// Status styles
	StatusPending = lipgloss.NewStyle().
			Foreground(Muted).
			SetString("○ Pending")

	StatusSucceeded = lipgloss.NewStyle().
			Foreground(Success).
			SetString("✓ Installed")

	StatusSkipped = lipgloss.NewStyle().
			Foreground(Muted).
			SetString("⊘ Skipped")

	StatusFailed = lipgloss.NewStyle().
			Foreground(Error).
			SetString("✗ Failed")

	StatusTimedOut = lipgloss.NewStyle().
			Foreground(Warning).
			SetString("⏱ Timed out")

	StatusCanceled = lipgloss.NewStyle().
			Foreground(Warning).
			SetString("⊘ Canceled")

	// Notice for preflight warnings
	NoticeStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// Box around installer output
	OutputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Foreground(Muted).
			Padding(0, 1)

	// Footer style
	FooterStyle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)

	// Progress bar styles
	ProgressFull = lipgloss.NewStyle().
			Foreground(Success)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Muted)

	// Spinner frames for animation
	SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
)
