package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkrzeminski/autoinstaller/internal/install"
	"github.com/pkrzeminski/autoinstaller/internal/platform"
	"github.com/pkrzeminski/autoinstaller/internal/selection"
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

// newTestModel registers n workloads whose installers create their marker.
// Workloads listed in installed start out installed.
func newTestModel(t *testing.T, n int, opts Options, installed ...int) (Model, []workload.Descriptor) {
	t.Helper()
	root := t.TempDir()

	var ds []workload.Descriptor
	for i := 1; i <= n; i++ {
		dir := filepath.Join(root, fmt.Sprintf("w%d", i))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		installer := filepath.Join(dir, "install.sh")
		require.NoError(t, os.WriteFile(installer, []byte("#!/bin/sh\necho working\ntouch Done.txt\n"), 0o755))
		ds = append(ds, workload.Descriptor{
			Name:                fmt.Sprintf("Workload %d", i),
			EstimatedSeconds:    3,
			InstallerPath:       installer,
			InstalledMarkerPath: filepath.Join(dir, "Done.txt"),
			Tooltip:             fmt.Sprintf("tip %d", i),
		})
	}
	for _, i := range installed {
		require.NoError(t, os.WriteFile(ds[i-1].InstalledMarkerPath, nil, 0o644))
	}

	catalog := selection.NewCatalog(
		[]string{"Minimal", "Balanced"},
		map[string][]string{
			"Minimal":  {"Workload 1"},
			"Balanced": {"Workload 1", "Workload 2"},
		},
	)
	state := selection.NewState(catalog, ds, selection.Balanced, false)

	runner := install.NewRunner(platform.Detect())
	runner.Timeout = 5 * time.Second
	return NewModel(state, runner, opts), ds
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// pump feeds runner events back into the model until the run completes.
func pump(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for cmd != nil {
		require.True(t, time.Now().Before(deadline), "run did not finish")
		msg := cmd()
		m, cmd = press(t, m, msg)
		if _, ok := msg.(AllDoneMsg); ok {
			return m, cmd
		}
	}
	t.Fatal("event stream ended without AllDoneMsg")
	return m, nil
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("installer fixtures are shell scripts")
	}
}

func TestInitialView(t *testing.T) {
	m, _ := newTestModel(t, 3, Options{})
	view := m.View()

	assert.Contains(t, view, "Workload 1")
	assert.Contains(t, view, "Workload 3")
	assert.Contains(t, view, "(•) Balanced")
	assert.Contains(t, view, "( ) Minimal")
	assert.Contains(t, view, "Total installation time:  6 seconds")
	assert.Contains(t, view, "tip 1")
	assert.NotContains(t, view, "Auto-start")
}

func TestToggleSwitchesToCustom(t *testing.T) {
	m, _ := newTestModel(t, 3, Options{})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, runes("x"))

	assert.Equal(t, selection.Custom, m.state.Active())
	assert.True(t, m.state.IsSelected("Workload 3"))
	assert.Contains(t, m.View(), "(•) Custom")
	assert.Contains(t, m.View(), "Total installation time:  9 seconds")
	assert.Contains(t, m.View(), "tip 3")
}

func TestToggleInstalledIgnored(t *testing.T) {
	m, _ := newTestModel(t, 3, Options{}, 1)
	m, _ = press(t, m, runes("x"))

	assert.Equal(t, selection.Balanced, m.state.Active())
	assert.True(t, m.state.IsSelected("Workload 1"))
}

func TestSuiteKeys(t *testing.T) {
	m, _ := newTestModel(t, 3, Options{})

	m, _ = press(t, m, runes("1"))
	assert.Equal(t, selection.Minimal, m.state.Active())
	assert.False(t, m.state.IsSelected("Workload 2"))
	assert.Equal(t, flashTicks, m.flash["Workload 1"])

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, selection.Balanced, m.state.Active())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, selection.Full, m.state.Active())
	assert.True(t, m.state.IsSelected("Workload 3"))

	// Custom is skipped when cycling
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, selection.Minimal, m.state.Active())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, selection.Full, m.state.Active())

	// From Custom, cycling starts over
	m, _ = press(t, m, runes("x"))
	require.Equal(t, selection.Custom, m.state.Active())
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, selection.Minimal, m.state.Active())

	// Out of range digits do nothing
	m, _ = press(t, m, runes("9"))
	assert.Equal(t, selection.Minimal, m.state.Active())
}

func TestFlashFades(t *testing.T) {
	m, _ := newTestModel(t, 2, Options{})
	m, _ = press(t, m, runes("1"))
	require.Contains(t, m.flash, "Workload 1")

	for i := 0; i < flashTicks; i++ {
		m, _ = press(t, m, TickMsg(time.Now()))
	}
	assert.NotContains(t, m.flash, "Workload 1")
}

func TestPreflightNotices(t *testing.T) {
	m, _ := newTestModel(t, 2, Options{})
	// Deselect both Balanced members
	m, _ = press(t, m, runes("x"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, runes("x"))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, phaseChoosing, m.phase)
	assert.Contains(t, m.View(), NothingSelectedNotice)

	m2, _ := newTestModel(t, 2, Options{}, 1, 2)
	m2, cmd = press(t, m2, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m2.View(), AllInstalledNotice)
}

func TestCountdownAbortedByKey(t *testing.T) {
	m, _ := newTestModel(t, 2, Options{AutoStartSeconds: 90})
	assert.Contains(t, m.View(), "Auto-start in 1 minute and 30 seconds")

	m, cmd := press(t, m, countdownMsg{})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Auto-start in 1 minute and 29 seconds")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, m.View(), AbortedText)

	m, cmd = press(t, m, countdownMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, phaseChoosing, m.phase)
}

func TestAutoStartInstallsAndQuits(t *testing.T) {
	skipOnWindows(t)
	m, ds := newTestModel(t, 3, Options{AutoStartSeconds: 1, CloseAfterInstall: true})

	m, cmd := press(t, m, countdownMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, phaseInstalling, m.phase)

	m, cmd = pump(t, m, cmd)
	assert.Equal(t, phaseDone, m.phase)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	outcomes := m.Outcomes()
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, install.StatusSucceeded, o.Status)
	}
	assert.True(t, ds[0].IsInstalled())
	assert.True(t, ds[1].IsInstalled())
	assert.False(t, ds[2].IsInstalled())
}

func TestManualInstallWaitsForEnter(t *testing.T) {
	skipOnWindows(t)
	m, _ := newTestModel(t, 3, Options{})
	m, _ = press(t, m, runes("3")) // Full

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, cmd = pump(t, m, cmd)
	assert.Nil(t, cmd)
	assert.Len(t, m.Outcomes(), 3)

	view := m.View()
	assert.Contains(t, view, CompletedText)
	assert.Contains(t, view, "Progress:")
	assert.Contains(t, view, "3/3")

	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitFromChooser(t *testing.T) {
	m, _ := newTestModel(t, 1, Options{})
	m, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.Quitting())
	assert.Contains(t, m.View(), "cancelled")
}

func TestMarkersChangedRearms(t *testing.T) {
	changes := make(chan struct{}, 1)
	m, ds := newTestModel(t, 2, Options{MarkerChanges: changes})

	require.NoError(t, os.WriteFile(ds[1].InstalledMarkerPath, nil, 0o644))
	changes <- struct{}{}

	msg := waitForMarkers(changes)()
	require.IsType(t, MarkersChangedMsg{}, msg)
	m, cmd := press(t, m, msg)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Total installation time:  3 seconds")
}

func TestFitNameKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("Źdźbło ", 10)

	got := fitName(long, 20, 24)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(strings.TrimRight(got, " "), "..."))
	assert.Equal(t, 24, runewidth.StringWidth(got))

	assert.Equal(t, "Żółw      ", fitName("Żółw", 20, 10))
}

func TestLongNamesRenderAsValidUTF8(t *testing.T) {
	skipOnWindows(t)
	m, ds := newTestModel(t, 1, Options{})
	ds[0].Name = strings.Repeat("Ąę", 40)
	state := selection.NewState(selection.NewCatalog(nil, nil), ds, selection.Full, false)
	m = NewModel(state, m.runner, Options{})

	view := m.View()
	assert.True(t, utf8.ValidString(view))
	assert.Contains(t, view, "...")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = pump(t, m, cmd)
	assert.True(t, utf8.ValidString(m.View()))
}
