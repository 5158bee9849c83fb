package install

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkrzeminski/autoinstaller/internal/platform"
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

type recorder struct {
	started  []string
	lines    map[string][]string
	finished []Outcome
}

func newRecorder() *recorder {
	return &recorder{lines: make(map[string][]string)}
}

func (r *recorder) InstallStarted(d workload.Descriptor, index, total int) {
	r.started = append(r.started, fmt.Sprintf("%d/%d %s", index+1, total, d.Name))
}

func (r *recorder) InstallOutput(d workload.Descriptor, line string) {
	r.lines[d.Name] = append(r.lines[d.Name], line)
}

func (r *recorder) InstallFinished(o Outcome) {
	r.finished = append(r.finished, o)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("installer fixtures are shell scripts")
	}
}

// script writes an installer in its own directory and returns its descriptor.
func script(t *testing.T, root, name, body string) workload.Descriptor {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "install.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return workload.Descriptor{
		Name:                name,
		EstimatedSeconds:    3,
		InstallerPath:       path,
		InstalledMarkerPath: filepath.Join(dir, "Done.txt"),
	}
}

func newTestRunner(obs Observer) *Runner {
	r := NewRunner(platform.Detect())
	r.Timeout = 5 * time.Second
	r.WaitDelay = time.Second
	r.Observer = obs
	return r
}

func TestRunAllSucceed(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	var queue []workload.Descriptor
	for i := 1; i <= 3; i++ {
		queue = append(queue, script(t, root, fmt.Sprintf("Workload %d", i), "#!/bin/sh\necho installing\ntouch Done.txt\nexit 0\n"))
	}

	rec := newRecorder()
	outcomes := newTestRunner(rec).Run(context.Background(), queue)

	require.Len(t, outcomes, 3)
	for i, o := range outcomes {
		assert.Equal(t, queue[i].Name, o.Name)
		assert.Equal(t, StatusSucceeded, o.Status)
		assert.Equal(t, 0, o.ExitCode)
		assert.Empty(t, o.Stderr)
		assert.True(t, queue[i].IsInstalled(), "installer ran in its own directory")
	}
	assert.Equal(t, []string{"1/3 Workload 1", "2/3 Workload 2", "3/3 Workload 3"}, rec.started)
	assert.Equal(t, []string{"installing"}, rec.lines["Workload 2"])
	assert.Len(t, rec.finished, 3)
}

func TestInstallStreamsNonEmptyLines(t *testing.T) {
	skipOnWindows(t)
	d := script(t, t.TempDir(), "Chatty", "#!/bin/sh\necho '  first  '\necho\necho second\nprintf 'no newline'\n")

	rec := newRecorder()
	o := newTestRunner(rec).Install(context.Background(), d)

	assert.Equal(t, StatusSucceeded, o.Status)
	assert.Equal(t, []string{"first", "second", "no newline"}, rec.lines["Chatty"])
}

func TestFailureDoesNotStopQueue(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	queue := []workload.Descriptor{
		script(t, root, "Broken", "#!/bin/sh\necho partial\necho 'disk full' >&2\nexit 3\n"),
		script(t, root, "Fine", "#!/bin/sh\nexit 0\n"),
	}

	var logs bytes.Buffer
	r := newTestRunner(newRecorder())
	r.Logger = log.New(&logs, "", 0)
	outcomes := r.Run(context.Background(), queue)

	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, 3, outcomes[0].ExitCode)
	assert.Equal(t, "disk full", outcomes[0].Stderr)
	assert.Equal(t, StatusSucceeded, outcomes[1].Status)

	assert.Contains(t, logs.String(), "There was an error installing Broken; error code 3")
	assert.Contains(t, logs.String(), "disk full")
	assert.Contains(t, logs.String(), "[Broken] partial")
}

func TestTimeoutKillsAndContinues(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	queue := []workload.Descriptor{
		script(t, root, "Slow", "#!/bin/sh\necho started\nsleep 30\necho never\n"),
		script(t, root, "Fast", "#!/bin/sh\necho done\n"),
	}

	rec := newRecorder()
	r := newTestRunner(rec)
	r.Timeout = 300 * time.Millisecond

	start := time.Now()
	outcomes := r.Run(context.Background(), queue)
	elapsed := time.Since(start)

	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusTimedOut, outcomes[0].Status)
	assert.True(t, outcomes[0].TimedOut())
	assert.Equal(t, StatusSucceeded, outcomes[1].Status)
	assert.Equal(t, []string{"started"}, rec.lines["Slow"])
	assert.Less(t, elapsed, 10*time.Second)
}

func TestLaunchFailure(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	// A binary without the executable bit cannot be started directly.
	dir := filepath.Join(root, "NoExec")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "setup")
	require.NoError(t, os.WriteFile(path, []byte("not a program"), 0o644))

	queue := []workload.Descriptor{
		{Name: "NoExec", InstallerPath: path, InstalledMarkerPath: filepath.Join(dir, "Done.txt")},
		script(t, root, "After", "#!/bin/sh\nexit 0\n"),
	}

	outcomes := newTestRunner(nil).Run(context.Background(), queue)
	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, -1, outcomes[0].ExitCode)
	assert.NotEmpty(t, outcomes[0].Stderr)
	assert.Equal(t, StatusSucceeded, outcomes[1].Status)
}

func TestSkipsWorkloadInstalledDuringRun(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	second := script(t, root, "Second", "#!/bin/sh\nexit 9\n")
	first := script(t, root, "First", fmt.Sprintf("#!/bin/sh\ntouch '%s'\n", second.InstalledMarkerPath))

	outcomes := newTestRunner(nil).Run(context.Background(), []workload.Descriptor{first, second})
	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusSucceeded, outcomes[0].Status)
	assert.Equal(t, StatusSkipped, outcomes[1].Status)
}

func TestCancelAbortsQueue(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	queue := []workload.Descriptor{
		script(t, root, "Long", "#!/bin/sh\nsleep 30\n"),
		script(t, root, "Never", "#!/bin/sh\nexit 0\n"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	outcomes := newTestRunner(nil).Run(ctx, queue)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusCanceled, outcomes[0].Status)
}

func TestLineWriter(t *testing.T) {
	lines := make(chan string, 10)
	w := &lineWriter{lines: lines}

	_, _ = w.Write([]byte("al"))
	_, _ = w.Write([]byte("pha\r\n\n  \nbe"))
	_, _ = w.Write([]byte("ta\ngam"))
	close(lines)

	var got []string
	for l := range lines {
		got = append(got, l)
	}
	assert.Equal(t, []string{"alpha", "beta"}, got)
	assert.Equal(t, "gam", w.tail())
	assert.Equal(t, "", w.tail())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Succeeded", StatusSucceeded.String())
	assert.Equal(t, "Timed out", StatusTimedOut.String())
	assert.Equal(t, "Unknown", Status(99).String())
}

func TestTally(t *testing.T) {
	counts := Tally([]Outcome{{Status: StatusFailed}, {Status: StatusSucceeded}, {Status: StatusFailed}})
	assert.Equal(t, 2, counts[StatusFailed])
	assert.Equal(t, 1, counts[StatusSucceeded])
	assert.Equal(t, 0, counts[StatusTimedOut])
}

func TestConsoleObserver(t *testing.T) {
	var out bytes.Buffer
	c := NewConsoleObserver(&out)
	d := workload.Descriptor{Name: "Demo"}

	c.InstallStarted(d, 0, 2)
	c.InstallOutput(d, "hello")
	c.InstallFinished(Outcome{Name: "Demo", Status: StatusFailed, ExitCode: 2, Stderr: "bad\nworse"})

	text := out.String()
	assert.Contains(t, text, "[1/2] Running Demo installer...")
	assert.Contains(t, text, "    hello")
	assert.Contains(t, text, "Demo (error code 2)")
	assert.Equal(t, 2, strings.Count(text, "    bad")+strings.Count(text, "    worse"))
}
