package install

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/pkrzeminski/autoinstaller/internal/platform"
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

const (
	DefaultTimeout = 600 * time.Second

	// DefaultWaitDelay bounds how long output pipes are drained after the
	// installer exits or is killed.
	DefaultWaitDelay = 5 * time.Second
)

// Runner executes workload installers one at a time
type Runner struct {
	Platform  platform.Platform
	Timeout   time.Duration
	WaitDelay time.Duration
	Observer  Observer
	Logger    *log.Logger
	Debug     bool
}

// NewRunner creates a new installer runner
func NewRunner(p platform.Platform) *Runner {
	return &Runner{
		Platform:  p,
		Timeout:   DefaultTimeout,
		WaitDelay: DefaultWaitDelay,
		Observer:  nopObserver{},
		Logger:    log.New(io.Discard, "", 0),
	}
}

// Run installs each queued workload in order and blocks until all are done.
// Individual failures and timeouts do not stop the queue; a cancelled
// context kills the current installer and abandons the rest.
func (r *Runner) Run(ctx context.Context, queue []workload.Descriptor) []Outcome {
	obs := r.observer()
	outcomes := make([]Outcome, 0, len(queue))

	for i, d := range queue {
		if ctx.Err() != nil {
			break
		}

		obs.InstallStarted(d, i, len(queue))

		var result Outcome
		if d.IsInstalled() {
			// An earlier installer may have brought this one in.
			r.logger().Printf("%s is already installed; skipping", d.Name)
			result = Outcome{Name: d.Name, Status: StatusSkipped}
		} else {
			result = r.Install(ctx, d)
		}

		obs.InstallFinished(result)
		outcomes = append(outcomes, result)

		if result.Status == StatusCanceled {
			break
		}
	}

	r.logger().Printf("All selected installations complete.")
	return outcomes
}

// Install runs a single installer, streaming its stdout lines to the observer
func (r *Runner) Install(ctx context.Context, d workload.Descriptor) Outcome {
	result := Outcome{Name: d.Name, Status: StatusRunning}
	obs := r.observer()

	r.logger().Printf("Running %s installer: %s", d.Name, d.InstallerPath)

	// Create context with timeout
	runCtx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := r.Platform.Command(runCtx, d.InstallerPath)
	cmd.WaitDelay = r.WaitDelay

	lines := make(chan string, 64)
	stdout := &lineWriter{lines: lines}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		result.Duration = time.Since(start)
		result.Status = StatusFailed
		result.ExitCode = -1
		result.Stderr = err.Error()
		r.logger().Printf("There was an error launching %s: %v", d.Name, err)
		return result
	}

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	var waitErr error
	for running := true; running; {
		select {
		case line := <-lines:
			r.emit(obs, d, line)
		case waitErr = <-waitCh:
			running = false
		}
	}

	// Wait has returned, so nothing writes to lines anymore
	for drained := false; !drained; {
		select {
		case line := <-lines:
			r.emit(obs, d, line)
		default:
			drained = true
		}
	}
	if tail := stdout.tail(); tail != "" {
		r.emit(obs, d, tail)
	}

	result.Duration = time.Since(start)
	if r.Debug {
		r.logger().Printf("Time to install %s: %s", d.Name, result.Duration)
	}

	// Determine status
	exited := cmd.ProcessState != nil && cmd.ProcessState.Success()
	switch {
	case waitErr == nil || (errors.Is(waitErr, exec.ErrWaitDelay) && exited):
		result.Status = StatusSucceeded
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.Status = StatusCanceled
		result.ExitCode = -1
		r.logger().Printf("Installation of %s was canceled", d.Name)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.Status = StatusTimedOut
		result.ExitCode = -1
		r.logger().Printf("Installation time for %s exceeded the timeout of %s!", d.Name, r.timeout())
	default:
		result.Status = StatusFailed
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		result.Stderr = strings.TrimSpace(stderr.String())
		if result.Stderr == "" {
			result.Stderr = waitErr.Error()
		}
		r.logger().Printf("There was an error installing %s; error code %d", d.Name, result.ExitCode)
		r.logger().Print(result.Stderr)
	}

	return result
}

func (r *Runner) emit(obs Observer, d workload.Descriptor, line string) {
	r.logger().Printf("[%s] %s", d.Name, line)
	obs.InstallOutput(d, line)
}

func (r *Runner) observer() Observer {
	if r.Observer == nil {
		return nopObserver{}
	}
	return r.Observer
}

func (r *Runner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// lineWriter splits a byte stream into trimmed, non-empty lines
type lineWriter struct {
	lines chan<- string
	buf   []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
		if line != "" {
			w.lines <- line
		}
	}
	return len(p), nil
}

// tail returns any unterminated final line
func (w *lineWriter) tail() string {
	line := strings.TrimSpace(string(w.buf))
	w.buf = nil
	return line
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return r.Logger
}
