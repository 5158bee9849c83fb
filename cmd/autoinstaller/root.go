package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pkrzeminski/autoinstaller/internal/config"
	"github.com/pkrzeminski/autoinstaller/internal/humantime"
	"github.com/pkrzeminski/autoinstaller/internal/install"
	"github.com/pkrzeminski/autoinstaller/internal/logx"
	"github.com/pkrzeminski/autoinstaller/internal/platform"
	"github.com/pkrzeminski/autoinstaller/internal/report"
	"github.com/pkrzeminski/autoinstaller/internal/selection"
	"github.com/pkrzeminski/autoinstaller/internal/terminal"
	"github.com/pkrzeminski/autoinstaller/internal/ui"
	"github.com/pkrzeminski/autoinstaller/internal/watch"
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

const (
	noWorkloadsMessage = "No workload installers could be found."
	completeMessage    = "All selected installations complete."
)

// isInteractive is swapped in tests.
var isInteractive = terminal.IsInteractive

type rootOptions struct {
	catalog string
	noUI    bool
	suite   string
	report  string
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "autoinstaller [autoStartSeconds]",
		Short:         "Choose workload suites and run their installers",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "catalog file (default workloads.yaml next to the executable)")
	cmd.Flags().BoolVar(&opts.noUI, "no-ui", false, "run without the interactive chooser")
	cmd.Flags().StringVar(&opts.suite, "suite", "", "suite selected at startup")
	cmd.Flags().StringVar(&opts.report, "report", "", "write a markdown run report to this path")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "select every workload at startup")
	return cmd
}

// parseAutoStart reads the optional countdown argument. Negative values
// disable auto-start.
func parseAutoStart(args []string) (seconds int, given bool, err error) {
	if len(args) == 0 {
		return 0, false, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false, err
	}
	return max(n, 0), true, nil
}

func run(cmd *cobra.Command, opts *rootOptions, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	autoStart, given, err := parseAutoStart(args)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "Invalid command line args; usage:")
		_, _ = fmt.Fprintf(stderr, "    %s\n", cmd.UseLine())
		return &SilentExitError{Code: 1}
	}

	path := opts.catalog
	if path == "" {
		path = defaultCatalogPath()
	}
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(stderr, color.RedString(noWorkloadsMessage))
		_, _ = fmt.Fprintf(stderr, "catalog %s does not exist\n", path)
		return &SilentExitError{Code: 2}
	}
	if err != nil {
		return err
	}

	if opts.debug {
		cfg.Debug = true
	}
	if opts.suite != "" {
		cfg.DefaultSuite = opts.suite
	}
	if given {
		cfg.AutoStartSeconds = autoStart
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	logger, closer, err := logx.New(cfg.LogPath())
	if err != nil {
		_, _ = fmt.Fprintln(stderr, color.YellowString("Logging disabled: %v", err))
		logger, closer, _ = logx.New("")
	}
	defer func() { _ = closer.Close() }()

	for _, w := range cfg.Warnings() {
		warn(stderr, logger, w)
	}
	reg, regWarnings := workload.NewLoader(cfg).Load()
	for _, w := range regWarnings {
		warn(stderr, logger, w.Error())
	}
	if reg.Len() == 0 {
		_, _ = fmt.Fprintln(stderr, color.RedString(noWorkloadsMessage))
		logger.Printf("Aborting: %v", workload.ErrNoWorkloads)
		return &SilentExitError{Code: 2}
	}

	plat := platform.Detect()
	logger.Printf("Platform: %s, elevated: %t, catalog: %s, %d workloads", plat, plat.IsRoot, cfg.Path(), reg.Len())

	runner := install.NewRunner(plat)
	runner.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	runner.Logger = logger
	runner.Debug = cfg.Debug

	state := selection.NewState(selection.CatalogFromConfig(cfg), reg.All(), selection.Suite(cfg.DefaultSuite), cfg.Debug)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var outcomes []install.Outcome
	if opts.noUI || !isInteractive() {
		outcomes = runHeadless(ctx, stdout, state, runner, cfg.AutoStartSeconds)
	} else {
		outcomes, err = runInteractive(stdout, logger, state, runner, ui.Options{
			AutoStartSeconds:  cfg.AutoStartSeconds,
			CloseAfterInstall: cfg.AutoStartSeconds > 0 && !cfg.Debug,
		})
		if err != nil {
			return err
		}
	}

	reportPath := opts.report
	if reportPath == "" && cfg.Report != "" {
		reportPath = cfg.Resolve(cfg.Report)
	}
	if reportPath != "" && len(outcomes) > 0 {
		rep := report.NewMarkdownReport(plat, outcomes)
		if err := rep.WriteFile(reportPath); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "Report saved to: %s\n", reportPath)
	}
	return nil
}

// defaultCatalogPath looks for the catalog next to the executable.
func defaultCatalogPath() string {
	exe, err := os.Executable()
	if err != nil {
		return config.DefaultFileName
	}
	return filepath.Join(filepath.Dir(exe), config.DefaultFileName)
}

func warn(out io.Writer, logger *log.Logger, msg string) {
	_, _ = fmt.Fprintln(out, color.YellowString("Warning: %s", msg))
	logger.Printf("Warning: %s", msg)
}

// runHeadless prints the summary, waits out the countdown and installs the
// startup selection with console progress.
func runHeadless(ctx context.Context, out io.Writer, state *selection.State, runner *install.Runner, autoStart int) []install.Outcome {
	_, _ = fmt.Fprintln(out, state.Summary())

	if autoStart > 0 {
		_, _ = fmt.Fprintf(out, "Auto-starting installations in %s...\n", humantime.Format(autoStart))
		select {
		case <-ctx.Done():
			_, _ = fmt.Fprintln(out, color.YellowString("Interrupted."))
			return nil
		case <-time.After(time.Duration(autoStart) * time.Second):
		}
	}

	queue, err := state.Queue()
	switch {
	case errors.Is(err, selection.ErrNothingSelected):
		_, _ = fmt.Fprintln(out, color.YellowString(ui.NothingSelectedNotice))
		return nil
	case errors.Is(err, selection.ErrAllInstalled):
		_, _ = fmt.Fprintln(out, color.YellowString(ui.AllInstalledNotice))
		return nil
	}

	runner.Observer = install.NewConsoleObserver(out)
	outcomes := runner.Run(ctx, queue)

	counts := install.Tally(outcomes)
	_, _ = fmt.Fprintf(out, "\nSucceeded: %d, failed: %d, timed out: %d\n",
		counts[install.StatusSucceeded], counts[install.StatusFailed], counts[install.StatusTimedOut])
	_, _ = fmt.Fprintln(out, color.GreenString(completeMessage))
	return outcomes
}

// runInteractive shows the chooser until the user quits or the run finishes.
func runInteractive(out io.Writer, logger *log.Logger, state *selection.State, runner *install.Runner, opts ui.Options) ([]install.Outcome, error) {
	var markers []string
	for _, d := range state.Descriptors() {
		markers = append(markers, d.InstalledMarkerPath)
	}
	mw, err := watch.NewMarkerWatcher(markers, watch.DefaultDebounce)
	if err != nil {
		logger.Printf("Marker watch disabled: %v", err)
	} else {
		defer func() { _ = mw.Close() }()
		opts.MarkerChanges = mw.Changes()
	}

	p := tea.NewProgram(ui.NewModel(state, runner, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run chooser: %w", err)
	}

	m, ok := final.(ui.Model)
	if !ok {
		return nil, nil
	}
	outcomes := m.Outcomes()
	for _, o := range outcomes {
		_, _ = fmt.Fprintln(out, install.StatusLine(o))
	}
	if len(outcomes) > 0 {
		_, _ = fmt.Fprintln(out, color.GreenString(completeMessage))
	}
	return outcomes, nil
}
