package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
)

// Version is overridden at build time.
var Version = "dev"

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// SilentExitError reports an exit code without emitting error output.
type SilentExitError struct {
	Code int
}

func (e *SilentExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// execute runs the CLI command with the provided args and output writers.
func execute(args []string, stdout io.Writer, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.Version = Version
	cmd.SetArgs(separateNegativeCountdown(args[1:]))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// runMain executes the CLI, exiting on fatal errors.
func runMain(args []string, stdout io.Writer, stderr io.Writer, exit func(int)) {
	if len(args) == 0 {
		args = []string{"autoinstaller"}
	}
	if err := execute(args, stdout, stderr); err != nil {
		var silent *SilentExitError
		if errors.As(err, &silent) {
			exit(silent.Code)
			return
		}
		_, _ = fmt.Fprintln(stderr, err)
		exit(1)
	}
}

var negativeInt = regexp.MustCompile(`^-\d+$`)

// valueFlags take a separate value, which may itself look like a number.
var valueFlags = []string{"--catalog", "--suite", "--report"}

// separateNegativeCountdown moves a negative countdown such as "-5" behind a
// "--" so pflag reads it as a positional argument rather than a shorthand flag.
func separateNegativeCountdown(args []string) []string {
	if slices.Contains(args, "--") {
		return args
	}
	for i, arg := range args {
		if !negativeInt.MatchString(arg) {
			continue
		}
		if i > 0 && slices.Contains(valueFlags, args[i-1]) {
			continue
		}
		out := make([]string, 0, len(args)+1)
		out = append(out, args[:i]...)
		out = append(out, args[i+1:]...)
		return append(out, "--", arg)
	}
	return args
}
