//go:build windows

package platform

import (
	"os/exec"

	"golang.org/x/sys/windows"
)

// configureProcess keeps the default cancel, which kills the child process.
func configureProcess(cmd *exec.Cmd) {}

func isElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
