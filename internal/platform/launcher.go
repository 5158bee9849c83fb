package platform

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command builds the child process for an installer. The installer runs with
// its own directory as working directory and receives no arguments.
func (p Platform) Command(ctx context.Context, installerPath string) *exec.Cmd {
	name, args := p.launchArgs(installerPath)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = filepath.Dir(installerPath)
	configureProcess(cmd)
	return cmd
}

// launchArgs picks an interpreter from the installer's extension
func (p Platform) launchArgs(installerPath string) (string, []string) {
	ext := strings.ToLower(filepath.Ext(installerPath))

	if p.OS == "windows" {
		switch ext {
		case ".bat", ".cmd":
			return "cmd.exe", []string{"/C", installerPath}
		case ".ps1":
			return "powershell.exe", []string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-File", installerPath}
		}
		return installerPath, nil
	}

	switch ext {
	case ".sh":
		return "/bin/sh", []string{installerPath}
	case ".bash":
		return "bash", []string{installerPath}
	case ".ps1":
		return "pwsh", []string{"-NoProfile", "-File", installerPath}
	}
	return installerPath, nil
}
