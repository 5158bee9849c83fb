package platform

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// Platform holds detected system information
type Platform struct {
	OS     string // e.g., "linux", "darwin", "windows"
	Distro string // e.g., "arch", "ubuntu", "fedora"
	IsRoot bool
}

// Detect returns information about the current platform
func Detect() Platform {
	p := Platform{
		OS:     runtime.GOOS,
		IsRoot: isElevated(),
	}

	// Parse /etc/os-release for distro info
	if osRelease, err := parseOSRelease("/etc/os-release"); err == nil {
		p.Distro = strings.ToLower(osRelease["ID"])
		if idLike, ok := osRelease["ID_LIKE"]; ok && p.Distro == "" {
			p.Distro = strings.ToLower(idLike)
		}
	}

	return p
}

// String returns a short description such as "linux (ubuntu)"
func (p Platform) String() string {
	if p.Distro == "" {
		return p.OS
	}
	return p.OS + " (" + p.Distro + ")"
}

// parseOSRelease reads and parses an os-release file
func parseOSRelease(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := parts[0]
		value := strings.Trim(parts[1], "\"'")
		result[key] = value
	}

	return result, scanner.Err()
}
