package workload

import (
	"errors"
	"os"
)

var (
	ErrEmptyName         = errors.New("workload name is empty")
	ErrNegativeEstimate  = errors.New("estimated seconds must not be negative")
	ErrInstallerNotFound = errors.New("installer not found")
	ErrDuplicateName     = errors.New("duplicate workload name")
	ErrNoWorkloads       = errors.New("no workload installers could be found")
)

// Descriptor is the static definition of one installable workload
type Descriptor struct {
	Name                string
	EstimatedSeconds    int
	InstallerPath       string
	InstalledMarkerPath string
	Tooltip             string
}

// IsInstalled reports whether the installed marker exists. The filesystem is
// checked on every call since installs can happen outside this program.
func (d Descriptor) IsInstalled() bool {
	if d.InstalledMarkerPath == "" {
		return false
	}
	_, err := os.Stat(d.InstalledMarkerPath)
	return err == nil
}
