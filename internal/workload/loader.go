package workload

import (
	"github.com/pkrzeminski/autoinstaller/internal/config"
)

// Loader turns catalog entries into a registry
type Loader struct {
	cfg config.Config
}

// NewLoader creates a loader for the given catalog
func NewLoader(cfg config.Config) *Loader {
	return &Loader{cfg: cfg}
}

// Load registers every catalog entry. Entries that fail validation are
// skipped and returned as warnings; the registry keeps the rest.
func (l *Loader) Load() (*Registry, []error) {
	reg := NewRegistry()
	var warnings []error

	for _, entry := range l.cfg.Workloads {
		d := Descriptor{
			Name:                entry.Name,
			EstimatedSeconds:    entry.EstimatedSeconds,
			InstallerPath:       l.cfg.Resolve(entry.Installer),
			InstalledMarkerPath: l.cfg.Resolve(entry.InstalledMarker),
			Tooltip:             entry.Tooltip,
		}
		if err := reg.Register(d); err != nil {
			warnings = append(warnings, err)
		}
	}

	return reg, warnings
}
