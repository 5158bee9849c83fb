package selection

import (
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

// State is the mutable selection the UI works against. Calls are expected to
// be serialized by the caller.
type State struct {
	catalog     *Catalog
	descriptors []workload.Descriptor
	selected    Selection
	active      Suite
}

// NewState initializes the selection for the given default suite
func NewState(c *Catalog, descriptors []workload.Descriptor, defaultSuite Suite, debug bool) *State {
	return &State{
		catalog:     c,
		descriptors: descriptors,
		selected:    Initial(c, descriptors, defaultSuite, debug),
		active:      defaultSuite,
	}
}

// Select applies a suite and makes it active. Returns the names set to true.
func (s *State) Select(suite Suite) ([]string, error) {
	next, flagged, err := ApplySuite(s.catalog, suite, s.descriptors, s.selected)
	if err != nil {
		return nil, err
	}
	s.selected = next
	s.active = suite
	return flagged, nil
}

// Toggle flips a single workload. Returns false when nothing changed.
func (s *State) Toggle(name string) bool {
	next, active, ok := Toggle(name, s.descriptors, s.selected)
	if !ok {
		return false
	}
	s.selected = next
	s.active = active
	return true
}

// Summary returns the total-time line for the current selection
func (s *State) Summary() string {
	return Summarize(s.descriptors, s.selected)
}

// Queue runs the preflight check against the current selection
func (s *State) Queue() ([]workload.Descriptor, error) {
	return Preflight(s.descriptors, s.selected)
}

// Active returns the suite shown as selected
func (s *State) Active() Suite {
	return s.active
}

// IsSelected reports the selected flag of a workload
func (s *State) IsSelected(name string) bool {
	return s.selected[name]
}

// Descriptors returns the workloads in registration order
func (s *State) Descriptors() []workload.Descriptor {
	return s.descriptors
}

// Catalog returns the suite catalog
func (s *State) Catalog() *Catalog {
	return s.catalog
}

// Selection returns a copy of the current flags
func (s *State) Selection() Selection {
	return s.selected.Clone()
}
