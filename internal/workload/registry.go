package workload

import (
	"fmt"
	"os"
)

// Registry holds descriptors in registration order, keyed by unique name
type Registry struct {
	descriptors []Descriptor
	index       map[string]int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register validates and appends a descriptor
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return ErrEmptyName
	}
	if d.EstimatedSeconds < 0 {
		return fmt.Errorf("%q: %w", d.Name, ErrNegativeEstimate)
	}
	if _, exists := r.index[d.Name]; exists {
		return fmt.Errorf("%q: %w", d.Name, ErrDuplicateName)
	}
	if _, err := os.Stat(d.InstallerPath); err != nil {
		return fmt.Errorf("%q: %w: %s", d.Name, ErrInstallerNotFound, d.InstallerPath)
	}

	r.index[d.Name] = len(r.descriptors)
	r.descriptors = append(r.descriptors, d)
	return nil
}

// All returns a copy of the registered descriptors in registration order
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Lookup finds a descriptor by name
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	idx, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[idx], true
}

// Len returns the number of registered descriptors
func (r *Registry) Len() int {
	return len(r.descriptors)
}
