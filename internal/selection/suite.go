package selection

import (
	"errors"
	"fmt"

	"github.com/pkrzeminski/autoinstaller/internal/config"
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

// Suite names a preset group of workloads
type Suite string

const (
	Minimal  Suite = "Minimal"
	Balanced Suite = "Balanced"
	Full     Suite = config.FullSuite
	Custom   Suite = config.CustomSuite
)

// ErrInvalidSuite means a suite name that the catalog does not define was
// applied. The UI only offers catalog suites, so this indicates a bug.
var ErrInvalidSuite = errors.New("invalid suite selection")

// Catalog maps preset suite names to their member workloads
type Catalog struct {
	presets []Suite
	members map[Suite]map[string]struct{}
}

// NewCatalog builds a catalog from preset names (in display order) and their members
func NewCatalog(order []string, members map[string][]string) *Catalog {
	c := &Catalog{members: make(map[Suite]map[string]struct{})}
	for _, name := range order {
		s := Suite(name)
		if s == Full || s == Custom {
			continue
		}
		set := make(map[string]struct{})
		for _, m := range members[name] {
			set[m] = struct{}{}
		}
		c.presets = append(c.presets, s)
		c.members[s] = set
	}
	return c
}

// CatalogFromConfig builds the catalog described by a config file
func CatalogFromConfig(cfg config.Config) *Catalog {
	return NewCatalog(cfg.SuiteNames(), cfg.SuiteMembers())
}

// Suites returns every selectable suite: presets, then Full, then Custom
func (c *Catalog) Suites() []Suite {
	out := make([]Suite, 0, len(c.presets)+2)
	out = append(out, c.presets...)
	return append(out, Full, Custom)
}

// IsPreset reports whether s is a catalog-defined suite
func (c *Catalog) IsPreset(s Suite) bool {
	_, ok := c.members[s]
	return ok
}

// Known reports whether s can be applied
func (c *Catalog) Known(s Suite) bool {
	return s == Full || s == Custom || c.IsPreset(s)
}

// Contains reports whether a workload belongs to a suite. Full contains
// everything; Custom contains nothing implicitly.
func (c *Catalog) Contains(s Suite, name string) bool {
	switch s {
	case Full:
		return true
	case Custom:
		return false
	}
	_, ok := c.members[s][name]
	return ok
}

// Selection maps a workload name to its selected flag
type Selection map[string]bool

// Clone returns an independent copy
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Initial computes the startup selection. A workload starts selected when
// debug mode is on, when it is already installed, or when it belongs to the
// default suite.
func Initial(c *Catalog, descriptors []workload.Descriptor, defaultSuite Suite, debug bool) Selection {
	sel := make(Selection, len(descriptors))
	for _, d := range descriptors {
		sel[d.Name] = debug || d.IsInstalled() || c.Contains(defaultSuite, d.Name)
	}
	return sel
}

// ApplySuite overwrites the selection to match a suite. Installed workloads
// outside a preset keep whatever flag they had. It returns the names the
// call set to true, in registration order.
func ApplySuite(c *Catalog, s Suite, descriptors []workload.Descriptor, current Selection) (Selection, []string, error) {
	if !c.Known(s) {
		return current, nil, fmt.Errorf("%w: %s", ErrInvalidSuite, s)
	}

	next := current.Clone()
	if s == Custom {
		return next, nil, nil
	}

	var flagged []string
	for _, d := range descriptors {
		switch {
		case c.Contains(s, d.Name):
			next[d.Name] = true
			flagged = append(flagged, d.Name)
		case !d.IsInstalled():
			next[d.Name] = false
		}
	}

	return next, flagged, nil
}

// Toggle flips one workload and switches the active suite to Custom.
// Installed or unknown workloads are left alone and ok is false.
func Toggle(name string, descriptors []workload.Descriptor, current Selection) (next Selection, active Suite, ok bool) {
	for _, d := range descriptors {
		if d.Name != name {
			continue
		}
		if d.IsInstalled() {
			return current, "", false
		}
		next = current.Clone()
		next[name] = !next[name]
		return next, Custom, true
	}
	return current, "", false
}
