package selection

import (
	"errors"

	"github.com/pkrzeminski/autoinstaller/internal/humantime"
	"github.com/pkrzeminski/autoinstaller/internal/workload"
)

const (
	AllInstalledText         = "All workloads have been installed."
	AllSelectedInstalledText = "All selected workloads have been installed."
	NothingSelectedText      = "Nothing selected to install."
	TotalTimePrefix          = "Total installation time:  "
)

var (
	ErrNothingSelected = errors.New("no workloads are selected")
	ErrAllInstalled    = errors.New("all selected workloads are already installed")
)

// Summarize describes what an install would do for the current selection.
// Branches are checked in order and the first match wins.
func Summarize(descriptors []workload.Descriptor, sel Selection) string {
	total := 0
	allSelected := true
	allInstalled := true

	for _, d := range descriptors {
		switch {
		case sel[d.Name] && !d.IsInstalled():
			allInstalled = false
			total += d.EstimatedSeconds
		case !sel[d.Name]:
			allSelected = false
		}
	}

	switch {
	case allSelected && allInstalled:
		return AllInstalledText
	case allInstalled:
		return AllSelectedInstalledText
	case total == 0:
		return NothingSelectedText
	default:
		return TotalTimePrefix + humantime.Format(total)
	}
}

// Preflight returns the install queue: selected workloads that are not yet
// installed, in registration order.
func Preflight(descriptors []workload.Descriptor, sel Selection) ([]workload.Descriptor, error) {
	anySelected := false
	var queue []workload.Descriptor

	for _, d := range descriptors {
		if !sel[d.Name] {
			continue
		}
		anySelected = true
		if !d.IsInstalled() {
			queue = append(queue, d)
		}
	}

	if !anySelected {
		return nil, ErrNothingSelected
	}
	if len(queue) == 0 {
		return nil, ErrAllInstalled
	}
	return queue, nil
}
