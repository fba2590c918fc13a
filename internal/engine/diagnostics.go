package engine

import (
	"fmt"

	"github.com/piwi3910/BinPacker/internal/model"
)

// Diagnostics collects non-fatal events raised while packing. A nil
// *Diagnostics is valid and discards everything.
type Diagnostics struct {
	Warnings []string
	Errors   []string
	Unplaced []model.Item
}

// Warnf records a warning.
func (d *Diagnostics) Warnf(format string, args ...any) {
	if d == nil {
		return
	}
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Errorf records an error.
func (d *Diagnostics) Errorf(format string, args ...any) {
	if d == nil {
		return
	}
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

// unplaceable records an item that does not fit an empty bin.
func (d *Diagnostics) unplaceable(it model.Item) {
	if d == nil {
		return
	}
	d.Unplaced = append(d.Unplaced, it)
	d.Errorf("Object %s (%dx%d) does not fit in an empty bin", it.ID, it.Width, it.Height)
}

// Merge appends the warnings and errors of other.
func (d *Diagnostics) Merge(warnings, errors []string) {
	if d == nil {
		return
	}
	d.Warnings = append(d.Warnings, warnings...)
	d.Errors = append(d.Errors, errors...)
}

// HasUnplaced reports whether any item was excluded from the packing.
func (d *Diagnostics) HasUnplaced() bool {
	return d != nil && len(d.Unplaced) > 0
}
