package engine

import (
	"slices"

	"github.com/piwi3910/BinPacker/internal/model"
)

// SortByAreaDesc returns a copy of items ordered by area, largest first.
// Items of equal area keep their input order.
func SortByAreaDesc(items []model.Item) []model.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b model.Item) int {
		return b.Area() - a.Area()
	})
	return sorted
}

// Assemble packs items with first-fit decreasing: each item, largest first,
// goes into the first existing bin that accepts it, or into a new bin.
// Items that do not fit an empty bin are recorded in diag and left out.
func Assemble(items []model.Item, width, height int, diag *Diagnostics) []*Bin {
	return firstFit(SortByAreaDesc(items), width, height, diag)
}

// firstFit packs items in the given order without sorting.
func firstFit(items []model.Item, width, height int, diag *Diagnostics) []*Bin {
	var bins []*Bin
	for _, it := range items {
		placed := false
		for _, b := range bins {
			if b.Place(it) {
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		nb := NewBin(width, height)
		if nb.TryPlace(it) != Placed {
			diag.unplaceable(it)
			continue
		}
		bins = append(bins, nb)
	}
	return bins
}
