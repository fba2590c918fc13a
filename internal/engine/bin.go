package engine

import (
	"cmp"
	"slices"

	"github.com/piwi3910/BinPacker/internal/model"
)

// point is a bin-local anchor at which an item's bottom-left corner may be tried.
type point struct {
	x, y int
}

// PlaceOutcome describes the result of a placement attempt.
type PlaceOutcome int

const (
	Placed     PlaceOutcome = iota // Item was inserted into the bin
	NoRoom                         // Item fits an empty bin but not this one
	ExceedsBin                     // Item is larger than the bin in both orientations
)

func (o PlaceOutcome) String() string {
	switch o {
	case Placed:
		return "placed"
	case NoRoom:
		return "no room"
	default:
		return "exceeds bin"
	}
}

// Bin is a fixed-size container packed with the candidate-point heuristic.
//
// The candidate set starts as {(0,0)} and only grows: stale anchors that are
// later covered by other items are kept and simply fail the overlap test.
type Bin struct {
	Width  int
	Height int

	placements []model.Placement
	candidates []point // Insertion order; rollback truncates this slice
	seen       map[point]struct{}
	sorted     []point // Candidates ordered by (y, x), rebuilt when dirty
	dirty      bool
}

// NewBin creates an empty bin with the single anchor (0,0).
func NewBin(width, height int) *Bin {
	b := &Bin{
		Width:  width,
		Height: height,
		seen:   make(map[point]struct{}),
	}
	b.addCandidate(point{0, 0})
	return b
}

// Placements returns the placed items in insertion order. The slice must not
// be modified by the caller.
func (b *Bin) Placements() []model.Placement {
	return b.placements
}

// Len returns the number of placed items.
func (b *Bin) Len() int {
	return len(b.placements)
}

// Empty reports whether the bin holds no items.
func (b *Bin) Empty() bool {
	return len(b.placements) == 0
}

// Candidates returns a copy of the anchor points ordered by (y, x).
func (b *Bin) Candidates() [][2]int {
	out := make([][2]int, 0, len(b.candidates))
	for _, p := range b.orderedCandidates() {
		out = append(out, [2]int{p.x, p.y})
	}
	return out
}

// Fits reports whether the item fits an empty bin of this size in either orientation.
func (b *Bin) Fits(it model.Item) bool {
	if it.Width <= b.Width && it.Height <= b.Height {
		return true
	}
	return it.Height <= b.Width && it.Width <= b.Height
}

// Place attempts to insert the item and reports whether it was accepted.
// On failure the bin is unchanged.
func (b *Bin) Place(it model.Item) bool {
	return b.TryPlace(it) == Placed
}

// TryPlace attempts to insert the item, distinguishing a full bin from an
// item that could never fit.
//
// Orientations are tried unrotated first; the rotated pass is skipped for
// squares. Within an orientation the first in-bounds, overlap-free anchor in
// (y, x) order wins.
func (b *Bin) TryPlace(it model.Item) PlaceOutcome {
	for _, rotated := range [2]bool{false, true} {
		w, h := it.Width, it.Height
		if rotated {
			if it.Square() {
				continue
			}
			w, h = it.Height, it.Width
		}

		for _, c := range b.orderedCandidates() {
			if c.x+w > b.Width || c.y+h > b.Height {
				continue
			}
			candidate := model.Placement{Item: it, X: c.x, Y: c.y, Rotated: rotated}
			if !b.canPlace(candidate) {
				continue
			}
			b.placements = append(b.placements, candidate)
			for _, np := range [2]point{{c.x + w, c.y}, {c.x, c.y + h}} {
				if np.x < b.Width && np.y < b.Height {
					b.addCandidate(np)
				}
			}
			return Placed
		}
	}
	if !b.Fits(it) {
		return ExceedsBin
	}
	return NoRoom
}

// canPlace checks the candidate against every placed item.
func (b *Bin) canPlace(candidate model.Placement) bool {
	for _, existing := range b.placements {
		if existing.Overlaps(candidate) {
			return false
		}
	}
	return true
}

func (b *Bin) addCandidate(p point) {
	if _, ok := b.seen[p]; ok {
		return
	}
	b.seen[p] = struct{}{}
	b.candidates = append(b.candidates, p)
	b.dirty = true
}

func (b *Bin) orderedCandidates() []point {
	if b.dirty || len(b.sorted) != len(b.candidates) {
		b.sorted = append(b.sorted[:0], b.candidates...)
		slices.SortFunc(b.sorted, func(p, q point) int {
			if c := cmp.Compare(p.y, q.y); c != 0 {
				return c
			}
			return cmp.Compare(p.x, q.x)
		})
		b.dirty = false
	}
	return b.sorted
}

// removeAt removes and returns the placement at index i, keeping the order
// of the rest. Candidates are left untouched.
func (b *Bin) removeAt(i int) model.Placement {
	p := b.placements[i]
	b.placements = slices.Delete(b.placements, i, i+1)
	return p
}

// insertAt puts a placement back at index i.
func (b *Bin) insertAt(i int, p model.Placement) {
	b.placements = slices.Insert(b.placements, i, p)
}

// truncate rolls the bin back to the given placement and candidate counts.
func (b *Bin) truncate(placements, candidates int) {
	b.placements = b.placements[:placements]
	for _, p := range b.candidates[candidates:] {
		delete(b.seen, p)
	}
	if candidates < len(b.candidates) {
		b.candidates = b.candidates[:candidates]
		b.dirty = true
	}
}

// Clone returns an independent deep copy of the bin.
func (b *Bin) Clone() *Bin {
	c := &Bin{
		Width:      b.Width,
		Height:     b.Height,
		placements: slices.Clone(b.placements),
		candidates: slices.Clone(b.candidates),
		seen:       make(map[point]struct{}, len(b.seen)),
		dirty:      true,
	}
	for p := range b.seen {
		c.seen[p] = struct{}{}
	}
	return c
}

// Result converts the bin into its reporting form with a 1-based index.
func (b *Bin) Result(index int) model.BinResult {
	return model.BinResult{
		Index:      index,
		Width:      b.Width,
		Height:     b.Height,
		Placements: slices.Clone(b.placements),
	}
}

// CloneBins deep-copies a bin list.
func CloneBins(bins []*Bin) []*Bin {
	out := make([]*Bin, len(bins))
	for i, b := range bins {
		out[i] = b.Clone()
	}
	return out
}

// CountItems returns the number of placed items across the bins.
func CountItems(bins []*Bin) int {
	n := 0
	for _, b := range bins {
		n += b.Len()
	}
	return n
}
