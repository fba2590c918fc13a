package engine

import (
	"fmt"

	"github.com/piwi3910/BinPacker/internal/model"
)

// arena holds a working copy of a bin list addressed by integer handle.
// Relocations are two-phase: begin records a tentative removal, the target
// bin is asked to place the item, and the move is then committed or rolled
// back. Only one move may be open at a time.
type arena struct {
	bins []*Bin
	log  []undoEntry
}

// undoEntry captures everything needed to reverse one relocation.
type undoEntry struct {
	src, srcIdx int
	removed     model.Placement
	dst         int
	dstLen      int // Target placement count before the move
	dstCands    int // Target candidate count before the move
}

func newArena(bins []*Bin) *arena {
	return &arena{bins: CloneBins(bins)}
}

func (a *arena) clone() *arena {
	if len(a.log) > 0 {
		panic("engine: clone of arena with an open move")
	}
	return &arena{bins: CloneBins(a.bins)}
}

// move relocates placement k of bin src into bin dst. It reports whether
// the target accepted the item; the move stays open either way.
func (a *arena) move(src, k, dst int) bool {
	if len(a.log) > 0 {
		panic("engine: nested arena move")
	}
	s, d := a.bins[src], a.bins[dst]
	e := undoEntry{
		src:      src,
		srcIdx:   k,
		dst:      dst,
		dstLen:   len(d.placements),
		dstCands: len(d.candidates),
	}
	e.removed = s.removeAt(k)
	a.log = append(a.log, e)
	return d.Place(e.removed.Item)
}

// commit makes the open move permanent.
func (a *arena) commit() {
	a.log = a.log[:0]
}

// rollback reverses the open move, restoring the source placement at its
// original index and trimming the target back to its previous state.
func (a *arena) rollback() {
	for i := len(a.log) - 1; i >= 0; i-- {
		e := a.log[i]
		a.bins[e.dst].truncate(e.dstLen, e.dstCands)
		a.bins[e.src].insertAt(e.srcIdx, e.removed)
	}
	a.log = a.log[:0]
}

// count returns the number of non-empty bins.
func (a *arena) count() int {
	n := 0
	for _, b := range a.bins {
		if !b.Empty() {
			n++
		}
	}
	return n
}

// drop removes bin i from the arena.
func (a *arena) drop(i int) {
	a.bins = append(a.bins[:i], a.bins[i+1:]...)
}

// verify checks the committed-state invariants: no open move, every item
// owned by exactly one bin, and every bin overlap-free and in bounds.
func (a *arena) verify() error {
	if len(a.log) > 0 {
		return fmt.Errorf("open move on bin %d", a.log[0].src)
	}
	return VerifyBins(a.bins)
}

// VerifyBins checks that each bin is overlap-free and in bounds and that no
// item id appears in more than one placement.
func VerifyBins(bins []*Bin) error {
	owner := make(map[string]int)
	for bi, b := range bins {
		ps := b.placements
		for i, p := range ps {
			if prev, ok := owner[p.Item.ID]; ok {
				return fmt.Errorf("item %s placed in bins %d and %d", p.Item.ID, prev+1, bi+1)
			}
			owner[p.Item.ID] = bi
			if p.X < 0 || p.Y < 0 || p.X+p.PlacedWidth() > b.Width || p.Y+p.PlacedHeight() > b.Height {
				return fmt.Errorf("item %s out of bounds in bin %d", p.Item.ID, bi+1)
			}
			for _, q := range ps[i+1:] {
				if p.Overlaps(q) {
					return fmt.Errorf("items %s and %s overlap in bin %d", p.Item.ID, q.Item.ID, bi+1)
				}
			}
		}
	}
	return nil
}
