package model

import (
	"time"

	"github.com/google/uuid"
)

// Item represents a rectangle to be packed into a bin.
type Item struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`  // Intrinsic width, never swapped by rotation
	Height int    `json:"height"` // Intrinsic height, never swapped by rotation
}

func NewItem(id string, w, h int) Item {
	return Item{ID: id, Width: w, Height: h}
}

// NewGeneratedItem creates an item with a short random ID, used by importers
// whose source format has no identifier column.
func NewGeneratedItem(w, h int) Item {
	return Item{ID: uuid.New().String()[:8], Width: w, Height: h}
}

// Area returns the intrinsic area. Rotation does not change it.
func (it Item) Area() int {
	return it.Width * it.Height
}

// Square reports whether rotating the item would produce the same footprint.
func (it Item) Square() bool {
	return it.Width == it.Height
}

// Placement represents a placed copy of an item inside a bin.
type Placement struct {
	Item    Item `json:"item"`
	X       int  `json:"x"`       // Left edge
	Y       int  `json:"y"`       // Bottom edge
	Rotated bool `json:"rotated"` // Whether width and height were swapped
}

// PlacedWidth returns the effective width considering rotation.
func (p Placement) PlacedWidth() int {
	if p.Rotated {
		return p.Item.Height
	}
	return p.Item.Width
}

// PlacedHeight returns the effective height considering rotation.
func (p Placement) PlacedHeight() int {
	if p.Rotated {
		return p.Item.Width
	}
	return p.Item.Height
}

// Overlaps reports whether two placements share interior area.
// Touching edges do not count as overlap.
func (p Placement) Overlaps(o Placement) bool {
	if o.X >= p.X+p.PlacedWidth() ||
		p.X >= o.X+o.PlacedWidth() ||
		o.Y >= p.Y+p.PlacedHeight() ||
		p.Y >= o.Y+o.PlacedHeight() {
		return false
	}
	return true
}

// BinResult represents one bin with its placed items.
type BinResult struct {
	Index      int         `json:"bin_number"` // 1-based
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Placements []Placement `json:"objects"`
}

// UsedArea returns the total footprint area of the placed items.
func (br BinResult) UsedArea() int {
	total := 0
	for _, p := range br.Placements {
		total += p.PlacedWidth() * p.PlacedHeight()
	}
	return total
}

// TotalArea returns the bin area.
func (br BinResult) TotalArea() int {
	return br.Width * br.Height
}

// Efficiency returns the usage percentage.
func (br BinResult) Efficiency() float64 {
	ta := br.TotalArea()
	if ta == 0 {
		return 0
	}
	return float64(br.UsedArea()) / float64(ta) * 100.0
}

// PackResult holds a full packing solution.
type PackResult struct {
	RunID         string        `json:"run_id"`
	Strategy      string        `json:"strategy"`
	Bins          []BinResult   `json:"bins"`
	UnplacedItems []Item        `json:"unplaced_items"`
	Elapsed       time.Duration `json:"elapsed"`
}

// TotalEfficiency returns overall bin usage percentage.
func (pr PackResult) TotalEfficiency() float64 {
	used, total := 0, 0
	for _, b := range pr.Bins {
		used += b.UsedArea()
		total += b.TotalArea()
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100.0
}

// PlacedCount returns the number of placed items across all bins.
func (pr PackResult) PlacedCount() int {
	n := 0
	for _, b := range pr.Bins {
		n += len(b.Placements)
	}
	return n
}

// Instance is a parsed packing problem.
type Instance struct {
	Name      string `json:"name"`
	Declared  int    `json:"declared"` // Item count stated by the source, -1 if unknown
	BinWidth  int    `json:"bin_width"`
	BinHeight int    `json:"bin_height"`
	Items     []Item `json:"items"`
}

// TotalArea returns the sum of the intrinsic item areas.
func (in Instance) TotalArea() int {
	total := 0
	for _, it := range in.Items {
		total += it.Area()
	}
	return total
}

// BinArea returns the area of a single bin.
func (in Instance) BinArea() int {
	return in.BinWidth * in.BinHeight
}

// MinBins returns the area lower bound ceil(total / bin area).
func MinBins(totalArea, binArea int) int {
	if binArea <= 0 {
		return 0
	}
	return (totalArea + binArea - 1) / binArea
}

// GapPercent returns the excess of used bins over the lower bound in
// percent, or 0 when the lower bound is 0.
func GapPercent(used, minBins int) float64 {
	if minBins <= 0 {
		return 0
	}
	return float64(used-minBins) / float64(minBins) * 100
}
