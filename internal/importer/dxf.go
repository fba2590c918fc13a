package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/BinPacker/internal/model"
)

// dxfTolerance absorbs floating point noise before rounding sizes up.
const dxfTolerance = 1e-6

// bounds is an axis-aligned bounding box in drawing units.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func emptyBounds() bounds {
	return bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (b *bounds) add(x, y float64) {
	b.minX = min(b.minX, x)
	b.minY = min(b.minY, y)
	b.maxX = max(b.maxX, x)
	b.maxY = max(b.maxY, y)
}

// size returns the box dimensions rounded up to whole units.
func (b bounds) size() (int, int) {
	return ceilUnits(b.maxX - b.minX), ceilUnits(b.maxY - b.minY)
}

func ceilUnits(v float64) int {
	return int(math.Ceil(v - dxfTolerance))
}

// ImportDXF imports items from a DXF drawing. Every LWPOLYLINE with at
// least three vertices and every CIRCLE becomes one item sized by its
// bounding box, rounded up to whole drawing units. Other entities are
// ignored. The bin size must come from the caller.
func ImportDXF(path string, bin BinSize) (ImportResult, error) {
	if bin.IsZero() {
		return ImportResult{}, ErrMissingBin
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("cannot open DXF file: %w", err)
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return ImportResult{}, ErrEmptyInstance
	}

	result := ImportResult{Instance: model.Instance{BinWidth: bin.Width, BinHeight: bin.Height}}
	shape := 0
	for _, ent := range entities {
		box := emptyBounds()
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.warnf("Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			for _, v := range e.Vertices {
				box.add(v[0], v[1])
			}
		case *entity.Circle:
			box.add(e.Center[0]-e.Radius, e.Center[1]-e.Radius)
			box.add(e.Center[0]+e.Radius, e.Center[1]+e.Radius)
		default:
			continue
		}

		shape++
		w, h := box.size()
		if w <= 0 || h <= 0 {
			result.warnf("Skipped degenerate shape %d (%dx%d)", shape, w, h)
			continue
		}
		result.Instance.Items = append(result.Instance.Items, model.NewItem(fmt.Sprintf("dxf-%d", shape), w, h))
	}

	if len(result.Instance.Items) == 0 {
		return result, fmt.Errorf("no closed shapes in DXF file: %w", ErrEmptyInstance)
	}
	result.Instance.Declared = len(result.Instance.Items)
	return result, nil
}
