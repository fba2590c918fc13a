package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/BinPacker/internal/model"
)

// Layer names used in exported drawings.
const (
	LayerBins   = "BINS"
	LayerItems  = "OBJECTS"
	LayerLabels = "LABELS"
)

// WriteDXF draws every bin outline and placed item in drawing units, with
// bins laid out left to right and separated by a tenth of the bin width.
// Rotated items carry a diagonal.
func WriteDXF(path string, result model.PackResult) error {
	if len(result.Bins) == 0 {
		return ErrNoBins
	}

	d := dxf.NewDrawing()
	for _, layer := range []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerBins, color.White},
		{LayerItems, color.Cyan},
		{LayerLabels, color.Yellow},
	} {
		if _, err := d.AddLayer(layer.name, layer.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", layer.name, err)
		}
	}

	offset := 0.0
	for _, bin := range result.Bins {
		gap := max(float64(bin.Width)/10, 1)

		if err := d.ChangeLayer(LayerBins); err != nil {
			return err
		}
		if err := drawRect(d, offset, 0, float64(bin.Width), float64(bin.Height)); err != nil {
			return err
		}
		textH := max(float64(bin.Height)/40, 0.5)
		if _, err := d.Text(fmt.Sprintf("Bin %d", bin.Index), offset, -2*textH, 0, textH); err != nil {
			return err
		}

		for _, p := range bin.Placements {
			x, y := offset+float64(p.X), float64(p.Y)
			w, h := float64(p.PlacedWidth()), float64(p.PlacedHeight())

			if err := d.ChangeLayer(LayerItems); err != nil {
				return err
			}
			if err := drawRect(d, x, y, w, h); err != nil {
				return err
			}
			if p.Rotated {
				if _, err := d.Line(x, y, 0, x+w, y+h, 0); err != nil {
					return err
				}
			}

			if err := d.ChangeLayer(LayerLabels); err != nil {
				return err
			}
			if _, err := d.Text(p.Item.ID, x+textH/2, y+textH/2, 0, min(textH, h/3)); err != nil {
				return err
			}
		}
		offset += float64(bin.Width) + gap
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

func drawRect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			return fmt.Errorf("failed to draw line: %w", err)
		}
	}
	return nil
}
