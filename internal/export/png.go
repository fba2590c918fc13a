package export

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/BinPacker/internal/model"
)

// Preview geometry in pixels.
const (
	previewBinSize = 240 // Longest bin side
	previewGap     = 16
	previewBorder  = 1
)

var (
	previewBackground = color.NRGBA{255, 255, 255, 255}
	previewBinFill    = color.NRGBA{240, 240, 240, 255}
	previewOutline    = color.NRGBA{30, 30, 30, 255}
)

// WritePNG renders all bins side by side into a single preview image.
// Rotated items are marked with a dark square in their top-left corner.
func WritePNG(path string, result model.PackResult) error {
	img, err := RenderPreview(result)
	if err != nil {
		return err
	}
	return imaging.Save(img, path)
}

// RenderPreview draws the preview image without writing it.
func RenderPreview(result model.PackResult) (*image.NRGBA, error) {
	if len(result.Bins) == 0 {
		return nil, ErrNoBins
	}

	longest := 0
	for _, b := range result.Bins {
		longest = max(longest, b.Width, b.Height)
	}
	scale := float64(previewBinSize) / float64(longest)
	px := func(v int) int { return int(math.Round(float64(v) * scale)) }

	canvasW, canvasH := previewGap, 0
	for _, b := range result.Bins {
		canvasW += px(b.Width) + previewGap
		canvasH = max(canvasH, px(b.Height))
	}
	canvasH += 2 * previewGap

	canvas := imaging.New(canvasW, canvasH, previewBackground)
	left := previewGap
	for _, b := range result.Bins {
		bw, bh := px(b.Width), px(b.Height)
		top := previewGap
		canvas = framedRect(canvas, left, top, bw, bh, previewBinFill)

		for i, p := range b.Placements {
			c := itemColors[i%len(itemColors)]
			w, h := max(px(p.PlacedWidth()), 1), max(px(p.PlacedHeight()), 1)
			x := left + px(p.X)
			// Bin y runs upwards from the bottom edge
			y := top + bh - px(p.Y) - h
			canvas = framedRect(canvas, x, y, w, h, color.NRGBA{uint8(c.R), uint8(c.G), uint8(c.B), 255})
			if p.Rotated {
				mark := max(min(w, h)/4, 1)
				canvas = imaging.Paste(canvas, imaging.New(mark, mark, previewOutline), image.Pt(x, y))
			}
		}
		left += bw + previewGap
	}
	return canvas, nil
}

// framedRect pastes a filled rectangle with a one pixel outline.
func framedRect(dst *image.NRGBA, x, y, w, h int, fill color.NRGBA) *image.NRGBA {
	dst = imaging.Paste(dst, imaging.New(w, h, previewOutline), image.Pt(x, y))
	if w > 2*previewBorder && h > 2*previewBorder {
		inner := imaging.New(w-2*previewBorder, h-2*previewBorder, fill)
		dst = imaging.Paste(dst, inner, image.Pt(x+previewBorder, y+previewBorder))
	}
	return dst
}
