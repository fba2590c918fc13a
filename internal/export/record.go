// Package export writes packing results: the JSON result record, PDF
// layouts, QR-coded labels, Excel reports, DXF drawings and PNG previews.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/piwi3910/BinPacker/internal/model"
)

// Record is the result record written after packing and after any
// improvement pass.
type Record struct {
	BinsUsed             int         `json:"bins_used"`
	MinTheoreticalBins   int         `json:"min_theoretical_bins"`
	TotalObjectsArea     int         `json:"total_objects_area"`
	SingleBinArea        int         `json:"single_bin_area"`
	GapPercentage        float64     `json:"gap_percentage"`
	ExecutionTimeSeconds float64     `json:"execution_time_seconds"`
	Bins                 []BinRecord `json:"bins"`
}

// BinRecord lists the objects of one bin.
type BinRecord struct {
	BinNumber int            `json:"bin_number"`
	Objects   []ObjectRecord `json:"objects"`
}

// ObjectRecord is a placed item. Width and Height are the footprint in the
// bin, so a rotated item reports its dimensions swapped.
type ObjectRecord struct {
	ID      string `json:"id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Rotated bool   `json:"rotated"`
}

// NewRecord builds the record for a result. Area totals come from the
// instance, so items that could not be placed still count towards the
// lower bound.
func NewRecord(result model.PackResult, in model.Instance) Record {
	total := in.TotalArea()
	binArea := in.BinArea()
	minBins := model.MinBins(total, binArea)

	rec := Record{
		BinsUsed:             len(result.Bins),
		MinTheoreticalBins:   minBins,
		TotalObjectsArea:     total,
		SingleBinArea:        binArea,
		GapPercentage:        round(model.GapPercent(len(result.Bins), minBins), 2),
		ExecutionTimeSeconds: round(result.Elapsed.Seconds(), 4),
		Bins:                 make([]BinRecord, 0, len(result.Bins)),
	}
	for _, b := range result.Bins {
		br := BinRecord{BinNumber: b.Index, Objects: make([]ObjectRecord, 0, len(b.Placements))}
		for _, p := range b.Placements {
			br.Objects = append(br.Objects, ObjectRecord{
				ID:      p.Item.ID,
				Width:   p.PlacedWidth(),
				Height:  p.PlacedHeight(),
				X:       p.X,
				Y:       p.Y,
				Rotated: p.Rotated,
			})
		}
		rec.Bins = append(rec.Bins, br)
	}
	return rec
}

// WriteRecord writes the record as indented JSON.
func WriteRecord(path string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// ReadRecord loads a record written by WriteRecord.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse record: %w", err)
	}
	return rec, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
