package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/BinPacker/internal/model"
)

const (
	summarySheet   = "Summary"
	placementSheet = "Placements"
	unplacedSheet  = "Unplaced"
)

// WriteXLSX writes a workbook with a summary sheet, one row per placed
// item and, when needed, a sheet of items that did not fit.
func WriteXLSX(path string, result model.PackResult, rec Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	summary := [][]interface{}{
		{"Run", result.RunID},
		{"Strategy", result.Strategy},
		{"Bins used", rec.BinsUsed},
		{"Min theoretical bins", rec.MinTheoreticalBins},
		{"Total objects area", rec.TotalObjectsArea},
		{"Single bin area", rec.SingleBinArea},
		{"Gap %", rec.GapPercentage},
		{"Execution time (s)", rec.ExecutionTimeSeconds},
		{"Overall efficiency %", result.TotalEfficiency()},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}

	if _, err := f.NewSheet(placementSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	rows := [][]interface{}{{"Bin", "ID", "Width", "Height", "X", "Y", "Rotated"}}
	for _, bin := range result.Bins {
		for _, p := range bin.Placements {
			rows = append(rows, []interface{}{bin.Index, p.Item.ID, p.Item.Width, p.Item.Height, p.X, p.Y, p.Rotated})
		}
	}
	if err := writeRows(f, placementSheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(placementSheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if len(result.UnplacedItems) > 0 {
		if _, err := f.NewSheet(unplacedSheet); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}
		rows := [][]interface{}{{"ID", "Width", "Height"}}
		for _, it := range result.UnplacedItems {
			rows = append(rows, []interface{}{it.ID, it.Width, it.Height})
		}
		if err := writeRows(f, unplacedSheet, rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to create cell reference: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
