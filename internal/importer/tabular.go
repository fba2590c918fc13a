package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/BinPacker/internal/model"
)

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	ID       int
	Width    int
	Height   int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"id":       {"id", "label", "name", "item", "object", "part"},
	"width":    {"width", "w", "length", "len", "x"},
	"height":   {"height", "h", "depth", "d", "y"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs"},
}

// csvDelimiters are tried in order; the first wins ties.
var csvDelimiters = []rune{',', ';', '\t', '|'}

// DetectCSVDelimiter guesses the delimiter of an item list. For each
// candidate the item rows are split and the most common column count is
// taken as the row shape; the delimiter under which most rows share that
// shape wins, wider shapes breaking ties. Blank rows and "bin" rows are
// left out, so a three column bin row does not disturb a four column list.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range csvDelimiters {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil {
			continue
		}

		shapes := make(map[int]int)
		for _, row := range records {
			if isEmptyRow(row) || strings.EqualFold(getCell(row, 0), "bin") {
				continue
			}
			shapes[len(row)]++
		}

		cols, rows := 0, 0
		for n, count := range shapes {
			if count > rows || (count == rows && n > cols) {
				cols, rows = n, count
			}
		}
		if cols < 2 {
			continue
		}
		if score := rows*10 + cols; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive. Without a recognised header the positional
// mapping id, width, height, quantity is returned together with false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{ID: -1, Width: -1, Height: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "id":
					if mapping.ID == -1 {
						mapping.ID = i
					}
				case "width":
					if mapping.Width == -1 {
						mapping.Width = i
					}
				case "height":
					if mapping.Height == -1 {
						mapping.Height = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{ID: 0, Width: 1, Height: 2, Quantity: 3}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseBinRow recognises "bin,W,H" rows.
func parseBinRow(row []string) (BinSize, bool, error) {
	if !strings.EqualFold(getCell(row, 0), "bin") {
		return BinSize{}, false, nil
	}
	w, errW := strconv.Atoi(getCell(row, 1))
	h, errH := strconv.Atoi(getCell(row, 2))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return BinSize{}, true, fmt.Errorf("%w: bin row %v", ErrBadHeader, row)
	}
	return BinSize{Width: w, Height: h}, true, nil
}

// parseRow extracts the items of one row. A quantity above one expands
// into ids "id#1", "id#2", ...
func parseRow(row []string, mapping ColumnMapping, rowLabel string) ([]model.Item, string) {
	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return nil, fmt.Sprintf("%s: Missing width value", rowLabel)
	}
	width, err := strconv.Atoi(widthStr)
	if err != nil {
		return nil, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr)
	}

	heightStr := getCell(row, mapping.Height)
	if heightStr == "" {
		return nil, fmt.Sprintf("%s: Missing height value", rowLabel)
	}
	height, err := strconv.Atoi(heightStr)
	if err != nil {
		return nil, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr)
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		qty, err = strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr)
		}
	}

	if width <= 0 || height <= 0 || qty <= 0 {
		return nil, fmt.Sprintf("%s: Width, height, and quantity must be positive", rowLabel)
	}

	id := getCell(row, mapping.ID)
	if qty == 1 {
		if id == "" {
			return []model.Item{model.NewGeneratedItem(width, height)}, ""
		}
		return []model.Item{model.NewItem(id, width, height)}, ""
	}

	if id == "" {
		id = model.NewGeneratedItem(width, height).ID
	}
	items := make([]model.Item, qty)
	for i := range items {
		items[i] = model.NewItem(fmt.Sprintf("%s#%d", id, i+1), width, height)
	}
	return items, ""
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, bin BinSize, initialWarnings []string) (ImportResult, error) {
	result := ImportResult{Warnings: initialWarnings}

	var data [][]string
	var lineNums []int
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		size, ok, err := parseBinRow(row)
		if err != nil {
			return result, err
		}
		if ok {
			if bin.IsZero() {
				bin = size
			} else {
				result.warnf("%s %d: bin row ignored, using %dx%d", rowPrefix, i+1, bin.Width, bin.Height)
			}
			continue
		}
		data = append(data, row)
		lineNums = append(lineNums, i+1)
	}
	if len(data) == 0 {
		return result, ErrEmptyInstance
	}
	if bin.IsZero() {
		return result, ErrMissingBin
	}

	mapping, hasHeader := DetectColumns(data[0])
	start := 0
	if hasHeader {
		start = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			return result, fmt.Errorf("%w: required columns not found: %s", ErrBadHeader, strings.Join(missing, ", "))
		}
	} else if len(data[0]) >= 3 {
		// A non-numeric width on the first row is an unrecognised header
		if _, err := strconv.Atoi(strings.TrimSpace(data[0][1])); err != nil {
			start = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	result.Instance.BinWidth = bin.Width
	result.Instance.BinHeight = bin.Height
	for i := start; i < len(data); i++ {
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNums[i])
		items, errMsg := parseRow(data[i], mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Instance.Items = append(result.Instance.Items, items...)
	}
	result.Instance.Declared = len(result.Instance.Items)
	return result, nil
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ImportCSV imports items from a CSV file, detecting the delimiter.
func ImportCSV(path string, bin BinSize) (ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("cannot open file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{}, ErrEmptyInstance
	}

	var warnings []string
	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		return ImportResult{}, fmt.Errorf("cannot read CSV: %w", err)
	}
	return importFromRows(records, "Line", bin, warnings)
}

// ImportCSVFromReader imports items from a CSV reader with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune, bin BinSize) (ImportResult, error) {
	records, err := readCSV(r, delimiter)
	if err != nil {
		return ImportResult{}, fmt.Errorf("cannot read CSV: %w", err)
	}
	return importFromRows(records, "Line", bin, nil)
}

// ImportExcel imports items from the first sheet of an Excel workbook.
func ImportExcel(path string, bin BinSize) (ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("cannot open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, ErrEmptyInstance
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, fmt.Errorf("cannot read Excel data: %w", err)
	}
	return importFromRows(rows, "Row", bin, nil)
}
