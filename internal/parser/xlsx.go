package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Parse reads the first sheet. The first non-empty row is the header.
func (xlsxParser) Parse(r io.Reader) (*dataset.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]

	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	headerIdx := -1
	for i, row := range shown {
		if !blankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return &dataset.Table{}, nil
	}

	var rows [][]any
	for i := headerIdx + 1; i < len(shown); i++ {
		cells := make([]any, len(shown[i]))
		for j, text := range shown[i] {
			var rawText string
			if i < len(raw) && j < len(raw[i]) {
				rawText = raw[i][j]
			}
			cells[j] = xlsxCell(f, sheet, j+1, i+1, text, rawText)
		}
		rows = append(rows, cells)
	}
	return newTable(shown[headerIdx], rows), nil
}

// xlsxCell types one cell from its stored kind: booleans and numbers become
// native values and numbers displayed as dates become times.
func xlsxCell(f *excelize.File, sheet string, col, row int, shown, raw string) any {
	shown = strings.TrimSpace(shown)
	if shown == "" && raw == "" {
		return nil
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return shown
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return shown
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return shown
		}
		if shown != raw && dateDisplay(shown) {
			if t, err := excelize.ExcelDateToTime(x, false); err == nil {
				return t
			}
		}
		return x
	default:
		return shown
	}
}

// dateDisplay reports whether a formatted number reads like a date or time.
func dateDisplay(shown string) bool {
	if _, err := strconv.ParseFloat(shown, 64); err == nil {
		return false
	}
	return strings.ContainsAny(shown, "/:") || strings.Contains(strings.TrimPrefix(shown, "-"), "-")
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
