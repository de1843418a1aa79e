package source

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/tealeg/xlsx"
)

// ReadXLSXBytes parses an in-memory .xlsx workbook. See ReadXLSX.
func ReadXLSXBytes(data []byte) (*core.Workbook, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return ReadXLSX(bytes.NewReader(data), int64(len(data)))
}

// ReadXLSX parses a workbook. Every sheet becomes a dataset, in sheet order.
// The first row of a sheet is its header; rows whose cells are all blank are
// dropped. Numeric cells become float64, boolean cells bool, blank cells nil
// and everything else a string.
func ReadXLSX(r io.ReaderAt, size int64) (wb *core.Workbook, err error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}

	// the xlsx reader panics on malformed shared string tables
	defer func() {
		if p := recover(); p != nil {
			wb, err = nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, p)
		}
	}()

	file, err := xlsx.ReadZipReader(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrEmptyFile)
	}

	wb = core.NewWorkbook()
	for _, sheet := range file.Sheets {
		wb.Add(sheetDataset(sheet))
	}
	return wb, nil
}

func sheetDataset(sheet *xlsx.Sheet) *core.Dataset {
	records := make([][]any, 0, len(sheet.Rows))
	width := 0
	for _, row := range sheet.Rows {
		var rec []any
		if row != nil {
			rec = make([]any, len(row.Cells))
			for i, cell := range row.Cells {
				rec[i] = cellValue(cell)
			}
		}
		if w := usedWidth(rec); w > width {
			width = w
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return core.NewDataset(sheet.Name, nil, nil)
	}

	raw := make([]string, width)
	for i := 0; i < width && i < len(records[0]); i++ {
		if v := records[0][i]; v != nil {
			raw[i] = cellText(v)
		}
	}

	body := make([][]core.Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		body = append(body, rec)
	}
	return core.NewDataset(sheet.Name, headerNames(raw), body)
}

// usedWidth is the position after the last non-blank cell.
func usedWidth(rec []any) int {
	for i := len(rec) - 1; i >= 0; i-- {
		if rec[i] != nil {
			return i + 1
		}
	}
	return 0
}

func cellValue(cell *xlsx.Cell) any {
	if cell == nil || strings.TrimSpace(cell.Value) == "" {
		return nil
	}
	switch cell.Type() {
	case xlsx.CellTypeBool:
		return cell.Value == "1" || strings.EqualFold(cell.Value, "true")
	case xlsx.CellTypeNumeric:
		if f, err := strconv.ParseFloat(cell.Value, 64); err == nil {
			return f
		}
	}
	return cell.Value
}

// cellText renders a header cell.
func cellText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
