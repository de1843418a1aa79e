package export

import (
	"io"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/tealeg/xlsx"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// WriteXLSX writes t as a single-sheet workbook. Booleans become boolean
// cells, numbers numeric cells and nil an empty cell.
func WriteXLSX(w io.Writer, sheetName string, t *core.Table, opts Options) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName(sheetName))
	if err != nil {
		return err
	}

	hr := sheet.AddRow()
	for _, col := range header(t, opts) {
		hr.AddCell().SetString(col)
	}

	for i, row := range t.Rows {
		r := sheet.AddRow()
		if opts.IndexColumn != "" {
			r.AddCell().SetInt(t.Index[i])
		}
		for _, col := range t.Columns {
			setCell(r.AddCell(), row[col])
		}
	}

	return file.Write(w)
}

func setCell(cell *xlsx.Cell, v core.Value) {
	switch val := v.(type) {
	case nil:
	case bool:
		cell.SetBool(val)
	case float64:
		cell.SetFloat(val)
	case int:
		cell.SetInt(val)
	case int64:
		cell.SetFloat(float64(val))
	case string:
		cell.SetString(val)
	default:
		cell.SetString(FormatCell(val))
	}
}

// SheetName makes name acceptable to Excel: no []:*?/\ characters, at most
// 31 characters, never empty.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "Result"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}
