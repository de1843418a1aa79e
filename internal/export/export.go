// Package export writes result tables as .xlsx or .csv downloads.
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/overlap/internal/core"
)

// Format is a download format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv"; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported file type %q: use xlsx or csv", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Options controls what is written besides the table columns.
type Options struct {
	// IndexColumn, when set, prepends a column holding Table.Index.
	IndexColumn string
}

// FileName returns the download name for a comparison of subject, for
// example "MSE_vs_multiple_overlap.xlsx".
func FileName(subject string, f Format) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(subject))
	if name == "" {
		name = "result"
	}
	return name + "_vs_multiple_overlap." + string(f)
}

// FormatCell renders a cell value as text. Booleans read TRUE or FALSE,
// integral floats print without a fractional part and nil is empty.
func FormatCell(v core.Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) && math.Abs(val) < 1e15 {
			return strconv.FormatFloat(val, 'f', 0, 64)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.DateOnly)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func header(t *core.Table, opts Options) []string {
	cols := t.Columns
	if opts.IndexColumn != "" {
		cols = append([]string{opts.IndexColumn}, cols...)
	}
	return cols
}
