package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/JonMunkholm/overlap/internal/core"
)

// WriteCSV writes the header row and one record per result row.
func WriteCSV(w io.Writer, t *core.Table, opts Options) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header(t, opts)); err != nil {
		return err
	}

	for i, row := range t.Rows {
		record := make([]string, 0, len(t.Columns)+1)
		if opts.IndexColumn != "" {
			record = append(record, strconv.Itoa(t.Index[i]))
		}
		for _, col := range t.Columns {
			record = append(record, FormatCell(row[col]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
