package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
)

// ReadCSV parses one CSV file into a dataset called name. A leading BOM is
// dropped and invalid UTF-8 is replaced before parsing. The first record is
// the header; cells are strings and blank cells nil. Records may be shorter
// or longer than the header.
func ReadCSV(name string, r io.Reader) (*core.Dataset, error) {
	cr := csv.NewReader(cleanText(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s has no header row", ErrEmptyFile, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	columns := headerNames(header)

	var records [][]core.Value
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}

		values := make([]core.Value, len(rec))
		for i, cell := range rec {
			if c := cleanCell(cell); c != "" {
				values[i] = c
			}
		}
		if blankRecord(values) {
			continue
		}
		if len(values) > len(columns) {
			for i := len(columns); i < len(values); i++ {
				columns = append(columns, "Unnamed: "+strconv.Itoa(i))
			}
		}
		records = append(records, values)
	}

	return core.NewDataset(strings.TrimSpace(name), columns, records), nil
}
