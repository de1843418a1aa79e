package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
)

// ErrInvalidPayload reports a JSON workbook that cannot be decoded.
var ErrInvalidPayload = errors.New("invalid request: datasets payload")

// Payload is the JSON form of a workbook:
//
//	{"datasets": [{"name": "MSE", "columns": ["EMIS", "Name"], "rows": [[12345, "A"]]}]}
//
// Numbers decode as float64.
type Payload struct {
	Datasets []PayloadDataset `json:"datasets"`
}

// PayloadDataset is one dataset of a Payload.
type PayloadDataset struct {
	Name    string         `json:"name"`
	Columns []string       `json:"columns"`
	Rows    [][]core.Value `json:"rows"`
}

// DecodeJSON reads a Payload and builds the workbook it describes.
func DecodeJSON(r io.Reader) (*core.Workbook, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p.Workbook()
}

// Workbook validates the payload and converts it.
func (p Payload) Workbook() (*core.Workbook, error) {
	if len(p.Datasets) == 0 {
		return nil, fmt.Errorf("%w: no datasets", ErrEmptyFile)
	}

	wb := core.NewWorkbook()
	seen := make(map[string]bool, len(p.Datasets))
	for i, d := range p.Datasets {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: dataset %d has no name", ErrInvalidPayload, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate dataset %q", ErrInvalidPayload, name)
		}
		seen[name] = true

		rows := make([][]core.Value, 0, len(d.Rows))
		for _, rec := range d.Rows {
			if !blankRecord(rec) {
				rows = append(rows, rec)
			}
		}
		wb.Add(core.NewDataset(name, headerNames(d.Columns), rows))
	}
	return wb, nil
}
