package core

// KeyColumnName is the key column of an Enrich result.
const KeyColumnName = "Key"

// EnrichOptions configures Enrich.
type EnrichOptions struct {
	// MissStatus is the status of keys absent from canonical. Defaults to
	// StatusNotFound; the matcher uses StatusUnique.
	MissStatus   Status
	StatusColumn string
}

// Enrich looks every key up in the canonical dataset and copies the requested
// fields. A miss fills every field with NotFound. Fields absent from the
// canonical column order fail with a *ColumnError before any key is looked up.
// A nil canonical fails with ErrEmptyDataset.
//
// The result has one row per input key, in input order, with columns Key,
// the fields, and the status column.
func Enrich(keys []Key, canonical *Dataset, keyCol KeyColumn, fields []string, opts EnrichOptions) (*Table, error) {
	if canonical == nil {
		return nil, emptyDataset("")
	}
	if err := validateFields(canonical, fields); err != nil {
		return nil, err
	}
	idx, err := BuildIndex(canonical, keyCol)
	if err != nil {
		return nil, err
	}

	statusCol := opts.StatusColumn
	if statusCol == "" {
		statusCol = DefaultStatusColumn
	}
	miss := opts.MissStatus
	if miss == "" {
		miss = StatusNotFound
	}

	cols := make([]string, 0, len(fields)+2)
	cols = append(cols, KeyColumnName)
	for _, f := range fields {
		if f == KeyColumnName || f == statusCol {
			return nil, &ConflictError{Column: f}
		}
		cols = append(cols, f)
	}
	cols = append(cols, statusCol)

	table := &Table{
		Columns: cols,
		Rows:    make([]Row, 0, len(keys)),
		Index:   make([]int, 0, len(keys)),
	}
	for i, k := range keys {
		row, found := idx.Lookup(k)
		out := make(Row, len(cols))
		out[KeyColumnName] = string(k)
		fillFields(out, fields, row, found)
		status := miss
		if found {
			status = StatusOverlapped
		}
		out[statusCol] = string(status)
		table.Rows = append(table.Rows, out)
		table.Index = append(table.Index, i+1)
	}
	return table, nil
}

// validateFields checks every field once, up front.
func validateFields(ds *Dataset, fields []string) error {
	for _, f := range fields {
		if !ds.HasColumn(f) {
			return missingColumn(ds.Name, f)
		}
	}
	return nil
}

// fillFields copies fields from src into out, or NotFound when src is a miss.
// A hit whose cell is absent also reads NotFound.
func fillFields(out Row, fields []string, src Row, found bool) {
	for _, f := range fields {
		if !found {
			out[f] = NotFound
			continue
		}
		v, ok := src[f]
		if !ok || v == nil {
			out[f] = NotFound
			continue
		}
		out[f] = v
	}
}
