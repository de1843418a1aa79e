package core

import "strings"

// GapOptions configures Gaps.
type GapOptions struct {
	// Fields lists the attributes recovered from the new dataset's own row.
	// Nil means every column of the new dataset other than its key column.
	Fields       []string
	StatusColumn string
}

// Gaps reports the keys present in newDS but absent from canonical.
//
// Keys, not rows, are the unit of difference: a key repeated in newDS is
// reported once, at the position of its first occurrence, with attributes
// taken from that row. Attributes that are absent or blank there read
// NotFound. Output order follows newDS, never set iteration order.
//
// newDS plays the subject role, so an empty newDS fails with ErrEmptyDataset;
// an empty canonical makes every key a gap.
func Gaps(newDS *Dataset, newKey KeyColumn, canonical *Dataset, canonicalKey KeyColumn, opts GapOptions) (*Table, error) {
	if newDS.Empty() {
		return nil, emptyDataset(newDS.Name)
	}
	keyCol, err := newKey.Resolve(newDS)
	if err != nil {
		return nil, err
	}

	fields := opts.Fields
	if fields == nil {
		fields = make([]string, 0, len(newDS.Columns))
		for _, c := range newDS.Columns {
			if c != keyCol {
				fields = append(fields, c)
			}
		}
	}
	if err := validateFields(newDS, fields); err != nil {
		return nil, err
	}

	statusCol := opts.StatusColumn
	if statusCol == "" {
		statusCol = DefaultStatusColumn
	}
	cols := make([]string, 0, len(fields)+2)
	cols = append(cols, keyCol)
	for _, f := range fields {
		if f == keyCol {
			continue
		}
		if f == statusCol {
			return nil, &ConflictError{Column: f}
		}
		cols = append(cols, f)
	}
	cols = append(cols, statusCol)

	newIdx, err := BuildIndex(newDS, newKey)
	if err != nil {
		return nil, err
	}
	canonIdx, err := BuildIndex(canonical, canonicalKey)
	if err != nil {
		return nil, err
	}

	// newIdx.Keys is in first-seen order, which is newDS row order.
	table := &Table{Columns: cols}
	for _, k := range newIdx.Keys() {
		if canonIdx.Contains(k) {
			continue
		}
		pos, _ := newIdx.FirstRow(k)
		src := newDS.Rows[pos]

		out := make(Row, len(cols))
		out[keyCol] = string(k)
		for _, f := range cols[1 : len(cols)-1] {
			v, ok := src[f]
			if !ok || isBlank(v) {
				v = NotFound
			}
			out[f] = v
		}
		out[statusCol] = NotFound

		table.Rows = append(table.Rows, out)
		table.Index = append(table.Index, len(table.Rows))
	}
	return table, nil
}

// Overlap returns the keys of newDS that canonical also holds, in newDS
// order. Together with the keys of Gaps it partitions the keys of newDS.
func Overlap(newDS *Dataset, newKey KeyColumn, canonical *Dataset, canonicalKey KeyColumn) ([]Key, error) {
	newIdx, err := BuildIndex(newDS, newKey)
	if err != nil {
		return nil, err
	}
	canonIdx, err := BuildIndex(canonical, canonicalKey)
	if err != nil {
		return nil, err
	}
	var out []Key
	for _, k := range newIdx.Keys() {
		if canonIdx.Contains(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func isBlank(v Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
