package core

// SearchIndex answers "which datasets contain key K" across a workbook.
type SearchIndex struct {
	names   []string
	members map[Key][]int
}

// NewSearchIndex indexes the identifier column of every dataset, chosen by
// keyCol. Datasets that are empty, have no columns, or lack the selected
// column are skipped rather than treated as errors.
func NewSearchIndex(wb *Workbook, keyCol KeyColumn) *SearchIndex {
	si := &SearchIndex{members: make(map[Key][]int)}
	for _, ds := range wb.Datasets() {
		if ds.Empty() {
			continue
		}
		idx, err := BuildIndex(ds, keyCol)
		if err != nil {
			continue
		}
		pos := len(si.names)
		si.names = append(si.names, ds.Name)
		for _, k := range idx.order {
			si.members[k] = append(si.members[k], pos)
		}
	}
	return si
}

// Lookup returns the names of the datasets whose identifier column holds a
// value normalizing to query, in workbook order. Matching is exact on the
// normalized form; a fragment of a name matches nothing.
func (si *SearchIndex) Lookup(query string) ([]string, error) {
	k, err := Normalize(query)
	if err != nil {
		return nil, err
	}
	positions := si.members[k]
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = si.names[p]
	}
	return out, nil
}

// Datasets returns the names of the datasets that were indexed.
func (si *SearchIndex) Datasets() []string {
	return append([]string(nil), si.names...)
}

// Search is the one-shot form of NewSearchIndex followed by Lookup.
func Search(wb *Workbook, keyCol KeyColumn, query string) ([]string, error) {
	if _, err := Normalize(query); err != nil {
		return nil, err
	}
	return NewSearchIndex(wb, keyCol).Lookup(query)
}
