package core

// Value is a raw cell value: string, integer, floating-point, bool or nil.
type Value = any

// Row maps column name to raw cell value.
type Row map[string]Value

// Dataset is one named, ordered collection of rows sharing a column schema.
// Datasets are read-only once handed to the core.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewDataset builds a dataset from positional records aligned with columns.
// Short records leave the trailing columns absent.
func NewDataset(name string, columns []string, records [][]Value) *Dataset {
	ds := &Dataset{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    make([]Row, 0, len(records)),
	}
	for _, rec := range records {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

// Empty reports whether the dataset has zero rows or zero columns.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Rows) == 0 || len(d.Columns) == 0
}

// HasColumn reports whether col is part of the dataset's column order.
func (d *Dataset) HasColumn(col string) bool {
	return d != nil && columnPosition(d.Columns, col) >= 0
}

func columnPosition(cols []string, col string) int {
	for i, c := range cols {
		if c == col {
			return i
		}
	}
	return -1
}

// Workbook is an insertion-ordered mapping of dataset name to Dataset, the
// shape an uploaded multi-sheet file arrives in.
type Workbook struct {
	names    []string
	datasets map[string]*Dataset
}

// NewWorkbook creates a workbook from datasets in the given order.
// A later dataset with a repeated name replaces the earlier one in place.
func NewWorkbook(datasets ...*Dataset) *Workbook {
	wb := &Workbook{datasets: make(map[string]*Dataset, len(datasets))}
	for _, ds := range datasets {
		wb.Add(ds)
	}
	return wb
}

// Add appends ds, or replaces the dataset of the same name keeping its position.
func (w *Workbook) Add(ds *Dataset) {
	if w.datasets == nil {
		w.datasets = make(map[string]*Dataset)
	}
	if _, exists := w.datasets[ds.Name]; !exists {
		w.names = append(w.names, ds.Name)
	}
	w.datasets[ds.Name] = ds
}

// Get returns the dataset with the given name.
func (w *Workbook) Get(name string) (*Dataset, bool) {
	ds, ok := w.datasets[name]
	return ds, ok
}

// Names returns the dataset names in insertion order.
func (w *Workbook) Names() []string {
	return append([]string(nil), w.names...)
}

// Datasets returns the datasets in insertion order.
func (w *Workbook) Datasets() []*Dataset {
	out := make([]*Dataset, len(w.names))
	for i, name := range w.names {
		out[i] = w.datasets[name]
	}
	return out
}

// Len returns the number of datasets.
func (w *Workbook) Len() int {
	return len(w.names)
}

// Table is an ordered result sequence ready for a presenter or exporter.
// Index holds one ordinal per row (see Numbering).
type Table struct {
	Columns []string
	Rows    []Row
	Index   []int
}

// Len returns the number of result rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the values of col in row order.
func (t *Table) Column(col string) []Value {
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[col]
	}
	return out
}
