package core

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// KeyColumn selects a dataset's identifier column by name or by position.
// The zero value selects the first column.
type KeyColumn struct {
	Name     string
	Position int
}

// FirstColumn selects column 0, the convention of sheets that lead with the
// identifier.
func FirstColumn() KeyColumn { return KeyColumn{} }

// ColumnAt selects the column at 0-based position i.
func ColumnAt(i int) KeyColumn { return KeyColumn{Position: i} }

// ColumnNamed selects the column with the given header, wherever it sits.
func ColumnNamed(name string) KeyColumn { return KeyColumn{Name: name} }

// ByName reports whether the selection is by header name.
func (k KeyColumn) ByName() bool { return k.Name != "" }

// Resolve returns the column name the selection designates in ds.
func (k KeyColumn) Resolve(ds *Dataset) (string, error) {
	if k.ByName() {
		if !ds.HasColumn(k.Name) {
			return "", missingColumn(ds.Name, k.Name)
		}
		return k.Name, nil
	}
	if k.Position < 0 || k.Position >= len(ds.Columns) {
		return "", missingColumn(ds.Name, "#"+strconv.Itoa(k.Position))
	}
	return ds.Columns[k.Position], nil
}

func (k KeyColumn) String() string {
	if k.ByName() {
		return strconv.Quote(k.Name)
	}
	return "#" + strconv.Itoa(k.Position)
}

// Index is an immutable key index over one dataset column. Membership is
// set-valued; lookup is last-row-wins when a key repeats.
type Index struct {
	dataset string
	column  string
	order   []Key
	rows    map[Key]Row
	first   map[Key]int
}

// BuildIndex indexes ds on the selected key column.
//
// Rows whose key cell is absent or blank contribute nothing. An empty dataset
// (no rows or no columns) yields an empty index rather than an error, since
// it simply has nothing to compare against. A key column that does not exist
// fails with a *ColumnError.
func BuildIndex(ds *Dataset, keyCol KeyColumn) (*Index, error) {
	idx := &Index{
		dataset: ds.Name,
		rows:    make(map[Key]Row),
		first:   make(map[Key]int),
	}
	if ds.Empty() {
		return idx, nil
	}

	col, err := keyCol.Resolve(ds)
	if err != nil {
		return nil, err
	}
	idx.column = col

	for i, row := range ds.Rows {
		raw, ok := row[col]
		if !ok {
			continue
		}
		key, err := Normalize(raw)
		if err != nil {
			continue
		}
		if _, seen := idx.first[key]; !seen {
			idx.first[key] = i
			idx.order = append(idx.order, key)
		}
		idx.rows[key] = row
	}

	return idx, nil
}

// BuildIndexes indexes each dataset independently using up to workers
// goroutines. The result is positionally aligned with datasets. The first
// failure cancels the remaining builds.
func BuildIndexes(ctx context.Context, datasets []*Dataset, keyCol KeyColumn, workers int) ([]*Index, error) {
	out := make([]*Index, len(datasets))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, ds := range datasets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, err := BuildIndex(ds, keyCol)
			if err != nil {
				return fmt.Errorf("index %q: %w", ds.Name, err)
			}
			out[i] = idx
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Dataset returns the name of the indexed dataset.
func (x *Index) Dataset() string { return x.dataset }

// Column returns the resolved key column, empty for an empty dataset.
func (x *Index) Column() string { return x.column }

// Len returns the number of distinct keys.
func (x *Index) Len() int { return len(x.order) }

// Contains reports membership of k.
func (x *Index) Contains(k Key) bool {
	_, ok := x.rows[k]
	return ok
}

// Lookup returns the last row carrying k.
func (x *Index) Lookup(k Key) (Row, bool) {
	row, ok := x.rows[k]
	return row, ok
}

// FirstRow returns the 0-based position of the first row carrying k.
func (x *Index) FirstRow(k Key) (int, bool) {
	i, ok := x.first[k]
	return i, ok
}

// Keys returns the distinct keys in first-seen order.
func (x *Index) Keys() []Key {
	return append([]Key(nil), x.order...)
}

// KeySet is a plain membership set of keys.
type KeySet map[Key]struct{}

// Contains reports membership of k.
func (s KeySet) Contains(k Key) bool {
	_, ok := s[k]
	return ok
}

// Union returns the set of keys present in at least one index.
func Union(indexes ...*Index) KeySet {
	n := 0
	for _, idx := range indexes {
		n += idx.Len()
	}
	set := make(KeySet, n)
	for _, idx := range indexes {
		for _, k := range idx.order {
			set[k] = struct{}{}
		}
	}
	return set
}
