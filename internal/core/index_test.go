package core

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func dataset(name string, columns []string, records ...[]Value) *Dataset {
	return NewDataset(name, columns, records)
}

func TestKeyColumn_Resolve(t *testing.T) {
	ds := dataset("MSE", []string{"EMIS", "Name"}, []Value{"1", "A"})

	tests := []struct {
		name    string
		keyCol  KeyColumn
		want    string
		wantErr bool
	}{
		{"zero value is first column", KeyColumn{}, "EMIS", false},
		{"by position", ColumnAt(1), "Name", false},
		{"by name", ColumnNamed("Name"), "Name", false},
		{"missing name", ColumnNamed("Roll"), "", true},
		{"position out of range", ColumnAt(2), "", true},
		{"negative position", ColumnAt(-1), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.keyCol.Resolve(ds)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingColumn) {
					t.Fatalf("Resolve() error = %v, want ErrMissingColumn", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildIndex_LastWinsAndFirstSeen(t *testing.T) {
	ds := dataset("R", []string{"EMIS", "Name"},
		[]Value{"K", "A"},
		[]Value{"J", "X"},
		[]Value{" K ", "B"},
	)

	idx, err := BuildIndex(ds, FirstColumn())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	row, ok := idx.Lookup("K")
	if !ok {
		t.Fatal("Lookup(K) not found")
	}
	if row["Name"] != "B" {
		t.Errorf("Lookup(K) Name = %v, want B (last row wins)", row["Name"])
	}
	if pos, _ := idx.FirstRow("K"); pos != 0 {
		t.Errorf("FirstRow(K) = %d, want 0", pos)
	}
	if got := idx.Keys(); !slices.Equal(got, []Key{"K", "J"}) {
		t.Errorf("Keys() = %v, want [K J]", got)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
}

func TestBuildIndex_Completeness(t *testing.T) {
	ds := dataset("R", []string{"EMIS"},
		[]Value{12345.0},
		[]Value{""},
		[]Value{nil},
		[]Value{"  "},
		[]Value{"678"},
	)
	ds.Rows = append(ds.Rows, Row{}) // key cell absent

	idx, err := BuildIndex(ds, FirstColumn())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
	for _, k := range []Key{"12345", "678"} {
		if !idx.Contains(k) {
			t.Errorf("Contains(%q) = false", k)
		}
	}
	if idx.Contains("") {
		t.Error("blank key indexed")
	}
}

func TestBuildIndex_EmptyDataset(t *testing.T) {
	tests := []struct {
		name string
		ds   *Dataset
	}{
		{"no rows", dataset("R", []string{"EMIS"})},
		{"no columns", &Dataset{Name: "R", Rows: []Row{{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := BuildIndex(tt.ds, ColumnNamed("EMIS"))
			if err != nil {
				t.Fatalf("BuildIndex: %v", err)
			}
			if idx.Len() != 0 {
				t.Errorf("Len() = %d, want 0", idx.Len())
			}
		})
	}
}

func TestBuildIndex_MissingColumn(t *testing.T) {
	ds := dataset("R", []string{"EMIS"}, []Value{"1"})
	_, err := BuildIndex(ds, ColumnNamed("Roll"))

	var ce *ColumnError
	if !errors.As(err, &ce) {
		t.Fatalf("BuildIndex error = %v, want *ColumnError", err)
	}
	if ce.Dataset != "R" || ce.Column != "Roll" {
		t.Errorf("ColumnError = %+v", ce)
	}
}

func TestBuildIndexes(t *testing.T) {
	refs := []*Dataset{
		dataset("R1", []string{"EMIS"}, []Value{"1"}, []Value{"2"}),
		dataset("R2", []string{"EMIS"}, []Value{"3"}),
		dataset("R3", []string{"EMIS"}),
	}

	indexes, err := BuildIndexes(context.Background(), refs, FirstColumn(), 2)
	if err != nil {
		t.Fatalf("BuildIndexes: %v", err)
	}
	if len(indexes) != 3 {
		t.Fatalf("got %d indexes, want 3", len(indexes))
	}
	for i, want := range []int{2, 1, 0} {
		if indexes[i].Dataset() != refs[i].Name {
			t.Errorf("indexes[%d] is %q, want %q", i, indexes[i].Dataset(), refs[i].Name)
		}
		if indexes[i].Len() != want {
			t.Errorf("indexes[%d].Len() = %d, want %d", i, indexes[i].Len(), want)
		}
	}

	union := Union(indexes...)
	if len(union) != 3 || !union.Contains("3") {
		t.Errorf("Union = %v", union)
	}
}

func TestBuildIndexes_Error(t *testing.T) {
	refs := []*Dataset{
		dataset("R1", []string{"EMIS"}, []Value{"1"}),
		dataset("R2", []string{"Other"}, []Value{"3"}),
	}
	_, err := BuildIndexes(context.Background(), refs, ColumnNamed("EMIS"), 4)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("BuildIndexes error = %v, want ErrMissingColumn", err)
	}
}

func TestBuildIndexes_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	refs := []*Dataset{dataset("R1", []string{"EMIS"}, []Value{"1"})}
	_, err := BuildIndexes(ctx, refs, FirstColumn(), 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("BuildIndexes error = %v, want context.Canceled", err)
	}
}
