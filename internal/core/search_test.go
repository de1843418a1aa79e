package core

import (
	"errors"
	"slices"
	"testing"
)

func TestSearch(t *testing.T) {
	wb := NewWorkbook(
		dataset("MSE", []string{"EMIS"}, []Value{12345.0}, []Value{"200"}),
		dataset("Empty", []string{"EMIS"}),
		dataset("R1", []string{"EMIS"}, []Value{"12345"}),
		dataset("R2", []string{"Roll"}, []Value{"300"}),
		dataset("R3", []string{"EMIS"}, []Value{" 12345 "}, []Value{"12345"}),
	)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"found in several sheets", "12345", []string{"MSE", "R1", "R3"}},
		{"whitespace around query", "  12345 ", []string{"MSE", "R1", "R3"}},
		{"first column of any header", "300", []string{"R2"}},
		{"fragment matches nothing", "1234", []string{}},
		{"unknown key", "999", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Search(wb, FirstColumn(), tt.query)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	wb := NewWorkbook(dataset("MSE", []string{"EMIS"}, []Value{"1"}))
	if _, err := Search(wb, FirstColumn(), "  "); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("Search error = %v, want ErrEmptyKey", err)
	}
}

func TestSearchIndex_SkipsDatasetsWithoutColumn(t *testing.T) {
	wb := NewWorkbook(
		dataset("MSE", []string{"EMIS"}, []Value{"1"}),
		dataset("Other", []string{"Roll"}, []Value{"1"}),
	)
	si := NewSearchIndex(wb, ColumnNamed("EMIS"))
	if got := si.Datasets(); !slices.Equal(got, []string{"MSE"}) {
		t.Errorf("Datasets() = %v, want [MSE]", got)
	}
	got, err := si.Lookup("1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !slices.Equal(got, []string{"MSE"}) {
		t.Errorf("Lookup(1) = %v, want [MSE]", got)
	}
}
