package source

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/tealeg/xlsx"
)

// buildWorkbook writes sheets of string, float64, bool or nil cells.
func buildWorkbook(t *testing.T, sheets map[string][][]any, order ...string) []byte {
	t.Helper()

	file := xlsx.NewFile()
	for _, name := range order {
		sheet, err := file.AddSheet(name)
		if err != nil {
			t.Fatalf("AddSheet(%q): %v", name, err)
		}
		for _, rec := range sheets[name] {
			row := sheet.AddRow()
			for _, v := range rec {
				cell := row.AddCell()
				switch val := v.(type) {
				case string:
					cell.SetString(val)
				case float64:
					cell.SetFloat(val)
				case bool:
					cell.SetBool(val)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := buildWorkbook(t, map[string][][]any{
		"MSE": {
			{"EMIS", "Name", "", "Name"},
			{12345.0, "Asha", "x", "dup"},
			{nil, nil, nil, nil},
			{"678", "Ravi", nil, nil},
		},
		"R1": {
			{"EMIS", "Active"},
			{12345.0, true},
		},
		"Empty": {},
	}, "MSE", "R1", "Empty")

	wb, err := ReadXLSXBytes(data)
	if err != nil {
		t.Fatalf("ReadXLSXBytes: %v", err)
	}

	if !slices.Equal(wb.Names(), []string{"MSE", "R1", "Empty"}) {
		t.Fatalf("Names() = %v, want sheet order", wb.Names())
	}

	mse, _ := wb.Get("MSE")
	wantCols := []string{"EMIS", "Name", "Unnamed: 2", "Name.1"}
	if !slices.Equal(mse.Columns, wantCols) {
		t.Fatalf("Columns = %q, want %q", mse.Columns, wantCols)
	}
	if len(mse.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (blank row dropped)", len(mse.Rows))
	}
	if got := mse.Rows[0]["EMIS"]; got != 12345.0 {
		t.Errorf("numeric cell = %#v, want float64 12345", got)
	}
	if got := mse.Rows[1]["EMIS"]; got != "678" {
		t.Errorf("text cell = %#v, want \"678\"", got)
	}
	if got := mse.Rows[0]["Name.1"]; got != "dup" {
		t.Errorf("duplicate header cell = %#v", got)
	}

	r1, _ := wb.Get("R1")
	if got := r1.Rows[0]["Active"]; got != true {
		t.Errorf("bool cell = %#v, want true", got)
	}

	empty, _ := wb.Get("Empty")
	if !empty.Empty() {
		t.Errorf("Empty sheet has %d rows", len(empty.Rows))
	}
}

func TestReadXLSX_Invalid(t *testing.T) {
	if _, err := ReadXLSXBytes(nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("nil data error = %v, want ErrEmptyFile", err)
	}
	if _, err := ReadXLSXBytes([]byte("EMIS,Name\n1,A\n")); !errors.Is(err, ErrInvalidWorkbook) {
		t.Errorf("csv bytes error = %v, want ErrInvalidWorkbook", err)
	}
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		name    string
		cell    func() *xlsx.Cell
		want    any
		wantKey core.Key
	}{
		{"nil cell", func() *xlsx.Cell { return nil }, nil, ""},
		{"numeric", func() *xlsx.Cell {
			c := new(xlsx.Cell)
			c.SetFloat(12345)
			return c
		}, 12345.0, "12345"},
		{"numeric text keeps zeros", func() *xlsx.Cell {
			c := new(xlsx.Cell)
			c.SetString("00123")
			return c
		}, "00123", "00123"},
		{"bool", func() *xlsx.Cell {
			c := new(xlsx.Cell)
			c.SetBool(true)
			return c
		}, true, "true"},
		{"blank text", func() *xlsx.Cell {
			c := new(xlsx.Cell)
			c.SetString("   ")
			return c
		}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cellValue(tt.cell())
			if got != tt.want {
				t.Fatalf("cellValue = %#v, want %#v", got, tt.want)
			}
			if tt.wantKey == "" {
				return
			}
			if key := core.MustNormalize(got); key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}
