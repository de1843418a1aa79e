package source

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/JonMunkholm/overlap/internal/core"
)

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"plain", []string{"EMIS", "Name"}, []string{"EMIS", "Name"}},
		{"trimmed", []string{" EMIS ", "Name\t"}, []string{"EMIS", "Name"}},
		{"blank becomes unnamed", []string{"EMIS", "", "  "}, []string{"EMIS", "Unnamed: 1", "Unnamed: 2"}},
		{"duplicates suffixed", []string{"Name", "Name", "Name"}, []string{"Name", "Name.1", "Name.2"}},
		{"suffix skips taken names", []string{"A", "A.1", "A"}, []string{"A", "A.1", "A.2"}},
		{"excel text wrapper", []string{`="EMIS"`}, []string{"EMIS"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headerNames(tt.raw); !slices.Equal(got, tt.want) {
				t.Errorf("headerNames(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{"overlap.xlsx", FormatXLSX, false},
		{"OVERLAP.XLSX", FormatXLSX, false},
		{"mse.csv", FormatCSV, false},
		{"payload.json", FormatJSON, false},
		{"old.xls", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.filename)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedType) {
				t.Errorf("DetectFormat(%q) error = %v, want ErrUnsupportedType", tt.filename, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, %v; want %q", tt.filename, got, err, tt.want)
		}
	}
}

func TestDatasetName(t *testing.T) {
	if got := DatasetName("/tmp/uploads/RTE 2024.csv"); got != "RTE 2024" {
		t.Errorf("DatasetName = %q, want %q", got, "RTE 2024")
	}
}

func TestLoad(t *testing.T) {
	if _, err := Load("empty.csv", nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Load(empty) error = %v, want ErrEmptyFile", err)
	}
	if _, err := Load("a.txt", []byte("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Load(txt) error = %v, want ErrUnsupportedType", err)
	}

	wb, err := Load("MSE.csv", []byte("EMIS,Name\n1,A\n"))
	if err != nil {
		t.Fatalf("Load(csv): %v", err)
	}
	if !slices.Equal(wb.Names(), []string{"MSE"}) {
		t.Errorf("Names() = %v, want [MSE]", wb.Names())
	}

	wb, err = Load("p.json", []byte(`{"datasets":[{"name":"R1","columns":["EMIS"],"rows":[[1]]}]}`))
	if err != nil {
		t.Fatalf("Load(json): %v", err)
	}
	ds, _ := wb.Get("R1")
	if ds == nil || ds.Rows[0]["EMIS"] != 1.0 {
		t.Errorf("json dataset = %+v", ds)
	}
}

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFEMIS, Name ,\n12345,Asha,x\n  ,  ,\n678,,\n9,B,y,extra\n"

	ds, err := ReadCSV("MSE", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	wantCols := []string{"EMIS", "Name", "Unnamed: 2", "Unnamed: 3"}
	if !slices.Equal(ds.Columns, wantCols) {
		t.Fatalf("Columns = %q, want %q", ds.Columns, wantCols)
	}
	if len(ds.Rows) != 3 {
		t.Fatalf("rows = %d, want 3 (blank row dropped)", len(ds.Rows))
	}
	if ds.Rows[0]["EMIS"] != "12345" || ds.Rows[0]["Name"] != "Asha" {
		t.Errorf("row 0 = %v", ds.Rows[0])
	}
	if ds.Rows[1]["Name"] != nil {
		t.Errorf("blank cell = %v, want nil", ds.Rows[1]["Name"])
	}
	if ds.Rows[2]["Unnamed: 3"] != "extra" {
		t.Errorf("overflow cell = %v", ds.Rows[2]["Unnamed: 3"])
	}
}

func TestReadCSV_Errors(t *testing.T) {
	if _, err := ReadCSV("MSE", strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty error = %v, want ErrEmptyFile", err)
	}
}

func TestReadCSV_HeaderOnlyIsEmptyDataset(t *testing.T) {
	ds, err := ReadCSV("MSE", strings.NewReader("EMIS,Name\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !ds.Empty() {
		t.Errorf("header-only dataset should be empty, got %d rows", len(ds.Rows))
	}
}

func TestDecodeJSON(t *testing.T) {
	body := `{"datasets": [
		{"name": "MSE", "columns": ["EMIS", "Name"], "rows": [[12345.0, "A"], [null, null], ["678", "B"]]},
		{"name": "R1", "columns": ["EMIS"], "rows": []}
	]}`

	wb, err := DecodeJSON(strings.NewReader(body))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if !slices.Equal(wb.Names(), []string{"MSE", "R1"}) {
		t.Fatalf("Names() = %v", wb.Names())
	}
	mse, _ := wb.Get("MSE")
	if len(mse.Rows) != 2 {
		t.Fatalf("MSE rows = %d, want 2", len(mse.Rows))
	}
	if k, _ := core.Normalize(mse.Rows[0]["EMIS"]); k != "12345" {
		t.Errorf("EMIS key = %q, want 12345", k)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"empty body", "", ErrEmptyFile},
		{"not json", "{", ErrInvalidPayload},
		{"no datasets", `{"datasets": []}`, ErrEmptyFile},
		{"unnamed dataset", `{"datasets": [{"columns": ["A"]}]}`, ErrInvalidPayload},
		{"duplicate names", `{"datasets": [{"name": "A"}, {"name": "A"}]}`, ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeJSON(strings.NewReader(tt.body)); !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeJSON error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorMessagesMapToCodes(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{ErrUnsupportedType, "FILE006"},
		{ErrEmptyFile, "FILE005"},
		{ErrInvalidWorkbook, "FILE002"},
		{ErrInvalidCSV, "FILE003"},
		{ErrNoDatabase, "SRC001"},
		{ErrInvalidPayload, "CFG003"},
	}
	for _, tt := range tests {
		if got := core.MapError(tt.err).Code; got != tt.code {
			t.Errorf("MapError(%v) = %s, want %s", tt.err, got, tt.code)
		}
	}
}
