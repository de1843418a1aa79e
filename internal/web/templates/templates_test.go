package templates

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/a-h/templ"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestStatusClass(t *testing.T) {
	for in, want := range map[string]string{
		"Overlapped": "status-Overlapped",
		"Not Found":  "status-Not-Found",
	} {
		if got := statusClass(in); got != want {
			t.Errorf("statusClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestErrorAlert_Escapes(t *testing.T) {
	out := renderString(t, ErrorAlert(`Sheet "<x>" not found`, "Check the sheet", "DS002"))
	if strings.Contains(out, "<x>") {
		t.Errorf("message not escaped: %s", out)
	}
	if !strings.Contains(out, "Code: DS002") || !strings.Contains(out, "Check the sheet") {
		t.Errorf("alert = %s", out)
	}
}

func TestResultTable(t *testing.T) {
	table := &core.Table{
		Columns: []string{"EMIS", "R1", "Status"},
		Rows: []core.Row{
			{"EMIS": "12345", "R1": true, "Status": "Overlapped"},
			{"EMIS": "678", "R1": false, "Status": "Unique"},
		},
		Index: []int{4, 9},
	}
	out := renderString(t, ResultTable(table))

	for _, want := range []string{
		"2 rows",
		"<th>EMIS</th>",
		"<td>4</td><td>12345</td><td>TRUE</td>",
		`<td class="status-Unique">Unique</td>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestResultPage_HiddenFields(t *testing.T) {
	info := core.WorkbookInfo{ID: "wb-1", Label: "term1"}
	form := url.Values{"subject_dataset": {"MSE"}, "reference_datasets": {"R1", "R2"}}
	out := renderString(t, ResultPage(info, "MSE vs R1, R2", &core.Table{}, form))

	if !strings.Contains(out, `action="/workbook/wb-1/export?format=csv"`) {
		t.Errorf("missing csv export form:\n%s", out)
	}
	if strings.Count(out, `name="reference_datasets"`) != 4 {
		t.Errorf("expected both references in both forms:\n%s", out)
	}
}

func TestLayout(t *testing.T) {
	out := renderString(t, Layout("A & B", nil))
	if !strings.HasPrefix(out, "<!doctype html>") || !strings.Contains(out, "<title>A &amp; B - Overlap Checker</title>") {
		t.Errorf("layout = %s", out)
	}
}

func TestHiddenFields_KeyOrder(t *testing.T) {
	form := url.Values{"subject_dataset": {"MSE"}, "reference_datasets": {"R1", "R2"}}
	got := hiddenFields(form)
	want := []hiddenField{
		{"reference_datasets", "R1"},
		{"reference_datasets", "R2"},
		{"subject_dataset", "MSE"},
	}
	if len(got) != len(want) {
		t.Fatalf("hiddenFields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWorkbookPage_Forms(t *testing.T) {
	info := core.WorkbookInfo{
		ID:    "wb 1",
		Label: "term1",
		Datasets: []core.DatasetInfo{
			{Name: "MSE", Columns: []string{"EMIS", "Name"}, Rows: 3},
			{Name: "R1", Columns: []string{"EMIS"}, Rows: 2},
		},
	}
	out := renderString(t, WorkbookPage(info, nil))

	for _, want := range []string{
		`action="/workbook/wb%201/compare"`,
		`<select name="reference_datasets" multiple size="4">`,
		`<select name="subject_dataset"><option value="MSE">MSE</option>`,
		"<td>EMIS, Name</td>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q:\n%s", want, out)
		}
	}
}
