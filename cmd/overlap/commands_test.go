package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/overlap/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates name -> content files in a temp dir and returns their
// paths in the order given.
func writeFiles(t *testing.T, files ...[2]string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f[0])
		require.NoError(t, os.WriteFile(path, []byte(f[1]), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func execute(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(config.Defaults())
	root.SetOut(&out)
	root.SetErr(&errOut)
	code = run(context.Background(), root, args, &errOut)
	return out.String(), errOut.String(), code
}

var (
	mse = [2]string{"MSE.csv", "EMIS,Name\n1,A\n2,B\n3,C\n"}
	r1  = [2]string{"R1.csv", "EMIS,Class\n3,6\n7,8\n"}
	r2  = [2]string{"R2.csv", "EMIS,Class\n1,5\n3,6\n"}
)

func TestCompare(t *testing.T) {
	paths := writeFiles(t, mse, r1, r2)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "any against all",
			args: []string{"compare"},
			want: "EMIS,Name,Status\n1,A,Overlapped\n2,B,Unique\n3,C,Overlapped\n",
		},
		{
			name: "per reference",
			args: []string{"compare", "--policy", "per_reference", "--carry", "EMIS"},
			want: "EMIS,R1,R2,Status\n1,FALSE,TRUE,Overlapped\n2,FALSE,FALSE,Unique\n3,TRUE,TRUE,Overlapped\n",
		},
		{
			name: "pair with enrichment",
			args: []string{"compare", "--refs", "R2", "--policy", "pair", "--enrich", "Class", "--carry", "EMIS", "--sort-by-status"},
			want: "EMIS,Class,Status\n1,5,Overlapped\n3,6,Overlapped\n2,Not Found,Unique\n",
		},
		{
			name: "index column",
			args: []string{"compare", "--refs", "R1", "--carry", "EMIS", "--index-column", "#"},
			want: "#,EMIS,Status\n1,1,Unique\n2,2,Unique\n3,3,Overlapped\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, code := execute(t, append(tt.args, paths...)...)
			require.Equal(t, 0, code, errOut)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCompare_Errors(t *testing.T) {
	paths := writeFiles(t, mse, r2)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown subject", []string{"compare", "--subject", "Nope"}, "DS002"},
		{"pair against itself", []string{"compare", "--refs", "MSE", "--policy", "pair"}, "SEL001"},
		{"unknown policy", []string{"compare", "--policy", "most"}, "CFG001"},
		{"unknown numbering", []string{"compare", "--numbering", "roman"}, "CFG002"},
		{"missing key", []string{"compare", "--key-column", "UPN"}, "COL001"},
		{"bad output", []string{"compare", "--out", "result.pdf"}, "FILE006"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := execute(t, append(tt.args, paths...)...)
			require.Equal(t, 1, code)
			assert.Contains(t, errOut, "Code: "+tt.code)
		})
	}
}

func TestCompare_OutFile(t *testing.T) {
	paths := writeFiles(t, mse, r2)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "result.csv")
	_, errOut, code := execute(t, append([]string{"compare", "--out", csvPath}, paths...)...)
	require.Equal(t, 0, code, errOut)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "EMIS,Name,Status\n"), "csv = %q", data)

	xlsxPath := filepath.Join(dir, "result.xlsx")
	_, errOut, code = execute(t, append([]string{"compare", "--out", xlsxPath}, paths...)...)
	require.Equal(t, 0, code, errOut)
	data, err = os.ReadFile(xlsxPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx output is not a zip archive")
}

func TestGaps(t *testing.T) {
	paths := writeFiles(t, mse, r1)

	out, errOut, code := execute(t, append([]string{"gaps", "--new", "R1", "--canonical", "MSE"}, paths...)...)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "EMIS,Class,Status\n7,8,Not Found\n", out)

	_, _, code = execute(t, append([]string{"gaps", "--new", "R1"}, paths...)...)
	assert.Equal(t, 1, code, "missing --canonical")
}

func TestSearch(t *testing.T) {
	paths := writeFiles(t, mse, r1, r2)

	tests := []struct {
		query string
		want  string
	}{
		{"3", "MSE\nR1\nR2\n"},
		{" 1 ", "MSE\nR2\n"},
		{"42", "42: not found\n"},
	}
	for _, tt := range tests {
		out, errOut, code := execute(t, append([]string{"search", tt.query}, paths...)...)
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, tt.want, out, "search %q", tt.query)
	}

	_, errOut, code := execute(t, append([]string{"search", "  "}, paths...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Code: KEY001")
}

func TestLoadFiles_Duplicate(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	for _, d := range []string{a, b} {
		require.NoError(t, os.Mkdir(d, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(d, "MSE.csv"), []byte("EMIS\n1\n"), 0o644))
	}

	_, errOut, code := execute(t, "compare", filepath.Join(a, "MSE.csv"), filepath.Join(b, "MSE.csv"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Code: CFG003")
}
