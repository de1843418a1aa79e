// Package templates renders the HTML pages of the overlap checker. The
// components live in the .templ files; the _templ.go files are generated.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"net/url"
	"sort"
	"strings"
)

// statusClass maps a status value to its CSS class.
func statusClass(s string) string {
	return "status-" + strings.ReplaceAll(s, " ", "-")
}

func workbookPath(id string) string {
	return "/workbook/" + url.PathEscape(id)
}

type hiddenField struct {
	Name, Value string
}

// hiddenFields flattens form in key order so the export forms repost the
// same request.
func hiddenFields(form url.Values) []hiddenField {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []hiddenField
	for _, k := range keys {
		for _, v := range form[k] {
			fields = append(fields, hiddenField{Name: k, Value: v})
		}
	}
	return fields
}
