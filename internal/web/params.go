package web

// params.go reads comparison settings from JSON bodies, HTML forms and query
// strings into the core request types.

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
)

// decodeJSON reads a single JSON document into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}

// isJSONBody reports whether the request carries a JSON document.
func isJSONBody(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// decodeCompareRequest reads a CompareRequest from a JSON body or a form.
func decodeCompareRequest(w http.ResponseWriter, r *http.Request) (core.CompareRequest, error) {
	var req core.CompareRequest
	if isJSONBody(r) {
		err := decodeJSON(w, r, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return compareRequestFromForm(r.PostForm)
}

// compareRequestFromForm reads the workbook page compare form. No selected
// reference means all references.
func compareRequestFromForm(form url.Values) (core.CompareRequest, error) {
	policy, err := core.ParsePolicy(form.Get("match_policy"))
	if err != nil {
		return core.CompareRequest{}, err
	}
	numbering, err := core.ParseNumbering(form.Get("numbering"))
	if err != nil {
		return core.CompareRequest{}, err
	}

	req := core.CompareRequest{
		Subject:          strings.TrimSpace(form.Get("subject_dataset")),
		KeyColumn:        keyColumnFrom(form),
		Policy:           policy,
		EnrichmentFields: splitList(form.Get("enrichment_fields")),
		Canonical:        strings.TrimSpace(form.Get("canonical_dataset")),
		Carry:            splitList(form.Get("carry_columns")),
		SortByStatus:     formBool(form.Get("sort_by_status")),
		Numbering:        numbering,
	}

	switch refs := form["reference_datasets"]; len(refs) {
	case 0:
		req.References = core.AllDatasets()
	case 1:
		req.References = core.ParseSelection(refs[0])
	default:
		req.References = core.Named(refs...)
	}
	return req, nil
}

// decodeGapRequest reads a GapRequest from a JSON body or a form.
func decodeGapRequest(w http.ResponseWriter, r *http.Request) (core.GapRequest, error) {
	var req core.GapRequest
	if isJSONBody(r) {
		err := decodeJSON(w, r, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return core.GapRequest{
		New:       strings.TrimSpace(r.PostForm.Get("new_dataset")),
		Canonical: strings.TrimSpace(r.PostForm.Get("canonical_dataset")),
		KeyColumn: keyColumnFrom(r.PostForm),
		Fields:    splitList(r.PostForm.Get("fields")),
	}, nil
}

// keyColumnFrom reads key_column (a name) or key_position (0-based) from
// form or query values. Neither means the service default.
func keyColumnFrom(values url.Values) *core.KeyColumnSpec {
	if name := strings.TrimSpace(values.Get("key_column")); name != "" {
		return &core.KeyColumnSpec{Name: name}
	}
	if pos, err := strconv.Atoi(strings.TrimSpace(values.Get("key_position"))); err == nil && pos >= 0 {
		return &core.KeyColumnSpec{Position: &pos}
	}
	return nil
}

// splitList splits a comma-separated field, dropping blanks. Empty input
// yields nil.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// formBool accepts checkbox values.
func formBool(s string) bool {
	if s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// TableResponse is the JSON form of a result table. Rows follow Columns.
type TableResponse struct {
	Columns []string       `json:"columns"`
	Rows    [][]core.Value `json:"rows"`
	Index   []int          `json:"index"`
}

func tableResponse(t *core.Table) TableResponse {
	rows := make([][]core.Value, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]core.Value, len(t.Columns))
		for j, col := range t.Columns {
			rec[j] = jsonValue(row[col])
		}
		rows[i] = rec
	}
	return TableResponse{Columns: t.Columns, Rows: rows, Index: t.Index}
}

// jsonValue replaces floats JSON cannot carry with null.
func jsonValue(v core.Value) core.Value {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}
