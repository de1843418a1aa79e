package core

// request.go resolves the caller-facing configuration surface into datasets
// and options for the engine. The "All" reference choice is explicit
// configuration here, never state carried between requests.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Selection chooses the reference datasets: every dataset other than the
// subject, or an explicit ordered list. The zero value means all; an explicit
// empty list means none.
type Selection struct {
	All   bool
	Names []string
}

// AllDatasets selects every dataset except the subject.
func AllDatasets() Selection { return Selection{All: true} }

// Named selects the given datasets in the given order.
func Named(names ...string) Selection {
	if names == nil {
		names = []string{}
	}
	return Selection{Names: names}
}

// ParseSelection reads "all" or a comma-separated list of names.
func ParseSelection(s string) Selection {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return AllDatasets()
	}
	var names []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return Named(names...)
}

func (s Selection) all() bool {
	return s.All || s.Names == nil
}

// MarshalJSON encodes "all" or the list of names.
func (s Selection) MarshalJSON() ([]byte, error) {
	if s.all() {
		return []byte(`"all"`), nil
	}
	return json.Marshal(s.Names)
}

// UnmarshalJSON accepts "all", or a list of names. A list containing "All"
// resolves to all, the way a multi-select with an All entry behaves.
func (s *Selection) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = Selection{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = ParseSelection(v)
		return nil
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return fmt.Errorf("reference_datasets: want \"all\" or a list of names: %w", err)
	}
	for _, n := range names {
		if strings.EqualFold(n, "all") {
			*s = AllDatasets()
			return nil
		}
	}
	*s = Named(names...)
	return nil
}

// Resolve returns the reference datasets for subject, in workbook order for
// all and in the caller's order otherwise. Repeated names are kept once.
func (s Selection) Resolve(wb *Workbook, subject string) ([]*Dataset, error) {
	if s.all() {
		var out []*Dataset
		for _, ds := range wb.Datasets() {
			if ds.Name != subject {
				out = append(out, ds)
			}
		}
		return out, nil
	}

	out := make([]*Dataset, 0, len(s.Names))
	seen := make(map[string]bool, len(s.Names))
	for _, name := range s.Names {
		if seen[name] {
			continue
		}
		seen[name] = true
		ds, ok := wb.Get(name)
		if !ok {
			return nil, datasetNotFound(name)
		}
		out = append(out, ds)
	}
	return out, nil
}

// KeyColumnSpec is the JSON form of KeyColumn: {"name": "EMIS No"} or
// {"position": 0}. Empty selects the first column.
type KeyColumnSpec struct {
	Name     string `json:"name,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// KeyColumn converts the spec, falling back to def when unset.
func (k *KeyColumnSpec) KeyColumn(def KeyColumn) KeyColumn {
	switch {
	case k == nil:
		return def
	case k.Name != "":
		return ColumnNamed(k.Name)
	case k.Position != nil:
		return ColumnAt(*k.Position)
	default:
		return def
	}
}

// CompareRequest is the configuration surface of a comparison.
type CompareRequest struct {
	Subject          string         `json:"subject_dataset"`
	References       Selection      `json:"reference_datasets"`
	KeyColumn        *KeyColumnSpec `json:"key_column,omitempty"`
	Policy           Policy         `json:"match_policy"`
	EnrichmentFields []string       `json:"enrichment_fields,omitempty"`
	Canonical        string         `json:"canonical_dataset,omitempty"`
	Carry            []string       `json:"carry_columns,omitempty"`
	SortByStatus     bool           `json:"sort_by_status"`
	Numbering        Numbering      `json:"numbering,omitempty"`
}

// Comparison is a resolved CompareRequest.
type Comparison struct {
	Subject    *Dataset
	References []*Dataset
	Options    MatchOptions
}

// Resolve looks the named datasets up in wb and builds MatchOptions.
// defaultKey applies when the request names no key column.
func (r CompareRequest) Resolve(wb *Workbook, defaultKey KeyColumn) (*Comparison, error) {
	subject, ok := wb.Get(r.Subject)
	if !ok {
		return nil, datasetNotFound(r.Subject)
	}

	refs, err := r.References.Resolve(wb, r.Subject)
	if err != nil {
		return nil, err
	}

	policy := r.Policy
	if policy == "" {
		policy = PolicyAny
	}
	if policy == PolicyPair {
		for _, ref := range refs {
			if ref.Name == subject.Name {
				return nil, &SelectionError{
					Subject:    subject.Name,
					References: []string{ref.Name},
					Err:        ErrAmbiguousSelection,
				}
			}
		}
	}

	opts := MatchOptions{
		KeyColumn:    r.KeyColumn.KeyColumn(defaultKey),
		Policy:       policy,
		Carry:        r.Carry,
		SortByStatus: r.SortByStatus,
		Numbering:    r.Numbering,
	}

	if len(r.EnrichmentFields) > 0 {
		spec := &EnrichSpec{Fields: r.EnrichmentFields}
		if r.Canonical != "" {
			canonical, ok := wb.Get(r.Canonical)
			if !ok {
				return nil, datasetNotFound(r.Canonical)
			}
			spec.Canonical = canonical
		}
		opts.Enrich = spec
	}

	return &Comparison{Subject: subject, References: refs, Options: opts}, nil
}

// Run executes the comparison.
func (c *Comparison) Run(ctx context.Context) (*Table, error) {
	return MatchContext(ctx, c.Subject, c.References, c.Options)
}

// ReferenceNames returns the resolved reference names in order.
func (c *Comparison) ReferenceNames() []string {
	out := make([]string, len(c.References))
	for i, ds := range c.References {
		out[i] = ds.Name
	}
	return out
}

// GapRequest configures a gap detection between a new and a canonical dataset.
type GapRequest struct {
	New                string         `json:"new_dataset"`
	Canonical          string         `json:"canonical_dataset"`
	KeyColumn          *KeyColumnSpec `json:"key_column,omitempty"`
	CanonicalKeyColumn *KeyColumnSpec `json:"canonical_key_column,omitempty"`
	Fields             []string       `json:"fields,omitempty"`
}

// Run resolves the datasets in wb and runs Gaps.
func (r GapRequest) Run(wb *Workbook, defaultKey KeyColumn) (*Table, error) {
	newDS, ok := wb.Get(r.New)
	if !ok {
		return nil, datasetNotFound(r.New)
	}
	canonical, ok := wb.Get(r.Canonical)
	if !ok {
		return nil, datasetNotFound(r.Canonical)
	}
	if newDS.Name == canonical.Name {
		return nil, &SelectionError{
			Subject:    newDS.Name,
			References: []string{canonical.Name},
			Err:        ErrAmbiguousSelection,
		}
	}
	newKey := r.KeyColumn.KeyColumn(defaultKey)
	canonKey := r.CanonicalKeyColumn.KeyColumn(newKey)
	return Gaps(newDS, newKey, canonical, canonKey, GapOptions{Fields: r.Fields})
}
