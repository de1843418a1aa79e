package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Policy decides how a subject row is classified against the references.
type Policy string

const (
	// PolicyAny marks a row Overlapped when its key is in the union of all references.
	PolicyAny Policy = "any"
	// PolicyPerReference adds one boolean column per reference plus the combined status.
	PolicyPerReference Policy = "per_reference"
	// PolicyPair compares the subject against exactly one reference.
	PolicyPair Policy = "pair"
)

// ParsePolicy accepts the policy names case-insensitively, with '-' or '_'.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "any":
		return PolicyAny, nil
	case "per_reference", "perreference":
		return PolicyPerReference, nil
	case "pair":
		return PolicyPair, nil
	}
	return "", fmt.Errorf("unknown match policy %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Status is the per-row outcome of a comparison.
type Status string

const (
	StatusOverlapped Status = "Overlapped"
	StatusUnique     Status = "Unique"
	StatusNotFound   Status = "Not Found"
)

// NotFound is written into enrichment and gap attributes that could not be
// recovered. Result cells are never left undefined.
const NotFound = string(StatusNotFound)

func (s Status) rank() int {
	switch s {
	case StatusOverlapped:
		return 0
	case StatusUnique:
		return 1
	default:
		return 2
	}
}

// Numbering selects how result rows are numbered. The two non-default
// choices are exclusive by construction.
type Numbering string

const (
	// NumberingNone leaves Table.Index as each row's 1-based subject position.
	NumberingNone Numbering = "none"
	// NumberingSequence prepends a 1-based SequenceColumn.
	NumberingSequence Numbering = "sequence"
	// NumberingIndex renumbers Table.Index 1..n in output order.
	NumberingIndex Numbering = "index"
)

// ParseNumbering accepts "none", "sequence" or "index"; empty means none.
func ParseNumbering(s string) (Numbering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NumberingNone, nil
	case "sequence", "s.no", "sno":
		return NumberingSequence, nil
	case "index":
		return NumberingIndex, nil
	}
	return "", fmt.Errorf("unknown numbering %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Numbering) UnmarshalText(b []byte) error {
	v, err := ParseNumbering(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

const (
	// DefaultStatusColumn names the combined status column.
	DefaultStatusColumn = "Status"
	// SequenceColumn names the prepended 1-based sequence column.
	SequenceColumn = "S.No"
)

// EnrichSpec pulls attributes for matched rows from a canonical dataset.
type EnrichSpec struct {
	// Canonical defaults to the first reference.
	Canonical *Dataset
	// KeyColumn defaults to the match key column.
	KeyColumn *KeyColumn
	Fields    []string
}

// MatchOptions configures Match.
type MatchOptions struct {
	KeyColumn KeyColumn
	Policy    Policy
	// Carry lists the subject columns copied into the result. Nil copies all.
	Carry        []string
	StatusColumn string
	SortByStatus bool
	Numbering    Numbering
	Enrich       *EnrichSpec
	// IndexWorkers bounds parallel reference index builds; <= 1 builds serially.
	IndexWorkers int
}

// Match classifies every subject row against the references. See MatchContext.
func Match(subject *Dataset, refs []*Dataset, opts MatchOptions) (*Table, error) {
	return MatchContext(context.Background(), subject, refs, opts)
}

// MatchContext classifies every subject row against the references.
//
// Every subject row appears exactly once in the result. Rows whose key is
// blank are kept with status Unique. All configuration (subject key column,
// carried columns, enrichment fields, generated column names, PAIR
// selection) is validated before any row is processed, and no partial result
// is returned on failure.
func MatchContext(ctx context.Context, subject *Dataset, refs []*Dataset, opts MatchOptions) (*Table, error) {
	if subject.Empty() {
		return nil, emptyDataset(subject.Name)
	}
	keyCol, err := opts.KeyColumn.Resolve(subject)
	if err != nil {
		return nil, err
	}

	policy := opts.Policy
	if policy == "" {
		policy = PolicyAny
	}
	if err := checkSelection(subject, refs, policy); err != nil {
		return nil, err
	}

	carry := opts.Carry
	if carry == nil {
		carry = subject.Columns
	}
	for _, col := range carry {
		if !subject.HasColumn(col) {
			return nil, missingColumn(subject.Name, col)
		}
	}

	statusCol := opts.StatusColumn
	if statusCol == "" {
		statusCol = DefaultStatusColumn
	}

	var (
		canonIdx *Index
		fields   []string
	)
	if opts.Enrich != nil {
		canonIdx, fields, err = prepareEnrichment(opts.Enrich, refs, opts.KeyColumn)
		if err != nil {
			return nil, err
		}
	}

	columns, err := resultColumns(carry, refs, policy, fields, statusCol, opts.Numbering)
	if err != nil {
		return nil, err
	}

	var indexes []*Index
	if opts.IndexWorkers > 1 {
		indexes, err = BuildIndexes(ctx, refs, opts.KeyColumn, opts.IndexWorkers)
	} else {
		indexes, err = buildSerial(refs, opts.KeyColumn)
	}
	if err != nil {
		return nil, err
	}
	union := Union(indexes...)

	table := &Table{
		Columns: columns,
		Rows:    make([]Row, 0, len(subject.Rows)),
		Index:   make([]int, 0, len(subject.Rows)),
	}
	statuses := make([]Status, 0, len(subject.Rows))
	carriesKey := slices.Contains(carry, keyCol)

	for i, src := range subject.Rows {
		out := make(Row, len(columns))
		for _, col := range carry {
			out[col] = src[col]
		}

		key, kerr := Normalize(src[keyCol])
		hasKey := kerr == nil
		if hasKey && carriesKey {
			out[keyCol] = string(key)
		}

		if policy == PolicyPerReference {
			for j, ref := range refs {
				out[ref.Name] = hasKey && indexes[j].Contains(key)
			}
		}

		status := StatusUnique
		if hasKey && union.Contains(key) {
			status = StatusOverlapped
		}

		if canonIdx != nil {
			canonRow, found := Row(nil), false
			if hasKey {
				canonRow, found = canonIdx.Lookup(key)
			}
			fillFields(out, fields, canonRow, found)
		}

		out[statusCol] = string(status)
		table.Rows = append(table.Rows, out)
		table.Index = append(table.Index, i+1)
		statuses = append(statuses, status)
	}

	if opts.SortByStatus {
		sortByStatus(table, statuses)
	}
	applyNumbering(table, opts.Numbering)

	return table, nil
}

func checkSelection(subject *Dataset, refs []*Dataset, policy Policy) error {
	switch policy {
	case PolicyAny, PolicyPerReference:
	case PolicyPair:
		if len(refs) != 1 {
			return &SelectionError{
				Subject: subject.Name,
				Err:     ErrInvalidSelection,
				Reason:  fmt.Sprintf("pair policy needs exactly one reference, got %d", len(refs)),
			}
		}
		if refs[0] == subject || refs[0].Name == subject.Name {
			return &SelectionError{
				Subject:    subject.Name,
				References: []string{refs[0].Name},
				Err:        ErrAmbiguousSelection,
			}
		}
	default:
		return fmt.Errorf("unknown match policy %q", policy)
	}
	return nil
}

func prepareEnrichment(spec *EnrichSpec, refs []*Dataset, matchKey KeyColumn) (*Index, []string, error) {
	canonical := spec.Canonical
	if canonical == nil {
		if len(refs) == 0 {
			return nil, nil, &SelectionError{
				Err:    ErrInvalidSelection,
				Reason: "enrichment needs a canonical dataset or at least one reference",
			}
		}
		canonical = refs[0]
	}
	if err := validateFields(canonical, spec.Fields); err != nil {
		return nil, nil, err
	}

	keyCol := matchKey
	if spec.KeyColumn != nil {
		keyCol = *spec.KeyColumn
	}
	idx, err := BuildIndex(canonical, keyCol)
	if err != nil {
		return nil, nil, err
	}
	return idx, spec.Fields, nil
}

func resultColumns(carry []string, refs []*Dataset, policy Policy, fields []string, statusCol string, numbering Numbering) ([]string, error) {
	cols := make([]string, 0, len(carry)+len(refs)+len(fields)+2)
	seen := make(map[string]bool, cap(cols))

	add := func(col string, generated bool) error {
		if seen[col] {
			if generated {
				return &ConflictError{Column: col}
			}
			return nil
		}
		seen[col] = true
		cols = append(cols, col)
		return nil
	}

	if numbering == NumberingSequence {
		_ = add(SequenceColumn, true)
	}
	for _, col := range carry {
		if col == SequenceColumn && numbering == NumberingSequence {
			return nil, &ConflictError{Column: col}
		}
		_ = add(col, false)
	}
	if policy == PolicyPerReference {
		for _, ref := range refs {
			if err := add(ref.Name, true); err != nil {
				return nil, err
			}
		}
	}
	for _, f := range fields {
		if err := add(f, true); err != nil {
			return nil, err
		}
	}
	if err := add(statusCol, true); err != nil {
		return nil, err
	}
	return cols, nil
}

func buildSerial(refs []*Dataset, keyCol KeyColumn) ([]*Index, error) {
	out := make([]*Index, len(refs))
	for i, ref := range refs {
		idx, err := BuildIndex(ref, keyCol)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", ref.Name, err)
		}
		out[i] = idx
	}
	return out, nil
}

// sortByStatus orders rows Overlapped, Unique, Not Found; ties keep their order.
func sortByStatus(t *Table, statuses []Status) {
	order := make([]int, len(t.Rows))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return statuses[a].rank() - statuses[b].rank()
	})

	rows := make([]Row, len(order))
	index := make([]int, len(order))
	for to, from := range order {
		rows[to] = t.Rows[from]
		index[to] = t.Index[from]
	}
	t.Rows, t.Index = rows, index
}

func applyNumbering(t *Table, n Numbering) {
	switch n {
	case NumberingSequence:
		for i, row := range t.Rows {
			row[SequenceColumn] = i + 1
		}
	case NumberingIndex:
		for i := range t.Index {
			t.Index[i] = i + 1
		}
	}
}
