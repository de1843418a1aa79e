package core

// errors.go defines the error taxonomy of the matching engine.
//
// Every error is raised at the boundary of a single comparison call. None of
// them leave shared state behind, so callers can show the message, let the
// user reconfigure and retry.
//
//   - ErrEmptyKey: an identifier cell is blank. Recovered locally by the
//     indexers and the matcher; only Normalize and Search return it.
//   - ErrMissingColumn: a configured key or enrichment column is absent.
//   - ErrEmptyDataset: the subject has no rows or no columns.
//   - ErrAmbiguousSelection: PAIR subject and reference are the same dataset.
//   - ErrInvalidSelection: reference selection does not fit the policy.
//   - ErrDatasetNotFound: a named dataset is not in the workbook.
//   - ErrColumnConflict: a generated result column collides with a carried one.
//   - ErrWorkbookNotFound: unknown or expired workbook session.

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyKey           = errors.New("empty key")
	ErrMissingColumn      = errors.New("missing column")
	ErrEmptyDataset       = errors.New("empty dataset")
	ErrAmbiguousSelection = errors.New("ambiguous selection")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrDatasetNotFound    = errors.New("dataset not found")
	ErrColumnConflict     = errors.New("column conflict")
	ErrWorkbookNotFound   = errors.New("workbook not found")
)

// ColumnError reports a key or enrichment column that does not exist.
type ColumnError struct {
	Dataset string
	Column  string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing column %q in dataset %q", e.Column, e.Dataset)
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// DatasetError reports a dataset that is empty or could not be found.
type DatasetError struct {
	Dataset string
	Err     error // ErrEmptyDataset or ErrDatasetNotFound
}

func (e *DatasetError) Error() string {
	if errors.Is(e.Err, ErrDatasetNotFound) {
		return fmt.Sprintf("dataset not found: %q", e.Dataset)
	}
	return fmt.Sprintf("empty dataset %q: no rows or no columns", e.Dataset)
}

func (e *DatasetError) Unwrap() error { return e.Err }

// SelectionError reports a subject/reference selection that cannot be compared.
type SelectionError struct {
	Subject    string
	References []string
	Err        error // ErrAmbiguousSelection or ErrInvalidSelection
	Reason     string
}

func (e *SelectionError) Error() string {
	if errors.Is(e.Err, ErrAmbiguousSelection) {
		return fmt.Sprintf("ambiguous selection: subject %q is also the reference", e.Subject)
	}
	return fmt.Sprintf("invalid selection for subject %q: %s", e.Subject, e.Reason)
}

func (e *SelectionError) Unwrap() error { return e.Err }

// ConflictError reports a generated result column that would overwrite a
// column carried over from the subject.
type ConflictError struct {
	Column string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("column conflict: result column %q already exists in the subject", e.Column)
}

func (e *ConflictError) Unwrap() error { return ErrColumnConflict }

func missingColumn(dataset, column string) error {
	return &ColumnError{Dataset: dataset, Column: column}
}

func emptyDataset(dataset string) error {
	return &DatasetError{Dataset: dataset, Err: ErrEmptyDataset}
}

func datasetNotFound(dataset string) error {
	return &DatasetError{Dataset: dataset, Err: ErrDatasetNotFound}
}
