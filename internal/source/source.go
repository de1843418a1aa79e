// Package source loads workbooks into the core model from uploaded files,
// JSON payloads and PostgreSQL tables.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/overlap/internal/core"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
	ErrInvalidWorkbook = errors.New("invalid workbook")
	ErrInvalidCSV      = errors.New("invalid csv")
	ErrNoDatabase      = errors.New("database source not configured")
)

// Format identifies an upload format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DetectFormat picks the format from a file name's extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(filename))
}

// DatasetName derives a dataset name from a file name: the base name
// without its extension.
func DatasetName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load parses an uploaded file according to its extension.
func Load(filename string, data []byte) (*core.Workbook, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return ReadXLSXBytes(data)
	case FormatCSV:
		ds, err := ReadCSV(DatasetName(filename), bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return core.NewWorkbook(ds), nil
	default:
		return DecodeJSON(bytes.NewReader(data))
	}
}
