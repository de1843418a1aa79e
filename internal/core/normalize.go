package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key is the canonical identifier derived from a raw cell value.
// Keys are case-sensitive and carry no surrounding whitespace.
type Key string

// Normalize converts a raw cell value into a Key.
//
// Floats with no fractional part render as base-10 integers, so a spreadsheet
// that coerced "12345" into 12345.0 still yields "12345". Other floats use
// the shortest exact decimal form. Everything else is stringified, put in NFC
// form and trimmed. Blank values, including NaN, fail with ErrEmptyKey.
//
// Normalize is idempotent on its own output.
func Normalize(v Value) (Key, error) {
	var s string

	switch val := v.(type) {
	case nil:
		return "", ErrEmptyKey
	case Key:
		s = string(val)
	case string:
		s = val
	case float64:
		return normalizeFloat(val, 64)
	case float32:
		return normalizeFloat(float64(val), 32)
	case int:
		return Key(strconv.FormatInt(int64(val), 10)), nil
	case int8:
		return Key(strconv.FormatInt(int64(val), 10)), nil
	case int16:
		return Key(strconv.FormatInt(int64(val), 10)), nil
	case int32:
		return Key(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return Key(strconv.FormatInt(val, 10)), nil
	case uint:
		return Key(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return Key(strconv.FormatUint(uint64(val), 10)), nil
	case uint16:
		return Key(strconv.FormatUint(uint64(val), 10)), nil
	case uint32:
		return Key(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return Key(strconv.FormatUint(val, 10)), nil
	case json.Number:
		return normalizeNumber(val)
	case bool:
		s = strconv.FormatBool(val)
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}

	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return "", ErrEmptyKey
	}
	return Key(s), nil
}

// MustNormalize is Normalize for values known to be non-empty. It panics on
// ErrEmptyKey and is meant for tests and constant tables.
func MustNormalize(v Value) Key {
	k, err := Normalize(v)
	if err != nil {
		panic(fmt.Sprintf("normalize %v: %v", v, err))
	}
	return k
}

func normalizeFloat(f float64, bitSize int) (Key, error) {
	if math.IsNaN(f) {
		return "", ErrEmptyKey
	}
	if f == 0 {
		// covers -0
		return "0", nil
	}
	if !math.IsInf(f, 0) && f == math.Trunc(f) {
		return Key(strconv.FormatFloat(f, 'f', 0, 64)), nil
	}
	return Key(strconv.FormatFloat(f, 'f', -1, bitSize)), nil
}

func normalizeNumber(n json.Number) (Key, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return "", ErrEmptyKey
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Key(strconv.FormatInt(i, 10)), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return normalizeFloat(f, 64)
	}
	return Key(s), nil
}
