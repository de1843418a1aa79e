package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   Value
		want    Key
		wantErr error
	}{
		// Numbers coerced by spreadsheets
		{"integral float", 12345.0, "12345", nil},
		{"float32 integral", float32(42), "42", nil},
		{"negative integral float", -7.0, "-7", nil},
		{"negative zero", math.Copysign(0, -1), "0", nil},
		{"fractional float", 12.5, "12.5", nil},
		{"shortest decimal", 0.1, "0.1", nil},
		{"large integral float", 1e15, "1000000000000000", nil},
		{"int", 12345, "12345", nil},
		{"int64", int64(-3), "-3", nil},
		{"uint8", uint8(9), "9", nil},
		{"json number int", json.Number("12345"), "12345", nil},
		{"json number float", json.Number("12345.0"), "12345", nil},

		// Strings
		{"plain string", "12345", "12345", nil},
		{"surrounding whitespace", "  12345\t\n", "12345", nil},
		{"case preserved", "Ab12", "Ab12", nil},
		{"inner whitespace kept", "A 1", "A 1", nil},
		{"decomposed accent composed", "Jose\u0301", "Jos\u00e9", nil},
		{"existing key", Key(" K1 "), "K1", nil},
		{"bool", true, "true", nil},

		// Blank values
		{"nil", nil, "", ErrEmptyKey},
		{"empty string", "", "", ErrEmptyKey},
		{"whitespace only", "   ", "", ErrEmptyKey},
		{"NaN", math.NaN(), "", ErrEmptyKey},
		{"empty json number", json.Number(""), "", ErrEmptyKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Normalize(%v) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%v) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []Value{12345.0, " 12345 ", "Ab12", 12.5, -0.0, json.Number("7.0"), "Jose\u0301", int32(5)}

	for _, in := range inputs {
		once, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%v): %v", in, err)
		}
		twice, err := Normalize(string(once))
		if err != nil {
			t.Fatalf("Normalize(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %v: %q then %q", in, once, twice)
		}
	}
}

func TestNormalize_FloatEqualsString(t *testing.T) {
	a, _ := Normalize(12345.0)
	b, _ := Normalize("12345")
	if a != b {
		t.Errorf("Normalize(12345.0) = %q, Normalize(\"12345\") = %q, want equal", a, b)
	}
}

func TestMustNormalize_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNormalize(\"\") did not panic")
		}
	}()
	MustNormalize("")
}
