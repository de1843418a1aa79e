package source

import (
	"strconv"
	"strings"
)

// headerNames turns a raw header row into unique column names. A blank header
// becomes "Unnamed: i" for its 0-based position i, and a repeated name gets a
// ".1", ".2" suffix in order of appearance.
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, h := range raw {
		name := cleanCell(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for n := 1; seen[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// cleanCell removes common export artifacts from a text cell:
// surrounding whitespace and the ="..." wrapper Excel uses to keep leading
// zeros in CSV.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// blankRecord reports whether every cell of a record is nil.
func blankRecord(rec []any) bool {
	for _, v := range rec {
		if v != nil {
			return false
		}
	}
	return true
}
