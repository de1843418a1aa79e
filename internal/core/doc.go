// Package core provides the overlap reconciliation engine for student
// identity lists.
//
// The package holds all domain logic independent of any UI or transport
// layer. Web handlers, the command line tool and tests use it unchanged.
//
// # Architecture
//
// The package is organized around a few small concepts:
//
//   - Key: the canonical identifier derived from a raw cell by [Normalize].
//   - Dataset and Workbook: named, column-ordered rows as uploaded.
//   - Index: a key index over one dataset, built by [BuildIndex].
//   - Match: classification of a subject dataset against references.
//   - Service: in-memory workbook sessions plus the comparison entry points.
//
// # Key Normalization
//
// Spreadsheets coerce identifiers into numbers, so the same student may
// arrive as "12345" in one sheet and 12345.0 in another. Every comparison
// goes through [Normalize], which renders integral floats as integers and
// trims strings:
//
//	k1, _ := core.Normalize(12345.0)
//	k2, _ := core.Normalize(" 12345 ")
//	// k1 == k2 == "12345"
//
// # Matching
//
// [Match] keeps every subject row exactly once and adds a Status column:
//
//	table, err := core.Match(mse, []*core.Dataset{r1, r2}, core.MatchOptions{
//	    Policy: core.PolicyPerReference,
//	    Carry:  []string{"EMIS"},
//	})
//
// [PolicyAny] marks a row Overlapped when any reference holds its key,
// [PolicyPerReference] adds one boolean column per reference, and
// [PolicyPair] compares against a single reference. Optional enrichment
// copies attributes from a canonical dataset, with "Not Found" for misses.
//
// [Gaps] answers the opposite question: which keys of a new dataset are
// missing from the canonical one. [SearchIndex] reports which datasets of a
// workbook contain a single identifier.
//
// # Errors
//
// All errors are returned at the boundary of a single call (see errors.go)
// and map to user-facing messages with [MapError]:
//
//	if errors.Is(err, core.ErrMissingColumn) {
//	    msg := core.MapError(err) // Code "COL001"
//	}
//
// # Thread Safety
//
// Datasets and indexes are read-only once built and may be shared across
// goroutines. [Service] is safe for concurrent use; [BuildIndexes] builds
// reference indexes in parallel.
package core
