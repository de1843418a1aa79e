package source

import (
	"context"
	"errors"
	"math/big"
	"slices"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type fakeRows struct {
	fields []string
	values [][]any
	pos    int
	err    error
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) Scan(...any) error             { return errors.New("not implemented") }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.fields))
	for i, f := range r.fields {
		out[i] = pgconn.FieldDescription{Name: f}
	}
	return out
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

type fakeDB struct {
	tables  map[string]*fakeRows
	queries []string
}

func (db *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	db.queries = append(db.queries, sql)
	rows, ok := db.tables[sql]
	if !ok {
		return nil, errors.New(`ERROR: relation "missing" does not exist (SQLSTATE 42P01)`)
	}
	return rows, nil
}

func TestPostgresLoader_Load(t *testing.T) {
	db := &fakeDB{tables: map[string]*fakeRows{
		`SELECT * FROM "students"`: {
			fields: []string{"emis", "name", "score"},
			values: [][]any{
				{int64(12345), "Asha", pgtype.Numeric{Int: big.NewInt(125), Exp: -1, Valid: true}},
				{int64(678), nil, pgtype.Numeric{}},
			},
		},
		`SELECT * FROM "school"."rte"`: {
			fields: []string{"emis", "admitted"},
			values: [][]any{{"12345", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}},
		},
	}}

	wb, err := NewPostgresLoader(db).Load(context.Background(), []string{"students", " school.rte "})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(wb.Names(), []string{"students", "school.rte"}) {
		t.Fatalf("Names() = %v", wb.Names())
	}

	students, _ := wb.Get("students")
	if !slices.Equal(students.Columns, []string{"emis", "name", "score"}) {
		t.Errorf("Columns = %v", students.Columns)
	}
	if got := students.Rows[0]["score"]; got != 12.5 {
		t.Errorf("numeric = %#v, want 12.5", got)
	}
	if got := students.Rows[1]["score"]; got != nil {
		t.Errorf("null numeric = %#v, want nil", got)
	}

	rte, _ := wb.Get("school.rte")
	if got := rte.Rows[0]["admitted"]; got != "2024-06-01" {
		t.Errorf("date = %#v, want 2024-06-01", got)
	}
}

func TestPostgresLoader_Errors(t *testing.T) {
	if _, err := NewPostgresLoader(nil).Load(context.Background(), []string{"a"}); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("nil db error = %v, want ErrNoDatabase", err)
	}

	db := &fakeDB{}
	loader := NewPostgresLoader(db)
	if _, err := loader.Load(context.Background(), []string{" "}); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("blank tables error = %v, want ErrEmptyFile", err)
	}

	_, err := loader.Load(context.Background(), []string{`missing"; DROP TABLE x; --`})
	if err == nil {
		t.Fatal("missing table error = nil")
	}
	if got := db.queries[0]; got != `SELECT * FROM "missing""; DROP TABLE x; --"` {
		t.Errorf("query = %s, want the name quoted as one identifier", got)
	}
}
