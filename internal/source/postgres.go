package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the part of *pgxpool.Pool the loader uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresLoader reads whole tables as datasets.
type PostgresLoader struct {
	db Querier
}

// NewPostgresLoader creates a loader on db. A nil db yields a loader whose
// Load always fails with ErrNoDatabase.
func NewPostgresLoader(db Querier) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// Enabled reports whether a database is configured.
func (l *PostgresLoader) Enabled() bool {
	return l != nil && l.db != nil
}

// Load reads each table into a dataset named after it, in the given order.
// Names may be schema-qualified ("school.students"). Column order follows
// the table definition.
func (l *PostgresLoader) Load(ctx context.Context, tables []string) (*core.Workbook, error) {
	if !l.Enabled() {
		return nil, ErrNoDatabase
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables requested", ErrEmptyFile)
	}

	wb := core.NewWorkbook()
	for _, table := range tables {
		table = strings.TrimSpace(table)
		if table == "" {
			continue
		}
		ds, err := l.loadTable(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("load table %q: %w", table, err)
		}
		wb.Add(ds)
	}
	if wb.Len() == 0 {
		return nil, fmt.Errorf("%w: no tables requested", ErrEmptyFile)
	}
	return wb, nil
}

func (l *PostgresLoader) loadTable(ctx context.Context, table string) (*core.Dataset, error) {
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()

	rows, err := l.db.Query(ctx, "SELECT * FROM "+ident)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}

	var records [][]core.Value
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make([]core.Value, len(values))
		for i, v := range values {
			rec[i] = pgValue(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return core.NewDataset(table, headerNames(header), records), nil
}

// pgValue converts a decoded column value into a cell value the normalizer
// understands.
func pgValue(v any) core.Value {
	switch val := v.(type) {
	case nil:
		return nil
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
