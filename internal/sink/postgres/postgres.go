// Package postgres provides the warehouse sink: each table is created from
// its column definitions, truncated, and bulk-loaded with COPY. This adapter
// registers itself with the sink factory so callers never import pgx
// directly.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lakeetl/internal/schema"
	"lakeetl/internal/sink"
	"lakeetl/internal/table"
)

// db is the slice of pgxpool.Pool the writer needs; tests substitute a fake.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// newPool is a test hook pointing at pgxpool.New by default.
var newPool = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return pgxpool.New(ctx, dsn)
}

func init() {
	sink.Register("postgres", func(ctx context.Context, cfg sink.Config) (sink.Writer, error) {
		pool, err := newPool(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect warehouse: %w", err)
		}
		sch := cfg.Schema
		if sch == "" {
			sch = "public"
		}
		return &Writer{db: pool, schema: sch, closeFn: pool.Close}, nil
	})
}

// Writer loads tables into a Postgres schema.
type Writer struct {
	db      db
	schema  string
	closeFn func()
}

var _ sink.Writer = (*Writer)(nil)

// Write ensures the target table exists, truncates it, and COPYs all rows.
// Truncate-then-copy gives the same full-overwrite semantics as the columnar
// sink; a failure aborts this table only.
func (w *Writer) Write(ctx context.Context, t table.Table) error {
	ddl, err := schema.BuildCreateTableSQL(schema.TableDef{
		FQN:     w.schema + "." + t.Name,
		Columns: t.Columns,
	})
	if err != nil {
		return fmt.Errorf("%s: build ddl: %v: %w", t.Name, err, sink.ErrWrite)
	}
	if _, err := w.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("%s: apply ddl: %v: %w", t.Name, err, sink.ErrWrite)
	}

	ident := pgx.Identifier{w.schema, t.Name}
	if _, err := w.db.Exec(ctx, "TRUNCATE "+ident.Sanitize()); err != nil {
		return fmt.Errorf("%s: truncate: %v: %w", t.Name, err, sink.ErrWrite)
	}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Name
	}
	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Values()
	}
	n, err := w.db.CopyFrom(ctx, ident, cols, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("%s: copy: %v: %w", t.Name, err, sink.ErrWrite)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("%s: copy wrote %d of %d rows: %w", t.Name, n, len(rows), sink.ErrWrite)
	}
	return nil
}

// Close releases the connection pool.
func (w *Writer) Close() error {
	if w.closeFn != nil {
		w.closeFn()
	}
	return nil
}
