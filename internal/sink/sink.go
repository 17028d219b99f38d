// Package sink contains the sink-agnostic Writer contract and the backend
// factory. Concrete backends (parquet, postgres) register themselves at init
// time; callers obtain a Writer via New without importing backend packages
// directly.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"lakeetl/internal/table"
)

// ErrWrite marks a failed table materialization. A failed write aborts that
// table only; tables already written stay on the sink (no cross-table
// transaction).
var ErrWrite = errors.New("sink write failed")

// Writer materializes named tables, fully overwriting prior output for the
// same table.
type Writer interface {
	Write(ctx context.Context, t table.Table) error
	Close() error
}

// Config selects and parameterizes a sink backend.
type Config struct {
	Kind   string // "parquet" | "postgres"
	Root   string // parquet: output root (directory or s3://bucket/prefix)
	DSN    string // postgres: connection string
	Schema string // postgres: target schema, default "public"
}

// Ctor builds a Writer from a Config.
type Ctor func(ctx context.Context, cfg Config) (Writer, error)

var backends = map[string]Ctor{}

// Register adds a backend constructor under a kind name. Typically called
// from a backend package's init.
func Register(kind string, ctor Ctor) {
	backends[kind] = ctor
}

// New constructs the Writer for cfg.Kind.
func New(ctx context.Context, cfg Config) (Writer, error) {
	ctor, ok := backends[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown sink kind %q (registered: %v)", cfg.Kind, kinds())
	}
	return ctor(ctx, cfg)
}

func kinds() []string {
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
