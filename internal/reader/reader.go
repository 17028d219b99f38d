// Package reader loads raw JSON Lines files from a source root into typed
// records, applying a schema contract. Fields a record carries but the
// contract does not declare are dropped; declared fields the record lacks
// become nil. The only fatal per-row condition is a present value that cannot
// be coerced to its declared type.
package reader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"lakeetl/internal/schema"
	"lakeetl/internal/source"
	"lakeetl/pkg/records"
)

// SchemaViolationError reports a raw value that could not be coerced to its
// declared column type.
type SchemaViolationError struct {
	Contract string
	Field    string
	File     string
	Line     int
	Value    any
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s: %s line %d: field %q: value %v does not coerce to declared type",
		e.Contract, e.File, e.Line, e.Field, e.Value)
}

// Read loads every file matching the contract's glob under src and returns
// one record per input line, in file order. An unreachable root or an empty
// glob surfaces as an error wrapping source.ErrUnavailable; a non-coercible
// present value aborts the whole read with a *SchemaViolationError.
func Read(ctx context.Context, src source.Source, contract schema.Contract) ([]records.Record, error) {
	names, err := src.Glob(ctx, contract.Glob)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", contract.Name, err)
	}

	var out []records.Record
	for _, name := range names {
		rows, err := readFile(ctx, src, contract, name)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func readFile(ctx context.Context, src source.Source, contract schema.Contract, name string) ([]records.Record, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", contract.Name, err, source.ErrUnavailable)
	}
	defer rc.Close()

	var rows []records.Record
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("%s: %s line %d: %w", contract.Name, name, line, err)
		}
		rec, err := Coerce(obj, contract, name, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: scan %s: %w", contract.Name, name, err)
	}
	return rows, nil
}

// Coerce applies the contract to one decoded JSON object. Absent and null
// declared fields map to nil; undeclared fields are ignored.
func Coerce(obj map[string]any, contract schema.Contract, file string, line int) (records.Record, error) {
	rec := make(records.Record, len(contract.Fields))
	for _, f := range contract.Fields {
		v, ok := obj[f.Name]
		if !ok || v == nil {
			rec[f.Name] = nil
			continue
		}
		cv, ok := coerceValue(v, f.Type)
		if !ok {
			return nil, &SchemaViolationError{
				Contract: contract.Name,
				Field:    f.Name,
				File:     file,
				Line:     line,
				Value:    v,
			}
		}
		rec[f.Name] = cv
	}
	return rec, nil
}

// coerceValue maps a decoded JSON value onto a declared type. encoding/json
// decodes every number as float64, so "long" accepts only integral floats.
func coerceValue(v any, typ string) (any, bool) {
	switch typ {
	case "string":
		s, ok := v.(string)
		return s, ok
	case "double":
		f, ok := v.(float64)
		return f, ok
	case "long":
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, false
		}
		return int64(f), true
	default:
		return nil, false
	}
}
