// Package probe scans a raw source tree against a schema contract and
// reports what a run would see: file and record counts, per-field null
// rates, and any values that would not coerce to their declared types.
//
// The report is a pre-flight diagnostic. It never writes anything and it
// does not abort on a bad record the way a real run does; instead it keeps
// scanning and tallies every violation so a data problem can be sized
// before the batch is launched.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lakeetl/internal/reader"
	"lakeetl/internal/schema"
	"lakeetl/internal/source"
)

// maxExamples caps how many violation messages a report carries.
const maxExamples = 10

// FieldReport summarizes one declared field across every scanned record.
type FieldReport struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nulls      int    `json:"nulls"`
	Violations int    `json:"violations"`
}

// Report summarizes one record family.
type Report struct {
	Contract   string        `json:"contract"`
	Glob       string        `json:"glob"`
	Files      int           `json:"files"`
	Records    int           `json:"records"`
	BadRecords int           `json:"bad_records"`
	Fields     []FieldReport `json:"fields"`
	Examples   []string      `json:"examples,omitempty"`
}

// Scan walks every file matching the contract's glob and builds a Report.
// Unreadable roots and empty globs still surface as errors wrapping
// source.ErrUnavailable; everything past that point is tallied, not fatal.
func Scan(ctx context.Context, src source.Source, contract schema.Contract) (Report, error) {
	rep := Report{
		Contract: contract.Name,
		Glob:     contract.Glob,
		Fields:   make([]FieldReport, len(contract.Fields)),
	}
	idx := make(map[string]int, len(contract.Fields))
	for i, f := range contract.Fields {
		rep.Fields[i] = FieldReport{Name: f.Name, Type: f.Type}
		idx[f.Name] = i
	}

	names, err := src.Glob(ctx, contract.Glob)
	if err != nil {
		return rep, fmt.Errorf("probe %s: %w", contract.Name, err)
	}
	rep.Files = len(names)

	for _, name := range names {
		if err := scanFile(ctx, src, contract, name, idx, &rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func scanFile(ctx context.Context, src source.Source, contract schema.Contract, name string, idx map[string]int, rep *Report) error {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("probe %s: %v: %w", contract.Name, err, source.ErrUnavailable)
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		rep.Records++

		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			rep.BadRecords++
			addExample(rep, fmt.Sprintf("%s line %d: %v", name, line, err))
			continue
		}

		rec, err := reader.Coerce(obj, contract, name, line)
		if err != nil {
			rep.BadRecords++
			addExample(rep, err.Error())
			var sv *reader.SchemaViolationError
			if errors.As(err, &sv) {
				if i, ok := idx[sv.Field]; ok {
					rep.Fields[i].Violations++
				}
			}
			continue
		}
		for field, v := range rec {
			if v == nil {
				rep.Fields[idx[field]].Nulls++
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("probe %s: scan %s: %w", contract.Name, name, err)
	}
	return nil
}

func addExample(rep *Report, msg string) {
	if len(rep.Examples) < maxExamples {
		rep.Examples = append(rep.Examples, msg)
	}
}
