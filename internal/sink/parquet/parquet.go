// Package parquet materializes tables as partitioned Parquet file sets
// through an objstore.Store. Output layout follows the Hive convention:
// <root>/<suffix>/[col=value/...]part-00000.parquet, and every write fully
// replaces whatever lived under <suffix> before.
package parquet

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	parquetgo "github.com/parquet-go/parquet-go"

	"lakeetl/internal/sink"
	"lakeetl/internal/sink/objstore"
	"lakeetl/internal/table"
)

// init registers the "parquet" backend with the sink factory. Roots of the
// form s3://bucket/prefix select the S3 store; anything else is treated as a
// local directory.
func init() {
	sink.Register("parquet", func(_ context.Context, cfg sink.Config) (sink.Writer, error) {
		if strings.HasPrefix(cfg.Root, "s3://") {
			u, err := url.Parse(cfg.Root)
			if err != nil {
				return nil, fmt.Errorf("parse sink root %q: %w", cfg.Root, err)
			}
			sess, err := session.NewSession()
			if err != nil {
				return nil, fmt.Errorf("aws session: %w", err)
			}
			return New(objstore.NewS3(awss3.New(sess), u.Host, strings.TrimPrefix(u.Path, "/"))), nil
		}
		return New(objstore.NewFS(cfg.Root)), nil
	})
}

// Writer writes tables through a Store.
type Writer struct {
	store objstore.Store
}

var _ sink.Writer = (*Writer)(nil)

// New returns a Writer over store. Exported so tests can substitute an
// in-memory store.
func New(store objstore.Store) *Writer {
	return &Writer{store: store}
}

// Write clears the table's prior output and materializes its rows, grouped
// into partition directories when the table declares partition columns.
func (w *Writer) Write(ctx context.Context, t table.Table) error {
	if err := w.store.DeletePrefix(ctx, t.Suffix); err != nil {
		return fmt.Errorf("%s: clear prior output: %v: %w", t.Suffix, err, sink.ErrWrite)
	}

	if len(t.PartitionBy) == 0 {
		return w.writePart(ctx, t.Suffix+"/part-00000.parquet", t.Rows)
	}

	// Group rows by rendered partition key, preserving first-seen group
	// order so reruns lay files out identically.
	var order []string
	groups := make(map[string][]table.Row)
	for _, r := range t.Rows {
		p, ok := r.(table.Partitioner)
		if !ok {
			return fmt.Errorf("%s: partitioned table with non-partitionable rows: %w", t.Suffix, sink.ErrWrite)
		}
		key := partitionPath(t.PartitionBy, p.PartitionValues())
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	for _, key := range order {
		if err := w.writePart(ctx, t.Suffix+"/"+key+"/part-00000.parquet", groups[key]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Close() error { return nil }

func (w *Writer) writePart(ctx context.Context, key string, rows []table.Row) error {
	if len(rows) == 0 {
		// Nothing to encode; the cleared prefix already reflects an empty
		// table.
		return nil
	}
	body, err := encode(rows)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", key, err, sink.ErrWrite)
	}
	if err := w.store.Put(ctx, key, body); err != nil {
		return fmt.Errorf("%s: %v: %w", key, err, sink.ErrWrite)
	}
	return nil
}

// encode serializes rows of one concrete row type into a single parquet
// object.
func encode(rows []table.Row) ([]byte, error) {
	buf := new(bytes.Buffer)
	pw := parquetgo.NewWriter(buf, parquetgo.SchemaOf(rows[0]))
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			return nil, fmt.Errorf("encode row: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}
	return buf.Bytes(), nil
}

// partitionPath renders year=2000/artist_id=A1 style path segments. Empty
// values fall back to the Hive null marker so the path stays well-formed.
func partitionPath(cols, vals []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := ""
		if i < len(vals) {
			v = vals[i]
		}
		if v == "" {
			v = "__HIVE_DEFAULT_PARTITION__"
		}
		parts[i] = c + "=" + url.PathEscape(v)
	}
	return strings.Join(parts, "/")
}
