package parquet

import (
	"context"
	"errors"
	"sort"
	"testing"

	"lakeetl/internal/sink"
	"lakeetl/internal/sink/objstore"
	"lakeetl/internal/table"
)

func songTable(rows ...table.Row) table.Table {
	return table.Table{
		Name:        "songs",
		Suffix:      "songs_table.parquet",
		Columns:     table.SongColumns(),
		PartitionBy: []string{"year", "artist_id"},
		Rows:        rows,
	}
}

/*
TestWrite_PartitionLayout verifies the Hive-style layout: one part file per
distinct (year, artist_id) combination under the table suffix.
*/
func TestWrite_PartitionLayout(t *testing.T) {
	store := objstore.NewFS(t.TempDir())
	w := New(store)

	tbl := songTable(
		table.Song{SongID: "S1", ArtistID: "A1", Year: 2000},
		table.Song{SongID: "S2", ArtistID: "A1", Year: 2000},
		table.Song{SongID: "S3", ArtistID: "A2", Year: 1999},
	)
	if err := w.Write(context.Background(), tbl); err != nil {
		t.Fatalf("Write: %v", err)
	}

	keys, err := store.List("songs_table.parquet")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(keys)
	want := []string{
		"songs_table.parquet/year=1999/artist_id=A2/part-00000.parquet",
		"songs_table.parquet/year=2000/artist_id=A1/part-00000.parquet",
	}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

/*
TestWrite_Overwrites verifies full-overwrite semantics: a rerun with fewer
partitions removes the stale partition directories from the prior run.
*/
func TestWrite_Overwrites(t *testing.T) {
	store := objstore.NewFS(t.TempDir())
	w := New(store)
	ctx := context.Background()

	first := songTable(
		table.Song{SongID: "S1", ArtistID: "A1", Year: 2000},
		table.Song{SongID: "S2", ArtistID: "A9", Year: 1950},
	)
	if err := w.Write(ctx, first); err != nil {
		t.Fatalf("first write: %v", err)
	}

	second := songTable(table.Song{SongID: "S1", ArtistID: "A1", Year: 2000})
	if err := w.Write(ctx, second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	keys, err := store.List("songs_table.parquet")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 || keys[0] != "songs_table.parquet/year=2000/artist_id=A1/part-00000.parquet" {
		t.Fatalf("stale partitions survived overwrite: %v", keys)
	}
}

func TestWrite_Unpartitioned(t *testing.T) {
	store := objstore.NewFS(t.TempDir())
	w := New(store)

	tbl := table.Table{
		Name:    "artists",
		Suffix:  "artists_table.parquet",
		Columns: table.ArtistColumns(),
		Rows:    []table.Row{table.Artist{ArtistID: "A1", Name: "X"}},
	}
	if err := w.Write(context.Background(), tbl); err != nil {
		t.Fatalf("Write: %v", err)
	}

	keys, err := store.List("artists_table.parquet")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 || keys[0] != "artists_table.parquet/part-00000.parquet" {
		t.Fatalf("keys = %v", keys)
	}
}

// An empty table clears prior output and writes nothing.
func TestWrite_EmptyTableClears(t *testing.T) {
	store := objstore.NewFS(t.TempDir())
	w := New(store)
	ctx := context.Background()

	if err := w.Write(ctx, songTable(table.Song{SongID: "S1", ArtistID: "A1", Year: 2000})); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	if err := w.Write(ctx, songTable()); err != nil {
		t.Fatalf("empty write: %v", err)
	}

	keys, err := store.List("songs_table.parquet")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("keys = %v, want none", keys)
	}
}

type failingStore struct{ objstore.Store }

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestWrite_FailureWrapsErrWrite(t *testing.T) {
	w := New(failingStore{objstore.NewFS(t.TempDir())})
	err := w.Write(context.Background(), table.Table{
		Suffix: "users_table.parquet",
		Rows:   []table.Row{table.User{UserID: "U1"}},
	})
	if !errors.Is(err, sink.ErrWrite) {
		t.Fatalf("err = %v, want sink.ErrWrite", err)
	}
}
