// Package transform builds the five star-schema tables from the two raw
// record families. Every function here is pure over its input slices; writes
// happen in the pipeline layer.
package transform

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"

	"lakeetl/internal/table"
	"lakeetl/pkg/records"
)

// BuildSongTable projects the songs dimension from catalog records and
// deduplicates by song_id. The first record seen for a song_id survives;
// source order carries no guarantee, so any survivor is acceptable.
func BuildSongTable(catalog []records.Record) table.Table {
	seen := make(map[string]struct{}, len(catalog))
	rows := make([]table.Row, 0, len(catalog))
	for _, rec := range catalog {
		id := rec.String("song_id")
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, table.Song{
			SongID:   id,
			Title:    rec.String("title"),
			ArtistID: rec.String("artist_id"),
			Year:     rec.Int64("year"),
			Duration: rec.Float64("duration"),
		})
	}
	return table.Table{
		Name:        "songs",
		Suffix:      "songs_table.parquet",
		Columns:     table.SongColumns(),
		PartitionBy: []string{"year", "artist_id"},
		Rows:        rows,
	}
}

// BuildArtistTable projects the artists dimension and deduplicates by
// full-row equality: all five fields must match for two rows to collapse, so
// an artist_id recorded with conflicting metadata yields multiple rows.
func BuildArtistTable(catalog []records.Record) table.Table {
	seen := make(map[uint64][]table.Artist, len(catalog))
	rows := make([]table.Row, 0, len(catalog))
next:
	for _, rec := range catalog {
		a := table.Artist{
			ArtistID:  rec.String("artist_id"),
			Name:      rec.String("artist_name"),
			Location:  rec.StringPtr("artist_location"),
			Latitude:  rec.Float64Ptr("artist_latitude"),
			Longitude: rec.Float64Ptr("artist_longitude"),
		}
		h := artistHash(a)
		for _, prev := range seen[h] {
			if artistEqual(prev, a) {
				continue next
			}
		}
		seen[h] = append(seen[h], a)
		rows = append(rows, a)
	}
	return table.Table{
		Name:    "artists",
		Suffix:  "artists_table.parquet",
		Columns: table.ArtistColumns(),
		Rows:    rows,
	}
}

// artistHash folds all five fields into one xxh3 digest. Null fields are
// tagged so that nil and "" never collide.
func artistHash(a table.Artist) uint64 {
	buf := make([]byte, 0, 64)
	appendStr := func(s string) {
		buf = append(buf, byte(1))
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	appendStrPtr := func(p *string) {
		if p == nil {
			buf = append(buf, byte(0), 0)
			return
		}
		appendStr(*p)
	}
	appendFloatPtr := func(p *float64) {
		if p == nil {
			buf = append(buf, byte(0))
			return
		}
		buf = append(buf, byte(1))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(*p))
	}
	appendStr(a.ArtistID)
	appendStr(a.Name)
	appendStrPtr(a.Location)
	appendFloatPtr(a.Latitude)
	appendFloatPtr(a.Longitude)
	return xxh3.Hash(buf)
}

func artistEqual(a, b table.Artist) bool {
	return a.ArtistID == b.ArtistID &&
		a.Name == b.Name &&
		strPtrEqual(a.Location, b.Location) &&
		floatPtrEqual(a.Latitude, b.Latitude) &&
		floatPtrEqual(a.Longitude, b.Longitude)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
