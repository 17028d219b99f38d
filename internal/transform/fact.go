package transform

import (
	"lakeetl/internal/table"
	"lakeetl/pkg/records"
)

// BuildSongplays builds the fact table: an inner join of activity records to
// catalog records on exact artist-name equality (one output row per matching
// pair), filtered to page == "NextSong" after the join. Name comparisons are
// byte-exact; case or punctuation drift between the two sources drops the
// row silently, which AuditJoin surfaces as a data-quality signal.
//
// TODO: carry start_time through the projection so the write can be
// partitioned by (year, month); the table is currently written flat.
func BuildSongplays(activity, catalog []records.Record) table.Table {
	byName := make(map[string][]records.Record, len(catalog))
	for _, c := range catalog {
		if c.IsNull("artist_name") {
			continue
		}
		byName[c.String("artist_name")] = append(byName[c.String("artist_name")], c)
	}

	var rows []table.Row
	for _, a := range activity {
		if a.IsNull("artist") {
			continue
		}
		for _, c := range byName[a.String("artist")] {
			if a.String("page") != "NextSong" {
				continue
			}
			rows = append(rows, table.Songplay{
				UserID:    a.String("userId"),
				Level:     a.String("level"),
				SongID:    c.String("song_id"),
				ArtistID:  c.String("artist_id"),
				SessionID: a.Int64("sessionId"),
				Location:  a.String("location"),
				UserAgent: a.String("userAgent"),
			})
		}
	}
	return table.Table{
		Name:    "songplays",
		Suffix:  "songplays.parquet",
		Columns: table.SongplayColumns(),
		Rows:    rows,
	}
}
