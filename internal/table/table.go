// Package table defines the five output tables of the star schema and the
// row types they carry. Each row type carries parquet tags for the columnar
// sink and exposes positional values for the warehouse COPY path; pointer
// fields mark columns that may be null in the raw input.
package table

import (
	"strconv"
	"time"

	"lakeetl/internal/schema"
)

// Row is one output row. Values returns the row positionally, aligned with
// the owning Table's Columns, in a form pgx CopyFrom accepts directly.
type Row interface {
	Values() []any
}

// Partitioner is implemented by rows of partitioned tables. PartitionValues
// returns the rendered partition key values aligned with Table.PartitionBy.
type Partitioner interface {
	PartitionValues() []string
}

// Table is one materialized output: a name for the warehouse, a sink path
// suffix for the columnar writer, and the rows to persist.
type Table struct {
	Name        string // warehouse table name, e.g. "songs"
	Suffix      string // sink path suffix, e.g. "songs_table.parquet"
	Columns     []schema.ColumnDef
	PartitionBy []string // empty for unpartitioned tables
	Rows        []Row
}

// Song is one row of the songs dimension, unique per song_id.
type Song struct {
	SongID   string  `parquet:"song_id"`
	Title    string  `parquet:"title"`
	ArtistID string  `parquet:"artist_id"`
	Year     int64   `parquet:"year"`
	Duration float64 `parquet:"duration"`
}

func (s Song) Values() []any {
	return []any{s.SongID, s.Title, s.ArtistID, s.Year, s.Duration}
}

// PartitionValues renders the (year, artist_id) partition key.
func (s Song) PartitionValues() []string {
	return []string{strconv.FormatInt(s.Year, 10), s.ArtistID}
}

// Artist is one row of the artists dimension. Distinctness spans all five
// fields, so an artist_id may appear more than once with differing metadata.
type Artist struct {
	ArtistID  string   `parquet:"artist_id"`
	Name      string   `parquet:"name"`
	Location  *string  `parquet:"location,optional"`
	Latitude  *float64 `parquet:"latitude,optional"`
	Longitude *float64 `parquet:"longitude,optional"`
}

func (a Artist) Values() []any {
	return []any{a.ArtistID, a.Name, a.Location, a.Latitude, a.Longitude}
}

// User is one row of the users dimension: one per retained activity record,
// not deduplicated, ordered by user_id ascending then ts descending.
type User struct {
	UserID    string `parquet:"user_id"`
	FirstName string `parquet:"first_name"`
	LastName  string `parquet:"last_name"`
	Gender    string `parquet:"gender"`
	Level     string `parquet:"level"`
	TS        int64  `parquet:"ts"`
}

func (u User) Values() []any {
	return []any{u.UserID, u.FirstName, u.LastName, u.Gender, u.Level, u.TS}
}

// Time is one row of the time dimension: one per activity record, its event
// timestamp decomposed into calendar parts.
type Time struct {
	StartTime time.Time `parquet:"start_time,timestamp"`
	Week      int32     `parquet:"week"`
	Hour      int32     `parquet:"hour"`
	Day       int32     `parquet:"day"`
	Month     int32     `parquet:"month"`
	Year      int32     `parquet:"year"`
}

func (t Time) Values() []any {
	return []any{t.StartTime, t.Week, t.Hour, t.Day, t.Month, t.Year}
}

// Songplay is one row of the fact table: a NextSong activity record joined to
// a catalog entry by exact artist name.
type Songplay struct {
	UserID    string `parquet:"user_id"`
	Level     string `parquet:"level"`
	SongID    string `parquet:"song_id"`
	ArtistID  string `parquet:"artist_id"`
	SessionID int64  `parquet:"sessionId"`
	Location  string `parquet:"location"`
	UserAgent string `parquet:"userAgent"`
}

func (p Songplay) Values() []any {
	return []any{p.UserID, p.Level, p.SongID, p.ArtistID, p.SessionID, p.Location, p.UserAgent}
}

// Warehouse column definitions, aligned with each row type's Values order.

func SongColumns() []schema.ColumnDef {
	return []schema.ColumnDef{
		{Name: "song_id", SQLType: "TEXT"},
		{Name: "title", SQLType: "TEXT"},
		{Name: "artist_id", SQLType: "TEXT"},
		{Name: "year", SQLType: "BIGINT"},
		{Name: "duration", SQLType: "DOUBLE PRECISION"},
	}
}

func ArtistColumns() []schema.ColumnDef {
	return []schema.ColumnDef{
		{Name: "artist_id", SQLType: "TEXT"},
		{Name: "name", SQLType: "TEXT"},
		{Name: "location", SQLType: "TEXT", Nullable: true},
		{Name: "latitude", SQLType: "DOUBLE PRECISION", Nullable: true},
		{Name: "longitude", SQLType: "DOUBLE PRECISION", Nullable: true},
	}
}

func UserColumns() []schema.ColumnDef {
	return []schema.ColumnDef{
		{Name: "user_id", SQLType: "TEXT"},
		{Name: "first_name", SQLType: "TEXT"},
		{Name: "last_name", SQLType: "TEXT"},
		{Name: "gender", SQLType: "TEXT"},
		{Name: "level", SQLType: "TEXT"},
		{Name: "ts", SQLType: "BIGINT"},
	}
}

func TimeColumns() []schema.ColumnDef {
	return []schema.ColumnDef{
		{Name: "start_time", SQLType: "TIMESTAMP"},
		{Name: "week", SQLType: "INTEGER"},
		{Name: "hour", SQLType: "INTEGER"},
		{Name: "day", SQLType: "INTEGER"},
		{Name: "month", SQLType: "INTEGER"},
		{Name: "year", SQLType: "INTEGER"},
	}
}

func SongplayColumns() []schema.ColumnDef {
	return []schema.ColumnDef{
		{Name: "user_id", SQLType: "TEXT"},
		{Name: "level", SQLType: "TEXT"},
		{Name: "song_id", SQLType: "TEXT"},
		{Name: "artist_id", SQLType: "TEXT"},
		{Name: "sessionId", SQLType: "BIGINT"},
		{Name: "location", SQLType: "TEXT"},
		{Name: "userAgent", SQLType: "TEXT"},
	}
}
