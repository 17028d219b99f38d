package transform

import (
	"sort"
	"time"

	"lakeetl/internal/table"
	"lakeetl/pkg/records"
)

// ParseEventTime converts an epoch-millisecond event timestamp to a
// timestamp truncated to whole seconds; fractional seconds are discarded,
// never rounded. The result is in the environment's local zone — callers
// needing UTC convert explicitly.
func ParseEventTime(ms int64) time.Time {
	return time.Unix(ms/1000, 0)
}

// BuildUserTable projects the users dimension: one row per activity record,
// no deduplication, ordered by user_id ascending then ts descending. The
// ordering is an output property only; no "latest level per user" collapse
// happens here.
func BuildUserTable(activity []records.Record) table.Table {
	rows := make([]table.Row, 0, len(activity))
	for _, rec := range activity {
		rows = append(rows, table.User{
			UserID:    rec.String("userId"),
			FirstName: rec.String("firstName"),
			LastName:  rec.String("lastName"),
			Gender:    rec.String("gender"),
			Level:     rec.String("level"),
			TS:        rec.Int64("ts"),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].(table.User), rows[j].(table.User)
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.TS > b.TS
	})
	return table.Table{
		Name:    "users",
		Suffix:  "users_table.parquet",
		Columns: table.UserColumns(),
		Rows:    rows,
	}
}

// BuildTimeTable decomposes every activity record's event timestamp into
// calendar parts: one output row per input row.
func BuildTimeTable(activity []records.Record) table.Table {
	rows := make([]table.Row, 0, len(activity))
	for _, rec := range activity {
		start := ParseEventTime(rec.Int64("ts"))
		_, week := start.ISOWeek()
		rows = append(rows, table.Time{
			StartTime: start,
			Week:      int32(week),
			Hour:      int32(start.Hour()),
			Day:       int32(start.Day()),
			Month:     int32(start.Month()),
			Year:      int32(start.Year()),
		})
	}
	return table.Table{
		Name:    "time",
		Suffix:  "time_table.parquet",
		Columns: table.TimeColumns(),
		Rows:    rows,
	}
}
