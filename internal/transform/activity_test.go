package transform

import (
	"testing"
	"time"

	"lakeetl/internal/table"
	"lakeetl/pkg/records"
)

func activityRecord(userID string, ts int64, page string) records.Record {
	return records.Record{
		"artist": nil, "auth": "Logged In", "firstName": "F", "gender": "M",
		"itemInSession": int64(0), "lastName": "L", "length": nil, "level": "free",
		"location": "Loc", "method": "PUT", "page": page, "registration": nil,
		"sessionId": int64(1), "song": nil, "status": int64(200), "ts": ts,
		"userAgent": "UA", "userId": userID,
	}
}

/*
TestParseEventTime verifies the epoch-millisecond conversion contract:
  - 0 maps to the epoch instant,
  - 1000 advances exactly one second,
  - fractional-second inputs truncate (1500 maps to the same second as 1000,
    not 2000).

The result is in the local zone; comparisons go through time.Unix so the test
is zone-independent.
*/
func TestParseEventTime(t *testing.T) {
	tests := []struct {
		ms   int64
		want time.Time
	}{
		{0, time.Unix(0, 0)},
		{1000, time.Unix(1, 0)},
		{1500, time.Unix(1, 0)},
		{1999, time.Unix(1, 0)},
		{2000, time.Unix(2, 0)},
	}
	for _, tc := range tests {
		if got := ParseEventTime(tc.ms); !got.Equal(tc.want) {
			t.Fatalf("ParseEventTime(%d) = %v, want %v", tc.ms, got, tc.want)
		}
	}
}

func TestParseEventTime_TruncatesNotRounds(t *testing.T) {
	if got, want := ParseEventTime(1500), ParseEventTime(1000); !got.Equal(want) {
		t.Fatalf("1500ms maps to %v, want same second as 1000ms (%v)", got, want)
	}
	if got := ParseEventTime(1500); got.Equal(ParseEventTime(2000)) {
		t.Fatalf("1500ms rounded up to %v", got)
	}
}

/*
TestBuildUserTable_NoDedupAndOrdering verifies:
 1. row count equals input row count (no filtering, no deduplication),
 2. output is ordered by user_id ascending, then ts descending within a user.
*/
func TestBuildUserTable_NoDedupAndOrdering(t *testing.T) {
	in := []records.Record{
		activityRecord("U2", 100, "NextSong"),
		activityRecord("U1", 50, "Home"),
		activityRecord("U1", 200, "NextSong"),
		activityRecord("U1", 200, "NextSong"), // duplicate row is retained
		activityRecord("U2", 300, "Login"),
	}

	tbl := BuildUserTable(in)

	if got, want := len(tbl.Rows), len(in); got != want {
		t.Fatalf("rows = %d, want %d", got, want)
	}

	prev := tbl.Rows[0].(table.User)
	for _, r := range tbl.Rows[1:] {
		u := r.(table.User)
		if u.UserID < prev.UserID {
			t.Fatalf("user_id order violated: %q after %q", u.UserID, prev.UserID)
		}
		if u.UserID == prev.UserID && prev.TS < u.TS {
			t.Fatalf("ts order violated for %q: %d before %d", u.UserID, prev.TS, u.TS)
		}
		prev = u
	}
}

/*
TestBuildTimeTable verifies the calendar decomposition: one output row per
input row, and every derived part matches the start_time it came from.
*/
func TestBuildTimeTable(t *testing.T) {
	// 2018-11-15T12:30:45.123 UTC expressed as epoch millis.
	ts := time.Date(2018, 11, 15, 12, 30, 45, 0, time.Local).UnixMilli() + 123

	in := []records.Record{
		activityRecord("U1", ts, "NextSong"),
		activityRecord("U1", 0, "Home"),
	}

	tbl := BuildTimeTable(in)

	if got, want := len(tbl.Rows), len(in); got != want {
		t.Fatalf("rows = %d, want %d", got, want)
	}
	for i, r := range tbl.Rows {
		row := r.(table.Time)
		start := row.StartTime
		if got, want := row.Year, int32(start.Year()); got != want {
			t.Fatalf("row %d: year = %d, want %d", i, got, want)
		}
		if got, want := row.Month, int32(start.Month()); got != want {
			t.Fatalf("row %d: month = %d, want %d", i, got, want)
		}
		if got, want := row.Day, int32(start.Day()); got != want {
			t.Fatalf("row %d: day = %d, want %d", i, got, want)
		}
		if got, want := row.Hour, int32(start.Hour()); got != want {
			t.Fatalf("row %d: hour = %d, want %d", i, got, want)
		}
		if row.Hour < 0 || row.Hour > 23 {
			t.Fatalf("row %d: hour out of range: %d", i, row.Hour)
		}
		_, wantWeek := start.ISOWeek()
		if got := row.Week; got != int32(wantWeek) {
			t.Fatalf("row %d: week = %d, want %d", i, got, wantWeek)
		}
	}

	first := tbl.Rows[0].(table.Time)
	if !first.StartTime.Equal(ParseEventTime(ts)) {
		t.Fatalf("start_time = %v, want %v", first.StartTime, ParseEventTime(ts))
	}
	if first.StartTime.Nanosecond() != 0 {
		t.Fatalf("start_time carries sub-second precision: %v", first.StartTime)
	}
}
