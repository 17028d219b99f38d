package transform

import (
	"testing"

	"lakeetl/pkg/records"
)

/*
TestAuditJoin verifies the diagnostic counters:
  - only NextSong rows are counted,
  - exact matches and unmatched rows are split correctly,
  - an unmatched name that differs only by case/diacritics counts as a near
    miss, while a genuinely unknown name does not.
*/
func TestAuditJoin(t *testing.T) {
	catalog := []records.Record{
		catalogRecord("S1", "A1", "T", "Beyoncé", 2003, 200.0),
		catalogRecord("S2", "A2", "T", "Eagles", 1976, 391.0),
	}
	activity := []records.Record{
		playRecord("Eagles", "NextSong", "U1", 1000),  // exact match
		playRecord("beyonce", "NextSong", "U2", 2000), // near miss: case+accent
		playRecord("Nobody", "NextSong", "U3", 3000),  // true mismatch
		playRecord("Eagles", "Login", "U1", 4000),     // not NextSong, ignored
		playRecord("", "NextSong", "U4", 5000),        // null artist, unmatched
	}

	audit := AuditJoin(activity, catalog)

	if got, want := audit.NextSong, 4; got != want {
		t.Fatalf("NextSong = %d, want %d", got, want)
	}
	if got, want := audit.Matched, 1; got != want {
		t.Fatalf("Matched = %d, want %d", got, want)
	}
	if got, want := audit.Unmatched, 3; got != want {
		t.Fatalf("Unmatched = %d, want %d", got, want)
	}
	if got, want := audit.NearMisses, 1; got != want {
		t.Fatalf("NearMisses = %d, want %d", got, want)
	}
}

func TestFoldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Beyoncé", "beyonce"},
		{"AC/DC", "ac/dc"},
		{"Eagles", "eagles"},
	}
	for _, tc := range tests {
		if got := foldName(tc.in); got != tc.want {
			t.Fatalf("foldName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
