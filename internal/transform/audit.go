package transform

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"lakeetl/pkg/records"
)

// JoinAudit summarizes how the artist-name join behaved for one run. Fewer
// matched rows than NextSong rows is a data-quality characteristic of the
// sources, not a fault; NearMisses counts the unmatched names that would
// have joined under accent/case folding, which pinpoints drift between the
// catalog and the activity log.
type JoinAudit struct {
	NextSong   int // activity rows with page == "NextSong"
	Matched    int // of those, rows whose artist name joined exactly
	Unmatched  int // of those, rows with no exact catalog match
	NearMisses int // unmatched rows that match after folding
}

// AuditJoin replays the songplay join eligibility check without building
// rows. It never alters join semantics; the fold is diagnostic only.
func AuditJoin(activity, catalog []records.Record) JoinAudit {
	exact := make(map[string]struct{}, len(catalog))
	folded := make(map[string]struct{}, len(catalog))
	for _, c := range catalog {
		if c.IsNull("artist_name") {
			continue
		}
		name := c.String("artist_name")
		exact[name] = struct{}{}
		folded[foldName(name)] = struct{}{}
	}

	var audit JoinAudit
	for _, a := range activity {
		if a.String("page") != "NextSong" {
			continue
		}
		audit.NextSong++
		if a.IsNull("artist") {
			audit.Unmatched++
			continue
		}
		name := a.String("artist")
		if _, ok := exact[name]; ok {
			audit.Matched++
			continue
		}
		audit.Unmatched++
		if _, ok := folded[foldName(name)]; ok {
			audit.NearMisses++
		}
	}
	return audit
}

// foldName strips diacritics and case for the near-miss check.
func foldName(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}
	return strings.ToLower(ascii)
}
