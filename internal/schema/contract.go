// Package schema declares the fixed contracts for the two raw record shapes
// the pipeline ingests, plus the minimal DDL helpers the warehouse sink needs.
package schema

// Field declares one raw column: its name and the type raw values must
// coerce to. All raw fields are nullable; an absent or null value is never a
// contract violation, only an un-coercible present value is.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"` // "string" | "double" | "long"
}

// Contract is the declared shape of one raw record family, together with the
// fixed glob pattern its files live under relative to the source root.
type Contract struct {
	Name   string  `json:"name"`
	Glob   string  `json:"glob"`
	Fields []Field `json:"fields"`
}

// Field returns the declared field with the given name, or false when the
// contract does not declare it.
func (c Contract) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SongData is the catalog record contract: one JSON object per song/artist
// release, nested four directory levels under the source root.
func SongData() Contract {
	return Contract{
		Name: "song_data",
		Glob: "song_data/*/*/*/*.json",
		Fields: []Field{
			{Name: "artist_id", Type: "string"},
			{Name: "artist_latitude", Type: "double"},
			{Name: "artist_location", Type: "string"},
			{Name: "artist_longitude", Type: "double"},
			{Name: "artist_name", Type: "string"},
			{Name: "duration", Type: "double"},
			{Name: "num_songs", Type: "long"},
			{Name: "song_id", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "year", Type: "long"},
		},
	}
}

// LogData is the activity record contract: one JSON object per logged user
// action, nested three directory levels under the source root.
func LogData() Contract {
	return Contract{
		Name: "log_data",
		Glob: "log_data/*/*/*.json",
		Fields: []Field{
			{Name: "artist", Type: "string"},
			{Name: "auth", Type: "string"},
			{Name: "firstName", Type: "string"},
			{Name: "gender", Type: "string"},
			{Name: "itemInSession", Type: "long"},
			{Name: "lastName", Type: "string"},
			{Name: "length", Type: "double"},
			{Name: "level", Type: "string"},
			{Name: "location", Type: "string"},
			{Name: "method", Type: "string"},
			{Name: "page", Type: "string"},
			{Name: "registration", Type: "double"},
			{Name: "sessionId", Type: "long"},
			{Name: "song", Type: "string"},
			{Name: "status", Type: "long"},
			{Name: "ts", Type: "long"},
			{Name: "userAgent", Type: "string"},
			{Name: "userId", Type: "string"},
		},
	}
}
