// Package config defines the canonical, JSON-serializable configuration model
// for the data-lake ETL. It is intentionally small, explicit, and dependency-
// free so that run configs can be loaded from disk and passed through the
// program without additional glue code.
//
// Config selects already-provisioned roots: it never creates buckets or
// databases and carries no credentials (those come from the environment).
//
// Example:
//
//	{
//	  "job":    "music_lake",
//	  "source": { "kind": "s3", "root": "s3://udacity-dend", "options": { "region": "us-east-1" } },
//	  "sink":   { "kind": "parquet", "root": "s3://spark-data-lake-etl" }
//	}
package config

// Pipeline describes one full batch run in JSON. It is the top-level object
// decoded from a run config file.
type Pipeline struct {
	// Job names the run; it appears in logs and identifies reruns.
	Job string `json:"job"`

	// Source describes where the raw record families are read from.
	Source Source `json:"source"`

	// Sink describes where the output tables are written.
	Sink Sink `json:"sink"`
}

// Source identifies the readable root holding both raw record families.
type Source struct {
	// Kind selects the source implementation: "file" or "s3".
	Kind string `json:"kind"`

	// Root is a directory path (file) or an s3://bucket/prefix URI (s3).
	Root string `json:"root"`

	// Options is a free-form map interpreted by the source implementation.
	// For s3, typical keys include: region (string).
	Options Options `json:"options,omitempty"`
}

// Sink identifies the writable destination for the output tables.
type Sink struct {
	// Kind selects the sink backend: "parquet" or "postgres".
	Kind string `json:"kind"`

	// Root is the output root for the parquet backend (directory or
	// s3://bucket/prefix URI).
	Root string `json:"root,omitempty"`

	// DSN is the connection string for the postgres backend.
	DSN string `json:"dsn,omitempty"`

	// Schema is the target schema for the postgres backend; default "public".
	Schema string `json:"schema,omitempty"`

	// Options is a free-form map interpreted by the sink implementation.
	Options Options `json:"options,omitempty"`
}

// Options is a free-form bag of implementation-specific settings with typed,
// default-aware getters.
type Options map[string]any

// String returns the string value under key, or def when the key is missing
// or holds a non-string.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the bool value under key, or def when the key is missing or
// holds a non-bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// Int returns the integer value under key, or def otherwise. JSON numbers
// decode as float64; only integral values are accepted.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return def
}
