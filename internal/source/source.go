// Package source abstracts the readable root the pipeline ingests raw files
// from. Implementations exist for a local directory tree and for an S3
// prefix; both resolve the fixed per-contract glob patterns and hand back
// plain byte streams, so the reader never knows which storage it is on.
package source

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable marks a source root that is unreachable or a glob that
// matches zero files. Callers detect it with errors.Is.
var ErrUnavailable = errors.New("source unavailable")

// Source is a readable root of raw JSON Lines files.
type Source interface {
	// Glob returns the names (relative to the root) of all files matching
	// pattern. It fails with an error wrapping ErrUnavailable when the root
	// cannot be reached or when nothing matches.
	Glob(ctx context.Context, pattern string) ([]string, error)

	// Open returns a reader for one file previously returned by Glob.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
