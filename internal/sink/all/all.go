// Package all registers every sink backend with the factory. Importing it
// for side effects keeps the CLI free of backend-specific imports.
package all

import (
	_ "lakeetl/internal/sink/parquet"
	_ "lakeetl/internal/sink/postgres"
)
