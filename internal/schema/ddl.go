package schema

import (
	"fmt"
	"strings"
)

// ColumnDef is a minimal description of a warehouse column.
type ColumnDef struct {
	Name     string // e.g., "song_id"
	SQLType  string // e.g., "TEXT", "BIGINT", "DOUBLE PRECISION", "TIMESTAMP"
	Nullable bool
}

// TableDef describes a warehouse table to (optionally) create.
type TableDef struct {
	FQN     string // e.g., "public.songs"
	Columns []ColumnDef
}

// BuildCreateTableSQL emits a CREATE TABLE IF NOT EXISTS for Postgres.
func BuildCreateTableSQL(t TableDef) (string, error) {
	if t.FQN == "" {
		return "", fmt.Errorf("table name required")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("at least one column required")
	}
	var cols []string
	for _, c := range t.Columns {
		if c.Name == "" || c.SQLType == "" {
			return "", fmt.Errorf("column name and type required")
		}
		def := fmt.Sprintf(`"%s" %s`, c.Name, c.SQLType)
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(t.FQN), strings.Join(cols, ",\n  ")), nil
}

func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	for i := range parts {
		parts[i] = `"` + strings.ReplaceAll(parts[i], `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
