// Package records defines the row container shared by readers and transforms.
//
// A Record is a loosely typed row keyed by column name. Values are either nil
// (the field was absent or null in the raw input) or one of the coerced Go
// types the schema contracts produce: string, int64, float64. The typed
// getters below return a zero value for missing/null/mistyped entries so that
// transform code can stay branch-light; callers that need to distinguish null
// from zero use IsNull.
package records

// Record is one raw row keyed by declared column name.
type Record map[string]any

// IsNull reports whether the column is absent or explicitly null.
func (r Record) IsNull(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

// String returns the string value of key, or "" when missing, null, or not a
// string.
func (r Record) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Int64 returns the integer value of key, or 0 when missing, null, or not an
// int64.
func (r Record) Int64(key string) int64 {
	if n, ok := r[key].(int64); ok {
		return n
	}
	return 0
}

// Float64 returns the double value of key, or 0 when missing, null, or not a
// float64.
func (r Record) Float64(key string) float64 {
	if f, ok := r[key].(float64); ok {
		return f
	}
	return 0
}

// StringPtr returns a pointer to the string value of key, or nil when the
// column is null. Used for nullable columns carried through to output rows.
func (r Record) StringPtr(key string) *string {
	if s, ok := r[key].(string); ok {
		return &s
	}
	return nil
}

// Float64Ptr returns a pointer to the double value of key, or nil when the
// column is null.
func (r Record) Float64Ptr(key string) *float64 {
	if f, ok := r[key].(float64); ok {
		return &f
	}
	return nil
}
