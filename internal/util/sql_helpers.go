package util

import (
	"database/sql"
)

// NullStringValue returns the string held by ns, or "" when it is NULL.
func NullStringValue(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

// NullFloat64Value returns the float held by nf, or 0 when it is NULL.
func NullFloat64Value(nf sql.NullFloat64) float64 {
	if !nf.Valid {
		return 0
	}
	return nf.Float64
}

// EscapeLike escapes the LIKE wildcards in s for use with ESCAPE '\'.
func EscapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\\' || r == '%' || r == '_' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
