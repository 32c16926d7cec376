package database

import "strings"

// QueryBuilder rewrites queries written with ? markers for a dialect
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a builder for dialect
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build numbers the ? markers for dialects that need it:
//
//	"UPDATE saves SET data = ? WHERE slot = ?"
//	postgres: "UPDATE saves SET data = $1 WHERE slot = $2"
//
// Markers inside single-quoted literals are left alone.
func (qb *QueryBuilder) Build(query string) string {
	if _, ok := qb.dialect.(*SQLiteDialect); ok {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	position := 1
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			b.WriteString(qb.dialect.Placeholder(position))
			position++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// BuildWithReturning also appends RETURNING column when the dialect cannot
// report the last insert id.
func (qb *QueryBuilder) BuildWithReturning(query string, column string) string {
	converted := qb.Build(query)
	if !qb.dialect.SupportsLastInsertID() {
		converted += qb.dialect.ReturningClause(column)
	}
	return converted
}
