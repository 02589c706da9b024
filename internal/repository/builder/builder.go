package builder

import (
	"fmt"
	"strings"
)

// SQLBuilder constructs read-only SQL queries dynamically. The inventory
// pipeline never writes, so only SELECT statements are supported.
type SQLBuilder struct {
	table   string
	columns []string
	where   []string
	args    []interface{}
	joins   []string
	orderBy []string
	limit   int
	offset  int
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.columns = cols
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Where adds a condition to the query. Conditions are combined with AND and
// use "?" placeholders, rewritten to "$n" at build time.
func (b *SQLBuilder) Where(condition string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition)
	b.args = append(b.args, args...)
	return b
}

// Join adds a JOIN clause.
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	for _, join := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(join)
	}

	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		whereClause := strings.Join(b.where, " AND ")

		// Rewrite "?" placeholders to PostgreSQL's positional "$n" form.
		argIndex := 1
		parts := strings.Split(whereClause, "?")
		for i, part := range parts {
			sb.WriteString(part)
			if i < len(parts)-1 {
				sb.WriteString(fmt.Sprintf("$%d", argIndex))
				argIndex++
			}
		}
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	return sb.String(), b.args
}

// BuildSafe constructs the final SQL string and arguments, validating that
// the number of placeholders matches the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	placeholders := 0
	for _, cond := range b.where {
		placeholders += strings.Count(cond, "?")
	}
	if placeholders != len(b.args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", placeholders, len(b.args))
	}

	sql, args := b.Build()
	return sql, args, nil
}
