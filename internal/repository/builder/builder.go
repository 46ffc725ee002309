package builder

import (
	"fmt"
	"strings"
)

type statement int

const (
	stmtSelect statement = iota + 1
	stmtInsert
)

// SQLBuilder helps construct PostgreSQL queries dynamically. Conditions use
// "?" placeholders which Build rewrites to $1, $2, ...
type SQLBuilder struct {
	stmt    statement
	table   string
	columns []string
	rows    [][]interface{}
	where   []condition
	orderBy []string
	limit   int
	offset  int

	conflict   []string
	updateCols []string
	doNothing  bool
}

type condition struct {
	sql  string
	args []interface{}
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.stmt = stmtSelect
	b.columns = cols
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Where adds a condition; conditions are combined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition{sql: cond, args: args})
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

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.stmt = stmtInsert
	b.table = table
	b.columns = cols
	return b
}

// Values appends one row of values. Call it once per row for a multi-row insert.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.rows = append(b.rows, vals)
	return b
}

// OnConflict names the conflict target of an insert.
func (b *SQLBuilder) OnConflict(cols ...string) *SQLBuilder {
	b.conflict = cols
	return b
}

// DoUpdate overwrites cols with the proposed row when the insert conflicts.
func (b *SQLBuilder) DoUpdate(cols ...string) *SQLBuilder {
	b.updateCols = cols
	b.doNothing = false
	return b
}

// DoNothing skips conflicting rows.
func (b *SQLBuilder) DoNothing() *SQLBuilder {
	b.doNothing = true
	b.updateCols = nil
	return b
}

// BuildSafe constructs the final SQL string and arguments with safety validation.
// Returns an error if a row does not match the column list or the number of
// placeholders doesn't match the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	if b.stmt == 0 {
		return "", nil, fmt.Errorf("no statement: call Select or Insert first")
	}
	if b.table == "" {
		return "", nil, fmt.Errorf("no table given")
	}
	if b.stmt == stmtInsert {
		if len(b.rows) == 0 {
			return "", nil, fmt.Errorf("insert into %s has no rows", b.table)
		}
		for i, row := range b.rows {
			if len(row) != len(b.columns) {
				return "", nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(b.columns))
			}
		}
	}
	for _, c := range b.where {
		if n := strings.Count(c.sql, "?"); n != len(c.args) {
			return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d) in %q", n, len(c.args), c.sql)
		}
	}
	sql, args := b.Build()
	return sql, args, nil
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	next := 1
	placeholder := func() string {
		p := fmt.Sprintf("$%d", next)
		next++
		return p
	}

	switch b.stmt {
	case stmtSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
	case stmtInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES ")
		for i, row := range b.rows {
			if i > 0 {
				sb.WriteString(", ")
			}
			placeholders := make([]string, len(row))
			for j := range row {
				placeholders[j] = placeholder()
			}
			sb.WriteString("(" + strings.Join(placeholders, ", ") + ")")
			args = append(args, row...)
		}
		b.writeConflict(&sb)
		return sb.String(), args
	}

	if len(b.where) > 0 {
		conditions := make([]string, len(b.where))
		for i, c := range b.where {
			parts := strings.Split(c.sql, "?")
			var cond strings.Builder
			for j, part := range parts {
				cond.WriteString(part)
				if j < len(parts)-1 {
					cond.WriteString(placeholder())
				}
			}
			conditions[i] = cond.String()
			args = append(args, c.args...)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
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
	return sb.String(), args
}

func (b *SQLBuilder) writeConflict(sb *strings.Builder) {
	if len(b.conflict) == 0 || (!b.doNothing && len(b.updateCols) == 0) {
		return
	}
	sb.WriteString(" ON CONFLICT (")
	sb.WriteString(strings.Join(b.conflict, ", "))
	sb.WriteString(")")
	if b.doNothing {
		sb.WriteString(" DO NOTHING")
		return
	}
	sets := make([]string, len(b.updateCols))
	for i, col := range b.updateCols {
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}
	sb.WriteString(" DO UPDATE SET ")
	sb.WriteString(strings.Join(sets, ", "))
}
