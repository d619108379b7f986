// Package sqlbuild renders descriptors and records into parameterized SQL
// for the SQL drivers. Dialects differ in placeholders, identifier quoting
// and case-insensitive matching.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/leandroluk/querykit/core"
)

// Dialect captures what differs between SQL backends.
type Dialect struct {
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// Quote renders a safe identifier.
	Quote func(identifier string) string
	// Like renders a case-insensitive pattern match of column against the
	// given placeholder.
	Like func(column, placeholder string) string
	// UnboundedLimit is emitted before OFFSET when no limit is set, for
	// backends that reject a bare OFFSET. Empty means none is needed.
	UnboundedLimit string
}

// Builder accumulates bind arguments while rendering a statement.
type Builder struct {
	dialect Dialect
	args    []any
}

// New returns a Builder for the dialect.
func New(dialect Dialect) *Builder {
	return &Builder{dialect: dialect}
}

// Args returns the bind arguments collected so far.
func (b *Builder) Args() []any {
	return b.args
}

func (b *Builder) bind(value any) string {
	b.args = append(b.args, value)
	return b.dialect.Placeholder(len(b.args))
}

// Table renders the qualified table name of a schema.
func (b *Builder) Table(schema *core.SchemaCore) string {
	if schema.Database != "" {
		return b.dialect.Quote(schema.Database) + "." + b.dialect.Quote(schema.Collection)
	}
	return b.dialect.Quote(schema.Collection)
}

// Condition renders a condition tree. A nil or empty tree renders as a
// tautology.
func (b *Builder) Condition(condition *core.Condition) string {
	if condition.IsEmpty() {
		if condition != nil && condition.Operator == core.OpOr {
			return "1=0"
		}
		return "1=1"
	}
	if condition.Operator.IsLogical() {
		partList := make([]string, 0, len(condition.Children))
		for _, child := range condition.Children {
			partList = append(partList, b.Condition(child))
		}
		switch condition.Operator {
		case core.OpAnd:
			return "(" + strings.Join(partList, " AND ") + ")"
		case core.OpOr:
			return "(" + strings.Join(partList, " OR ") + ")"
		default:
			return "NOT (" + strings.Join(partList, " AND ") + ")"
		}
	}

	column := b.dialect.Quote(condition.FieldName)
	switch condition.Operator {
	case core.OpNil:
		return column + " IS NULL"
	case core.OpEq:
		return fmt.Sprintf("%s = %s", column, b.bind(condition.Value))
	case core.OpGt:
		return fmt.Sprintf("%s > %s", column, b.bind(condition.Value))
	case core.OpGte:
		return fmt.Sprintf("%s >= %s", column, b.bind(condition.Value))
	case core.OpLt:
		return fmt.Sprintf("%s < %s", column, b.bind(condition.Value))
	case core.OpLte:
		return fmt.Sprintf("%s <= %s", column, b.bind(condition.Value))
	case core.OpLike:
		return b.dialect.Like(column, b.bind(fmt.Sprint(condition.Value)))
	case core.OpIn:
		valueList := inValues(condition.Value)
		if len(valueList) == 0 {
			return "1=0"
		}
		placeholderList := make([]string, 0, len(valueList))
		for _, v := range valueList {
			placeholderList = append(placeholderList, b.bind(v))
		}
		return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholderList, ", "))
	}
	return "1=1"
}

// Select renders the SELECT statement for a descriptor.
func (b *Builder) Select(schema *core.SchemaCore, query *core.Descriptor) string {
	columnNameList := []string{}
	for _, column := range core.ProjectionColumns(schema, query) {
		columnNameList = append(columnNameList, b.dialect.Quote(column))
	}

	var where *core.Condition
	if query != nil {
		where = query.Where
	}
	sqlQuery := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(columnNameList, ", "), b.Table(schema), b.Condition(where))
	if query == nil {
		return sqlQuery
	}

	if len(query.Order) > 0 {
		orderPartList := make([]string, 0, len(query.Order))
		for _, sortItem := range query.Order {
			direction := "DESC"
			if sortItem.IsAscending() {
				direction = "ASC"
			}
			orderPartList = append(orderPartList, fmt.Sprintf("%s %s", b.dialect.Quote(sortItem.FieldName), direction))
		}
		sqlQuery += " ORDER BY " + strings.Join(orderPartList, ", ")
	}
	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	}
	if query.Offset > 0 {
		if query.Limit <= 0 && b.dialect.UnboundedLimit != "" {
			sqlQuery += " LIMIT " + b.dialect.UnboundedLimit
		}
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}
	return sqlQuery
}

// Insert renders an INSERT of the record's schema columns. Columns absent
// from the record are left to the database defaults.
func (b *Builder) Insert(schema *core.SchemaCore, record core.Record) string {
	columnNameList := []string{}
	placeholderList := []string{}
	for _, column := range schema.Columns() {
		value, ok := record[column]
		if !ok {
			continue
		}
		columnNameList = append(columnNameList, b.dialect.Quote(column))
		placeholderList = append(placeholderList, b.bind(value))
	}
	if len(columnNameList) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", b.Table(schema))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.Table(schema), strings.Join(columnNameList, ", "), strings.Join(placeholderList, ", "))
}

// QuoteDouble quotes an identifier with double quotes, doubling embedded
// ones (ANSI SQL).
func QuoteDouble(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func inValues(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case nil:
		return nil
	default:
		return []any{v}
	}
}
