// Package composer turns flat query-string parameters into core.Descriptor
// values and shapes driver results into paginated responses.
//
// A Compiler strips the reserved parameters, keeps the ones naming model
// fields as equality filters, expands the free-text filter into a
// disjunction of substring matches, and parses projection, relations, sort
// order and the page window. A Searcher runs the compiled descriptor
// against a core.Finder, fetching one extra row to learn whether a next page
// exists without counting.
package composer

import (
	"fmt"

	"github.com/leandroluk/querykit/core"
)

// Metadata describes the model a query is compiled against.
// core.SchemaCore implements it.
type Metadata interface {
	// Columns lists the valid field names.
	Columns() []string
	// PrimaryKey names the default sort field.
	PrimaryKey() string
	// SearchableColumns restricts free-text expansion; nil means every column.
	SearchableColumns() []string
	// Relations maps the names accepted by the details parameter.
	Relations() map[string]*core.Relation
}

// Compiler compiles raw queries. It holds only immutable configuration and
// is safe for concurrent use.
type Compiler struct {
	names FieldNames
}

// NewCompiler returns a compiler for the given parameter names.
func NewCompiler(names FieldNames) *Compiler {
	return &Compiler{names: names}
}

// FieldNames returns the compiler's configuration.
func (c *Compiler) FieldNames() FieldNames {
	return c.names
}

// Compile builds the descriptor and the page window for raw. It never
// fails: malformed parameters fall back to defaults and unknown fields or
// relations are dropped.
func (c *Compiler) Compile(raw RawQuery, meta Metadata) (*core.Descriptor, Pagination) {
	if descriptor := c.bypass(raw); descriptor != nil {
		return descriptor, c.paginationOf(descriptor)
	}

	where := Merge(c.whereConditions(raw, meta), c.filterConditions(raw, meta))
	pagination := c.extractPagination(raw)

	return &core.Descriptor{
		Where:      where,
		Order:      c.sortConditions(raw, meta),
		Attributes: c.attributes(raw, meta),
		Include:    c.associations(raw, meta),
		Offset:     pagination.Offset,
		Limit:      pagination.Limit,
	}, pagination
}

// bypass returns the prebuilt descriptor carried under the bypass key.
func (c *Compiler) bypass(raw RawQuery) *core.Descriptor {
	switch descriptor := raw[c.names.Bypass].(type) {
	case *core.Descriptor:
		return descriptor
	case core.Descriptor:
		return &descriptor
	}
	return nil
}

// whereConditions turns the parameters naming model fields into equality
// conditions, in column order. Reserved parameters are rejected first, then
// the rest is projected onto the model's columns.
func (c *Compiler) whereConditions(raw RawQuery, meta Metadata) *core.Condition {
	candidates := make(map[string]any, len(raw))
	for key, value := range raw {
		candidates[key] = value
	}
	for _, reserved := range c.names.Reserved() {
		delete(candidates, reserved)
	}

	var leaves []*core.Condition
	for _, column := range meta.Columns() {
		if value, ok := candidates[column]; ok {
			leaves = append(leaves, core.Col(column).Eq(value))
		}
	}
	return core.AllOf(leaves...)
}

// filterConditions expands the free-text parameter into one substring match
// per searchable column, OR-ed together. Without the parameter it returns
// nil.
func (c *Compiler) filterConditions(raw RawQuery, meta Metadata) *core.Condition {
	text, ok := raw.String(c.names.Filter)
	if !ok {
		return nil
	}

	columns := meta.SearchableColumns()
	if len(columns) == 0 {
		columns = meta.Columns()
	}
	excludeID := raw.Bool(c.names.FilterExcludeID)
	primaryKey := meta.PrimaryKey()

	pattern := fmt.Sprintf("%%%s%%", text)
	var branches []*core.Condition
	for _, column := range columns {
		if excludeID && column == primaryKey {
			continue
		}
		branches = append(branches, core.Col(column).Like(pattern))
	}
	return core.AnyOf(branches...)
}

// associations resolves the details parameter against the model's
// relations. It returns nil without the parameter and an empty slice when
// none of the names resolved.
func (c *Compiler) associations(raw RawQuery, meta Metadata) []*core.Relation {
	text, ok := raw.String(c.names.Details)
	if !ok {
		return nil
	}
	relations := meta.Relations()
	include := []*core.Relation{}
	for _, name := range splitAndFilter(text, c.names.AssociationDelimiter) {
		if relation, ok := relations[name]; ok {
			include = append(include, relation)
		}
	}
	return include
}

// attributes reads the projection in client order, filtered to model
// columns and without repeats. Without the parameter it returns nil, meaning
// every column.
func (c *Compiler) attributes(raw RawQuery, meta Metadata) []string {
	text, ok := raw.String(c.names.Props)
	if !ok {
		return nil
	}
	known := make(map[string]bool)
	for _, column := range meta.Columns() {
		known[column] = true
	}
	attributes := []string{}
	for _, field := range splitAndFilter(text, c.names.AttributesDelimiter) {
		if known[field] {
			attributes = append(attributes, field)
			known[field] = false
		}
	}
	return attributes
}

// sortConditions pairs sort fields with directions by position. Fields
// beyond the last direction reuse the whole direction parameter.
func (c *Compiler) sortConditions(raw RawQuery, meta Metadata) []core.Sort {
	sortBy, ok := raw.String(c.names.SortBy)
	if !ok {
		sortBy = meta.PrimaryKey()
	}
	directionText, ok := raw.String(c.names.SortDirection)
	if !ok {
		directionText = c.names.DefaultSortDirection
	}

	fields := splitAndFilter(sortBy, c.names.SortByDelimiter)
	directions := splitAndFilter(directionText, c.names.SortByDelimiter)

	order := make([]core.Sort, 0, len(fields))
	for i, field := range fields {
		direction := directionText
		if i < len(directions) {
			direction = directions[i]
		}
		order = append(order, core.Sort{FieldName: field, Direction: core.Direction(direction)})
	}
	return order
}
