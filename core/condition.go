// Package core provides the fundamental building blocks of querykit.
// It defines the condition tree, query descriptors, model metadata and the
// persistence contracts that drivers implement.
package core

// Operator represents a comparison or logical operator used in a condition.
//
// Operators can be logical (AND, OR, NOT) or value-based (EQ, LIKE, IN, etc.).
type Operator string

const (
	// Logical operators
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
	OpNot Operator = "NOT"

	// Value-based operators
	OpNil  Operator = "NIL"  // field IS NULL
	OpEq   Operator = "EQ"   // field = value
	OpGt   Operator = "GT"   // field > value
	OpGte  Operator = "GTE"  // field >= value
	OpLt   Operator = "LT"   // field < value
	OpLte  Operator = "LTE"  // field <= value
	OpLike Operator = "LIKE" // field LIKE pattern (SQL) or regex (NoSQL)
	OpIn   Operator = "IN"   // field IN (value list)
)

// IsLogical reports whether the operator combines child conditions.
func (o Operator) IsLogical() bool {
	return o == OpAnd || o == OpOr || o == OpNot
}

// Condition represents a node of a filter tree.
//
// A leaf targets a field (FieldName) with an operator and a value. A logical
// node (AND, OR, NOT) combines its Children. Two shapes matter to the query
// compiler:
//
//   - a flat map: an AND node whose children are per-field conditions
//     (a leaf, or an OR node carrying the same FieldName as its leaves);
//   - a disjunction: an OR node without a FieldName, whose children are
//     flat maps, leaves or further disjunctions.
//
// Example:
//
//	cond := core.Col("age").Gt(18).And(core.Col("status").Eq("active"))
//
// The above creates a condition equivalent to:
//
//	(age > 18) AND (status = "active")
type Condition struct {
	FieldName string       // The field/column name this condition applies to
	Operator  Operator     // The comparison or logical operator
	Value     any          // The comparison value
	Children  []*Condition // Nested conditions (for AND, OR, NOT expressions)
}

// Col starts a leaf condition on the given column.
func Col(name string) *Condition {
	return &Condition{FieldName: name}
}

// And combines this condition with additional conditions using the logical AND operator.
func (c *Condition) And(conditions ...*Condition) *Condition {
	return &Condition{
		Operator: OpAnd,
		Children: append([]*Condition{c}, conditions...),
	}
}

// Or combines this condition with additional conditions using the logical OR operator.
func (c *Condition) Or(conditions ...*Condition) *Condition {
	return &Condition{
		Operator: OpOr,
		Children: append([]*Condition{c}, conditions...),
	}
}

// Not negates this condition using the logical NOT operator.
func (c *Condition) Not() *Condition {
	return &Condition{
		Operator: OpNot,
		Children: []*Condition{c},
	}
}

// Nil sets this condition to check for NULL values (IS NULL).
func (c *Condition) Nil() *Condition {
	c.Operator = OpNil
	c.Value = nil
	return c
}

// Eq sets this condition to check for equality (=).
func (c *Condition) Eq(v any) *Condition {
	c.Operator = OpEq
	c.Value = v
	return c
}

// Gt sets this condition to check for "greater than" (>).
func (c *Condition) Gt(v any) *Condition {
	c.Operator = OpGt
	c.Value = v
	return c
}

// Gte sets this condition to check for "greater than or equal" (>=).
func (c *Condition) Gte(v any) *Condition {
	c.Operator = OpGte
	c.Value = v
	return c
}

// Lt sets this condition to check for "less than" (<).
func (c *Condition) Lt(v any) *Condition {
	c.Operator = OpLt
	c.Value = v
	return c
}

// Lte sets this condition to check for "less than or equal" (<=).
func (c *Condition) Lte(v any) *Condition {
	c.Operator = OpLte
	c.Value = v
	return c
}

// Like sets this condition to perform a case-insensitive pattern match.
// The pattern uses SQL wildcards: % for any run of characters, _ for one.
func (c *Condition) Like(pattern string) *Condition {
	c.Operator = OpLike
	c.Value = pattern
	return c
}

// In sets this condition to check whether the field value is contained in the provided list.
func (c *Condition) In(values ...any) *Condition {
	c.Operator = OpIn
	c.Value = values
	return c
}

// AllOf returns an AND node holding the non-nil conditions, or nil when
// there are none.
func AllOf(conditions ...*Condition) *Condition {
	children := compactConditions(conditions)
	if len(children) == 0 {
		return nil
	}
	return &Condition{Operator: OpAnd, Children: children}
}

// AnyOf returns an OR node holding the non-nil conditions, or nil when there
// are none.
func AnyOf(conditions ...*Condition) *Condition {
	children := compactConditions(conditions)
	if len(children) == 0 {
		return nil
	}
	return &Condition{Operator: OpOr, Children: children}
}

// IsEmpty reports whether the condition matches everything: nil, or a
// logical node without children.
func (c *Condition) IsEmpty() bool {
	return c == nil || (c.Operator.IsLogical() && len(c.Children) == 0)
}

// IsDisjunction reports whether the condition is a top-level OR node.
func (c *Condition) IsDisjunction() bool {
	return c != nil && c.Operator == OpOr && c.FieldName == ""
}

// Leaves returns the per-field conditions of a flat map keyed by field name.
// A single leaf is treated as a one-entry map. Disjunctions yield nil.
func (c *Condition) Leaves() []*Condition {
	switch {
	case c.IsEmpty(), c.IsDisjunction():
		return nil
	case c.Operator == OpAnd:
		leaves := make([]*Condition, 0, len(c.Children))
		for _, child := range c.Children {
			if child.FieldName != "" {
				leaves = append(leaves, child)
			}
		}
		return leaves
	case c.FieldName != "":
		return []*Condition{c}
	}
	return nil
}

// Clone returns a deep copy of the condition tree. Values are shared.
func (c *Condition) Clone() *Condition {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Children != nil {
		clone.Children = make([]*Condition, len(c.Children))
		for i, child := range c.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return &clone
}

func compactConditions(conditions []*Condition) []*Condition {
	out := make([]*Condition, 0, len(conditions))
	for _, condition := range conditions {
		if condition != nil {
			out = append(out, condition)
		}
	}
	return out
}
