package core_test

import (
	"testing"

	"github.com/leandroluk/querykit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionBuilders(t *testing.T) {
	tests := []struct {
		name     string
		cond     *core.Condition
		operator core.Operator
		value    any
	}{
		{"eq", core.Col("name").Eq("alice"), core.OpEq, "alice"},
		{"gt", core.Col("age").Gt(18), core.OpGt, 18},
		{"gte", core.Col("age").Gte(18), core.OpGte, 18},
		{"lt", core.Col("age").Lt(65), core.OpLt, 65},
		{"lte", core.Col("age").Lte(65), core.OpLte, 65},
		{"like", core.Col("email").Like("%@example.com"), core.OpLike, "%@example.com"},
		{"in", core.Col("id").In(1, 2), core.OpIn, []any{1, 2}},
		{"nil", core.Col("deleted_at").Nil(), core.OpNil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.operator, tt.cond.Operator)
			assert.Equal(t, tt.value, tt.cond.Value)
			assert.False(t, tt.cond.Operator.IsLogical())
		})
	}
}

func TestConditionLogical(t *testing.T) {
	a := core.Col("a").Eq(1)
	b := core.Col("b").Eq(2)

	and := a.And(b)
	assert.Equal(t, core.OpAnd, and.Operator)
	assert.Equal(t, []*core.Condition{a, b}, and.Children)

	or := a.Or(b)
	assert.Equal(t, core.OpOr, or.Operator)
	assert.True(t, or.IsDisjunction())

	not := a.Not()
	assert.Equal(t, core.OpNot, not.Operator)
	assert.Len(t, not.Children, 1)
}

func TestAllOfAnyOf(t *testing.T) {
	a := core.Col("a").Eq(1)

	assert.Nil(t, core.AllOf())
	assert.Nil(t, core.AllOf(nil, nil))
	assert.Nil(t, core.AnyOf(nil))

	all := core.AllOf(nil, a)
	require.NotNil(t, all)
	assert.Equal(t, core.OpAnd, all.Operator)
	assert.Equal(t, []*core.Condition{a}, all.Children)

	anyOf := core.AnyOf(a, nil)
	require.NotNil(t, anyOf)
	assert.Equal(t, core.OpOr, anyOf.Operator)
	assert.Len(t, anyOf.Children, 1)
}

func TestConditionIsEmpty(t *testing.T) {
	var nilCond *core.Condition
	assert.True(t, nilCond.IsEmpty())
	assert.True(t, (&core.Condition{Operator: core.OpAnd}).IsEmpty())
	assert.True(t, (&core.Condition{Operator: core.OpOr, Children: []*core.Condition{}}).IsEmpty())
	assert.False(t, core.Col("a").Eq(1).IsEmpty())
	assert.False(t, core.AllOf(core.Col("a").Eq(1)).IsEmpty())
}

func TestConditionIsDisjunction(t *testing.T) {
	perField := &core.Condition{
		FieldName: "name",
		Operator:  core.OpOr,
		Children:  []*core.Condition{core.Col("name").Eq("a"), core.Col("name").Eq("b")},
	}
	assert.False(t, perField.IsDisjunction(), "per-field OR is part of a flat map")
	assert.True(t, core.AnyOf(core.Col("a").Eq(1)).IsDisjunction())
	assert.False(t, core.AllOf(core.Col("a").Eq(1)).IsDisjunction())

	var nilCond *core.Condition
	assert.False(t, nilCond.IsDisjunction())
}

func TestConditionLeaves(t *testing.T) {
	a := core.Col("a").Eq(1)
	b := core.Col("b").Like("%x%")

	assert.Equal(t, []*core.Condition{a, b}, core.AllOf(a, b).Leaves())
	assert.Equal(t, []*core.Condition{a}, a.Leaves())
	assert.Nil(t, core.AnyOf(a, b).Leaves())

	var nilCond *core.Condition
	assert.Nil(t, nilCond.Leaves())

	nested := core.AllOf(a, core.AnyOf(b))
	assert.Equal(t, []*core.Condition{a}, nested.Leaves(), "unnamed children are not fields")
}

func TestConditionClone(t *testing.T) {
	original := core.AllOf(core.Col("a").Eq(1), core.AnyOf(core.Col("b").Eq(2)))
	clone := original.Clone()

	require.Equal(t, original, clone)
	clone.Children[0].Value = 99
	clone.Children[1].Children = append(clone.Children[1].Children, core.Col("c").Eq(3))

	assert.Equal(t, 1, original.Children[0].Value)
	assert.Len(t, original.Children[1].Children, 1)

	var nilCond *core.Condition
	assert.Nil(t, nilCond.Clone())
}
