package composer

import "github.com/leandroluk/querykit/core"

// Merge combines the equality conditions a with the free-text conditions b.
//
//   - If either side is empty the other is returned unchanged.
//   - If b is a disjunction, every field condition of a becomes one more
//     branch of it: a record matches the free-text filter OR any explicit
//     equality.
//   - If both are flat maps, only fields present in both survive, each as
//     a per-field OR of the two values. Fields present on one side only are
//     dropped.
//
// When a is the disjunction and b the flat map, the operands are swapped so
// no branch of the disjunction is lost.
func Merge(a, b *core.Condition) *core.Condition {
	switch {
	case a.IsEmpty():
		return b
	case b.IsEmpty():
		return a
	case b.IsDisjunction():
		return foldIntoDisjunction(a, b)
	case a.IsDisjunction():
		return foldIntoDisjunction(b, a)
	default:
		return intersectFields(a, b)
	}
}

// foldIntoDisjunction appends one branch per field condition of flat to a
// copy of disjunction.
func foldIntoDisjunction(flat, disjunction *core.Condition) *core.Condition {
	merged := disjunction.Clone()
	for _, leaf := range flat.Leaves() {
		merged.Children = append(merged.Children, core.AllOf(leaf.Clone()))
	}
	return merged
}

// intersectFields keeps the fields both flat maps constrain, OR-ing their
// conditions per field, in the order of a.
func intersectFields(a, b *core.Condition) *core.Condition {
	byField := map[string]*core.Condition{}
	for _, leaf := range b.Leaves() {
		if _, ok := byField[leaf.FieldName]; !ok {
			byField[leaf.FieldName] = leaf
		}
	}

	var fields []*core.Condition
	for _, leaf := range a.Leaves() {
		other, ok := byField[leaf.FieldName]
		if !ok {
			continue
		}
		fields = append(fields, &core.Condition{
			FieldName: leaf.FieldName,
			Operator:  core.OpOr,
			Children:  []*core.Condition{leaf.Clone(), other.Clone()},
		})
	}
	if len(fields) == 0 {
		return &core.Condition{Operator: core.OpAnd, Children: []*core.Condition{}}
	}
	return core.AllOf(fields...)
}
