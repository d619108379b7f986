package mongo

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/leandroluk/querykit/core"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matchNothing is a filter no document satisfies.
var matchNothing = bson.M{"$nor": []bson.M{{}}}

// buildFilter translates a condition tree into a MongoDB filter document.
// A nil or empty AND matches everything; an empty OR matches nothing.
func buildFilter(condition *core.Condition) bson.M {
	if condition.IsEmpty() {
		if condition != nil && condition.Operator == core.OpOr {
			return matchNothing
		}
		return bson.M{}
	}
	if condition.Operator.IsLogical() {
		childFilterList := make([]bson.M, 0, len(condition.Children))
		for _, child := range condition.Children {
			childFilterList = append(childFilterList, buildFilter(child))
		}
		switch condition.Operator {
		case core.OpAnd:
			return bson.M{"$and": childFilterList}
		case core.OpOr:
			return bson.M{"$or": childFilterList}
		default:
			return bson.M{"$nor": []bson.M{{"$and": childFilterList}}}
		}
	}

	fieldName := condition.FieldName
	switch condition.Operator {
	case core.OpNil:
		return bson.M{fieldName: bson.M{"$eq": nil}}
	case core.OpEq:
		return bson.M{fieldName: condition.Value}
	case core.OpGt:
		return bson.M{fieldName: bson.M{"$gt": condition.Value}}
	case core.OpGte:
		return bson.M{fieldName: bson.M{"$gte": condition.Value}}
	case core.OpLt:
		return bson.M{fieldName: bson.M{"$lt": condition.Value}}
	case core.OpLte:
		return bson.M{fieldName: bson.M{"$lte": condition.Value}}
	case core.OpLike:
		pattern := toMongoLikePattern(fmt.Sprint(condition.Value))
		return bson.M{fieldName: primitive.Regex{Pattern: pattern, Options: "is"}}
	case core.OpIn:
		var array []any
		switch v := condition.Value.(type) {
		case []any:
			array = v
		default:
			array = []any{condition.Value}
		}
		return bson.M{fieldName: bson.M{"$in": array}}
	default:
		return bson.M{}
	}
}

// coerceCondition returns a copy of condition whose comparison values are
// converted to the Go type of the schema field they target. MongoDB compares
// BSON types strictly, so the text "3" never equals the number 3. Values that
// do not convert, and fields without a known type, are left as they are.
func coerceCondition(schema *core.SchemaCore, condition *core.Condition) *core.Condition {
	if condition == nil {
		return nil
	}
	coerced := condition.Clone()
	coerceInPlace(schema, coerced)
	return coerced
}

func coerceInPlace(schema *core.SchemaCore, condition *core.Condition) {
	if condition.Operator.IsLogical() {
		for _, child := range condition.Children {
			coerceInPlace(schema, child)
		}
		return
	}
	field := schema.Column(condition.FieldName)
	if field == nil || field.Type == nil {
		return
	}
	switch condition.Operator {
	case core.OpEq, core.OpGt, core.OpGte, core.OpLt, core.OpLte:
		condition.Value = coerceValue(condition.Value, field.Type)
	case core.OpIn:
		if values, ok := condition.Value.([]any); ok {
			converted := make([]any, len(values))
			for i, value := range values {
				converted[i] = coerceValue(value, field.Type)
			}
			condition.Value = converted
		}
	}
}

// coerceValue converts textual values to numeric or boolean field types.
// Integers are read in base 10, so "010" is ten.
func coerceValue(value any, target reflect.Type) any {
	text, ok := value.(string)
	if !ok {
		return value
	}
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	var (
		converted any
		err       error
	)
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		n, err = strconv.ParseInt(strings.TrimSpace(text), 10, target.Bits())
		converted = reflect.ValueOf(n).Convert(target).Interface()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		n, err = strconv.ParseUint(strings.TrimSpace(text), 10, target.Bits())
		converted = reflect.ValueOf(n).Convert(target).Interface()
	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = cast.ToFloat64E(strings.TrimSpace(text))
		converted = reflect.ValueOf(f).Convert(target).Interface()
	case reflect.Bool:
		converted, err = cast.ToBoolE(strings.TrimSpace(text))
	default:
		return value
	}
	if err != nil {
		return value
	}
	return converted
}

// toMongoLikePattern converts a SQL LIKE pattern into an anchored regular
// expression: % matches any run of characters and _ matches one.
//
//	toMongoLikePattern("%admin_") // "^.*admin.$"
func toMongoLikePattern(input string) string {
	var pattern strings.Builder
	pattern.WriteString("^")
	for _, r := range input {
		switch r {
		case '%':
			pattern.WriteString(".*")
		case '_':
			pattern.WriteString(".")
		default:
			pattern.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	pattern.WriteString("$")
	return pattern.String()
}

// buildSort maps sort rules to a sort document; ascending is 1, anything
// else -1.
func buildSort(order []core.Sort) bson.D {
	sortDoc := bson.D{}
	for _, sortItem := range order {
		direction := -1
		if sortItem.IsAscending() {
			direction = 1
		}
		sortDoc = append(sortDoc, bson.E{Key: sortItem.FieldName, Value: direction})
	}
	return sortDoc
}

// buildProjection returns nil when every field is wanted. _id is excluded
// unless listed.
func buildProjection(schema *core.SchemaCore, query *core.Descriptor) bson.D {
	if query == nil || query.Attributes == nil {
		return nil
	}
	projection := bson.D{}
	hasID := false
	for _, column := range core.ProjectionColumns(schema, query) {
		if column == "_id" {
			hasID = true
		}
		projection = append(projection, bson.E{Key: column, Value: 1})
	}
	if !hasID {
		projection = append(projection, bson.E{Key: "_id", Value: 0})
	}
	return projection
}
