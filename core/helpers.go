// Package core provides the fundamental building blocks of querykit.
// This file contains helper functions for reflection, field mapping and
// common value transformations.
package core

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unsafe"
)

// offsetOf returns the memory offset of a struct field selected by the given selector function.
//
// Example:
//
//	type User struct {
//	    ID   int
//	    Name string
//	}
//
//	offset := offsetOf(func(u *User) *string { return &u.Name })
func offsetOf[T any, F any](selector func(*T) *F) uintptr {
	var zero T
	base := uintptr(unsafe.Pointer(&zero))
	ptr := selector(&zero)
	return uintptr(unsafe.Pointer(ptr)) - base
}

// fieldOffset resolves the offset of a (possibly promoted) field from the
// start of structType. Fields promoted through embedded pointers have no
// fixed offset and report false.
func fieldOffset(structType reflect.Type, index []int) (uintptr, bool) {
	var offset uintptr
	current := structType
	for i, position := range index {
		sf := current.Field(position)
		offset += sf.Offset
		if i == len(index)-1 {
			break
		}
		if sf.Type.Kind() != reflect.Struct {
			return 0, false
		}
		current = sf.Type
	}
	return offset, true
}

// fieldNameFromSelectorFor resolves the Go struct field name from a selector function.
//
// It takes a function of the form func(*T) *F and uses reflection to map it
// back to the struct field name.
//
// Panics if the argument is not a function, or if the function does not return a field pointer.
func fieldNameFromSelectorFor[T any](selector any) string {
	if selector == nil {
		return ""
	}
	selectorValue := reflect.ValueOf(selector)
	if selectorValue.Kind() != reflect.Func {
		panic("selector must be a function")
	}

	var zero T
	typ := reflect.TypeOf(zero)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	arg := reflect.New(typ) // *T

	out := selectorValue.Call([]reflect.Value{arg})
	if len(out) == 0 {
		panic("selector must return a pointer to a field")
	}
	ret := out[0]
	if ret.Kind() == reflect.Interface {
		ret = ret.Elem()
	}
	if ret.Kind() != reflect.Pointer {
		panic("selector must return a pointer to a field")
	}

	offset := ret.Pointer() - arg.Pointer()
	for _, sf := range reflect.VisibleFields(typ) {
		if fo, ok := fieldOffset(typ, sf.Index); ok && fo == offset && sf.Type == ret.Type().Elem() {
			return sf.Name
		}
	}
	return ""
}

// mapToStruct maps a record into a struct instance of type T.
//
// Columns are matched against the schema first and then case-insensitively
// against the Go field names, with support for:
//  1. Exact type matching
//  2. Value → pointer conversions (e.g. time.Time → *time.Time)
//  3. Pointer → value conversions (e.g. *time.Time → time.Time)
//  4. Convertible types (e.g. int64 → int)
//
// Values that fit none of these are skipped.
func mapToStruct[T any](schema *SchemaCore, row Record, out *T) {
	value := reflect.ValueOf(out).Elem()
	for rowKey, rowValue := range row {
		var field reflect.Value
		if f := schema.Column(rowKey); f != nil {
			field = value.FieldByName(f.StructFieldName)
		} else {
			field = value.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, rowKey) })
		}
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		assignValue(field, rowValue)
	}
}

func assignValue(field reflect.Value, rowValue any) {
	if rowValue == nil {
		if field.Kind() == reflect.Pointer {
			field.Set(reflect.Zero(field.Type()))
		}
		return
	}

	rv := reflect.ValueOf(rowValue)

	switch {
	case rv.Type().AssignableTo(field.Type()):
		field.Set(rv)
	case field.Kind() == reflect.Pointer && rv.Type().AssignableTo(field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(rv)
		field.Set(ptr)
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Type().Elem().AssignableTo(field.Type()):
		field.Set(rv.Elem())
	case convertible(rv, field.Type()):
		field.Set(rv.Convert(field.Type()))
	case field.Kind() == reflect.Pointer && convertible(rv, field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(rv.Convert(field.Type().Elem()))
		field.Set(ptr)
	}
}

// convertible rejects number → string conversions, which reflect allows but
// which produce a rune instead of the decimal text.
func convertible(rv reflect.Value, target reflect.Type) bool {
	if target.Kind() == reflect.String && rv.Kind() != reflect.String {
		if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
			return false
		}
	}
	return rv.Type().ConvertibleTo(target)
}

// structToRecord extracts column values from a struct according to its
// schema. Nil pointers become nil values.
func structToRecord(schema *SchemaCore, doc any) (Record, error) {
	value := reflect.ValueOf(doc)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("core: expected a struct, got %s", value.Kind())
	}

	record := make(Record, len(schema.Fields))
	for _, field := range schema.Fields {
		fv := value.FieldByName(field.StructFieldName)
		if !fv.IsValid() {
			continue
		}
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				record[field.DatabaseColumnName] = nil
			} else {
				record[field.DatabaseColumnName] = fv.Elem().Interface()
			}
			continue
		}
		record[field.DatabaseColumnName] = fv.Interface()
	}
	return record, nil
}

// setTimeField sets a time.Time value into a struct field, supporting both
// value and pointer kinds.
func setTimeField(field reflect.Value, t time.Time) {
	if !field.IsValid() || !field.CanSet() {
		return
	}
	timeType := reflect.TypeOf(time.Time{})

	switch field.Kind() {
	case reflect.Struct:
		if field.Type() == timeType {
			field.Set(reflect.ValueOf(t))
		}
	case reflect.Pointer:
		if field.Type().Elem() == timeType {
			if field.IsNil() {
				ptr := reflect.New(timeType)
				ptr.Elem().Set(reflect.ValueOf(t))
				field.Set(ptr)
			} else {
				field.Elem().Set(reflect.ValueOf(t))
			}
		}
	}
}
