// Package core provides the fundamental building blocks of querykit.
// This file resolves the relations requested by a descriptor and nests the
// related records into the parent records.
package core

import (
	"context"
	"fmt"
)

// ProjectionColumns returns the columns a driver must select for the
// descriptor: every schema column when Attributes is nil, otherwise the
// requested attributes followed by any relation local keys they lack. An
// empty, non-nil projection selects the primary key alone so that rows can
// still be counted and paged.
func ProjectionColumns(schema *SchemaCore, query *Descriptor) []string {
	if query == nil || query.Attributes == nil {
		return schema.Columns()
	}
	columns := append([]string(nil), query.Attributes...)
	if len(columns) == 0 {
		columns = append(columns, schema.PrimaryKey())
	}
	for _, relation := range query.Include {
		if !containsString(columns, relation.LocalKey) {
			columns = append(columns, relation.LocalKey)
		}
	}
	return columns
}

// ResolveIncludes loads every relation for the given records and stores the
// result under the relation name: a Record (or nil) for one-to-one, a
// []Record for one-to-many and many-to-many.
//
// Each relation costs one query (two for many-to-many) regardless of the
// number of parent records.
func ResolveIncludes(ctx context.Context, finder Finder, records []Record, relations []*Relation) error {
	if len(records) == 0 {
		return nil
	}
	for _, relation := range relations {
		var err error
		switch relation.Kind {
		case OneToOne, OneToMany:
			err = resolveDirect(ctx, finder, records, relation)
		case ManyToMany:
			err = resolveThrough(ctx, finder, records, relation)
		default:
			err = fmt.Errorf("core: relation %q has unknown kind %s", relation.Name, relation.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func resolveDirect(ctx context.Context, finder Finder, records []Record, relation *Relation) error {
	localValues := distinctValues(records, relation.LocalKey)
	related := map[string][]Record{}
	if len(localValues) > 0 {
		rows, err := finder.FindMany(ctx, relation.Target, &Descriptor{
			Where: Col(relation.ForeignKey).In(localValues...),
		})
		if err != nil {
			return err
		}
		for _, row := range rows {
			key := valueKey(row[relation.ForeignKey])
			related[key] = append(related[key], row)
		}
	}

	for _, record := range records {
		matches := related[valueKey(record[relation.LocalKey])]
		if relation.Kind == OneToOne {
			if len(matches) > 0 {
				record[relation.Name] = matches[0]
			} else {
				record[relation.Name] = nil
			}
			continue
		}
		if matches == nil {
			matches = []Record{}
		}
		record[relation.Name] = matches
	}
	return nil
}

func resolveThrough(ctx context.Context, finder Finder, records []Record, relation *Relation) error {
	localValues := distinctValues(records, relation.LocalKey)
	joinSchema := NewSchemaCore(relation.JoinTable, relation.JoinLocalKey, relation.JoinForeignKey)
	joinSchema.Database = relation.Target.Database

	// 1) fetch join rows for every parent
	foreignByLocal := map[string][]string{}
	var foreignValues []any
	seen := map[string]bool{}
	if len(localValues) > 0 {
		joinRows, err := finder.FindMany(ctx, joinSchema, &Descriptor{
			Where: Col(relation.JoinLocalKey).In(localValues...),
		})
		if err != nil {
			return err
		}
		for _, joinRow := range joinRows {
			localKey := valueKey(joinRow[relation.JoinLocalKey])
			foreignValue := joinRow[relation.JoinForeignKey]
			foreignKey := valueKey(foreignValue)
			foreignByLocal[localKey] = append(foreignByLocal[localKey], foreignKey)
			if !seen[foreignKey] {
				seen[foreignKey] = true
				foreignValues = append(foreignValues, foreignValue)
			}
		}
	}

	// 2) fetch the targets by IN condition
	targets := map[string]Record{}
	if len(foreignValues) > 0 {
		rows, err := finder.FindMany(ctx, relation.Target, &Descriptor{
			Where: Col(relation.ForeignKey).In(foreignValues...),
		})
		if err != nil {
			return err
		}
		for _, row := range rows {
			targets[valueKey(row[relation.ForeignKey])] = row
		}
	}

	for _, record := range records {
		matches := []Record{}
		for _, foreignKey := range foreignByLocal[valueKey(record[relation.LocalKey])] {
			if target, ok := targets[foreignKey]; ok {
				matches = append(matches, target)
			}
		}
		record[relation.Name] = matches
	}
	return nil
}

// distinctValues collects the non-nil values of column across records.
func distinctValues(records []Record, column string) []any {
	seen := map[string]bool{}
	values := make([]any, 0, len(records))
	for _, record := range records {
		value, ok := record[column]
		if !ok || value == nil {
			continue
		}
		key := valueKey(value)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, value)
	}
	return values
}

// valueKey normalizes key values so that, for instance, an int64 primary key
// matches the int32 foreign key a backend may return for the same number.
func valueKey(value any) string {
	return fmt.Sprint(value)
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
