// Package core provides the fundamental building blocks of querykit.
// This file defines the schema system, which maps Go structs to database
// collections/tables, describes fields and relations, and exposes the model
// metadata the query compiler works from.
package core

import (
	"fmt"
	"reflect"
)

// defaultPrimaryKey is used when no field is marked as primary key.
const defaultPrimaryKey = "id"

// Field represents a struct field mapped to a database column.
//
// It contains metadata such as the Go field name, database column name,
// type information, constraints, default value, and markers for timestamp
// fields (createdAt, updatedAt, deletedAt).
type Field struct {
	StructFieldName    string       // Name of the field in the Go struct
	DatabaseColumnName string       // Name of the column in the database
	Type               reflect.Type // Go type of the field
	IsPrimaryKey       bool         // Whether this field is a primary key
	IsUnique           bool         // Whether this field is unique
	IsRequired         bool         // Whether this field is required
	IsSearchable       bool         // Whether free-text filters match this field
	DefaultValue       string       // Default value (if any)
	MemoryOffset       uintptr      // Memory offset within the struct

	// Special timestamp markers
	IsCreatedAt bool
	IsUpdatedAt bool
	IsDeletedAt bool
}

// FieldOption is a function used to configure a Field.
type FieldOption func(*Field)

// PrimaryKey marks the field as a primary key.
func PrimaryKey() FieldOption {
	return func(f *Field) { f.IsPrimaryKey = true }
}

// Unique marks the field as unique.
func Unique() FieldOption {
	return func(f *Field) { f.IsUnique = true }
}

// Required marks the field as required (non-nullable).
func Required() FieldOption {
	return func(f *Field) { f.IsRequired = true }
}

// Searchable adds the field to the free-text filter allow-list. When no
// field of a schema is searchable, every field participates.
func Searchable() FieldOption {
	return func(f *Field) { f.IsSearchable = true }
}

// Default sets a default value for the field.
func Default(value string) FieldOption {
	return func(f *Field) { f.DefaultValue = value }
}

// CreatedAt marks the field as the createdAt timestamp.
func CreatedAt() FieldOption {
	return func(f *Field) { f.IsCreatedAt = true }
}

// UpdatedAt marks the field as the updatedAt timestamp.
func UpdatedAt() FieldOption {
	return func(f *Field) { f.IsUpdatedAt = true }
}

// DeletedAt marks the field as the deletedAt timestamp (for soft deletes).
func DeletedAt() FieldOption {
	return func(f *Field) { f.IsDeletedAt = true }
}

// RelationKind defines the type of relationship between collections.
type RelationKind int

const (
	OneToOne   RelationKind = 1
	OneToMany  RelationKind = 2
	ManyToMany RelationKind = 3
)

// String returns a readable name for the kind.
func (k RelationKind) String() string {
	switch k {
	case OneToOne:
		return "one-to-one"
	case OneToMany:
		return "one-to-many"
	case ManyToMany:
		return "many-to-many"
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

// Relation describes a named link from a schema to a target collection.
//
// Records of the target are matched where Target.ForeignKey equals the
// source's LocalKey. Many-to-many relations go through JoinTable, whose
// JoinLocalKey holds the source key and JoinForeignKey the target key.
type Relation struct {
	Name           string
	Kind           RelationKind
	Target         *SchemaCore
	LocalKey       string
	ForeignKey     string
	JoinTable      string
	JoinLocalKey   string
	JoinForeignKey string
}

// SchemaCore contains the schema information required at runtime.
//
// It includes the database name, collection/table name, fields, the
// registered relations and a map of fields indexed by their memory offsets.
type SchemaCore struct {
	Database       string
	Collection     string
	Fields         []*Field
	relations      map[string]*Relation
	fieldsByOffset map[uintptr]*Field
}

// Columns returns the database column names in declaration order.
func (s *SchemaCore) Columns() []string {
	columns := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		columns = append(columns, field.DatabaseColumnName)
	}
	return columns
}

// HasColumn reports whether name is one of the schema's columns.
func (s *SchemaCore) HasColumn(name string) bool {
	return s.Column(name) != nil
}

// Column returns the field mapped to the given column, or nil.
func (s *SchemaCore) Column(name string) *Field {
	for _, field := range s.Fields {
		if field.DatabaseColumnName == name {
			return field
		}
	}
	return nil
}

// PrimaryKey returns the primary key column, falling back to "id".
func (s *SchemaCore) PrimaryKey() string {
	for _, field := range s.Fields {
		if field.IsPrimaryKey {
			return field.DatabaseColumnName
		}
	}
	return defaultPrimaryKey
}

// SearchableColumns returns the free-text allow-list, or nil when the schema
// does not restrict it.
func (s *SchemaCore) SearchableColumns() []string {
	var columns []string
	for _, field := range s.Fields {
		if field.IsSearchable {
			columns = append(columns, field.DatabaseColumnName)
		}
	}
	return columns
}

// Relations returns the registered relations keyed by name.
func (s *SchemaCore) Relations() map[string]*Relation {
	return s.relations
}

// SoftDeleteColumn returns the deletedAt column, or "" when the schema does
// not soft-delete.
func (s *SchemaCore) SoftDeleteColumn() string {
	for _, field := range s.Fields {
		if field.IsDeletedAt {
			return field.DatabaseColumnName
		}
	}
	return ""
}

// AddRelation registers a relation under its name. An empty LocalKey
// defaults to the schema's primary key; an empty ForeignKey defaults to the
// target's primary key.
func (s *SchemaCore) AddRelation(relation Relation) *Relation {
	if relation.Name == "" || relation.Target == nil {
		panic("core: AddRelation: relation needs a name and a target")
	}
	if relation.LocalKey == "" {
		relation.LocalKey = s.PrimaryKey()
	}
	if relation.ForeignKey == "" {
		relation.ForeignKey = relation.Target.PrimaryKey()
	}
	if relation.Kind == ManyToMany && relation.JoinTable == "" {
		panic("core: AddRelation: many-to-many relation needs a join table")
	}
	if s.relations == nil {
		s.relations = make(map[string]*Relation)
	}
	s.relations[relation.Name] = &relation
	return &relation
}

// HasOne registers a one-to-one relation: target.foreignKey = local.localKey.
func (s *SchemaCore) HasOne(name string, target *SchemaCore, localKey, foreignKey string) *Relation {
	return s.AddRelation(Relation{Name: name, Kind: OneToOne, Target: target, LocalKey: localKey, ForeignKey: foreignKey})
}

// HasMany registers a one-to-many relation: target.foreignKey = local.localKey.
func (s *SchemaCore) HasMany(name string, target *SchemaCore, localKey, foreignKey string) *Relation {
	return s.AddRelation(Relation{Name: name, Kind: OneToMany, Target: target, LocalKey: localKey, ForeignKey: foreignKey})
}

// BelongsToMany registers a many-to-many relation through joinTable.
func (s *SchemaCore) BelongsToMany(name string, target *SchemaCore, joinTable, joinLocalKey, joinForeignKey string) *Relation {
	return s.AddRelation(Relation{
		Name:           name,
		Kind:           ManyToMany,
		Target:         target,
		JoinTable:      joinTable,
		JoinLocalKey:   joinLocalKey,
		JoinForeignKey: joinForeignKey,
	})
}

// SchemaMeta extends SchemaCore with cached references to the special
// timestamp fields of T.
type SchemaMeta[T any] struct {
	SchemaCore

	createdAtField *Field
	updatedAtField *Field
	deletedAtField *Field
}

// SchemaBuilder is used to construct a schema definition from a Go struct.
//
// It collects field metadata using reflection and applies customization
// through SchemaOptions.
type SchemaBuilder[T any] struct {
	database       string
	collection     string
	tagKey         string
	structType     reflect.Type
	fields         []*Field
	fieldsByOffset map[uintptr]*Field
}

// SchemaOption represents a function that customizes the schema builder.
type SchemaOption[T any] func(*SchemaBuilder[T])

// TagKey sets the struct tag key to use for database column mapping.
func TagKey[T any](key string) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) { schemaBuilder.tagKey = key }
}

// Table sets the database collection/table name for the schema.
func Table[T any](name string) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) { schemaBuilder.collection = name }
}

// Database sets the database name for the schema.
func Database[T any](name string) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) { schemaBuilder.database = name }
}

// OverrideField modifies the metadata of a specific field (primary key,
// searchable, timestamps, ...).
//
// Example:
//
//	core.OverrideField(func(u *User) *int64 { return &u.ID }, core.PrimaryKey())
func OverrideField[T any, F any](selector func(*T) *F, opts ...FieldOption) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) {
		if len(schemaBuilder.fields) == 0 {
			// fields are reflected after the first option pass
			return
		}
		offset := offsetOf(selector)
		field, ok := schemaBuilder.fieldsByOffset[offset]
		if !ok {
			panic("core: OverrideField: field not found by selector")
		}
		for _, opt := range opts {
			opt(field)
		}
	}
}

// Schema builds a SchemaMeta[T] by reflecting on struct fields and applying
// the given SchemaOptions.
//
// Columns come from the `db` tag (or the key set with TagKey), falling back
// to the Go field name. Fields tagged "-" are skipped.
func Schema[T any](options ...SchemaOption[T]) *SchemaMeta[T] {
	var zero T
	structType := reflect.TypeOf(zero)
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	builder := &SchemaBuilder[T]{
		structType:     structType,
		tagKey:         "db",
		fieldsByOffset: make(map[uintptr]*Field),
	}

	// Apply options before building fields (Table/Database/TagKey/etc.)
	for _, option := range options {
		option(builder)
	}

	for _, sf := range reflect.VisibleFields(structType) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		dbName := sf.Tag.Get(builder.tagKey)
		if dbName == "-" {
			continue
		}
		if dbName == "" {
			dbName = sf.Name
		}
		offset, ok := fieldOffset(structType, sf.Index)
		if !ok {
			continue
		}

		field := &Field{
			StructFieldName:    sf.Name,
			DatabaseColumnName: dbName,
			Type:               sf.Type,
			MemoryOffset:       offset,
		}
		builder.fields = append(builder.fields, field)
		builder.fieldsByOffset[offset] = field
	}

	// Re-apply options so that OverrideField can work after fields exist
	for _, option := range options {
		option(builder)
	}

	meta := &SchemaMeta[T]{
		SchemaCore: SchemaCore{
			Database:       builder.database,
			Collection:     builder.collection,
			Fields:         builder.fields,
			fieldsByOffset: builder.fieldsByOffset,
		},
	}

	for _, f := range builder.fields {
		if f.IsCreatedAt {
			meta.createdAtField = f
		}
		if f.IsUpdatedAt {
			meta.updatedAtField = f
		}
		if f.IsDeletedAt {
			meta.deletedAtField = f
		}
	}

	return meta
}

// NewSchemaCore builds a schema for a collection without a backing struct,
// such as a join table. The first column is the primary key.
func NewSchemaCore(collection string, columns ...string) *SchemaCore {
	schema := &SchemaCore{Collection: collection}
	for i, column := range columns {
		schema.Fields = append(schema.Fields, &Field{
			StructFieldName:    column,
			DatabaseColumnName: column,
			IsPrimaryKey:       i == 0,
		})
	}
	return schema
}
