package composer_test

import (
	"testing"

	"github.com/leandroluk/querykit/composer"
	"github.com/leandroluk/querykit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userMeta is a users collection with searchable name and email and a
// posts relation.
func userMeta() *core.SchemaCore {
	users := core.NewSchemaCore("users", "id", "name", "email", "role")
	users.Column("name").IsSearchable = true
	users.Column("email").IsSearchable = true
	posts := core.NewSchemaCore("posts", "id", "user_id", "title")
	users.HasMany("posts", posts, "id", "user_id")
	users.HasOne("profile", core.NewSchemaCore("profiles", "user_id", "bio"), "id", "user_id")
	return users
}

func compile(raw composer.RawQuery) (*core.Descriptor, composer.Pagination) {
	return composer.NewCompiler(composer.DefaultFieldNames()).Compile(raw, userMeta())
}

func TestCompileDefaults(t *testing.T) {
	descriptor, pagination := compile(composer.RawQuery{})

	assert.Nil(t, descriptor.Where)
	assert.Nil(t, descriptor.Attributes)
	assert.Nil(t, descriptor.Include)
	assert.Equal(t, []core.Sort{{FieldName: "id", Direction: "DESC"}}, descriptor.Order)
	assert.Equal(t, 50, descriptor.Limit)
	assert.Equal(t, 0, descriptor.Offset)
	assert.Equal(t, composer.Pagination{Limit: 50, Offset: 0, PageFrom: 0, PageSize: 50}, pagination)
}

func TestCompilePagination(t *testing.T) {
	tests := []struct {
		name       string
		raw        composer.RawQuery
		wantLimit  int
		wantOffset int
		wantPage   int
	}{
		{"explicit", composer.RawQuery{"page_size": "10", "page_from": "2"}, 10, 20, 2},
		{"numbers", composer.RawQuery{"page_size": 10, "page_from": 3}, 10, 30, 3},
		{"non-numeric size", composer.RawQuery{"page_size": "ten", "page_from": "1"}, 50, 50, 1},
		{"zero size", composer.RawQuery{"page_size": "0"}, 50, 0, 0},
		{"negative size", composer.RawQuery{"page_size": "-5"}, 50, 0, 0},
		{"negative page", composer.RawQuery{"page_size": "10", "page_from": "-1"}, 10, 0, 0},
		{"non-numeric page", composer.RawQuery{"page_size": "10", "page_from": "x"}, 10, 0, 0},
		{"empty strings", composer.RawQuery{"page_size": "", "page_from": ""}, 50, 0, 0},
		{"oversized size", composer.RawQuery{"page_size": "2147483648"}, 50, 0, 0},
		{"size at the cap", composer.RawQuery{"page_size": "2147483647"}, 2147483647, 0, 0},
		{"offset overflow", composer.RawQuery{"page_size": "2", "page_from": "4611686018427387904"}, 2, 0, 0},
		{"size beyond int", composer.RawQuery{"page_size": "9223372036854775808"}, 50, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descriptor, pagination := compile(tt.raw)
			assert.Equal(t, tt.wantLimit, descriptor.Limit)
			assert.Equal(t, tt.wantOffset, descriptor.Offset)
			assert.Equal(t, tt.wantPage, pagination.PageFrom)
			assert.Equal(t, tt.wantLimit, pagination.PageSize)
		})
	}
}

func TestCompileWhereKeepsOnlyModelFields(t *testing.T) {
	descriptor, _ := compile(composer.RawQuery{
		"role":      "admin",
		"name":      "alice",
		"unknown":   "x",
		"sort_by":   "name",
		"page_size": "5",
	})

	require.NotNil(t, descriptor.Where)
	assert.Equal(t, core.AllOf(
		core.Col("name").Eq("alice"),
		core.Col("role").Eq("admin"),
	), descriptor.Where, "equality leaves follow column order")
}

func TestCompileReservedNamesNeverReachWhere(t *testing.T) {
	// a model whose columns collide with role names
	meta := core.NewSchemaCore("odd", "id", "filter", "props", "page_size")
	names := composer.DefaultFieldNames()

	descriptor, _ := composer.NewCompiler(names).Compile(composer.RawQuery{
		"props":     "id",
		"page_size": "5",
		"id":        "9",
	}, meta)

	assert.Equal(t, core.AllOf(core.Col("id").Eq("9")), descriptor.Where)
}

func TestCompileFilterExpansion(t *testing.T) {
	descriptor, _ := compile(composer.RawQuery{"filter": "foo"})

	assert.Equal(t, core.AnyOf(
		core.Col("name").Like("%foo%"),
		core.Col("email").Like("%foo%"),
	), descriptor.Where)
}

func TestCompileFilterWithoutAllowList(t *testing.T) {
	meta := core.NewSchemaCore("notes", "id", "body")
	names := composer.DefaultFieldNames()
	compiler := composer.NewCompiler(names)

	descriptor, _ := compiler.Compile(composer.RawQuery{"filter": "x"}, meta)
	assert.Equal(t, core.AnyOf(
		core.Col("id").Like("%x%"),
		core.Col("body").Like("%x%"),
	), descriptor.Where)

	descriptor, _ = compiler.Compile(composer.RawQuery{"filter": "x", "filter_exclude_id": "true"}, meta)
	assert.Equal(t, core.AnyOf(core.Col("body").Like("%x%")), descriptor.Where)
}

func TestCompileFilterMergedWithWhere(t *testing.T) {
	descriptor, _ := compile(composer.RawQuery{"filter": "foo", "role": "admin"})

	require.True(t, descriptor.Where.IsDisjunction())
	assert.Equal(t, []*core.Condition{
		core.Col("name").Like("%foo%"),
		core.Col("email").Like("%foo%"),
		core.AllOf(core.Col("role").Eq("admin")),
	}, descriptor.Where.Children)
}

func TestCompileEmptyFilterIsAbsent(t *testing.T) {
	descriptor, _ := compile(composer.RawQuery{"filter": ""})
	assert.Nil(t, descriptor.Where)
}

func TestCompileSort(t *testing.T) {
	tests := []struct {
		name string
		raw  composer.RawQuery
		want []core.Sort
	}{
		{
			"single direction applies to every field",
			composer.RawQuery{"sort_by": "a,b,c", "sort_direction": "ASC"},
			[]core.Sort{{FieldName: "a", Direction: "ASC"}, {FieldName: "b", Direction: "ASC"}, {FieldName: "c", Direction: "ASC"}},
		},
		{
			"paired by position",
			composer.RawQuery{"sort_by": "a,b", "sort_direction": "ASC,DESC"},
			[]core.Sort{{FieldName: "a", Direction: "ASC"}, {FieldName: "b", Direction: "DESC"}},
		},
		{
			"unpaired fields reuse the whole direction string",
			composer.RawQuery{"sort_by": "a,b,c", "sort_direction": "ASC,DESC"},
			[]core.Sort{{FieldName: "a", Direction: "ASC"}, {FieldName: "b", Direction: "DESC"}, {FieldName: "c", Direction: "ASC,DESC"}},
		},
		{
			"default direction",
			composer.RawQuery{"sort_by": "name"},
			[]core.Sort{{FieldName: "name", Direction: "DESC"}},
		},
		{
			"empty tokens are dropped",
			composer.RawQuery{"sort_by": "a,,b,", "sort_direction": "asc"},
			[]core.Sort{{FieldName: "a", Direction: "asc"}, {FieldName: "b", Direction: "asc"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descriptor, _ := compile(tt.raw)
			assert.Equal(t, tt.want, descriptor.Order)
		})
	}
}

func TestCompileProjection(t *testing.T) {
	descriptor, _ := compile(composer.RawQuery{"props": "email,unknown,,id"})
	assert.Equal(t, []string{"email", "id"}, descriptor.Attributes)

	descriptor, _ = compile(composer.RawQuery{"props": "name,email,name"})
	assert.Equal(t, []string{"name", "email"}, descriptor.Attributes)

	descriptor, _ = compile(composer.RawQuery{"props": "unknown"})
	assert.NotNil(t, descriptor.Attributes)
	assert.Empty(t, descriptor.Attributes)
}

func TestCompileAssociations(t *testing.T) {
	descriptor, _ := compile(composer.RawQuery{"details": "posts,unknown,profile"})
	require.Len(t, descriptor.Include, 2)
	assert.Equal(t, "posts", descriptor.Include[0].Name)
	assert.Equal(t, "profile", descriptor.Include[1].Name)

	descriptor, _ = compile(composer.RawQuery{"details": "unknown"})
	assert.NotNil(t, descriptor.Include, "given but unresolved is an empty include")
	assert.Empty(t, descriptor.Include)

	descriptor, _ = compile(composer.RawQuery{})
	assert.Nil(t, descriptor.Include, "absent is a nil include")
}

func TestCompileBypass(t *testing.T) {
	prebuilt := &core.Descriptor{
		Where:  core.AllOf(core.Col("id").Gt(10)),
		Limit:  5,
		Offset: 15,
	}

	descriptor, pagination := compile(composer.RawQuery{"$query": prebuilt, "name": "ignored"})
	assert.Same(t, prebuilt, descriptor)
	assert.Equal(t, composer.Pagination{Limit: 5, Offset: 15, PageFrom: 3, PageSize: 5}, pagination)

	descriptor, pagination = compile(composer.RawQuery{"$query": core.Descriptor{}})
	assert.Equal(t, &core.Descriptor{}, descriptor)
	assert.Equal(t, 50, pagination.PageSize)
}

func TestCompileCustomFieldNames(t *testing.T) {
	names, err := composer.NewFieldNames(composer.FieldNames{
		SortBy:          "order",
		PageSize:        "limit",
		SortByDelimiter: "|",
	})
	require.NoError(t, err)

	descriptor, pagination := composer.NewCompiler(names).Compile(composer.RawQuery{
		"order": "name|email",
		"limit": "3",
	}, userMeta())

	assert.Equal(t, []core.Sort{{FieldName: "name", Direction: "DESC"}, {FieldName: "email", Direction: "DESC"}}, descriptor.Order)
	assert.Equal(t, 3, pagination.PageSize)
}
