package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/leandroluk/querykit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type library struct {
	authors, books, tags *core.SchemaCore
	driver               *fakeDriver
}

func newLibrary() *library {
	authors := core.NewSchemaCore("authors", "id", "name")
	books := core.NewSchemaCore("books", "id", "author_id", "title")
	tags := core.NewSchemaCore("tags", "id", "label")

	authors.HasMany("books", books, "id", "author_id")
	authors.HasOne("first_book", books, "id", "author_id")
	books.HasOne("author", authors, "author_id", "id")
	books.BelongsToMany("tags", tags, "book_tags", "book_id", "tag_id")

	driver := newFakeDriver()
	driver.tables["authors"] = []core.Record{
		{"id": 1, "name": "Ada"},
		{"id": 2, "name": "Brian"},
		{"id": 3, "name": "Cora"},
	}
	driver.tables["books"] = []core.Record{
		{"id": 10, "author_id": 1, "title": "Engines"},
		{"id": 11, "author_id": 1, "title": "Notes"},
		{"id": 12, "author_id": 2, "title": "C"},
	}
	driver.tables["tags"] = []core.Record{
		{"id": 100, "label": "math"},
		{"id": 101, "label": "history"},
	}
	driver.tables["book_tags"] = []core.Record{
		{"book_id": 10, "tag_id": 100},
		{"book_id": 10, "tag_id": 101},
		{"book_id": 12, "tag_id": 100},
	}
	return &library{authors: authors, books: books, tags: tags, driver: driver}
}

func TestProjectionColumns(t *testing.T) {
	lib := newLibrary()
	books := lib.authors.Relations()["books"]

	tests := []struct {
		name  string
		query *core.Descriptor
		want  []string
	}{
		{"nil descriptor selects all", nil, []string{"id", "name"}},
		{"nil attributes select all", &core.Descriptor{}, []string{"id", "name"}},
		{"empty attributes select the primary key", &core.Descriptor{Attributes: []string{}}, []string{"id"}},
		{"attributes keep client order", &core.Descriptor{Attributes: []string{"name", "id"}}, []string{"name", "id"}},
		{
			"relation local keys are added",
			&core.Descriptor{Attributes: []string{"name"}, Include: []*core.Relation{books}},
			[]string{"name", "id"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.ProjectionColumns(lib.authors, tt.query))
		})
	}
}

func TestResolveIncludesOneToMany(t *testing.T) {
	lib := newLibrary()
	ctx := context.Background()
	authors, err := lib.driver.FindMany(ctx, lib.authors, &core.Descriptor{})
	require.NoError(t, err)
	lib.driver.queries = nil

	err = core.ResolveIncludes(ctx, lib.driver, authors, []*core.Relation{lib.authors.Relations()["books"]})
	require.NoError(t, err)

	assert.Len(t, lib.driver.queries, 1, "one batched query per relation")
	assert.Len(t, authors[0]["books"], 2)
	assert.Len(t, authors[1]["books"], 1)
	assert.Equal(t, []core.Record{}, authors[2]["books"], "no matches yields an empty list")
}

func TestResolveIncludesOneToOne(t *testing.T) {
	lib := newLibrary()
	ctx := context.Background()
	books, err := lib.driver.FindMany(ctx, lib.books, &core.Descriptor{})
	require.NoError(t, err)
	authors, err := lib.driver.FindMany(ctx, lib.authors, &core.Descriptor{})
	require.NoError(t, err)

	require.NoError(t, core.ResolveIncludes(ctx, lib.driver, books, []*core.Relation{lib.books.Relations()["author"]}))
	assert.Equal(t, "Ada", books[0]["author"].(core.Record)["name"])
	assert.Equal(t, "Brian", books[2]["author"].(core.Record)["name"])

	require.NoError(t, core.ResolveIncludes(ctx, lib.driver, authors, []*core.Relation{lib.authors.Relations()["first_book"]}))
	assert.Nil(t, authors[2]["first_book"])
	assert.Contains(t, authors[2], "first_book")
}

func TestResolveIncludesManyToMany(t *testing.T) {
	lib := newLibrary()
	ctx := context.Background()
	books, err := lib.driver.FindMany(ctx, lib.books, &core.Descriptor{})
	require.NoError(t, err)
	lib.driver.queries = nil

	require.NoError(t, core.ResolveIncludes(ctx, lib.driver, books, []*core.Relation{lib.books.Relations()["tags"]}))

	assert.Len(t, lib.driver.queries, 2, "join table then targets")
	require.Len(t, books[0]["tags"], 2)
	assert.Equal(t, "math", books[0]["tags"].([]core.Record)[0]["label"])
	assert.Equal(t, []core.Record{}, books[1]["tags"])
	assert.Len(t, books[2]["tags"], 1)
}

func TestResolveIncludesNoRecords(t *testing.T) {
	lib := newLibrary()
	err := core.ResolveIncludes(context.Background(), lib.driver, nil, []*core.Relation{lib.authors.Relations()["books"]})
	require.NoError(t, err)
	assert.Empty(t, lib.driver.queries)
}

func TestResolveIncludesPropagatesErrors(t *testing.T) {
	lib := newLibrary()
	authors := []core.Record{{"id": 1}}
	boom := errors.New("boom")
	lib.driver.err = boom

	err := core.ResolveIncludes(context.Background(), lib.driver, authors, []*core.Relation{lib.authors.Relations()["books"]})
	assert.ErrorIs(t, err, boom)
}
