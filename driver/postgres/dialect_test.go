package postgres_test

import (
	"testing"

	"github.com/leandroluk/querykit/core"
	"github.com/leandroluk/querykit/driver/postgres"
	"github.com/leandroluk/querykit/driver/sqlbuild"
	"github.com/stretchr/testify/assert"
)

func TestDialectSelect(t *testing.T) {
	users := core.NewSchemaCore("users", "id", "name", "email")
	users.Database = "tenant_a"
	builder := sqlbuild.New(postgres.Dialect)

	got := builder.Select(users, &core.Descriptor{
		Where:  core.AnyOf(core.Col("name").Like("%ana%"), core.Col("email").Like("%ana%")),
		Order:  []core.Sort{{FieldName: "id", Direction: "ASC"}},
		Offset: 20,
	})

	assert.Equal(t,
		`SELECT "id", "name", "email" FROM "tenant_a"."users" WHERE (CAST("name" AS TEXT) ILIKE $1 OR CAST("email" AS TEXT) ILIKE $2) ORDER BY "id" ASC OFFSET 20`,
		got)
	assert.Equal(t, []any{"%ana%", "%ana%"}, builder.Args())
}

func TestDialectQuotesIdentifiers(t *testing.T) {
	assert.Equal(t, `"weird""name"`, postgres.Dialect.Quote(`weird"name`))
	assert.Equal(t, "$3", postgres.Dialect.Placeholder(3))
}
