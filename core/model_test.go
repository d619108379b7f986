package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/leandroluk/querykit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCreate(t *testing.T) {
	driver := newFakeDriver()
	var ops []core.Operation
	spy := func(next core.Handler) core.Handler {
		return func(ctx context.Context, op core.Operation, payload any) error {
			ops = append(ops, op)
			return next(ctx, op, payload)
		}
	}
	model := core.NewModel(accountSchema(), driver, spy)

	account := &Account{ID: 7, Name: "Ada", Email: "ada@example.com", Password: "secret"}
	require.NoError(t, model.Create(context.Background(), account))

	assert.False(t, account.CreatedAt.IsZero(), "createdAt is stamped")
	assert.Equal(t, []core.Operation{core.OperationInsert}, ops)

	rows := driver.tables["accounts"]
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0]["id"])
	assert.Equal(t, "Ada", rows[0]["name"])
	assert.Nil(t, rows[0]["deleted_at"])
	assert.NotContains(t, rows[0], "Password")
}

func TestModelFindExcludesSoftDeleted(t *testing.T) {
	driver := newFakeDriver()
	deleted := time.Now()
	driver.tables["accounts"] = []core.Record{
		{"id": int64(1), "name": "Ada", "deleted_at": nil},
		{"id": int64(2), "name": "Bob", "deleted_at": deleted},
	}
	schema := accountSchema()
	model := core.NewModel(schema, driver)

	live, err := model.Find(context.Background(), core.NewQuery(schema))
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "Ada", live[0].Name)

	all, err := model.Find(context.Background(), core.NewQuery(schema).WithDeleted())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[1].DeletedAt)
	assert.True(t, deleted.Equal(*all[1].DeletedAt))
}

func TestModelDecode(t *testing.T) {
	model := core.NewModel(accountSchema(), newFakeDriver())

	decoded := model.Decode([]core.Record{
		{"id": int32(3), "name": "Cora", "Plan": "pro", "unknown": true, "email": 42},
	})

	require.Len(t, decoded, 1)
	assert.Equal(t, int64(3), decoded[0].ID, "convertible numbers are converted")
	assert.Equal(t, "Cora", decoded[0].Name)
	assert.Equal(t, "pro", decoded[0].Plan)
	assert.Empty(t, decoded[0].Email, "numbers are not turned into strings")
}

func TestWithSoftDelete(t *testing.T) {
	schema := accountSchema()
	where := core.AllOf(core.Col("name").Eq("Ada"))

	filtered := core.WithSoftDelete(&schema.SchemaCore, &core.Descriptor{Where: where})
	require.Len(t, filtered.Where.Children, 2)
	assert.Equal(t, core.OpNil, filtered.Where.Children[1].Operator)
	assert.Equal(t, "deleted_at", filtered.Where.Children[1].FieldName)

	kept := &core.Descriptor{Where: where, WithDeleted: true}
	assert.Same(t, kept, core.WithSoftDelete(&schema.SchemaCore, kept))

	plain := core.NewSchemaCore("plain", "id")
	descriptor := &core.Descriptor{}
	assert.Same(t, descriptor, core.WithSoftDelete(plain, descriptor))
}

func TestModelWithTenant(t *testing.T) {
	model := core.NewModel(accountSchema(), newFakeDriver())
	tenant := model.WithTenant("tenant_a")

	assert.Equal(t, "tenant_a", tenant.Schema().Database)
	assert.Empty(t, model.Schema().Database)
}
