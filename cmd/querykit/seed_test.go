package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leandroluk/querykit/composer"
	"github.com/leandroluk/querykit/config"
	"github.com/leandroluk/querykit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAndSearch(t *testing.T) {
	ctx := context.Background()
	driver, err := openDriver(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "seed.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close(context.Background()) })

	sqlDriver, ok := driver.(execer)
	require.True(t, ok)
	for _, statement := range ddl {
		require.NoError(t, sqlDriver.Exec(ctx, statement))
	}

	cat := newCatalog()
	err = core.RunTransaction(ctx, driver, func(txCtx context.Context) error {
		return seed(txCtx, driver, cat, core.LoggingMiddleware(nil), 20, 2)
	})
	require.NoError(t, err)

	users := composer.NewSearcher(driver, cat.collections()["users"])
	result, err := users.Search(ctx, composer.RawQuery{
		"page_size":      "10",
		"sort_by":        "id",
		"sort_direction": "ASC",
		"details":        "posts",
	})
	require.NoError(t, err)
	require.Len(t, result.Data, 10)
	assert.Equal(t, int64(1), result.Data[0]["id"])
	assert.Len(t, result.Data[0]["posts"], 2)
	require.NotNil(t, result.Pagination.NextPage)

	// users 10 and 20 are soft-deleted, leaving 8 on the second page
	second, err := users.Search(ctx, composer.RawQuery{
		"page_size":      "10",
		"page_from":      "1",
		"sort_by":        "id",
		"sort_direction": "ASC",
	})
	require.NoError(t, err)
	assert.Len(t, second.Data, 8)
	assert.Nil(t, second.Pagination.NextPage)

	posts := composer.NewSearcher(driver, cat.collections()["posts"])
	tagged, err := posts.Search(ctx, composer.RawQuery{
		"user_id": "3",
		"props":   "id,title",
		"details": "author,tags",
	})
	require.NoError(t, err)
	require.Len(t, tagged.Data, 2)
	for _, post := range tagged.Data {
		assert.Equal(t, "carla-003", post["author"].(core.Record)["name"])
		assert.Len(t, post["tags"], 1)
	}
}

func TestOpenDriverRejectsUnknownBackend(t *testing.T) {
	_, err := openDriver(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, `unknown database driver "oracle"`)
}
