package main

import (
	"context"
	"fmt"
	"time"

	"github.com/leandroluk/querykit/core"
	"github.com/spf13/cobra"
)

var seedFlags struct {
	users        int
	postsPerUser int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, posts and tags",
	Long: `Create the demo tables (SQL backends) and insert users, their posts and
post tags inside a single transaction.

Examples:
  # 25 users with 2 posts each into the configured database
  querykit seed

  # Larger dataset on postgres
  QUERYKIT_DATABASE_DRIVER=postgres QUERYKIT_DATABASE_DSN=postgres://... querykit seed --users 500`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedFlags.users, "users", 25, "number of users to create")
	seedCmd.Flags().IntVar(&seedFlags.postsPerUser, "posts-per-user", 2, "number of posts per user")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	driver, err := openDriver(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer driver.Close(context.Background())

	if sqlDriver, ok := driver.(execer); ok {
		for _, statement := range ddl {
			if err := sqlDriver.Exec(ctx, statement); err != nil {
				return fmt.Errorf("failed to create tables: %w", err)
			}
		}
	}

	cat := newCatalog()
	middleware := core.LoggingMiddleware(log)
	err = core.RunTransaction(ctx, driver, func(txCtx context.Context) error {
		return seed(txCtx, driver, cat, middleware, seedFlags.users, seedFlags.postsPerUser)
	})
	if err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}

	log.Info("seed completed",
		"driver", cfg.Database.Driver,
		"users", seedFlags.users,
		"posts", seedFlags.users*seedFlags.postsPerUser,
	)
	return nil
}

var demoNames = []string{"alice", "bruno", "carla", "diego", "elena", "fabio", "giulia", "hugo"}

var demoTags = []string{"go", "sql", "mongo", "search", "pagination"}

// seed inserts deterministic demo data so repeated runs against fresh
// databases produce the same pages.
func seed(ctx context.Context, driver core.Driver, cat *catalog, middleware core.Middleware, users, postsPerUser int) error {
	userModel := core.NewModel(cat.users, driver, middleware)
	postModel := core.NewModel(cat.posts, driver, middleware)
	tagModel := core.NewModel(cat.tags, driver, middleware)

	tagList := make([]*Tag, 0, len(demoTags))
	for i, name := range demoTags {
		tagList = append(tagList, &Tag{ID: int64(i + 1), Name: name})
	}
	if err := tagModel.Create(ctx, tagList...); err != nil {
		return err
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var (
		userList []*User
		postList []*Post
		links    []core.Record
	)
	for i := 0; i < users; i++ {
		name := fmt.Sprintf("%s-%03d", demoNames[i%len(demoNames)], i+1)
		user := &User{ID: int64(i + 1), Name: name, Email: name + "@example.com"}
		if i%10 == 9 {
			deletedAt := base.Add(time.Duration(i) * time.Hour)
			user.DeletedAt = &deletedAt
		}
		userList = append(userList, user)

		for j := 0; j < postsPerUser; j++ {
			post := &Post{
				ID:     int64(i*postsPerUser + j + 1),
				UserID: user.ID,
				Title:  fmt.Sprintf("%s post %d", name, j+1),
				Body:   fmt.Sprintf("notes about %s by %s", demoTags[(i+j)%len(demoTags)], name),
			}
			postList = append(postList, post)
			links = append(links, core.Record{
				"post_id": post.ID,
				"tag_id":  tagList[(i+j)%len(tagList)].ID,
			})
		}
	}

	if err := userModel.Create(ctx, userList...); err != nil {
		return err
	}
	if len(postList) == 0 {
		return nil
	}
	if err := postModel.Create(ctx, postList...); err != nil {
		return err
	}
	return driver.Insert(ctx, cat.postTags, links...)
}
