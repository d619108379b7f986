package main

import (
	"time"

	"github.com/leandroluk/querykit/core"
)

type User struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	CreatedAt time.Time  `db:"created_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type Post struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// catalog holds the demo schemas and their relations.
type catalog struct {
	users    *core.SchemaMeta[User]
	posts    *core.SchemaMeta[Post]
	tags     *core.SchemaMeta[Tag]
	postTags *core.SchemaCore
}

func newCatalog() *catalog {
	users := core.Schema(
		core.Table[User]("users"),
		core.OverrideField(func(u *User) *int64 { return &u.ID }, core.PrimaryKey()),
		core.OverrideField(func(u *User) *string { return &u.Name }, core.Searchable(), core.Required()),
		core.OverrideField(func(u *User) *string { return &u.Email }, core.Searchable(), core.Unique()),
		core.OverrideField(func(u *User) *time.Time { return &u.CreatedAt }, core.CreatedAt()),
		core.OverrideField(func(u *User) **time.Time { return &u.DeletedAt }, core.DeletedAt()),
	)
	posts := core.Schema(
		core.Table[Post]("posts"),
		core.OverrideField(func(p *Post) *int64 { return &p.ID }, core.PrimaryKey()),
		core.OverrideField(func(p *Post) *string { return &p.Title }, core.Searchable()),
		core.OverrideField(func(p *Post) *string { return &p.Body }, core.Searchable()),
		core.OverrideField(func(p *Post) *time.Time { return &p.CreatedAt }, core.CreatedAt()),
	)
	tags := core.Schema(
		core.Table[Tag]("tags"),
		core.OverrideField(func(t *Tag) *int64 { return &t.ID }, core.PrimaryKey()),
	)
	postTags := core.NewSchemaCore("post_tags", "post_id", "tag_id")

	users.HasMany("posts", &posts.SchemaCore, "id", "user_id")
	posts.HasOne("author", &users.SchemaCore, "user_id", "id")
	posts.BelongsToMany("tags", &tags.SchemaCore, "post_tags", "post_id", "tag_id")
	tags.BelongsToMany("posts", &posts.SchemaCore, "post_tags", "tag_id", "post_id")

	return &catalog{users: users, posts: posts, tags: tags, postTags: postTags}
}

// collections maps the searchable collection names to their schemas.
func (c *catalog) collections() map[string]*core.SchemaCore {
	return map[string]*core.SchemaCore{
		c.users.Collection: &c.users.SchemaCore,
		c.posts.Collection: &c.posts.SchemaCore,
		c.tags.Collection:  &c.tags.SchemaCore,
	}
}

// ddl creates the demo tables on SQL backends. The statements are valid
// for both postgres and sqlite.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP,
		deleted_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS post_tags (
		post_id BIGINT NOT NULL,
		tag_id BIGINT NOT NULL,
		PRIMARY KEY (post_id, tag_id)
	)`,
}
