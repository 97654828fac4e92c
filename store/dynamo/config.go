package dynamo

import "github.com/warblehq/warble/store"

// Config holds table layout and content limits for the DynamoDB Store.
type Config struct {
	// UsersTable is the users table name.
	// Default: "warble_users"
	UsersTable string

	// PostsTable is the posts table name.
	// Default: "warble_posts"
	PostsTable string

	// CommentsTable is the comments table name.
	// Default: "warble_comments"
	CommentsTable string

	// Limits are the content-length bounds enforced on post and comment
	// writes.
	Limits store.Limits
}

// DefaultConfig returns sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		UsersTable:    "warble_users",
		PostsTable:    "warble_posts",
		CommentsTable: "warble_comments",
		Limits:        store.DefaultLimits(),
	}
}

// validate ensures config values are usable.
func (c *Config) validate() {
	if c.UsersTable == "" {
		c.UsersTable = "warble_users"
	}
	if c.PostsTable == "" {
		c.PostsTable = "warble_posts"
	}
	if c.CommentsTable == "" {
		c.CommentsTable = "warble_comments"
	}
	c.Limits.Validate()
}
