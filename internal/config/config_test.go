package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warblehq/warble/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_OverlayKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
storage: dynamo
dynamo:
  endpoint: http://localhost:8000
  users_table: test_users
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dynamo", cfg.Storage)
	assert.Equal(t, "http://localhost:8000", cfg.Dynamo.Endpoint)
	assert.Equal(t, "test_users", cfg.Dynamo.UsersTable)

	// Untouched keys keep their defaults.
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "us-east-1", cfg.Dynamo.Region)
	assert.Equal(t, "warble_posts", cfg.Dynamo.PostsTable)
	assert.Equal(t, 280, cfg.Limits.MaxPostContent)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "addr: [unclosed")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults", func(c *config.Config) {}, false},
		{"empty addr", func(c *config.Config) { c.Addr = "" }, true},
		{"unknown storage", func(c *config.Config) { c.Storage = "postgres" }, true},
		{"zero post limit", func(c *config.Config) { c.Limits.MaxPostContent = 0 }, true},
		{"negative comment limit", func(c *config.Config) { c.Limits.MaxCommentContent = -1 }, true},
		{"dynamo without region", func(c *config.Config) {
			c.Storage = "dynamo"
			c.Dynamo.Region = ""
		}, true},
		{"dynamo without table", func(c *config.Config) {
			c.Storage = "dynamo"
			c.Dynamo.CommentsTable = ""
		}, true},
		{"memory ignores dynamo settings", func(c *config.Config) {
			c.Dynamo = config.DynamoConfig{}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
