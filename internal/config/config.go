// Package config handles process configuration: defaults overlaid by an
// optional YAML file, validated before anything touches storage.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the warble server and tools.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// Storage selects the backend: "memory" or "dynamo".
	Storage string `yaml:"storage"`

	Dynamo DynamoConfig `yaml:"dynamo"`
	Limits LimitsConfig `yaml:"limits"`
}

// DynamoConfig holds DynamoDB connection and table settings.
type DynamoConfig struct {
	// Endpoint overrides the DynamoDB endpoint, e.g. for DynamoDB Local.
	// Empty means the SDK default for the region.
	Endpoint string `yaml:"endpoint"`

	// Region is the AWS region.
	Region string `yaml:"region"`

	UsersTable    string `yaml:"users_table"`
	PostsTable    string `yaml:"posts_table"`
	CommentsTable string `yaml:"comments_table"`
}

// LimitsConfig holds the content-length bounds.
type LimitsConfig struct {
	MaxPostContent    int `yaml:"max_post_content"`
	MaxCommentContent int `yaml:"max_comment_content"`
}

// Default returns development defaults.
func Default() Config {
	return Config{
		Addr:    ":8080",
		Storage: "memory",
		Dynamo: DynamoConfig{
			Region:        "us-east-1",
			UsersTable:    "warble_users",
			PostsTable:    "warble_posts",
			CommentsTable: "warble_comments",
		},
		Limits: LimitsConfig{
			MaxPostContent:    280,
			MaxCommentContent: 240,
		},
	}
}

// Load builds a Config from defaults overlaid with the YAML file at path.
// An empty path skips the overlay.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the core must never see.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr must not be empty")
	}
	if c.Storage != "memory" && c.Storage != "dynamo" {
		return fmt.Errorf("config: unknown storage %q", c.Storage)
	}
	if c.Limits.MaxPostContent <= 0 {
		return errors.New("config: max_post_content must be positive")
	}
	if c.Limits.MaxCommentContent <= 0 {
		return errors.New("config: max_comment_content must be positive")
	}
	if c.Storage == "dynamo" {
		if c.Dynamo.Region == "" {
			return errors.New("config: dynamo region must not be empty")
		}
		for _, table := range []string{c.Dynamo.UsersTable, c.Dynamo.PostsTable, c.Dynamo.CommentsTable} {
			if table == "" {
				return errors.New("config: dynamo table names must not be empty")
			}
		}
	}
	return nil
}
