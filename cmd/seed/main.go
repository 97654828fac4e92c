// Command seed fills a warble DynamoDB deployment with generated users,
// posts and comments for manual testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/warblehq/warble/internal/config"
	"github.com/warblehq/warble/store"
	dynamostore "github.com/warblehq/warble/store/dynamo"
)

var words = []string{
	"coffee", "release", "deploy", "weekend", "compiler", "sunrise",
	"latency", "keyboard", "garden", "refactor", "bicycle", "ramen",
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	userCount := flag.Int("users", 5, "number of users to create")
	postsPerUser := flag.Int("posts", 4, "posts per user")
	commentsPerPost := flag.Int("comments", 3, "comments per post")
	bootstrap := flag.Bool("bootstrap", true, "create tables first")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Dynamo.Region))
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Dynamo.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Dynamo.Endpoint)
		}
	})

	st := dynamostore.New(client, dynamostore.Config{
		UsersTable:    cfg.Dynamo.UsersTable,
		PostsTable:    cfg.Dynamo.PostsTable,
		CommentsTable: cfg.Dynamo.CommentsTable,
		Limits: store.Limits{
			MaxPostContent:    cfg.Limits.MaxPostContent,
			MaxCommentContent: cfg.Limits.MaxCommentContent,
		},
	})

	if *bootstrap {
		if err := st.EnsureTables(ctx); err != nil {
			logger.Error("ensure tables", "error", err)
			os.Exit(1)
		}
	}

	if err := seed(ctx, st, *userCount, *postsPerUser, *commentsPerPost); err != nil {
		logger.Error("seed", "error", err)
		os.Exit(1)
	}
	logger.Info("seeded", "users", *userCount, "posts", *userCount**postsPerUser)
}

func seed(ctx context.Context, st store.Store, users, postsPerUser, commentsPerPost int) error {
	usernames := make([]string, 0, users)
	for i := 0; i < users; i++ {
		username := fmt.Sprintf("%s_%03d", words[rand.Intn(len(words))], i)
		u := store.User{
			Username: username,
			Email:    username + "@example.com",
			Password: uuid.NewString(),
		}
		if err := st.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", username, err)
		}
		usernames = append(usernames, username)
	}

	now := time.Now()
	postIDs := make([]string, 0, users*postsPerUser)
	for _, username := range usernames {
		for i := 0; i < postsPerUser; i++ {
			p := store.Post{
				PostID:    uuid.NewString(),
				Username:  username,
				Timestamp: now.Add(-time.Duration(rand.Intn(72)) * time.Hour),
				Content:   sentence(6),
				Likes:     pick(usernames, rand.Intn(len(usernames))),
			}
			if err := st.CreatePost(ctx, p); err != nil {
				return fmt.Errorf("create post for %s: %w", username, err)
			}
			postIDs = append(postIDs, p.PostID)
		}
	}

	for _, postID := range postIDs {
		for i := 0; i < commentsPerPost; i++ {
			c := store.Comment{
				CommentID: uuid.NewString(),
				PostID:    postID,
				Username:  usernames[rand.Intn(len(usernames))],
				Timestamp: now.Add(-time.Duration(rand.Intn(48)) * time.Hour),
				Content:   sentence(4),
			}
			if err := st.CreateComment(ctx, c); err != nil {
				return fmt.Errorf("create comment on %s: %w", postID, err)
			}
		}
	}
	return nil
}

func sentence(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += " "
		}
		out += words[rand.Intn(len(words))]
	}
	return out
}

func pick(from []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range rand.Perm(len(from))[:n] {
		out = append(out, from[i])
	}
	return out
}
