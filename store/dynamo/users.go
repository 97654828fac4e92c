package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/warblehq/warble/store"
)

// CreateUser inserts a new user record keyed by username.
func (s *Store) CreateUser(ctx context.Context, u store.User) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.UsersTable),
		Item:                userItem(u),
		ConditionExpression: aws.String("attribute_not_exists(username)"),
	})
	return condFailAs(err, store.ErrDuplicateKey)
}

// GetUser fetches a user by username.
func (s *Store) GetUser(ctx context.Context, username string) (store.User, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.UsersTable),
		Key:       userKey(username),
	})
	if err != nil {
		return store.User{}, err
	}
	if result.Item == nil {
		return store.User{}, store.ErrUserNotFound
	}
	return itemUser(result.Item), nil
}

// UpdateUser replaces the record keyed by u.Username.
func (s *Store) UpdateUser(ctx context.Context, u store.User) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.UsersTable),
		Item:                userItem(u),
		ConditionExpression: aws.String("attribute_exists(username)"),
	})
	return condFailAs(err, store.ErrUserNotFound)
}

// DeleteUser removes the user and cascades into their posts (each post's
// comments first), then comments they authored on other posts, then the user
// record itself. The waves are separate requests; a crash in between leaves
// children already gone but never a live child ahead of a deleted parent.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	ok, err := s.userExists(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrUserNotFound
	}

	if err := s.deleteUserChildren(ctx, username); err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.UsersTable),
		Key:       userKey(username),
	})
	return err
}

// deleteUserChildren removes everything referencing the user: owned posts
// (each post's comments first) and comments authored on other posts.
func (s *Store) deleteUserChildren(ctx context.Context, username string) error {
	// Posts owned by the user, children first.
	postItems, err := s.queryIndex(ctx, s.config.PostsTable, indexByUsername, "username", username)
	if err != nil {
		return fmt.Errorf("query posts of %s: %w", username, err)
	}
	postKeys := make([]PK, 0, len(postItems))
	for _, item := range postItems {
		postID := stringAttr(item, "post_id")
		if err := s.deleteCommentsOfPost(ctx, postID); err != nil {
			return err
		}
		postKeys = append(postKeys, postKey(postID))
	}
	if err := s.batchDelete(ctx, s.config.PostsTable, postKeys); err != nil {
		return err
	}

	// Comments the user authored elsewhere. Their posts survive the cascade,
	// so each one's counter must come down by the comments it loses.
	commentItems, err := s.queryIndex(ctx, s.config.CommentsTable, indexByUsername, "username", username)
	if err != nil {
		return fmt.Errorf("query comments of %s: %w", username, err)
	}
	commentKeys := make([]PK, 0, len(commentItems))
	lostPerPost := make(map[string]int)
	for _, item := range commentItems {
		commentKeys = append(commentKeys, commentKey(stringAttr(item, "comment_id")))
		lostPerPost[stringAttr(item, "post_id")]++
	}
	if err := s.batchDelete(ctx, s.config.CommentsTable, commentKeys); err != nil {
		return err
	}
	for postID, n := range lostPerPost {
		if err := s.decrementCommentCount(ctx, postID, n); err != nil {
			return err
		}
	}
	return nil
}
