package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/warblehq/warble/store"
)

// CreatePost inserts a new post after checking the owner exists. Owner check
// and insert run in one transaction, so a concurrently deleted owner cancels
// the write.
func (s *Store) CreatePost(ctx context.Context, p store.Post) error {
	if err := s.config.Limits.CheckPost(p.Content); err != nil {
		return err
	}

	item, err := postItem(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	return s.transactWrite(ctx, []txItem{
		s.userCheck(p.Username),
		{
			item: types.TransactWriteItem{
				Put: &types.Put{
					TableName:           aws.String(s.config.PostsTable),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(post_id)"),
				},
			},
			err: store.ErrDuplicateKey,
		},
	})
}

// GetPost fetches a post by id.
func (s *Store) GetPost(ctx context.Context, postID string) (store.Post, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.PostsTable),
		Key:       postKey(postID),
	})
	if err != nil {
		return store.Post{}, err
	}
	if result.Item == nil {
		return store.Post{}, store.ErrPostNotFound
	}
	return itemPost(result.Item), nil
}

// PostsOfUser returns all posts owned by username.
func (s *Store) PostsOfUser(ctx context.Context, username string) ([]store.Post, error) {
	ok, err := s.userExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrUserNotFound
	}

	items, err := s.queryIndex(ctx, s.config.PostsTable, indexByUsername, "username", username)
	if err != nil {
		return nil, err
	}

	posts := make([]store.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, itemPost(item))
	}
	return posts, nil
}

// RecentPosts returns up to count posts, most recent first. The feed index
// shares one partition key across all posts and sorts on timestamp plus post
// id, so a single descending query is enough.
func (s *Store) RecentPosts(ctx context.Context, count int) ([]store.Post, error) {
	if count < 1 {
		return []store.Post{}, nil
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.config.PostsTable),
		IndexName:              aws.String(indexFeed),
		KeyConditionExpression: aws.String("feed_pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: feedPartition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(count)),
	})
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, store.ErrPostNotFound
	}

	posts := make([]store.Post, 0, len(result.Items))
	for _, item := range result.Items {
		posts = append(posts, itemPost(item))
	}
	return posts, nil
}

// UpdatePost replaces the record keyed by p.PostID.
func (s *Store) UpdatePost(ctx context.Context, p store.Post) error {
	if err := s.config.Limits.CheckPost(p.Content); err != nil {
		return err
	}

	item, err := postItem(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.PostsTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(post_id)"),
	})
	return condFailAs(err, store.ErrPostNotFound)
}

// DeletePost removes the post's comments and then the post record.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	ok, err := s.postExists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrPostNotFound
	}

	if err := s.deleteCommentsOfPost(ctx, postID); err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.PostsTable),
		Key:       postKey(postID),
	})
	return err
}

// deleteCommentsOfPost batch-deletes every comment referencing the post.
func (s *Store) deleteCommentsOfPost(ctx context.Context, postID string) error {
	items, err := s.queryIndex(ctx, s.config.CommentsTable, indexByPost, "post_id", postID)
	if err != nil {
		return fmt.Errorf("query comments of post %s: %w", postID, err)
	}

	keys := make([]PK, 0, len(items))
	for _, item := range items {
		keys = append(keys, commentKey(stringAttr(item, "comment_id")))
	}
	return s.batchDelete(ctx, s.config.CommentsTable, keys)
}
