package dynamo

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/warblehq/warble/store"
)

// CreateComment inserts a new comment. One transaction carries the ordered
// reference checks and the insert: the author check comes first, then the
// post's comment counter increment (whose existence condition doubles as the
// post check), then the conditional put. With both references missing the
// author error wins.
func (s *Store) CreateComment(ctx context.Context, c store.Comment) error {
	if err := s.config.Limits.CheckComment(c.Content); err != nil {
		return err
	}

	return s.transactWrite(ctx, []txItem{
		s.userCheck(c.Username),
		{
			item: types.TransactWriteItem{
				Update: &types.Update{
					TableName:           aws.String(s.config.PostsTable),
					Key:                 postKey(c.PostID),
					UpdateExpression:    aws.String("ADD number_of_comments :one"),
					ConditionExpression: aws.String("attribute_exists(post_id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":one": &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			err: store.ErrPostNotFound,
		},
		{
			item: types.TransactWriteItem{
				Put: &types.Put{
					TableName:           aws.String(s.config.CommentsTable),
					Item:                commentItem(c),
					ConditionExpression: aws.String("attribute_not_exists(comment_id)"),
				},
			},
			err: store.ErrDuplicateKey,
		},
	})
}

// GetComment fetches a comment by id.
func (s *Store) GetComment(ctx context.Context, commentID string) (store.Comment, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.CommentsTable),
		Key:       commentKey(commentID),
	})
	if err != nil {
		return store.Comment{}, err
	}
	if result.Item == nil {
		return store.Comment{}, store.ErrCommentNotFound
	}
	return itemComment(result.Item), nil
}

// CommentsOfPost returns all comments on the post.
func (s *Store) CommentsOfPost(ctx context.Context, postID string) ([]store.Comment, error) {
	ok, err := s.postExists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrPostNotFound
	}

	items, err := s.queryIndex(ctx, s.config.CommentsTable, indexByPost, "post_id", postID)
	if err != nil {
		return nil, err
	}

	comments := make([]store.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, itemComment(item))
	}
	return comments, nil
}

// CommentsOfUser returns all comments authored by username. Unknown users
// yield an empty slice; unlike CommentsOfPost there is no existence check.
func (s *Store) CommentsOfUser(ctx context.Context, username string) ([]store.Comment, error) {
	items, err := s.queryIndex(ctx, s.config.CommentsTable, indexByUsername, "username", username)
	if err != nil {
		return nil, err
	}

	comments := make([]store.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, itemComment(item))
	}
	return comments, nil
}

// UpdateComment replaces the record keyed by c.CommentID.
func (s *Store) UpdateComment(ctx context.Context, c store.Comment) error {
	if err := s.config.Limits.CheckComment(c.Content); err != nil {
		return err
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.CommentsTable),
		Item:                commentItem(c),
		ConditionExpression: aws.String("attribute_exists(comment_id)"),
	})
	return condFailAs(err, store.ErrCommentNotFound)
}

// DeleteComment removes one comment and decrements its post's counter in the
// same transaction. When the post is already gone (a cascade got there first)
// the comment is deleted on its own.
func (s *Store) DeleteComment(ctx context.Context, commentID string) error {
	c, err := s.GetComment(ctx, commentID)
	if err != nil {
		return err
	}

	err = s.transactWrite(ctx, []txItem{
		{
			item: types.TransactWriteItem{
				Delete: &types.Delete{
					TableName:           aws.String(s.config.CommentsTable),
					Key:                 commentKey(commentID),
					ConditionExpression: aws.String("attribute_exists(comment_id)"),
				},
			},
			err: store.ErrCommentNotFound,
		},
		{
			item: types.TransactWriteItem{
				Update: &types.Update{
					TableName:           aws.String(s.config.PostsTable),
					Key:                 postKey(c.PostID),
					UpdateExpression:    aws.String("ADD number_of_comments :neg"),
					ConditionExpression: aws.String("attribute_exists(post_id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":neg": &types.AttributeValueMemberN{Value: "-1"},
					},
				},
			},
			err: store.ErrPostNotFound,
		},
	})
	if errors.Is(err, store.ErrPostNotFound) {
		_, derr := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:           aws.String(s.config.CommentsTable),
			Key:                 commentKey(commentID),
			ConditionExpression: aws.String("attribute_exists(comment_id)"),
		})
		return condFailAs(derr, store.ErrCommentNotFound)
	}
	return err
}

// decrementCommentCount subtracts n from the post's comment counter during a
// cascade. A missing post is not an error; its counter died with it.
func (s *Store) decrementCommentCount(ctx context.Context, postID string, n int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.config.PostsTable),
		Key:                 postKey(postID),
		UpdateExpression:    aws.String("ADD number_of_comments :neg"),
		ConditionExpression: aws.String("attribute_exists(post_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":neg": &types.AttributeValueMemberN{Value: strconv.Itoa(-n)},
		},
	})
	var condFail *types.ConditionalCheckFailedException
	if errors.As(err, &condFail) {
		return nil
	}
	return err
}
