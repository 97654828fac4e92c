// Package dynamo implements the warble Store on DynamoDB.
//
// Each collection lives in its own table. Referential checks on create run as
// condition checks inside a single TransactWriteItems call, so a parent
// deleted concurrently cancels the whole write. Secondary lookups (posts of a
// user, comments of a post or user, the feed) go through global secondary
// indexes. Cascading deletes are multi-request and therefore not atomic;
// children are always removed before their parent.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/warblehq/warble/store"
)

// Index names on the posts and comments tables.
const (
	indexByUsername = "by_username"
	indexByPost     = "by_post"
	indexFeed       = "feed"
)

// feedPartition is the constant partition key of the feed index. All posts
// share it so a single descending query yields the reverse-chronological feed.
const feedPartition = "FEED"

// batchMax is the DynamoDB BatchWriteItem request limit.
const batchMax = 25

var _ store.Store = (*Store)(nil)

// Store is the DynamoDB-backed implementation of store.Store. It is stateless
// apart from the shared client and safe for concurrent use.
type Store struct {
	client *dynamodb.Client
	config Config
}

// New creates a Store using the given client.
func New(client *dynamodb.Client, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// PK is a DynamoDB primary key.
type PK map[string]types.AttributeValue

func userKey(username string) PK {
	return PK{"username": &types.AttributeValueMemberS{Value: username}}
}

func postKey(postID string) PK {
	return PK{"post_id": &types.AttributeValueMemberS{Value: postID}}
}

func commentKey(commentID string) PK {
	return PK{"comment_id": &types.AttributeValueMemberS{Value: commentID}}
}

// txItem pairs a transaction write item with the error to report when that
// item's condition check fails.
type txItem struct {
	item types.TransactWriteItem
	err  error
}

// transactWrite executes the items in one transaction and maps a cancelled
// condition check back to the error registered for the failing item. Items
// are ordered by the caller, so with several failing checks the first one
// wins; that is what gives user-before-post error precedence on comment
// creation.
func (s *Store) transactWrite(ctx context.Context, items []txItem) error {
	writes := make([]types.TransactWriteItem, len(items))
	for i, it := range items {
		writes[i] = it.item
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})

	return mapTransactError(err, items)
}

// mapTransactError resolves a TransactionCanceledException to the typed error
// of the first item whose condition failed.
func mapTransactError(err error, items []txItem) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
				continue
			}
			if i < len(items) && items[i].err != nil {
				return items[i].err
			}
		}
	}

	return err
}

// condFailAs maps a single-item conditional check failure to mapped, leaving
// every other error untouched.
func condFailAs(err error, mapped error) error {
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return mapped
	}
	return err
}

// exists reports whether a record with the given key is present. Only the key
// attribute is fetched.
func (s *Store) exists(ctx context.Context, table string, key PK, keyAttr string) (bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(table),
		Key:                  key,
		ProjectionExpression: aws.String("#k"),
		ExpressionAttributeNames: map[string]string{
			"#k": keyAttr,
		},
	})
	if err != nil {
		return false, err
	}
	return result.Item != nil, nil
}

func (s *Store) userExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, s.config.UsersTable, userKey(username), "username")
}

func (s *Store) postExists(ctx context.Context, postID string) (bool, error) {
	return s.exists(ctx, s.config.PostsTable, postKey(postID), "post_id")
}

// userCheck is the reference condition check asserting a user exists.
func (s *Store) userCheck(username string) txItem {
	return txItem{
		item: types.TransactWriteItem{
			ConditionCheck: &types.ConditionCheck{
				TableName:           aws.String(s.config.UsersTable),
				Key:                 userKey(username),
				ConditionExpression: aws.String("attribute_exists(username)"),
			},
		},
		err: store.ErrUserNotFound,
	}
}

// queryIndex runs a paginated query against a GSI and returns the raw items.
func (s *Store) queryIndex(ctx context.Context, table, index, keyAttr, keyValue string) ([]map[string]types.AttributeValue, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": keyAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: keyValue},
		},
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// batchDelete removes the given keys from a table in chunks, retrying
// unprocessed entries until the batch drains.
func (s *Store) batchDelete(ctx context.Context, table string, keys []PK) error {
	for start := 0; start < len(keys); start += batchMax {
		end := start + batchMax
		if end > len(keys) {
			end = len(keys)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}

		pending := map[string][]types.WriteRequest{table: requests}
		for len(pending[table]) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: pending,
			})
			if err != nil {
				return fmt.Errorf("batch delete %s: %w", table, err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}
