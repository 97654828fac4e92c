package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EnsureTables creates the three tables and their indexes if they do not
// exist yet and waits until they are active. Meant for development and test
// environments; production tables are usually provisioned out of band.
func (s *Store) EnsureTables(ctx context.Context) error {
	stringAttrs := func(names ...string) []types.AttributeDefinition {
		defs := make([]types.AttributeDefinition, 0, len(names))
		for _, name := range names {
			defs = append(defs, types.AttributeDefinition{
				AttributeName: aws.String(name),
				AttributeType: types.ScalarAttributeTypeS,
			})
		}
		return defs
	}

	tables := []*dynamodb.CreateTableInput{
		{
			TableName: aws.String(s.config.UsersTable),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("username"), KeyType: types.KeyTypeHash},
			},
			AttributeDefinitions: stringAttrs("username"),
			BillingMode:          types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(s.config.PostsTable),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("post_id"), KeyType: types.KeyTypeHash},
			},
			AttributeDefinitions: stringAttrs("post_id", "username", "feed_pk", "feed_sk"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				{
					IndexName: aws.String(indexByUsername),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("username"), KeyType: types.KeyTypeHash},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				},
				{
					IndexName: aws.String(indexFeed),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("feed_pk"), KeyType: types.KeyTypeHash},
						{AttributeName: aws.String("feed_sk"), KeyType: types.KeyTypeRange},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(s.config.CommentsTable),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("comment_id"), KeyType: types.KeyTypeHash},
			},
			AttributeDefinitions: stringAttrs("comment_id", "post_id", "username"),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				{
					IndexName: aws.String(indexByPost),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("post_id"), KeyType: types.KeyTypeHash},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				},
				{
					IndexName: aws.String(indexByUsername),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("username"), KeyType: types.KeyTypeHash},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	}

	for _, input := range tables {
		_, err := s.client.CreateTable(ctx, input)
		if err != nil {
			var exists *types.ResourceInUseException
			if !errors.As(err, &exists) {
				return fmt.Errorf("create table %s: %w", *input.TableName, err)
			}
		}
	}

	for _, table := range []string{s.config.UsersTable, s.config.PostsTable, s.config.CommentsTable} {
		waiter := dynamodb.NewTableExistsWaiter(s.client)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table),
		}, 2*time.Minute); err != nil {
			return fmt.Errorf("wait for table %s: %w", table, err)
		}
	}
	return nil
}

// DeleteTables drops the three tables. Used by integration tests.
func (s *Store) DeleteTables(ctx context.Context) error {
	for _, table := range []string{s.config.UsersTable, s.config.PostsTable, s.config.CommentsTable} {
		_, err := s.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
			TableName: aws.String(table),
		})
		if err != nil {
			return fmt.Errorf("delete table %s: %w", table, err)
		}
	}
	return nil
}
