// Package stream provides the DynamoDB Streams handler that finishes
// interrupted cascades.
//
// Cascading deletes run children-first across several requests, so a process
// crash can leave a deleted user's posts or a deleted post's comments behind.
// This handler watches REMOVE events on the users and posts tables and re-runs
// the child purge for the removed record. Purges are idempotent, so replayed
// stream records are harmless.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/warblehq/warble/store/dynamo"
)

// Handler processes DynamoDB stream events for cascade repair.
type Handler struct {
	store  *dynamo.Store
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(s *dynamo.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// HandleCascadeRepair processes stream events, purging children of removed
// users and posts. Designed to be used as an AWS Lambda handler subscribed to
// the users and posts table streams.
func (h *Handler) HandleCascadeRepair(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	// The record's key attributes tell the source table apart: users are
	// keyed by username, posts by post_id. Comment removals need no repair.
	if username := KeyAttr(record.Change.Keys, "username"); username != "" {
		h.logger.Info("purging children of removed user", "username", username)
		if err := h.store.PurgeUserChildren(ctx, username); err != nil {
			return fmt.Errorf("purge user %s: %w", username, err)
		}
		return nil
	}

	if postID := KeyAttr(record.Change.Keys, "post_id"); postID != "" {
		h.logger.Info("purging comments of removed post", "postID", postID)
		if err := h.store.PurgePostComments(ctx, postID); err != nil {
			return fmt.Errorf("purge post %s: %w", postID, err)
		}
	}

	return nil
}

// KeyAttr extracts a string key attribute from a stream key image, returning
// "" when the attribute is absent or not a string.
func KeyAttr(keys map[string]events.DynamoDBAttributeValue, name string) string {
	v, ok := keys[name]
	if !ok || v.DataType() != events.DataTypeString {
		return ""
	}
	return v.String()
}
