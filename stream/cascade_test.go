package stream_test

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/warblehq/warble/stream"
)

func TestNewHandler(t *testing.T) {
	// Test with nil store and logger (should not panic)
	h := stream.NewHandler(nil, nil)
	if h == nil {
		t.Fatal("expected non-nil Handler")
	}
}

func TestKeyAttr(t *testing.T) {
	keys := map[string]events.DynamoDBAttributeValue{
		"username": events.NewStringAttribute("alice"),
		"count":    events.NewNumberAttribute("3"),
	}

	if got := stream.KeyAttr(keys, "username"); got != "alice" {
		t.Errorf("expected 'alice', got %q", got)
	}
	if got := stream.KeyAttr(keys, "post_id"); got != "" {
		t.Errorf("expected empty string for absent key, got %q", got)
	}
	if got := stream.KeyAttr(keys, "count"); got != "" {
		t.Errorf("expected empty string for non-string key, got %q", got)
	}
}

func TestKeyAttr_Nil(t *testing.T) {
	if got := stream.KeyAttr(nil, "username"); got != "" {
		t.Errorf("expected empty string for nil keys, got %q", got)
	}
}
