package dynamo

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/warblehq/warble/store"
)

// --- Config ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UsersTable != "warble_users" {
		t.Errorf("expected UsersTable 'warble_users', got %q", cfg.UsersTable)
	}
	if cfg.PostsTable != "warble_posts" {
		t.Errorf("expected PostsTable 'warble_posts', got %q", cfg.PostsTable)
	}
	if cfg.CommentsTable != "warble_comments" {
		t.Errorf("expected CommentsTable 'warble_comments', got %q", cfg.CommentsTable)
	}
}

func TestConfigValidate_Defaults(t *testing.T) {
	cfg := Config{}
	cfg.validate()

	if cfg.UsersTable == "" || cfg.PostsTable == "" || cfg.CommentsTable == "" {
		t.Error("expected empty table names to get defaults")
	}
	if cfg.Limits.MaxPostContent <= 0 || cfg.Limits.MaxCommentContent <= 0 {
		t.Error("expected zero limits to get defaults")
	}
}

// --- Marshal round trips ---

func TestPostItem_RoundTrip(t *testing.T) {
	p := store.Post{
		PostID:           "p1",
		Username:         "alice",
		Timestamp:        time.Date(2024, 6, 1, 12, 30, 0, 500, time.UTC),
		Content:          "hello",
		Likes:            []string{"bob", "carol"},
		NumberOfComments: 7,
	}

	item, err := postItem(p)
	if err != nil {
		t.Fatalf("postItem: %v", err)
	}

	got := itemPost(item)
	if got.PostID != p.PostID || got.Username != p.Username || got.Content != p.Content {
		t.Errorf("expected %+v, got %+v", p, got)
	}
	if !got.Timestamp.Equal(p.Timestamp) {
		t.Errorf("expected timestamp %v, got %v", p.Timestamp, got.Timestamp)
	}
	if got.NumberOfComments != 7 {
		t.Errorf("expected 7 comments, got %d", got.NumberOfComments)
	}
	if len(got.Likes) != 2 || got.Likes[0] != "bob" || got.Likes[1] != "carol" {
		t.Errorf("expected likes [bob carol], got %v", got.Likes)
	}
}

func TestPostItem_EmptyLikes(t *testing.T) {
	item, err := postItem(store.Post{PostID: "p1", Username: "alice"})
	if err != nil {
		t.Fatalf("postItem: %v", err)
	}
	got := itemPost(item)
	if len(got.Likes) != 0 {
		t.Errorf("expected no likes, got %v", got.Likes)
	}
}

func TestUserItem_RoundTrip(t *testing.T) {
	u := store.User{Username: "alice", Email: "a@example.com", Password: "pw"}
	if got := itemUser(userItem(u)); got != u {
		t.Errorf("expected %+v, got %+v", u, got)
	}
}

func TestCommentItem_RoundTrip(t *testing.T) {
	c := store.Comment{
		CommentID: "c1",
		PostID:    "p1",
		Username:  "alice",
		Timestamp: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Content:   "nice",
	}
	got := itemComment(commentItem(c))
	if got.CommentID != c.CommentID || got.PostID != c.PostID || got.Username != c.Username || got.Content != c.Content {
		t.Errorf("expected %+v, got %+v", c, got)
	}
	if !got.Timestamp.Equal(c.Timestamp) {
		t.Errorf("expected timestamp %v, got %v", c.Timestamp, got.Timestamp)
	}
}

func TestIntAttr(t *testing.T) {
	tests := []struct {
		name string
		item map[string]types.AttributeValue
		want int
	}{
		{"valid", map[string]types.AttributeValue{"n": &types.AttributeValueMemberN{Value: "42"}}, 42},
		{"negative", map[string]types.AttributeValue{"n": &types.AttributeValueMemberN{Value: "-3"}}, -3},
		{"corrupt number", map[string]types.AttributeValue{"n": &types.AttributeValueMemberN{Value: "4x"}}, 0},
		{"wrong type", map[string]types.AttributeValue{"n": &types.AttributeValueMemberS{Value: "42"}}, 0},
		{"absent", map[string]types.AttributeValue{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intAttr(tt.item, "n"); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

// --- Feed sort key ---

func TestFormatTS_LexicographicOrder(t *testing.T) {
	// The stored format keeps trailing zeros, so lexicographic order matches
	// chronological order even across differing fractional parts.
	times := []time.Time{
		time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 12, 0, 0, 150_000_000, time.UTC),
		time.Date(2024, 6, 1, 12, 0, 0, 500_000_000, time.UTC),
		time.Date(2024, 6, 1, 12, 0, 0, 510_000_000, time.UTC),
		time.Date(2024, 6, 1, 12, 0, 1, 0, time.UTC),
	}

	for i := 1; i < len(times); i++ {
		a, b := formatTS(times[i-1]), formatTS(times[i])
		if !(a < b) {
			t.Errorf("expected %q < %q", a, b)
		}
	}
}

func TestFeedSK_Tiebreaker(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := feedSK(store.Post{PostID: "p1", Timestamp: ts})
	b := feedSK(store.Post{PostID: "p2", Timestamp: ts})
	if !(a < b) {
		t.Errorf("expected %q < %q for equal timestamps", a, b)
	}
}

// --- Error mapping ---

func TestMapTransactError_ByIndex(t *testing.T) {
	items := []txItem{
		{err: store.ErrUserNotFound},
		{err: store.ErrPostNotFound},
		{err: store.ErrDuplicateKey},
	}

	tests := []struct {
		name     string
		reasons  []types.CancellationReason
		expected error
	}{
		{
			name: "first check fails",
			reasons: []types.CancellationReason{
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("None")},
				{Code: aws.String("None")},
			},
			expected: store.ErrUserNotFound,
		},
		{
			name: "second check fails",
			reasons: []types.CancellationReason{
				{Code: aws.String("None")},
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("None")},
			},
			expected: store.ErrPostNotFound,
		},
		{
			name: "put condition fails",
			reasons: []types.CancellationReason{
				{Code: aws.String("None")},
				{Code: aws.String("None")},
				{Code: aws.String("ConditionalCheckFailed")},
			},
			expected: store.ErrDuplicateKey,
		},
		{
			name: "both references missing, user error wins",
			reasons: []types.CancellationReason{
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("ConditionalCheckFailed")},
				{Code: aws.String("None")},
			},
			expected: store.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapTransactError(&types.TransactionCanceledException{
				CancellationReasons: tt.reasons,
			}, items)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestMapTransactError_PassThrough(t *testing.T) {
	if err := mapTransactError(nil, nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	plain := errors.New("throttled")
	if err := mapTransactError(plain, nil); !errors.Is(err, plain) {
		t.Errorf("expected pass-through, got %v", err)
	}
}

func TestCondFailAs(t *testing.T) {
	mapped := condFailAs(&types.ConditionalCheckFailedException{}, store.ErrDuplicateKey)
	if !errors.Is(mapped, store.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", mapped)
	}

	plain := errors.New("socket closed")
	if err := condFailAs(plain, store.ErrDuplicateKey); !errors.Is(err, plain) {
		t.Errorf("expected pass-through, got %v", err)
	}

	if err := condFailAs(nil, store.ErrDuplicateKey); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

// --- Keys ---

func TestKeys(t *testing.T) {
	if v, ok := userKey("alice")["username"].(*types.AttributeValueMemberS); !ok || v.Value != "alice" {
		t.Error("expected username key 'alice'")
	}
	if v, ok := postKey("p1")["post_id"].(*types.AttributeValueMemberS); !ok || v.Value != "p1" {
		t.Error("expected post key 'p1'")
	}
	if v, ok := commentKey("c1")["comment_id"].(*types.AttributeValueMemberS); !ok || v.Value != "c1" {
		t.Error("expected comment key 'c1'")
	}
}

// --- Interface compliance ---

func TestNewStore(t *testing.T) {
	s := New(nil, Config{})
	if s == nil {
		t.Fatal("expected non-nil Store")
	}
	var _ store.Store = s
}
