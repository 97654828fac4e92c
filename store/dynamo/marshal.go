package dynamo

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/warblehq/warble/store"
)

// tsLayout is the stored timestamp format. Unlike RFC3339Nano it keeps
// trailing zeros, so the feed index sort key stays lexicographically
// chronological.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

// feedSK is the feed index range key: timestamp first, post id as tiebreaker
// so ordering among equal timestamps is deterministic.
func feedSK(p store.Post) string {
	return formatTS(p.Timestamp) + "#" + p.PostID
}

func userItem(u store.User) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: u.Username},
		"email":    &types.AttributeValueMemberS{Value: u.Email},
		"password": &types.AttributeValueMemberS{Value: u.Password},
	}
}

func itemUser(item map[string]types.AttributeValue) store.User {
	return store.User{
		Username: stringAttr(item, "username"),
		Email:    stringAttr(item, "email"),
		Password: stringAttr(item, "password"),
	}
}

func postItem(p store.Post) (map[string]types.AttributeValue, error) {
	likes, err := attributevalue.MarshalList(p.Likes)
	if err != nil {
		return nil, err
	}

	return map[string]types.AttributeValue{
		"post_id":            &types.AttributeValueMemberS{Value: p.PostID},
		"username":           &types.AttributeValueMemberS{Value: p.Username},
		"ts":                 &types.AttributeValueMemberS{Value: formatTS(p.Timestamp)},
		"content":            &types.AttributeValueMemberS{Value: p.Content},
		"likes":              &types.AttributeValueMemberL{Value: likes},
		"number_of_comments": &types.AttributeValueMemberN{Value: strconv.Itoa(p.NumberOfComments)},
		"feed_pk":            &types.AttributeValueMemberS{Value: feedPartition},
		"feed_sk":            &types.AttributeValueMemberS{Value: feedSK(p)},
	}, nil
}

func itemPost(item map[string]types.AttributeValue) store.Post {
	return store.Post{
		PostID:           stringAttr(item, "post_id"),
		Username:         stringAttr(item, "username"),
		Timestamp:        timeAttr(item, "ts"),
		Content:          stringAttr(item, "content"),
		Likes:            stringListAttr(item, "likes"),
		NumberOfComments: intAttr(item, "number_of_comments"),
	}
}

func commentItem(c store.Comment) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"comment_id": &types.AttributeValueMemberS{Value: c.CommentID},
		"post_id":    &types.AttributeValueMemberS{Value: c.PostID},
		"username":   &types.AttributeValueMemberS{Value: c.Username},
		"ts":         &types.AttributeValueMemberS{Value: formatTS(c.Timestamp)},
		"content":    &types.AttributeValueMemberS{Value: c.Content},
	}
}

func itemComment(item map[string]types.AttributeValue) store.Comment {
	return store.Comment{
		CommentID: stringAttr(item, "comment_id"),
		PostID:    stringAttr(item, "post_id"),
		Username:  stringAttr(item, "username"),
		Timestamp: timeAttr(item, "ts"),
		Content:   stringAttr(item, "content"),
	}
}

func stringAttr(item map[string]types.AttributeValue, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func intAttr(item map[string]types.AttributeValue, key string) int {
	if v, ok := item[key].(*types.AttributeValueMemberN); ok {
		if n, err := strconv.Atoi(v.Value); err == nil {
			return n
		}
	}
	return 0
}

func timeAttr(item map[string]types.AttributeValue, key string) time.Time {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		if t, err := time.Parse(tsLayout, v.Value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func stringListAttr(item map[string]types.AttributeValue, key string) []string {
	v, ok := item[key].(*types.AttributeValueMemberL)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v.Value))
	for _, member := range v.Value {
		if s, ok := member.(*types.AttributeValueMemberS); ok {
			out = append(out, s.Value)
		}
	}
	return out
}
