package store

import (
	"errors"
	"strings"
	"testing"
)

func TestLimitsCheck(t *testing.T) {
	l := DefaultLimits()

	if err := l.CheckPost(strings.Repeat("x", 280)); err != nil {
		t.Fatalf("post at limit: %v", err)
	}
	if err := l.CheckPost(strings.Repeat("x", 281)); !errors.Is(err, ErrContentTooLong) {
		t.Fatalf("post over limit: got %v, want ErrContentTooLong", err)
	}
	if err := l.CheckComment(strings.Repeat("x", 240)); err != nil {
		t.Fatalf("comment at limit: %v", err)
	}
	if err := l.CheckComment(strings.Repeat("x", 241)); !errors.Is(err, ErrContentTooLong) {
		t.Fatalf("comment over limit: got %v, want ErrContentTooLong", err)
	}
}

func TestLimitsValidateClamps(t *testing.T) {
	var l Limits
	l.Validate()
	if l != DefaultLimits() {
		t.Fatalf("got %+v, want defaults", l)
	}

	l = Limits{MaxPostContent: 500, MaxCommentContent: -1}
	l.Validate()
	if l.MaxPostContent != 500 || l.MaxCommentContent != 240 {
		t.Fatalf("got %+v", l)
	}
}
