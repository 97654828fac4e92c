package store

import "errors"

var (
	// ErrDuplicateKey is returned when a create collides with an existing
	// primary key.
	ErrDuplicateKey = errors.New("warble: duplicate key")

	// ErrUserNotFound is returned when a referenced or targeted user is absent.
	ErrUserNotFound = errors.New("warble: user not found")

	// ErrPostNotFound is returned when a referenced or targeted post is absent.
	ErrPostNotFound = errors.New("warble: post not found")

	// ErrCommentNotFound is returned when a targeted comment is absent.
	ErrCommentNotFound = errors.New("warble: comment not found")

	// ErrContentTooLong is returned when post or comment content exceeds the
	// configured maximum length.
	ErrContentTooLong = errors.New("warble: content too long")
)
