package store

// Limits holds the content-length bounds applied by every backend. Values are
// supplied by process configuration at construction and never change
// afterwards.
type Limits struct {
	// MaxPostContent is the maximum post content length in bytes.
	// Default: 280
	MaxPostContent int

	// MaxCommentContent is the maximum comment content length in bytes.
	// Default: 240
	MaxCommentContent int
}

// DefaultLimits returns the stock content bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxPostContent:    280,
		MaxCommentContent: 240,
	}
}

// Validate clamps unset values to their defaults.
func (l *Limits) Validate() {
	if l.MaxPostContent <= 0 {
		l.MaxPostContent = 280
	}
	if l.MaxCommentContent <= 0 {
		l.MaxCommentContent = 240
	}
}

// CheckPost reports ErrContentTooLong if content exceeds the post bound.
func (l Limits) CheckPost(content string) error {
	if len(content) > l.MaxPostContent {
		return ErrContentTooLong
	}
	return nil
}

// CheckComment reports ErrContentTooLong if content exceeds the comment bound.
func (l Limits) CheckComment(content string) error {
	if len(content) > l.MaxCommentContent {
		return ErrContentTooLong
	}
	return nil
}
