package store

import (
	"context"
	"time"
)

// User is an account record. Password is stored as an opaque string; the
// store performs no hashing and no view-level redaction.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Post is a short message owned by a user. Likes holds the usernames that
// liked the post; the store does not deduplicate it. NumberOfComments is
// maintained by the store on comment create and delete, but an update's full
// replace writes whatever value the caller supplies.
type Post struct {
	PostID           string    `json:"post_id"`
	Username         string    `json:"username"`
	Timestamp        time.Time `json:"timestamp"`
	Content          string    `json:"content"`
	Likes            []string  `json:"likes"`
	NumberOfComments int       `json:"number_of_comments"`
}

// Comment is a reply to a post.
type Comment struct {
	CommentID string    `json:"comment_id"`
	PostID    string    `json:"post_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// Store is the data-access and consistency layer. Implementations must be
// safe for concurrent use; they hold no mutable state beyond the backing
// storage handle.
type Store interface {
	// CreateUser inserts a new user. Fails with ErrDuplicateKey if the
	// username is taken.
	CreateUser(ctx context.Context, u User) error

	// GetUser fetches a user by username. Fails with ErrUserNotFound.
	GetUser(ctx context.Context, username string) (User, error)

	// UpdateUser replaces the record keyed by u.Username. Fails with
	// ErrUserNotFound if no such user exists.
	UpdateUser(ctx context.Context, u User) error

	// DeleteUser removes the user together with all posts they own (and those
	// posts' comments) and all comments they authored. Fails with
	// ErrUserNotFound. The cascade is children-first and not atomic.
	DeleteUser(ctx context.Context, username string) error

	// CreatePost inserts a new post. Fails with ErrUserNotFound if the owner
	// does not exist, ErrDuplicateKey on a post id collision, and
	// ErrContentTooLong if the content exceeds the configured limit.
	CreatePost(ctx context.Context, p Post) error

	// GetPost fetches a post by id. Fails with ErrPostNotFound.
	GetPost(ctx context.Context, postID string) (Post, error)

	// PostsOfUser returns all posts owned by username, in storage order.
	// Fails with ErrUserNotFound if the user does not exist.
	PostsOfUser(ctx context.Context, username string) ([]Post, error)

	// RecentPosts returns up to count posts, most recent timestamp first.
	// A count below one yields an empty slice. Fails with ErrPostNotFound
	// when there are no posts at all.
	RecentPosts(ctx context.Context, count int) ([]Post, error)

	// UpdatePost replaces the record keyed by p.PostID. Fails with
	// ErrPostNotFound or ErrContentTooLong.
	UpdatePost(ctx context.Context, p Post) error

	// DeletePost removes the post's comments and then the post itself.
	// Fails with ErrPostNotFound.
	DeletePost(ctx context.Context, postID string) error

	// CreateComment inserts a new comment and increments the post's comment
	// counter. The author is checked before the post: fails with
	// ErrUserNotFound, then ErrPostNotFound, then ErrDuplicateKey on a
	// comment id collision. ErrContentTooLong applies as for posts.
	CreateComment(ctx context.Context, c Comment) error

	// GetComment fetches a comment by id. Fails with ErrCommentNotFound.
	GetComment(ctx context.Context, commentID string) (Comment, error)

	// CommentsOfPost returns all comments on the post. Fails with
	// ErrPostNotFound if the post does not exist.
	CommentsOfPost(ctx context.Context, postID string) ([]Comment, error)

	// CommentsOfUser returns all comments authored by username. Unknown
	// usernames yield an empty slice, not an error.
	CommentsOfUser(ctx context.Context, username string) ([]Comment, error)

	// UpdateComment replaces the record keyed by c.CommentID. Fails with
	// ErrCommentNotFound or ErrContentTooLong.
	UpdateComment(ctx context.Context, c Comment) error

	// DeleteComment removes a single comment and decrements the post's
	// comment counter. Fails with ErrCommentNotFound if the comment was
	// already gone.
	DeleteComment(ctx context.Context, commentID string) error
}
