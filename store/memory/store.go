// Package memory implements the warble Store in process memory. It exists
// for local development and tests and mirrors the DynamoDB backend's
// semantics exactly: same errors, same reference checks, same cascade order.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warblehq/warble/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps the three collections in mutex-guarded maps.
type Store struct {
	mu       sync.RWMutex
	limits   store.Limits
	users    map[string]store.User
	posts    map[string]store.Post
	comments map[string]store.Comment
}

// New creates an empty in-memory store enforcing the given limits.
func New(limits store.Limits) *Store {
	limits.Validate()
	return &Store{
		limits:   limits,
		users:    make(map[string]store.User),
		posts:    make(map[string]store.Post),
		comments: make(map[string]store.Comment),
	}
}

func (s *Store) CreateUser(ctx context.Context, u store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return store.ErrDuplicateKey
	}
	s.users[u.Username] = u
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; !ok {
		return store.ErrUserNotFound
	}
	s.users[u.Username] = u
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return store.ErrUserNotFound
	}

	// Children first: comments of each owned post, the posts, then comments
	// authored elsewhere, then the user.
	for postID, p := range s.posts {
		if p.Username != username {
			continue
		}
		s.deleteCommentsOfPostLocked(postID)
		delete(s.posts, postID)
	}
	for commentID, c := range s.comments {
		if c.Username != username {
			continue
		}
		delete(s.comments, commentID)
		// The comment lived on someone else's surviving post; keep that
		// post's counter honest.
		if p, ok := s.posts[c.PostID]; ok {
			p.NumberOfComments--
			s.posts[c.PostID] = p
		}
	}
	delete(s.users, username)
	return nil
}

func (s *Store) CreatePost(ctx context.Context, p store.Post) error {
	if err := s.limits.CheckPost(p.Content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.Username]; !ok {
		return store.ErrUserNotFound
	}
	if _, ok := s.posts[p.PostID]; ok {
		return store.ErrDuplicateKey
	}
	p.Likes = cloneLikes(p.Likes)
	s.posts[p.PostID] = p
	return nil
}

func (s *Store) GetPost(ctx context.Context, postID string) (store.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[postID]
	if !ok {
		return store.Post{}, store.ErrPostNotFound
	}
	p.Likes = cloneLikes(p.Likes)
	return p, nil
}

func (s *Store) PostsOfUser(ctx context.Context, username string) ([]store.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[username]; !ok {
		return nil, store.ErrUserNotFound
	}

	posts := make([]store.Post, 0)
	for _, p := range s.posts {
		if p.Username == username {
			p.Likes = cloneLikes(p.Likes)
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].PostID < posts[j].PostID })
	return posts, nil
}

func (s *Store) RecentPosts(ctx context.Context, count int) ([]store.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count < 1 {
		return []store.Post{}, nil
	}
	if len(s.posts) == 0 {
		return nil, store.ErrPostNotFound
	}

	posts := make([]store.Post, 0, len(s.posts))
	for _, p := range s.posts {
		p.Likes = cloneLikes(p.Likes)
		posts = append(posts, p)
	}
	// Newest first, post id as tiebreaker to keep ties deterministic, same as
	// the feed index sort key.
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Timestamp.Equal(posts[j].Timestamp) {
			return posts[i].Timestamp.After(posts[j].Timestamp)
		}
		return posts[i].PostID > posts[j].PostID
	})
	if count < len(posts) {
		posts = posts[:count]
	}
	return posts, nil
}

func (s *Store) UpdatePost(ctx context.Context, p store.Post) error {
	if err := s.limits.CheckPost(p.Content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.PostID]; !ok {
		return store.ErrPostNotFound
	}
	p.Likes = cloneLikes(p.Likes)
	s.posts[p.PostID] = p
	return nil
}

func (s *Store) DeletePost(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return store.ErrPostNotFound
	}
	s.deleteCommentsOfPostLocked(postID)
	delete(s.posts, postID)
	return nil
}

func (s *Store) CreateComment(ctx context.Context, c store.Comment) error {
	if err := s.limits.CheckComment(c.Content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Author before post, so with both missing the user error wins.
	if _, ok := s.users[c.Username]; !ok {
		return store.ErrUserNotFound
	}
	p, ok := s.posts[c.PostID]
	if !ok {
		return store.ErrPostNotFound
	}
	if _, ok := s.comments[c.CommentID]; ok {
		return store.ErrDuplicateKey
	}

	s.comments[c.CommentID] = c
	p.NumberOfComments++
	s.posts[c.PostID] = p
	return nil
}

func (s *Store) GetComment(ctx context.Context, commentID string) (store.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[commentID]
	if !ok {
		return store.Comment{}, store.ErrCommentNotFound
	}
	return c, nil
}

func (s *Store) CommentsOfPost(ctx context.Context, postID string) ([]store.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.posts[postID]; !ok {
		return nil, store.ErrPostNotFound
	}

	comments := make([]store.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CommentID < comments[j].CommentID })
	return comments, nil
}

func (s *Store) CommentsOfUser(ctx context.Context, username string) ([]store.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]store.Comment, 0)
	for _, c := range s.comments {
		if c.Username == username {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CommentID < comments[j].CommentID })
	return comments, nil
}

func (s *Store) UpdateComment(ctx context.Context, c store.Comment) error {
	if err := s.limits.CheckComment(c.Content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[c.CommentID]; !ok {
		return store.ErrCommentNotFound
	}
	s.comments[c.CommentID] = c
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return store.ErrCommentNotFound
	}
	delete(s.comments, commentID)

	if p, ok := s.posts[c.PostID]; ok {
		p.NumberOfComments--
		s.posts[c.PostID] = p
	}
	return nil
}

// deleteCommentsOfPostLocked removes all comments on the post. Callers hold
// the write lock.
func (s *Store) deleteCommentsOfPostLocked(postID string) {
	for commentID, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, commentID)
		}
	}
}

func cloneLikes(likes []string) []string {
	if likes == nil {
		return nil
	}
	out := make([]string, len(likes))
	copy(out, likes)
	return out
}
