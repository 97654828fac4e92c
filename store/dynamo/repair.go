package dynamo

import "context"

// PurgeUserChildren re-runs the user cascade without touching the user record
// itself. The stream repair handler calls this after observing a user REMOVE,
// so posts and comments left behind by an interrupted cascade get cleaned up.
// Idempotent: purging a user with no remaining children is a no-op.
func (s *Store) PurgeUserChildren(ctx context.Context, username string) error {
	return s.deleteUserChildren(ctx, username)
}

// PurgePostComments removes any comments still referencing the post.
// Idempotent, same role as PurgeUserChildren for post REMOVE events.
func (s *Store) PurgePostComments(ctx context.Context, postID string) error {
	return s.deleteCommentsOfPost(ctx, postID)
}
