// Package store defines the warble data model and the Store contract that
// every storage backend implements.
//
// Warble keeps three keyed collections: Users (keyed by username), Posts
// (keyed by post id) and Comments (keyed by comment id). The Store is the only
// place where cross-collection rules are enforced:
//
//   - a post can only be created for an existing user
//   - a comment can only be created for an existing user and an existing post
//     (the user is checked first)
//   - deleting a user deletes that user's posts and comments
//   - deleting a post deletes its comments
//
// Cascades always remove children before their parent, so an interrupted
// cascade can leave childless parents or orphaned grandchildren but never a
// deleted parent observed alongside a live child in the wrong order.
//
// # Errors
//
// Failures are reported through sentinel errors:
//
//   - [ErrDuplicateKey] - primary key collision on create
//   - [ErrUserNotFound], [ErrPostNotFound], [ErrCommentNotFound] - referenced
//     or targeted record is absent
//   - [ErrContentTooLong] - post or comment content exceeds the configured
//     maximum
//
// Use errors.Is to test for them.
//
// # Backends
//
// Two implementations ship with this module: store/dynamo persists to
// DynamoDB and is the production backend; store/memory keeps everything in
// process and exists for local development and tests.
package store
