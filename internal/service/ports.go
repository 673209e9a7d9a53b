package service

import (
	"context"
	"mime/multipart"
	"time"
)

// Feed event types published to live feed subscribers of a post.
const (
	EventCommentCreated  = "comment.created"
	EventCommentUpdated  = "comment.updated"
	EventCommentDeleted  = "comment.deleted"
	EventCommentApproved = "comment.approved"
	EventPostDeleted     = "post.deleted"
)

// FeedPublisher fans post-scoped events out to live subscribers.
type FeedPublisher interface {
	Publish(ctx context.Context, postID uint, eventType string, payload any)
}

// Uploads stores a single uploaded image and returns its file name.
type Uploads interface {
	Save(fh *multipart.FileHeader) (string, error)
}

// FileRemover deletes a stored file without blocking the caller.
type FileRemover interface {
	Remove(filename string)
}

// Revoker blacklists a token id until it would have expired.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

func publish(ctx context.Context, feed FeedPublisher, postID uint, eventType string, payload any) {
	if feed != nil {
		feed.Publish(ctx, postID, eventType, payload)
	}
}

func removeFile(r FileRemover, name string) {
	if r != nil && name != "" {
		r.Remove(name)
	}
}
