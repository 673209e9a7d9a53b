package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
	feed        FeedPublisher
}

type CreateCommentInput struct {
	UserID        uint
	Slug          string
	Desc          string
	ParentID      *uint
	ReplyOnUserID *uint
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Desc      string
}

// createdEvent is what live subscribers learn about a comment that is still
// awaiting moderation.
type createdEvent struct {
	ID     uint  `json:"_id"`
	PostID uint  `json:"post"`
	Parent *uint `json:"parent"`
}

type deletedEvent struct {
	ID     uint  `json:"_id"`
	PostID uint  `json:"post"`
	Parent *uint `json:"parent"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
	feed FeedPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		isAdmin:     isAdmin,
		feed:        feed,
	}
}

// CreateComment stores a new pending comment on the post addressed by slug.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post was not found")
		}
		return nil, err
	}

	desc := strings.TrimSpace(in.Desc)
	if desc == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if utf8.RuneCountInString(desc) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			if models.IsNotFound(err) {
				return nil, models.NewValidationError("Parent comment was not found")
			}
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, models.NewValidationError("Parent comment belongs to another post")
		}
	}
	if in.ReplyOnUserID != nil {
		if _, err := s.userRepo.GetByID(ctx, *in.ReplyOnUserID); err != nil {
			if models.IsNotFound(err) {
				return nil, models.NewValidationError("Replied-on user was not found")
			}
			return nil, err
		}
	}

	comment := &models.Comment{
		Desc:          desc,
		UserID:        in.UserID,
		PostID:        post.ID,
		ParentID:      in.ParentID,
		ReplyOnUserID: in.ReplyOnUserID,
		Check:         false,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	kind := "top_level"
	if !comment.IsTopLevel() {
		kind = "reply"
	}
	observability.CommentsCreated.WithLabelValues(kind).Inc()

	saved, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.feed, post.ID, EventCommentCreated, createdEvent{
		ID:     saved.ID,
		PostID: saved.PostID,
		Parent: saved.ParentID,
	})
	return saved, nil
}

// UpdateComment replaces the text of a comment. An empty desc keeps the old one.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID {
		allowed := false
		if s.isAdmin != nil {
			allowed, err = s.isAdmin(ctx, in.UserID)
			if err != nil {
				return nil, err
			}
		}
		if !allowed {
			return nil, models.NewUnauthorizedError("You can only update your own comments")
		}
	}

	if in.Desc != "" {
		if utf8.RuneCountInString(in.Desc) > maxCommentLen {
			return nil, models.NewValidationError("Comment too long (max 10000 characters)")
		}
		comment.Desc = in.Desc
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	if comment.Check {
		publish(ctx, s.feed, comment.PostID, EventCommentUpdated, comment)
	}
	return comment, nil
}

// DeleteComment removes a comment and its direct replies. Replies of replies
// are left in place.
func (s *CommentService) DeleteComment(ctx context.Context, commentID uint) error {
	deleted, err := s.commentRepo.DeleteByID(ctx, commentID)
	if err != nil {
		return err
	}

	removed, err := s.commentRepo.DeleteByParent(ctx, deleted.ID)
	if err != nil {
		return err
	}
	observability.CascadeDeletes.WithLabelValues("comment").Add(float64(removed))

	publish(ctx, s.feed, deleted.PostID, EventCommentDeleted, deletedEvent{
		ID:     deleted.ID,
		PostID: deleted.PostID,
		Parent: deleted.ParentID,
	})
	return nil
}

// SetApproval flips the moderation flag of a comment.
func (s *CommentService) SetApproval(ctx context.Context, commentID uint, check bool) (*models.Comment, error) {
	comment, err := s.commentRepo.SetCheck(ctx, commentID, check)
	if err != nil {
		return nil, err
	}

	if comment.Check {
		publish(ctx, s.feed, comment.PostID, EventCommentApproved, comment)
	} else {
		publish(ctx, s.feed, comment.PostID, EventCommentDeleted, deletedEvent{
			ID:     comment.ID,
			PostID: comment.PostID,
			Parent: comment.ParentID,
		})
	}
	return comment, nil
}

// AssembleTree returns the approved top-level comments of a post, newest
// first, each carrying its approved direct replies oldest first.
func (s *CommentService) AssembleTree(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListApprovedByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return BuildReplyTree(comments), nil
}

// BuildReplyTree nests approved comments one level deep. Input is expected in
// creation order. Unapproved comments are skipped along with their replies.
func BuildReplyTree(comments []models.Comment) []models.Comment {
	replies := make(map[uint][]models.Comment)
	var roots []models.Comment

	for _, c := range comments {
		if !c.Check {
			continue
		}
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		c.Replies = []models.Comment{}
		replies[*c.ParentID] = append(replies[*c.ParentID], c)
	}

	tree := make([]models.Comment, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		node := roots[i]
		node.Replies = replies[node.ID]
		if node.Replies == nil {
			node.Replies = []models.Comment{}
		}
		tree = append(tree, node)
	}
	return tree
}
