package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	SetCheck(ctx context.Context, id uint, check bool) (*models.Comment, error)
	DeleteByID(ctx context.Context, id uint) (*models.Comment, error)
	DeleteByParent(ctx context.Context, parentID uint) (int64, error)
	DeleteByPost(ctx context.Context, postID uint) (int64, error)
	ListApprovedByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment was not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) SetCheck(ctx context.Context, id uint, check bool) (*models.Comment, error) {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(comment).Update("checked", check).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	comment.Check = check
	return comment, nil
}

// DeleteByID removes a single comment and returns it. Replies are left to
// the caller.
func (r *commentRepository) DeleteByID(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Comment was not found")
	}
	return comment, nil
}

// DeleteByParent removes the direct replies of parentID.
func (r *commentRepository) DeleteByParent(ctx context.Context, parentID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteByPost removes every comment of postID at any depth.
func (r *commentRepository) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// ListApprovedByPost returns the approved comments of a post, oldest first,
// each with its owner's id, name and avatar.
func (r *commentRepository) ListApprovedByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListApprovedByPost", "comments")
	defer span.End()
	defer observability.TrackQuery("list_approved", "comments")()

	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User", ownerProjection("id", "name", "avatar")).
		Where(map[string]interface{}{"post_id": postID, "checked": true}).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
