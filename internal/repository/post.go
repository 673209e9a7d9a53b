package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error)
	List(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	DeleteBySlug(ctx context.Context, slug string) (*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func ownerProjection(columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Select(columns)
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Slug is already in use")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePosts(ctx)
	return nil
}

// GetBySlug loads a post with its owner (id, name, avatar, email).
func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetBySlug", "posts")
	defer span.End()
	defer observability.TrackQuery("get_by_slug", "posts")()

	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User", ownerProjection("id", "name", "avatar", "email")).
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// List returns every post, newest first, with the owner's id, name and avatar.
func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	err := cache.Aside(ctx, cache.PostsListKey, &posts, cache.PostsListTTL, func() error {
		defer observability.TrackQuery("list", "posts")()
		return r.db.WithContext(ctx).
			Preload("User", ownerProjection("id", "name", "avatar")).
			Order("created_at DESC").
			Order("id DESC").
			Find(&posts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Slug is already in use")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePosts(ctx)
	return nil
}

// DeleteBySlug removes the post and returns the deleted record. A missing
// slug is a NotFound error and nothing is deleted.
func (r *postRepository) DeleteBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, models.NewInternalError(err)
	}

	res := r.db.WithContext(ctx).Delete(&models.Post{}, post.ID)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Post not found")
	}
	cache.InvalidatePosts(ctx)
	return &post, nil
}
