package service

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Placeholder values of a freshly created post.
const (
	PlaceholderTitle   = "sample title"
	PlaceholderCaption = "sample caption"
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	comments    *CommentService
	uploads     Uploads
	remover     FileRemover
	feed        FeedPublisher
}

type UpdatePostInput struct {
	Slug     string
	Document string
	Photo    *multipart.FileHeader
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	comments *CommentService,
	uploads Uploads,
	remover FileRemover,
	feed FeedPublisher,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		comments:    comments,
		uploads:     uploads,
		remover:     remover,
		feed:        feed,
	}
}

// CreatePost stores a placeholder post owned by userID under a random slug.
func (s *PostService) CreatePost(ctx context.Context, userID uint) (*models.Post, error) {
	post := &models.Post{
		Title:      PlaceholderTitle,
		Caption:    PlaceholderCaption,
		Slug:       uuid.NewString(),
		Body:       models.EmptyDocument(),
		Photo:      "",
		Tags:       []string{},
		Categories: []string{},
		UserID:     userID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func decodePostDocument(raw string) (*models.PostDocument, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, models.NewValidationError("Post document is required")
	}

	var doc models.PostDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, models.NewValidationError("Post document is not valid JSON")
	}
	if doc.Body != nil {
		if err := doc.Body.Validate(); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	return &doc, nil
}

// UpdatePost applies the submitted document to the post. Without an uploaded
// photo the previous one is removed and cleared.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}

	doc, err := decodePostDocument(in.Document)
	if err != nil {
		return nil, err
	}

	if doc.Slug != "" && doc.Slug != post.Slug {
		if err := validation.ValidatePostSlug(doc.Slug); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		taken, err := s.postRepo.SlugTaken(ctx, doc.Slug, post.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewValidationError("Slug is already in use")
		}
		post.Slug = doc.Slug
	}
	if doc.Title != "" {
		post.Title = doc.Title
	}
	if doc.Caption != "" {
		post.Caption = doc.Caption
	}
	if doc.Body != nil {
		post.Body = *doc.Body
	}
	if len(doc.Tags) > 0 {
		post.Tags = doc.Tags
	}
	if len(doc.Categories) > 0 {
		post.Categories = doc.Categories
	}

	previous := post.Photo
	post.Photo = ""
	if in.Photo != nil {
		if s.uploads == nil {
			return nil, models.NewValidationError("Uploads are not enabled")
		}
		name, err := s.uploads.Save(in.Photo)
		if err != nil {
			return nil, err
		}
		post.Photo = name
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		removeFile(s.remover, post.Photo)
		return nil, err
	}
	removeFile(s.remover, previous)

	return post, nil
}

// DeletePost removes the post, then every comment on it, then its photo.
func (s *PostService) DeletePost(ctx context.Context, slug string) error {
	span, ctx := observability.NewSpan(ctx, "post.delete")
	defer span.End()
	span.AddAttributes(attribute.String("inkwell.post.slug", slug))

	post, err := s.postRepo.DeleteBySlug(ctx, slug)
	if err != nil {
		if !models.IsNotFound(err) {
			span.SetError(err)
		}
		return err
	}

	removed, err := s.commentRepo.DeleteByPost(ctx, post.ID)
	if err != nil {
		span.SetError(err)
		return err
	}
	span.AddAttributes(attribute.Int64("inkwell.cascade.comments", removed))
	observability.CascadeDeletes.WithLabelValues("post").Add(float64(removed))

	removeFile(s.remover, post.Photo)
	publish(ctx, s.feed, post.ID, EventPostDeleted, map[string]any{
		"_id":  post.ID,
		"slug": post.Slug,
	})
	return nil
}

// GetPost returns the post with its approved comment tree attached.
func (s *PostService) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	tree, err := s.comments.AssembleTree(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Comments = tree
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.List(ctx)
}
