package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postDetail always carries the comment tree, even when it is empty.
type postDetail struct {
	*models.Post
	Comments []models.Comment `json:"comments"`
}

// ListPosts godoc
// @Summary List posts
// @Description All posts, newest first
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

// GetPost godoc
// @Summary Get a post
// @Description The post with its owner and approved comment tree
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}

	comments := post.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return c.JSON(postDetail{Post: post, Comments: comments})
}

// CreatePost godoc
// @Summary Create a placeholder post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	post, err := s.postService.CreatePost(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost godoc
// @Summary Update a post
// @Description Multipart form with a JSON document field and an optional postPicture file. Without a file the current photo is removed.
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param document formData string true "JSON {title, caption, slug, body, tags, categories}"
// @Param postPicture formData file false "Cover image"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	fh, err := optionalFile(c, fieldPostPicture)
	if err != nil {
		return err
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		Slug:     c.Params("slug"),
		Document: c.FormValue(fieldDocument),
		Photo:    fh,
	})
	if err != nil {
		return err
	}
	return c.JSON(post)
}

// DeletePost godoc
// @Summary Delete a post and its comments
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), c.Params("slug")); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Post successfully deleted"})
}
