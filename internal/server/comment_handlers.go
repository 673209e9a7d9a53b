package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Desc        string `json:"desc"`
	Slug        string `json:"slug"`
	Parent      *uint  `json:"parent"`
	ReplyOnUser *uint  `json:"replyOnUser"`
}

type updateCommentRequest struct {
	Desc string `json:"desc"`
}

type approvalRequest struct {
	Check *bool `json:"check"`
}

// CreateComment godoc
// @Summary Comment on a post
// @Description The comment is stored unapproved and stays hidden until moderated.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:        user.ID,
		Slug:          req.Slug,
		Desc:          req.Desc,
		ParentID:      req.Parent,
		ReplyOnUserID: req.ReplyOnUser,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment godoc
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Param request body updateCommentRequest true "New text"
// @Success 200 {object} models.Comment
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{commentId} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}

	var req updateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    user.ID,
		CommentID: commentID,
		Desc:      req.Desc,
	})
	if err != nil {
		return err
	}
	return c.JSON(comment)
}

// DeleteComment godoc
// @Summary Delete a comment and its direct replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}

	if err := s.commentService.DeleteComment(c.UserContext(), commentID); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Comment is deleted successfully"})
}

// SetCommentApproval godoc
// @Summary Approve or hide a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Param request body approvalRequest true "Moderation flag"
// @Success 200 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{commentId}/check [put]
func (s *Server) SetCommentApproval(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}

	var req approvalRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	if req.Check == nil {
		return models.NewValidationError("check is required")
	}

	comment, err := s.commentService.SetApproval(c.UserContext(), commentID, *req.Check)
	if err != nil {
		return err
	}
	return c.JSON(comment)
}
