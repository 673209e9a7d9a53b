package server

import (
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const localFeedPostID = "feedPostID"

// PostFeedUpgrade resolves the post before the websocket handshake so that
// an unknown slug answers 404 and a plain HTTP request answers 426.
func (s *Server) PostFeedUpgrade(c *fiber.Ctx) error {
	post, err := s.postRepo.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	if !s.flags.Enabled(featureflags.LiveFeed, post.ID) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Live feed is disabled for this post")
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(localFeedPostID, post.ID)
	return c.Next()
}

// PostFeedHandler godoc
// @Summary Live comment events of a post
// @Description Websocket stream of comment.created, comment.updated, comment.deleted, comment.approved and post.deleted events.
// @Tags feed
// @Param slug path string true "Post slug"
// @Success 101
// @Failure 404 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/posts/{slug} [get]
func (s *Server) PostFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		postID, ok := conn.Locals(localFeedPostID).(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(postID, conn)
		if err != nil {
			middleware.Logger.Warn("feed registration refused", "post_id", postID, "error", err)
			_ = conn.WriteJSON(models.ErrorResponse{Message: err.Error()})
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
