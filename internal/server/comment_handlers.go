package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content        string `json:"content"`
	ReplyToComment *uint  `json:"reply_to_comment"`
}

// GetPostComments handles GET /api/posts/:id/comments
// @Summary Top-level comments on a post
// @Description Ordered by like count, then reply count
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Page[models.Comment]
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.feedService.PostComments(c.UserContext(), postID, s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body createCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  c.Locals("userID").(uint),
		PostID:  postID,
		Content: req.Content,
		ReplyTo: req.ReplyToComment,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetCommentReplies handles GET /api/posts/:id/comments/:commentId
// @Summary Replies to a comment
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.Page[models.Comment]
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/{commentId} [get]
func (s *Server) GetCommentReplies(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	page, err := s.feedService.CommentReplies(c.UserContext(), postID, commentID, s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(comment)
}

// LikeComment handles POST /api/comments/:id/like
// @Summary Toggle a like on a comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/like [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.react(c, models.TargetComment, true)
}

// DislikeComment handles POST /api/comments/:id/dislike
// @Summary Toggle a dislike on a comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/dislike [post]
func (s *Server) DislikeComment(c *fiber.Ctx) error {
	return s.react(c, models.TargetComment, false)
}

// UpdateComment handles PATCH /api/comments/:id
// @Summary Edit a comment
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "Changes"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    c.Locals("userID").(uint),
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Description Replies to the deleted comment remain as top-level comments.
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), c.Locals("userID").(uint), id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
