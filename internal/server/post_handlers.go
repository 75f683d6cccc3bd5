package server

import (
	"strings"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Content string   `json:"content" form:"content"`
	Tags    []string `json:"tags" form:"tags"`
}

type updatePostRequest struct {
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

// GetPosts handles GET /api/posts
// @Summary Recent posts
// @Description Posts inside the recency window, newest first. following_posts=1 limits the feed to followed profiles.
// @Tags posts
// @Produce json
// @Param following_posts query bool false "Only posts by followed profiles"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.Post]
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		page models.Page[*models.Post]
		err  error
	)
	if queryFlag(c, "following_posts") {
		page, err = s.feedService.FollowedPosts(ctx, s.currentUserID(c), s.page(c))
	} else {
		page, err = s.feedService.AllPosts(ctx, s.page(c))
	}
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Accepts JSON or multipart/form-data. Multipart requests may carry an image file field.
// @Tags posts
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param request body createPostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	in := service.CreatePostInput{
		UserID:  c.Locals("userID").(uint),
		Content: req.Content,
		Tags:    splitTags(req.Tags),
	}
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		name, content, err := readUpload(c, "image")
		if err != nil {
			return nil
		}
		in.ImageName, in.Image = name, content
	}

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Post detail
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id
// @Summary Update a post
// @Description Omitted fields are left unchanged. An empty tags array clears the tag set.
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body updatePostRequest true "Changes"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  c.Locals("userID").(uint),
		PostID:  id,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), c.Locals("userID").(uint), id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLikedPosts handles GET /api/posts/liked
// @Summary Posts the caller liked
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Page[models.Post]
// @Router /posts/liked [get]
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	return s.reactedPosts(c, true)
}

// GetDislikedPosts handles GET /api/posts/disliked
// @Summary Posts the caller disliked
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Page[models.Post]
// @Router /posts/disliked [get]
func (s *Server) GetDislikedPosts(c *fiber.Ctx) error {
	return s.reactedPosts(c, false)
}

func (s *Server) reactedPosts(c *fiber.Ctx, like bool) error {
	page, err := s.feedService.ReactedPosts(c.UserContext(), c.Locals("userID").(uint), like, s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Toggle a like on a post
// @Description No reaction becomes liked, liked becomes none, disliked becomes liked.
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.react(c, models.TargetPost, true)
}

// DislikePost handles POST /api/posts/:id/dislike
// @Summary Toggle a dislike on a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/dislike [post]
func (s *Server) DislikePost(c *fiber.Ctx) error {
	return s.react(c, models.TargetPost, false)
}

// react applies a like or dislike toggle. Success is an empty 200.
func (s *Server) react(c *fiber.Ctx, kind models.TargetKind, like bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	target := models.Target{Kind: kind, ID: id}
	if _, err := s.reactionService.Toggle(c.UserContext(), c.Locals("userID").(uint), target, like); err != nil {
		return handleServiceError(c, err)
	}
	// SendStatus would write "OK" as the body.
	c.Status(fiber.StatusOK)
	return nil
}

// GetProfilesLiked handles GET /api/posts/:id/profiles-liked
// @Summary Profiles that liked a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Page[models.Profile]
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/profiles-liked [get]
func (s *Server) GetProfilesLiked(c *fiber.Ctx) error {
	return s.profilesReacted(c, true)
}

// GetProfilesDisliked handles GET /api/posts/:id/profiles-disliked
// @Summary Profiles that disliked a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Page[models.Profile]
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/profiles-disliked [get]
func (s *Server) GetProfilesDisliked(c *fiber.Ctx) error {
	return s.profilesReacted(c, false)
}

func (s *Server) profilesReacted(c *fiber.Ctx, like bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.profileService.ReactedToPost(c.UserContext(), id, like, s.currentUserID(c), s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// splitTags accepts both repeated form fields and a single comma-separated value.
func splitTags(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
