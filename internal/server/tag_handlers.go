package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListTags handles GET /api/tags?search=
// @Summary List tags
// @Tags tags
// @Produce json
// @Param search query string false "Name contains, case-insensitive"
// @Success 200 {object} models.Page[models.Tag]
// @Router /tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	page, err := s.tagService.ListTags(c.UserContext(), c.Query("search"), s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// CreateTag handles POST /api/tags
// @Summary Create a tag
// @Tags tags
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Tag"
// @Success 201 {object} models.Tag
// @Failure 409 {object} models.ErrorResponse
// @Router /tags [post]
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	tag, err := s.tagService.CreateTag(c.UserContext(), req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// GetTag handles GET /api/tags/:id
// @Summary Tag detail with its posts
// @Description Posts carrying the tag, least discussed first
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} service.TagFeed
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{id} [get]
func (s *Server) GetTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	feed, err := s.feedService.TagPosts(c.UserContext(), id, s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(feed)
}
