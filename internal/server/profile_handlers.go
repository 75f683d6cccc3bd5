package server

import (
	"io"

	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListProfiles handles GET /api/profiles?search=
// @Summary List profiles
// @Tags profiles
// @Produce json
// @Param search query string false "Username contains"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Page[models.Profile]
// @Router /profiles [get]
func (s *Server) ListProfiles(c *fiber.Ctx) error {
	page, err := s.profileService.ListProfiles(c.UserContext(), c.Query("search"), s.currentUserID(c), s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// CreateProfile handles POST /api/profiles
// @Summary Create the current account's profile
// @Tags profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{bio=string} false "Profile"
// @Success 201 {object} models.Profile
// @Failure 409 {object} models.ErrorResponse
// @Router /profiles [post]
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	var req struct {
		Bio string `json:"bio"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	profile, err := s.profileService.CreateProfile(c.UserContext(), c.Locals("userID").(uint), req.Bio)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// GetMyProfile handles GET /api/profiles/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.MyProfile(c.UserContext(), c.Locals("userID").(uint))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetProfile handles GET /api/profiles/:id
// @Summary Profile detail
// @Description Includes follower, following and post counts, and whether the caller follows the profile
// @Tags profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{id} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.profileService.GetProfile(c.UserContext(), id, s.currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PATCH /api/profiles/:id
// @Summary Update a profile
// @Tags profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Profile ID"
// @Param request body object{bio=string} true "Changes"
// @Success 200 {object} models.Profile
// @Failure 403 {object} models.ErrorResponse
// @Router /profiles/{id} [patch]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Bio *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	profile, err := s.profileService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:    c.Locals("userID").(uint),
		ProfileID: id,
		Bio:       req.Bio,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(profile)
}

// DeleteProfile handles DELETE /api/profiles/:id
// @Summary Delete a profile
// @Description Removes the profile with its posts, comments, reactions and follow edges
// @Tags profiles
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /profiles/{id} [delete]
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.profileService.DeleteProfile(c.UserContext(), c.Locals("userID").(uint), id); err != nil {
		return handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleFollow handles POST /api/profiles/:id/follow
// @Summary Follow or unfollow a profile
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {object} object{follow=int,unfollow=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /profiles/{id}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.profileService.ToggleFollow(c.UserContext(), c.Locals("userID").(uint), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	if res.Following {
		return c.JSON(fiber.Map{"follow": res.ProfileID})
	}
	return c.JSON(fiber.Map{"unfollow": res.ProfileID})
}

// UploadProfilePicture handles POST /api/profiles/:id/picture
// @Summary Upload a profile picture
// @Tags profiles
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param id path int true "Profile ID"
// @Param picture formData file true "Image"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profiles/{id}/picture [post]
func (s *Server) UploadProfilePicture(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	filename, content, err := readUpload(c, "picture")
	if err != nil {
		return nil
	}
	if content == nil {
		return badRequest(c, "No file uploaded")
	}

	profile, err := s.profileService.UploadPicture(c.UserContext(), service.UploadPictureInput{
		UserID:    c.Locals("userID").(uint),
		ProfileID: id,
		Filename:  filename,
		Content:   content,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetProfilePosts handles GET /api/profiles/:id/posts
// @Summary Posts by a profile
// @Description Most discussed first
// @Tags profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {object} models.Page[models.Post]
// @Router /profiles/{id}/posts [get]
func (s *Server) GetProfilePosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.feedService.ProfilePosts(c.UserContext(), id, s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// GetFollowings handles GET /api/profiles/:id/followings
// @Summary Profiles this profile follows
// @Tags profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {object} models.Page[models.Profile]
// @Router /profiles/{id}/followings [get]
func (s *Server) GetFollowings(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.profileService.Followings(c.UserContext(), id, s.currentUserID(c), s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// GetFollowers handles GET /api/profiles/:id/followers
// @Summary Profiles following this profile
// @Tags profiles
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {object} models.Page[models.Profile]
// @Router /profiles/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.profileService.Followers(c.UserContext(), id, s.currentUserID(c), s.page(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(page)
}

// readUpload reads an optional multipart file field. A missing field yields nil content.
// On a read failure it writes a 400 response and returns errResponseWritten.
func readUpload(c *fiber.Ctx, field string) (string, []byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil, nil
	}
	src, err := file.Open()
	if err != nil {
		_ = badRequest(c, "Unable to read uploaded file")
		return "", nil, errResponseWritten
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		_ = badRequest(c, "Unable to read uploaded file")
		return "", nil, errResponseWritten
	}
	return file.Filename, content, nil
}
