package server

import (
	"log/slog"
	"time"

	"agora/internal/cache"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register handles POST /api/user/register
// @Summary Register an account
// @Description Creates an account and its profile, and returns an access token
// @Tags user
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Registration"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /user/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "Username, email, and password are required")
	}

	// Staff accounts are only created through the admin command.
	user, err := s.accountService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	resp, err := s.issueToken(user)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/user/login
// @Summary Log in
// @Description Authenticates by username or email and returns an access token
// @Tags user
// @Accept json
// @Produce json
// @Param request body object{login=string,password=string} true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Login    string `json:"login"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	login := req.Login
	if login == "" {
		login = req.Username
	}
	if login == "" {
		login = req.Email
	}

	user, err := s.accountService.Authenticate(c.UserContext(), login, req.Password)
	if err != nil {
		return handleServiceError(c, err)
	}

	resp, err := s.issueToken(user)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(resp)
}

// Logout handles POST /api/user/logout
// @Summary Log out
// @Description Revokes the presented access token
// @Tags user
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /user/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("tokenClaims").(*middleware.TokenClaims)
	if !ok || claims.JTI == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err := cache.RevokeToken(c.UserContext(), s.redis, claims.JTI, claims.ExpiresAt); err != nil {
		// Tokens stay valid until expiry without Redis.
		middleware.Logger.WarnContext(c.UserContext(), "token revocation unavailable",
			slog.String("error", err.Error()),
		)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMe handles GET /api/user/me
// @Summary Current account
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{user=models.User,profile=models.Profile}
// @Router /user/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	user, err := s.accountService.GetUser(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	var profile *models.Profile
	if !user.IsStaff {
		profile, err = s.profileService.MyProfile(c.UserContext(), userID)
		if err != nil && !models.HasCode(err, models.CodeProfileRequired) {
			return handleServiceError(c, err)
		}
	}
	return c.JSON(fiber.Map{
		"user":    user,
		"profile": profile,
	})
}

// UpdateMe handles PATCH /api/user/me
// @Summary Update the current account
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /user/me [patch]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := s.accountService.UpdateAccount(c.UserContext(), service.UpdateAccountInput{
		UserID:   c.Locals("userID").(uint),
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteMe handles DELETE /api/user/me
// @Summary Delete the current account
// @Description Removes the account, its profile and everything the profile owns
// @Tags user
// @Security BearerAuth
// @Success 204
// @Router /user/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	if err := s.accountService.DeleteAccount(c.UserContext(), c.Locals("userID").(uint)); err != nil {
		return handleServiceError(c, err)
	}
	if claims, ok := c.Locals("tokenClaims").(*middleware.TokenClaims); ok && claims.JTI != "" {
		if err := cache.RevokeToken(c.UserContext(), s.redis, claims.JTI, claims.ExpiresAt); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation unavailable",
				slog.String("error", err.Error()),
			)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) issueToken(user *models.User) (*AuthResponse, error) {
	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, time.Now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResponse{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}
