package server

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) service.PageParams {
	if defaultLimit <= 0 {
		defaultLimit = service.DefaultPageSize
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return service.PageParams{
		Limit:  limit,
		Offset: offset,
	}
}

func (s *Server) page(c *fiber.Ctx) service.PageParams {
	return parsePagination(c, s.config.PageSize)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// currentUserID returns the authenticated user, or 0 on public routes without a valid token.
func (s *Server) currentUserID(c *fiber.Ctx) uint {
	return middleware.OptionalUserID(c, s.config.JWTSecret)
}

// handleServiceError writes err with the status its code maps to.
func handleServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

func badRequest(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(message))
}

// codeForStatus picks the error code reported for framework-level errors.
func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return models.CodeNotFound
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusForbidden:
		return models.CodeForbidden
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return models.CodeValidation
	default:
		if status >= fiber.StatusInternalServerError {
			return models.CodeInternal
		}
		return ""
	}
}

// queryFlag reports whether a boolean query parameter is set ("1", "true", "yes").
func queryFlag(c *fiber.Ctx, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
