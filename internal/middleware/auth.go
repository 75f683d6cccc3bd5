package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "agora-api"
	TokenAudience = "agora-client"
	TokenTTL      = 7 * 24 * time.Hour
)

// ErrInvalidToken is returned for any token that fails signature, claim or expiry checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims are the claims the API relies on after verification.
type TokenClaims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

type accessClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// RevocationChecker reports whether a token ID has been revoked.
type RevocationChecker func(ctx context.Context, jti string) (bool, error)

// IssueToken signs an HS256 access token for the user.
func IssueToken(secret string, userID uint, username string, now time.Time) (string, *TokenClaims, error) {
	if secret == "" {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	jti := uuid.NewString()
	exp := now.Add(TokenTTL)
	claims := accessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, &TokenClaims{UserID: userID, Username: username, JTI: jti, ExpiresAt: exp}, nil
}

// ParseToken verifies signature, issuer, audience and expiry and returns the claims.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	out := &TokenClaims{
		UserID:   uint(userID),
		Username: claims.Username,
		JTI:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AuthRequired enforces a valid, unrevoked bearer token and stores the user ID
// in c.Locals("userID") and in the request context.
func AuthRequired(secret string, revoked RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if revoked != nil && claims.JTI != "" {
			isRevoked, err := revoked(c.UserContext(), claims.JTI)
			if err == nil && isRevoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", claims.UserID)
		c.Locals("tokenClaims", claims)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))

		return c.Next()
	}
}

// OptionalUserID returns the authenticated user ID when a valid token is present.
// Anonymous requests return 0.
func OptionalUserID(c *fiber.Ctx, secret string) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	tokenString := BearerToken(c)
	if tokenString == "" {
		return 0
	}
	claims, err := ParseToken(secret, tokenString)
	if err != nil {
		return 0
	}
	return claims.UserID
}
