package memeserver

import (
	"strings"
	"time"

	"memefeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 7 * 24 * time.Hour

// generateToken mints a signed JWT for the given user.
func (s *Server) generateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// authRequired validates the Authorization bearer token and stores the
// authenticated user id in the request locals.
func (s *Server) authRequired(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return respondError(c, models.NewUnauthorizedError("missing authorization header"))
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return respondError(c, models.NewUnauthorizedError("malformed authorization header"))
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.NewUnauthorizedError("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return respondError(c, models.NewUnauthorizedError("invalid or expired token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return respondError(c, models.NewUnauthorizedError("invalid token claims"))
	}
	userID, ok := claims["id"].(string)
	if !ok || userID == "" {
		return respondError(c, models.NewUnauthorizedError("token missing user id"))
	}

	c.Locals("userID", userID)
	return c.Next()
}

// currentUserID returns the user id set by authRequired.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
