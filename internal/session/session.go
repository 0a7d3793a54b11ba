// Package session carries the authenticated caller through a request.
package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stakeback/cashback-backend/internal/models"
)

const localsKey = "session"

var ErrNoSession = errors.New("no session in context")

// Session is the caller's identity and profile snapshot, loaded once per
// request after the access token is verified.
type Session struct {
	UserID        uuid.UUID
	Email         string
	DisplayName   string
	Role          string
	EmailVerified bool
}

// FromUser builds a session from a freshly read profile.
func FromUser(u *models.User) *Session {
	return &Session{
		UserID:        u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// Store attaches s to the request.
func Store(c *fiber.Ctx, s *Session) {
	c.Locals(localsKey, s)
}

// Get returns the request's session.
func Get(c *fiber.Ctx) (*Session, error) {
	s, ok := c.Locals(localsKey).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// UserIDFromToken extracts the subject from the verified JWT in context.
func UserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}
