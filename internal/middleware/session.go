package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/session"
)

// LoadSession reads the caller's profile once per request and stores the
// resulting session. It must run after JWTProtected.
func LoadSession(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.UserIDFromToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Account no longer exists",
			})
		}

		session.Store(c, session.FromUser(&user))
		return c.Next()
	}
}
