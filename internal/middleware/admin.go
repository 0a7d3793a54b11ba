package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/session"
)

// AdminRequired admits callers whose stored role is admin or whose email is
// listed in ADMIN_EMAILS. It must run after LoadSession.
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminEmails := cfg.AdminEmailList()

	return func(c *fiber.Ctx) error {
		sess, err := session.Get(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if sess.IsAdmin() || contains(adminEmails, strings.ToLower(sess.Email)) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
