package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/services"
	"github.com/stakeback/cashback-backend/internal/session"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.SignUp(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) VerificationStatus(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.authService.VerificationStatus(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.authService.SendVerification(c.UserContext(), sess); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: "Verification email sent"})
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.VerifyEmail(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: "Email verified"})
}

func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.RequestPasswordReset(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: "Password reset email sent"})
}

func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: "Password updated, please sign in again"})
}
