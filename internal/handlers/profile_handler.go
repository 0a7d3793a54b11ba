package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/services"
	"github.com/stakeback/cashback-backend/internal/session"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.profileService.Get(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) Summary(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.profileService.Summary(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) SaveWallets(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SaveWalletsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.profileService.SaveWallets(c.UserContext(), sess, req.Wallets, req.ExpectedVersion)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// UpdateWallet changes either the address or the priority of one wallet.
func (h *ProfileHandler) UpdateWallet(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdateWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	asset := models.Asset(strings.ToLower(c.Params("asset")))
	ctx := c.UserContext()

	var resp *dto.ProfileResponse
	switch {
	case req.Address != nil && req.Priority == nil:
		resp, err = h.profileService.SetWalletAddress(ctx, sess, asset, *req.Address, req.ExpectedVersion)
	case req.Priority != nil && req.Address == nil:
		resp, err = h.profileService.SetWalletPriority(ctx, sess, asset, *req.Priority, req.ExpectedVersion)
	default:
		return badRequest(c, "Provide exactly one of address or priority")
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) UpdateEmailPreferences(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.profileService.UpdateEmailPreferences(c.UserContext(), sess, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
