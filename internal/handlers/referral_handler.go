package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/services"
	"github.com/stakeback/cashback-backend/internal/session"
)

type ReferralHandler struct {
	referralService *services.ReferralService
	payoutService   *services.PayoutService
}

func NewReferralHandler(referralService *services.ReferralService, payoutService *services.PayoutService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService, payoutService: payoutService}
}

func (h *ReferralHandler) Submit(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SubmitReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.referralService.Submit(c.UserContext(), sess, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *ReferralHandler) ListMine(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	refs, err := h.referralService.ListMine(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(refs)
}

func (h *ReferralHandler) UpdateDetails(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid referral id")
	}

	var req dto.UpdateReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.referralService.UpdateDetails(c.UserContext(), sess, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Admin endpoints

func (h *ReferralHandler) ListAll(c *fiber.Ctx) error {
	refs, err := h.referralService.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(refs)
}

func (h *ReferralHandler) SetStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid referral id")
	}

	var req dto.SetReferralStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.referralService.SetStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ReferralHandler) AppendPayout(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid referral id")
	}

	var req dto.AppendPayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.payoutService.Append(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
