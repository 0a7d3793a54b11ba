package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/services"
)

type CasinoHandler struct {
	casinoService *services.CasinoService
}

func NewCasinoHandler(casinoService *services.CasinoService) *CasinoHandler {
	return &CasinoHandler{casinoService: casinoService}
}

func (h *CasinoHandler) List(c *fiber.Ctx) error {
	casinos, err := h.casinoService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(casinos)
}

func (h *CasinoHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid casino id")
	}

	casino, err := h.casinoService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(casino)
}

func (h *CasinoHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCasinoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	casino, err := h.casinoService.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(casino)
}

func (h *CasinoHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid casino id")
	}

	if err := h.casinoService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
