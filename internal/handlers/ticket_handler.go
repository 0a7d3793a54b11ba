package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/services"
	"github.com/stakeback/cashback-backend/internal/session"
)

type TicketHandler struct {
	ticketService *services.TicketService
}

func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

func (h *TicketHandler) Create(c *fiber.Ctx) error {
	sess, err := session.Get(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ticket, err := h.ticketService.Create(c.UserContext(), sess, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

func (h *TicketHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	tickets, total, err := h.ticketService.List(c.UserContext(), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.PaginatedResponse{
		Data:   tickets,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *TicketHandler) Resolve(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid ticket id")
	}

	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ticket, err := h.ticketService.Resolve(c.UserContext(), id, req.Response)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ticket)
}
