package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/stakeback/cashback-backend/internal/services"
)

type AdminHandler struct {
	reportService *services.ReportService
}

func NewAdminHandler(reportService *services.ReportService) *AdminHandler {
	return &AdminHandler{reportService: reportService}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reportService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.reportService.Users(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// ExportEmails streams the filtered email list as a CSV attachment.
func (h *AdminHandler) ExportEmails(c *fiber.Ctx) error {
	export, err := h.reportService.ExportEmails(c.UserContext(), c.Query("filter"))
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename))
	return c.Send(export.Body)
}
