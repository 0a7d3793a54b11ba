package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/session"
)

var ErrTicketNotFound = errors.New("ticket not found")

type TicketService struct {
	db *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

func (s *TicketService) Create(ctx context.Context, sess *session.Session, req *dto.CreateTicketRequest) (*models.SupportTicket, error) {
	ticket := models.SupportTicket{
		ID:      uuid.New(),
		UserID:  sess.UserID,
		Name:    strings.TrimSpace(req.Name),
		Email:   normalizeEmail(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  models.TicketOpen,
	}
	if ticket.Name == "" || ticket.Email == "" || ticket.Subject == "" || ticket.Message == "" {
		return nil, validationError("name, email, subject and message are required")
	}
	if !validEmail(ticket.Email) {
		return nil, &Error{Kind: ErrValidation, Message: "please enter a valid email address", Err: ErrInvalidEmail}
	}

	if err := s.db.WithContext(ctx).Create(&ticket).Error; err != nil {
		return nil, backendError("create ticket", err)
	}
	slog.Info("support ticket created", "user_id", sess.UserID.String(), "action", "create_ticket")
	return &ticket, nil
}

// List returns tickets newest first, optionally filtered by status.
func (s *TicketService) List(ctx context.Context, status string, limit, offset int) ([]models.SupportTicket, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Model(&models.SupportTicket{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, backendError("count tickets", err)
	}

	var tickets []models.SupportTicket
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tickets).Error; err != nil {
		return nil, 0, backendError("list tickets", err)
	}
	return tickets, total, nil
}

func (s *TicketService) Resolve(ctx context.Context, id uuid.UUID, response string) (*models.SupportTicket, error) {
	db := s.db.WithContext(ctx)

	var ticket models.SupportTicket
	if err := db.First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Kind: ErrNotFound, Message: ErrTicketNotFound.Error(), Err: ErrTicketNotFound}
		}
		return nil, backendError("load ticket", err)
	}

	now := time.Now().UTC()
	resp := strings.TrimSpace(response)
	updates := map[string]interface{}{
		"status":      models.TicketResolved,
		"resolved_at": now,
	}
	if resp != "" {
		updates["admin_response"] = resp
	}
	if err := db.Model(&ticket).Updates(updates).Error; err != nil {
		return nil, backendError("resolve ticket", err)
	}

	ticket.Status = models.TicketResolved
	ticket.ResolvedAt = &now
	if resp != "" {
		ticket.AdminResponse = &resp
	}
	return &ticket, nil
}
