package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketOpen     = "open"
	TicketResolved = "resolved"
)

type SupportTicket struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string     `gorm:"size:120;not null" json:"name"`
	Email         string     `gorm:"size:255;not null" json:"email"`
	Subject       string     `gorm:"size:200;not null" json:"subject"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	Status        string     `gorm:"size:20;not null;default:'open';index" json:"status"`
	AdminResponse *string    `gorm:"type:text" json:"admin_response"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (t *SupportTicket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TicketOpen
	}
	return nil
}
