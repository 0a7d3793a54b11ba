package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotApplicable marks a casino username the user chose not to give.
const NotApplicable = "N/A"

const (
	StatusActive   = "active"
	StatusVerified = "verified"
	StatusPending  = "pending" // legacy synonym of active
	StatusDormant  = "dormant"
	StatusRejected = "rejected"
)

// ReferralStatuses lists every status an admin may assign.
var ReferralStatuses = []string{StatusActive, StatusVerified, StatusPending, StatusDormant, StatusRejected}

// Referral links one user to one casino joined through the program.
type Referral struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	UserName       string    `gorm:"size:120" json:"user_name"`
	UserEmail      string    `gorm:"size:255" json:"user_email"`
	CasinoID       uuid.UUID `gorm:"type:uuid;not null;index" json:"casino_id"`
	CasinoUsername string    `gorm:"size:120;not null" json:"casino_username"`
	CasinoEmail    string    `gorm:"size:255" json:"casino_email"`
	UseSameEmail   bool      `json:"use_same_email"`
	Status         string    `gorm:"size:20;not null;index" json:"status"`
	Version        int       `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Payouts        []Payout  `gorm:"foreignKey:ReferralID" json:"monthly_payouts"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return nil
}

// DisplayStatus folds the legacy pending status into active.
func (r *Referral) DisplayStatus() string {
	if r.Status == StatusPending {
		return StatusActive
	}
	return r.Status
}

func ValidReferralStatus(status string) bool {
	for _, s := range ReferralStatuses {
		if s == status {
			return true
		}
	}
	return false
}
