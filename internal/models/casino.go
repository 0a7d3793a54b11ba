package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoReferralCode is stored when an admin leaves the code empty.
const NoReferralCode = "No Code"

type Casino struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null;size:120;index" json:"name"`
	Slug         string    `gorm:"not null;size:140;uniqueIndex" json:"slug"`
	ReferralCode string    `gorm:"not null;size:120" json:"referral_code"`
	SignupURL    string    `gorm:"type:text" json:"signup_url"`
	URL          string    `gorm:"type:text" json:"url"`
	BannerURL    string    `gorm:"type:text" json:"banner_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Casino) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ReferralCode == "" {
		c.ReferralCode = NoReferralCode
	}
	return nil
}
