package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the profile document for one account.
type User struct {
	ID               uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string                               `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password         string                               `gorm:"not null" json:"-"`
	DisplayName      string                               `gorm:"size:120" json:"display_name"`
	Role             string                               `gorm:"size:20;default:'user'" json:"role"`
	EmailVerified    bool                                 `gorm:"default:false" json:"email_verified"`
	EmailVerifiedAt  *time.Time                           `json:"email_verified_at,omitempty"`
	CryptoWallets    datatypes.JSONType[WalletSet]        `json:"crypto_wallets"`
	EmailPreferences datatypes.JSONType[EmailPreferences] `json:"email_preferences"`
	Version          int                                  `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time                            `json:"created_at"`
	UpdatedAt        time.Time                            `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Version == 0 {
		u.Version = 1
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Wallets returns a copy of the stored wallet set with every asset present.
func (u *User) Wallets() WalletSet {
	return u.CryptoWallets.Data().Normalized()
}

func (u *User) Preferences() EmailPreferences {
	return u.EmailPreferences.Data()
}
