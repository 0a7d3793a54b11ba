package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Currencies accepted for payouts.
var Currencies = []string{"USD", "BTC", "ETH", "SOL", "BASE"}

// Payout is one cashback disbursement recorded against a referral. Rows are
// append-only; Position is the 0-based append index within the referral.
type Payout struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReferralID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payouts_referral_position,priority:1" json:"referral_id"`
	Position   int             `gorm:"not null;uniqueIndex:idx_payouts_referral_position,priority:2" json:"position"`
	Month      string          `gorm:"size:7;not null" json:"month"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,8);not null" json:"amount"`
	Currency   string          `gorm:"size:10;not null" json:"currency"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
}

func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func ValidCurrency(currency string) bool {
	for _, c := range Currencies {
		if c == currency {
			return true
		}
	}
	return false
}
