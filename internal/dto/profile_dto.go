package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/stakeback/cashback-backend/internal/models"
)

type WalletView struct {
	Address  string          `json:"address"`
	Priority models.Priority `json:"priority"`
	// FormatValid is only set for non-empty addresses and never blocks a save.
	FormatValid *bool `json:"format_valid,omitempty"`
}

type PreferencesView struct {
	Marketing     bool `json:"marketing"`
	Updates       bool `json:"updates"`
	MonthlyReport bool `json:"monthlyReport"`
	Payouts       bool `json:"payouts"`
}

type ProfileResponse struct {
	ID               uuid.UUID                   `json:"id"`
	Email            string                      `json:"email"`
	DisplayName      string                      `json:"display_name"`
	Role             string                      `json:"role"`
	EmailVerified    bool                        `json:"email_verified"`
	CryptoWallets    map[models.Asset]WalletView `json:"crypto_wallets"`
	EmailPreferences PreferencesView             `json:"email_preferences"`
	Version          int                         `json:"version"`
	CreatedAt        time.Time                   `json:"created_at"`
}

type SaveWalletsRequest struct {
	Wallets         models.WalletSet `json:"crypto_wallets"`
	ExpectedVersion *int             `json:"expected_version,omitempty"`
}

// UpdateWalletRequest changes one wallet. Exactly one of Address and
// Priority must be set.
type UpdateWalletRequest struct {
	Address         *string          `json:"address,omitempty"`
	Priority        *models.Priority `json:"priority,omitempty"`
	ExpectedVersion *int             `json:"expected_version,omitempty"`
}

type UpdatePreferencesRequest struct {
	Marketing     *bool `json:"marketing,omitempty"`
	Updates       *bool `json:"updates,omitempty"`
	MonthlyReport *bool `json:"monthlyReport,omitempty"`
	// Payouts is accepted and ignored; payout emails cannot be turned off.
	Payouts         *bool `json:"payouts,omitempty"`
	ExpectedVersion *int  `json:"expected_version,omitempty"`
}

type SummaryResponse struct {
	ActiveReferrals        int        `json:"active_referrals"`
	TotalReferrals         int        `json:"total_referrals"`
	TotalEarnings          string     `json:"total_earnings"`
	TotalEarningsFormatted string     `json:"total_earnings_formatted"`
	PaidOut                bool       `json:"paid_out"`
	PrimaryWallet          *WalletKey `json:"primary_wallet"`
	BackupWallet           *WalletKey `json:"backup_wallet"`
}

type WalletKey struct {
	Asset   models.Asset `json:"asset"`
	Address string       `json:"address"`
}
