package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/stakeback/cashback-backend/internal/banner"
)

type CreateCasinoRequest struct {
	Name         string `json:"name"`
	ReferralCode string `json:"referral_code"`
	SignupURL    string `json:"signup_url"`
	URL          string `json:"url"`
	BannerURL    string `json:"banner_url"`
}

type CasinoResponse struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	ReferralCode string        `json:"referral_code"`
	SignupURL    string        `json:"signup_url"`
	URL          string        `json:"url"`
	Banner       banner.Banner `json:"banner"`
	CreatedAt    time.Time     `json:"created_at"`
}

type SubmitReferralRequest struct {
	CasinoID       string `json:"casino_id"`
	CasinoUsername string `json:"casino_username"`
	UsernameNA     bool   `json:"username_na"`
	CasinoEmail    string `json:"casino_email"`
	UseSameEmail   bool   `json:"use_same_email"`
}

type UpdateReferralRequest struct {
	CasinoUsername  string `json:"casino_username"`
	CasinoEmail     string `json:"casino_email"`
	ExpectedVersion *int   `json:"expected_version,omitempty"`
}

type SetReferralStatusRequest struct {
	Status string `json:"status"`
}

type AppendPayoutRequest struct {
	Month    string `json:"month"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type PayoutResponse struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
	Month    string    `json:"month"`
	Amount   string    `json:"amount"`
	Currency string    `json:"currency"`
	PaidAt   time.Time `json:"paid_at"`
}

type ReferralResponse struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               uuid.UUID        `json:"user_id"`
	UserName             string           `json:"user_name"`
	UserEmail            string           `json:"user_email"`
	CasinoID             uuid.UUID        `json:"casino_id"`
	CasinoName           string           `json:"casino_name,omitempty"`
	CasinoUsername       string           `json:"casino_username"`
	CasinoEmail          string           `json:"casino_email"`
	UseSameEmail         bool             `json:"use_same_email"`
	Status               string           `json:"status"`
	MonthlyPayouts       []PayoutResponse `json:"monthly_payouts"`
	TotalEarned          string           `json:"total_earned"`
	TotalEarnedFormatted string           `json:"total_earned_formatted"`
	Version              int              `json:"version"`
	CreatedAt            time.Time        `json:"created_at"`
}
