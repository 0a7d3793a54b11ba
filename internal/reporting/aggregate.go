// Package reporting derives totals and exports from in-memory users and
// referrals. Every function is pure: the same inputs give the same output.
package reporting

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stakeback/cashback-backend/internal/models"
)

// Qualifies reports whether a referral with this status counts toward
// earnings and active counts.
func Qualifies(status string) bool {
	switch status {
	case models.StatusActive, models.StatusVerified, models.StatusPending:
		return true
	}
	return false
}

// ReferralTotal sums every payout of ref regardless of status.
func ReferralTotal(ref models.Referral) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ref.Payouts {
		total = total.Add(p.Amount)
	}
	return total
}

// TotalEarnings sums payouts over the qualifying referrals only.
func TotalEarnings(refs []models.Referral) decimal.Decimal {
	total := decimal.Zero
	for _, ref := range refs {
		if Qualifies(ref.Status) {
			total = total.Add(ReferralTotal(ref))
		}
	}
	return total
}

func ActiveCount(refs []models.Referral) int {
	n := 0
	for _, ref := range refs {
		if Qualifies(ref.Status) {
			n++
		}
	}
	return n
}

// HasPayout reports whether any referral, in any status, carries a nonzero
// payout.
func HasPayout(refs []models.Referral) bool {
	for _, ref := range refs {
		for _, p := range ref.Payouts {
			if !p.Amount.IsZero() {
				return true
			}
		}
	}
	return false
}

// FormatUSD renders an amount as dollars with two decimals.
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// GroupByUser indexes refs by owner, keeping input order within a user.
func GroupByUser(refs []models.Referral) map[uuid.UUID][]models.Referral {
	byUser := make(map[uuid.UUID][]models.Referral)
	for _, ref := range refs {
		byUser[ref.UserID] = append(byUser[ref.UserID], ref)
	}
	return byUser
}

// UserSummary is one user's derived totals.
type UserSummary struct {
	UserID             uuid.UUID       `json:"user_id"`
	Email              string          `json:"email"`
	DisplayName        string          `json:"display_name"`
	ActiveReferrals    int             `json:"active_referrals"`
	TotalEarnings      decimal.Decimal `json:"total_earnings"`
	PaidOut            bool            `json:"paid_out"`
	MarketingOptIn     bool            `json:"marketing_opt_in"`
	UpdatesOptIn       bool            `json:"updates_opt_in"`
	MonthlyReportOptIn bool            `json:"monthly_report_opt_in"`
	Joined             string          `json:"joined"`
}

// Summarize computes one summary per user, in the order users are given.
func Summarize(users []models.User, refs []models.Referral) []UserSummary {
	byUser := GroupByUser(refs)
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		mine := byUser[u.ID]
		prefs := u.Preferences()
		out = append(out, UserSummary{
			UserID:             u.ID,
			Email:              u.Email,
			DisplayName:        u.DisplayName,
			ActiveReferrals:    ActiveCount(mine),
			TotalEarnings:      TotalEarnings(mine),
			PaidOut:            HasPayout(mine),
			MarketingOptIn:     prefs.MarketingOptIn(),
			UpdatesOptIn:       prefs.UpdatesOptIn(),
			MonthlyReportOptIn: prefs.MonthlyReportOptIn(),
			Joined:             joinedDate(u),
		})
	}
	return out
}

// Stats are the global counts shown on the admin dashboard.
type Stats struct {
	TotalUsers         int             `json:"total_users"`
	MarketingOptIns    int             `json:"marketing_opt_ins"`
	UsersWithActive    int             `json:"users_with_active_referrals"`
	UsersPaidOut       int             `json:"users_paid_out"`
	TotalReferrals     int             `json:"total_referrals"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	TotalPaidFormatted string          `json:"total_paid_formatted"`
}

func ComputeStats(users []models.User, refs []models.Referral) Stats {
	s := Stats{TotalUsers: len(users), TotalReferrals: len(refs), TotalPaid: decimal.Zero}
	for _, sum := range Summarize(users, refs) {
		if sum.MarketingOptIn {
			s.MarketingOptIns++
		}
		if sum.ActiveReferrals > 0 {
			s.UsersWithActive++
		}
		if sum.PaidOut {
			s.UsersPaidOut++
		}
	}
	for _, ref := range refs {
		s.TotalPaid = s.TotalPaid.Add(ReferralTotal(ref))
	}
	s.TotalPaidFormatted = FormatUSD(s.TotalPaid)
	return s
}

func joinedDate(u models.User) string {
	if u.CreatedAt.IsZero() {
		return ""
	}
	return u.CreatedAt.UTC().Format("2006-01-02")
}
