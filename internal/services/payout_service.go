package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/metrics"
	"github.com/stakeback/cashback-backend/internal/models"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// PayoutService appends cashback payouts to referrals. Payouts are never
// updated or deleted.
type PayoutService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPayoutService(db *gorm.DB) *PayoutService {
	return &PayoutService{db: db, now: time.Now}
}

// Append adds one payout at the end of the referral's sequence and returns
// the referral with every payout in append order.
func (s *PayoutService) Append(ctx context.Context, referralID uuid.UUID, req *dto.AppendPayoutRequest) (*dto.ReferralResponse, error) {
	month := strings.TrimSpace(req.Month)
	if month == "" {
		month = s.now().UTC().Format("2006-01")
	}
	if !validMonth(month) {
		return nil, validationError("month must be in YYYY-MM format")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return nil, validationError("amount must be a number")
	}
	if !amount.IsPositive() {
		return nil, validationError("amount must be greater than zero")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if !models.ValidCurrency(currency) {
		return nil, validationError("currency must be one of %s", strings.Join(models.Currencies, ", "))
	}

	var ref models.Referral
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ref, "id = ?", referralID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &Error{Kind: ErrNotFound, Message: ErrReferralNotFound.Error(), Err: ErrReferralNotFound}
			}
			return backendError("load referral", err)
		}

		var position int64
		if err := tx.Model(&models.Payout{}).Where("referral_id = ?", referralID).Count(&position).Error; err != nil {
			return backendError("count payouts", err)
		}

		payout := models.Payout{
			ReferralID: referralID,
			Position:   int(position),
			Month:      month,
			Amount:     amount,
			Currency:   currency,
			PaidAt:     s.now().UTC(),
		}
		if err := tx.Create(&payout).Error; err != nil {
			return backendError("append payout", err)
		}
		return tx.Model(&models.Referral{}).Where("id = ?", referralID).
			Update("version", gorm.Expr("version + 1")).Error
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, err
		}
		return nil, backendError("append payout", err)
	}

	metrics.PayoutsAppended.WithLabelValues(currency).Inc()
	slog.Info("payout appended",
		"referral_id", referralID.String(),
		"action", "append_payout",
		"month", month,
		"amount", amount.String(),
		"currency", currency,
	)

	db := s.db.WithContext(ctx)
	if err := db.Preload("Payouts", orderByPosition).First(&ref, "id = ?", referralID).Error; err != nil {
		return nil, backendError("load referral", err)
	}
	// The payout is committed; a missing or unreadable casino only drops the name.
	var casino models.Casino
	if err := db.Select("id", "name").First(&casino, "id = ?", ref.CasinoID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Warn("failed to load casino name",
			"referral_id", referralID.String(),
			"action", "append_payout",
			"error", err,
		)
	}

	resp := ReferralResponse(&ref, casino.Name)
	return &resp, nil
}

func validMonth(month string) bool {
	if !monthPattern.MatchString(month) {
		return false
	}
	_, err := time.Parse("2006-01", month)
	return err == nil
}
