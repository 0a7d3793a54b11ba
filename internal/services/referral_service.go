package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/metrics"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/reporting"
	"github.com/stakeback/cashback-backend/internal/session"
)

var ErrReferralNotFound = errors.New("referral not found")

// ReferralService is the referral ledger.
type ReferralService struct {
	db              *gorm.DB
	allowDuplicates bool
}

func NewReferralService(db *gorm.DB, cfg *config.Config) *ReferralService {
	return &ReferralService{db: db, allowDuplicates: cfg.ReferralAllowDuplicates}
}

// Submit records that the caller joined a casino. Checks run in a fixed
// order and the first failure is returned; nothing is written on failure.
func (s *ReferralService) Submit(ctx context.Context, sess *session.Session, req *dto.SubmitReferralRequest) (*dto.ReferralResponse, error) {
	if !sess.EmailVerified {
		return nil, permissionError("please verify your email address before submitting referrals")
	}

	if strings.TrimSpace(req.CasinoID) == "" {
		return nil, validationError("please select a casino")
	}
	casinoID, err := uuid.Parse(strings.TrimSpace(req.CasinoID))
	if err != nil {
		return nil, validationError("please select a casino")
	}

	db := s.db.WithContext(ctx)
	var casino models.Casino
	if err := db.First(&casino, "id = ?", casinoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("the selected casino no longer exists")
		}
		return nil, backendError("load casino", err)
	}

	username := strings.TrimSpace(req.CasinoUsername)
	if req.UsernameNA {
		username = models.NotApplicable
	} else if username == "" {
		return nil, validationError("please enter your casino username or mark it as N/A")
	}

	casinoEmail := strings.TrimSpace(req.CasinoEmail)
	if req.UseSameEmail {
		casinoEmail = sess.Email
	} else if casinoEmail == "" {
		return nil, validationError("please enter the email address you used at the casino")
	}

	if !s.allowDuplicates {
		var existing int64
		if err := db.Model(&models.Referral{}).
			Scopes(session.OwnedBy(sess.UserID)).
			Where("casino_id = ?", casinoID).
			Count(&existing).Error; err != nil {
			return nil, backendError("check referrals", err)
		}
		if existing > 0 {
			return nil, validationError("you already submitted a referral for %s", casino.Name)
		}
	}

	ref := models.Referral{
		ID:             uuid.New(),
		UserID:         sess.UserID,
		UserName:       sess.DisplayName,
		UserEmail:      sess.Email,
		CasinoID:       casinoID,
		CasinoUsername: username,
		CasinoEmail:    casinoEmail,
		UseSameEmail:   req.UseSameEmail,
		Status:         models.StatusActive,
	}
	if err := db.Create(&ref).Error; err != nil {
		return nil, backendError("submit referral", err)
	}

	metrics.ReferralsSubmitted.Inc()
	slog.Info("referral submitted",
		"user_id", sess.UserID.String(),
		"referral_id", ref.ID.String(),
		"action", "submit_referral",
	)

	resp := ReferralResponse(&ref, casino.Name)
	return &resp, nil
}

// ListMine returns the caller's referrals, newest first.
func (s *ReferralService) ListMine(ctx context.Context, sess *session.Session) ([]dto.ReferralResponse, error) {
	var refs []models.Referral
	if err := s.db.WithContext(ctx).
		Scopes(session.OwnedBy(sess.UserID)).
		Preload("Payouts", orderByPosition).
		Order("created_at DESC").
		Find(&refs).Error; err != nil {
		return nil, backendError("load referrals", err)
	}
	return s.responses(ctx, refs)
}

// ListAll returns every referral, newest first.
func (s *ReferralService) ListAll(ctx context.Context) ([]dto.ReferralResponse, error) {
	refs, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.responses(ctx, refs)
}

func (s *ReferralService) loadAll(ctx context.Context) ([]models.Referral, error) {
	var refs []models.Referral
	if err := s.db.WithContext(ctx).
		Preload("Payouts", orderByPosition).
		Order("created_at DESC").
		Find(&refs).Error; err != nil {
		return nil, backendError("load referrals", err)
	}
	return refs, nil
}

// UpdateDetails lets the owner correct the casino username and email at
// any status. An empty username is stored as N/A.
func (s *ReferralService) UpdateDetails(ctx context.Context, sess *session.Session, id uuid.UUID, req *dto.UpdateReferralRequest) (*dto.ReferralResponse, error) {
	db := s.db.WithContext(ctx)

	var ref models.Referral
	if err := db.Scopes(session.OwnedBy(sess.UserID)).First(&ref, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Kind: ErrNotFound, Message: ErrReferralNotFound.Error(), Err: ErrReferralNotFound}
		}
		return nil, backendError("load referral", err)
	}

	username := strings.TrimSpace(req.CasinoUsername)
	if username == "" {
		username = models.NotApplicable
	}
	email := strings.TrimSpace(req.CasinoEmail)
	sameEmail := email != "" && strings.EqualFold(email, sess.Email)

	q := db.Model(&models.Referral{}).Where("id = ?", ref.ID)
	if req.ExpectedVersion != nil {
		q = q.Where("version = ?", *req.ExpectedVersion)
	}
	result := q.Updates(map[string]interface{}{
		"casino_username": username,
		"casino_email":    email,
		"use_same_email":  sameEmail,
		"version":         gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return nil, backendError("update referral", result.Error)
	}
	if result.RowsAffected == 0 {
		if req.ExpectedVersion == nil {
			return nil, &Error{Kind: ErrNotFound, Message: ErrReferralNotFound.Error(), Err: ErrReferralNotFound}
		}
		return nil, conflictError("referral was changed by another session, reload and try again")
	}

	if err := db.Preload("Payouts", orderByPosition).First(&ref, "id = ?", ref.ID).Error; err != nil {
		return nil, backendError("load referral", err)
	}
	out, err := s.responses(ctx, []models.Referral{ref})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// SetStatus changes a referral's status. Admin only.
func (s *ReferralService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*dto.ReferralResponse, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.ValidReferralStatus(status) {
		return nil, validationError("status must be one of %s", strings.Join(models.ReferralStatuses, ", "))
	}

	db := s.db.WithContext(ctx)
	result := db.Model(&models.Referral{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  status,
		"version": gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return nil, backendError("update referral status", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, &Error{Kind: ErrNotFound, Message: ErrReferralNotFound.Error(), Err: ErrReferralNotFound}
	}

	var ref models.Referral
	if err := db.Preload("Payouts", orderByPosition).First(&ref, "id = ?", id).Error; err != nil {
		return nil, backendError("load referral", err)
	}
	slog.Info("referral status changed", "referral_id", id.String(), "action", "set_status", "status", status)

	out, err := s.responses(ctx, []models.Referral{ref})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// responses attaches casino names to refs.
func (s *ReferralService) responses(ctx context.Context, refs []models.Referral) ([]dto.ReferralResponse, error) {
	ids := make([]uuid.UUID, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.CasinoID)
	}

	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) > 0 {
		var casinos []models.Casino
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&casinos).Error; err != nil {
			return nil, backendError("load casinos", err)
		}
		for _, c := range casinos {
			names[c.ID] = c.Name
		}
	}

	out := make([]dto.ReferralResponse, 0, len(refs))
	for i := range refs {
		out = append(out, ReferralResponse(&refs[i], names[refs[i].CasinoID]))
	}
	return out, nil
}

func ReferralResponse(ref *models.Referral, casinoName string) dto.ReferralResponse {
	payouts := make([]dto.PayoutResponse, 0, len(ref.Payouts))
	for _, p := range ref.Payouts {
		payouts = append(payouts, PayoutResponse(&p))
	}
	total := reporting.ReferralTotal(*ref)

	return dto.ReferralResponse{
		ID:                   ref.ID,
		UserID:               ref.UserID,
		UserName:             ref.UserName,
		UserEmail:            ref.UserEmail,
		CasinoID:             ref.CasinoID,
		CasinoName:           casinoName,
		CasinoUsername:       ref.CasinoUsername,
		CasinoEmail:          ref.CasinoEmail,
		UseSameEmail:         ref.UseSameEmail,
		Status:               ref.DisplayStatus(),
		MonthlyPayouts:       payouts,
		TotalEarned:          total.StringFixed(2),
		TotalEarnedFormatted: reporting.FormatUSD(total),
		Version:              ref.Version,
		CreatedAt:            ref.CreatedAt,
	}
}

func PayoutResponse(p *models.Payout) dto.PayoutResponse {
	return dto.PayoutResponse{
		ID:       p.ID,
		Position: p.Position,
		Month:    p.Month,
		Amount:   p.Amount.String(),
		Currency: p.Currency,
		PaidAt:   p.PaidAt,
	}
}
