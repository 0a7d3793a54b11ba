package services

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/reporting"
	"github.com/stakeback/cashback-backend/internal/session"
	"github.com/stakeback/cashback-backend/internal/wallets"
)

// ProfileService reads and writes the caller's own profile document.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) Get(ctx context.Context, sess *session.Session) (*dto.ProfileResponse, error) {
	user, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return ProfileResponse(user), nil
}

// Summary returns the caller's dashboard totals.
func (s *ProfileService) Summary(ctx context.Context, sess *session.Session) (*dto.SummaryResponse, error) {
	user, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}

	var refs []models.Referral
	if err := s.db.WithContext(ctx).
		Scopes(session.OwnedBy(sess.UserID)).
		Preload("Payouts", orderByPosition).
		Find(&refs).Error; err != nil {
		return nil, backendError("load referrals", err)
	}

	sums := reporting.Summarize([]models.User{*user}, refs)
	sum := sums[0]
	set := user.Wallets()
	resp := &dto.SummaryResponse{
		ActiveReferrals:        sum.ActiveReferrals,
		TotalReferrals:         len(refs),
		TotalEarnings:          sum.TotalEarnings.StringFixed(2),
		TotalEarningsFormatted: reporting.FormatUSD(sum.TotalEarnings),
		PaidOut:                sum.PaidOut,
	}
	if asset, ok := wallets.Primary(set); ok {
		resp.PrimaryWallet = &dto.WalletKey{Asset: asset, Address: set[asset].Address}
	}
	if asset, ok := wallets.Backup(set); ok {
		resp.BackupWallet = &dto.WalletKey{Asset: asset, Address: set[asset].Address}
	}
	return resp, nil
}

// SaveWallets replaces the whole wallet set.
func (s *ProfileService) SaveWallets(ctx context.Context, sess *session.Session, set models.WalletSet, expectedVersion *int) (*dto.ProfileResponse, error) {
	return s.writeWallets(ctx, sess, expectedVersion, func(models.WalletSet) (models.WalletSet, error) {
		return set.Normalized(), nil
	})
}

// SetWalletPriority moves priority p to asset in one write.
func (s *ProfileService) SetWalletPriority(ctx context.Context, sess *session.Session, asset models.Asset, p models.Priority, expectedVersion *int) (*dto.ProfileResponse, error) {
	return s.writeWallets(ctx, sess, expectedVersion, func(current models.WalletSet) (models.WalletSet, error) {
		return wallets.SetPriority(current, asset, p)
	})
}

func (s *ProfileService) SetWalletAddress(ctx context.Context, sess *session.Session, asset models.Asset, address string, expectedVersion *int) (*dto.ProfileResponse, error) {
	return s.writeWallets(ctx, sess, expectedVersion, func(current models.WalletSet) (models.WalletSet, error) {
		return wallets.SetAddress(current, asset, address)
	})
}

func (s *ProfileService) writeWallets(ctx context.Context, sess *session.Session, expectedVersion *int, mutate func(models.WalletSet) (models.WalletSet, error)) (*dto.ProfileResponse, error) {
	if !sess.EmailVerified {
		return nil, permissionError("please verify your email address before saving wallets")
	}

	user, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}

	next, err := mutate(user.Wallets())
	if err != nil {
		return nil, wrapValidation(err)
	}
	if err := wallets.Validate(next); err != nil {
		return nil, wrapValidation(err)
	}

	if err := s.update(ctx, user, expectedVersion, map[string]interface{}{
		"crypto_wallets": datatypes.NewJSONType(next),
	}); err != nil {
		return nil, err
	}
	user.CryptoWallets = datatypes.NewJSONType(next)

	slog.Info("wallets saved", "user_id", sess.UserID.String(), "action", "save_wallets")
	return ProfileResponse(user), nil
}

// UpdateEmailPreferences merges the given categories into the stored ones.
// Unset fields keep their stored value.
func (s *ProfileService) UpdateEmailPreferences(ctx context.Context, sess *session.Session, req *dto.UpdatePreferencesRequest) (*dto.ProfileResponse, error) {
	user, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}

	prefs := user.Preferences()
	if req.Marketing != nil {
		prefs.Marketing = req.Marketing
	}
	if req.Updates != nil {
		prefs.Updates = req.Updates
	}
	if req.MonthlyReport != nil {
		prefs.MonthlyReport = req.MonthlyReport
	}

	if err := s.update(ctx, user, req.ExpectedVersion, map[string]interface{}{
		"email_preferences": datatypes.NewJSONType(prefs),
	}); err != nil {
		return nil, err
	}
	user.EmailPreferences = datatypes.NewJSONType(prefs)
	return ProfileResponse(user), nil
}

// update writes fields and bumps the version. With expectedVersion set the
// write only applies when the stored version still matches.
func (s *ProfileService) update(ctx context.Context, user *models.User, expectedVersion *int, fields map[string]interface{}) error {
	fields["version"] = gorm.Expr("version + 1")

	q := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID)
	if expectedVersion != nil {
		q = q.Where("version = ?", *expectedVersion)
	}
	result := q.Updates(fields)
	if result.Error != nil {
		return backendError("save profile", result.Error)
	}
	if result.RowsAffected == 0 {
		if expectedVersion != nil {
			return conflictError("profile was changed by another session, reload and try again")
		}
		return notFoundError(ErrUserNotFound.Error())
	}

	if expectedVersion != nil {
		user.Version = *expectedVersion + 1
	} else {
		user.Version++
	}
	return nil
}

func (s *ProfileService) load(ctx context.Context, sess *session.Session) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", sess.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Kind: ErrNotFound, Message: ErrUserNotFound.Error(), Err: ErrUserNotFound}
		}
		return nil, backendError("load profile", err)
	}
	return &user, nil
}

func ProfileResponse(user *models.User) *dto.ProfileResponse {
	set := user.Wallets()
	views := make(map[models.Asset]dto.WalletView, len(set))
	for asset, w := range set {
		view := dto.WalletView{Address: w.Address, Priority: w.Priority}
		if w.Address != "" {
			valid := wallets.FormatValid(asset, w.Address)
			view.FormatValid = &valid
		}
		views[asset] = view
	}

	prefs := user.Preferences()
	return &dto.ProfileResponse{
		ID:            user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CryptoWallets: views,
		EmailPreferences: dto.PreferencesView{
			Marketing:     prefs.MarketingOptIn(),
			Updates:       prefs.UpdatesOptIn(),
			MonthlyReport: prefs.MonthlyReportOptIn(),
			Payouts:       prefs.PayoutsOptIn(),
		},
		Version:   user.Version,
		CreatedAt: user.CreatedAt,
	}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
