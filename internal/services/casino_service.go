package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/banner"
	"github.com/stakeback/cashback-backend/internal/catalog"
	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/models"
)

var ErrCasinoNotFound = errors.New("casino not found")

type CasinoService struct {
	db     *gorm.DB
	policy *banner.Policy
}

func NewCasinoService(db *gorm.DB, policy *banner.Policy) *CasinoService {
	return &CasinoService{db: db, policy: policy}
}

// List returns every casino ordered by name.
func (s *CasinoService) List(ctx context.Context) ([]dto.CasinoResponse, error) {
	var casinos []models.Casino
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&casinos).Error; err != nil {
		return nil, backendError("load casinos", err)
	}

	out := make([]dto.CasinoResponse, 0, len(casinos))
	for i := range casinos {
		out = append(out, s.response(&casinos[i]))
	}
	return out, nil
}

func (s *CasinoService) Get(ctx context.Context, id uuid.UUID) (*dto.CasinoResponse, error) {
	casino, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.response(casino)
	return &resp, nil
}

func (s *CasinoService) Create(ctx context.Context, req *dto.CreateCasinoRequest) (*dto.CasinoResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("casino name is required")
	}
	if !optionalHTTPURL(req.SignupURL) {
		return nil, validationError("signup_url must be an absolute http or https URL")
	}
	if !optionalHTTPURL(req.URL) {
		return nil, validationError("url must be an absolute http or https URL")
	}

	casino := models.Casino{
		ID:           uuid.New(),
		Name:         name,
		ReferralCode: strings.TrimSpace(req.ReferralCode),
		SignupURL:    strings.TrimSpace(req.SignupURL),
		URL:          strings.TrimSpace(req.URL),
		BannerURL:    strings.TrimSpace(req.BannerURL),
	}

	db := s.db.WithContext(ctx)
	casino.Slug = slug.Make(name)
	var taken int64
	if err := db.Model(&models.Casino{}).Where("slug = ?", casino.Slug).Count(&taken).Error; err != nil {
		return nil, backendError("create casino", err)
	}
	if taken > 0 {
		casino.Slug += "-" + casino.ID.String()[:8]
	}

	if err := db.Create(&casino).Error; err != nil {
		return nil, backendError("create casino", err)
	}

	slog.Info("casino created", "casino_id", casino.ID.String(), "action", "create_casino")
	resp := s.response(&casino)
	return &resp, nil
}

// Delete removes a casino. Referrals pointing at it are kept.
func (s *CasinoService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Casino{}, "id = ?", id)
	if result.Error != nil {
		return backendError("delete casino", result.Error)
	}
	if result.RowsAffected == 0 {
		return &Error{Kind: ErrNotFound, Message: ErrCasinoNotFound.Error(), Err: ErrCasinoNotFound}
	}
	slog.Info("casino deleted", "casino_id", id.String(), "action", "delete_casino")
	return nil
}

// Seed inserts the catalog entries when no casino exists yet and returns
// how many were created.
func (s *CasinoService) Seed(ctx context.Context, entries []catalog.Entry) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Casino{}).Count(&count).Error; err != nil {
		return 0, backendError("count casinos", err)
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, e := range entries {
		_, err := s.Create(ctx, &dto.CreateCasinoRequest{
			Name:         e.Name,
			ReferralCode: e.ReferralCode,
			SignupURL:    e.SignupURL,
			URL:          e.URL,
			BannerURL:    e.Banner,
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *CasinoService) find(ctx context.Context, id uuid.UUID) (*models.Casino, error) {
	var casino models.Casino
	if err := s.db.WithContext(ctx).First(&casino, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Kind: ErrNotFound, Message: ErrCasinoNotFound.Error(), Err: ErrCasinoNotFound}
		}
		return nil, backendError("load casino", err)
	}
	return &casino, nil
}

func (s *CasinoService) response(c *models.Casino) dto.CasinoResponse {
	return dto.CasinoResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		ReferralCode: c.ReferralCode,
		SignupURL:    c.SignupURL,
		URL:          c.URL,
		Banner:       s.policy.Resolve(c.BannerURL),
		CreatedAt:    c.CreatedAt,
	}
}

func optionalHTTPURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
