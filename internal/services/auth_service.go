package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/mail"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/session"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// AuthService is the identity provider: accounts, sessions, email
// verification and password reset.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mail.Mailer
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer mail.Mailer) *AuthService {
	return &AuthService{db: db, cfg: cfg, mailer: mailer}
}

// SignUp creates an unverified account with an empty profile and sends the
// verification email.
func (s *AuthService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return nil, &Error{Kind: ErrValidation, Message: "please enter a valid email address", Err: ErrInvalidEmail}
	}
	if len(req.Password) < 8 {
		return nil, &Error{Kind: ErrValidation, Message: ErrWeakPassword.Error(), Err: ErrWeakPassword}
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, &Error{Kind: ErrValidation, Message: ErrEmailTaken.Error(), Err: ErrEmailTaken}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.Split(email, "@")[0]
	}

	user := models.User{
		ID:               uuid.New(),
		Email:            email,
		Password:         string(hash),
		DisplayName:      displayName,
		Role:             models.RoleUser,
		CryptoWallets:    datatypes.NewJSONType(models.EmptyWallets()),
		EmailPreferences: datatypes.NewJSONType(models.DefaultPreferences()),
	}

	var rawToken string
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		rawToken, err = s.issueAuthToken(tx, user.ID, models.PurposeVerifyEmail, s.cfg.VerificationTokenTTL)
		return err
	})
	if err != nil {
		return nil, backendError("create account", err)
	}

	s.send(ctx, mail.VerificationMessage(s.cfg.AppName, s.cfg.AppBaseURL, user.Email, rawToken), user.ID)
	slog.Info("account created", "user_id", user.ID.String(), "action", "signup")

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	db.Model(&stored).Update("revoked", true)
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	return s.generateTokenPair(ctx, &user)
}

// Logout revokes the refresh token, ending the session.
func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	if err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error; err != nil {
		return backendError("logout", err)
	}
	return nil
}

// SendVerification resends the verification email to an unverified caller.
func (s *AuthService) SendVerification(ctx context.Context, sess *session.Session) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", sess.UserID).Error; err != nil {
		return notFoundError(ErrUserNotFound.Error())
	}
	if user.EmailVerified {
		return nil
	}

	rawToken, err := s.issueAuthToken(s.db.WithContext(ctx), user.ID, models.PurposeVerifyEmail, s.cfg.VerificationTokenTTL)
	if err != nil {
		return backendError("create verification token", err)
	}

	msg := mail.VerificationMessage(s.cfg.AppName, s.cfg.AppBaseURL, user.Email, rawToken)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return backendError("send email", err)
	}
	return nil
}

// VerificationStatus re-reads the account and reports its current state.
func (s *AuthService) VerificationStatus(ctx context.Context, sess *session.Session) (*dto.VerificationStatusResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", sess.UserID).Error; err != nil {
		return nil, notFoundError(ErrUserNotFound.Error())
	}
	return &dto.VerificationStatusResponse{Email: user.Email, EmailVerified: user.EmailVerified}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.consumeAuthToken(tx, req.Token, models.PurposeVerifyEmail)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.User{}).Where("id = ?", token.UserID).Updates(map[string]interface{}{
			"email_verified":    true,
			"email_verified_at": now,
		}).Error; err != nil {
			return backendError("verify email", err)
		}
		slog.Info("email verified", "user_id", token.UserID.String(), "action", "verify_email")
		return nil
	})
}

// RequestPasswordReset sends a reset link. Unknown accounts and malformed
// addresses are reported to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) error {
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return &Error{Kind: ErrValidation, Message: "please enter a valid email address", Err: ErrInvalidEmail}
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return &Error{Kind: ErrNotFound, Message: "no account found with this email address", Err: ErrUserNotFound}
	}

	rawToken, err := s.issueAuthToken(s.db.WithContext(ctx), user.ID, models.PurposePasswordReset, s.cfg.ResetTokenTTL)
	if err != nil {
		return backendError("create reset token", err)
	}

	if err := s.mailer.Send(ctx, mail.PasswordResetMessage(s.cfg.AppName, s.cfg.AppBaseURL, user.Email, rawToken)); err != nil {
		return backendError("send reset email", err)
	}
	return nil
}

// ResetPassword sets a new password and revokes every refresh token.
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.PasswordResetConfirmRequest) error {
	if len(req.Password) < 8 {
		return &Error{Kind: ErrValidation, Message: ErrWeakPassword.Error(), Err: ErrWeakPassword}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.consumeAuthToken(tx, req.Token, models.PurposePasswordReset)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", token.UserID).Update("password", string(hash)).Error; err != nil {
			return backendError("reset password", err)
		}
		if err := tx.Model(&models.RefreshToken{}).Where("user_id = ?", token.UserID).Update("revoked", true).Error; err != nil {
			return backendError("revoke sessions", err)
		}
		return nil
	})
}

// PurgeExpiredTokens deletes used or expired email tokens.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", time.Now()).
		Delete(&models.AuthToken{})
	return result.RowsAffected, result.Error
}

func (s *AuthService) issueAuthToken(db *gorm.DB, userID uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}
	record := models.AuthToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return rawToken, nil
}

func (s *AuthService) consumeAuthToken(tx *gorm.DB, rawToken, purpose string) (*models.AuthToken, error) {
	if rawToken == "" {
		return nil, &Error{Kind: ErrValidation, Message: "token is required", Err: ErrInvalidToken}
	}

	var token models.AuthToken
	err := tx.Where("token_hash = ? AND purpose = ? AND used_at IS NULL", hashToken(rawToken), purpose).First(&token).Error
	if err != nil || time.Now().After(token.ExpiresAt) {
		return nil, &Error{Kind: ErrValidation, Message: ErrInvalidToken.Error(), Err: ErrInvalidToken}
	}

	now := time.Now().UTC()
	if err := tx.Model(&token).Update("used_at", now).Error; err != nil {
		return nil, backendError("consume token", err)
	}
	return &token, nil
}

func (s *AuthService) send(ctx context.Context, msg mail.Message, userID uuid.UUID) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Error("failed to send email", "kind", msg.Kind, "user_id", userID.String(), "error", err)
	}
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         UserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func UserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}
}

func randomToken() (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(rawBytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
