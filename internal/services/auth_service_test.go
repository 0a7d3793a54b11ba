package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/mail"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/session"
)

func newAuth(t *testing.T) (*AuthService, *mail.Recorder) {
	t.Helper()
	rec := &mail.Recorder{}
	return NewAuthService(newTestDB(t), testConfig(), rec), rec
}

func TestSignUpCreatesPendingProfile(t *testing.T) {
	ctx := context.Background()
	auth, rec := newAuth(t)

	resp, err := auth.SignUp(ctx, &dto.SignUpRequest{Email: " Alice@Example.com ", Password: "password123", DisplayName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.False(t, resp.User.EmailVerified)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	var user models.User
	require.NoError(t, auth.db.First(&user, "id = ?", resp.User.ID).Error)
	assert.Equal(t, models.EmptyWallets(), user.Wallets())
	assert.True(t, user.Preferences().MarketingOptIn())
	assert.Equal(t, 1, user.Version)

	msg, ok := rec.Last(mail.KindVerification)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Contains(t, msg.Body, "https://app.test/verify-email?token=")

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, models.RoleUser, claims["role"])
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	_, err := auth.SignUp(ctx, &dto.SignUpRequest{Email: "not-an-email", Password: "password123"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = auth.SignUp(ctx, &dto.SignUpRequest{Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = auth.SignUp(ctx, &dto.SignUpRequest{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = auth.SignUp(ctx, &dto.SignUpRequest{Email: "A@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignUpSurvivesMailFailure(t *testing.T) {
	rec := &mail.Recorder{Err: errors.New("smtp down")}
	auth := NewAuthService(newTestDB(t), testConfig(), rec)

	resp, err := auth.SignUp(context.Background(), &dto.SignUpRequest{Email: "b@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "b", resp.User.DisplayName)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)
	_, err := auth.SignUp(ctx, &dto.SignUpRequest{Email: "c@example.com", Password: "password123"})
	require.NoError(t, err)

	resp, err := auth.Login(ctx, &dto.LoginRequest{Email: "C@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", resp.User.Email)

	_, err = auth.Login(ctx, &dto.LoginRequest{Email: "c@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)
	first, err := auth.SignUp(ctx, &dto.SignUpRequest{Email: "d@example.com", Password: "password123"})
	require.NoError(t, err)

	second, err := auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, auth.Logout(ctx, &dto.LogoutRequest{RefreshToken: second.RefreshToken}))
	_, err = auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: second.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	auth, rec := newAuth(t)
	resp, err := auth.SignUp(ctx, &dto.SignUpRequest{Email: "e@example.com", Password: "password123"})
	require.NoError(t, err)
	sess := &session.Session{UserID: resp.User.ID, Email: resp.User.Email}

	status, err := auth.VerificationStatus(ctx, sess)
	require.NoError(t, err)
	assert.False(t, status.EmailVerified)

	msg, ok := rec.Last(mail.KindVerification)
	require.True(t, ok)
	token := tokenFrom(t, msg.Body)

	require.NoError(t, auth.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: token}))

	status, err = auth.VerificationStatus(ctx, sess)
	require.NoError(t, err)
	assert.True(t, status.EmailVerified)

	err = auth.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: token})
	assert.ErrorIs(t, err, ErrInvalidToken)

	err = auth.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSendVerificationOnlyWhenUnverified(t *testing.T) {
	ctx := context.Background()
	auth, rec := newAuth(t)
	_, unverified := createUser(t, auth.db, "f@example.com", false)
	_, verified := createUser(t, auth.db, "g@example.com", true)

	require.NoError(t, auth.SendVerification(ctx, unverified))
	require.NoError(t, auth.SendVerification(ctx, verified))

	sent := rec.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "f@example.com", sent[0].To)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	auth, rec := newAuth(t)
	signup, err := auth.SignUp(ctx, &dto.SignUpRequest{Email: "h@example.com", Password: "password123"})
	require.NoError(t, err)

	err = auth.RequestPasswordReset(ctx, &dto.PasswordResetRequest{Email: "bad"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	err = auth.RequestPasswordReset(ctx, &dto.PasswordResetRequest{Email: "missing@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, auth.RequestPasswordReset(ctx, &dto.PasswordResetRequest{Email: "h@example.com"}))
	msg, ok := rec.Last(mail.KindPasswordReset)
	require.True(t, ok)
	assert.Contains(t, msg.Body, "https://app.test/reset-password?token=")

	token := tokenFrom(t, msg.Body)
	err = auth.ResetPassword(ctx, &dto.PasswordResetConfirmRequest{Token: token, Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, auth.ResetPassword(ctx, &dto.PasswordResetConfirmRequest{Token: token, Password: "new-password"}))

	_, err = auth.Login(ctx, &dto.LoginRequest{Email: "h@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, &dto.LoginRequest{Email: "h@example.com", Password: "new-password"})
	assert.NoError(t, err)

	_, err = auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: signup.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	err = auth.ResetPassword(ctx, &dto.PasswordResetConfirmRequest{Token: token, Password: "another-password"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurgeExpiredTokens(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)
	user, _ := createUser(t, auth.db, "i@example.com", false)

	_, err := auth.issueAuthToken(auth.db, user.ID, models.PurposeVerifyEmail, -time.Minute)
	require.NoError(t, err)
	_, err = auth.issueAuthToken(auth.db, user.ID, models.PurposeVerifyEmail, time.Hour)
	require.NoError(t, err)

	deleted, err := auth.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
