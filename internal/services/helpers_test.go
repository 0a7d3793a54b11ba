package services

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/database"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/session"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:                 "StakeBack",
		AppBaseURL:              "https://app.test",
		JWTSecret:               "test-secret",
		JWTAccessExpiry:         15 * time.Minute,
		JWTRefreshExpiry:        24 * time.Hour,
		VerificationTokenTTL:    48 * time.Hour,
		ResetTokenTTL:           time.Hour,
		ReferralAllowDuplicates: true,
	}
}

func createUser(t *testing.T, db *gorm.DB, email string, verified bool) (*models.User, *session.Session) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Email:            email,
		Password:         string(hash),
		DisplayName:      strings.Split(email, "@")[0],
		EmailVerified:    verified,
		CryptoWallets:    datatypes.NewJSONType(models.EmptyWallets()),
		EmailPreferences: datatypes.NewJSONType(models.DefaultPreferences()),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user, session.FromUser(&user)
}

func createCasino(t *testing.T, db *gorm.DB, name string) models.Casino {
	t.Helper()
	casino := models.Casino{Name: name, Slug: strings.ToLower(name)}
	require.NoError(t, db.Create(&casino).Error)
	return casino
}

// tokenFrom pulls the token query parameter out of an email body.
func tokenFrom(t *testing.T, body string) string {
	t.Helper()
	idx := strings.Index(body, "token=")
	require.GreaterOrEqual(t, idx, 0, "no token in %q", body)
	raw := strings.Fields(body[idx+len("token="):])[0]
	tok, err := url.QueryUnescape(raw)
	require.NoError(t, err)
	return tok
}

func ptr[T any](v T) *T {
	return &v
}
