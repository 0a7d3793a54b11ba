package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/models"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupWritesLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "app.log")
	h := Setup(&config.Config{LogFile: path, LogLevel: "info"})
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))

	slog.Info("hello file", "user_id", "u1")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello file"`)
}

func TestDBHandlerPersistsErrors(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SystemLog{}))

	h := NewDBHandler(db)
	log := slog.New(NewMultiHandler(h)).With("action", "append_payout")

	log.Info("ignored")
	log.Error("payout failed",
		"user_id", "u-1",
		"referral_id", "r-1",
		"error", "boom",
		"latency_ms", 12.6,
		"currency", "USD",
	)
	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "payout failed", row.Message)
	assert.Equal(t, "append_payout", row.Action)
	require.NotNil(t, row.ReferralID)
	assert.Equal(t, "r-1", *row.ReferralID)
	assert.Equal(t, "boom", row.Error)
	assert.Equal(t, 13, row.LatencyMs)
	assert.JSONEq(t, `{"currency":"USD"}`, string(row.Extra))
	assert.WithinDuration(t, time.Now(), row.Timestamp, time.Minute)
}
