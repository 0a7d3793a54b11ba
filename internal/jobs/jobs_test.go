package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stakeback/cashback-backend/internal/models"
)

type fakePurger struct{ calls int }

func (f *fakePurger) PurgeExpiredTokens(context.Context) (int64, error) {
	f.calls++
	return 3, nil
}

type fakeReporter struct{ months []string }

func (f *fakeReporter) SendMonthlyReports(_ context.Context, month string) (int, error) {
	f.months = append(f.months, month)
	return 1, nil
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SystemLog{}))
	return db
}

func TestPreviousMonth(t *testing.T) {
	assert.Equal(t, "2023-12", PreviousMonth(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-02", PreviousMonth(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
}

func TestCleanupLogs(t *testing.T) {
	db := newDB(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -31), Level: "ERROR"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -1), Level: "ERROR"}).Error)

	r := NewRunner(db, &fakePurger{}, &fakeReporter{})
	r.now = func() time.Time { return now }

	deleted, err := r.CleanupLogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var left int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&left).Error)
	assert.Equal(t, int64(1), left)
}

func TestTasksDelegate(t *testing.T) {
	purger := &fakePurger{}
	reporter := &fakeReporter{}
	r := NewRunner(newDB(t), purger, reporter)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	r.tokenCleanup(context.Background())
	r.monthlyReport(context.Background())

	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, []string{"2024-04"}, reporter.months)
}

func TestStartRejectsBadCron(t *testing.T) {
	r := NewRunner(newDB(t), &fakePurger{}, &fakeReporter{})
	_, err := r.Start("not a cron")
	assert.Error(t, err)

	sched, err := r.Start("0 9 1 * *")
	require.NoError(t, err)
	assert.Len(t, sched.Jobs(), 3)
	require.NoError(t, sched.Shutdown())
}
