// Package jobs runs the periodic maintenance and reporting tasks.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/models"
)

// LogRetention is how long system_logs rows are kept.
const LogRetention = 30 * 24 * time.Hour

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type MonthlyReporter interface {
	SendMonthlyReports(ctx context.Context, month string) (int, error)
}

type Runner struct {
	db       *gorm.DB
	tokens   TokenPurger
	reporter MonthlyReporter
	now      func() time.Time
}

func NewRunner(db *gorm.DB, tokens TokenPurger, reporter MonthlyReporter) *Runner {
	return &Runner{db: db, tokens: tokens, reporter: reporter, now: time.Now}
}

// Start registers every job on a new scheduler and starts it. The caller
// owns the returned scheduler and must shut it down.
func (r *Runner) Start(reportCron string) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	jobs := []struct {
		name string
		def  gocron.JobDefinition
		task func(context.Context)
	}{
		{"log_cleanup", gocron.DurationJob(24 * time.Hour), r.logCleanup},
		{"token_cleanup", gocron.DurationJob(time.Hour), r.tokenCleanup},
		{"monthly_report", gocron.CronJob(reportCron, false), r.monthlyReport},
	}
	for _, j := range jobs {
		task := j.task
		if _, err := sched.NewJob(j.def,
			gocron.NewTask(func() { task(context.Background()) }),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
	}

	sched.Start()
	slog.Info("scheduler started", "report_cron", reportCron)
	return sched, nil
}

func (r *Runner) logCleanup(ctx context.Context) {
	deleted, err := r.CleanupLogs(ctx)
	if err != nil {
		slog.Error("log cleanup failed", "action", "log_cleanup", "error", err)
	} else if deleted > 0 {
		slog.Info("log cleanup completed", "deleted", deleted)
	}
}

// CleanupLogs deletes system_logs rows older than LogRetention.
func (r *Runner) CleanupLogs(ctx context.Context) (int64, error) {
	cutoff := r.now().Add(-LogRetention)
	result := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

func (r *Runner) tokenCleanup(ctx context.Context) {
	deleted, err := r.tokens.PurgeExpiredTokens(ctx)
	if err != nil {
		slog.Error("token cleanup failed", "action", "token_cleanup", "error", err)
	} else if deleted > 0 {
		slog.Info("token cleanup completed", "deleted", deleted)
	}
}

func (r *Runner) monthlyReport(ctx context.Context) {
	month := PreviousMonth(r.now())
	sent, err := r.reporter.SendMonthlyReports(ctx, month)
	if err != nil {
		slog.Error("monthly report failed", "action", "monthly_report", "month", month, "error", err)
		return
	}
	slog.Info("monthly reports sent", "month", month, "sent", sent)
}

// PreviousMonth returns the YYYY-MM of the month before t, in UTC.
func PreviousMonth(t time.Time) string {
	t = t.UTC()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format("2006-01")
}
