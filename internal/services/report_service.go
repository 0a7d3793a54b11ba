package services

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stakeback/cashback-backend/internal/config"
	"github.com/stakeback/cashback-backend/internal/mail"
	"github.com/stakeback/cashback-backend/internal/metrics"
	"github.com/stakeback/cashback-backend/internal/models"
	"github.com/stakeback/cashback-backend/internal/reporting"
	"github.com/stakeback/cashback-backend/internal/storage"
)

// ReportService loads the full profile set and ledger and hands them to
// the reporting package.
type ReportService struct {
	db       *gorm.DB
	cfg      *config.Config
	mailer   mail.Mailer
	archiver storage.Archiver
	now      func() time.Time
}

func NewReportService(db *gorm.DB, cfg *config.Config, mailer mail.Mailer, archiver storage.Archiver) *ReportService {
	return &ReportService{db: db, cfg: cfg, mailer: mailer, archiver: archiver, now: time.Now}
}

// Export is a generated email list.
type Export struct {
	Filename string
	Body     []byte
	Rows     int
	Location string
}

func (s *ReportService) Stats(ctx context.Context) (*reporting.Stats, error) {
	users, refs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	stats := reporting.ComputeStats(users, refs)
	return &stats, nil
}

// Users returns one summary per user, oldest account first.
func (s *ReportService) Users(ctx context.Context) ([]reporting.UserSummary, error) {
	users, refs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.Summarize(users, refs), nil
}

// ExportEmails renders the CSV for filter and archives a copy when a
// bucket is configured. An archive failure is logged, not returned.
func (s *ReportService) ExportEmails(ctx context.Context, filter string) (*Export, error) {
	f, err := reporting.ParseFilter(filter)
	if err != nil {
		return nil, wrapValidation(err)
	}

	users, refs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	rows, err := reporting.WriteCSV(&buf, f, users, refs)
	if err != nil {
		return nil, backendError("export emails", err)
	}

	export := &Export{
		Filename: reporting.ExportFilename(f, s.now()),
		Body:     buf.Bytes(),
		Rows:     rows,
	}
	loc, err := s.archiver.Put(ctx, "exports/"+export.Filename, "text/csv; charset=utf-8", export.Body)
	if err != nil {
		slog.Error("failed to archive export", "action", "export_emails", "filter", string(f), "error", err)
	} else {
		export.Location = loc
	}

	metrics.Exports.WithLabelValues(string(f)).Inc()
	slog.Info("emails exported", "action", "export_emails", "filter", string(f), "rows", rows)
	return export, nil
}

// SendMonthlyReports emails every opted-in user the payouts recorded for
// month (YYYY-MM) and their lifetime qualifying earnings. It returns how
// many reports were sent; delivery failures are logged and skipped.
func (s *ReportService) SendMonthlyReports(ctx context.Context, month string) (int, error) {
	if !validMonth(month) {
		return 0, validationError("month must be in YYYY-MM format")
	}

	users, refs, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	var casinos []models.Casino
	if err := s.db.WithContext(ctx).Select("id", "name").Find(&casinos).Error; err != nil {
		return 0, backendError("load casinos", err)
	}
	names := make(map[uuid.UUID]string, len(casinos))
	for _, c := range casinos {
		names[c.ID] = c.Name
	}

	byUser := reporting.GroupByUser(refs)
	sent := 0
	for _, u := range users {
		if !u.Preferences().MonthlyReportOptIn() {
			continue
		}
		mine := byUser[u.ID]

		var lines []mail.ReportLine
		for _, ref := range mine {
			if !reporting.Qualifies(ref.Status) {
				continue
			}
			monthTotal := decimal.Zero
			for _, p := range ref.Payouts {
				if p.Month == month {
					monthTotal = monthTotal.Add(p.Amount)
				}
			}
			if monthTotal.IsZero() {
				continue
			}
			casino := names[ref.CasinoID]
			if casino == "" {
				casino = "Unknown casino"
			}
			lines = append(lines, mail.ReportLine{Casino: casino, Amount: reporting.FormatUSD(monthTotal)})
		}

		msg := mail.MonthlyReportMessage(s.cfg.AppName, u.Email, u.DisplayName, month, lines,
			reporting.FormatUSD(reporting.TotalEarnings(mine)))
		if err := s.mailer.Send(ctx, msg); err != nil {
			slog.Error("failed to send monthly report", "user_id", u.ID.String(), "action", "monthly_report", "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *ReportService) load(ctx context.Context) ([]models.User, []models.Referral, error) {
	db := s.db.WithContext(ctx)

	var users []models.User
	if err := db.Order("created_at ASC").Order("id ASC").Find(&users).Error; err != nil {
		return nil, nil, backendError("load users", err)
	}

	var refs []models.Referral
	if err := db.Preload("Payouts", orderByPosition).Order("created_at ASC").Order("id ASC").Find(&refs).Error; err != nil {
		return nil, nil, backendError("load referrals", err)
	}
	return users, refs, nil
}
