package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/stakeback/cashback-backend/internal/models"
)

// Filter selects which users an email export contains.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterPaid      Filter = "paid"
	FilterMarketing Filter = "marketing"
)

var Filters = []Filter{FilterAll, FilterActive, FilterPaid, FilterMarketing}

func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export filter %q", s)
}

// Header is always the first row of an export.
var Header = []string{"Email", "Name", "Active Casinos", "Total Earnings", "Marketing", "Updates", "Monthly Report", "Joined"}

// Match reports whether a summary passes the filter.
func (f Filter) Match(s UserSummary) bool {
	switch f {
	case FilterActive:
		return s.ActiveReferrals > 0
	case FilterPaid:
		return s.PaidOut
	case FilterMarketing:
		return s.MarketingOptIn
	default:
		return true
	}
}

// Rows returns the export rows, header first.
func Rows(filter Filter, users []models.User, refs []models.Referral) [][]string {
	rows := [][]string{Header}
	for _, s := range Summarize(users, refs) {
		if !filter.Match(s) {
			continue
		}
		rows = append(rows, []string{
			s.Email,
			s.DisplayName,
			strconv.Itoa(s.ActiveReferrals),
			s.TotalEarnings.StringFixed(2),
			yesNo(s.MarketingOptIn),
			yesNo(s.UpdatesOptIn),
			yesNo(s.MonthlyReportOptIn),
			s.Joined,
		})
	}
	return rows
}

// WriteCSV writes the export to w and returns the number of data rows.
// Fields containing commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, filter Filter, users []models.User, refs []models.Referral) (int, error) {
	rows := Rows(filter, users, refs)
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(rows) - 1, nil
}

// ExportFilename names the downloaded file.
func ExportFilename(filter Filter, now time.Time) string {
	return fmt.Sprintf("stakeback-emails-%s-%s.csv", filter, now.UTC().Format("2006-01-02"))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
