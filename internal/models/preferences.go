package models

// EmailPreferences holds the editable opt-in categories. A nil field was
// never set by the user and resolves to opted in.
type EmailPreferences struct {
	Marketing     *bool `json:"marketing,omitempty"`
	Updates       *bool `json:"updates,omitempty"`
	MonthlyReport *bool `json:"monthlyReport,omitempty"`
}

// DefaultPreferences is stored at sign-up: every category explicitly on.
func DefaultPreferences() EmailPreferences {
	return EmailPreferences{
		Marketing:     boolPtr(true),
		Updates:       boolPtr(true),
		MonthlyReport: boolPtr(true),
	}
}

func (p EmailPreferences) MarketingOptIn() bool     { return optedIn(p.Marketing) }
func (p EmailPreferences) UpdatesOptIn() bool       { return optedIn(p.Updates) }
func (p EmailPreferences) MonthlyReportOptIn() bool { return optedIn(p.MonthlyReport) }

// PayoutsOptIn is fixed: payout notifications cannot be turned off.
func (p EmailPreferences) PayoutsOptIn() bool { return true }

// optedIn implements "absence means opted in".
func optedIn(v *bool) bool {
	return v == nil || *v
}

func boolPtr(b bool) *bool {
	return &b
}
