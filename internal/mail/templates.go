package mail

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	KindVerification  = "verification"
	KindPasswordReset = "password_reset"
	KindMonthlyReport = "monthly_report"
)

func VerificationMessage(appName, baseURL, to, token string) Message {
	link := baseURL + "/verify-email?token=" + url.QueryEscape(token)
	return Message{
		Kind:    KindVerification,
		To:      to,
		Subject: "Verify your " + appName + " email address",
		Body: "Welcome to " + appName + "!\n\n" +
			"Please verify your email address to submit referrals and manage your payout wallets:\n\n" +
			link + "\n",
	}
}

func PasswordResetMessage(appName, baseURL, to, token string) Message {
	link := baseURL + "/reset-password?token=" + url.QueryEscape(token)
	return Message{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: "Reset your " + appName + " password",
		Body: "We received a request to reset your password.\n\n" +
			link + "\n\n" +
			"If you did not ask for this, you can ignore this email.\n",
	}
}

// ReportLine is one casino row of a monthly report.
type ReportLine struct {
	Casino string
	Amount string
}

func MonthlyReportMessage(appName, to, name, month string, lines []ReportLine, lifetime string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nHere is your cashback summary for %s.\n\n", name, month)
	if len(lines) == 0 {
		b.WriteString("No payouts were recorded this month.\n")
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "  %s: %s\n", l.Casino, l.Amount)
	}
	fmt.Fprintf(&b, "\nTotal earned to date: %s\n", lifetime)
	return Message{
		Kind:    KindMonthlyReport,
		To:      to,
		Subject: appName + " monthly report for " + month,
		Body:    b.String(),
	}
}
