package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/metrics"
	"github.com/stakeback/cashback-backend/internal/models"
)

func newReferral(t *testing.T, svc *PayoutService) models.Referral {
	t.Helper()
	user, _ := createUser(t, svc.db, uuid.NewString()[:8]+"@example.com", true)
	casino := createCasino(t, svc.db, "Casino "+uuid.NewString()[:8])
	ref := models.Referral{UserID: user.ID, CasinoID: casino.ID, CasinoUsername: "u", Status: models.StatusActive}
	require.NoError(t, svc.db.Create(&ref).Error)
	return ref
}

func TestAppendFirstPayout(t *testing.T) {
	ctx := context.Background()
	payouts := NewPayoutService(newTestDB(t))
	ref := newReferral(t, payouts)

	before := testutil.ToFloat64(metrics.PayoutsAppended.WithLabelValues("USD"))
	got, err := payouts.Append(ctx, ref.ID, &dto.AppendPayoutRequest{Month: "2024-01", Amount: "60.00", Currency: "USD"})
	require.NoError(t, err)
	require.Len(t, got.MonthlyPayouts, 1)
	assert.Equal(t, "2024-01", got.MonthlyPayouts[0].Month)
	assert.Equal(t, 0, got.MonthlyPayouts[0].Position)
	assert.Equal(t, "60.00", got.TotalEarned)
	assert.Equal(t, "$60.00", got.TotalEarnedFormatted)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PayoutsAppended.WithLabelValues("USD")))
}

func TestAppendAfterCasinoRemoved(t *testing.T) {
	ctx := context.Background()
	payouts := NewPayoutService(newTestDB(t))
	ref := newReferral(t, payouts)
	require.NoError(t, payouts.db.Delete(&models.Casino{}, "id = ?", ref.CasinoID).Error)

	got, err := payouts.Append(ctx, ref.ID, &dto.AppendPayoutRequest{Month: "2024-03", Amount: "5"})
	require.NoError(t, err)
	assert.Empty(t, got.CasinoName)
	require.Len(t, got.MonthlyPayouts, 1)
}

func TestAppendKeepsHistoryInOrder(t *testing.T) {
	ctx := context.Background()
	payouts := NewPayoutService(newTestDB(t))
	ref := newReferral(t, payouts)

	amounts := []string{"10", "20.5", "0.25", "7"}
	for i, a := range amounts {
		got, err := payouts.Append(ctx, ref.ID, &dto.AppendPayoutRequest{Month: "2024-02", Amount: a})
		require.NoError(t, err)
		require.Len(t, got.MonthlyPayouts, i+1)
		for j := 0; j <= i; j++ {
			assert.Equal(t, j, got.MonthlyPayouts[j].Position)
		}
	}

	var stored models.Referral
	require.NoError(t, payouts.db.Preload("Payouts", orderByPosition).First(&stored, "id = ?", ref.ID).Error)
	require.Len(t, stored.Payouts, len(amounts))
	for i, a := range amounts {
		assert.Equal(t, a, stored.Payouts[i].Amount.String(), "payout %d", i)
		assert.Equal(t, "USD", stored.Payouts[i].Currency)
	}
	assert.Equal(t, 1+len(amounts), stored.Version)
}

func TestAppendSameMonthSums(t *testing.T) {
	ctx := context.Background()
	payouts := NewPayoutService(newTestDB(t))
	ref := newReferral(t, payouts)

	_, err := payouts.Append(ctx, ref.ID, &dto.AppendPayoutRequest{Month: "2024-01", Amount: "60"})
	require.NoError(t, err)
	got, err := payouts.Append(ctx, ref.ID, &dto.AppendPayoutRequest{Month: "2024-01", Amount: "15.50", Currency: "btc"})
	require.NoError(t, err)

	assert.Len(t, got.MonthlyPayouts, 2)
	assert.Equal(t, "BTC", got.MonthlyPayouts[1].Currency)
	assert.Equal(t, "$75.50", got.TotalEarnedFormatted)
}

func TestAppendDefaultsMonth(t *testing.T) {
	ctx := context.Background()
	payouts := NewPayoutService(newTestDB(t))
	payouts.now = func() time.Time { return time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC) }
	ref := newReferral(t, payouts)

	got, err := payouts.Append(ctx, ref.ID, &dto.AppendPayoutRequest{Amount: "1"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03", got.MonthlyPayouts[0].Month)
}

func TestAppendValidation(t *testing.T) {
	ctx := context.Background()
	payouts := NewPayoutService(newTestDB(t))
	ref := newReferral(t, payouts)

	tests := []struct {
		req dto.AppendPayoutRequest
		msg string
	}{
		{dto.AppendPayoutRequest{Month: "2024-1", Amount: "1"}, "YYYY-MM"},
		{dto.AppendPayoutRequest{Month: "2024-13", Amount: "1"}, "YYYY-MM"},
		{dto.AppendPayoutRequest{Month: "2024-01", Amount: "abc"}, "number"},
		{dto.AppendPayoutRequest{Month: "2024-01", Amount: "0"}, "greater than zero"},
		{dto.AppendPayoutRequest{Month: "2024-01", Amount: "-5"}, "greater than zero"},
		{dto.AppendPayoutRequest{Month: "2024-01", Amount: "5", Currency: "EUR"}, "currency"},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := payouts.Append(ctx, ref.ID, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorContains(t, err, tt.msg)
		})
	}

	_, err := payouts.Append(ctx, uuid.New(), &dto.AppendPayoutRequest{Month: "2024-01", Amount: "5"})
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, payouts.db.Model(&models.Payout{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestPayoutPositionIsUnique(t *testing.T) {
	payouts := NewPayoutService(newTestDB(t))
	ref := newReferral(t, payouts)

	p := models.Payout{ReferralID: ref.ID, Position: 0, Month: "2024-01", Currency: "USD"}
	require.NoError(t, payouts.db.Create(&p).Error)
	dup := models.Payout{ReferralID: ref.ID, Position: 0, Month: "2024-01", Currency: "USD"}
	assert.Error(t, payouts.db.Create(&dup).Error)
}
