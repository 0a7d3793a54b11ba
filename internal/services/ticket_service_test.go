package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeback/cashback-backend/internal/dto"
	"github.com/stakeback/cashback-backend/internal/models"
)

func TestTicketLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tickets := NewTicketService(db)
	_, sess := createUser(t, db, "help@example.com", false)

	_, err := tickets.Create(ctx, sess, &dto.CreateTicketRequest{Name: "Al", Email: "help@example.com", Subject: "Payout"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = tickets.Create(ctx, sess, &dto.CreateTicketRequest{Name: "Al", Email: "nope", Subject: "Payout", Message: "Where?"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	created, err := tickets.Create(ctx, sess, &dto.CreateTicketRequest{Name: "Al", Email: "Help@Example.com", Subject: "Payout", Message: "Where is it?"})
	require.NoError(t, err)
	assert.Equal(t, models.TicketOpen, created.Status)
	assert.Equal(t, "help@example.com", created.Email)
	assert.Nil(t, created.AdminResponse)

	_, err = tickets.Create(ctx, sess, &dto.CreateTicketRequest{Name: "Al", Email: "help@example.com", Subject: "Wallet", Message: "Change?"})
	require.NoError(t, err)

	open, total, err := tickets.List(ctx, models.TicketOpen, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, open, 2)

	resolved, err := tickets.Resolve(ctx, created.ID, " Sent today ")
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, resolved.Status)
	require.NotNil(t, resolved.AdminResponse)
	assert.Equal(t, "Sent today", *resolved.AdminResponse)
	assert.NotNil(t, resolved.ResolvedAt)

	open, total, err = tickets.List(ctx, models.TicketOpen, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Wallet", open[0].Subject)

	_, err = tickets.Resolve(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}
