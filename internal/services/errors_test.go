package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakeback/cashback-backend/internal/wallets"
)

func TestErrorKinds(t *testing.T) {
	err := validationError("please select a casino")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrPermission)
	assert.Equal(t, "please select a casino", err.Error())

	wrapped := wrapValidation(wallets.ErrNoAddress)
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.ErrorIs(t, wrapped, wallets.ErrNoAddress)

	cause := errors.New("connection refused")
	be := backendError("save wallets", cause)
	assert.ErrorIs(t, be, ErrBackend)
	assert.ErrorIs(t, be, cause)
	assert.Equal(t, "failed to save wallets: connection refused", be.Error())
}
