package wallets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeback/cashback-backend/internal/models"
)

func TestSetPriorityMovesPrimary(t *testing.T) {
	set := models.EmptyWallets()

	set, err := SetPriority(set, models.AssetBTC, models.PriorityPrimary)
	require.NoError(t, err)
	set, err = SetPriority(set, models.AssetETH, models.PriorityPrimary)
	require.NoError(t, err)

	assert.Equal(t, models.PriorityNone, set[models.AssetBTC].Priority)
	assert.Equal(t, models.PriorityPrimary, set[models.AssetETH].Priority)

	primaries := 0
	for _, w := range set {
		if w.Priority == models.PriorityPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestSetPriorityKeepsOtherLevel(t *testing.T) {
	set := models.WalletSet{
		models.AssetBTC: {Address: "a", Priority: models.PriorityPrimary},
		models.AssetETH: {Address: "b", Priority: models.PriorityBackup},
	}

	out, err := SetPriority(set, models.AssetSolana, models.PriorityBackup)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityPrimary, out[models.AssetBTC].Priority)
	assert.Equal(t, models.PriorityNone, out[models.AssetETH].Priority)
	assert.Equal(t, models.PriorityBackup, out[models.AssetSolana].Priority)

	// input untouched
	assert.Equal(t, models.PriorityBackup, set[models.AssetETH].Priority)
}

func TestSetPriorityZeroClearsOnlyTarget(t *testing.T) {
	set := models.WalletSet{
		models.AssetBTC: {Address: "a", Priority: models.PriorityPrimary},
		models.AssetETH: {Address: "b", Priority: models.PriorityBackup},
	}

	out, err := SetPriority(set, models.AssetBTC, models.PriorityNone)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNone, out[models.AssetBTC].Priority)
	assert.Equal(t, models.PriorityBackup, out[models.AssetETH].Priority)
}

func TestSetPriorityRejectsBadInput(t *testing.T) {
	_, err := SetPriority(models.EmptyWallets(), "doge", models.PriorityPrimary)
	assert.ErrorIs(t, err, ErrUnknownAsset)

	_, err = SetPriority(models.EmptyWallets(), models.AssetBTC, 3)
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		set  models.WalletSet
		err  error
	}{
		{
			name: "all empty",
			set:  models.EmptyWallets(),
			err:  ErrNoAddress,
		},
		{
			name: "whitespace only",
			set:  models.WalletSet{models.AssetBTC: {Address: "   "}},
			err:  ErrNoAddress,
		},
		{
			name: "one address",
			set: models.WalletSet{
				models.AssetBTC: {Address: "bc1q...", Priority: models.PriorityPrimary},
				models.AssetETH: {Address: "0x...", Priority: models.PriorityNone},
			},
		},
		{
			name: "two primaries",
			set: models.WalletSet{
				models.AssetBTC: {Address: "x", Priority: models.PriorityPrimary},
				models.AssetETH: {Address: "y", Priority: models.PriorityPrimary},
			},
			err: ErrDuplicatePriority,
		},
		{
			name: "unknown asset",
			set:  models.WalletSet{"doge": {Address: "D"}},
			err:  ErrUnknownAsset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.set)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPrimaryAndBackup(t *testing.T) {
	set := models.WalletSet{
		models.AssetSolana: {Address: "s", Priority: models.PriorityPrimary},
		models.AssetBase:   {Address: "b", Priority: models.PriorityBackup},
	}
	p, ok := Primary(set)
	require.True(t, ok)
	assert.Equal(t, models.AssetSolana, p)

	b, ok := Backup(set)
	require.True(t, ok)
	assert.Equal(t, models.AssetBase, b)

	_, ok = Primary(models.EmptyWallets())
	assert.False(t, ok)
}

func TestFormatValid(t *testing.T) {
	tests := []struct {
		asset   models.Asset
		address string
		want    bool
	}{
		{models.AssetBTC, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", true},
		{models.AssetBTC, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true},
		{models.AssetBTC, "bc1q...", false},
		{models.AssetETH, "0x52908400098527886E0F7030069857D2E4169EE7", true},
		{models.AssetBase, "0x52908400098527886E0F7030069857D2E4169EE7", true},
		{models.AssetETH, "0x...", false},
		{models.AssetSolana, "11111111111111111111111111111111", true},
		{models.AssetSolana, "So1a", false},
		{models.AssetETH, "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValid(tt.asset, tt.address), "%s %q", tt.asset, tt.address)
	}
}
