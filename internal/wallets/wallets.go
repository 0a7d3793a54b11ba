// Package wallets holds the payout wallet rules: priority assignment,
// save-time validation and address format checks.
package wallets

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stakeback/cashback-backend/internal/models"
)

var (
	ErrUnknownAsset      = errors.New("unknown wallet asset")
	ErrInvalidPriority   = errors.New("priority must be 0, 1 or 2")
	ErrNoAddress         = errors.New("please provide at least one wallet address")
	ErrDuplicatePriority = errors.New("only one wallet can have each priority level at a time")
)

// SetPriority returns a new wallet set in which asset holds priority p.
// A priority of 1 or 2 is first cleared from every other wallet, so the
// result never has two wallets sharing that priority. Priority 0 only
// clears the target.
func SetPriority(set models.WalletSet, asset models.Asset, p models.Priority) (models.WalletSet, error) {
	if !asset.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	if !p.Valid() {
		return nil, ErrInvalidPriority
	}

	out := set.Normalized()
	if p != models.PriorityNone {
		for k, w := range out {
			if k != asset && w.Priority == p {
				w.Priority = models.PriorityNone
				out[k] = w
			}
		}
	}
	w := out[asset]
	w.Priority = p
	out[asset] = w
	return out, nil
}

// SetAddress returns a new wallet set with the address of asset replaced.
func SetAddress(set models.WalletSet, asset models.Asset, address string) (models.WalletSet, error) {
	if !asset.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	out := set.Normalized()
	w := out[asset]
	w.Address = strings.TrimSpace(address)
	out[asset] = w
	return out, nil
}

// Validate checks a wallet set before it is written.
func Validate(set models.WalletSet) error {
	hasAddress := false
	holders := map[models.Priority]models.Asset{}
	for _, asset := range sortedKeys(set) {
		w := set[asset]
		if !asset.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
		}
		if !w.Priority.Valid() {
			return ErrInvalidPriority
		}
		if strings.TrimSpace(w.Address) != "" {
			hasAddress = true
		}
		if w.Priority == models.PriorityNone {
			continue
		}
		if other, taken := holders[w.Priority]; taken {
			return fmt.Errorf("%w: %s and %s both hold priority %d", ErrDuplicatePriority, other, asset, w.Priority)
		}
		holders[w.Priority] = asset
	}
	if !hasAddress {
		return ErrNoAddress
	}
	return nil
}

// Primary returns the asset holding priority 1, if any.
func Primary(set models.WalletSet) (models.Asset, bool) {
	return holder(set, models.PriorityPrimary)
}

// Backup returns the asset holding priority 2, if any.
func Backup(set models.WalletSet) (models.Asset, bool) {
	return holder(set, models.PriorityBackup)
}

func holder(set models.WalletSet, p models.Priority) (models.Asset, bool) {
	for _, asset := range models.Assets {
		if w, ok := set[asset]; ok && w.Priority == p {
			return asset, true
		}
	}
	return "", false
}

// sortedKeys yields known assets in display order followed by unknown keys,
// so validation errors are stable.
func sortedKeys(set models.WalletSet) []models.Asset {
	keys := make([]models.Asset, 0, len(set))
	for _, a := range models.Assets {
		if _, ok := set[a]; ok {
			keys = append(keys, a)
		}
	}
	var unknown []models.Asset
	for k := range set {
		if !k.Valid() {
			unknown = append(unknown, k)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(keys, unknown...)
}
