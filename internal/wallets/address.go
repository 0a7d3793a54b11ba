package wallets

import (
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"

	"github.com/stakeback/cashback-backend/internal/models"
)

// FormatValid reports whether address looks like a mainnet address for
// asset. It is advisory: saves are never rejected on format.
func FormatValid(asset models.Asset, address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	switch asset {
	case models.AssetBTC:
		return validBitcoin(address)
	case models.AssetETH, models.AssetBase:
		return common.IsHexAddress(address) && strings.HasPrefix(address, "0x")
	case models.AssetSolana:
		return len(base58.Decode(address)) == 32
	default:
		return false
	}
}

func validBitcoin(address string) bool {
	if strings.HasPrefix(strings.ToLower(address), "bc1") {
		hrp, data, err := bech32.Decode(address)
		if err != nil || hrp != "bc" || len(data) < 1 {
			return false
		}
		program, err := bech32.ConvertBits(data[1:], 5, 8, false)
		if err != nil {
			return false
		}
		return len(program) == 20 || len(program) == 32
	}
	_, version, err := base58.CheckDecode(address)
	if err != nil {
		return false
	}
	// P2PKH and P2SH on mainnet.
	return version == 0x00 || version == 0x05
}
