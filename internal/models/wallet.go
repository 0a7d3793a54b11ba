package models

// Asset is a crypto-asset key accepted for payout wallets.
type Asset string

const (
	AssetBTC    Asset = "btc"
	AssetETH    Asset = "eth"
	AssetSolana Asset = "solana"
	AssetBase   Asset = "base"
)

// Assets lists the supported wallet keys in display order.
var Assets = []Asset{AssetBTC, AssetETH, AssetSolana, AssetBase}

func (a Asset) Valid() bool {
	for _, known := range Assets {
		if a == known {
			return true
		}
	}
	return false
}

// Priority 1 is the primary payout wallet, 2 the backup, 0 none.
type Priority int

const (
	PriorityNone    Priority = 0
	PriorityPrimary Priority = 1
	PriorityBackup  Priority = 2
)

func (p Priority) Valid() bool {
	return p >= PriorityNone && p <= PriorityBackup
}

type Wallet struct {
	Address  string   `json:"address"`
	Priority Priority `json:"priority"`
}

// WalletSet maps each asset to its wallet.
type WalletSet map[Asset]Wallet

// EmptyWallets is the set every profile starts with.
func EmptyWallets() WalletSet {
	set := make(WalletSet, len(Assets))
	for _, a := range Assets {
		set[a] = Wallet{}
	}
	return set
}

// Normalized returns a copy that contains every supported asset. Unknown
// keys are carried over so validation can reject them.
func (s WalletSet) Normalized() WalletSet {
	out := EmptyWallets()
	for k, w := range s {
		out[k] = w
	}
	return out
}

func (s WalletSet) Clone() WalletSet {
	out := make(WalletSet, len(s))
	for k, w := range s {
		out[k] = w
	}
	return out
}
