package entities

import (
	"github.com/shopspring/decimal"
)

// NativeAssetID identifies SOL in coin sets. It is the wrapped-SOL mint so the
// native asset and its SPL wrapper share one price identity.
const NativeAssetID = "So11111111111111111111111111111111111111112"

// LamportsPerSOL converts lamports to whole SOL
const LamportsPerSOL = 1_000_000_000

// AssetBalance is a holding expressed in whole-coin units
type AssetBalance struct {
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// TokenBalanceChange is one post-transaction token balance entry of a transaction
type TokenBalanceChange struct {
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// TransactionRecord is a transaction touching the wallet
type TransactionRecord struct {
	Signature           string               `json:"signature"`
	BlockTime           *int64               `json:"block_time,omitempty"` // Unix seconds, nil when the node has none
	TokenBalanceChanges []TokenBalanceChange `json:"token_balance_changes"`
	Failed              bool                 `json:"failed"`
}

// WalletSnapshot is the on-chain state of a wallet at request time.
// RecentTxs is ordered most-recent-first and bounded by the fetch limit.
type WalletSnapshot struct {
	Address       string              `json:"address"`
	NativeBalance AssetBalance        `json:"native_balance"`
	TokenBalances []AssetBalance      `json:"token_balances"`
	RecentTxs     []TransactionRecord `json:"recent_txs"`
}

// LamportsToSOL converts a raw lamport balance to SOL
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Div(decimal.NewFromInt(LamportsPerSOL))
}
