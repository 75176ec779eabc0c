package testutil

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

// Common test addresses
const (
	WalletAddress = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	USDCMint      = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	BONKMint      = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	UnknownMint   = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
)

// Block times used across fixtures
const (
	BlockTimeNov2023 int64 = 1700000000 // 2023-11-14T22:13:20Z
	BlockTimeJan2024 int64 = 1705312200 // 2024-01-15T09:50:00Z
)

// Balance creates an asset balance from a decimal string
func Balance(assetID, amount string) entities.AssetBalance {
	return entities.AssetBalance{
		AssetID: assetID,
		Amount:  decimal.RequireFromString(amount),
	}
}

// CreateTestTransaction creates a successful transaction with a block time and no token entries
func CreateTestTransaction(opts ...TransactionOption) entities.TransactionRecord {
	blockTime := BlockTimeJan2024
	tx := entities.TransactionRecord{
		Signature: "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW",
		BlockTime: &blockTime,
	}

	for _, opt := range opts {
		opt(&tx)
	}

	return tx
}

type TransactionOption func(*entities.TransactionRecord)

func TxWithSignature(sig string) TransactionOption {
	return func(tx *entities.TransactionRecord) {
		tx.Signature = sig
	}
}

func TxWithBlockTime(ts int64) TransactionOption {
	return func(tx *entities.TransactionRecord) {
		tx.BlockTime = &ts
	}
}

func TxWithoutBlockTime() TransactionOption {
	return func(tx *entities.TransactionRecord) {
		tx.BlockTime = nil
	}
}

func TxWithTokenChange(assetID, amount string) TransactionOption {
	return func(tx *entities.TransactionRecord) {
		tx.TokenBalanceChanges = append(tx.TokenBalanceChanges, entities.TokenBalanceChange{
			AssetID: assetID,
			Amount:  decimal.RequireFromString(amount),
		})
	}
}

func TxFailed() TransactionOption {
	return func(tx *entities.TransactionRecord) {
		tx.Failed = true
	}
}

// CreateTestSnapshot creates a snapshot of WalletAddress holding 2.5 SOL and nothing else
func CreateTestSnapshot(opts ...SnapshotOption) *entities.WalletSnapshot {
	s := &entities.WalletSnapshot{
		Address:       WalletAddress,
		NativeBalance: Balance(entities.NativeAssetID, "2.5"),
		TokenBalances: []entities.AssetBalance{},
		RecentTxs:     []entities.TransactionRecord{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type SnapshotOption func(*entities.WalletSnapshot)

func SnapshotWithNative(amount string) SnapshotOption {
	return func(s *entities.WalletSnapshot) {
		s.NativeBalance = Balance(entities.NativeAssetID, amount)
	}
}

func SnapshotWithTokens(balances ...entities.AssetBalance) SnapshotOption {
	return func(s *entities.WalletSnapshot) {
		s.TokenBalances = append(s.TokenBalances, balances...)
	}
}

func SnapshotWithTxs(txs ...entities.TransactionRecord) SnapshotOption {
	return func(s *entities.WalletSnapshot) {
		s.RecentTxs = append(s.RecentTxs, txs...)
	}
}

// CreateMultipleTransactions creates count transactions, most recent first, one hour apart
func CreateMultipleTransactions(count int) []entities.TransactionRecord {
	txs := make([]entities.TransactionRecord, count)
	for i := 0; i < count; i++ {
		txs[i] = CreateTestTransaction(
			TxWithSignature(fmt.Sprintf("sig-%03d", i)),
			TxWithBlockTime(BlockTimeJan2024-int64(i)*3600),
		)
	}
	return txs
}
