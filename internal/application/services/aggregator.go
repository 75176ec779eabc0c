package services

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

// Aggregate builds the coin set of a snapshot and attributes an acquisition
// time to each coin from the recent transaction window.
//
// The native coin is always first, followed by positive token balances in
// snapshot order. Transactions are scanned most-recent-first and the first
// transaction mentioning a coin wins. A transaction without token balance
// entries is a native transfer. Transactions without a block time are ignored.
func Aggregate(snapshot *entities.WalletSnapshot) []entities.AggregatedCoin {
	if snapshot == nil {
		return nil
	}

	coins := []entities.AggregatedCoin{{
		AssetID: entities.NativeAssetID,
		Amount:  snapshot.NativeBalance.Amount,
	}}
	index := map[string]int{entities.NativeAssetID: 0}

	// Wrapped SOL shares the native id and folds into the native coin
	for _, b := range mergeBalances(snapshot.TokenBalances) {
		if i, ok := index[b.AssetID]; ok {
			coins[i].Amount = coins[i].Amount.Add(b.Amount)
			continue
		}
		index[b.AssetID] = len(coins)
		coins = append(coins, entities.AggregatedCoin{
			AssetID: b.AssetID,
			Amount:  b.Amount,
		})
	}

	for _, tx := range snapshot.RecentTxs {
		if tx.BlockTime == nil {
			continue
		}

		if len(tx.TokenBalanceChanges) == 0 {
			assignAcquired(&coins[0], *tx.BlockTime)
			continue
		}

		for _, change := range tx.TokenBalanceChanges {
			if i, ok := index[change.AssetID]; ok {
				assignAcquired(&coins[i], *tx.BlockTime)
			}
		}
	}

	return coins
}

func assignAcquired(coin *entities.AggregatedCoin, blockTime int64) {
	if coin.AcquiredAt != nil {
		return
	}
	ts := blockTime
	coin.AcquiredAt = &ts
}

// mergeBalances drops non-positive balances and sums accounts of the same
// asset, keeping the position of the first account.
func mergeBalances(balances []entities.AssetBalance) []entities.AssetBalance {
	positive := lo.Filter(balances, func(b entities.AssetBalance, _ int) bool {
		return b.Amount.IsPositive()
	})

	totals := make(map[string]decimal.Decimal, len(positive))
	for _, b := range positive {
		totals[b.AssetID] = totals[b.AssetID].Add(b.Amount)
	}

	return lo.Map(lo.UniqBy(positive, func(b entities.AssetBalance) string {
		return b.AssetID
	}), func(b entities.AssetBalance, _ int) entities.AssetBalance {
		return entities.AssetBalance{AssetID: b.AssetID, Amount: totals[b.AssetID]}
	})
}
