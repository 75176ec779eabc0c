package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

const displayNameLen = 8

var hundred = decimal.NewFromInt(100)

// ValuationService prices aggregated coins and computes fumbled gains
type ValuationService struct {
	prices *PriceService
	logger *zap.Logger
}

// NewValuationService creates a new valuation service
func NewValuationService(prices *PriceService, logger *zap.Logger) *ValuationService {
	return &ValuationService{
		prices: prices,
		logger: logger,
	}
}

// Value prices every coin concurrently and returns one record per coin in
// input order. It never fails; unresolved prices fall back per coin.
func (s *ValuationService) Value(ctx context.Context, coins []entities.AggregatedCoin) []entities.ValuationRecord {
	records := make([]entities.ValuationRecord, len(coins))

	var wg sync.WaitGroup
	for i, coin := range coins {
		i, coin := i, coin
		wg.Add(1)
		go func() {
			defer wg.Done()
			records[i] = s.valueCoin(ctx, coin)
		}()
	}
	wg.Wait()

	return records
}

func (s *ValuationService) valueCoin(ctx context.Context, coin entities.AggregatedCoin) entities.ValuationRecord {
	coinID, resolved := s.prices.CoinID(ctx, coin.AssetID)

	name := coin.AssetID
	if resolved {
		name = coinID
	}

	buy := s.prices.Fallback()
	current := s.prices.Fallback()

	if !resolved {
		s.prices.unresolved(LookupCurrent, coin.AssetID)
	} else {
		var wg sync.WaitGroup

		if coin.AcquiredAt != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				buy = s.prices.historical(ctx, coinID, *coin.AcquiredAt)
			}()
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			current = s.prices.current(ctx, coinID)
		}()

		wg.Wait()
	}

	fumbled, roi := Fumbled(coin.Amount, buy, current)

	s.logger.Debug("Valued coin",
		zap.String("asset_id", coin.AssetID),
		zap.String("coin_id", coinID),
		zap.String("buy_price", buy.String()),
		zap.String("current_price", current.String()),
		zap.String("fumbled", fumbled.String()),
	)

	return entities.ValuationRecord{
		AssetID:      coin.AssetID,
		DisplayName:  DisplayName(name),
		Amount:       coin.Amount,
		BuyPrice:     buy,
		CurrentPrice: current,
		Fumbled:      fumbled,
		ROIPercent:   roi,
	}
}

// Fumbled returns the missed gain max(0, current-buy)*amount and the ROI
// percentage rounded to 2 places. ROI is 0 when buy is zero.
func Fumbled(amount, buy, current decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	diff := current.Sub(buy)

	fumbled := decimal.Max(diff, decimal.Zero).Mul(amount)

	if buy.IsZero() {
		return fumbled, decimal.Zero
	}
	roi := diff.Div(buy).Mul(hundred).Round(2)
	return fumbled, roi
}

// DisplayName truncates an identifier to the first 8 characters
func DisplayName(id string) string {
	runes := []rune(id)
	if len(runes) <= displayNameLen {
		return id
	}
	return string(runes[:displayNameLen])
}
