package entities

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// AggregatedCoin is a held asset joined with its inferred acquisition time
type AggregatedCoin struct {
	AssetID string
	Amount  decimal.Decimal
	// AcquiredAt is the block time of the most recent transaction in the
	// fetched window that mentions the asset. Nil means no history is available.
	AcquiredAt *int64
}

// ValuationRecord is the per-coin report line
type ValuationRecord struct {
	AssetID      string
	DisplayName  string
	Amount       decimal.Decimal
	BuyPrice     decimal.Decimal
	CurrentPrice decimal.Decimal
	Fumbled      decimal.Decimal
	ROIPercent   decimal.Decimal
}

type valuationRecordJSON struct {
	Coin         string  `json:"coin"`
	BuyPrice     float64 `json:"buyPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	Fumbled      float64 `json:"fumbled"`
	ROIPercent   float64 `json:"roiPercent"`
}

// MarshalJSON renders prices as JSON numbers, which is what the chart UI reads
func (v ValuationRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(valuationRecordJSON{
		Coin:         v.DisplayName,
		BuyPrice:     v.BuyPrice.InexactFloat64(),
		CurrentPrice: v.CurrentPrice.InexactFloat64(),
		Fumbled:      v.Fumbled.InexactFloat64(),
		ROIPercent:   v.ROIPercent.InexactFloat64(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (v *ValuationRecord) UnmarshalJSON(data []byte) error {
	var raw valuationRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.DisplayName = raw.Coin
	v.BuyPrice = decimal.NewFromFloat(raw.BuyPrice)
	v.CurrentPrice = decimal.NewFromFloat(raw.CurrentPrice)
	v.Fumbled = decimal.NewFromFloat(raw.Fumbled)
	v.ROIPercent = decimal.NewFromFloat(raw.ROIPercent)
	return nil
}
