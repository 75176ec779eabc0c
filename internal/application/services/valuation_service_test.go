package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
	"github.com/bimakw/fumble-tracker/internal/testutil"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFumbled(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		buy         string
		current     string
		wantFumbled string
		wantROI     string
	}{
		{"price went up", "2.5", "20", "25", "12.5", "25"},
		{"price went down", "2.5", "25", "20", "0", "-20"},
		{"flat fallback", "100", "0.01", "0.01", "0", "0"},
		{"zero buy price", "1", "0", "5", "5", "0"},
		{"rounds roi half away from zero", "1", "3", "4", "1", "33.33"},
		{"rounds negative roi", "1", "3", "2", "0", "-33.33"},
		{"roi rounds up", "1", "6", "7", "1", "16.67"},
		{"zero amount", "0", "1", "2", "0", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fumbled, roi := Fumbled(d(tt.amount), d(tt.buy), d(tt.current))

			if !fumbled.Equal(d(tt.wantFumbled)) {
				t.Errorf("fumbled = %s, want %s", fumbled, tt.wantFumbled)
			}
			if !roi.Equal(d(tt.wantROI)) {
				t.Errorf("roi = %s, want %s", roi, tt.wantROI)
			}
			if fumbled.IsNegative() {
				t.Errorf("fumbled must never be negative, got %s", fumbled)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"solana", "solana"},
		{"usd-coin", "usd-coin"},
		{"jupiter-exchange-solana", "jupiter-"},
		{testutil.UnknownMint, "7xKXtg2C"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := DisplayName(tt.id); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestValuationService_Value(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("values native with acquisition time", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider()
		provider.SetHistorical("solana", "20")
		provider.SetCurrent("solana", "25")
		service := NewValuationService(newTestPriceService(provider, nil, testPriceConfig()), logger)

		acquired := testutil.BlockTimeNov2023
		records := service.Value(ctx, []entities.AggregatedCoin{
			{AssetID: entities.NativeAssetID, Amount: d("2.5"), AcquiredAt: &acquired},
		})

		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		r := records[0]
		if r.DisplayName != "solana" {
			t.Errorf("expected solana, got %s", r.DisplayName)
		}
		if !r.BuyPrice.Equal(d("20")) || !r.CurrentPrice.Equal(d("25")) {
			t.Errorf("unexpected prices buy=%s current=%s", r.BuyPrice, r.CurrentPrice)
		}
		if !r.Fumbled.Equal(d("12.5")) || !r.ROIPercent.Equal(d("25")) {
			t.Errorf("unexpected fumbled=%s roi=%s", r.Fumbled, r.ROIPercent)
		}
	})

	t.Run("nil acquisition time uses fallback buy price", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider()
		provider.SetHistorical("usd-coin", "1")
		provider.SetCurrent("usd-coin", "1")
		service := NewValuationService(newTestPriceService(provider, nil, testPriceConfig()), logger)

		records := service.Value(ctx, []entities.AggregatedCoin{
			{AssetID: testutil.USDCMint, Amount: d("10")},
		})

		if !records[0].BuyPrice.Equal(fallbackPrice) {
			t.Errorf("expected fallback buy price, got %s", records[0].BuyPrice)
		}
		if provider.CallCount("HistoricalPrice") != 0 {
			t.Errorf("expected no historical lookup, got %d", provider.CallCount("HistoricalPrice"))
		}
		if records[0].DisplayName != "usd-coin" {
			t.Errorf("expected usd-coin, got %s", records[0].DisplayName)
		}
	})

	t.Run("unresolved asset uses fallback and truncated mint", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider()
		service := NewValuationService(newTestPriceService(provider, nil, testPriceConfig()), logger)

		acquired := testutil.BlockTimeJan2024
		records := service.Value(ctx, []entities.AggregatedCoin{
			{AssetID: testutil.UnknownMint, Amount: d("3"), AcquiredAt: &acquired},
		})

		r := records[0]
		if r.DisplayName != "7xKXtg2C" {
			t.Errorf("expected truncated mint, got %s", r.DisplayName)
		}
		if !r.BuyPrice.Equal(fallbackPrice) || !r.CurrentPrice.Equal(fallbackPrice) {
			t.Errorf("expected fallback prices, got buy=%s current=%s", r.BuyPrice, r.CurrentPrice)
		}
		if !r.Fumbled.IsZero() || !r.ROIPercent.IsZero() {
			t.Errorf("expected zero fumbled and roi, got %s, %s", r.Fumbled, r.ROIPercent)
		}
		if len(provider.Calls) != 0 {
			t.Errorf("expected no provider calls, got %d", len(provider.Calls))
		}
	})

	t.Run("failed lookup does not affect other coins", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider()
		provider.HistoricalPriceFunc = func(ctx context.Context, coinID string, day time.Time) (decimal.Decimal, error) {
			if coinID == "usd-coin" {
				<-ctx.Done()
				return decimal.Zero, ctx.Err()
			}
			return d("20"), nil
		}
		provider.CurrentPriceFunc = func(ctx context.Context, coinID string) (decimal.Decimal, error) {
			if coinID == "usd-coin" {
				return decimal.Zero, errors.New("upstream 500")
			}
			return d("25"), nil
		}
		service := NewValuationService(newTestPriceService(provider, nil, testPriceConfig()), logger)

		acquired := testutil.BlockTimeNov2023
		records := service.Value(ctx, []entities.AggregatedCoin{
			{AssetID: entities.NativeAssetID, Amount: d("2.5"), AcquiredAt: &acquired},
			{AssetID: testutil.USDCMint, Amount: d("10"), AcquiredAt: &acquired},
		})

		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}

		sol, usdc := records[0], records[1]
		if sol.DisplayName != "solana" || !sol.BuyPrice.Equal(d("20")) || !sol.CurrentPrice.Equal(d("25")) {
			t.Errorf("unexpected solana record: %+v", sol)
		}
		if !sol.Fumbled.Equal(d("12.5")) || !sol.ROIPercent.Equal(d("25")) {
			t.Errorf("unexpected solana fumbled=%s roi=%s", sol.Fumbled, sol.ROIPercent)
		}

		if usdc.DisplayName != "usd-coin" {
			t.Errorf("expected usd-coin, got %s", usdc.DisplayName)
		}
		if !usdc.BuyPrice.Equal(fallbackPrice) || !usdc.CurrentPrice.Equal(fallbackPrice) {
			t.Errorf("expected fallback prices, got buy=%s current=%s", usdc.BuyPrice, usdc.CurrentPrice)
		}
		if !usdc.Fumbled.IsZero() || !usdc.ROIPercent.IsZero() {
			t.Errorf("expected zero fumbled and roi, got %s, %s", usdc.Fumbled, usdc.ROIPercent)
		}
	})

	t.Run("keeps input order with slow lookups", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider()
		provider.CurrentPriceFunc = func(ctx context.Context, coinID string) (decimal.Decimal, error) {
			if coinID == "solana" {
				time.Sleep(20 * time.Millisecond)
			}
			return d("2"), nil
		}
		cfg := testPriceConfig()
		cfg.MintCoinIDs[testutil.BONKMint] = "bonk"
		service := NewValuationService(newTestPriceService(provider, nil, cfg), logger)

		records := service.Value(ctx, []entities.AggregatedCoin{
			{AssetID: entities.NativeAssetID, Amount: d("1")},
			{AssetID: testutil.USDCMint, Amount: d("1")},
			{AssetID: testutil.BONKMint, Amount: d("1")},
		})

		want := []string{"solana", "usd-coin", "bonk"}
		for i, r := range records {
			if r.DisplayName != want[i] {
				t.Errorf("record %d: expected %s, got %s", i, want[i], r.DisplayName)
			}
		}
	})

	t.Run("runs lookups concurrently", func(t *testing.T) {
		provider := testutil.NewMockPriceProvider()
		provider.HistoricalPriceFunc = func(ctx context.Context, coinID string, day time.Time) (decimal.Decimal, error) {
			time.Sleep(30 * time.Millisecond)
			return d("1"), nil
		}
		provider.CurrentPriceFunc = func(ctx context.Context, coinID string) (decimal.Decimal, error) {
			time.Sleep(30 * time.Millisecond)
			return d("1"), nil
		}
		cfg := testPriceConfig()
		cfg.Timeout = time.Second
		service := NewValuationService(newTestPriceService(provider, nil, cfg), logger)

		acquired := testutil.BlockTimeJan2024
		coins := make([]entities.AggregatedCoin, 5)
		for i := range coins {
			coins[i] = entities.AggregatedCoin{AssetID: entities.NativeAssetID, Amount: d("1"), AcquiredAt: &acquired}
		}

		start := time.Now()
		service.Value(ctx, coins)

		// 10 sequential lookups would take 300ms
		if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
			t.Errorf("expected concurrent lookups, took %v", elapsed)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		service := NewValuationService(newTestPriceService(testutil.NewMockPriceProvider(), nil, testPriceConfig()), logger)

		if records := service.Value(ctx, nil); len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})
}
