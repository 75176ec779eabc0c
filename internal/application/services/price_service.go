package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/fumble-tracker/internal/config"
	"github.com/bimakw/fumble-tracker/internal/domain/entities"
	"github.com/bimakw/fumble-tracker/internal/domain/providers"
)

// Price lookup kinds and outcomes reported to PriceMetrics
const (
	LookupHistorical = "historical"
	LookupCurrent    = "current"
	LookupCoinID     = "coin_id"

	OutcomeHit      = "hit"
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// NativeCoinID is the price provider id of SOL
const NativeCoinID = "solana"

// contractPlatform is the provider's platform id for SPL mints
const contractPlatform = "solana"

// PriceMetrics receives price lookup outcomes
type PriceMetrics interface {
	PriceLookup(kind, outcome string)
}

// PriceService resolves historical and current prices for assets.
// Lookups never fail: unresolvable prices degrade to the fallback price.
type PriceService struct {
	provider providers.PriceProvider
	cache    providers.PriceCache
	config   config.PriceConfig
	ttl      config.CacheConfig
	fallback decimal.Decimal
	metrics  PriceMetrics
	logger   *zap.Logger
}

// NewPriceService creates a new price service. cache and metrics may be nil.
func NewPriceService(
	provider providers.PriceProvider,
	cache providers.PriceCache,
	priceCfg config.PriceConfig,
	cacheCfg config.CacheConfig,
	metrics PriceMetrics,
	logger *zap.Logger,
) *PriceService {
	return &PriceService{
		provider: provider,
		cache:    cache,
		config:   priceCfg,
		ttl:      cacheCfg,
		fallback: decimal.NewFromFloat(priceCfg.Fallback),
		metrics:  metrics,
		logger:   logger,
	}
}

// Fallback returns the price used when a lookup cannot be resolved
func (s *PriceService) Fallback() decimal.Decimal {
	return s.fallback
}

// CoinID maps an asset id to a price provider coin id
func (s *PriceService) CoinID(ctx context.Context, assetID string) (string, bool) {
	if assetID == entities.NativeAssetID {
		return NativeCoinID, true
	}

	if id, ok := s.config.MintCoinIDs[assetID]; ok && id != "" {
		return id, true
	}

	if s.config.ContractLookup {
		if id, ok := s.lookupContract(ctx, assetID); ok {
			return id, true
		}
	}

	if s.config.DefaultCoinID != "" {
		return s.config.DefaultCoinID, true
	}

	return "", false
}

// HistoricalPrice returns the price of assetID on the UTC day of blockTime
func (s *PriceService) HistoricalPrice(ctx context.Context, assetID string, blockTime int64) decimal.Decimal {
	coinID, ok := s.CoinID(ctx, assetID)
	if !ok {
		s.unresolved(LookupHistorical, assetID)
		return s.fallback
	}
	return s.historical(ctx, coinID, blockTime)
}

// CurrentPrice returns the latest price of assetID
func (s *PriceService) CurrentPrice(ctx context.Context, assetID string) decimal.Decimal {
	coinID, ok := s.CoinID(ctx, assetID)
	if !ok {
		s.unresolved(LookupCurrent, assetID)
		return s.fallback
	}
	return s.current(ctx, coinID)
}

func (s *PriceService) historical(ctx context.Context, coinID string, blockTime int64) decimal.Decimal {
	day := time.Unix(blockTime, 0).UTC()
	key := fmt.Sprintf("price:historical:%s:%s:%s", s.vsCurrency(), coinID, day.Format("2006-01-02"))

	return s.resolve(ctx, LookupHistorical, key, s.ttl.HistoricalTTL, func(ctx context.Context) (decimal.Decimal, error) {
		return s.provider.HistoricalPrice(ctx, coinID, day)
	})
}

func (s *PriceService) current(ctx context.Context, coinID string) decimal.Decimal {
	key := fmt.Sprintf("price:current:%s:%s", s.vsCurrency(), coinID)

	return s.resolve(ctx, LookupCurrent, key, s.ttl.CurrentTTL, func(ctx context.Context) (decimal.Decimal, error) {
		return s.provider.CurrentPrice(ctx, coinID)
	})
}

// resolve performs one bounded lookup through the cache. Only positive
// prices are cached; failures return the fallback and are not cached.
func (s *PriceService) resolve(
	ctx context.Context,
	kind, key string,
	ttl time.Duration,
	lookup func(ctx context.Context) (decimal.Decimal, error),
) decimal.Decimal {
	if s.cache != nil {
		var cached decimal.Decimal
		if err := s.cache.Get(ctx, key, &cached); err == nil && cached.IsPositive() {
			s.observe(kind, OutcomeHit)
			return cached
		}
	}

	lookupCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	price, err := lookup(lookupCtx)
	if err == nil && !price.IsPositive() {
		err = fmt.Errorf("%w: non-positive price %s", entities.ErrPriceUnavailable, price.String())
	}
	if err != nil {
		s.logger.Warn("Price lookup failed, using fallback",
			zap.String("kind", kind),
			zap.String("key", key),
			zap.String("fallback", s.fallback.String()),
			zap.Error(err),
		)
		s.observe(kind, OutcomeFallback)
		return s.fallback
	}

	s.observe(kind, OutcomeOK)

	if s.cache != nil && ttl > 0 {
		if err := s.cache.SetWithTTL(ctx, key, price, ttl); err != nil {
			s.logger.Warn("Failed to cache price", zap.String("key", key), zap.Error(err))
		}
	}

	return price
}

// lookupContract asks the provider for the coin id of a mint
func (s *PriceService) lookupContract(ctx context.Context, mint string) (string, bool) {
	key := "coin_id:" + mint

	if s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, key, &cached); err == nil && cached != "" {
			s.observe(LookupCoinID, OutcomeHit)
			return cached, true
		}
	}

	lookupCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.provider.CoinIDByContract(lookupCtx, contractPlatform, mint)
	if err != nil || id == "" {
		s.logger.Debug("Contract lookup failed",
			zap.String("mint", mint),
			zap.Error(err),
		)
		s.observe(LookupCoinID, OutcomeFallback)
		return "", false
	}

	s.observe(LookupCoinID, OutcomeOK)

	if s.cache != nil && s.ttl.CoinIDTTL > 0 {
		if err := s.cache.SetWithTTL(ctx, key, id, s.ttl.CoinIDTTL); err != nil {
			s.logger.Warn("Failed to cache coin id", zap.String("key", key), zap.Error(err))
		}
	}

	return id, true
}

func (s *PriceService) unresolved(kind, assetID string) {
	s.logger.Warn("No coin id for asset, using fallback",
		zap.String("kind", kind),
		zap.String("asset_id", assetID),
		zap.Error(entities.ErrPriceUnavailable),
	)
	s.observe(kind, OutcomeFallback)
}

func (s *PriceService) observe(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.PriceLookup(kind, outcome)
	}
}

func (s *PriceService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

func (s *PriceService) vsCurrency() string {
	if s.config.VsCurrency == "" {
		return "usd"
	}
	return strings.ToLower(s.config.VsCurrency)
}
