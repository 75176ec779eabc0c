package providers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

// ChainClient defines the blockchain RPC operations the snapshot fetcher needs
type ChainClient interface {
	// GetBalance returns the native balance in lamports
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetTokenBalances returns the owner's SPL token holdings, one entry per token account
	GetTokenBalances(ctx context.Context, address string) ([]entities.AssetBalance, error)

	// GetSignatures returns up to limit signatures, most recent first
	GetSignatures(ctx context.Context, address string, limit int) ([]string, error)

	// GetTransaction returns the parsed transaction, or nil when the node does not have it
	GetTransaction(ctx context.Context, signature string) (*entities.TransactionRecord, error)

	// HealthCheck checks if the RPC node is reachable
	HealthCheck(ctx context.Context) error
}

// PriceProvider defines the fiat price source
type PriceProvider interface {
	// HistoricalPrice returns the unit price of coinID on the given UTC day
	HistoricalPrice(ctx context.Context, coinID string, day time.Time) (decimal.Decimal, error)

	// CurrentPrice returns the latest unit price of coinID
	CurrentPrice(ctx context.Context, coinID string) (decimal.Decimal, error)

	// CoinIDByContract resolves a token contract (mint) on a platform to a provider coin id
	CoinIDByContract(ctx context.Context, platform, contract string) (string, error)
}

// PriceCache stores resolved prices and coin ids between requests
type PriceCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
