package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/fumble-tracker/internal/config"
	"github.com/bimakw/fumble-tracker/internal/domain/entities"
	"github.com/bimakw/fumble-tracker/internal/domain/providers"
	"github.com/bimakw/fumble-tracker/internal/infrastructure/solana"
)

// SnapshotService fetches the on-chain state of a wallet
type SnapshotService struct {
	chain  providers.ChainClient
	config config.SolanaConfig
	logger *zap.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(
	chain providers.ChainClient,
	cfg config.SolanaConfig,
	logger *zap.Logger,
) *SnapshotService {
	return &SnapshotService{
		chain:  chain,
		config: cfg,
		logger: logger,
	}
}

// Fetch returns the balances and recent transactions of address.
// Any RPC failure fails the whole snapshot with ErrUpstreamUnavailable.
func (s *SnapshotService) Fetch(ctx context.Context, address string) (*entities.WalletSnapshot, error) {
	owner, err := solana.ParseAddress(address)
	if err != nil {
		return nil, err
	}
	address = owner.String()

	var (
		lamports uint64
		tokens   []entities.AssetBalance
		txs      []entities.TransactionRecord
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		balance, err := s.chain.GetBalance(gCtx, address)
		if err != nil {
			return fmt.Errorf("%w: balance: %w", entities.ErrUpstreamUnavailable, err)
		}
		lamports = balance
		return nil
	})

	g.Go(func() error {
		balances, err := s.chain.GetTokenBalances(gCtx, address)
		if err != nil {
			return fmt.Errorf("%w: token accounts: %w", entities.ErrUpstreamUnavailable, err)
		}
		tokens = mergeBalances(balances)
		return nil
	})

	g.Go(func() error {
		signatures, err := s.chain.GetSignatures(gCtx, address, s.config.TxLimit)
		if err != nil {
			return fmt.Errorf("%w: signatures: %w", entities.ErrUpstreamUnavailable, err)
		}
		txs, err = s.fetchTransactions(gCtx, signatures)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("Fetched wallet snapshot",
		zap.String("address", address),
		zap.Uint64("lamports", lamports),
		zap.Int("token_balances", len(tokens)),
		zap.Int("transactions", len(txs)),
	)

	return &entities.WalletSnapshot{
		Address:       address,
		NativeBalance: entities.AssetBalance{AssetID: entities.NativeAssetID, Amount: entities.LamportsToSOL(lamports)},
		TokenBalances: tokens,
		RecentTxs:     txs,
	}, nil
}

// fetchTransactions loads transaction details with bounded concurrency,
// keeping signature order and skipping transactions the node does not return.
func (s *SnapshotService) fetchTransactions(ctx context.Context, signatures []string) ([]entities.TransactionRecord, error) {
	results := make([]*entities.TransactionRecord, len(signatures))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	for i, sig := range signatures {
		i, sig := i, sig
		g.Go(func() error {
			tx, err := s.chain.GetTransaction(gCtx, sig)
			if err != nil {
				return fmt.Errorf("%w: transaction %s: %w", entities.ErrUpstreamUnavailable, sig, err)
			}
			results[i] = tx
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	txs := make([]entities.TransactionRecord, 0, len(results))
	for i, tx := range results {
		if tx == nil {
			s.logger.Debug("Transaction not found, skipping", zap.String("signature", signatures[i]))
			continue
		}
		txs = append(txs, *tx)
	}
	return txs, nil
}

func (s *SnapshotService) workers() int {
	if s.config.FetchWorkers < 1 {
		return 1
	}
	return s.config.FetchWorkers
}
