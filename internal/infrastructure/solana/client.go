package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/bimakw/fumble-tracker/internal/config"
	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

var maxTxVersion uint64 = 0

// Client wraps the solana-go RPC client with per-call timeouts and domain parsing
type Client struct {
	client  *rpc.Client
	config  config.SolanaConfig
	logger  *zap.Logger
	timeout time.Duration
}

// NewClient creates a new Solana RPC client. It is shared by all requests.
func NewClient(cfg config.SolanaConfig, logger *zap.Logger) *Client {
	logger.Info("Using Solana RPC endpoint",
		zap.String("rpc_url", cfg.RPCURL),
		zap.Duration("timeout", cfg.RequestTimeout),
	)

	return &Client{
		client:  rpc.New(cfg.RPCURL),
		config:  cfg,
		logger:  logger,
		timeout: cfg.RequestTimeout,
	}
}

// Close closes the underlying RPC transport
func (c *Client) Close() error {
	return c.client.Close()
}

// GetBalance returns the native balance of address in lamports
func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	owner, err := ParseAddress(address)
	if err != nil {
		return 0, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.client.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return res.Value, nil
}

// GetTokenBalances returns the SPL token accounts owned by address
func (c *Client) GetTokenBalances(ctx context.Context, address string) ([]entities.AssetBalance, error) {
	owner, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	programID := solana.TokenProgramID
	res, err := c.client.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts by owner: %w", err)
	}

	balances := make([]entities.AssetBalance, 0, len(res.Value))
	for _, acct := range res.Value {
		if acct == nil || acct.Account.Data == nil {
			continue
		}
		balance, err := ParseTokenAccount(acct.Account.Data.GetRawJSON())
		if err != nil {
			c.logger.Debug("Skipping unparsable token account",
				zap.String("account", acct.Pubkey.String()),
				zap.Error(err),
			)
			continue
		}
		balances = append(balances, balance)
	}

	return balances, nil
}

// GetSignatures returns up to limit transaction signatures for address, most recent first
func (c *Client) GetSignatures(ctx context.Context, address string, limit int) ([]string, error) {
	owner, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.client.GetSignaturesForAddressWithOpts(ctx, owner, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}

	signatures := make([]string, 0, len(res))
	for _, sig := range res {
		if sig == nil {
			continue
		}
		signatures = append(signatures, sig.Signature.String())
	}
	return signatures, nil
}

// GetTransaction returns the transaction for signature, or nil if the node has no record of it
func (c *Client) GetTransaction(ctx context.Context, signature string) (*entities.TransactionRecord, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", signature, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxTxVersion,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}

	return TransactionFromResult(signature, res), nil
}

// HealthCheck checks if the RPC node reports itself healthy
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	status, err := c.client.GetHealth(ctx)
	if err != nil {
		return err
	}
	if status != rpc.HealthOk {
		return fmt.Errorf("node status %q", status)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
