package solana

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

// parsedTokenAccount is the jsonParsed layout of an SPL token account
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount         string   `json:"amount"`
				Decimals       int      `json:"decimals"`
				UIAmount       *float64 `json:"uiAmount"`
				UIAmountString string   `json:"uiAmountString"`
			} `json:"tokenAmount"`
		} `json:"info"`
		Type string `json:"type"`
	} `json:"parsed"`
	Program string `json:"program"`
}

// ParseTokenAccount extracts mint and whole-unit amount from jsonParsed token account data
func ParseTokenAccount(raw []byte) (entities.AssetBalance, error) {
	if len(raw) == 0 {
		return entities.AssetBalance{}, errors.New("empty account data")
	}

	var acct parsedTokenAccount
	if err := json.Unmarshal(raw, &acct); err != nil {
		return entities.AssetBalance{}, fmt.Errorf("failed to decode token account: %w", err)
	}

	info := acct.Parsed.Info
	if info.Mint == "" {
		return entities.AssetBalance{}, errors.New("token account has no mint")
	}

	amount, err := uiAmount(info.TokenAmount.UIAmountString, info.TokenAmount.UIAmount)
	if err != nil {
		return entities.AssetBalance{}, fmt.Errorf("mint %s: %w", info.Mint, err)
	}

	return entities.AssetBalance{
		AssetID: info.Mint,
		Amount:  amount,
	}, nil
}

// TransactionFromResult converts a getTransaction result into a TransactionRecord.
// Every postTokenBalances entry becomes one token balance change, in node order.
func TransactionFromResult(signature string, res *rpc.GetTransactionResult) *entities.TransactionRecord {
	if res == nil {
		return nil
	}

	record := &entities.TransactionRecord{
		Signature:           signature,
		TokenBalanceChanges: []entities.TokenBalanceChange{},
	}

	if res.BlockTime != nil {
		bt := int64(*res.BlockTime)
		record.BlockTime = &bt
	}

	if res.Meta == nil {
		return record
	}

	record.Failed = res.Meta.Err != nil

	for _, tb := range res.Meta.PostTokenBalances {
		change := entities.TokenBalanceChange{
			AssetID: tb.Mint.String(),
			Amount:  decimal.Zero,
		}
		if tb.UiTokenAmount != nil {
			if amount, err := uiAmount(tb.UiTokenAmount.UiAmountString, tb.UiTokenAmount.UiAmount); err == nil {
				change.Amount = amount
			}
		}
		record.TokenBalanceChanges = append(record.TokenBalanceChanges, change)
	}

	return record
}

// uiAmount prefers the exact string form and falls back to the float form
func uiAmount(s string, f *float64) (decimal.Decimal, error) {
	if s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid uiAmountString %q: %w", s, err)
		}
		return d, nil
	}
	if f != nil {
		return decimal.NewFromFloat(*f), nil
	}
	return decimal.Zero, nil
}
