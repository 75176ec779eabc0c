package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/fumble-tracker/internal/application/services"
	"github.com/bimakw/fumble-tracker/internal/config"
	"github.com/bimakw/fumble-tracker/internal/domain/entities"
	"github.com/bimakw/fumble-tracker/internal/infrastructure/cache"
	"github.com/bimakw/fumble-tracker/internal/infrastructure/coingecko"
	"github.com/bimakw/fumble-tracker/internal/infrastructure/solana"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:      "report",
		Usage:     "print the fumbled gains report of a Solana wallet",
		UsageText: "report --address <wallet> [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Aliases:  []string{"a"},
				Usage:    "wallet address (base58)",
				EnvVars:  []string{"WALLET_ADDRESS"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the report as the JSON array served by GET /report",
			},
			&cli.IntFlag{
				Name:  "tx-limit",
				Usage: "number of recent transactions to scan (overrides SOLANA_TX_LIMIT)",
			},
		},
		Action: run,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to load config: %v", err), 1)
	}
	if c.IsSet("tx-limit") {
		cfg.Solana.TxLimit = c.Int("tx-limit")
		if err := cfg.Validate(); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	// stdout carries the report
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	solanaClient := solana.NewClient(cfg.Solana, logger)
	defer solanaClient.Close()

	priceService := services.NewPriceService(
		coingecko.NewClient(cfg.Price, logger),
		cache.NewMemoryCache(cfg.Cache.CurrentTTL, time.Minute),
		cfg.Price,
		cfg.Cache,
		nil,
		logger,
	)
	reportService := services.NewReportService(
		services.NewSnapshotService(solanaClient, cfg.Solana, logger),
		services.NewValuationService(priceService, logger),
		nil,
		logger,
	)

	records, err := reportService.Generate(c.Context, c.String("address"))
	if err != nil {
		if errors.Is(err, entities.ErrInvalidAddress) {
			return cli.Exit("Invalid wallet address", 2)
		}
		return cli.Exit(fmt.Sprintf("Failed to fetch wallet data: %v", err), 1)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return writeTable(c.App.Writer, records)
}

// writeTable prints one row per coin and the fumbled total
func writeTable(w io.Writer, records []entities.ValuationRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "COIN\tAMOUNT\tBUY\tCURRENT\tFUMBLED\tROI %\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.DisplayName,
			r.Amount.String(),
			r.BuyPrice.String(),
			r.CurrentPrice.String(),
			r.Fumbled.StringFixed(2),
			r.ROIPercent.StringFixed(2),
		)
	}

	total := lo.Reduce(records, func(acc decimal.Decimal, r entities.ValuationRecord, _ int) decimal.Decimal {
		return acc.Add(r.Fumbled)
	}, decimal.Zero)
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t\t\n", total.StringFixed(2))

	return tw.Flush()
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.WarnLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
