package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"routeScope/internal/arb"
	"routeScope/internal/config"
	"routeScope/internal/model"
	"routeScope/internal/storage"
)

// fileSnapshotSource serves a snapshot loaded from a local file through the
// runner's source interface.
type fileSnapshotSource struct {
	snapshot model.Snapshot
}

func (s fileSnapshotSource) FetchPools(context.Context) ([]model.Pool, error) {
	return s.snapshot.Pools, nil
}

func (s fileSnapshotSource) FetchTokens(context.Context) ([]model.Token, error) {
	return s.snapshot.Tokens, nil
}

type filePriceSource struct {
	prices map[string]decimal.Decimal
}

func (s filePriceSource) FetchPrices(context.Context, []string) (map[string]decimal.Decimal, error) {
	return s.prices, nil
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadScan(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Snapshot == "" {
		return fmt.Errorf("snapshot path is required")
	}
	if cfg.Prices == "" {
		return fmt.Errorf("prices path is required")
	}

	notional, minProfit, gas, err := parseScanKnobs(cfg.Notional, cfg.MinProfit, cfg.GasStable, cfg.GasConstProd)
	if err != nil {
		return err
	}

	snapshot, err := loadSnapshot(cfg.Snapshot)
	if err != nil {
		return err
	}
	prices, err := loadPrices(cfg.Prices)
	if err != nil {
		return err
	}
	borrowables, err := arb.LoadBorrowables(cfg.Borrowables)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := arb.NewScanner(arb.ScanConfig{
		MaxHops:       cfg.MaxHops,
		MinimumProfit: minProfit,
		Gas:           gas,
	}, logger)

	runner := arb.NewRunner(arb.RunConfig{
		Interval: time.Second, // unused by a single cycle
		Notional: notional,
	}, fileSnapshotSource{snapshot: snapshot}, filePriceSource{prices: prices}, nil,
		storage.NewJsonlStorage(cfg.Out), nil, scanner, borrowables, logger)

	logger.Info("scan start",
		zap.String("snapshot", cfg.Snapshot),
		zap.String("prices", cfg.Prices),
		zap.String("out", cfg.Out),
		zap.Int("pools", len(snapshot.Pools)),
		zap.Int("tokens", len(snapshot.Tokens)),
		zap.Int("borrowables", len(borrowables)),
	)

	return runner.RunOnce(ctx)
}

func loadSnapshot(path string) (model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return snapshot, nil
}

func loadPrices(path string) (map[string]decimal.Decimal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}
	var payload struct {
		Prices map[string]decimal.Decimal `json:"prices"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse prices: %w", err)
	}
	return payload.Prices, nil
}
