package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"routeScope/internal/arb"
	"routeScope/internal/chain"
	"routeScope/internal/config"
	"routeScope/internal/indexer"
	"routeScope/internal/metrics"
	"routeScope/internal/oracle"
	"routeScope/internal/router"
	"routeScope/internal/storage"
	"routeScope/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "arbiter",
		Short:        "DEX triangular arbitrage scanner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scan loop against live endpoints",
		RunE:  runArbiter,
	}

	runCmd.Flags().String("indexer-url", "", "snapshot API base URL")
	runCmd.Flags().String("oracle-url", "", "price oracle base URL")
	runCmd.Flags().String("lcd-url", "", "Cosmos LCD base URL (optional, stamps records)")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	runCmd.Flags().String("out", "./data/opportunities.jsonl", "output JSONL path")
	runCmd.Flags().String("borrowables", "./borrowables.json", "borrowables config path")
	runCmd.Flags().Duration("interval", 30*time.Second, "scan interval")
	runCmd.Flags().String("notional", "1000", "target borrow notional per token")
	runCmd.Flags().Int("max-hops", 5, "maximum pools per route")
	runCmd.Flags().String("min-profit", "0", "minimum raw profit added to the repay amount")
	runCmd.Flags().String("gas-stable", "3", "gas multiplier per stable hop")
	runCmd.Flags().String("gas-constant-product", "2", "gas multiplier per constant-product hop")
	runCmd.Flags().String("metrics-addr", "", "metrics listen address (empty disables)")
	runCmd.Flags().Duration("http-timeout", 10*time.Second, "HTTP client timeout")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan cycle from local snapshot files",
		RunE:  runScan,
	}

	scanCmd.Flags().String("snapshot", "", "snapshot JSON path (tokens and pools)")
	scanCmd.Flags().String("prices", "", "oracle prices JSON path")
	scanCmd.Flags().String("borrowables", "./borrowables.json", "borrowables config path")
	scanCmd.Flags().String("out", "./data/opportunities.jsonl", "output JSONL path")
	scanCmd.Flags().String("notional", "1000", "target borrow notional per token")
	scanCmd.Flags().Int("max-hops", 5, "maximum pools per route")
	scanCmd.Flags().String("min-profit", "0", "minimum raw profit added to the repay amount")
	scanCmd.Flags().String("gas-stable", "3", "gas multiplier per stable hop")
	scanCmd.Flags().String("gas-constant-product", "2", "gas multiplier per constant-product hop")
	scanCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(scanCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runArbiter(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.IndexerURL == "" {
		return fmt.Errorf("indexer url is required")
	}
	if cfg.OracleURL == "" {
		return fmt.Errorf("oracle url is required")
	}

	notional, minProfit, gas, err := parseScanKnobs(cfg.Notional, cfg.MinProfit, cfg.GasStable, cfg.GasConstProd)
	if err != nil {
		return err
	}

	borrowables, err := arb.LoadBorrowables(cfg.Borrowables)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshotClient := indexer.NewClient(cfg.IndexerURL, cfg.HTTPTimeout)
	oracleClient := oracle.NewClient(cfg.OracleURL, cfg.HTTPTimeout)

	var heightSource arb.HeightSource
	if cfg.LCDURL != "" {
		heightSource = chain.NewClient(cfg.LCDURL, cfg.HTTPTimeout)
	}

	var pgStore *postgres.Store
	if cfg.PGDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
	}

	metrics.Serve(ctx, cfg.MetricsAddr, logger)

	scanner := arb.NewScanner(arb.ScanConfig{
		MaxHops:       cfg.MaxHops,
		MinimumProfit: minProfit,
		Gas:           gas,
	}, logger)

	runner := arb.NewRunner(arb.RunConfig{
		Interval:     cfg.Interval,
		Notional:     notional,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, snapshotClient, oracleClient, heightSource, storage.NewJsonlStorage(cfg.Out), pgStore, scanner, borrowables, logger)

	logger.Info("arbiter start",
		zap.String("indexer_url", cfg.IndexerURL),
		zap.String("oracle_url", cfg.OracleURL),
		zap.String("lcd_url", cfg.LCDURL),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("out", cfg.Out),
		zap.Int("borrowables", len(borrowables)),
		zap.Duration("interval", cfg.Interval),
		zap.String("notional", notional.String()),
		zap.Int("max_hops", cfg.MaxHops),
		zap.String("min_profit", minProfit.String()),
	)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func parseScanKnobs(notionalStr, minProfitStr, gasStableStr, gasConstProdStr string) (decimal.Decimal, sdkmath.Int, router.GasMultipliers, error) {
	notional, err := decimal.NewFromString(notionalStr)
	if err != nil || notional.Sign() <= 0 {
		return decimal.Decimal{}, sdkmath.Int{}, router.GasMultipliers{}, fmt.Errorf("invalid notional %q", notionalStr)
	}
	minProfit, ok := sdkmath.NewIntFromString(minProfitStr)
	if !ok || minProfit.IsNegative() {
		return decimal.Decimal{}, sdkmath.Int{}, router.GasMultipliers{}, fmt.Errorf("invalid min-profit %q", minProfitStr)
	}
	gasStable, err := decimal.NewFromString(gasStableStr)
	if err != nil {
		return decimal.Decimal{}, sdkmath.Int{}, router.GasMultipliers{}, fmt.Errorf("invalid gas-stable %q", gasStableStr)
	}
	gasConstProd, err := decimal.NewFromString(gasConstProdStr)
	if err != nil {
		return decimal.Decimal{}, sdkmath.Int{}, router.GasMultipliers{}, fmt.Errorf("invalid gas-constant-product %q", gasConstProdStr)
	}
	return notional, minProfit, router.GasMultipliers{Stable: gasStable, ConstantProduct: gasConstProd}, nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
