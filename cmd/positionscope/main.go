package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "positionscope",
		Short:        "Uniswap V3 position valuation, PnL and APR",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	valueCmd := &cobra.Command{
		Use:   "value",
		Short: "Value a position against a pool snapshot",
		RunE:  runValue,
	}
	addSourceFlags(valueCmd)
	valueCmd.Flags().String("initial-value", "", "initial position value in quote token units (human decimal)")
	valueCmd.Flags().String("out", "-", "output JSON path (- for stdout)")
	valueCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(valueCmd)

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "Sweep a price range and write the position PnL curve",
		RunE:  runCurve,
	}
	addSourceFlags(curveCmd)
	curveCmd.Flags().String("min-price", "", "lowest quote-per-base price (human decimal)")
	curveCmd.Flags().String("max-price", "", "highest quote-per-base price (human decimal)")
	curveCmd.Flags().Int("points", 150, "number of intervals")
	curveCmd.Flags().String("initial-value", "", "initial position value (human decimal), defaults to current value")
	curveCmd.Flags().String("out", "./data/curve.jsonl", "output curve JSONL path (- for stdout)")
	curveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(curveCmd)

	pnlCmd := &cobra.Command{
		Use:   "pnl",
		Short: "Compute event PnL and period APR for positions",
		RunE:  runPnL,
	}
	addSourceFlags(pnlCmd)
	pnlCmd.Flags().String("in", "", "input position events JSONL")
	pnlCmd.Flags().String("errors", "./data/event_errors.jsonl", "invalid events JSONL")
	pnlCmd.Flags().String("position-id", "", "only process this position")
	pnlCmd.Flags().String("current-value", "", "current position value in quote smallest units")
	pnlCmd.Flags().String("unclaimed", "", "unclaimed fees in quote smallest units")
	pnlCmd.Flags().Uint("quote-decimals", 0, "quote token decimals for human-readable output")
	pnlCmd.Flags().String("now", "", "evaluation time (unix seconds or RFC3339), defaults to now")
	pnlCmd.Flags().String("pg-dsn", "", "Postgres DSN for APR persistence")
	pnlCmd.Flags().String("state-file", "", "local JSON file for APR persistence")
	pnlCmd.Flags().String("out", "-", "output report JSONL path (- for stdout)")
	pnlCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(pnlCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Read pool and position state from chain",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().String("rpc", "", "RPC URL")
	snapshotCmd.Flags().String("pool", "", "pool address")
	snapshotCmd.Flags().String("position-manager", "", "NonfungiblePositionManager address")
	snapshotCmd.Flags().String("token-id", "", "position NFT id (optional)")
	snapshotCmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	snapshotCmd.Flags().Bool("quote-token0", false, "value the position in token0")
	snapshotCmd.Flags().String("out", "./data/snapshot.json", "output snapshot JSON path (- for stdout)")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("snapshot-file", "", "snapshot JSON written by the snapshot command")
	cmd.Flags().String("rpc", "", "RPC URL, used when no snapshot file is given")
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().String("position-manager", "", "NonfungiblePositionManager address")
	cmd.Flags().String("token-id", "", "position NFT id")
	cmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	cmd.Flags().Bool("quote-token0", false, "value the position in token0")
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

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
