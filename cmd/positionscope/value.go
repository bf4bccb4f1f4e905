package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/config"
	"positionScope/internal/report"
	"positionScope/internal/valuation"
)

func runValue(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadValue(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := loadSnapshot(ctx, cfg.Source, logger)
	if err != nil {
		return err
	}
	pool, position, err := parseSnapshot(rec, true)
	if err != nil {
		return err
	}

	val, err := valuation.ValuePosition(pool, *position)
	if err != nil {
		return fmt.Errorf("value position: %w", err)
	}
	units := report.UnitsFor(pool, position.QuoteIsToken0)
	if val.Price.Sign() == 0 {
		logger.Warn("price underflowed to zero",
			zap.Int32("tick", val.Tick),
			zap.Uint8("quote_decimals", units.QuoteDecimals()),
		)
	}

	var initial *big.Int
	if cfg.InitialValue != "" {
		if initial, err = report.ParseAmount(cfg.InitialValue, units.QuoteDecimals()); err != nil {
			return fmt.Errorf("initial value: %w", err)
		}
	}

	logger.Info("position valued",
		zap.String("base", tokenLabel(baseMeta(rec, position.QuoteIsToken0), val.Pair.Base)),
		zap.String("quote", tokenLabel(quoteMeta(rec, position.QuoteIsToken0), val.Pair.Quote)),
		zap.String("phase", string(val.Phase)),
		zap.String("value", val.Value.String()),
	)

	return writeJSON(cfg.Out, report.NewValueReport(val, units, initial))
}
