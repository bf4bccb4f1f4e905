package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/config"
	"positionScope/internal/report"
	"positionScope/internal/storage"
	"positionScope/internal/valuation"
)

func runCurve(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCurve(cfgFile, cmd.Flags())
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

	units := report.UnitsFor(pool, position.QuoteIsToken0)
	quoteDecimals := units.QuoteDecimals()
	minPrice, err := report.ParsePositiveAmount(cfg.MinPrice, quoteDecimals)
	if err != nil {
		return fmt.Errorf("min price: %w", err)
	}
	maxPrice, err := report.ParsePositiveAmount(cfg.MaxPrice, quoteDecimals)
	if err != nil {
		return fmt.Errorf("max price: %w", err)
	}

	initial := cfg.InitialValue
	params := valuation.CurveParams{
		Liquidity:   position.Liquidity,
		TickLower:   position.TickLower,
		TickUpper:   position.TickUpper,
		Pair:        valuation.PairFor(pool, position.QuoteIsToken0),
		TickSpacing: pool.TickSpacing,
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		NumPoints:   cfg.Points,
	}
	if initial != "" {
		if params.InitialValue, err = report.ParseAmount(initial, quoteDecimals); err != nil {
			return fmt.Errorf("initial value: %w", err)
		}
	} else {
		current, err := valuation.ValuePosition(pool, *position)
		if err != nil {
			return fmt.Errorf("value position: %w", err)
		}
		params.InitialValue = current.Value
	}

	points, err := valuation.GeneratePnLCurve(params)
	if err != nil {
		return fmt.Errorf("generate curve: %w", err)
	}

	writer, err := storage.NewJSONLWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	defer writer.Close()

	zeroValues := 0
	for _, p := range points {
		if p.Value.Sign() == 0 && position.Liquidity.Sign() > 0 {
			zeroValues++
		}
		if err := writer.Write(report.NewCurvePointRecord(p, quoteDecimals)); err != nil {
			return err
		}
	}
	if zeroValues > 0 {
		logger.Warn("curve points valued at zero",
			zap.Int("points", zeroValues),
			zap.Uint8("quote_decimals", quoteDecimals),
		)
	}

	logger.Info("curve complete",
		zap.Int("points", len(points)),
		zap.String("min_price", cfg.MinPrice),
		zap.String("max_price", cfg.MaxPrice),
		zap.String("out", cfg.Out),
	)
	return nil
}
