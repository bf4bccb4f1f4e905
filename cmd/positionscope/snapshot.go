package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/config"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
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

	rec, err := fetchSnapshot(ctx, cfg.Source, logger)
	if err != nil {
		return err
	}
	if err := writeJSON(cfg.Out, rec); err != nil {
		return err
	}

	logger.Info("snapshot written",
		zap.String("pool", rec.Pool.Pool),
		zap.Bool("position", rec.Position != nil),
		zap.Uint64("block", rec.Pool.BlockNumber),
		zap.String("out", cfg.Out),
	)
	return nil
}
