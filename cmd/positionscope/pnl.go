package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionScope/internal/apr"
	"positionScope/internal/config"
	"positionScope/internal/model"
	"positionScope/internal/pnl"
	"positionScope/internal/report"
	"positionScope/internal/storage"
	"positionScope/internal/storage/postgres"
)

type recordWriter interface {
	Write(value interface{}) error
}

type eventBatch struct {
	positions map[string][]model.PositionEvent
	total     int
	failed    int
	skipped   int
}

// ids returns the position IDs in lexical order.
func (b eventBatch) ids() []string {
	out := make([]string, 0, len(b.positions))
	for id := range b.positions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// readEvents parses event lines, writing invalid ones to errWriter. Only
// events of positionID are kept when it is set.
func readEvents(r io.Reader, errWriter recordWriter, positionID string) (eventBatch, error) {
	batch := eventBatch{positions: make(map[string][]model.PositionEvent)}
	err := storage.ScanJSONL(r, func(line int, data []byte) error {
		batch.total++

		var record model.PositionEventRecord
		if err := json.Unmarshal(data, &record); err != nil {
			batch.failed++
			return errWriter.Write(model.EventError{Line: line, Error: err.Error()})
		}
		if positionID != "" && record.PositionID != positionID {
			batch.skipped++
			return nil
		}
		event, err := record.Parse()
		if err != nil {
			batch.failed++
			return errWriter.Write(model.EventError{
				Line:        line,
				PositionID:  record.PositionID,
				BlockNumber: record.BlockNumber,
				LogIndex:    record.LogIndex,
				Error:       err.Error(),
			})
		}
		batch.positions[event.PositionID] = append(batch.positions[event.PositionID], event)
		return nil
	})
	return batch, err
}

func runPnL(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPnL(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	now, err := config.ParseNow(cfg.Now, time.Now())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	errWriter, err := storage.NewJSONLWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	batch, err := readEvents(inputFile, errWriter, cfg.PositionID)
	if err != nil {
		return err
	}
	if len(batch.positions) == 0 {
		return fmt.Errorf("no valid events in %s", cfg.In)
	}

	var store apr.Store
	switch {
	case cfg.PGDSN != "":
		pgStore, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		store = pgStore
	case cfg.StateFile != "":
		store = &storage.FileAPRStore{Path: cfg.StateFile}
	}
	cache := apr.NewCache(apr.NewEngine(logger), store, logger)

	live, err := liveValuation(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if (live != nil || cfg.CurrentValue != "") && len(batch.positions) > 1 {
		return fmt.Errorf("current value applies to one position, set position-id (%d in input)", len(batch.positions))
	}

	outWriter, err := storage.NewJSONLWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	logger.Info("pnl start",
		zap.String("in", cfg.In),
		zap.Int("positions", len(batch.positions)),
		zap.Int("events", batch.total),
		zap.Int("failed", batch.failed),
		zap.Int("skipped", batch.skipped),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("state_file", cfg.StateFile),
		zap.Time("now", now),
	)

	for _, id := range batch.ids() {
		events := model.SortEvents(batch.positions[id])

		var (
			res           pnl.Result
			quoteDecimals = cfg.QuoteDecimals
		)
		if live != nil {
			res, _, err = pnl.CalculateForPosition(events, live.pool, *live.position)
			quoteDecimals = report.UnitsFor(live.pool, live.position.QuoteIsToken0).QuoteDecimals()
		} else {
			var val pnl.Valuation
			if val, err = manualValuation(cfg); err == nil {
				if val.CurrentValue == nil && events[len(events)-1].Type != model.EventClose {
					logger.Warn("no current value for open position, using zero", zap.String("position", id))
				}
				res, err = pnl.Calculate(events, val)
			}
		}
		if err != nil {
			return fmt.Errorf("position %s: %w", id, err)
		}

		aprResult, err := cache.Get(ctx, id, events, res.Unclaimed, now)
		if err != nil {
			return fmt.Errorf("position %s apr: %w", id, err)
		}

		if err := outWriter.Write(report.NewPnLReport(res, aprResult, aprResult.ComputationID, quoteDecimals)); err != nil {
			return err
		}
		logger.Debug("position done",
			zap.String("position", id),
			zap.Int("events", len(events)),
			zap.String("total_pnl", res.TotalPnL.String()),
			zap.Float64("total_apr", aprResult.Summary.TotalAPR),
		)
	}

	logger.Info("pnl complete", zap.Int("positions", len(batch.positions)))
	return nil
}

type liveState struct {
	pool     model.PoolSnapshot
	position *model.PositionSnapshot
}

// liveValuation loads the position snapshot when a snapshot source is
// configured. It returns nil otherwise.
func liveValuation(ctx context.Context, cfg config.PnLConfig, logger *zap.Logger) (*liveState, error) {
	if cfg.Source.SnapshotFile == "" && !cfg.Source.Live() {
		return nil, nil
	}
	rec, err := loadSnapshot(ctx, cfg.Source, logger)
	if err != nil {
		return nil, err
	}
	pool, position, err := parseSnapshot(rec, true)
	if err != nil {
		return nil, err
	}
	return &liveState{pool: pool, position: position}, nil
}

func manualValuation(cfg config.PnLConfig) (pnl.Valuation, error) {
	var val pnl.Valuation
	var err error
	if val.CurrentValue, err = model.ParseBigInt("current-value", cfg.CurrentValue); err != nil {
		return pnl.Valuation{}, err
	}
	if val.Unclaimed, err = model.ParseBigInt("unclaimed", cfg.Unclaimed); err != nil {
		return pnl.Valuation{}, err
	}
	if val.Unclaimed == nil {
		val.Unclaimed = new(big.Int)
	}
	return val, nil
}
