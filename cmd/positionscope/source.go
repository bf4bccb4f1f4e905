package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/chain"
	"positionScope/internal/config"
	"positionScope/internal/dex"
	"positionScope/internal/model"
	"positionScope/internal/price"
)

// loadSnapshot reads the snapshot file, or the chain when only an RPC URL is
// configured.
func loadSnapshot(ctx context.Context, src config.SourceConfig, logger *zap.Logger) (model.SnapshotRecord, error) {
	if src.SnapshotFile != "" {
		data, err := os.ReadFile(src.SnapshotFile)
		if err != nil {
			return model.SnapshotRecord{}, fmt.Errorf("read snapshot: %w", err)
		}
		var rec model.SnapshotRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return model.SnapshotRecord{}, fmt.Errorf("parse snapshot: %w", err)
		}
		return rec, nil
	}
	if !src.Live() {
		return model.SnapshotRecord{}, fmt.Errorf("snapshot-file or rpc is required")
	}
	return fetchSnapshot(ctx, src, logger)
}

func fetchSnapshot(ctx context.Context, src config.SourceConfig, logger *zap.Logger) (model.SnapshotRecord, error) {
	poolAddr, err := price.ParseAddress(src.Pool)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("pool: %w", err)
	}

	chainClient, err := chain.NewClient(ctx, src.RPCURL)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("chain id: %w", err)
	}

	block := src.Block
	if block == 0 {
		if block, err = chainClient.LatestBlockNumber(ctx); err != nil {
			return model.SnapshotRecord{}, fmt.Errorf("latest block: %w", err)
		}
	}
	blockTS, err := chainClient.BlockTimestamp(ctx, block)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("block timestamp: %w", err)
	}

	logger.Info("snapshot read",
		zap.String("chain_id", chainID.String()),
		zap.String("pool", poolAddr.Hex()),
		zap.Uint64("block", block),
		zap.String("token_id", src.TokenID),
	)

	reader := dex.NewReader(chainClient, nil, logger)
	state, err := reader.FetchPool(ctx, poolAddr, block)
	if err != nil {
		return model.SnapshotRecord{}, err
	}

	token0 := state.Token0
	token1 := state.Token1
	rec := model.SnapshotRecord{
		Pool:           model.NewPoolSnapshotRecord(state.Snapshot),
		Token0:         &token0,
		Token1:         &token1,
		BlockTimestamp: blockTS,
	}

	if strings.TrimSpace(src.TokenID) == "" {
		return rec, nil
	}
	tokenID, ok := new(big.Int).SetString(strings.TrimSpace(src.TokenID), 10)
	if !ok || tokenID.Sign() < 0 {
		return model.SnapshotRecord{}, fmt.Errorf("invalid token id %q", src.TokenID)
	}
	manager, err := price.ParseAddress(src.PositionManager)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("position manager: %w", err)
	}
	position, err := reader.FetchPosition(ctx, manager, tokenID, state, src.QuoteToken0, block)
	if err != nil {
		return model.SnapshotRecord{}, err
	}
	posRec := model.NewPositionSnapshotRecord(position)
	rec.Position = &posRec
	return rec, nil
}

// parseSnapshot validates a snapshot record. The position is required when
// requirePosition is set.
func parseSnapshot(rec model.SnapshotRecord, requirePosition bool) (model.PoolSnapshot, *model.PositionSnapshot, error) {
	pool, err := rec.Pool.Parse()
	if err != nil {
		return model.PoolSnapshot{}, nil, fmt.Errorf("pool snapshot: %w", err)
	}
	if rec.Position == nil {
		if requirePosition {
			return model.PoolSnapshot{}, nil, fmt.Errorf("snapshot has no position, set token-id")
		}
		return pool, nil, nil
	}
	position, err := rec.Position.Parse()
	if err != nil {
		return model.PoolSnapshot{}, nil, fmt.Errorf("position snapshot: %w", err)
	}
	return pool, &position, nil
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	if path == "-" || path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func tokenLabel(meta *model.TokenMeta, fallback common.Address) string {
	if meta != nil && meta.Symbol != "" {
		return meta.Symbol
	}
	return fallback.Hex()
}

func baseMeta(rec model.SnapshotRecord, quoteIsToken0 bool) *model.TokenMeta {
	if quoteIsToken0 {
		return rec.Token1
	}
	return rec.Token0
}

func quoteMeta(rec model.SnapshotRecord, quoteIsToken0 bool) *model.TokenMeta {
	if quoteIsToken0 {
		return rec.Token0
	}
	return rec.Token1
}
