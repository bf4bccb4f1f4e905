package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"positionScope/internal/model"
)

// Store persists APR computations in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveAPR replaces the stored computation and periods of a position in one
// transaction. Saving clears the stale flag.
func (s *Store) SaveAPR(ctx context.Context, rec model.PositionAPRRecord) error {
	summary, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO position_aprs (
			position_id, computation_id, fingerprint, event_count, stale, calculated_at, summary, created_at, updated_at
		) VALUES ($1, $2, $3, $4, FALSE, $5, $6, now(), now())
		ON CONFLICT (position_id)
		DO UPDATE SET
			computation_id = EXCLUDED.computation_id,
			fingerprint = EXCLUDED.fingerprint,
			event_count = EXCLUDED.event_count,
			stale = FALSE,
			calculated_at = EXCLUDED.calculated_at,
			summary = EXCLUDED.summary,
			updated_at = now()
	`,
		rec.PositionID,
		rec.ComputationID,
		rec.Fingerprint,
		rec.EventCount,
		rec.CalculatedAt,
		summary,
	)
	if err != nil {
		return fmt.Errorf("upsert position apr: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM position_apr_periods WHERE position_id = $1`, rec.PositionID); err != nil {
		return fmt.Errorf("delete periods: %w", err)
	}

	if len(rec.Periods) > 0 {
		batch := &pgx.Batch{}
		for _, p := range rec.Periods {
			costBasis, err := toNumeric(p.CostBasis)
			if err != nil {
				return fmt.Errorf("period %d cost basis: %w", p.PeriodIndex, err)
			}
			fees, err := toNumeric(p.AllocatedFees)
			if err != nil {
				return fmt.Errorf("period %d allocated fees: %w", p.PeriodIndex, err)
			}
			batch.Queue(`
				INSERT INTO position_apr_periods (
					position_id, period_index, event_type, start_ts, end_ts, days, cost_basis, allocated_fees, apr
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`,
				rec.PositionID,
				p.PeriodIndex,
				p.EventType,
				p.StartTS,
				p.EndTS,
				p.Days,
				costBasis,
				fees,
				p.APR,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range rec.Periods {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert period: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// LoadAPR returns the stored computation of a position, if any.
func (s *Store) LoadAPR(ctx context.Context, positionID string) (model.PositionAPRRecord, bool, error) {
	rec := model.PositionAPRRecord{PositionID: positionID}
	var summary []byte
	err := s.pool.QueryRow(ctx, `
		SELECT computation_id, fingerprint, event_count, stale, calculated_at, summary
		FROM position_aprs
		WHERE position_id = $1
	`, positionID).Scan(
		&rec.ComputationID,
		&rec.Fingerprint,
		&rec.EventCount,
		&rec.Stale,
		&rec.CalculatedAt,
		&summary,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PositionAPRRecord{}, false, nil
		}
		return model.PositionAPRRecord{}, false, fmt.Errorf("query position apr: %w", err)
	}
	if err := json.Unmarshal(summary, &rec.Summary); err != nil {
		return model.PositionAPRRecord{}, false, fmt.Errorf("parse summary: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT period_index, event_type, start_ts, end_ts, days, cost_basis::text, allocated_fees::text, apr
		FROM position_apr_periods
		WHERE position_id = $1
		ORDER BY period_index
	`, positionID)
	if err != nil {
		return model.PositionAPRRecord{}, false, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := model.CapitalPeriodRecord{PositionID: positionID}
		if err := rows.Scan(
			&p.PeriodIndex,
			&p.EventType,
			&p.StartTS,
			&p.EndTS,
			&p.Days,
			&p.CostBasis,
			&p.AllocatedFees,
			&p.APR,
		); err != nil {
			return model.PositionAPRRecord{}, false, fmt.Errorf("scan period: %w", err)
		}
		rec.Periods = append(rec.Periods, p)
	}
	if err := rows.Err(); err != nil {
		return model.PositionAPRRecord{}, false, fmt.Errorf("iterate periods: %w", err)
	}
	return rec, true, nil
}

// MarkStale flags a stored computation for recomputation. Unknown positions
// are ignored.
func (s *Store) MarkStale(ctx context.Context, positionID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE position_aprs SET stale = TRUE, updated_at = now() WHERE position_id = $1
	`, positionID)
	if err != nil {
		return fmt.Errorf("mark stale: %w", err)
	}
	return nil
}

func toNumeric(value string) (pgtype.Numeric, error) {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return pgtype.Numeric{}, fmt.Errorf("invalid integer %q", value)
	}
	return pgtype.Numeric{Int: n, Valid: true}, nil
}
