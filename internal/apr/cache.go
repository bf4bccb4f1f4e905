package apr

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"positionScope/internal/errs"
	"positionScope/internal/model"
)

// Store persists APR computations per position.
type Store interface {
	LoadAPR(ctx context.Context, positionID string) (model.PositionAPRRecord, bool, error)
	SaveAPR(ctx context.Context, rec model.PositionAPRRecord) error
	MarkStale(ctx context.Context, positionID string) error
}

// Cache keeps derived periods per position and reuses them while the event
// set fingerprint is unchanged. A changed event set is recomputed for the
// whole position, incrementally when it only appends events.
type Cache struct {
	engine Engine
	store  Store
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]Result
}

func NewCache(engine Engine, store Store, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		engine:  engine,
		store:   store,
		logger:  logger,
		entries: make(map[string]Result),
	}
}

// Get returns the APR result for the position's events evaluated at now.
func (c *Cache) Get(ctx context.Context, positionID string, events []model.PositionEvent, unclaimed *big.Int, now time.Time) (Result, error) {
	if len(events) == 0 {
		return Result{}, errs.NotFound("no events for position %s", positionID)
	}
	sorted := model.SortEvents(events)
	fp := Fingerprint(sorted)

	c.mu.RLock()
	entry, ok := c.entries[positionID]
	c.mu.RUnlock()

	if ok && entry.Fingerprint == fp {
		return c.engine.Refresh(entry, unclaimed, now), nil
	}

	if !ok {
		if res, found := c.loadStored(ctx, positionID, sorted, fp, unclaimed, now); found {
			c.put(positionID, res)
			return res, nil
		}
	}

	var (
		res Result
		err error
	)
	if ok && extends(entry, sorted) {
		res = entry
		for _, ev := range sorted[len(entry.Events):] {
			res, err = c.engine.Append(res, ev, unclaimed, now)
			if err != nil {
				return Result{}, err
			}
		}
		c.logger.Debug("apr appended",
			zap.String("position", positionID),
			zap.Int("new_events", len(sorted)-len(entry.Events)),
		)
	} else {
		res, err = c.engine.Calculate(sorted, unclaimed, now)
		if err != nil {
			return Result{}, err
		}
		c.logger.Debug("apr recomputed",
			zap.String("position", positionID),
			zap.Int("events", len(sorted)),
		)
	}
	res.PositionID = positionID
	res.ComputationID = uuid.NewString()

	if err := c.save(ctx, res); err != nil {
		return Result{}, err
	}
	c.put(positionID, res)
	return res, nil
}

// Invalidate drops the cached result and marks the stored one stale.
func (c *Cache) Invalidate(ctx context.Context, positionID string) error {
	c.mu.Lock()
	delete(c.entries, positionID)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.MarkStale(ctx, positionID); err != nil {
		return fmt.Errorf("mark apr stale: %w", err)
	}
	return nil
}

func (c *Cache) loadStored(ctx context.Context, positionID string, sorted []model.PositionEvent, fp common.Hash, unclaimed *big.Int, now time.Time) (Result, bool) {
	if c.store == nil {
		return Result{}, false
	}
	rec, found, err := c.store.LoadAPR(ctx, positionID)
	if err != nil {
		c.logger.Warn("load stored apr failed", zap.String("position", positionID), zap.Error(err))
		return Result{}, false
	}
	if !found || rec.Stale || FingerprintFromRecord(rec) != fp || rec.EventCount != len(sorted) {
		return Result{}, false
	}
	periods, err := PeriodsFromRecord(rec)
	if err != nil || len(periods) != len(sorted) {
		c.logger.Warn("stored apr periods unusable", zap.String("position", positionID), zap.Error(err))
		return Result{}, false
	}
	res := Result{
		PositionID:    positionID,
		Events:        sorted,
		Periods:       periods,
		Fingerprint:   fp,
		ComputationID: rec.ComputationID,
	}
	return c.engine.Refresh(res, unclaimed, now), true
}

func (c *Cache) save(ctx context.Context, res Result) error {
	if c.store == nil {
		return nil
	}
	rec := NewRecord(res, res.ComputationID)
	if err := c.store.SaveAPR(ctx, rec); err != nil {
		return fmt.Errorf("save apr: %w", err)
	}
	return nil
}

func (c *Cache) put(positionID string, res Result) {
	c.mu.Lock()
	c.entries[positionID] = res
	c.mu.Unlock()
}

// extends reports whether sorted is the cached event set plus newer events.
func extends(entry Result, sorted []model.PositionEvent) bool {
	n := len(entry.Events)
	if n == 0 || n >= len(sorted) || len(entry.Periods) != n {
		return false
	}
	if Fingerprint(sorted[:n]) != entry.Fingerprint {
		return false
	}
	return entry.Events[n-1].Before(sorted[n])
}
