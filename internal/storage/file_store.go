package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"positionScope/internal/model"
)

// FileAPRStore keeps APR computations for all positions in one local JSON
// file, rewritten atomically on every change.
type FileAPRStore struct {
	Path string

	mu sync.Mutex
}

type fileStateRecord struct {
	Positions []model.PositionAPRRecord `json:"positions"`
	UpdatedAt string                    `json:"updated_at"`
}

func (s *FileAPRStore) LoadAPR(ctx context.Context, positionID string) (model.PositionAPRRecord, bool, error) {
	if s == nil || s.Path == "" {
		return model.PositionAPRRecord{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return model.PositionAPRRecord{}, false, err
	}
	rec, ok := records[positionID]
	return rec, ok, nil
}

func (s *FileAPRStore) SaveAPR(ctx context.Context, rec model.PositionAPRRecord) error {
	if s == nil || s.Path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	records[rec.PositionID] = rec
	return s.write(records)
}

func (s *FileAPRStore) MarkStale(ctx context.Context, positionID string) error {
	if s == nil || s.Path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	rec, ok := records[positionID]
	if !ok || rec.Stale {
		return nil
	}
	rec.Stale = true
	records[positionID] = rec
	return s.write(records)
}

func (s *FileAPRStore) read() (map[string]model.PositionAPRRecord, error) {
	out := make(map[string]model.PositionAPRRecord)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state fileStateRecord
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	for _, rec := range state.Positions {
		out[rec.PositionID] = rec
	}
	return out, nil
}

func (s *FileAPRStore) write(records map[string]model.PositionAPRRecord) error {
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	state := fileStateRecord{
		Positions: make([]model.PositionAPRRecord, 0, len(records)),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	for _, rec := range records {
		state.Positions = append(state.Positions, rec)
	}
	sort.Slice(state.Positions, func(i, j int) bool {
		return state.Positions[i].PositionID < state.Positions[j].PositionID
	})

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}
