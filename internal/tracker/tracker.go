// Package tracker provides the per-market snapshot store backing live
// detection across polling cycles.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/selenkaonchain/spreadbot/internal/models"
)

// Store maps market ids to their last-observed snapshots. It is owned by the
// single cycle worker and is not safe for concurrent use.
type Store struct {
	path string
	data map[string]*models.Snapshot
	now  func() time.Time
}

// New loads the store from path. A missing file starts the store empty; a
// file that exists but cannot be parsed is an unrecoverable startup error,
// since silently discarding it would reset every market's persistence
// counter unnoticed.
func New(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: make(map[string]*models.Snapshot),
		now:  time.Now,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("corrupt state file %s: %w", path, err)
	}
	return s, nil
}

// Get returns the snapshot for a market id, or nil if it has never been
// observed.
func (s *Store) Get(id string) *models.Snapshot {
	return s.data[id]
}

// Len returns the number of tracked markets.
func (s *Store) Len() int {
	return len(s.data)
}

// Update merges an observation into the store: persistence 1 on first
// sighting, prior persistence + 1 after. The orchestrator guarantees exactly
// one Update per market id per cycle; calling it twice in a cycle would
// double-count persistence.
func (s *Store) Update(obs models.Observation) {
	persistence := 1
	if prev, ok := s.data[obs.ID]; ok {
		persistence = prev.Persistence + 1
	}
	s.data[obs.ID] = &models.Snapshot{
		Volume:      obs.Volume,
		BestBid:     obs.BestBid,
		BestAsk:     obs.BestAsk,
		LastSeen:    s.now(),
		Persistence: persistence,
	}
}

// Save writes the full snapshot map to the state file, replacing it
// atomically via a temp file in the same directory.
func (s *Store) Save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
