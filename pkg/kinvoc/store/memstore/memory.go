// Package memstore is an in-memory implementation of store.Store for
// tests and throwaway runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lexfield/kinvoc/pkg/kinvoc/internalerr"
	"github.com/lexfield/kinvoc/pkg/kinvoc/store"
)

type sampleEntry struct {
	runID string
	rec   store.SampleRecord
}

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu        sync.RWMutex
	runs      map[string]store.Run
	counts    map[string]map[string]store.TermCount    // runID -> term -> row
	adjacency map[string]map[string]store.AdjacencyRow // runID -> term -> row
	samples   map[string]sampleEntry                   // sampleID -> entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:      make(map[string]store.Run),
		counts:    make(map[string]map[string]store.TermCount),
		adjacency: make(map[string]map[string]store.AdjacencyRow),
		samples:   make(map[string]sampleEntry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun inserts or updates a run record.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		return fmt.Errorf("run id is empty: %w", internalerr.ErrInvalidInput)
	}
	s.runs[r.ID] = r
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID > runs[j].ID
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// UpsertTermCounts merges term totals into a run, keyed by term.
func (s *Store) UpsertTermCounts(ctx context.Context, runID string, rows []store.TermCount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.counts[runID]
	if m == nil {
		m = make(map[string]store.TermCount)
		s.counts[runID] = m
	}
	for _, c := range rows {
		if c.Term == "" {
			continue
		}
		m[c.Term] = c
	}
	return nil
}

// GetTermCounts returns one run's term totals ordered by term.
func (s *Store) GetTermCounts(ctx context.Context, runID string) ([]store.TermCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.counts[runID]
	if len(m) == 0 {
		return nil, nil
	}
	out := make([]store.TermCount, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out, nil
}

// UpsertAdjacency merges transition summaries into a run, keyed by term.
func (s *Store) UpsertAdjacency(ctx context.Context, runID string, rows []store.AdjacencyRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.adjacency[runID]
	if m == nil {
		m = make(map[string]store.AdjacencyRow)
		s.adjacency[runID] = m
	}
	for _, a := range rows {
		if a.Term == "" {
			continue
		}
		m[a.Term] = a
	}
	return nil
}

// GetAdjacency returns one run's transition summaries ordered by term.
func (s *Store) GetAdjacency(ctx context.Context, runID string) ([]store.AdjacencyRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.adjacency[runID]
	if len(m) == 0 {
		return nil, nil
	}
	out := make([]store.AdjacencyRow, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out, nil
}

// UpsertSamples inserts or replaces QC sample rows, keyed by record ID.
func (s *Store) UpsertSamples(ctx context.Context, runID string, recs []store.SampleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		if rec.ID == "" {
			continue
		}
		s.samples[rec.ID] = sampleEntry{runID: runID, rec: rec}
	}
	return nil
}

// GetSamples returns one run's QC samples, optionally restricted to a
// stratum, ordered by stratum then record ID.
func (s *Store) GetSamples(ctx context.Context, runID, stratum string) ([]store.SampleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []store.SampleRecord
	for _, e := range s.samples {
		if e.runID != runID {
			continue
		}
		if stratum != "" && e.rec.Stratum != stratum {
			continue
		}
		recs = append(recs, e.rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Stratum != recs[j].Stratum {
			return recs[i].Stratum < recs[j].Stratum
		}
		return recs[i].ID < recs[j].ID
	})
	return recs, nil
}

// SetManualLabel records a reviewer verdict against a stored sample.
func (s *Store) SetManualLabel(ctx context.Context, sampleID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.samples[sampleID]
	if !ok {
		return fmt.Errorf("sample %s: %w", sampleID, internalerr.ErrNotFound)
	}
	e.rec.Manual = label
	s.samples[sampleID] = e
	return nil
}
