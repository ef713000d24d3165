// Package datastore keeps the normalized base dataset in memory.
//
// The dataset is loaded wholesale before any filtering starts and then only
// read. A reload swaps in a new snapshot; runs already holding the old one
// finish against it.
package datastore

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gradscope/adapters/normalize"
	"gradscope/domain/core"
	"gradscope/domain/dataset"
	"gradscope/internal"
	"gradscope/internal/errors"
	"gradscope/internal/metrics"
	"gradscope/ports"
)

// Snapshot is one loaded version of the base dataset
type Snapshot struct {
	ID       core.SnapshotID  `json:"id"`
	Data     *dataset.Dataset `json:"-"`
	Report   normalize.Report `json:"report"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loaded_at"`
}

// Store owns the current snapshot
type Store struct {
	source     ports.DatasetSource
	normalizer *normalize.Normalizer
	logger     *internal.Logger

	mu      sync.RWMutex
	current *Snapshot
	group   singleflight.Group
}

// NewStore creates an empty store; call Load before serving.
func NewStore(source ports.DatasetSource, normalizer *normalize.Normalizer, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{source: source, normalizer: normalizer, logger: logger}
}

// Load reads and normalizes the dataset and makes it current. Concurrent
// calls share one read.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	v, err, shared := s.group.Do("load", func() (interface{}, error) {
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("[Store] Joined an in-flight load")
	}
	return v.(*Snapshot), nil
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	raw, err := s.source.Load(ctx)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues("error").Inc()
		s.logger.Error("[Store] Failed to load %s: %v", s.source.Describe(), err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.DatasetLoad("failed to load "+s.source.Describe(), err)
	}

	ds, report := s.normalizer.Normalize(raw)
	snap := &Snapshot{
		ID:       core.NewSnapshotID(),
		Data:     ds,
		Report:   report,
		Source:   s.source.Describe(),
		LoadedAt: time.Now(),
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	metrics.DatasetLoads.WithLabelValues("ok").Inc()
	metrics.DatasetRows.Set(float64(ds.Len()))
	metrics.DatasetDroppedRows.Set(float64(report.ZeroTotalRows))
	metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())

	for _, w := range report.Warnings {
		s.logger.Warn("[Store] %s", w)
	}
	s.logger.Info("[Store] Snapshot %s ready: %d rows (%d dropped) from %s",
		snap.ID, report.RowsOut, report.ZeroTotalRows, snap.Source)
	return snap, nil
}

// Current returns the loaded snapshot
func (s *Store) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, errors.NotFound("dataset snapshot")
	}
	return s.current, nil
}

// Ready reports whether a snapshot has been loaded
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Source describes where the store reads from
func (s *Store) Source() string {
	return s.source.Describe()
}
