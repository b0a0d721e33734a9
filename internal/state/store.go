package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/five82/clusterboard/internal/api"
	"github.com/five82/clusterboard/internal/watch"
)

// ErrFetchFailed marks a refresh or submission that could not reach the backend
// or got an unusable answer. The previous snapshot is always kept.
var ErrFetchFailed = errors.New("fetch failed")

// ClusterFetcher is the subset of the backend the store needs.
type ClusterFetcher interface {
	FetchClusters(ctx context.Context) (*api.ClusterList, error)
}

// Snapshot represents one complete fetch result plus bookkeeping for the UI.
type Snapshot struct {
	Clusters            []api.Cluster
	TotalClusters       int
	TotalComments       int
	Loaded              bool // true once any refresh succeeded
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// AverageSize returns comments per cluster rounded to one decimal place.
func (s Snapshot) AverageSize() float64 {
	if s.TotalClusters <= 0 {
		return 0
	}
	avg := float64(s.TotalComments) / float64(s.TotalClusters)
	return math.Round(avg*10) / 10
}

// MaxCommentCount returns the largest member count in the snapshot.
func (s Snapshot) MaxCommentCount() int {
	largest := 0
	for _, c := range s.Clusters {
		if c.CommentCount > largest {
			largest = c.CommentCount
		}
	}
	return largest
}

// Store owns the authoritative snapshot and replaces it wholesale.
type Store struct {
	fetcher ClusterFetcher
	logger  *slog.Logger

	mu       sync.RWMutex
	snapshot Snapshot

	changes watch.Hub
}

// NewStore builds a Store that refreshes from fetcher.
func NewStore(fetcher ClusterFetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fetcher: fetcher, logger: logger}
}

// Refresh fetches the current cluster list and replaces the snapshot on success.
// On failure the previous snapshot is left untouched and the returned error
// satisfies errors.Is(err, ErrFetchFailed). There is no retry.
func (s *Store) Refresh(ctx context.Context) error {
	if s.fetcher == nil {
		return fmt.Errorf("%w: no backend configured", ErrFetchFailed)
	}
	list, err := s.fetcher.FetchClusters(ctx)
	if err == nil && list == nil {
		err = errors.New("empty cluster response")
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrFetchFailed, err)
		s.Update(nil, err)
		return err
	}
	s.Update(list, nil)
	return nil
}

// Update replaces the stored snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(list *api.ClusterList, err error) {
	s.mu.Lock()
	if err != nil || list == nil {
		if err == nil {
			err = fmt.Errorf("%w: empty cluster response", ErrFetchFailed)
		}
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		s.mu.Unlock()
		s.changes.Notify()
		return
	}

	s.snapshot = Snapshot{
		Clusters:      s.normalize(list.Clusters),
		TotalClusters: list.TotalClusters,
		TotalComments: list.TotalComments,
		Loaded:        true,
		LastUpdated:   time.Now(),
	}
	s.mu.Unlock()
	s.changes.Notify()
}

// Current returns a copy of the most recent snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Clusters = cloneClusters(s.snapshot.Clusters)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Subscribe returns a channel signalled after every snapshot change.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	return s.changes.Subscribe()
}

// normalize copies clusters and enforces comment_count == len(comments)
// whenever the backend sent a comment list.
func (s *Store) normalize(clusters []api.Cluster) []api.Cluster {
	out := cloneClusters(clusters)
	for i := range out {
		if out[i].Comments == nil || out[i].CommentCount == len(out[i].Comments) {
			continue
		}
		s.log().Warn("cluster count mismatch",
			"cluster_id", out[i].ID,
			"comment_count", out[i].CommentCount,
			"comments", len(out[i].Comments))
		out[i].CommentCount = len(out[i].Comments)
	}
	return out
}

func (s *Store) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func cloneClusters(clusters []api.Cluster) []api.Cluster {
	if len(clusters) == 0 {
		return nil
	}
	dup := make([]api.Cluster, len(clusters))
	for i, c := range clusters {
		dup[i] = c.Clone()
	}
	return dup
}
