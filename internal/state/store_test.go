package state

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/five82/clusterboard/internal/api"
)

type fakeFetcher struct {
	mu    sync.Mutex
	list  *api.ClusterList
	err   error
	calls int
}

func (f *fakeFetcher) FetchClusters(context.Context) (*api.ClusterList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func threeClusters() *api.ClusterList {
	return &api.ClusterList{
		Clusters: []api.Cluster{
			{ID: "a", CommentCount: 1, Comments: []api.Comment{{ID: "1"}}},
			{ID: "b", CommentCount: 2, Comments: []api.Comment{{ID: "2"}, {ID: "3"}}},
			{ID: "c", CommentCount: 1, Comments: []api.Comment{{ID: "4"}}},
		},
		TotalClusters: 3,
		TotalComments: 4,
	}
}

func TestStore_CurrentIsEmptyBeforeFirstRefresh(t *testing.T) {
	s := NewStore(&fakeFetcher{}, nil)
	snap := s.Current()
	if snap.Loaded || len(snap.Clusters) != 0 || snap.TotalClusters != 0 {
		t.Fatalf("initial snapshot = %#v, want empty", snap)
	}
}

func TestStore_RefreshReplacesSnapshot(t *testing.T) {
	f := &fakeFetcher{list: threeClusters()}
	s := NewStore(f, nil)

	before := time.Now()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	snap := s.Current()
	if !snap.Loaded || len(snap.Clusters) != 3 || snap.TotalComments != 4 {
		t.Fatalf("snapshot = %#v, want 3 clusters", snap)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Clusters[1].Comments[0].Text = "mutated"
	snap.Clusters[0].ID = "zzz"
	again := s.Current()
	if again.Clusters[0].ID != "a" || again.Clusters[1].Comments[0].Text != "" {
		t.Fatalf("Current should deep-copy clusters; got %#v", again.Clusters)
	}

	f.list = &api.ClusterList{Clusters: []api.Cluster{{ID: "only", CommentCount: 0}}, TotalClusters: 1}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	snap = s.Current()
	if len(snap.Clusters) != 1 || snap.Clusters[0].ID != "only" {
		t.Fatalf("snapshot not replaced wholesale: %#v", snap.Clusters)
	}
}

func TestStore_RefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	f := &fakeFetcher{list: threeClusters()}
	s := NewStore(f, nil)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	prev := s.Current()

	origErr := errors.New("connection refused")
	f.err = origErr
	err := s.Refresh(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Refresh error = %v, want ErrFetchFailed", err)
	}
	if !errors.Is(err, origErr) {
		t.Fatalf("Refresh error = %v, want it to wrap the transport error", err)
	}

	snap := s.Current()
	if !reflect.DeepEqual(snap.Clusters, prev.Clusters) {
		t.Fatalf("clusters changed on error: got %#v want %#v", snap.Clusters, prev.Clusters)
	}
	if len(snap.Clusters) != 3 {
		t.Fatalf("len(clusters) = %d, want 3", len(snap.Clusters))
	}
	if snap.LastError == nil {
		t.Fatalf("LastError = nil, want recorded error")
	}
}

func TestStore_SnapshotClonesError(t *testing.T) {
	var s Store
	origErr := errors.New("boom")
	s.Update(nil, origErr)

	snap := s.Current()
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Current should clone error instance")
	}
}

func TestStore_RefreshWithoutFetcherFails(t *testing.T) {
	var s Store
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Refresh error = %v, want ErrFetchFailed", err)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	f := &fakeFetcher{err: errors.New("down")}
	s := NewStore(f, nil)

	_ = s.Refresh(context.Background())
	if snap := s.Current(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
	_ = s.Refresh(context.Background())
	if snap := s.Current(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	f.err = nil
	f.list = threeClusters()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	snap := s.Current()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() || snap.LastError != nil {
		t.Fatalf("success should reset failures: %#v", snap)
	}
}

func TestStore_NormalizesCountToCommentLength(t *testing.T) {
	f := &fakeFetcher{list: &api.ClusterList{Clusters: []api.Cluster{
		{ID: "a", CommentCount: 5, Comments: []api.Comment{{ID: "1"}, {ID: "2"}}},
		{ID: "b", CommentCount: 3},
	}}}
	s := NewStore(f, nil)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	snap := s.Current()
	if snap.Clusters[0].CommentCount != 2 {
		t.Fatalf("CommentCount = %d, want 2 (len of comments)", snap.Clusters[0].CommentCount)
	}
	if snap.Clusters[1].CommentCount != 3 {
		t.Fatalf("CommentCount without comments = %d, want 3 untouched", snap.Clusters[1].CommentCount)
	}
}

func TestStore_SubscribeNotifiesOnChange(t *testing.T) {
	s := NewStore(&fakeFetcher{list: threeClusters()}, nil)
	ch, cancel := s.Subscribe()

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("no notification after refresh")
	}

	cancel()
	cancel() // idempotent
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after cancel")
	}
	// Updates after cancel must not panic.
	s.Update(threeClusters(), nil)
}

func TestSnapshot_AverageAndMax(t *testing.T) {
	snap := Snapshot{TotalClusters: 3, TotalComments: 7, Clusters: []api.Cluster{{CommentCount: 1}, {CommentCount: 4}}}
	if got := snap.AverageSize(); got != 2.3 {
		t.Fatalf("AverageSize = %v, want 2.3", got)
	}
	if got := snap.MaxCommentCount(); got != 4 {
		t.Fatalf("MaxCommentCount = %d, want 4", got)
	}
	if got := (Snapshot{}).AverageSize(); got != 0 {
		t.Fatalf("AverageSize with no clusters = %v, want 0", got)
	}
}
