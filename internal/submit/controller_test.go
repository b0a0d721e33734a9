package submit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/five82/clusterboard/internal/api"
	"github.com/five82/clusterboard/internal/notify"
	"github.com/five82/clusterboard/internal/state"
)

type fakeBackend struct {
	calls   atomic.Int32
	gate    chan struct{}
	entered chan struct{}
	resp    *api.SubmitResult
	err     error
	lastReq api.SubmitRequest
	mu      sync.Mutex
}

func (f *fakeBackend) SubmitComment(ctx context.Context, req api.SubmitRequest) (*api.SubmitResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeRefresher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls.Add(1)
	return f.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	toast []notify.Toast
}

func (n *recordingNotifier) Enqueue(text string, sev notify.Severity) notify.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	t := notify.Toast{Text: text, Severity: sev}
	n.toast = append(n.toast, t)
	return t
}

func (n *recordingNotifier) all() []notify.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Toast(nil), n.toast...)
}

func newController(b *fakeBackend, r *fakeRefresher, n *recordingNotifier) *Controller {
	return New(Config{Backend: b, Refresher: r, Notifier: n, UserID: "tester"})
}

func TestSubmitRejectsBlankDraft(t *testing.T) {
	for _, draft := range []string{"", "   ", "\n\t "} {
		b := &fakeBackend{resp: &api.SubmitResult{}}
		r := &fakeRefresher{}
		n := &recordingNotifier{}
		c := newController(b, r, n)
		c.SetDraft(draft)

		_, err := c.Submit(context.Background())
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("draft %q: expected ErrValidationFailed, got %v", draft, err)
		}
		if b.calls.Load() != 0 || r.calls.Load() != 0 {
			t.Fatalf("draft %q: backend or refresh was called", draft)
		}
		toasts := n.all()
		if len(toasts) != 1 || toasts[0].Severity != notify.SeverityWarning || toasts[0].Text != MsgEmpty {
			t.Fatalf("draft %q: unexpected toasts %+v", draft, toasts)
		}
		if c.State() != Idle {
			t.Fatalf("draft %q: state = %v", draft, c.State())
		}
	}
}

func TestSubmitRejectsOversizedDraft(t *testing.T) {
	b := &fakeBackend{resp: &api.SubmitResult{}}
	n := &recordingNotifier{}
	c := newController(b, &fakeRefresher{}, n)
	c.SetDraft(strings.Repeat("é", api.MaxCommentLength+1))

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if b.calls.Load() != 0 {
		t.Fatal("backend called for oversized draft")
	}
	if toasts := n.all(); len(toasts) != 1 || toasts[0].Severity != notify.SeverityWarning {
		t.Fatalf("unexpected toasts %+v", toasts)
	}

	c.SetDraft(strings.Repeat("é", api.MaxCommentLength))
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("draft at limit rejected: %v", err)
	}
}

func TestSubmitNewCluster(t *testing.T) {
	b := &fakeBackend{resp: &api.SubmitResult{CommentID: "c1", ClusterID: "k1", Similarity: 1, IsNewCluster: true}}
	r := &fakeRefresher{}
	n := &recordingNotifier{}
	c := newController(b, r, n)
	c.SetDraft("  hello world  ")

	res, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Message != MsgNewCluster {
		t.Fatalf("message = %q", res.Message)
	}
	if b.lastReq.Text != "hello world" || b.lastReq.UserID != "tester" {
		t.Fatalf("unexpected request %+v", b.lastReq)
	}
	if c.Draft() != "" {
		t.Fatalf("draft not cleared: %q", c.Draft())
	}
	if r.calls.Load() != 1 {
		t.Fatalf("refresh calls = %d, want 1", r.calls.Load())
	}
	toasts := n.all()
	if len(toasts) != 1 || toasts[0].Severity != notify.SeveritySuccess || toasts[0].Text != MsgNewCluster {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
}

func TestSubmitExistingClusterSimilarity(t *testing.T) {
	b := &fakeBackend{resp: &api.SubmitResult{Similarity: 0.8234}}
	n := &recordingNotifier{}
	c := newController(b, &fakeRefresher{}, n)
	c.SetDraft("checkout is slow")

	res, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Message != "Added with 82% similarity" {
		t.Fatalf("message = %q", res.Message)
	}
	if toasts := n.all(); len(toasts) != 1 || toasts[0].Text != res.Message {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	b := &fakeBackend{err: errors.New("boom")}
	r := &fakeRefresher{}
	n := &recordingNotifier{}
	c := newController(b, r, n)
	c.SetDraft("keep me")

	_, err := c.Submit(context.Background())
	if !errors.Is(err, state.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if c.Draft() != "keep me" {
		t.Fatalf("draft lost: %q", c.Draft())
	}
	if r.calls.Load() != 0 {
		t.Fatal("refresh should not run after a failed submit")
	}
	toasts := n.all()
	if len(toasts) != 1 || toasts[0].Severity != notify.SeverityError || toasts[0].Text != MsgSubmitError {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
	if c.State() != Idle {
		t.Fatalf("state = %v, want idle", c.State())
	}
}

func TestSubmitRefreshFailureStillSucceeds(t *testing.T) {
	b := &fakeBackend{resp: &api.SubmitResult{IsNewCluster: true}}
	r := &fakeRefresher{err: errors.New("offline")}
	n := &recordingNotifier{}
	c := newController(b, r, n)
	c.SetDraft("hi")

	res, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.RefreshError == nil {
		t.Fatal("expected RefreshError to be recorded")
	}
	toasts := n.all()
	if len(toasts) != 2 || toasts[1].Severity != notify.SeverityError || toasts[1].Text != MsgLoadError {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
}

func TestSubmitWhileBusy(t *testing.T) {
	b := &fakeBackend{
		resp:    &api.SubmitResult{IsNewCluster: true},
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	r := &fakeRefresher{}
	n := &recordingNotifier{}
	c := newController(b, r, n)
	c.SetDraft("first")

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-b.entered

	if c.State() != Submitting {
		t.Fatalf("state = %v, want submitting", c.State())
	}
	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if got := len(n.all()); got != 0 {
		t.Fatalf("busy submit produced %d toasts", got)
	}

	close(b.gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if b.calls.Load() != 1 {
		t.Fatalf("backend calls = %d, want 1", b.calls.Load())
	}
	if r.calls.Load() != 1 {
		t.Fatalf("refresh calls = %d, want 1", r.calls.Load())
	}
	if c.State() != Idle {
		t.Fatalf("state = %v, want idle", c.State())
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		resp api.SubmitResult
		want string
	}{
		{api.SubmitResult{Similarity: 0.8234}, "Added with 82% similarity"},
		{api.SubmitResult{Similarity: 0.875}, "Added with 88% similarity"},
		{api.SubmitResult{Similarity: 0}, "Added with 0% similarity"},
		{api.SubmitResult{Similarity: 1.7}, "Added with 100% similarity"},
		{api.SubmitResult{Similarity: -0.3}, "Added with 0% similarity"},
		{api.SubmitResult{Similarity: 0.5, IsNewCluster: true}, MsgNewCluster},
	}
	for _, tt := range tests {
		if got := SuccessMessage(tt.resp); got != tt.want {
			t.Fatalf("SuccessMessage(%+v) = %q, want %q", tt.resp, got, tt.want)
		}
	}
}
