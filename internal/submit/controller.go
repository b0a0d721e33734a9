// Package submit drives the comment submission lifecycle.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/five82/clusterboard/internal/api"
	"github.com/five82/clusterboard/internal/notify"
	"github.com/five82/clusterboard/internal/state"
)

var (
	// ErrValidationFailed is returned for empty or oversized drafts.
	ErrValidationFailed = errors.New("validation failed")
	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("submission in progress")
)

// User-facing messages.
const (
	MsgEmpty       = "Please enter a comment"
	MsgNewCluster  = "Created new cluster!"
	MsgSubmitError = "Failed to submit comment"
	MsgLoadError   = "Failed to load clusters"
)

// Phase is the controller's state.
type Phase int

const (
	Idle Phase = iota
	Submitting
)

func (p Phase) String() string {
	if p == Submitting {
		return "submitting"
	}
	return "idle"
}

// Submitter posts a comment to the backend.
type Submitter interface {
	SubmitComment(ctx context.Context, req api.SubmitRequest) (*api.SubmitResult, error)
}

// Refresher reloads the cluster snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Notifier receives user-facing outcome messages.
type Notifier interface {
	Enqueue(text string, sev notify.Severity) notify.Toast
}

// Result describes a successful submission.
type Result struct {
	Response     api.SubmitResult
	Message      string
	RefreshError error
}

// Controller owns the draft text and the Idle/Submitting guard.
type Controller struct {
	backend   Submitter
	refresher Refresher
	notifier  Notifier
	userID    string
	logger    *slog.Logger

	mu    sync.Mutex
	draft string
	phase Phase
}

// Config bundles the collaborators a Controller needs.
type Config struct {
	Backend   Submitter
	Refresher Refresher
	Notifier  Notifier
	UserID    string
	Logger    *slog.Logger
}

// New builds a Controller. Refresher and Notifier may be nil.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		backend:   cfg.Backend,
		refresher: cfg.Refresher,
		notifier:  cfg.Notifier,
		userID:    strings.TrimSpace(cfg.UserID),
		logger:    logger,
	}
}

// SetDraft replaces the input buffer.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// Draft returns the input buffer.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// State returns the current phase.
func (c *Controller) State() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Submit sends the trimmed draft. A call made while another is in flight
// returns ErrBusy without touching the backend or the notifier.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.phase == Submitting {
		c.mu.Unlock()
		return Result{}, ErrBusy
	}
	text := strings.TrimSpace(c.draft)
	if msg := validate(text); msg != "" {
		c.mu.Unlock()
		c.notify(msg, notify.SeverityWarning)
		return Result{}, fmt.Errorf("%w: %s", ErrValidationFailed, msg)
	}
	c.phase = Submitting
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.phase = Idle
		c.mu.Unlock()
	}()

	if c.backend == nil {
		c.notify(MsgSubmitError, notify.SeverityError)
		return Result{}, fmt.Errorf("%w: no backend configured", state.ErrFetchFailed)
	}

	resp, err := c.backend.SubmitComment(ctx, api.SubmitRequest{Text: text, UserID: c.userID})
	if err != nil {
		c.logger.Warn("submit comment failed", "error", err)
		c.notify(MsgSubmitError, notify.SeverityError)
		return Result{}, fmt.Errorf("%w: submit comment: %w", state.ErrFetchFailed, err)
	}

	res := Result{Response: *resp, Message: SuccessMessage(*resp)}
	c.notify(res.Message, notify.SeveritySuccess)
	c.logger.Info("comment submitted",
		"comment_id", resp.CommentID,
		"cluster_id", resp.ClusterID,
		"new_cluster", resp.IsNewCluster,
		"similarity", resp.Similarity,
	)

	c.mu.Lock()
	c.draft = ""
	c.mu.Unlock()

	if c.refresher != nil {
		if err := c.refresher.Refresh(ctx); err != nil {
			c.logger.Warn("refresh after submit failed", "error", err)
			c.notify(MsgLoadError, notify.SeverityError)
			res.RefreshError = err
		}
	}
	return res, nil
}

// SuccessMessage renders the toast text for a submission response.
func SuccessMessage(resp api.SubmitResult) string {
	if resp.IsNewCluster {
		return MsgNewCluster
	}
	return fmt.Sprintf("Added with %s similarity", FormatPercent(resp.ClampedSimilarity()))
}

// FormatPercent renders a 0..1 ratio as a rounded whole percentage.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(ratio*100)))
}

func validate(text string) string {
	if text == "" {
		return MsgEmpty
	}
	if n := utf8.RuneCountInString(text); n > api.MaxCommentLength {
		return fmt.Sprintf("Comment is too long (%d/%d characters)", n, api.MaxCommentLength)
	}
	return ""
}

func (c *Controller) notify(text string, sev notify.Severity) {
	if c.notifier != nil {
		c.notifier.Enqueue(text, sev)
	}
}
