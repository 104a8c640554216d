package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/oriolmontcreus/capsulo-sub000/internal/logging"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

// DefaultQuietPeriod is how long edits must settle before a draft writes.
const DefaultQuietPeriod = 2 * time.Second

// SnapshotFunc builds the draft snapshot for a unit: the save projection of
// every non-deleted component. Returning ok=false skips the write (unit
// still loading, or no changes detected).
type SnapshotFunc func(ctx context.Context, unitID string) (*interfaces.ContentUnit, bool)

// Scheduler debounces edit notifications per unit and writes a merged
// snapshot into the local draft store once the quiet period elapses. Only
// the final settled value reaches storage; intermediate keystrokes never do.
type Scheduler struct {
	quiet    time.Duration
	drafts   interfaces.DraftStore
	snapshot SnapshotFunc
	logger   interfaces.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	epochs map[string]uint64
	closed bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithQuietPeriod overrides the debounce interval.
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.quiet = d
		}
	}
}

// WithLogger wires the autosave logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a scheduler writing to the given draft store.
func New(drafts interfaces.DraftStore, snapshot SnapshotFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		quiet:    DefaultQuietPeriod,
		drafts:   drafts,
		snapshot: snapshot,
		logger:   logging.NoOp(),
		timers:   make(map[string]*time.Timer),
		epochs:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Touch notes that the unit's edit buffers changed and (re)arms its timer.
// Timers are keyed by unit id, so switching units cannot autosave into the
// wrong draft. Each touch starts a new epoch; a callback from an older epoch
// never reaches storage.
func (s *Scheduler) Touch(unitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if timer, ok := s.timers[unitID]; ok {
		timer.Stop()
	}
	s.epochs[unitID]++
	epoch := s.epochs[unitID]
	s.timers[unitID] = time.AfterFunc(s.quiet, func() {
		s.fire(unitID, epoch)
	})
}

// Flush runs the unit's pending autosave immediately, cancelling its timer.
func (s *Scheduler) Flush(ctx context.Context, unitID string) error {
	s.Cancel(unitID)
	unit, ok := s.snapshot(ctx, unitID)
	if !ok || unit == nil {
		return nil
	}
	return s.drafts.SetDraft(ctx, unitID, unit)
}

// Cancel drops the unit's pending timer without writing and invalidates any
// callback already past its timer, so a save that races the quiet period
// cannot have its cleared draft resurrected.
func (s *Scheduler) Cancel(unitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epochs[unitID]++
	if timer, ok := s.timers[unitID]; ok {
		timer.Stop()
		delete(s.timers, unitID)
	}
}

// Close stops every pending timer. Further touches are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for unitID, timer := range s.timers {
		timer.Stop()
		delete(s.timers, unitID)
	}
}

func (s *Scheduler) fire(unitID string, epoch uint64) {
	s.mu.Lock()
	delete(s.timers, unitID)
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	if err := s.write(context.Background(), unitID, epoch); err != nil {
		// Local-store failures degrade to "no autosave"; editing continues.
		logging.WithUnitContext(s.logger, unitID, "", "autosave.write").
			Warn("autosave.write_failed", "error", err)
	}
}

func (s *Scheduler) write(ctx context.Context, unitID string, epoch uint64) error {
	unit, ok := s.snapshot(ctx, unitID)
	if !ok || unit == nil {
		return nil
	}
	// Re-check right before the store write: a cancel or newer touch while
	// the snapshot was built makes this callback stale.
	if !s.epochCurrent(unitID, epoch) {
		return nil
	}
	return s.drafts.SetDraft(ctx, unitID, unit)
}

func (s *Scheduler) epochCurrent(unitID string, epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.epochs[unitID] == epoch
}
