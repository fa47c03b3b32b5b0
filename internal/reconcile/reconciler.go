// Package reconcile merges the capture-path snapshot feeds into a single,
// de-duplicated, time-ordered transaction list.
//
// The Reconciler subscribes to one feed per source. Whenever either feed
// pushes a new full snapshot, it re-normalizes the union of the latest
// snapshots, filters near-duplicates, sorts by date descending and emits the
// result to every subscriber. There is no incremental diffing: every change
// triggers a full recomputation.
//
// A single mutex guards the whole read-normalize-dedup-sort-emit sequence,
// so a snapshot callback from one source can never interleave with another
// mid-computation. Emissions reflect the most-recently-received snapshot
// pair at the time they were computed (eventual consistency, not strict
// causal ordering with respect to wall-clock source updates).
package reconcile

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finze-app/finze-backend/internal/domain/dedup"
	"github.com/finze-app/finze-backend/internal/domain/normalizer"
	"github.com/finze-app/finze-backend/internal/domain/transaction"
)

// State is the reconciler lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateSubscribed State = "subscribed"
	StateStopped    State = "stopped"
)

// Feed is a push-based snapshot source, one per capture path.
// *sources.Adapter satisfies it.
type Feed interface {
	Source() transaction.SourceTag
	Start(deliver func(records []transaction.RawRecord))
	Stop()
}

// Subscriber receives each emitted transaction list. The list is a value:
// subscribers must not mutate it, and must not call back into the
// Reconciler from inside the callback (emission happens inside the
// reconciliation critical section).
type Subscriber func(transactions []transaction.Transaction)

// Config holds reconciler configuration.
type Config struct {
	// Detector thresholds for duplicate detection.
	Detector dedup.Config

	// Precedence fixes the concatenation order of source snapshots, and
	// with it which side of a duplicate pair survives: earlier sources
	// win. This is a policy choice, not a statement about which record
	// was created first in real time.
	Precedence []transaction.SourceTag
}

// DefaultConfig returns sensible defaults: manual entries take precedence
// over scanned receipts.
func DefaultConfig() Config {
	return Config{
		Detector:   dedup.DefaultConfig(),
		Precedence: []transaction.SourceTag{transaction.SourceManual, transaction.SourceOCR},
	}
}

// Reconciler owns the latest snapshot per source and the reconciled output.
type Reconciler struct {
	config   Config
	detector *dedup.Detector
	feeds    []Feed
	logger   *slog.Logger
	clock    func() time.Time

	mu          sync.Mutex
	state       State
	snapshots   map[transaction.SourceTag][]transaction.RawRecord
	current     []transaction.Transaction
	subscribers map[string]Subscriber
}

// New creates a reconciler over the given feeds.
func New(config Config, feeds []Feed, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		config:      config,
		detector:    dedup.NewDetector(config.Detector),
		feeds:       feeds,
		logger:      logger,
		clock:       time.Now,
		state:       StateIdle,
		snapshots:   make(map[transaction.SourceTag][]transaction.RawRecord),
		subscribers: make(map[string]Subscriber),
	}
}

// State returns the current lifecycle state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start subscribes to all feeds. Idempotent; starting a stopped reconciler
// is a no-op (the lifecycle is one-way).
func (r *Reconciler) Start() {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return
	}
	r.state = StateSubscribed
	r.mu.Unlock()

	// Feeds deliver their initial snapshot synchronously from Start, so
	// this runs outside the reconciliation lock.
	for _, f := range r.feeds {
		src := f.Source()
		f.Start(func(records []transaction.RawRecord) {
			r.onSnapshot(src, records)
		})
	}

	r.logger.Info("reconciler started", slog.Int("feeds", len(r.feeds)))
}

// Stop cancels all feed subscriptions. Idempotent. After Stop returns no
// further emissions occur; a snapshot callback already in flight is dropped.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.state == StateStopped {
		r.mu.Unlock()
		return
	}
	r.state = StateStopped
	r.mu.Unlock()

	for _, f := range r.feeds {
		f.Stop()
	}

	r.logger.Info("reconciler stopped")
}

// Subscribe registers fn to receive every emitted list. If a list has
// already been emitted, fn immediately receives the current one. The
// returned cancel func unregisters fn and is safe to call more than once.
func (r *Reconciler) Subscribe(fn Subscriber) (cancel func()) {
	id := uuid.NewString()

	r.mu.Lock()
	r.subscribers[id] = fn
	current := r.current
	r.mu.Unlock()

	if current != nil {
		fn(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subscribers, id)
		})
	}
}

// Current returns the most recently emitted list (nil before the first
// emission). The result is shared with subscribers and must be treated as
// read-only.
func (r *Reconciler) Current() []transaction.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// onSnapshot is the single entry point for feed deliveries. The whole
// replace-normalize-dedup-sort-emit sequence runs under one lock.
func (r *Reconciler) onSnapshot(source transaction.SourceTag, records []transaction.RawRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateSubscribed {
		return
	}

	r.snapshots[source] = records
	r.recomputeLocked()
}

// recomputeLocked rebuilds the reconciled list from the latest snapshots.
// Caller must hold r.mu.
func (r *Reconciler) recomputeLocked() {
	now := r.clock()

	var candidates []transaction.Transaction
	for _, src := range r.config.Precedence {
		for _, rec := range r.snapshots[src] {
			candidates = append(candidates, normalizer.Normalize(rec, src, now))
		}
	}

	accepted := r.detector.Filter(candidates)

	// Calendar date descending; same-day entries keep concatenation order.
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].DateKey() > accepted[j].DateKey()
	})

	r.current = accepted

	r.logger.Debug("reconciled",
		slog.Int("candidates", len(candidates)),
		slog.Int("accepted", len(accepted)))

	for _, fn := range r.subscribers {
		fn(accepted)
	}
}
