// Package tracker watches a created charge until its timeline reaches
// a terminal status, polling the commerce API at a fixed cadence.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/metrics"
	"github.com/onchaincommerce/onchaincommerce/types"
)

// DefaultInterval matches the cadence the hosted checkout page itself
// uses when watching for settlement.
const DefaultInterval = 5 * time.Second

// ChargeGetter is the single commerce operation the tracker needs.
type ChargeGetter interface {
	GetCharge(ctx context.Context, chargeID string) (*types.Charge, error)
}

// Result is delivered exactly once, when a charge reaches a terminal
// status. TransactionLink is populated only for completed charges with
// a detected payment.
type Result struct {
	ChargeID        string
	Status          types.ChargeStatus
	TransactionID   string
	TransactionLink string
}

// Tracker starts watches over charges. It is safe for concurrent use;
// each watch runs its own sequential poll loop.
type Tracker struct {
	client   ChargeGetter
	interval time.Duration
	log      logger.Logger
	rec      metrics.Recorder
}

func New(client ChargeGetter, opts ...Option) *Tracker {
	t := &Tracker{
		client:   client,
		interval: DefaultInterval,
		log:      logger.NoopLogger{},
		rec:      metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Watch is the cancellable handle for one polling session.
type Watch struct {
	cancel  context.CancelFunc
	stopped chan struct{}

	mu   sync.Mutex
	done bool
}

// Cancel stops the watch. It is idempotent and safe to call from any
// goroutine, including from inside the result callback; once it
// returns, the result callback will never begin.
func (w *Watch) Cancel() {
	w.mu.Lock()
	w.done = true
	w.mu.Unlock()
	w.cancel()
}

// Done is closed when the poll loop has fully exited.
func (w *Watch) Done() <-chan struct{} {
	return w.stopped
}

// Track begins polling the charge and invokes fn once, from the poll
// goroutine, when a terminal status is observed. Polls are strictly
// sequential and never issued more than once per interval. A failed
// poll is swallowed and retried on the next tick; the loop ends only
// on a terminal status, Cancel, or context cancellation.
//
// There is deliberately no max-attempts cutoff: a watch left running
// is bounded only by its context, so callers that want a deadline
// pass one on ctx.
func (t *Tracker) Track(ctx context.Context, chargeID string, fn func(Result)) *Watch {
	ctx, cancel := context.WithCancel(ctx)
	w := &Watch{
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	go t.run(ctx, chargeID, fn, w)
	return w
}

func (t *Tracker) run(ctx context.Context, chargeID string, fn func(Result), w *Watch) {
	defer close(w.stopped)
	defer w.cancel()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		charge, err := t.client.GetCharge(ctx, chargeID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.rec.IncCounter("poll_error", map[string]string{"component": "tracker"})
			t.log.Warn("charge poll failed", map[string]any{
				"charge_id": chargeID,
				"error":     err.Error(),
			})
			continue
		}

		t.rec.IncCounter("poll", map[string]string{"component": "tracker"})

		result, terminal := evaluate(charge)
		if !terminal {
			continue
		}

		// Claim delivery under the watch lock, then invoke fn with
		// the lock released so the callback itself may call Cancel.
		// Cancel still guarantees no callback begins after it returns.
		w.mu.Lock()
		if w.done {
			w.mu.Unlock()
			return
		}
		w.done = true
		w.mu.Unlock()

		fn(result)
		return
	}
}

// evaluate scans the timeline for a terminal outcome. A COMPLETED
// entry wins even if later entries exist; EXPIRED and CANCELED are
// terminal without a transaction link. UNRESOLVED keeps the watch
// polling.
func evaluate(charge *types.Charge) (Result, bool) {
	for _, entry := range charge.Timeline {
		if entry.Status == types.StatusCompleted {
			result := Result{ChargeID: charge.ID, Status: types.StatusCompleted}
			if payment, ok := charge.FirstPayment(); ok {
				result.TransactionID = payment.TransactionID
				result.TransactionLink = types.Network(payment.Network).ExplorerTxURL(payment.TransactionID)
			}
			return result, true
		}
	}

	current := charge.CurrentStatus()
	if current == types.StatusExpired || current == types.StatusCanceled {
		return Result{ChargeID: charge.ID, Status: current}, true
	}

	return Result{}, false
}
