package cartsync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/pkg/config"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
	"github.com/meditrack-ph/meditrack-backend/pkg/metrics"
)

const (
	kindUpsertItem = "upsert_item"
	kindDeleteItem = "delete_item"
	kindTouchCart  = "touch_cart"
)

type event struct {
	kind      string
	cartID    uuid.UUID
	productID string
	item      cart.LineItem
	stamp     time.Time
}

// Adapter implements cart.Syncer over a bounded in-process queue. Enqueue is
// non-blocking: when the queue is full the event is dropped and counted, and
// the local cart stays authoritative. Each push retries with exponential
// backoff before it is counted as failed.
type Adapter struct {
	store   *Store
	cfg     config.SyncConfig
	logg    *logger.Logger
	met     *metrics.SyncMetrics
	events  chan event
	wg      sync.WaitGroup
	stopped chan struct{}

	mu       sync.Mutex
	lastErrs error
}

// AdapterParams carries the adapter's dependencies.
type AdapterParams struct {
	Store   *Store
	Config  config.SyncConfig
	Logger  *logger.Logger
	Metrics *metrics.SyncMetrics
}

// NewAdapter builds a stopped adapter; call Start to launch the worker.
func NewAdapter(params AdapterParams) (*Adapter, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	size := params.Config.QueueSize
	if size <= 0 {
		size = 256
	}
	return &Adapter{
		store:   params.Store,
		cfg:     params.Config,
		logg:    params.Logger,
		met:     params.Metrics,
		events:  make(chan event, size),
		stopped: make(chan struct{}),
	}, nil
}

// Start launches the drain worker. It returns immediately.
func (a *Adapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.drain(ctx)
	}()
}

// Stop closes the queue and waits for the worker to finish the backlog.
func (a *Adapter) Stop() {
	close(a.stopped)
	a.wg.Wait()
}

// UpsertItem queues a line item write.
func (a *Adapter) UpsertItem(cartID uuid.UUID, item cart.LineItem, stamp time.Time) {
	a.enqueue(event{kind: kindUpsertItem, cartID: cartID, item: item, stamp: stamp})
}

// DeleteItem queues a line item removal.
func (a *Adapter) DeleteItem(cartID uuid.UUID, productID string, stamp time.Time) {
	a.enqueue(event{kind: kindDeleteItem, cartID: cartID, productID: productID, stamp: stamp})
}

// TouchCart queues a header stamp refresh.
func (a *Adapter) TouchCart(cartID uuid.UUID, stamp time.Time) {
	a.enqueue(event{kind: kindTouchCart, cartID: cartID, stamp: stamp})
}

// Flush pushes everything currently queued and returns the combined errors
// of the pushes that exhausted their retries. Used by tests and shutdown.
func (a *Adapter) Flush(ctx context.Context) error {
	for {
		select {
		case ev := <-a.events:
			a.met.SetQueueDepth(len(a.events))
			a.push(ctx, ev)
		default:
			a.mu.Lock()
			errs := a.lastErrs
			a.lastErrs = nil
			a.mu.Unlock()
			return errs
		}
	}
}

func (a *Adapter) enqueue(ev event) {
	select {
	case a.events <- ev:
		a.met.SetQueueDepth(len(a.events))
	default:
		a.met.IncDropped()
		ctx := a.logg.WithCartID(context.Background(), ev.cartID.String())
		a.logg.Warn(ctx, "sync queue full, event dropped: "+ev.kind)
	}
}

func (a *Adapter) drain(ctx context.Context) {
	for {
		select {
		case ev := <-a.events:
			a.met.SetQueueDepth(len(a.events))
			a.push(ctx, ev)
		case <-a.stopped:
			// Finish the backlog before exiting.
			for {
				select {
				case ev := <-a.events:
					a.push(ctx, ev)
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *Adapter) push(ctx context.Context, ev event) {
	start := time.Now()

	backoff := retry.NewExponential(a.cfg.BaseBackoff)
	backoff = retry.WithCappedDuration(a.cfg.MaxBackoff, backoff)
	backoff = retry.WithMaxRetries(uint64(a.cfg.MaxAttempts), backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		pushCtx := ctx
		if a.cfg.PushTimeout > 0 {
			var cancel context.CancelFunc
			pushCtx, cancel = context.WithTimeout(ctx, a.cfg.PushTimeout)
			defer cancel()
		}
		if err := a.apply(pushCtx, ev); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	a.met.ObservePush(ev.kind, time.Since(start))
	if err != nil {
		a.met.IncFailure(ev.kind)
		a.mu.Lock()
		a.lastErrs = multierr.Append(a.lastErrs, err)
		a.mu.Unlock()

		logCtx := a.logg.WithCartID(ctx, ev.cartID.String())
		a.logg.Error(logCtx, "cart sync push failed: "+ev.kind, err)
	}
}

func (a *Adapter) apply(ctx context.Context, ev event) error {
	switch ev.kind {
	case kindUpsertItem:
		return a.store.UpsertItem(ctx, ev.cartID, ev.item, ev.stamp)
	case kindDeleteItem:
		return a.store.DeleteItem(ctx, ev.cartID, ev.productID)
	case kindTouchCart:
		return a.store.TouchCart(ctx, ev.cartID, ev.stamp)
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, "unknown sync event kind: "+ev.kind)
	}
}
