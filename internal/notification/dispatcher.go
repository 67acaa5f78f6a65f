package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/course-booking/internal/metrics"
	"github.com/iliyamo/course-booking/internal/model"
)

// ErrQueueFull is returned by Enqueue when the dispatcher buffer is full.
var ErrQueueFull = errors.New("receipt queue full")

// ErrDispatcherClosed is returned by Enqueue after Stop.
var ErrDispatcherClosed = errors.New("receipt dispatcher stopped")

// RetryPolicy bounds delivery attempts of one receipt.
type RetryPolicy struct {
	Retries        uint64        // attempts after the first
	AttemptTimeout time.Duration // per attempt deadline
	InitialBackoff time.Duration
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialBackoff > 0 {
		eb.InitialInterval = p.InitialBackoff
	}
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, p.Retries), ctx)
}

// Deliver sends task through sender, retrying with exponential backoff
// under policy.  The final error is returned once retries run out.
func Deliver(ctx context.Context, sender Sender, task model.ReceiptTask, policy RetryPolicy, logger echo.Logger) error {
	attempt := 0
	op := func() error {
		attempt++
		actx := ctx
		if policy.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			actx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
			defer cancel()
		}
		return sender.Send(actx, task)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warnf("receipt: attempt %d for %s failed: %v; retrying in %s", attempt, task.StudentEmail, err, wait)
	}
	if err := backoff.RetryNotify(op, policy.backOff(ctx), notify); err != nil {
		metrics.Receipts.WithLabelValues("failed").Inc()
		logger.Errorj(log.JSON{"event": "receipt_failed", "to": task.StudentEmail,
			"booking_id": task.BookingID, "attempts": attempt, "error": err.Error()})
		return err
	}
	metrics.Receipts.WithLabelValues("sent").Inc()
	return nil
}

// Dispatcher delivers receipts from an in-memory buffer with a fixed
// pool of workers.  Tasks still buffered when Stop is called are
// delivered before Stop returns, unless Stop's context ends first.
type Dispatcher struct {
	sender Sender
	policy RetryPolicy
	log    echo.Logger

	tasks   chan model.ReceiptTask
	workers int
	wg      sync.WaitGroup
	cancel  context.CancelFunc // aborts deliveries once the drain deadline passes

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, workers, buffer int, policy RetryPolicy, logger echo.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Dispatcher{
		sender:  sender,
		policy:  policy,
		log:     logger,
		tasks:   make(chan model.ReceiptTask, buffer),
		workers: workers,
	}
}

// Start launches the workers.  Deliveries keep ctx's values but not its
// cancellation: a shutdown signal stops intake through Stop, and the
// buffer is still drained afterwards.
func (d *Dispatcher) Start(ctx context.Context) {
	base, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for task := range d.tasks {
				if base.Err() != nil {
					metrics.Receipts.WithLabelValues("dropped").Inc()
					continue
				}
				_ = Deliver(base, d.sender, task, d.policy, d.log)
			}
		}()
	}
}

// Enqueue buffers task without blocking.
func (d *Dispatcher) Enqueue(_ context.Context, task model.ReceiptTask) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the buffer and waits for the workers to drain it.  If ctx
// ends first, in-flight deliveries are cancelled, whatever is still
// buffered is dropped and ctx.Err() is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		d.log.Warnf("receipt: drain deadline reached with %d receipts buffered", len(d.tasks))
		d.abort()
		<-done
	}
	d.abort()
	return err
}

func (d *Dispatcher) abort() {
	if d.cancel != nil {
		d.cancel()
	}
}
