// Package worker runs one event loop per dashboard page. Each loop drains
// its page mailbox in bursts and hands every burst to the page controller,
// so a page never has two computations in flight.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/climadash/internal/domain/interaction"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/pkg/logger"
)

const (
	defaultMaxBatch     = 64
	poolShutdownTimeout = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.Event

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
	TryDequeue() (Event, bool)
}

// Handler consumes a burst of events for one page.
type Handler interface {
	HandleBatch(ctx context.Context, events []model.Event) (interaction.Publication, bool)
}

// Worker processes events until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the burst in hand.
	Shutdown(ctx context.Context) error
}

// PageWorker implements Worker for a single page.
type PageWorker struct {
	queue    Queue
	handler  Handler
	name     string
	maxBatch int

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewPageWorker creates a worker that feeds handler from queue.
func NewPageWorker(queue Queue, handler Handler, opts ...Option) *PageWorker {
	w := &PageWorker{
		queue:    queue,
		handler:  handler,
		name:     "worker",
		maxBatch: defaultMaxBatch,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Done is closed when Run returns.
func (w *PageWorker) Done() <-chan struct{} { return w.done }

// Run starts the worker loop.
func (w *PageWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, w.collect(e))
		}
	}
}

// collect gathers the events that queued up behind first.
func (w *PageWorker) collect(first Event) []Event { //nolint:gocritic // hugeParam: Event is passed by value through the queue
	batch := []Event{first}
	for len(batch) < w.maxBatch {
		e, ok := w.queue.TryDequeue()
		if !ok {
			break
		}
		batch = append(batch, e)
	}
	return batch
}

func (w *PageWorker) process(ctx context.Context, batch []Event) {
	p, published := w.handler.HandleBatch(ctx, batch)
	if !published {
		w.logger.Debug(ctx, "batch produced no publication", logger.Int("events", len(batch)))
		return
	}
	w.logger.Debug(ctx, "batch published",
		logger.Int("events", len(batch)),
		logger.Uint64("revision", p.Revision),
		logger.String("state", p.State.String()))
}

// Shutdown gracefully stops the worker.
func (w *PageWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Lane pairs a page mailbox with the controller that drains it.
type Lane struct {
	Page    model.Page
	Queue   Queue
	Handler Handler
}

// Pool runs one worker per lane.
type Pool struct {
	lanes   []Lane
	workers []*PageWorker
	logger  logger.Logger
}

// NewPool creates a pool with one worker per lane.
func NewPool(lanes []Lane, opts ...Option) *Pool {
	p := &Pool{
		lanes:   lanes,
		workers: make([]*PageWorker, len(lanes)),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i, l := range lanes {
		wopts := append([]Option{WithName(l.Page.String())}, opts...)
		p.workers[i] = NewPageWorker(l.Queue, l.Handler, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "page workers started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes every mailbox and waits for the workers to drain them.
func (p *Pool) Shutdown(ctx context.Context) error {
	for _, l := range p.lanes {
		if closer, ok := l.Queue.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				p.logger.Error(ctx, "error closing queue", logger.String("page", l.Page.String()), logger.Error(err))
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.String("page", p.lanes[i].Page.String()))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool: %w", shutdownCtx.Err())
	}
	return nil
}
