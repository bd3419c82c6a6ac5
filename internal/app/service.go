// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/climadash/internal/adapters/dataset"
	eventqueue "github.com/okian/climadash/internal/adapters/mq/queue"
	workerpool "github.com/okian/climadash/internal/adapters/mq/worker"
	"github.com/okian/climadash/internal/adapters/render"
	repository "github.com/okian/climadash/internal/adapters/repository"
	"github.com/okian/climadash/internal/domain/dedupe"
	"github.com/okian/climadash/internal/domain/interaction"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/types"
	"github.com/okian/climadash/internal/domain/view"
	"github.com/okian/climadash/pkg/logger"
	"github.com/okian/climadash/pkg/metrics"
)

// ErrNotStarted is returned by calls that need a running service.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the climate dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	builder     *view.Builder
	store       *repository.MemoryStore
	deduper     dedupe.Deduper
	queues      map[model.Page]*eventqueue.InMemoryQueue
	controllers map[model.Page]*interaction.Controller
	pool        *workerpool.Pool
	renderer    *render.Renderer

	// Configuration
	paths             dataset.Paths
	tables            *model.Sources
	builderOpts       []view.Option
	queueSize         int
	dedupeSize        int
	historySize       int
	animationInterval time.Duration
	chartWidth        int
	chartHeight       int
	corrStart         int
	corrEnd           int

	// State
	started  bool
	stopCh   chan struct{}
	animDone chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPaths sets the source files loaded by Start.
func WithPaths(paths dataset.Paths) Option {
	return func(s *Service) {
		s.paths = paths
	}
}

// WithTables uses already loaded tables instead of reading files.
func WithTables(src model.Sources) Option {
	return func(s *Service) {
		s.tables = &src
	}
}

// WithBuilderOptions passes options to the derived-view builder.
func WithBuilderOptions(opts ...view.Option) Option {
	return func(s *Service) {
		s.builderOpts = append(s.builderOpts, opts...)
	}
}

// WithQueueSize sets the capacity of each page mailbox.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistorySize sets how many publications are kept per page.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithAnimationInterval sets the time between animation ticks.
func WithAnimationInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.animationInterval = d
		}
	}
}

// WithChartSize sets the PNG chart dimensions.
func WithChartSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.chartWidth, s.chartHeight = width, height
		}
	}
}

// WithCorrelationWindow sets the correlation years and the initial emissions
// range.
func WithCorrelationWindow(start, end int) Option {
	return func(s *Service) {
		if start <= end {
			s.corrStart, s.corrEnd = start, end
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:         64,
		dedupeSize:        1024,
		historySize:       32,
		animationInterval: time.Second,
		chartWidth:        960,
		chartHeight:       540,
		corrStart:         1990,
		corrEnd:           2018,
		stopCh:            make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the sources, builds one controller per page and computes every
// page once with its initial filter.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting dashboard service...")

	src, err := s.sources(ctx)
	if err != nil {
		return err
	}
	opts := append([]view.Option{view.WithCorrelationWindow(s.corrStart, s.corrEnd)}, s.builderOpts...)
	builder, err := view.NewBuilder(src, opts...)
	if err != nil {
		return fmt.Errorf("build views: %w", err)
	}

	s.builder = builder
	s.store = repository.NewMemoryStore(ctx, repository.WithHistorySize(s.historySize))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.renderer = render.New(render.WithSize(s.chartWidth, s.chartHeight))
	s.queues = make(map[model.Page]*eventqueue.InMemoryQueue)
	s.controllers = make(map[model.Page]*interaction.Controller)

	pipeline := interaction.NewPipeline(builder)
	lanes := make([]workerpool.Lane, 0, len(model.Pages()))
	for _, page := range model.Pages() {
		var copts []interaction.Option
		if page == model.PageEmissions {
			initial := model.NewFilter(page.DefaultMode(), s.corrStart, s.corrEnd)
			copts = append(copts, interaction.WithInitialFilter(initial))
		}
		c, err := interaction.New(page, pipeline, builder, s.store, copts...)
		if err != nil {
			s.store.Close() //nolint:errcheck // Close never fails
			return fmt.Errorf("controller %s: %w", page, err)
		}
		q := eventqueue.NewInMemoryQueue(
			eventqueue.WithCapacity(s.queueSize),
			eventqueue.WithName(page.String()),
		)
		s.controllers[page] = c
		s.queues[page] = q
		lanes = append(lanes, workerpool.Lane{Page: page, Queue: q, Handler: c})
	}

	s.pool = workerpool.NewPool(lanes)
	s.pool.Start(ctx)

	// initial render of every page
	for _, page := range model.Pages() {
		s.queues[page].Enqueue(ctx, model.Event{Page: page, Kind: model.EventUpdate, ReceivedAt: time.Now()})
	}

	s.stopCh = make(chan struct{})
	s.animDone = make(chan struct{})
	go s.animate(ctx)

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("pages", len(lanes)),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("animationInterval", s.animationInterval),
	)

	return nil
}

func (s *Service) sources(ctx context.Context) (model.Sources, error) {
	if s.tables != nil {
		if err := s.tables.Validate(); err != nil {
			return model.Sources{}, fmt.Errorf("load sources: %w", err)
		}
		return *s.tables, nil
	}
	src, err := dataset.LoadAll(ctx, s.paths)
	if err != nil {
		return model.Sources{}, fmt.Errorf("load sources: %w", err)
	}
	return src, nil
}

// animate enqueues a tick for every playing page on each interval.
func (s *Service) animate(ctx context.Context) {
	defer close(s.animDone)

	ticker := time.NewTicker(s.animationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			for page, c := range s.controllers {
				if !page.Animated() || !c.Playing() {
					continue
				}
				metrics.RecordAnimationTick()
				if !s.queues[page].Enqueue(ctx, model.Event{Page: page, Kind: model.EventTick, ReceivedAt: now}) {
					metrics.RecordEventRejected(page.String(), "queue_full")
				}
			}
		}
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping dashboard service...")

	// Signal the animator to stop before the mailboxes close
	close(s.stopCh)
	<-s.animDone

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "dashboard service stopped")
}

// SeenAndRecord reports whether the event id was already seen on page and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, page model.Page, id string) bool {
	d := s.runningDeduper()
	if d == nil {
		return false
	}
	seen := d.SeenAndRecord(ctx, page.String()+"/"+id)
	if seen {
		metrics.RecordEventDuplicate(page.String())
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, page model.Page, id string) {
	if d := s.runningDeduper(); d != nil {
		d.Unrecord(ctx, page.String()+"/"+id)
	}
}

// runningDeduper returns the deduper, or nil before Start.
func (s *Service) runningDeduper() dedupe.Deduper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil
	}
	return s.deduper
}

// Enqueue submits an event to its page mailbox. It returns false when the
// mailbox is full or the service is not running.
func (s *Service) Enqueue(ctx context.Context, e model.Event) bool { //nolint:gocritic // hugeParam: events are values
	s.mu.RLock()
	q, ok := s.queues[e.Page]
	started := s.started
	s.mu.RUnlock()

	if !started || !ok {
		metrics.RecordEventRejected(e.Page.String(), "not_running")
		return false
	}
	if !q.Enqueue(ctx, e) {
		metrics.RecordEventRejected(e.Page.String(), "queue_full")
		s.logger.Warn(ctx, "page mailbox full",
			logger.String("page", e.Page.String()),
			logger.String("kind", string(e.Kind)),
		)
		return false
	}
	metrics.RecordEventReceived(e.Page.String(), string(e.Kind))
	s.logger.Debug(ctx, "enqueued event",
		logger.String("page", e.Page.String()),
		logger.String("kind", string(e.Kind)),
		logger.String("eventID", e.ID),
	)
	return true
}

// Pages describes every page and its controls.
func (s *Service) Pages(_ context.Context) ([]types.PageInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	out := make([]types.PageInfo, 0, len(s.controllers))
	for _, page := range model.Pages() {
		lo, hi := s.builder.Bounds(page)
		st := s.controllers[page].Snapshot()
		info := types.PageInfo{
			Name:     page.String(),
			Modes:    types.Modes(page),
			YearMin:  lo,
			YearMax:  hi,
			Entities: s.builder.Entities(page),
			Live:     page.Live(),
			Animated: page.Animated(),
			State:    st.State.String(),
			Playing:  st.Playing,
			Revision: st.Revision,
		}
		switch page {
		case model.PageEmissions:
			info.Groups = s.builder.Groups()
		case model.PageTemperature:
			info.Regions = s.builder.RegionalCountries()
		}
		out = append(out, info)
	}
	return out, nil
}

// Status returns the controller status of page.
func (s *Service) Status(_ context.Context, page model.Page) (interaction.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.controllers[page]
	if !ok {
		return interaction.Status{}, ErrNotStarted
	}
	return c.Snapshot(), nil
}

// Latest returns the newest publication of page.
func (s *Service) Latest(ctx context.Context, page model.Page) (interaction.Publication, error) {
	store, err := s.currentStore()
	if err != nil {
		return interaction.Publication{}, err
	}
	return store.Latest(ctx, page)
}

// History returns up to limit publications of page, newest first.
func (s *Service) History(ctx context.Context, page model.Page, limit int) ([]interaction.Publication, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}
	return store.History(ctx, page, limit)
}

// RenderChart draws the latest chart of page as a PNG.
func (s *Service) RenderChart(ctx context.Context, page model.Page) ([]byte, error) {
	p, err := s.Latest(ctx, page)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.renderer.PNG(&buf, p.Chart); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) currentStore() (*repository.MemoryStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":           s.started,
		"queueSize":         s.queueSize,
		"dedupeSize":        s.dedupeSize,
		"historySize":       s.historySize,
		"animationInterval": s.animationInterval.String(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(goroutines)
	stats["goroutines"] = goroutines
	stats["memoryAlloc"] = mem.Alloc

	if s.started {
		pages := make(map[string]any, len(s.controllers))
		for page, c := range s.controllers {
			st := c.Snapshot()
			depth := s.queues[page].Len(ctx)
			metrics.UpdateQueueDepth(page.String(), depth)
			pages[page.String()] = map[string]any{
				"state":      st.State.String(),
				"revision":   st.Revision,
				"playing":    st.Playing,
				"queueDepth": depth,
			}
		}
		stats["pages"] = pages
		stats["publications"] = s.store.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
