package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/climadash/internal/domain/chartspec"
	"github.com/okian/climadash/internal/domain/insight"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/pkg/logger"
	"github.com/okian/climadash/pkg/metrics"
)

// Status is a point-in-time view of a controller.
type Status struct {
	Page     model.Page        `json:"page"`
	State    State             `json:"state"`
	Controls model.FilterState `json:"controls"`
	Applied  model.FilterState `json:"applied"`
	Playing  bool              `json:"playing"`
	Revision uint64            `json:"revision"`
}

// Controller owns the filter state of one page. HandleBatch calls are
// serialized, so a page never has more than one computation in flight.
type Controller struct {
	page      model.Page
	pipeline  Pipeline
	catalog   Catalog
	publisher Publisher
	logger    logger.Logger
	now       func() time.Time

	initial    model.FilterState
	hasInitial bool

	run sync.Mutex // held for a whole batch

	mu       sync.RWMutex
	state    State
	controls model.FilterState
	applied  model.FilterState
	playing  bool
	revision uint64
}

// New creates the controller of page.
func New(page model.Page, pipeline Pipeline, catalog Catalog, publisher Publisher, opts ...Option) (*Controller, error) {
	if !page.Valid() {
		return nil, ErrUnknownPage
	}
	if pipeline == nil || catalog == nil || publisher == nil {
		return nil, ErrMissingDependency
	}
	c := &Controller{
		page:      page,
		pipeline:  pipeline,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger.Get().Named("controller"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.String("page", page.String()))

	lo, hi := catalog.Bounds(page)
	if !c.hasInitial {
		c.initial = model.NewFilter(page.DefaultMode(), lo, hi)
		if page.Animated() {
			c.initial = c.initial.WithYears(hi, hi)
		}
	}
	c.initial = c.initial.Clamp(lo, hi)
	c.controls = c.initial
	c.applied = c.initial
	metrics.UpdateControllerState(page.String(), metrics.StateIdle)
	return c, nil
}

// Page returns the page the controller serves.
func (c *Controller) Page() model.Page { return c.page }

// Playing reports whether the animation is running.
func (c *Controller) Playing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playing
}

// Snapshot returns the current status.
func (c *Controller) Snapshot() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Page:     c.page,
		State:    c.state,
		Controls: c.controls,
		Applied:  c.applied,
		Playing:  c.playing,
		Revision: c.revision,
	}
}

// Handle is HandleBatch for a single event.
func (c *Controller) Handle(ctx context.Context, e model.Event) (Publication, bool) {
	return c.HandleBatch(ctx, []model.Event{e})
}

// HandleBatch folds events, in order, into a new filter state and computes it
// at most once. It reports false when nothing was published, e.g. for a tick
// while stopped or a control change on a page that waits for update. A
// controller in the error state recomputes on the next valid change.
func (c *Controller) HandleBatch(ctx context.Context, events []model.Event) (Publication, bool) {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.RLock()
	r := reduction{controls: c.controls, playing: c.playing}
	recovering := c.state == StateError
	c.mu.RUnlock()

	lo, hi := c.catalog.Bounds(c.page)
	for _, e := range events {
		c.apply(&r, e, lo, hi)
	}
	if len(events) > 1 {
		metrics.RecordEventsCoalesced(c.page.String(), len(events)-1)
	}

	next := r.controls.Clamp(lo, hi)
	c.mu.Lock()
	c.controls = next
	c.playing = r.playing
	c.mu.Unlock()

	if r.err != nil {
		return c.fail(ctx, next, r.err, 0), true
	}
	if !r.compute && !(recovering && r.changed) {
		return Publication{}, false
	}
	if err := next.ValidateFor(c.page); err != nil {
		return c.fail(ctx, next, err, 0), true
	}
	return c.compute(ctx, next), true
}

// reduction accumulates a batch.
type reduction struct {
	controls model.FilterState
	playing  bool
	compute  bool // a computation was requested
	changed  bool // some event altered the controls or playback
	err      error
}

func (c *Controller) apply(r *reduction, e model.Event, minYear, maxYear int) {
	if e.Page != c.page {
		r.err = fmt.Errorf("%w: %s", ErrPageMismatch, e.Page)
		return
	}
	if err := e.Validate(); err != nil {
		r.err = fmt.Errorf("%w: %w", model.ErrInvalidFilter, err)
		return
	}
	changed := true
	switch e.Kind {
	case model.EventSetYears:
		r.controls = r.controls.WithYears(e.YearStart, e.YearEnd)
	case model.EventSetYear:
		r.controls = r.controls.WithYears(e.Year, e.Year)
	case model.EventSetEntities:
		r.controls = r.controls.WithEntities(e.Entities)
	case model.EventSelectGroup:
		members, err := c.catalog.ResolveGroup(e.Group)
		if err != nil {
			r.err = err
			return
		}
		r.controls = r.controls.WithEntities(members)
	case model.EventSetMode:
		r.controls = c.switchMode(r.controls, e.Mode, minYear, maxYear)
	case model.EventUpdate:
		r.compute = true
	case model.EventReset:
		r.controls = c.initial
		r.playing = false
		r.compute = true
	case model.EventPlay:
		r.playing = r.controls.Mode.SingleYear()
	case model.EventStop:
		r.playing = false
	case model.EventTick:
		changed = c.tick(r, maxYear)
	}
	if changed {
		r.changed = true
		if c.page.Live() {
			r.compute = true
		}
	}
}

// tick advances the single-year selection by one year. At the last year the
// animation stops on its own.
func (c *Controller) tick(r *reduction, maxYear int) bool {
	if !r.playing {
		return false
	}
	if !r.controls.Mode.SingleYear() {
		r.playing = false
		return true
	}
	year := r.controls.YearEnd
	if year >= maxYear {
		r.playing = false
		r.controls = r.controls.WithYears(maxYear, maxYear)
		return true
	}
	r.controls = r.controls.WithYears(year+1, year+1)
	return true
}

// switchMode changes the mode of f. On the animated page the year selection
// follows the mode: a trend over a single year widens to the full bounds,
// and a single-year mode over a range keeps its last year.
func (c *Controller) switchMode(f model.FilterState, mode model.Mode, minYear, maxYear int) model.FilterState {
	f = f.WithMode(mode)
	if !c.page.Animated() {
		return f
	}
	switch {
	case !mode.SingleYear() && f.Single():
		return f.WithYears(minYear, maxYear)
	case mode.SingleYear() && !f.Single():
		return f.WithYears(f.YearEnd, f.YearEnd)
	default:
		return f
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	metrics.UpdateControllerState(c.page.String(), int(s))
}

func (c *Controller) compute(ctx context.Context, f model.FilterState) Publication {
	c.setState(StateComputing)
	start := c.now()
	res, err := c.pipeline.Run(ctx, f)
	elapsed := c.now().Sub(start)
	if err != nil {
		return c.fail(ctx, f, err, elapsed)
	}

	c.mu.Lock()
	c.state = StateIdle
	c.applied = f
	c.revision++
	p := Publication{
		ID:             uuid.New(),
		Page:           c.page,
		Revision:       c.revision,
		State:          StateIdle,
		Filter:         f,
		Controls:       c.controls,
		Insight:        res.Insight,
		Chart:          res.Chart,
		DefaultApplied: res.Derived.DefaultApplied,
		Missing:        res.Derived.Missing,
		Playing:        c.playing,
		ComputedAt:     c.now(),
		Duration:       elapsed,
	}
	c.mu.Unlock()

	metrics.UpdateControllerState(c.page.String(), metrics.StateIdle)
	metrics.RecordComputation(c.page.String(), "ok", float64(elapsed.Microseconds())/1000)
	c.logger.Debug(ctx, "computed",
		logger.String("filter", f.Key()),
		logger.Duration("took", elapsed),
		logger.Int("series", len(res.Chart.Series)))
	c.publish(ctx, p)
	return p
}

// fail moves to the error state and publishes a fallback in place of the
// chart and insight.
func (c *Controller) fail(ctx context.Context, f model.FilterState, err error, elapsed time.Duration) Publication {
	kind := model.KindOf(err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = model.KindInternal
	}
	title := f.Mode.Title()
	if f.Mode.Valid() {
		title = f.Title()
	}

	c.mu.Lock()
	c.state = StateError
	c.revision++
	p := Publication{
		ID:         uuid.New(),
		Page:       c.page,
		Revision:   c.revision,
		State:      StateError,
		Filter:     f,
		Controls:   c.controls,
		Insight:    insight.Fallback(title, err),
		Chart:      chartspec.Fallback(title, err.Error()),
		Error:      &Failure{Kind: kind, Message: err.Error()},
		Playing:    c.playing,
		ComputedAt: c.now(),
		Duration:   elapsed,
	}
	c.mu.Unlock()

	metrics.UpdateControllerState(c.page.String(), metrics.StateError)
	metrics.RecordComputation(c.page.String(), kind, float64(elapsed.Microseconds())/1000)
	metrics.RecordErrorByComponent("controller", kind)
	c.logger.Warn(ctx, "computation failed",
		logger.String("filter", f.Key()),
		logger.String("kind", kind),
		logger.Error(err))
	c.publish(ctx, p)
	return p
}

func (c *Controller) publish(ctx context.Context, p Publication) {
	if err := c.publisher.Publish(ctx, p); err != nil {
		metrics.RecordErrorByComponent("publisher", "publish_failed")
		c.logger.Error(ctx, "publish failed", logger.Uint64("revision", p.Revision), logger.Error(err))
		return
	}
	metrics.RecordPublication(c.page.String())
}
