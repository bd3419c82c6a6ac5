package interaction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/okian/climadash/internal/domain/chartspec"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/view"
	"github.com/okian/climadash/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

type fakeCatalog struct{}

func (fakeCatalog) Bounds(model.Page) (int, int) { return 1990, 2018 }

func (fakeCatalog) ResolveGroup(name string) ([]string, error) {
	if name == "G7" {
		return []string{"Japan", "Canada"}, nil
	}
	return nil, fmt.Errorf("%w: unknown group %q", model.ErrInvalidFilter, name)
}

type fakePipeline struct {
	mu   sync.Mutex
	runs []model.FilterState
	err  error
}

func (p *fakePipeline) Run(_ context.Context, f model.FilterState) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = append(p.runs, f)
	if p.err != nil {
		return Result{}, p.err
	}
	return Result{Chart: chartspec.Spec{Family: chartspec.FamilyLine, Title: f.Title()}}, nil
}

type collector struct {
	mu  sync.Mutex
	out []Publication
	err error
}

func (c *collector) Publish(_ context.Context, p Publication) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, p)
	return c.err
}

func ev(page model.Page, kind model.EventKind) model.Event {
	return model.Event{Page: page, Kind: kind}
}

func years(page model.Page, start, end int) model.Event {
	e := ev(page, model.EventSetYears)
	e.YearStart, e.YearEnd = start, end
	return e
}

func TestNew(t *testing.T) {
	Convey("Given controller construction", t, func() {
		p, pub := &fakePipeline{}, &collector{}

		Convey("An unknown page is rejected", func() {
			_, err := New(model.PageUnknown, p, fakeCatalog{}, pub)
			So(errors.Is(err, ErrUnknownPage), ShouldBeTrue)
		})

		Convey("Missing collaborators are rejected", func() {
			_, err := New(model.PageEmissions, nil, fakeCatalog{}, pub)
			So(errors.Is(err, ErrMissingDependency), ShouldBeTrue)
		})

		Convey("The initial state is idle over the full bounds", func() {
			c, err := New(model.PageEmissions, p, fakeCatalog{}, pub)
			So(err, ShouldBeNil)
			s := c.Snapshot()
			So(s.State, ShouldEqual, StateIdle)
			So(s.Controls.YearStart, ShouldEqual, 1990)
			So(s.Controls.YearEnd, ShouldEqual, 2018)
			So(s.Controls.Mode, ShouldEqual, model.ModeEmissionsCountry)
		})

		Convey("The animated page starts on its last year", func() {
			c, err := New(model.PageTemperature, p, fakeCatalog{}, pub)
			So(err, ShouldBeNil)
			So(c.Snapshot().Controls.YearStart, ShouldEqual, 2018)
			So(c.Snapshot().Controls.Single(), ShouldBeTrue)
		})

		Convey("An initial filter is clamped", func() {
			c, err := New(model.PageEmissions, p, fakeCatalog{}, pub,
				WithInitialFilter(model.NewFilter(model.ModeEmissionsTrend, 1900, 2100)))
			So(err, ShouldBeNil)
			So(c.Snapshot().Controls.YearStart, ShouldEqual, 1990)
			So(c.Snapshot().Controls.YearEnd, ShouldEqual, 2018)
		})
	})
}

func TestDeferredPage(t *testing.T) {
	Convey("Given the emissions page which waits for update", t, func() {
		p, pub := &fakePipeline{}, &collector{}
		c, err := New(model.PageEmissions, p, fakeCatalog{}, pub)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("A control change alone does not compute", func() {
			_, ok := c.Handle(ctx, years(model.PageEmissions, 2000, 2010))
			So(ok, ShouldBeFalse)
			So(p.runs, ShouldBeEmpty)
			So(c.Snapshot().Controls.YearStart, ShouldEqual, 2000)
			So(c.Snapshot().Applied.YearStart, ShouldEqual, 1990)

			Convey("and update computes the pending controls", func() {
				pubn, ok := c.Handle(ctx, ev(model.PageEmissions, model.EventUpdate))
				So(ok, ShouldBeTrue)
				So(pubn.State, ShouldEqual, StateIdle)
				So(pubn.Filter.YearStart, ShouldEqual, 2000)
				So(pubn.Revision, ShouldEqual, 1)
				So(p.runs, ShouldHaveLength, 1)
				So(pub.out, ShouldHaveLength, 1)
				So(c.Snapshot().Applied.YearEnd, ShouldEqual, 2010)
			})
		})

		Convey("Years outside the bounds are clamped", func() {
			pubn, ok := c.HandleBatch(ctx, []model.Event{
				years(model.PageEmissions, 1800, 2500),
				ev(model.PageEmissions, model.EventUpdate),
			})
			So(ok, ShouldBeTrue)
			So(pubn.Filter.YearStart, ShouldEqual, 1990)
			So(pubn.Filter.YearEnd, ShouldEqual, 2018)
		})

		Convey("A group preset selects its members", func() {
			e := ev(model.PageEmissions, model.EventSelectGroup)
			e.Group = "G7"
			pubn, ok := c.HandleBatch(ctx, []model.Event{e, ev(model.PageEmissions, model.EventUpdate)})
			So(ok, ShouldBeTrue)
			So(pubn.Filter.Entities, ShouldResemble, []string{"Canada", "Japan"})
		})

		Convey("An unknown group publishes an invalid filter fallback", func() {
			e := ev(model.PageEmissions, model.EventSelectGroup)
			e.Group = "OPEC"
			pubn, ok := c.Handle(ctx, e)
			So(ok, ShouldBeTrue)
			So(pubn.State, ShouldEqual, StateError)
			So(pubn.Error.Kind, ShouldEqual, model.KindInvalidFilter)
			So(p.runs, ShouldBeEmpty)
		})
	})
}

func TestInvertedRange(t *testing.T) {
	Convey("Given an inverted year range", t, func() {
		p, pub := &fakePipeline{}, &collector{}
		c, err := New(model.PageEmissions, p, fakeCatalog{}, pub)
		So(err, ShouldBeNil)
		ctx := context.Background()

		pubn, ok := c.HandleBatch(ctx, []model.Event{
			years(model.PageEmissions, 2010, 2000),
			ev(model.PageEmissions, model.EventUpdate),
		})

		Convey("It is rejected before the pipeline runs", func() {
			So(ok, ShouldBeTrue)
			So(p.runs, ShouldBeEmpty)
			So(pubn.State, ShouldEqual, StateError)
			So(pubn.Failed(), ShouldBeTrue)
			So(pubn.Error.Kind, ShouldEqual, model.KindInvalidFilter)
			So(pubn.Chart.Family, ShouldEqual, chartspec.FamilyMessage)
			So(pubn.Insight.Sufficient, ShouldBeFalse)
			So(c.Snapshot().State, ShouldEqual, StateError)
			So(c.Snapshot().Applied.YearStart, ShouldEqual, 1990)
		})

		Convey("The next valid change returns to idle", func() {
			pubn, ok := c.Handle(ctx, years(model.PageEmissions, 2000, 2010))
			So(ok, ShouldBeTrue)
			So(pubn.State, ShouldEqual, StateIdle)
			So(p.runs, ShouldHaveLength, 1)
			So(c.Snapshot().State, ShouldEqual, StateIdle)
		})
	})
}

func TestPipelineFailure(t *testing.T) {
	Convey("Given a pipeline that fails", t, func() {
		p := &fakePipeline{err: fmt.Errorf("build: %w", model.ErrDataUnavailable)}
		pub := &collector{}
		c, err := New(model.PageSeaLevel, p, fakeCatalog{}, pub)
		So(err, ShouldBeNil)

		pubn, ok := c.Handle(context.Background(), ev(model.PageSeaLevel, model.EventUpdate))

		Convey("A fallback is published instead", func() {
			So(ok, ShouldBeTrue)
			So(pubn.State, ShouldEqual, StateError)
			So(pubn.Error.Kind, ShouldEqual, model.KindDataUnavailable)
			So(pubn.Chart.Family, ShouldEqual, chartspec.FamilyMessage)
			So(pub.out, ShouldHaveLength, 1)
		})
	})
}

func TestCoalescing(t *testing.T) {
	Convey("Given a burst of events on a live page", t, func() {
		p, pub := &fakePipeline{}, &collector{}
		c, err := New(model.PageSeaLevel, p, fakeCatalog{}, pub)
		So(err, ShouldBeNil)

		mode := ev(model.PageSeaLevel, model.EventSetMode)
		mode.Mode = model.ModeSeaLevelRate
		pubn, ok := c.HandleBatch(context.Background(), []model.Event{
			years(model.PageSeaLevel, 1995, 2005),
			years(model.PageSeaLevel, 2000, 2010),
			mode,
		})

		Convey("The pipeline runs once with the final state", func() {
			So(ok, ShouldBeTrue)
			So(p.runs, ShouldHaveLength, 1)
			So(p.runs[0].YearStart, ShouldEqual, 2000)
			So(p.runs[0].Mode, ShouldEqual, model.ModeSeaLevelRate)
			So(pubn.Revision, ShouldEqual, 1)
		})
	})
}

func TestAnimation(t *testing.T) {
	Convey("Given the temperature page", t, func() {
		p, pub := &fakePipeline{}, &collector{}
		c, err := New(model.PageTemperature, p, fakeCatalog{}, pub)
		So(err, ShouldBeNil)
		ctx := context.Background()
		year := ev(model.PageTemperature, model.EventSetYear)
		year.Year = 2016
		c.Handle(ctx, year)

		Convey("A tick while stopped is ignored", func() {
			_, ok := c.Handle(ctx, ev(model.PageTemperature, model.EventTick))
			So(ok, ShouldBeFalse)
			So(c.Snapshot().Controls.YearStart, ShouldEqual, 2016)
		})

		Convey("Ticks advance one year while playing", func() {
			c.Handle(ctx, ev(model.PageTemperature, model.EventPlay))
			So(c.Playing(), ShouldBeTrue)
			pubn, ok := c.Handle(ctx, ev(model.PageTemperature, model.EventTick))
			So(ok, ShouldBeTrue)
			So(pubn.Filter.YearStart, ShouldEqual, 2017)
			So(pubn.Filter.YearEnd, ShouldEqual, 2017)
			So(pubn.Playing, ShouldBeTrue)

			Convey("and stop at the last year", func() {
				c.Handle(ctx, ev(model.PageTemperature, model.EventTick))
				pubn, _ := c.Handle(ctx, ev(model.PageTemperature, model.EventTick))
				So(pubn.Filter.YearStart, ShouldEqual, 2018)
				So(pubn.Playing, ShouldBeFalse)
				So(c.Playing(), ShouldBeFalse)
			})
		})

		Convey("Reset restores the initial state and stops playback", func() {
			c.Handle(ctx, ev(model.PageTemperature, model.EventPlay))
			pubn, ok := c.Handle(ctx, ev(model.PageTemperature, model.EventReset))
			So(ok, ShouldBeTrue)
			So(pubn.Filter.YearStart, ShouldEqual, 2018)
			So(c.Playing(), ShouldBeFalse)
		})

		Convey("Animation events on other pages are rejected", func() {
			pubn, ok := c.Handle(ctx, ev(model.PageTemperature, model.EventTick))
			So(ok, ShouldBeFalse)
			So(pubn.Revision, ShouldEqual, 0)
			c2, err := New(model.PageEmissions, p, fakeCatalog{}, pub)
			So(err, ShouldBeNil)
			pubn, ok = c2.Handle(ctx, ev(model.PageEmissions, model.EventPlay))
			So(ok, ShouldBeTrue)
			So(pubn.Error.Kind, ShouldEqual, model.KindInvalidFilter)
		})
	})
}

func TestModeSwitchOnAnimatedPage(t *testing.T) {
	Convey("Given the temperature page on its last year", t, func() {
		p, pub := &fakePipeline{}, &collector{}
		c, err := New(model.PageTemperature, p, fakeCatalog{}, pub)
		So(err, ShouldBeNil)
		ctx := context.Background()
		mode := func(m model.Mode) model.Event {
			e := ev(model.PageTemperature, model.EventSetMode)
			e.Mode = m
			return e
		}

		Convey("Switching to the trend widens to the full bounds", func() {
			pubn, ok := c.Handle(ctx, mode(model.ModeTemperatureTrend))
			So(ok, ShouldBeTrue)
			So(pubn.State, ShouldEqual, StateIdle)
			So(pubn.Error, ShouldBeNil)
			So(p.runs, ShouldHaveLength, 1)
			So(p.runs[0].YearStart, ShouldEqual, 1990)
			So(p.runs[0].YearEnd, ShouldEqual, 2018)

			Convey("and play does not start an animation", func() {
				c.Handle(ctx, ev(model.PageTemperature, model.EventPlay))
				So(c.Playing(), ShouldBeFalse)
				_, ok := c.Handle(ctx, ev(model.PageTemperature, model.EventTick))
				So(ok, ShouldBeFalse)
				So(c.Snapshot().Controls.YearStart, ShouldEqual, 1990)
			})

			Convey("and switching back keeps the last year", func() {
				pubn, ok := c.Handle(ctx, mode(model.ModeTemperatureMap))
				So(ok, ShouldBeTrue)
				So(pubn.Filter.Single(), ShouldBeTrue)
				So(pubn.Filter.YearStart, ShouldEqual, 2018)
			})
		})

		Convey("A tick after switching to the trend mid-play stops playback", func() {
			c.Handle(ctx, years(model.PageTemperature, 2010, 2010))
			c.Handle(ctx, ev(model.PageTemperature, model.EventPlay))
			So(c.Playing(), ShouldBeTrue)
			pubn, ok := c.HandleBatch(ctx, []model.Event{
				mode(model.ModeTemperatureTrend),
				ev(model.PageTemperature, model.EventTick),
			})
			So(ok, ShouldBeTrue)
			So(pubn.Error, ShouldBeNil)
			So(pubn.Playing, ShouldBeFalse)
			So(pubn.Filter.YearStart, ShouldEqual, 1990)
			So(pubn.Filter.YearEnd, ShouldEqual, 2018)
		})

		Convey("A regional selection stays on one year", func() {
			pubn, ok := c.Handle(ctx, mode(model.ModeTemperatureRegional))
			So(ok, ShouldBeTrue)
			So(pubn.Filter.Single(), ShouldBeTrue)
			So(pubn.Filter.Mode, ShouldEqual, model.ModeTemperatureRegional)
		})
	})
}

func TestPublisherFailure(t *testing.T) {
	Convey("Given a publisher that fails", t, func() {
		p := &fakePipeline{}
		pub := &collector{err: errors.New("closed")}
		c, err := New(model.PageSeaLevel, p, fakeCatalog{}, pub)
		So(err, ShouldBeNil)

		Convey("The controller still advances", func() {
			pubn, ok := c.Handle(context.Background(), ev(model.PageSeaLevel, model.EventUpdate))
			So(ok, ShouldBeTrue)
			So(pubn.State, ShouldEqual, StateIdle)
			So(c.Snapshot().Revision, ShouldEqual, 1)
		})
	})
}

func TestViewPipeline(t *testing.T) {
	Convey("Given the real pipeline over two flat emitters", t, func() {
		var recs []model.Record
		var sea, temp []model.Record
		for y := 1990; y <= 2018; y++ {
			recs = append(recs,
				model.Record{Entity: "CountryA", Year: y, Value: 10},
				model.Record{Entity: "CountryB", Year: y, Value: 20})
			sea = append(sea, model.Record{Entity: model.GlobalEntity, Year: y, Month: 1, Value: float64(y - 1990)})
			temp = append(temp, model.Record{Entity: "CountryA", Year: y, Month: 1, Value: 10})
		}
		mk := func(m model.Metric, r []model.Record) *model.Table {
			tb, err := model.NewTable(m.String(), m, r)
			So(err, ShouldBeNil)
			return tb
		}
		b, err := view.NewBuilder(model.Sources{
			Temperature: mk(model.MetricTemperature, temp),
			SeaLevel:    mk(model.MetricSeaLevel, sea),
			Emissions:   mk(model.MetricEmissions, recs),
		})
		So(err, ShouldBeNil)

		pub := &collector{}
		c, err := New(model.PageEmissions, NewPipeline(b), b, pub)
		So(err, ShouldBeNil)

		e := ev(model.PageEmissions, model.EventSetEntities)
		e.Entities = []string{"CountryA", "CountryB"}
		pubn, ok := c.HandleBatch(context.Background(), []model.Event{e, ev(model.PageEmissions, model.EventUpdate)})

		Convey("Chart and insight come from the same view", func() {
			So(ok, ShouldBeTrue)
			So(pubn.State, ShouldEqual, StateIdle)
			So(pubn.Chart.Family, ShouldEqual, chartspec.FamilyBar)
			So(pubn.Insight.Sufficient, ShouldBeTrue)
			high, _ := pubn.Insight.Get("Highest emissions")
			So(high, ShouldStartWith, "CountryB")
			So(pubn.DefaultApplied, ShouldBeFalse)
		})
	})
}

func TestStateText(t *testing.T) {
	Convey("States round-trip through text", t, func() {
		for _, s := range []State{StateIdle, StateComputing, StateError} {
			b, err := s.MarshalText()
			So(err, ShouldBeNil)
			var out State
			So(out.UnmarshalText(b), ShouldBeNil)
			So(out, ShouldEqual, s)
		}
		var bad State
		So(bad.UnmarshalText([]byte("paused")), ShouldNotBeNil)
	})
}
