package view

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/okian/climadash/internal/domain/model"
)

type buildFunc func(b *Builder, f model.FilterState) (Derived, error)

// builders maps every mode to its builder. A nil entry is a programming
// error and is caught by TestEveryModeHasBuilder.
var builders = [model.ModeCount]buildFunc{
	model.ModeTemperatureMap:        (*Builder).temperatureMap,
	model.ModeTemperatureComparison: (*Builder).temperatureComparison,
	model.ModeTemperatureTrend:      (*Builder).temperatureTrend,
	model.ModeTemperatureRegional:   (*Builder).temperatureRegional,
	model.ModeSeaLevelSeries:        (*Builder).seaLevelSeries,
	model.ModeSeaLevelProjection:    (*Builder).seaLevelProjection,
	model.ModeSeaLevelRate:          (*Builder).seaLevelRate,
	model.ModeSeaLevelSeasonal:      (*Builder).seaLevelSeasonal,
	model.ModeEmissionsCountry:      (*Builder).emissionsCountry,
	model.ModeEmissionsTrend:        (*Builder).emissionsTrend,
	model.ModeEmissionsRegion:       (*Builder).emissionsRegion,
	model.ModeCorrelationTime:       (*Builder).correlationTime,
	model.ModeCorrelationMatrix:     (*Builder).correlationMatrix,
	model.ModeCorrelationScatter:    (*Builder).correlationScatter,
	model.ModeCorrelationDashboard:  (*Builder).correlationDashboard,
}

// Builder computes derived views over a fixed set of source tables.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	src             model.Sources
	topN            int
	regions         []Region
	groups          map[string][]string
	groupNames      []string
	projectionYears int
	rollingWindow   int
	corrStart       int
	corrEnd         int

	emitterRank []string // all emitters, largest total over the correlation window first
}

// NewBuilder returns a Builder over src.
func NewBuilder(src model.Sources, opts ...Option) (*Builder, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	b := &Builder{
		src:             src,
		topN:            defaultTopN,
		regions:         toRegions(DefaultRegions()),
		projectionYears: defaultProjectionYears,
		rollingWindow:   defaultRollingWindow,
		corrStart:       defaultCorrStart,
		corrEnd:         defaultCorrEnd,
	}
	WithGroups(DefaultGroups())(b)
	for _, opt := range opts {
		opt(b)
	}
	b.emitterRank = rankEmitters(src.Emissions, b.corrStart, b.corrEnd)
	return b, nil
}

// Build computes the derived view for f.
func (b *Builder) Build(ctx context.Context, f model.FilterState) (Derived, error) {
	if err := ctx.Err(); err != nil {
		return Derived{}, err
	}
	if err := f.Validate(); err != nil {
		return Derived{}, err
	}
	fn := builders[f.Mode]
	if fn == nil {
		return Derived{}, fmt.Errorf("%w: no builder for mode %s", model.ErrInvalidFilter, f.Mode)
	}
	d, err := fn(b, f)
	if err != nil {
		return Derived{}, fmt.Errorf("build %s: %w", f.Mode, err)
	}
	d.Mode = f.Mode
	d.Filter = f
	return d, nil
}

// Bounds returns the observed year range of a page.
func (b *Builder) Bounds(page model.Page) (int, int) {
	switch page {
	case model.PageTemperature:
		return b.src.Temperature.YearBounds()
	case model.PageSeaLevel:
		return b.src.SeaLevel.YearBounds()
	case model.PageEmissions:
		return b.src.Emissions.YearBounds()
	case model.PageCorrelation:
		lo, hi := b.corrStart, b.corrEnd
		for _, t := range []*model.Table{b.src.Temperature, b.src.SeaLevel, b.src.Emissions} {
			tl, th := t.YearBounds()
			lo, hi = max(lo, tl), min(hi, th)
		}
		return lo, hi
	default:
		return 0, 0
	}
}

// Entities returns the selectable entities of a page.
func (b *Builder) Entities(page model.Page) []string {
	switch page {
	case model.PageTemperature:
		return b.src.Temperature.Entities()
	case model.PageEmissions:
		return b.src.Emissions.Entities()
	default:
		return nil
	}
}

// RegionalCountries returns the countries with state-level temperature,
// sorted by name.
func (b *Builder) RegionalCountries() []string {
	return slices.Sorted(maps.Keys(b.src.States))
}

// Regions returns the configured regions, sorted by name.
func (b *Builder) Regions() []Region { return slices.Clone(b.regions) }

// Groups returns the names of the selectable presets.
func (b *Builder) Groups() []string {
	out := append([]string{GroupTop}, b.groupNames...)
	return append(out, GroupClear)
}

// ResolveGroup expands a preset name into entities. "clear" yields an empty
// selection.
func (b *Builder) ResolveGroup(name string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case GroupClear:
		return nil, nil
	case GroupTop, "top":
		return b.TopEmitters(b.topN), nil
	}
	members, ok := b.groups[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown group %q", model.ErrInvalidFilter, name)
	}
	return slices.Clone(members), nil
}

// TopEmitters returns the n largest emitters over the correlation window,
// largest first.
func (b *Builder) TopEmitters(n int) []string {
	n = min(max(n, 0), len(b.emitterRank))
	return slices.Clone(b.emitterRank[:n])
}

// rankEmitters orders every emitter by its total over [start, end]. Emitters
// with no records in the window follow, ordered by their all-time total.
func rankEmitters(t *model.Table, start, end int) []string {
	type ranked struct {
		entity   string
		inWindow bool
		total    float64
	}
	window := make(map[string]float64)
	for _, ev := range GroupByEntity(FilterRecords(t, start, end, nil), ReduceSum) {
		window[ev.Entity] = ev.Value
	}
	all := GroupByEntity(t.Records(), ReduceSum)
	rank := make([]ranked, len(all))
	for i, ev := range all {
		total, ok := window[ev.Entity]
		if !ok {
			total = ev.Value
		}
		rank[i] = ranked{entity: ev.Entity, inWindow: ok, total: total}
	}
	slices.SortStableFunc(rank, func(a, b ranked) int {
		if a.inWindow != b.inWindow {
			if a.inWindow {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.total, a.total); c != 0 {
			return c
		}
		return cmp.Compare(a.entity, b.entity)
	})
	out := make([]string, len(rank))
	for i, r := range rank {
		out[i] = r.entity
	}
	return out
}

// present splits entities into those found in t and those missing.
func present(t *model.Table, entities []string) (found, missing []string) {
	for _, e := range entities {
		if t.HasEntity(e) {
			found = append(found, e)
		} else {
			missing = append(missing, e)
		}
	}
	return found, missing
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrDataUnavailable, fmt.Sprintf(format, args...))
}

func failure(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrComputationFailure, what, err)
}
