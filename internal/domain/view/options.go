package view

import (
	"maps"
	"slices"
	"strings"
)

// Option configures a Builder.
type Option func(*Builder)

// WithTopN sets how many emitters the empty emissions selection falls back to.
func WithTopN(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.topN = n
		}
	}
}

// WithRegions replaces the region membership used by the region mode.
func WithRegions(regions map[string][]string) Option {
	return func(b *Builder) {
		if len(regions) > 0 {
			b.regions = toRegions(regions)
		}
	}
}

// WithGroups replaces the named preset selections.
func WithGroups(groups map[string][]string) Option {
	return func(b *Builder) {
		if len(groups) == 0 {
			return
		}
		b.groups = make(map[string][]string, len(groups))
		b.groupNames = b.groupNames[:0]
		for name, members := range groups {
			b.groups[strings.ToLower(name)] = slices.Clone(members)
			b.groupNames = append(b.groupNames, name)
		}
		slices.Sort(b.groupNames)
	}
}

// WithProjectionYears sets how far the sea level projection extends.
func WithProjectionYears(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.projectionYears = n
		}
	}
}

// WithRollingWindow sets the window of the monthly rolling mean.
func WithRollingWindow(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.rollingWindow = n
		}
	}
}

// WithCorrelationWindow bounds the years the correlation page may cover.
func WithCorrelationWindow(start, end int) Option {
	return func(b *Builder) {
		if start <= end {
			b.corrStart, b.corrEnd = start, end
		}
	}
}

// Region is a named set of member entities.
type Region struct {
	Name    string
	Members []string
}

func toRegions(in map[string][]string) []Region {
	names := slices.Sorted(maps.Keys(in))
	out := make([]Region, 0, len(names))
	for _, n := range names {
		out = append(out, Region{Name: n, Members: slices.Clone(in[n])})
	}
	return out
}
