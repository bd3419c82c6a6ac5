package model

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Metric identifies the quantity measured by a source table.
type Metric int

const (
	MetricUnknown Metric = iota
	MetricTemperature
	MetricSeaLevel
	MetricEmissions
)

var metricNames = [...]string{"unknown", "temperature", "sea_level", "emissions"}
var metricUnits = [...]string{"", "°C", "mm", "kt CO2"}
var metricLabels = [...]string{"", "Temperature", "Sea level", "CO2 emissions"}

func (m Metric) valid() bool { return m > MetricUnknown && int(m) < len(metricNames) }

func (m Metric) String() string {
	if !m.valid() {
		return metricNames[0]
	}
	return metricNames[m]
}

// Unit returns the display unit for values of m.
func (m Metric) Unit() string {
	if !m.valid() {
		return ""
	}
	return metricUnits[m]
}

// Label returns a human-readable name for m.
func (m Metric) Label() string {
	if !m.valid() {
		return ""
	}
	return metricLabels[m]
}

// GlobalEntity names the single entity of sources without a country dimension,
// and of aggregates taken across all entities.
const GlobalEntity = "Global"

// Record is one row of a source table. Month is 1..12 for monthly sources
// and 0 for yearly ones.
type Record struct {
	Entity string
	Year   int
	Month  int
	Value  float64
}

func (r Record) less(o Record) bool {
	if r.Year != o.Year {
		return r.Year < o.Year
	}
	if r.Month != o.Month {
		return r.Month < o.Month
	}
	return r.Entity < o.Entity
}

// Table is an immutable, ordered set of records sharing one metric.
// Records are ordered by year, month, then entity.
type Table struct {
	source   string
	metric   Metric
	records  []Record
	entities []string
	minYear  int
	maxYear  int
}

// NewTable validates and copies records into a new Table.
func NewTable(source string, metric Metric, records []Record) (*Table, error) {
	if !metric.valid() {
		return nil, fmt.Errorf("table %q: unknown metric %d", source, metric)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table %q: %w: no records", source, ErrDataUnavailable)
	}

	t := &Table{
		source:  source,
		metric:  metric,
		records: make([]Record, len(records)),
		minYear: math.MaxInt,
		maxYear: math.MinInt,
	}
	copy(t.records, records)

	seen := make(map[string]struct{})
	for i, r := range t.records {
		switch {
		case r.Entity == "":
			return nil, fmt.Errorf("table %q: record %d: empty entity", source, i)
		case r.Year <= 0:
			return nil, fmt.Errorf("table %q: record %d: invalid year %d", source, i, r.Year)
		case r.Month < 0 || r.Month > 12:
			return nil, fmt.Errorf("table %q: record %d: invalid month %d", source, i, r.Month)
		case math.IsNaN(r.Value) || math.IsInf(r.Value, 0):
			return nil, fmt.Errorf("table %q: record %d: non-finite value", source, i)
		}
		t.minYear = min(t.minYear, r.Year)
		t.maxYear = max(t.maxYear, r.Year)
		if _, ok := seen[r.Entity]; !ok {
			seen[r.Entity] = struct{}{}
			t.entities = append(t.entities, r.Entity)
		}
	}

	sort.SliceStable(t.records, func(i, j int) bool { return t.records[i].less(t.records[j]) })
	slices.Sort(t.entities)
	return t, nil
}

// Source returns the identifier the table was loaded from.
func (t *Table) Source() string { return t.source }

// Metric returns the measured quantity.
func (t *Table) Metric() Metric { return t.metric }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// At returns the i-th record.
func (t *Table) At(i int) Record { return t.records[i] }

// Each calls fn for every record in order until fn returns false.
func (t *Table) Each(fn func(Record) bool) {
	for _, r := range t.records {
		if !fn(r) {
			return
		}
	}
}

// Records returns a copy of all records.
func (t *Table) Records() []Record { return slices.Clone(t.records) }

// YearBounds returns the first and last observed year.
func (t *Table) YearBounds() (int, int) { return t.minYear, t.maxYear }

// Entities returns the sorted distinct entity names.
func (t *Table) Entities() []string { return slices.Clone(t.entities) }

// HasEntity reports whether name occurs in the table.
func (t *Table) HasEntity(name string) bool {
	_, ok := slices.BinarySearch(t.entities, name)
	return ok
}

// Sources bundles the source tables loaded at startup.
type Sources struct {
	Temperature *Table
	SeaLevel    *Table
	Emissions   *Table

	// States is optional state-level temperature keyed by country. Each
	// table has the country's states as entities.
	States map[string]*Table
}

// Validate checks that every source is present and carries the expected metric.
func (s Sources) Validate() error {
	check := []struct {
		name   string
		table  *Table
		metric Metric
	}{
		{"temperature", s.Temperature, MetricTemperature},
		{"sea_level", s.SeaLevel, MetricSeaLevel},
		{"emissions", s.Emissions, MetricEmissions},
	}
	for _, c := range check {
		if c.table == nil {
			return fmt.Errorf("source %s: %w", c.name, ErrDataUnavailable)
		}
		if c.table.Metric() != c.metric {
			return fmt.Errorf("source %s: metric %s, want %s", c.name, c.table.Metric(), c.metric)
		}
	}
	for country, t := range s.States {
		if t == nil {
			return fmt.Errorf("states of %s: %w", country, ErrDataUnavailable)
		}
		if t.Metric() != MetricTemperature {
			return fmt.Errorf("states of %s: metric %s, want %s", country, t.Metric(), MetricTemperature)
		}
	}
	return nil
}
