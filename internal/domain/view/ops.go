package view

import (
	"cmp"
	"slices"

	"github.com/okian/climadash/internal/domain/model"
)

// Reducer folds the values of one group.
type Reducer int

const (
	ReduceSum Reducer = iota
	ReduceMean
)

type acc struct {
	sum float64
	n   int
}

func (a acc) value(r Reducer) float64 {
	if r == ReduceMean && a.n > 0 {
		return a.sum / float64(a.n)
	}
	return a.sum
}

// YearValue is an aggregate keyed by year.
type YearValue struct {
	Year  int
	Value float64
	Count int
}

// EntityValue is an aggregate keyed by entity.
type EntityValue struct {
	Entity string
	Value  float64
	Count  int
}

// EntityYearValue is an aggregate keyed by entity and year.
type EntityYearValue struct {
	Entity string
	Year   int
	Value  float64
	Count  int
}

// FilterRecords returns the records of t within [start, end] inclusive and,
// when entities is non-empty, belonging to one of them.
func FilterRecords(t *model.Table, start, end int, entities []string) []model.Record {
	var out []model.Record
	keep := entitySet(entities)
	t.Each(func(r model.Record) bool {
		if match(r, start, end, keep) {
			out = append(out, r)
		}
		return true
	})
	return out
}

// FilterSlice is FilterRecords over an already materialised slice.
func FilterSlice(recs []model.Record, start, end int, entities []string) []model.Record {
	var out []model.Record
	keep := entitySet(entities)
	for _, r := range recs {
		if match(r, start, end, keep) {
			out = append(out, r)
		}
	}
	return out
}

func entitySet(entities []string) map[string]struct{} {
	if len(entities) == 0 {
		return nil
	}
	keep := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		keep[e] = struct{}{}
	}
	return keep
}

func match(r model.Record, start, end int, keep map[string]struct{}) bool {
	if r.Year < start || r.Year > end {
		return false
	}
	if keep == nil {
		return true
	}
	_, ok := keep[r.Entity]
	return ok
}

// GroupByYear reduces records per year, ascending.
func GroupByYear(recs []model.Record, red Reducer) []YearValue {
	groups := make(map[int]*acc)
	var keys []int
	for _, r := range recs {
		a, ok := groups[r.Year]
		if !ok {
			a = &acc{}
			groups[r.Year] = a
			keys = append(keys, r.Year)
		}
		a.sum += r.Value
		a.n++
	}
	slices.Sort(keys)
	out := make([]YearValue, len(keys))
	for i, y := range keys {
		out[i] = YearValue{Year: y, Value: groups[y].value(red), Count: groups[y].n}
	}
	return out
}

// GroupByEntity reduces records per entity, ascending by name.
func GroupByEntity(recs []model.Record, red Reducer) []EntityValue {
	groups := make(map[string]*acc)
	var keys []string
	for _, r := range recs {
		a, ok := groups[r.Entity]
		if !ok {
			a = &acc{}
			groups[r.Entity] = a
			keys = append(keys, r.Entity)
		}
		a.sum += r.Value
		a.n++
	}
	slices.Sort(keys)
	out := make([]EntityValue, len(keys))
	for i, e := range keys {
		out[i] = EntityValue{Entity: e, Value: groups[e].value(red), Count: groups[e].n}
	}
	return out
}

// GroupByEntityYear reduces records per (entity, year), ordered by year then entity.
func GroupByEntityYear(recs []model.Record, red Reducer) []EntityYearValue {
	type key struct {
		entity string
		year   int
	}
	groups := make(map[key]*acc)
	var keys []key
	for _, r := range recs {
		k := key{r.Entity, r.Year}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
			keys = append(keys, k)
		}
		a.sum += r.Value
		a.n++
	}
	slices.SortFunc(keys, func(a, b key) int {
		if c := cmp.Compare(a.year, b.year); c != 0 {
			return c
		}
		return cmp.Compare(a.entity, b.entity)
	})
	out := make([]EntityYearValue, len(keys))
	for i, k := range keys {
		out[i] = EntityYearValue{Entity: k.entity, Year: k.year, Value: groups[k].value(red), Count: groups[k].n}
	}
	return out
}

// JoinYears inner-joins yearly series on year. Column i of the result holds
// series i; years missing from any series are dropped.
func JoinYears(name string, cols []Column, series ...[]YearValue) View {
	v := View{Name: name, Columns: cols}
	if len(series) == 0 {
		return v
	}
	lookup := make([]map[int]float64, len(series))
	for i, s := range series {
		lookup[i] = make(map[int]float64, len(s))
		for _, yv := range s {
			lookup[i][yv.Year] = yv.Value
		}
	}
	for _, yv := range series[0] {
		vals := make([]float64, len(series))
		ok := true
		for i := range series {
			if vals[i], ok = lookup[i][yv.Year]; !ok {
				break
			}
		}
		if ok {
			v.Rows = append(v.Rows, Row{Entity: model.GlobalEntity, Year: yv.Year, Values: vals})
		}
	}
	return v
}

func yearlyView(name string, col Column, entity string, yv []YearValue) View {
	v := View{Name: name, Columns: []Column{col}, Rows: make([]Row, len(yv))}
	for i, p := range yv {
		v.Rows[i] = Row{Entity: entity, Year: p.Year, Values: []float64{p.Value}}
	}
	return v
}

// sortByValue orders single-column rows ascending by value, then entity.
func sortByValue(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(a.Values[0], b.Values[0]); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity, b.Entity)
	})
}

func sortYearEntity(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Month, b.Month); c != 0 {
			return c
		}
		return cmp.Compare(a.Entity, b.Entity)
	})
}
