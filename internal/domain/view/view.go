// Package view builds derived views: filtered, grouped and joined
// aggregates of the source tables, with optional regressions and a
// correlation matrix. Every function here is pure over immutable tables.
package view

import (
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
)

// Column describes one numeric column of a View.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Unit  string `json:"unit,omitempty"`
}

// Row is one aggregate row. Values follow the owning View's Columns.
// Year or Month is zero when the row is not keyed by it.
type Row struct {
	Entity string    `json:"entity,omitempty"`
	Year   int       `json:"year,omitempty"`
	Month  int       `json:"month,omitempty"`
	Values []float64 `json:"values"`
}

// View is a derived table.
type View struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows.
func (v View) Len() int { return len(v.Rows) }

// Index returns the position of column key, or -1.
func (v View) Index(key string) int {
	for i, c := range v.Columns {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Column returns the values of column key in row order, or nil.
func (v View) Column(key string) []float64 {
	i := v.Index(key)
	if i < 0 {
		return nil
	}
	out := make([]float64, len(v.Rows))
	for r, row := range v.Rows {
		out[r] = row.Values[i]
	}
	return out
}

// Years returns the year of every row as float64.
func (v View) Years() []float64 {
	out := make([]float64, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = float64(r.Year)
	}
	return out
}

// Entities returns distinct row entities in first-seen order.
func (v View) Entities() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range v.Rows {
		if _, ok := seen[r.Entity]; ok {
			continue
		}
		seen[r.Entity] = struct{}{}
		out = append(out, r.Entity)
	}
	return out
}

// Where returns the rows matching fn as a new view with the same columns.
func (v View) Where(fn func(Row) bool) View {
	out := View{Name: v.Name, Columns: v.Columns}
	for _, r := range v.Rows {
		if fn(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// NamedFit is a regression of column Y on X.
type NamedFit struct {
	Name string    `json:"name"`
	X    string    `json:"x"`
	Y    string    `json:"y"`
	Fit  stats.Fit `json:"fit"`
}

// Derived is everything computed for one filter state.
type Derived struct {
	Mode           model.Mode        `json:"mode"`
	Filter         model.FilterState `json:"filter"`
	Entities       []string          `json:"entities,omitempty"` // entities actually used
	DefaultApplied bool              `json:"default_applied"`    // selection was empty and a default was used
	Missing        []string          `json:"missing,omitempty"`  // selected but absent from the source
	Primary        View              `json:"primary"`
	Overlays       []View            `json:"overlays,omitempty"`
	Fits           []NamedFit        `json:"fits,omitempty"`
	Correlation    *stats.Matrix     `json:"correlation,omitempty"`
}

// Overlay returns the overlay called name.
func (d Derived) Overlay(name string) (View, bool) {
	for _, o := range d.Overlays {
		if o.Name == name {
			return o, true
		}
	}
	return View{}, false
}

// FitNamed returns the fit called name.
func (d Derived) FitNamed(name string) (NamedFit, bool) {
	for _, f := range d.Fits {
		if f.Name == name {
			return f, true
		}
	}
	return NamedFit{}, false
}
