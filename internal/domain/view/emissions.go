package view

import (
	"slices"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
)

var (
	colTotal     = Column{Key: "total", Label: "Total emissions", Unit: model.MetricEmissions.Unit()}
	colEmissions = Column{Key: "emissions", Label: "CO2 emissions", Unit: model.MetricEmissions.Unit()}
)

// emissionsCountry totals each selected country over the range. With no
// selection the top emitters are used. Rows are ordered ascending by total.
func (b *Builder) emissionsCountry(f model.FilterState) (Derived, error) {
	t := b.src.Emissions
	d := Derived{}
	entities := f.Entities
	if len(entities) == 0 {
		entities = b.TopEmitters(b.topN)
		d.DefaultApplied = true
	}
	found, missing := present(t, entities)
	d.Missing = missing
	if len(found) == 0 {
		return Derived{}, unavailable("none of %v in emissions", entities)
	}

	totals := GroupByEntity(FilterRecords(t, f.YearStart, f.YearEnd, found), ReduceSum)
	if len(totals) == 0 {
		return Derived{}, unavailable("no emissions in %d-%d", f.YearStart, f.YearEnd)
	}
	v := View{Name: "country_totals", Columns: []Column{colTotal}, Rows: make([]Row, len(totals))}
	for i, ev := range totals {
		v.Rows[i] = Row{Entity: ev.Entity, Values: []float64{ev.Value}}
		d.Entities = append(d.Entities, ev.Entity)
	}
	sortByValue(v.Rows)
	d.Primary = v
	return d, nil
}

// emissionsTrend returns yearly totals. With no selection it is the global
// sum plus a linear trend; otherwise one series per selected country.
func (b *Builder) emissionsTrend(f model.FilterState) (Derived, error) {
	t := b.src.Emissions
	if len(f.Entities) == 0 {
		yearly := GroupByYear(FilterRecords(t, f.YearStart, f.YearEnd, nil), ReduceSum)
		if len(yearly) == 0 {
			return Derived{}, unavailable("no emissions in %d-%d", f.YearStart, f.YearEnd)
		}
		primary := yearlyView("global_totals", colEmissions, model.GlobalEntity, yearly)
		fit, err := stats.LinearFit(primary.Years(), primary.Column(colEmissions.Key))
		if err != nil {
			return Derived{}, failure("emissions trend", err)
		}
		return Derived{
			DefaultApplied: true,
			Entities:       []string{model.GlobalEntity},
			Primary:        primary,
			Overlays:       []View{trendOverlay("trend", colEmissions, primary, fit)},
			Fits:           []NamedFit{{Name: "trend", X: "year", Y: colEmissions.Key, Fit: fit}},
		}, nil
	}

	found, missing := present(t, f.Entities)
	if len(found) == 0 {
		return Derived{}, unavailable("none of %v in emissions", f.Entities)
	}
	series := GroupByEntityYear(FilterRecords(t, f.YearStart, f.YearEnd, found), ReduceSum)
	if len(series) == 0 {
		return Derived{}, unavailable("no emissions for %v in %d-%d", found, f.YearStart, f.YearEnd)
	}
	v := View{Name: "country_yearly", Columns: []Column{colEmissions}, Rows: make([]Row, len(series))}
	for i, p := range series {
		v.Rows[i] = Row{Entity: p.Entity, Year: p.Year, Values: []float64{p.Value}}
	}
	return Derived{Entities: found, Missing: missing, Primary: v}, nil
}

// emissionsRegion sums each region's members per year. A non-empty
// selection names the regions to include.
func (b *Builder) emissionsRegion(f model.FilterState) (Derived, error) {
	t := b.src.Emissions
	d := Derived{DefaultApplied: len(f.Entities) == 0}
	regions := b.regions
	if !d.DefaultApplied {
		regions = nil
		for _, name := range f.Entities {
			i := slices.IndexFunc(b.regions, func(r Region) bool { return r.Name == name })
			if i < 0 {
				d.Missing = append(d.Missing, name)
				continue
			}
			regions = append(regions, b.regions[i])
		}
	}

	var rows []Row
	for _, r := range regions {
		members, _ := present(t, r.Members)
		if len(members) == 0 {
			continue
		}
		yearly := GroupByYear(FilterRecords(t, f.YearStart, f.YearEnd, members), ReduceSum)
		if len(yearly) == 0 {
			continue
		}
		d.Entities = append(d.Entities, r.Name)
		for _, yv := range yearly {
			rows = append(rows, Row{Entity: r.Name, Year: yv.Year, Values: []float64{yv.Value}})
		}
	}
	if len(rows) == 0 {
		return Derived{}, unavailable("no region emissions in %d-%d", f.YearStart, f.YearEnd)
	}
	sortYearEntity(rows)
	d.Primary = View{Name: "region_yearly", Columns: []Column{colEmissions}, Rows: rows}
	return d, nil
}

func trendOverlay(name string, col Column, base View, fit stats.Fit) View {
	v := View{Name: name, Columns: []Column{col}, Rows: make([]Row, len(base.Rows))}
	for i, r := range base.Rows {
		v.Rows[i] = Row{Entity: r.Entity, Year: r.Year, Month: r.Month, Values: []float64{fit.Predict(float64(r.Year))}}
	}
	return v
}
