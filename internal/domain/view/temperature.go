package view

import (
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
)

var colTemperature = Column{Key: "temperature", Label: "Average temperature", Unit: model.MetricTemperature.Unit()}

// temperatureByCountry averages each country over the range; with no
// selection every country is included. Rows are ordered by country.
func (b *Builder) temperatureByCountry(f model.FilterState) (Derived, error) {
	t := b.src.Temperature
	d := Derived{DefaultApplied: len(f.Entities) == 0}
	var found []string
	if !d.DefaultApplied {
		found, d.Missing = present(t, f.Entities)
		if len(found) == 0 {
			return Derived{}, unavailable("none of %v in temperature", f.Entities)
		}
	}
	means := GroupByEntity(FilterRecords(t, f.YearStart, f.YearEnd, found), ReduceMean)
	if len(means) == 0 {
		return Derived{}, unavailable("no temperature in %d-%d", f.YearStart, f.YearEnd)
	}
	v := View{Name: "country_means", Columns: []Column{colTemperature}, Rows: make([]Row, len(means))}
	for i, ev := range means {
		v.Rows[i] = Row{Entity: ev.Entity, Values: []float64{ev.Value}}
		d.Entities = append(d.Entities, ev.Entity)
	}
	d.Primary = v
	return d, nil
}

func (b *Builder) temperatureMap(f model.FilterState) (Derived, error) {
	return b.temperatureByCountry(f)
}

// temperatureComparison is the per-country mean ordered ascending by value.
func (b *Builder) temperatureComparison(f model.FilterState) (Derived, error) {
	d, err := b.temperatureByCountry(f)
	if err != nil {
		return Derived{}, err
	}
	sortByValue(d.Primary.Rows)
	return d, nil
}

// temperatureTrend is the yearly mean over the selected (or all) countries
// with a linear trend.
func (b *Builder) temperatureTrend(f model.FilterState) (Derived, error) {
	t := b.src.Temperature
	d := Derived{DefaultApplied: len(f.Entities) == 0, Entities: []string{model.GlobalEntity}}
	var found []string
	if !d.DefaultApplied {
		found, d.Missing = present(t, f.Entities)
		if len(found) == 0 {
			return Derived{}, unavailable("none of %v in temperature", f.Entities)
		}
		d.Entities = found
	}
	yearly := GroupByYear(FilterRecords(t, f.YearStart, f.YearEnd, found), ReduceMean)
	if len(yearly) == 0 {
		return Derived{}, unavailable("no temperature in %d-%d", f.YearStart, f.YearEnd)
	}
	d.Primary = yearlyView("yearly_mean", colTemperature, model.GlobalEntity, yearly)
	fit, err := stats.LinearFit(d.Primary.Years(), d.Primary.Column(colTemperature.Key))
	if err != nil {
		return Derived{}, failure("temperature trend", err)
	}
	d.Overlays = []View{trendOverlay("trend", colTemperature, d.Primary, fit)}
	d.Fits = []NamedFit{{Name: "trend", X: "year", Y: colTemperature.Key, Fit: fit}}
	return d, nil
}

// temperatureRegional averages the states of one country over the range.
// The country is the first selected one, by name, that has state data. With
// no selection it is the first country with state data.
func (b *Builder) temperatureRegional(f model.FilterState) (Derived, error) {
	countries := b.RegionalCountries()
	if len(countries) == 0 {
		return Derived{}, unavailable("no state-level temperature loaded")
	}
	d := Derived{DefaultApplied: len(f.Entities) == 0}
	country := countries[0]
	if !d.DefaultApplied {
		var found []string
		for _, e := range f.Entities {
			if _, ok := b.src.States[e]; ok {
				found = append(found, e)
			} else {
				d.Missing = append(d.Missing, e)
			}
		}
		if len(found) == 0 {
			return Derived{}, unavailable("no state-level temperature for %v", f.Entities)
		}
		country = found[0]
	}
	means := GroupByEntity(FilterRecords(b.src.States[country], f.YearStart, f.YearEnd, nil), ReduceMean)
	if len(means) == 0 {
		return Derived{}, unavailable("no %s state temperature in %d-%d", country, f.YearStart, f.YearEnd)
	}
	v := View{Name: "state_means", Columns: []Column{colTemperature}, Rows: make([]Row, len(means))}
	for i, ev := range means {
		v.Rows[i] = Row{Entity: ev.Entity, Values: []float64{ev.Value}}
	}
	d.Entities = []string{country}
	d.Primary = v
	return d, nil
}
