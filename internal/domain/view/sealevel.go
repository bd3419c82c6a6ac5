package view

import (
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
)

var (
	colSeaLevel = Column{Key: "sea_level", Label: "Sea level", Unit: model.MetricSeaLevel.Unit()}
	colRate     = Column{Key: "rate", Label: "Rate of change", Unit: "mm/yr"}
	colMean     = Column{Key: "mean", Label: "Mean level", Unit: model.MetricSeaLevel.Unit()}
	colStd      = Column{Key: "std", Label: "Standard deviation", Unit: model.MetricSeaLevel.Unit()}
)

// fractionalYear places a monthly row on a continuous year axis.
func fractionalYear(r Row) float64 {
	if r.Month == 0 {
		return float64(r.Year)
	}
	return float64(r.Year) + float64(r.Month-1)/12
}

// FractionalYears returns the continuous year position of every row.
func (v View) FractionalYears() []float64 {
	out := make([]float64, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = fractionalYear(r)
	}
	return out
}

func (b *Builder) seaLevelYearly(f model.FilterState) ([]YearValue, error) {
	yearly := GroupByYear(FilterRecords(b.src.SeaLevel, f.YearStart, f.YearEnd, nil), ReduceMean)
	if len(yearly) == 0 {
		return nil, unavailable("no sea level in %d-%d", f.YearStart, f.YearEnd)
	}
	return yearly, nil
}

// seaLevelSeries is the monthly series with a rolling mean and linear trend.
func (b *Builder) seaLevelSeries(f model.FilterState) (Derived, error) {
	recs := FilterRecords(b.src.SeaLevel, f.YearStart, f.YearEnd, nil)
	if len(recs) == 0 {
		return Derived{}, unavailable("no sea level in %d-%d", f.YearStart, f.YearEnd)
	}
	primary := View{Name: "monthly", Columns: []Column{colSeaLevel}, Rows: make([]Row, len(recs))}
	for i, r := range recs {
		primary.Rows[i] = Row{Entity: model.GlobalEntity, Year: r.Year, Month: r.Month, Values: []float64{r.Value}}
	}
	levels := primary.Column(colSeaLevel.Key)
	xs := primary.FractionalYears()
	fit, err := stats.LinearFit(xs, levels)
	if err != nil {
		return Derived{}, failure("sea level trend", err)
	}

	rolling := View{Name: "rolling", Columns: []Column{colSeaLevel}, Rows: make([]Row, len(recs))}
	trend := View{Name: "trend", Columns: []Column{colSeaLevel}, Rows: make([]Row, len(recs))}
	for i, m := range stats.RollingMean(levels, b.rollingWindow) {
		r := primary.Rows[i]
		rolling.Rows[i] = Row{Entity: r.Entity, Year: r.Year, Month: r.Month, Values: []float64{m}}
		trend.Rows[i] = Row{Entity: r.Entity, Year: r.Year, Month: r.Month, Values: []float64{fit.Predict(xs[i])}}
	}
	return Derived{
		DefaultApplied: true,
		Entities:       []string{model.GlobalEntity},
		Primary:        primary,
		Overlays:       []View{rolling, trend},
		Fits:           []NamedFit{{Name: "trend", X: "year", Y: colSeaLevel.Key, Fit: fit}},
	}, nil
}

// seaLevelProjection extends the yearly trend past the end of the range.
func (b *Builder) seaLevelProjection(f model.FilterState) (Derived, error) {
	yearly, err := b.seaLevelYearly(f)
	if err != nil {
		return Derived{}, err
	}
	primary := yearlyView("yearly_mean", colSeaLevel, model.GlobalEntity, yearly)
	fit, err := stats.LinearFit(primary.Years(), primary.Column(colSeaLevel.Key))
	if err != nil {
		return Derived{}, failure("sea level projection", err)
	}
	last := yearly[len(yearly)-1].Year
	proj := View{Name: "projection", Columns: []Column{colSeaLevel}, Rows: make([]Row, 0, b.projectionYears)}
	for y := last + 1; y <= last+b.projectionYears; y++ {
		proj.Rows = append(proj.Rows, Row{Entity: model.GlobalEntity, Year: y, Values: []float64{fit.Predict(float64(y))}})
	}
	return Derived{
		DefaultApplied: true,
		Entities:       []string{model.GlobalEntity},
		Primary:        primary,
		Overlays:       []View{trendOverlay("trend", colSeaLevel, primary, fit), proj},
		Fits:           []NamedFit{{Name: "trend", X: "year", Y: colSeaLevel.Key, Fit: fit}},
	}, nil
}

// seaLevelRate is the year-over-year change of the yearly mean.
func (b *Builder) seaLevelRate(f model.FilterState) (Derived, error) {
	yearly, err := b.seaLevelYearly(f)
	if err != nil {
		return Derived{}, err
	}
	if len(yearly) < 2 {
		return Derived{}, failure("sea level rate", stats.ErrInsufficientData)
	}
	v := View{Name: "yearly_rate", Columns: []Column{colRate}, Rows: make([]Row, 0, len(yearly)-1)}
	for i := 1; i < len(yearly); i++ {
		v.Rows = append(v.Rows, Row{
			Entity: model.GlobalEntity,
			Year:   yearly[i].Year,
			Values: []float64{yearly[i].Value - yearly[i-1].Value},
		})
	}
	return Derived{DefaultApplied: true, Entities: []string{model.GlobalEntity}, Primary: v}, nil
}

// seaLevelSeasonal is the mean and spread of each calendar month.
func (b *Builder) seaLevelSeasonal(f model.FilterState) (Derived, error) {
	var byMonth [13][]float64
	for _, r := range FilterRecords(b.src.SeaLevel, f.YearStart, f.YearEnd, nil) {
		byMonth[r.Month] = append(byMonth[r.Month], r.Value)
	}
	v := View{Name: "seasonal", Columns: []Column{colMean, colStd}}
	for m := 1; m <= 12; m++ {
		if len(byMonth[m]) == 0 {
			continue
		}
		v.Rows = append(v.Rows, Row{
			Entity: model.GlobalEntity,
			Month:  m,
			Values: []float64{stats.Mean(byMonth[m]), stats.StdDev(byMonth[m])},
		})
	}
	if len(v.Rows) == 0 {
		return Derived{}, unavailable("no monthly sea level in %d-%d", f.YearStart, f.YearEnd)
	}
	return Derived{DefaultApplied: true, Entities: []string{model.GlobalEntity}, Primary: v}, nil
}
