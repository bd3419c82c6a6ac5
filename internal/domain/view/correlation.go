package view

import (
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
)

var combinedColumns = []Column{colTemperature, colSeaLevel, colEmissions}

// CombinedKeys are the column keys of every correlation view, in order.
var CombinedKeys = []string{colTemperature.Key, colSeaLevel.Key, colEmissions.Key}

// scatterPairs lists the regressions of the scatter mode as (y, x).
var scatterPairs = [][2]string{
	{colTemperature.Key, colEmissions.Key},
	{colSeaLevel.Key, colEmissions.Key},
	{colSeaLevel.Key, colTemperature.Key},
}

// combined inner-joins the yearly global temperature mean, sea level mean and
// emissions total on year.
func (b *Builder) combined(f model.FilterState) (Derived, error) {
	temp := GroupByYear(FilterRecords(b.src.Temperature, f.YearStart, f.YearEnd, nil), ReduceMean)
	sea := GroupByYear(FilterRecords(b.src.SeaLevel, f.YearStart, f.YearEnd, nil), ReduceMean)
	emis := GroupByYear(FilterRecords(b.src.Emissions, f.YearStart, f.YearEnd, nil), ReduceSum)
	v := JoinYears("combined", combinedColumns, temp, sea, emis)
	if v.Len() == 0 {
		return Derived{}, unavailable("no year in %d-%d has all indicators", f.YearStart, f.YearEnd)
	}
	return Derived{DefaultApplied: true, Entities: []string{model.GlobalEntity}, Primary: v}, nil
}

func (b *Builder) correlationTime(f model.FilterState) (Derived, error) {
	return b.combined(f)
}

func (b *Builder) correlationMatrix(f model.FilterState) (Derived, error) {
	d, err := b.combined(f)
	if err != nil {
		return Derived{}, err
	}
	cols := make([][]float64, len(CombinedKeys))
	for i, k := range CombinedKeys {
		cols[i] = d.Primary.Column(k)
	}
	m, err := stats.CorrelationMatrix(CombinedKeys, cols)
	if err != nil {
		return Derived{}, failure("correlation matrix", err)
	}
	d.Correlation = &m
	return d, nil
}

func (b *Builder) correlationScatter(f model.FilterState) (Derived, error) {
	d, err := b.combined(f)
	if err != nil {
		return Derived{}, err
	}
	for _, p := range scatterPairs {
		y, x := p[0], p[1]
		fit, err := stats.LinearFit(d.Primary.Column(x), d.Primary.Column(y))
		if err != nil {
			return Derived{}, failure(y+" on "+x, err)
		}
		d.Fits = append(d.Fits, NamedFit{Name: y + "~" + x, X: x, Y: y, Fit: fit})
	}
	return d, nil
}

// correlationDashboard adds a yearly rate-of-change overlay for every indicator.
func (b *Builder) correlationDashboard(f model.FilterState) (Derived, error) {
	d, err := b.combined(f)
	if err != nil {
		return Derived{}, err
	}
	if d.Primary.Len() < 2 {
		return Derived{}, failure("indicator rates", stats.ErrInsufficientData)
	}
	rates := View{Name: "rate", Columns: combinedColumns}
	for i := 1; i < d.Primary.Len(); i++ {
		prev, cur := d.Primary.Rows[i-1], d.Primary.Rows[i]
		vals := make([]float64, len(cur.Values))
		for k := range vals {
			vals[k] = cur.Values[k] - prev.Values[k]
		}
		rates.Rows = append(rates.Rows, Row{Entity: cur.Entity, Year: cur.Year, Values: vals})
	}
	d.Overlays = []View{rates}
	return d, nil
}
