package insight

import (
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
	"github.com/okian/climadash/internal/domain/view"
)

var tempUnit = model.MetricTemperature.Unit()

func temperatureCountries(d view.Derived) Insight {
	vals := d.Primary.Column("temperature")
	lo, hi := stats.ArgMin(vals), stats.ArgMax(vals)
	in := Insight{Sufficient: true}
	in.add("Global average", "%s", withUnit(Number(stats.Mean(vals), 2), tempUnit))
	in.add("Coldest country", "%s (%s)", d.Primary.Rows[lo].Entity, withUnit(Number(vals[lo], 2), tempUnit))
	in.add("Hottest country", "%s (%s)", d.Primary.Rows[hi].Entity, withUnit(Number(vals[hi], 2), tempUnit))
	return in
}

func temperatureTrend(d view.Derived) Insight {
	rows := d.Primary.Rows
	first, last := rows[0].Values[0], rows[len(rows)-1].Values[0]
	in := Insight{Sufficient: true}
	in.add("Temperature change", "%s", withUnit(Signed(last-first, 2), tempUnit))
	if fit, ok := d.FitNamed("trend"); ok {
		in.add("Warming rate", "%s per decade", withUnit(Signed(fit.Fit.Slope*10, 3), tempUnit))
		in.add("Trend fit", "%s (R² = %s)", FitLabel(fit.Fit.RSquared), Number(fit.Fit.RSquared, 3))
	}
	return in
}

// temperatureRegional summarises the states of the country in d.Entities.
func temperatureRegional(d view.Derived) Insight {
	vals := d.Primary.Column("temperature")
	lo, hi := stats.ArgMin(vals), stats.ArgMax(vals)
	in := Insight{Sufficient: true}
	in.add("Country average temperature", "%s", withUnit(Number(stats.Mean(vals), 2), tempUnit))
	in.add("Coldest region", "%s (%s)", d.Primary.Rows[lo].Entity, withUnit(Number(vals[lo], 2), tempUnit))
	in.add("Hottest region", "%s (%s)", d.Primary.Rows[hi].Entity, withUnit(Number(vals[hi], 2), tempUnit))
	return in
}
