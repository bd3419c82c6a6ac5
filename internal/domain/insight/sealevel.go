package insight

import (
	"time"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
	"github.com/okian/climadash/internal/domain/view"
)

var seaUnit = model.MetricSeaLevel.Unit()

const significance = 0.05

func seaLevelSeries(d view.Derived) Insight {
	levels := d.Primary.Column("sea_level")
	xs := d.Primary.FractionalYears()
	delta := levels[len(levels)-1] - levels[0]
	span := xs[len(xs)-1] - xs[0]
	rate := 0.0
	if span > 0 {
		rate = delta / span
	}

	in := Insight{Sufficient: true}
	in.add("Total change", "%s over %s years", withUnit(Signed(delta, 1), seaUnit), Number(span, 1))
	in.add("Average annual rate", "%s/yr", withUnit(Signed(rate, 2), seaUnit))
	if fit, ok := d.FitNamed("trend"); ok {
		in.add("Trend fit", "%s (R² = %s)", FitLabel(fit.Fit.RSquared), Number(fit.Fit.RSquared, 3))
		if fit.Fit.PValue < significance {
			in.add("Significance", "significant (p = %s)", Number(fit.Fit.PValue, 4))
		} else {
			in.add("Significance", "not significant (p = %s)", Number(fit.Fit.PValue, 4))
		}
	}
	return in
}

func seaLevelProjection(d view.Derived) Insight {
	in := Insight{Sufficient: true}
	fit, ok := d.FitNamed("trend")
	if !ok {
		return InsufficientData("")
	}
	in.add("Current trend", "%s/yr", withUnit(Signed(fit.Fit.Slope, 2), seaUnit))
	proj, ok := d.Overlay("projection")
	if ok && proj.Len() > 0 {
		end := proj.Rows[proj.Len()-1]
		lastObserved := d.Primary.Rows[d.Primary.Len()-1]
		in.add("Projected level", "%s by %d", withUnit(Number(end.Values[0], 1), seaUnit), end.Year)
		in.add("Projected rise", "%s since %d", withUnit(Signed(end.Values[0]-lastObserved.Values[0], 1), seaUnit), lastObserved.Year)
	}
	return in
}

func seaLevelRate(d view.Derived) Insight {
	rates := d.Primary.Column("rate")
	peak := stats.ArgMax(rates)
	half := len(rates) / 2
	early, late := stats.Mean(rates[:half]), stats.Mean(rates[half:])

	in := Insight{Sufficient: true}
	in.add("Mean rate", "%s/yr", withUnit(Signed(stats.Mean(rates), 2), seaUnit))
	in.add("Fastest rise", "%d (%s)", d.Primary.Rows[peak].Year, withUnit(Signed(rates[peak], 2), seaUnit))
	switch {
	case late > early:
		in.add("Acceleration", "accelerating (%s/yr)", withUnit(Signed(late-early, 2), seaUnit))
	case late < early:
		in.add("Acceleration", "decelerating (%s/yr)", withUnit(Signed(late-early, 2), seaUnit))
	default:
		in.add("Acceleration", "steady")
	}
	return in
}

func seaLevelSeasonal(d view.Derived) Insight {
	means := d.Primary.Column("mean")
	hi, lo := stats.ArgMax(means), stats.ArgMin(means)
	in := Insight{Sufficient: true}
	in.add("Highest month", "%s (%s)", time.Month(d.Primary.Rows[hi].Month), withUnit(Number(means[hi], 1), seaUnit))
	in.add("Lowest month", "%s (%s)", time.Month(d.Primary.Rows[lo].Month), withUnit(Number(means[lo], 1), seaUnit))
	in.add("Seasonal amplitude", "%s", withUnit(Number(means[hi]-means[lo], 1), seaUnit))
	return in
}
