package insight

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
	"github.com/okian/climadash/internal/domain/view"
)

var emissionsUnit = model.MetricEmissions.Unit()

// emissionsCountry expects rows ordered ascending by total.
func emissionsCountry(d view.Derived) Insight {
	rows := d.Primary.Rows
	low, high := rows[0], rows[len(rows)-1]
	in := Insight{Sufficient: true}
	in.add("Highest emissions", "%s (%s)", high.Entity, withUnit(Number(high.Values[0], 0), emissionsUnit))
	in.add("Lowest emissions", "%s (%s)", low.Entity, withUnit(Number(low.Values[0], 0), emissionsUnit))
	in.add("Difference", "%s", withUnit(Number(high.Values[0]-low.Values[0], 0), emissionsUnit))
	if low.Values[0] == 0 {
		in.add("Ratio", "%s", Undefined)
	} else {
		in.add("Ratio", "%sx", Number(high.Values[0]/low.Values[0], 1))
	}
	return in
}

func emissionsTrend(d view.Derived) Insight {
	if fit, ok := d.FitNamed("trend"); ok {
		return globalTrend(d.Primary, fit.Fit, emissionsUnit)
	}
	return entityGrowth(d.Primary, "growth")
}

// globalTrend summarises a single yearly series with its fit.
func globalTrend(v view.View, fit stats.Fit, unit string) Insight {
	vals := v.Rows
	first, last := vals[0], vals[len(vals)-1]
	delta := last.Values[0] - first.Values[0]
	pct, ok := stats.PercentChange(first.Values[0], last.Values[0])

	in := Insight{Sufficient: true}
	in.add("Total change", "%s by %s (%s)", Direction(delta), withUnit(Number(absf(delta), 0), unit), Percent(pct, ok))
	if span := last.Year - first.Year; span > 0 {
		in.add("Average annual change", "%s/yr", withUnit(Signed(delta/float64(span), 0), unit))
	}
	in.add("Overall trend", "%s", trendWord(fit.Slope))
	return in
}

type growth struct {
	entity string
	pct    float64
}

// entityGrowth ranks entities by percentage change between their first and
// last row. Entities with a zero baseline are listed separately.
func entityGrowth(v view.View, noun string) Insight {
	firsts := make(map[string]float64)
	lasts := make(map[string]float64)
	for _, r := range v.Rows {
		if _, ok := firsts[r.Entity]; !ok {
			firsts[r.Entity] = r.Values[0]
		}
		lasts[r.Entity] = r.Values[0]
	}
	var ranked []growth
	var undefined []string
	for _, e := range v.Entities() {
		if pct, ok := stats.PercentChange(firsts[e], lasts[e]); ok {
			ranked = append(ranked, growth{e, pct})
		} else {
			undefined = append(undefined, e)
		}
	}
	slices.SortStableFunc(ranked, func(a, b growth) int {
		if c := cmp.Compare(a.pct, b.pct); c != 0 {
			return c
		}
		return cmp.Compare(a.entity, b.entity)
	})

	in := Insight{Sufficient: true}
	if len(ranked) > 0 {
		hi, lo := ranked[len(ranked)-1], ranked[0]
		in.add("Highest "+noun, "%s (%s)", hi.entity, Percent(hi.pct, true))
		in.add("Lowest "+noun, "%s (%s)", lo.entity, Percent(lo.pct, true))
	}
	if len(undefined) > 0 {
		in.add("Undefined "+noun, "%s", joinNames(undefined))
	}
	return in
}

func emissionsRegion(d view.Derived) Insight {
	rows := d.Primary.Rows
	endYear := rows[len(rows)-1].Year
	in := entityGrowth(d.Primary, "growth")

	var top view.Row
	for _, r := range rows {
		if r.Year == endYear && (top.Entity == "" || r.Values[0] > top.Values[0]) {
			top = r
		}
	}
	lead := Item{
		Label: "Top region",
		Value: fmt.Sprintf("%s in %d (%s)", top.Entity, endYear, withUnit(Number(top.Values[0], 0), emissionsUnit)),
	}
	in.Items = append([]Item{lead}, in.Items...)
	return in
}

func trendWord(slope float64) string {
	switch {
	case slope > 0:
		return "upward"
	case slope < 0:
		return "downward"
	default:
		return "flat"
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
