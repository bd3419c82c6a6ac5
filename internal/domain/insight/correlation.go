package insight

import (
	"fmt"

	"github.com/okian/climadash/internal/domain/stats"
	"github.com/okian/climadash/internal/domain/view"
)

func label(v view.View, key string) string {
	if i := v.Index(key); i >= 0 {
		return v.Columns[i].Label
	}
	return key
}

func unit(v view.View, key string) string {
	if i := v.Index(key); i >= 0 {
		return v.Columns[i].Unit
	}
	return ""
}

func correlationTime(d view.Derived) Insight {
	in := Insight{Sufficient: true}
	for _, key := range view.CombinedKeys {
		col := d.Primary.Column(key)
		first, last := col[0], col[len(col)-1]
		pct, ok := stats.PercentChange(first, last)
		in.add(label(d.Primary, key)+" change", "%s (%s)", withUnit(Signed(last-first, 2), unit(d.Primary, key)), Percent(pct, ok))
	}
	return in
}

func correlationMatrix(d view.Derived) Insight {
	if d.Correlation == nil {
		return InsufficientData("")
	}
	m := *d.Correlation
	in := Insight{Sufficient: true}
	for i := range m.Labels {
		for j := i + 1; j < len(m.Labels); j++ {
			r := m.At(i, j)
			in.add(fmt.Sprintf("%s vs %s", label(d.Primary, m.Labels[i]), label(d.Primary, m.Labels[j])),
				"%s (%s)", Number(r, 3), StrengthLabel(r))
		}
	}
	return in
}

func correlationScatter(d view.Derived) Insight {
	if len(d.Fits) == 0 {
		return InsufficientData("")
	}
	in := Insight{Sufficient: true}
	for _, f := range d.Fits {
		in.add(fmt.Sprintf("%s vs %s", label(d.Primary, f.Y), label(d.Primary, f.X)),
			"slope %s, R² = %s (%s)", Number(f.Fit.Slope, 4), Number(f.Fit.RSquared, 3), StrengthLabel(f.Fit.R))
	}
	return in
}

func correlationDashboard(d view.Derived) Insight {
	in := Insight{Sufficient: true}
	rows := d.Primary.Rows
	span := float64(rows[len(rows)-1].Year - rows[0].Year)
	for _, key := range view.CombinedKeys {
		col := d.Primary.Column(key)
		u := unit(d.Primary, key)
		if span > 0 {
			in.add(label(d.Primary, key)+" rate", "%s/yr", withUnit(Signed((col[len(col)-1]-col[0])/span, 3), u))
		}
		in.add(label(d.Primary, key)+" peak", "%d", rows[stats.ArgMax(col)].Year)
	}
	return in
}
