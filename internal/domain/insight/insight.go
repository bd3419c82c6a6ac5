// Package insight reduces a derived view to a short list of labelled,
// formatted statistics for display next to the chart.
package insight

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/view"
)

// Undefined is shown where a value cannot be computed, such as a percentage
// change from a zero baseline.
const Undefined = "undefined"

// Item is one labelled statistic.
type Item struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Insight is an ordered set of statistics. Sufficient is false when the view
// was too small or the pipeline failed.
type Insight struct {
	Title      string `json:"title"`
	Items      []Item `json:"items"`
	Sufficient bool   `json:"sufficient"`
}

// Map returns the items keyed by label.
func (in Insight) Map() map[string]string {
	out := make(map[string]string, len(in.Items))
	for _, it := range in.Items {
		out[it.Label] = it.Value
	}
	return out
}

// Get returns the value of label.
func (in Insight) Get(label string) (string, bool) {
	for _, it := range in.Items {
		if it.Label == label {
			return it.Value, true
		}
	}
	return "", false
}

func (in *Insight) add(label, format string, args ...any) {
	in.Items = append(in.Items, Item{Label: label, Value: fmt.Sprintf(format, args...)})
}

// InsufficientData is the insight for views with fewer than two rows.
func InsufficientData(title string) Insight {
	return Insight{
		Title: title,
		Items: []Item{{Label: "Status", Value: "Insufficient data for the current selection"}},
	}
}

// Fallback describes a pipeline failure.
func Fallback(title string, err error) Insight {
	problem := "Unexpected error"
	switch model.KindOf(err) {
	case model.KindInvalidFilter:
		problem = "Invalid filter"
	case model.KindDataUnavailable:
		problem = "No data for the current selection"
	case model.KindComputationFailure:
		problem = "Statistics could not be computed"
	}
	in := Insight{Title: title}
	in.add("Status", "%s", problem)
	if err != nil {
		in.add("Details", "%s", err.Error())
	}
	return in
}

type summarizer func(d view.Derived) Insight

var summarizers = [model.ModeCount]summarizer{
	model.ModeTemperatureMap:        temperatureCountries,
	model.ModeTemperatureComparison: temperatureCountries,
	model.ModeTemperatureTrend:      temperatureTrend,
	model.ModeTemperatureRegional:   temperatureRegional,
	model.ModeSeaLevelSeries:        seaLevelSeries,
	model.ModeSeaLevelProjection:    seaLevelProjection,
	model.ModeSeaLevelRate:          seaLevelRate,
	model.ModeSeaLevelSeasonal:      seaLevelSeasonal,
	model.ModeEmissionsCountry:      emissionsCountry,
	model.ModeEmissionsTrend:        emissionsTrend,
	model.ModeEmissionsRegion:       emissionsRegion,
	model.ModeCorrelationTime:       correlationTime,
	model.ModeCorrelationMatrix:     correlationMatrix,
	model.ModeCorrelationScatter:    correlationScatter,
	model.ModeCorrelationDashboard:  correlationDashboard,
}

// Summarize computes the insight for d. It never panics on small views:
// anything with fewer than two primary rows is InsufficientData.
func Summarize(d view.Derived) Insight {
	title := d.Filter.Title()
	if !d.Mode.Valid() || summarizers[d.Mode] == nil {
		return InsufficientData(title)
	}
	if d.Primary.Len() < 2 {
		return InsufficientData(title)
	}
	in := summarizers[d.Mode](d)
	in.Title = title
	return in
}

// StrengthLabel names the strength of a correlation coefficient. Cutoffs
// are strict: |r| = 0.8 is "strong".
func StrengthLabel(r float64) string {
	a := math.Abs(r)
	switch {
	case a > 0.8:
		return "very strong"
	case a > 0.6:
		return "strong"
	case a > 0.4:
		return "moderate"
	case a > 0.2:
		return "weak"
	default:
		return "very weak"
	}
}

// FitLabel names the quality of a regression by its R².
func FitLabel(r2 float64) string {
	switch {
	case r2 > 0.7:
		return "Strong"
	case r2 > 0.4:
		return "Moderate"
	default:
		return "Weak"
	}
}

// Direction words a signed change.
func Direction(delta float64) string {
	switch {
	case delta > 0:
		return "increased"
	case delta < 0:
		return "decreased"
	default:
		return "unchanged"
	}
}

var printer = message.NewPrinter(language.English)

// Number formats v with thousands separators and the given decimals.
func Number(v float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// Signed is Number with an explicit sign for positive values.
func Signed(v float64, decimals int) string {
	if v > 0 {
		return "+" + Number(v, decimals)
	}
	return Number(v, decimals)
}

// Percent formats a percentage change, or Undefined.
func Percent(pct float64, ok bool) string {
	if !ok {
		return Undefined
	}
	return Signed(pct, 1) + "%"
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func joinNames(names []string) string { return strings.Join(names, ", ") }
