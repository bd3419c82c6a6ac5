package insight

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
	"github.com/okian/climadash/internal/domain/view"
	. "github.com/smartystreets/goconvey/convey"
)

func single(name, key, unit string, rows ...view.Row) view.View {
	return view.View{Name: name, Columns: []view.Column{{Key: key, Label: key, Unit: unit}}, Rows: rows}
}

func derived(mode model.Mode, primary view.View) view.Derived {
	return view.Derived{Mode: mode, Filter: model.NewFilter(mode, 1990, 2018), Primary: primary}
}

func TestStrengthLabel(t *testing.T) {
	Convey("Given correlation coefficients at the cutoffs", t, func() {
		cases := []struct {
			r    float64
			want string
		}{
			{0.81, "very strong"},
			{0.8, "strong"},
			{-0.8, "strong"},
			{0.6, "moderate"},
			{0.4, "weak"},
			{0.2, "very weak"},
			{0, "very weak"},
			{-0.95, "very strong"},
		}
		for _, c := range cases {
			Convey(fmt.Sprintf("r=%v is %s", c.r, c.want), func() {
				So(StrengthLabel(c.r), ShouldEqual, c.want)
			})
		}
	})
}

func TestFitLabel(t *testing.T) {
	Convey("Given R² values", t, func() {
		So(FitLabel(0.71), ShouldEqual, "Strong")
		So(FitLabel(0.7), ShouldEqual, "Moderate")
		So(FitLabel(0.4), ShouldEqual, "Weak")
	})
}

func TestFormatting(t *testing.T) {
	Convey("Given numbers to display", t, func() {
		So(Number(1234567.891, 2), ShouldEqual, "1,234,567.89")
		So(Number(580, 0), ShouldEqual, "580")
		So(Signed(2.5, 1), ShouldEqual, "+2.5")
		So(Signed(-2.5, 1), ShouldEqual, "-2.5")
		So(Percent(0, false), ShouldEqual, Undefined)
		So(Percent(12.34, true), ShouldEqual, "+12.3%")
	})
}

func TestSummarizeSmallViews(t *testing.T) {
	Convey("Given empty and single-row views", t, func() {
		for m := model.Mode(1); m < model.ModeCount; m++ {
			empty := Summarize(derived(m, view.View{}))
			one := Summarize(derived(m, single("v", "total", "", view.Row{Entity: "A", Year: 1990, Values: []float64{1}})))

			So(empty.Sufficient, ShouldBeFalse)
			So(one.Sufficient, ShouldBeFalse)
			So(empty.Map()["Status"], ShouldNotBeEmpty)
		}
	})

	Convey("Given an unknown mode", t, func() {
		in := Summarize(view.Derived{})
		So(in.Sufficient, ShouldBeFalse)
	})
}

func TestEmissionsInsights(t *testing.T) {
	Convey("Given country totals ordered ascending", t, func() {
		v := single("country_totals", "total", "kt CO2",
			view.Row{Entity: "CountryA", Values: []float64{290}},
			view.Row{Entity: "CountryB", Values: []float64{580}},
		)
		in := Summarize(derived(model.ModeEmissionsCountry, v))

		Convey("Then highest, lowest, difference and ratio are reported", func() {
			So(in.Sufficient, ShouldBeTrue)
			m := in.Map()
			So(m["Highest emissions"], ShouldEqual, "CountryB (580 kt CO2)")
			So(m["Lowest emissions"], ShouldEqual, "CountryA (290 kt CO2)")
			So(m["Difference"], ShouldEqual, "290 kt CO2")
			So(m["Ratio"], ShouldEqual, "2.0x")
			So(in.Title, ShouldEqual, "CO2 emissions by country, 1990-2018")
		})

		Convey("When the lowest total is zero", func() {
			v.Rows[0].Values[0] = 0
			in := Summarize(derived(model.ModeEmissionsCountry, v))

			Convey("Then the ratio is undefined", func() {
				So(in.Map()["Ratio"], ShouldEqual, Undefined)
			})
		})
	})

	Convey("Given a global trend", t, func() {
		v := single("global_totals", "emissions", "kt CO2",
			view.Row{Entity: "Global", Year: 1990, Values: []float64{100}},
			view.Row{Entity: "Global", Year: 2000, Values: []float64{150}},
		)
		d := derived(model.ModeEmissionsTrend, v)
		d.Fits = []view.NamedFit{{Name: "trend", Fit: stats.Fit{Slope: 5}}}
		m := Summarize(d).Map()

		Convey("Then change and direction are reported", func() {
			So(m["Total change"], ShouldEqual, "increased by 50 kt CO2 (+50.0%)")
			So(m["Average annual change"], ShouldEqual, "+5 kt CO2/yr")
			So(m["Overall trend"], ShouldEqual, "upward")
		})
	})

	Convey("Given per-country series with a zero baseline", t, func() {
		v := single("country_yearly", "emissions", "kt CO2",
			view.Row{Entity: "A", Year: 1990, Values: []float64{10}},
			view.Row{Entity: "B", Year: 1990, Values: []float64{0}},
			view.Row{Entity: "C", Year: 1990, Values: []float64{10}},
			view.Row{Entity: "A", Year: 2000, Values: []float64{20}},
			view.Row{Entity: "B", Year: 2000, Values: []float64{5}},
			view.Row{Entity: "C", Year: 2000, Values: []float64{5}},
		)
		m := Summarize(derived(model.ModeEmissionsTrend, v)).Map()

		Convey("Then growth is ranked and the zero baseline is undefined", func() {
			So(m["Highest growth"], ShouldEqual, "A (+100.0%)")
			So(m["Lowest growth"], ShouldEqual, "C (-50.0%)")
			So(m["Undefined growth"], ShouldEqual, "B")
		})
	})

	Convey("Given regional series", t, func() {
		v := single("region_yearly", "emissions", "kt CO2",
			view.Row{Entity: "Asia", Year: 2000, Values: []float64{100}},
			view.Row{Entity: "Europe", Year: 2000, Values: []float64{200}},
			view.Row{Entity: "Asia", Year: 2001, Values: []float64{300}},
			view.Row{Entity: "Europe", Year: 2001, Values: []float64{210}},
		)
		in := Summarize(derived(model.ModeEmissionsRegion, v))

		Convey("Then the top region of the end year leads", func() {
			So(in.Items[0].Label, ShouldEqual, "Top region")
			So(in.Items[0].Value, ShouldEqual, "Asia in 2001 (300 kt CO2)")
			So(in.Map()["Highest growth"], ShouldEqual, "Asia (+200.0%)")
		})
	})
}

func TestTemperatureInsights(t *testing.T) {
	Convey("Given country means", t, func() {
		v := single("country_means", "temperature", "°C",
			view.Row{Entity: "A", Values: []float64{10}},
			view.Row{Entity: "B", Values: []float64{-2}},
			view.Row{Entity: "C", Values: []float64{22}},
		)
		m := Summarize(derived(model.ModeTemperatureMap, v)).Map()

		So(m["Global average"], ShouldEqual, "10.00 °C")
		So(m["Coldest country"], ShouldEqual, "B (-2.00 °C)")
		So(m["Hottest country"], ShouldEqual, "C (22.00 °C)")
	})

	Convey("Given state means of one country", t, func() {
		v := single("state_means", "temperature", "°C",
			view.Row{Entity: "Alaska", Values: []float64{-3}},
			view.Row{Entity: "Florida", Values: []float64{23}},
			view.Row{Entity: "Ohio", Values: []float64{11}},
		)
		d := derived(model.ModeTemperatureRegional, v)
		d.Entities = []string{"United States"}
		m := Summarize(d).Map()

		So(m["Country average temperature"], ShouldEqual, "10.33 °C")
		So(m["Coldest region"], ShouldEqual, "Alaska (-3.00 °C)")
		So(m["Hottest region"], ShouldEqual, "Florida (23.00 °C)")
	})
}

func TestSeaLevelInsights(t *testing.T) {
	Convey("Given a monthly series with a significant trend", t, func() {
		v := single("monthly", "sea_level", "mm",
			view.Row{Year: 2000, Month: 1, Values: []float64{10}},
			view.Row{Year: 2010, Month: 1, Values: []float64{40}},
		)
		d := derived(model.ModeSeaLevelSeries, v)
		d.Fits = []view.NamedFit{{Name: "trend", Fit: stats.Fit{RSquared: 0.9, PValue: 0.001}}}
		m := Summarize(d).Map()

		So(m["Total change"], ShouldEqual, "+30.0 mm over 10.0 years")
		So(m["Average annual rate"], ShouldEqual, "+3.00 mm/yr")
		So(m["Trend fit"], ShouldEqual, "Strong (R² = 0.900)")
		So(m["Significance"], ShouldStartWith, "significant")
	})

	Convey("Given yearly rates that speed up", t, func() {
		v := single("yearly_rate", "rate", "mm/yr",
			view.Row{Year: 2001, Values: []float64{1}},
			view.Row{Year: 2002, Values: []float64{1}},
			view.Row{Year: 2003, Values: []float64{3}},
			view.Row{Year: 2004, Values: []float64{5}},
		)
		m := Summarize(derived(model.ModeSeaLevelRate, v)).Map()

		So(m["Fastest rise"], ShouldStartWith, "2004")
		So(m["Acceleration"], ShouldStartWith, "accelerating")
	})

	Convey("Given a seasonal pattern", t, func() {
		v := view.View{Name: "seasonal", Columns: []view.Column{{Key: "mean", Unit: "mm"}, {Key: "std", Unit: "mm"}}, Rows: []view.Row{
			{Month: 1, Values: []float64{1, 0}},
			{Month: 3, Values: []float64{5, 0}},
			{Month: 9, Values: []float64{-1, 0}},
		}}
		m := Summarize(derived(model.ModeSeaLevelSeasonal, v)).Map()

		So(m["Highest month"], ShouldEqual, "March (5.0 mm)")
		So(m["Lowest month"], ShouldEqual, "September (-1.0 mm)")
		So(m["Seasonal amplitude"], ShouldEqual, "6.0 mm")
	})
}

func TestCorrelationInsights(t *testing.T) {
	Convey("Given a combined view with a matrix", t, func() {
		v := view.View{Name: "combined", Columns: []view.Column{
			{Key: "temperature", Label: "Average temperature"},
			{Key: "sea_level", Label: "Sea level"},
			{Key: "emissions", Label: "CO2 emissions"},
		}, Rows: []view.Row{
			{Year: 1990, Values: []float64{10, 0, 100}},
			{Year: 2000, Values: []float64{11, 30, 150}},
		}}
		d := derived(model.ModeCorrelationMatrix, v)
		d.Correlation = &stats.Matrix{
			Labels: []string{"temperature", "sea_level", "emissions"},
			Values: [][]float64{{1, 0.8, 0.5}, {0.8, 1, 0.1}, {0.5, 0.1, 1}},
		}
		m := Summarize(d).Map()

		Convey("Then each pair is labelled with strict cutoffs", func() {
			So(m["Average temperature vs Sea level"], ShouldEqual, "0.800 (strong)")
			So(m["Average temperature vs CO2 emissions"], ShouldEqual, "0.500 (moderate)")
			So(m["Sea level vs CO2 emissions"], ShouldEqual, "0.100 (very weak)")
		})

		Convey("Then the time mode reports undefined change from a zero baseline", func() {
			d.Mode = model.ModeCorrelationTime
			m := Summarize(d).Map()
			So(m["Sea level change"], ShouldEndWith, "(undefined)")
			So(m["CO2 emissions change"], ShouldEqual, "+50.00 (+50.0%)")
		})

		Convey("Then the dashboard reports rates and peaks", func() {
			d.Mode = model.ModeCorrelationDashboard
			m := Summarize(d).Map()
			So(m["Sea level rate"], ShouldEqual, "+3.000/yr")
			So(m["Average temperature peak"], ShouldEqual, "2000")
		})
	})
}

func TestFallback(t *testing.T) {
	Convey("Given pipeline failures", t, func() {
		in := Fallback("Emissions", fmt.Errorf("check: %w", model.ErrInvalidFilter))

		So(in.Sufficient, ShouldBeFalse)
		So(in.Map()["Status"], ShouldEqual, "Invalid filter")
		So(in.Map()["Details"], ShouldContainSubstring, "invalid filter")
		So(Fallback("x", errors.New("boom")).Map()["Status"], ShouldEqual, "Unexpected error")
	})
}
