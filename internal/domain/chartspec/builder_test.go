package chartspec_test

import (
	"context"
	"testing"

	"github.com/okian/climadash/internal/domain/chartspec"
	"github.com/okian/climadash/internal/domain/model"
	"github.com/okian/climadash/internal/domain/stats"
	"github.com/okian/climadash/internal/domain/view"
	"github.com/smartystreets/goconvey/convey"
)

func sources() model.Sources {
	var temp, sea, emis []model.Record
	for y := 1990; y <= 2000; y++ {
		g := float64(y - 1990)
		temp = append(temp,
			model.Record{Entity: "Aland", Year: y, Month: 1, Value: 10 + 0.1*g},
			model.Record{Entity: "Borduria", Year: y, Month: 1, Value: 2 + 0.3*g*g})
		for m := 1; m <= 12; m++ {
			sea = append(sea, model.Record{Entity: model.GlobalEntity, Year: y, Month: m, Value: 3*g + float64(m%4)})
		}
		emis = append(emis,
			model.Record{Entity: "China", Year: y, Value: 100 + 40*g},
			model.Record{Entity: "Japan", Year: y, Value: 80 + g*g})
	}
	mk := func(m model.Metric, recs []model.Record) *model.Table {
		t, err := model.NewTable(m.String(), m, recs)
		convey.So(err, convey.ShouldBeNil)
		return t
	}
	var states []model.Record
	for y := 1990; y <= 2000; y++ {
		states = append(states,
			model.Record{Entity: "Nord", Year: y, Month: 1, Value: -4},
			model.Record{Entity: "Sud", Year: y, Month: 1, Value: 18})
	}
	return model.Sources{
		Temperature: mk(model.MetricTemperature, temp),
		SeaLevel:    mk(model.MetricSeaLevel, sea),
		Emissions:   mk(model.MetricEmissions, emis),
		States:      map[string]*model.Table{"Aland": mk(model.MetricTemperature, states)},
	}
}

func TestBuildEveryMode(t *testing.T) {
	convey.Convey("Given derived views for every mode", t, func() {
		b, err := view.NewBuilder(sources())
		convey.So(err, convey.ShouldBeNil)

		for m := model.Mode(1); m < model.ModeCount; m++ {
			lo, hi := b.Bounds(m.Page())
			d, err := b.Build(context.Background(), model.NewFilter(m, lo, hi))
			convey.So(err, convey.ShouldBeNil)
			s := chartspec.Build(d)

			convey.So(s.Family, convey.ShouldEqual, chartspec.Families[m])
			convey.So(s.Title, convey.ShouldStartWith, m.Title())
			if s.Family != chartspec.FamilyHeatmap {
				convey.So(len(s.Series), convey.ShouldBeGreaterThan, 0)
			}
			for _, series := range s.Series {
				convey.So(series.Color, convey.ShouldNotBeEmpty)
			}
		}
	})
}

func TestBuildShapes(t *testing.T) {
	convey.Convey("Given the chart builder", t, func() {
		b, err := view.NewBuilder(sources())
		convey.So(err, convey.ShouldBeNil)
		ctx := context.Background()

		convey.Convey("When building per-country emissions bars", func() {
			d, err := b.Build(ctx, model.NewFilter(model.ModeEmissionsCountry, 1990, 2000))
			convey.So(err, convey.ShouldBeNil)
			s := chartspec.Build(d)

			convey.Convey("Then bars are horizontal and keep row order", func() {
				convey.So(s.Orientation, convey.ShouldEqual, chartspec.Horizontal)
				convey.So(s.Series[0].Points[0].Label, convey.ShouldEqual, "Japan")
				convey.So(s.Series[0].Points[1].Label, convey.ShouldEqual, "China")
			})
		})

		convey.Convey("When building per-country trends", func() {
			d, err := b.Build(ctx, model.NewFilter(model.ModeEmissionsTrend, 1990, 2000).WithEntities([]string{"China", "Japan"}))
			convey.So(err, convey.ShouldBeNil)
			s := chartspec.Build(d)

			convey.Convey("Then each country is one continuous series", func() {
				convey.So(len(s.Series), convey.ShouldEqual, 2)
				convey.So(s.Series[0].Name, convey.ShouldEqual, "China")
				convey.So(len(s.Series[0].Points), convey.ShouldEqual, 11)
				convey.So(s.Series[0].Points[0].X, convey.ShouldEqual, 1990)
				convey.So(s.Series[0].Color, convey.ShouldNotEqual, s.Series[1].Color)
			})
		})

		convey.Convey("When building the correlation time chart", func() {
			d, err := b.Build(ctx, model.NewFilter(model.ModeCorrelationTime, 1990, 2000))
			convey.So(err, convey.ShouldBeNil)
			s := chartspec.Build(d)

			convey.Convey("Then a secondary axis is used", func() {
				convey.So(s.Y2Axis, convey.ShouldNotBeNil)
				convey.So(s.Series[0].Axis, convey.ShouldEqual, chartspec.AxisPrimary)
				convey.So(s.Series[1].Axis, convey.ShouldEqual, chartspec.AxisSecondary)
			})
		})

		convey.Convey("When building the heatmap", func() {
			d, err := b.Build(ctx, model.NewFilter(model.ModeCorrelationMatrix, 1990, 2000))
			convey.So(err, convey.ShouldBeNil)
			s := chartspec.Build(d)

			convey.Convey("Then the colour scale spans -1 to 1", func() {
				convey.So(s.Heatmap, convey.ShouldNotBeNil)
				convey.So(len(s.Heatmap.Labels), convey.ShouldEqual, 3)
				convey.So(s.ColorScale.Min, convey.ShouldEqual, -1)
				convey.So(s.ColorScale.Max, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When building the scatter matrix and dashboard", func() {
			sd, err := b.Build(ctx, model.NewFilter(model.ModeCorrelationScatter, 1990, 2000))
			convey.So(err, convey.ShouldBeNil)
			dd, err := b.Build(ctx, model.NewFilter(model.ModeCorrelationDashboard, 1990, 2000))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then there is a panel per regression and a 2x2 grid", func() {
				convey.So(len(chartspec.Build(sd).Panels), convey.ShouldEqual, 3)
				convey.So(len(chartspec.Build(dd).Panels), convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the view is empty", func() {
			s := chartspec.Build(view.Derived{Mode: model.ModeSeaLevelRate, Filter: model.NewFilter(model.ModeSeaLevelRate, 1990, 1990)})

			convey.Convey("Then a message chart is returned", func() {
				convey.So(s.Family, convey.ShouldEqual, chartspec.FamilyMessage)
				convey.So(s.Message, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the builder output is reused", func() {
			d := view.Derived{
				Mode:    model.ModeSeaLevelRate,
				Filter:  model.NewFilter(model.ModeSeaLevelRate, 1991, 1992),
				Primary: view.View{Columns: []view.Column{{Key: "rate", Label: "Rate"}}, Rows: []view.Row{{Year: 1991, Values: []float64{1}}, {Year: 1992, Values: []float64{2}}}},
				Fits:    []view.NamedFit{{Name: "unused", Fit: stats.Fit{}}},
			}

			convey.Convey("Then identical input yields identical output", func() {
				convey.So(chartspec.Build(d), convey.ShouldResemble, chartspec.Build(d))
				convey.So(chartspec.Build(d).Series[0].Points[1].Label, convey.ShouldEqual, "1992")
			})
		})
	})
}

func TestTemperatureScales(t *testing.T) {
	convey.Convey("Given temperature charts for two different years", t, func() {
		b, err := view.NewBuilder(sources())
		convey.So(err, convey.ShouldBeNil)
		ctx := context.Background()

		build := func(m model.Mode, year int) chartspec.Spec {
			d, err := b.Build(ctx, model.NewFilter(m, year, year))
			convey.So(err, convey.ShouldBeNil)
			return chartspec.Build(d)
		}

		convey.Convey("Then the map keeps a fixed -10..30 scale across frames", func() {
			first, last := build(model.ModeTemperatureMap, 1990), build(model.ModeTemperatureMap, 2000)
			convey.So(*first.ColorScale, convey.ShouldResemble, chartspec.ColorScale{Name: "RdBu_r", Min: -10, Max: 30})
			convey.So(*last.ColorScale, convey.ShouldResemble, *first.ColorScale)
		})

		convey.Convey("Then the comparison uses -20..40 with horizontal bars", func() {
			s := build(model.ModeTemperatureComparison, 1995)
			convey.So(s.ColorScale.Min, convey.ShouldEqual, -20)
			convey.So(s.ColorScale.Max, convey.ShouldEqual, 40)
			convey.So(s.Orientation, convey.ShouldEqual, chartspec.Horizontal)
		})

		convey.Convey("Then the regional detail names its country and its states", func() {
			s := build(model.ModeTemperatureRegional, 1995)
			convey.So(s.Family, convey.ShouldEqual, chartspec.FamilyChoropleth)
			convey.So(s.Title, convey.ShouldEqual, "Regional temperatures, 1995 - Aland")
			convey.So(s.YAxis.Title, convey.ShouldEqual, "Region")
			convey.So(s.ColorScale.Min, convey.ShouldEqual, -10)
			convey.So(s.Series[0].Points[0].Label, convey.ShouldEqual, "Nord")
			convey.So(s.Series[0].Points[1].Y, convey.ShouldEqual, 18)
		})
	})
}
