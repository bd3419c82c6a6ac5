package model_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	model "github.com/okian/climadash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewTable(t *testing.T) {
	Convey("Given raw records", t, func() {
		recs := []model.Record{
			{Entity: "B", Year: 2001, Value: 2},
			{Entity: "A", Year: 2001, Value: 1},
			{Entity: "A", Year: 2000, Value: 3},
		}

		Convey("When building a table", func() {
			tbl, err := model.NewTable("test", model.MetricEmissions, recs)

			Convey("Then records are ordered by year then entity", func() {
				So(err, ShouldBeNil)
				So(tbl.Len(), ShouldEqual, 3)
				So(tbl.At(0), ShouldResemble, model.Record{Entity: "A", Year: 2000, Value: 3})
				So(tbl.At(1).Entity, ShouldEqual, "A")
				So(tbl.At(2).Entity, ShouldEqual, "B")
			})

			Convey("Then bounds and entities are derived", func() {
				lo, hi := tbl.YearBounds()
				So(lo, ShouldEqual, 2000)
				So(hi, ShouldEqual, 2001)
				So(tbl.Entities(), ShouldResemble, []string{"A", "B"})
				So(tbl.HasEntity("B"), ShouldBeTrue)
				So(tbl.HasEntity("C"), ShouldBeFalse)
			})

			Convey("Then mutating the input does not affect the table", func() {
				recs[0].Value = 99
				got := tbl.Records()
				got[0].Value = -1
				So(tbl.At(2).Value, ShouldEqual, 2)
				So(tbl.At(0).Value, ShouldEqual, 3)
			})
		})

		Convey("When there are no records", func() {
			_, err := model.NewTable("empty", model.MetricEmissions, nil)

			Convey("Then the table is unavailable", func() {
				So(errors.Is(err, model.ErrDataUnavailable), ShouldBeTrue)
			})
		})

		Convey("When a record is malformed", func() {
			bad := [][]model.Record{
				{{Entity: "", Year: 2000}},
				{{Entity: "A", Year: 0}},
				{{Entity: "A", Year: 2000, Month: 13}},
				{{Entity: "A", Year: 2000, Value: math.NaN()}},
			}

			Convey("Then construction fails", func() {
				for _, b := range bad {
					_, err := model.NewTable("bad", model.MetricTemperature, b)
					So(err, ShouldNotBeNil)
				}
			})
		})
	})
}

func TestSourcesValidate(t *testing.T) {
	Convey("Given a source bundle", t, func() {
		mk := func(m model.Metric) *model.Table {
			tbl, err := model.NewTable(m.String(), m, []model.Record{{Entity: "A", Year: 2000, Value: 1}})
			So(err, ShouldBeNil)
			return tbl
		}

		Convey("When a source is missing", func() {
			src := model.Sources{Temperature: mk(model.MetricTemperature)}

			Convey("Then validation reports unavailable data", func() {
				So(errors.Is(src.Validate(), model.ErrDataUnavailable), ShouldBeTrue)
			})
		})

		Convey("When a source carries the wrong metric", func() {
			src := model.Sources{
				Temperature: mk(model.MetricTemperature),
				SeaLevel:    mk(model.MetricEmissions),
				Emissions:   mk(model.MetricEmissions),
			}

			Convey("Then validation fails", func() {
				So(src.Validate(), ShouldNotBeNil)
			})
		})

		Convey("When all sources are present", func() {
			src := model.Sources{
				Temperature: mk(model.MetricTemperature),
				SeaLevel:    mk(model.MetricSeaLevel),
				Emissions:   mk(model.MetricEmissions),
			}

			Convey("Then validation passes", func() {
				So(src.Validate(), ShouldBeNil)
			})
		})
	})
}

func TestFilterState(t *testing.T) {
	Convey("Given a filter state", t, func() {
		f := model.NewFilter(model.ModeEmissionsCountry, 1990, 2018)

		Convey("When the range is inverted", func() {
			inv := f.WithYears(2010, 2000)

			Convey("Then it is an invalid filter", func() {
				So(errors.Is(inv.Validate(), model.ErrInvalidFilter), ShouldBeTrue)
			})

			Convey("Then clamping keeps it inverted", func() {
				So(inv.Clamp(1990, 2018).Validate(), ShouldNotBeNil)
				So(f.WithYears(2050, 2040).Clamp(1990, 2018).Validate(), ShouldNotBeNil)
			})
		})

		Convey("When years fall outside the bounds", func() {
			c := f.WithYears(1950, 2050).Clamp(1990, 2018)

			Convey("Then they are clamped", func() {
				So(c.YearStart, ShouldEqual, 1990)
				So(c.YearEnd, ShouldEqual, 2018)
			})
		})

		Convey("When entities are replaced", func() {
			in := []string{"Peru", " Chile ", "", "Peru"}
			g := f.WithEntities(in)
			in[0] = "Mutated"

			Convey("Then they are normalised and not shared", func() {
				So(g.Entities, ShouldResemble, []string{"Chile", "Peru"})
				So(f.Entities, ShouldBeNil)
				So(g.Equal(f), ShouldBeFalse)
				So(g.Equal(f.WithEntities([]string{"Peru", "Chile"})), ShouldBeTrue)
			})

			Convey("Then the key is canonical", func() {
				So(g.Key(), ShouldEqual, "emissions.country|1990-2018|Chile,Peru")
			})
		})

		Convey("When the mode belongs to another page", func() {
			Convey("Then page validation fails", func() {
				So(f.ValidateFor(model.PageEmissions), ShouldBeNil)
				So(errors.Is(f.ValidateFor(model.PageSeaLevel), model.ErrInvalidFilter), ShouldBeTrue)
			})
		})
	})
}

func TestModes(t *testing.T) {
	Convey("Given the mode table", t, func() {
		Convey("Then every mode round-trips through its name and has a page", func() {
			for m := model.Mode(1); m < model.ModeCount; m++ {
				So(m.Page().Valid(), ShouldBeTrue)
				parsed, err := model.ParseMode(m.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, m)
			}
		})

		Convey("Then every page has a default mode of its own", func() {
			for _, p := range model.Pages() {
				So(p.DefaultMode().Page(), ShouldEqual, p)
				So(len(p.Modes()), ShouldBeGreaterThan, 0)
				parsed, err := model.ParsePage(p.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, p)
			}
		})

		Convey("Then unknown names are rejected", func() {
			_, err := model.ParseMode("pie")
			So(errors.Is(err, model.ErrInvalidFilter), ShouldBeTrue)
			_, err = model.ParsePage("home")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestKindOf(t *testing.T) {
	Convey("Given wrapped errors", t, func() {
		So(model.KindOf(nil), ShouldEqual, "")
		So(model.KindOf(fmt.Errorf("x: %w", model.ErrInvalidFilter)), ShouldEqual, model.KindInvalidFilter)
		So(model.KindOf(fmt.Errorf("x: %w", model.ErrDataUnavailable)), ShouldEqual, model.KindDataUnavailable)
		So(model.KindOf(fmt.Errorf("x: %w", model.ErrComputationFailure)), ShouldEqual, model.KindComputationFailure)
		So(model.KindOf(errors.New("boom")), ShouldEqual, model.KindInternal)
	})
}

func TestFilterTitle(t *testing.T) {
	Convey("Given filters over one and many years", t, func() {
		So(model.NewFilter(model.ModeEmissionsTrend, 1990, 2018).Title(), ShouldEqual, "CO2 emissions trend, 1990-2018")
		So(model.NewFilter(model.ModeTemperatureMap, 2000, 2000).Title(), ShouldEqual, "Average temperature by country, 2000")
	})
}
