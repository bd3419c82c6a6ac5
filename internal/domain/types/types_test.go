package types_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/climadash/internal/domain/model"
	types "github.com/okian/climadash/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func intp(v int) *int { return &v }

func TestEventRequest(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given event requests", t, func() {
		Convey("When a set_years request carries both bounds", func() {
			req := types.EventRequest{EventID: " e-1 ", Kind: "set_years", YearStart: intp(1990), YearEnd: intp(2000)}
			e, err := req.ToEvent(model.PageEmissions, now)

			Convey("Then it converts to a domain event", func() {
				So(err, ShouldBeNil)
				So(e.ID, ShouldEqual, "e-1")
				So(e.Kind, ShouldEqual, model.EventSetYears)
				So(e.YearStart, ShouldEqual, 1990)
				So(e.YearEnd, ShouldEqual, 2000)
				So(e.ReceivedAt, ShouldEqual, now)
			})
		})

		Convey("When a set_years request lacks year_end", func() {
			req := types.EventRequest{Kind: "set_years", YearStart: intp(1990)}
			_, err := req.ToEvent(model.PageEmissions, now)

			Convey("Then it is an invalid filter", func() {
				So(errors.Is(err, model.ErrInvalidFilter), ShouldBeTrue)
			})
		})

		Convey("When set_year uses year zero explicitly", func() {
			req := types.EventRequest{Kind: "set_year", Year: intp(0)}
			e, err := req.ToEvent(model.PageTemperature, now)

			Convey("Then the zero is kept", func() {
				So(err, ShouldBeNil)
				So(e.Year, ShouldEqual, 0)
			})
		})

		Convey("When set_mode names a mode of another page", func() {
			req := types.EventRequest{Kind: "set_mode", Mode: "sea_level.rate"}
			_, err := req.ToEvent(model.PageEmissions, now)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrInvalidFilter), ShouldBeTrue)
			})
		})

		Convey("When set_mode names an unknown mode", func() {
			req := types.EventRequest{Kind: "set_mode", Mode: "emissions.pie"}
			_, err := req.ToEvent(model.PageEmissions, now)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrInvalidFilter), ShouldBeTrue)
			})
		})

		Convey("When the kind is unknown", func() {
			_, err := types.EventRequest{Kind: "zoom"}.ToEvent(model.PageEmissions, now)

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When play targets a page without animation", func() {
			_, err := types.EventRequest{Kind: "play"}.ToEvent(model.PageSeaLevel, now)

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestModes(t *testing.T) {
	Convey("Given the emissions page", t, func() {
		ms := types.Modes(model.PageEmissions)

		Convey("Then its three modes are listed in order", func() {
			So(ms, ShouldHaveLength, 3)
			So(ms[0].Name, ShouldEqual, "emissions.country")
			So(ms[0].Title, ShouldEqual, "CO2 emissions by country")
		})
	})
}
