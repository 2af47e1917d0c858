package model_test

import (
	"testing"

	model "github.com/matchreel/matchreel/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseClock(t *testing.T) {
	Convey("Given remaining-time clocks", t, func() {
		Convey("Well-formed clocks parse to seconds", func() {
			cases := map[string]float64{
				"12:00": 720,
				"00:00": 0,
				"05:30": 330,
				"0:45":  45,
				"11:59": 719,
			}
			for clock, want := range cases {
				got, ok := model.ParseClock(clock)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Fractional seconds are kept", func() {
			got, ok := model.ParseClock("00:24.7")
			So(ok, ShouldBeTrue)
			So(got, ShouldAlmostEqual, 24.7, 1e-9)
		})

		Convey("Malformed clocks are rejected", func() {
			for _, clock := range []string{"", "720", "xx:yy", "-1:30", "01:60", "01:-5"} {
				_, ok := model.ParseClock(clock)
				So(ok, ShouldBeFalse)
			}
		})
	})
}
