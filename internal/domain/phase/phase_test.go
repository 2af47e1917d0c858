package phase_test

import (
	"testing"
	"time"

	phase "github.com/matchreel/matchreel/internal/domain/phase"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)

func testProfile() phase.TimingProfile {
	return phase.TimingProfile{
		Periods:            4,
		PeriodLength:       12 * time.Minute,
		PeriodWall:         32 * time.Minute,
		IntermissionLength: 3 * time.Minute,
		OvertimeLength:     5 * time.Minute,
		OvertimeWall:       15 * time.Minute,
		PregameBuffer:      90 * time.Minute,
		PostgameBuffer:     120 * time.Minute,
	}
}

func TestPhaseOrder(t *testing.T) {
	Convey("Given the phase total order", t, func() {
		Convey("Narrative order holds across families", func() {
			seq := []phase.Phase{
				phase.Pregame,
				phase.Period(1),
				phase.Intermission(1),
				phase.Period(2),
				phase.Intermission(2),
				phase.Period(4),
				phase.Overtime(1),
				phase.Overtime(2),
				phase.Postgame,
				phase.Unknown,
			}
			for i := 1; i < len(seq); i++ {
				So(seq[i-1].Before(seq[i]), ShouldBeTrue)
				So(seq[i].Before(seq[i-1]), ShouldBeFalse)
			}
		})

		Convey("Every overtime sorts after every regulation phase", func() {
			So(phase.Period(10).Before(phase.Overtime(1)), ShouldBeTrue)
			So(phase.Intermission(10).Before(phase.Overtime(1)), ShouldBeTrue)
		})
	})
}

func TestPhaseLabels(t *testing.T) {
	Convey("Given phase labels", t, func() {
		Convey("They render the compact form", func() {
			So(phase.Pregame.String(), ShouldEqual, "pregame")
			So(phase.Period(3).String(), ShouldEqual, "period-3")
			So(phase.Intermission(1).String(), ShouldEqual, "intermission-1")
			So(phase.Overtime(2).String(), ShouldEqual, "overtime-2")
			So(phase.Postgame.String(), ShouldEqual, "postgame")
			So(phase.Unknown.String(), ShouldEqual, "unknown")
		})

		Convey("And parse back losslessly", func() {
			for _, p := range []phase.Phase{
				phase.Pregame, phase.Period(2), phase.Intermission(3),
				phase.Overtime(1), phase.Postgame, phase.Unknown,
			} {
				var got phase.Phase
				So(got.UnmarshalText([]byte(p.String())), ShouldBeNil)
				So(got, ShouldResemble, p)
			}
		})

		Convey("Garbage is rejected", func() {
			var got phase.Phase
			So(got.UnmarshalText([]byte("halftime-show")), ShouldNotBeNil)
		})
	})
}

func TestProfileValidate(t *testing.T) {
	Convey("Given timing profiles", t, func() {
		Convey("The default-shaped profile is accepted", func() {
			So(testProfile().Validate(), ShouldBeNil)
		})

		Convey("Non-positive durations are rejected", func() {
			p := testProfile()
			p.Periods = 0
			So(p.Validate(), ShouldNotBeNil)

			p = testProfile()
			p.PeriodWall = 0
			So(p.Validate(), ShouldNotBeNil)

			p = testProfile()
			p.PostgameBuffer = -time.Minute
			So(p.Validate(), ShouldNotBeNil)
		})
	})
}

func TestForPeriod(t *testing.T) {
	Convey("Given a four-period profile", t, func() {
		p := testProfile()

		Convey("Regulation periods map directly", func() {
			So(p.ForPeriod(1), ShouldResemble, phase.Period(1))
			So(p.ForPeriod(4), ShouldResemble, phase.Period(4))
		})

		Convey("Periods past regulation are overtime", func() {
			So(p.ForPeriod(5), ShouldResemble, phase.Overtime(1))
			So(p.ForPeriod(7), ShouldResemble, phase.Overtime(3))
		})

		Convey("Nonsense periods are unknown", func() {
			So(p.ForPeriod(0), ShouldResemble, phase.Unknown)
			So(p.ForPeriod(-2), ShouldResemble, phase.Unknown)
		})
	})
}

func TestWindows(t *testing.T) {
	Convey("Given the window layout", t, func() {
		Convey("When the contest ends in regulation", func() {
			ws := phase.Windows(testProfile(), start, 0)

			Convey("Then the layout brackets play with buffers", func() {
				// pregame + 4 periods + 3 intermissions + postgame
				So(len(ws), ShouldEqual, 9)
				So(ws[0].Phase, ShouldResemble, phase.Pregame)
				So(ws[len(ws)-1].Phase, ShouldResemble, phase.Postgame)
			})

			Convey("And windows are contiguous", func() {
				for i := 1; i < len(ws); i++ {
					So(ws[i].Start, ShouldResemble, ws[i-1].End)
				}
			})

			Convey("And no intermission follows the final period", func() {
				So(ws[len(ws)-2].Phase, ShouldResemble, phase.Period(4))
			})
		})

		Convey("When overtimes were played", func() {
			ws := phase.Windows(testProfile(), start, 2)

			Convey("Then overtime windows precede postgame", func() {
				So(len(ws), ShouldEqual, 11)
				So(ws[len(ws)-3].Phase, ShouldResemble, phase.Overtime(1))
				So(ws[len(ws)-2].Phase, ShouldResemble, phase.Overtime(2))
				So(ws[len(ws)-1].Phase, ShouldResemble, phase.Postgame)
			})
		})
	})
}

func TestLocate(t *testing.T) {
	Convey("Given a laid-out contest", t, func() {
		ws := phase.Windows(testProfile(), start, 0)

		Convey("A time inside a window returns that phase", func() {
			ph, windowStart := phase.Locate(ws, start.Add(10*time.Minute))
			So(ph, ShouldResemble, phase.Period(1))
			So(windowStart, ShouldResemble, start)
		})

		Convey("Window starts are inclusive, ends exclusive", func() {
			ph, _ := phase.Locate(ws, start.Add(32*time.Minute))
			So(ph, ShouldResemble, phase.Intermission(1))
		})

		Convey("A time before every window clamps to pregame", func() {
			ph, _ := phase.Locate(ws, start.Add(-10*time.Hour))
			So(ph, ShouldResemble, phase.Pregame)
		})

		Convey("A time after every window clamps to postgame", func() {
			ph, _ := phase.Locate(ws, start.Add(10*time.Hour))
			So(ph, ShouldResemble, phase.Postgame)
		})

		Convey("No windows means no phase", func() {
			ph, _ := phase.Locate(nil, start)
			So(ph, ShouldResemble, phase.Unknown)
		})
	})
}
