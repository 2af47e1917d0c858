package moment_test

import (
	"testing"

	boundary "github.com/matchreel/matchreel/internal/domain/boundary"
	"github.com/matchreel/matchreel/internal/domain/lead"
	"github.com/matchreel/matchreel/internal/domain/model"
	moment "github.com/matchreel/matchreel/internal/domain/moment"
	. "github.com/smartystreets/goconvey/convey"
)

var tiers = []int{3, 6, 10, 16}

func testBudget() moment.Budget {
	return moment.Budget{
		RunMinPoints:  8,
		MinPlays:      3,
		MaxPerPeriod:  6,
		MaxPerContest: 25,
	}
}

func scored(seq, period, home, away int) model.Play {
	return model.Play{
		Sequence: seq,
		Period:   period,
		Category: "shot-made",
		Score:    &model.Score{Home: home, Away: away},
	}
}

func quiet(seq, period int) model.Play {
	return model.Play{Sequence: seq, Period: period, Category: "rebound"}
}

func cuts(bs ...boundary.Boundary) boundary.Detection {
	return boundary.Detection{Boundaries: bs}
}

func TestBudgetValidate(t *testing.T) {
	Convey("Given moment budgets", t, func() {
		Convey("The default-shaped budget is accepted", func() {
			So(testBudget().Validate(), ShouldBeNil)
		})

		Convey("Non-positive ceilings are rejected", func() {
			b := testBudget()
			b.MaxPerContest = 0
			So(b.Validate(), ShouldNotBeNil)

			b = testBudget()
			b.MinPlays = 0
			So(b.Validate(), ShouldNotBeNil)
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given the moment builder", t, func() {
		Convey("When no plays exist", func() {
			So(moment.Build(nil, cuts(), tiers, testBudget()), ShouldBeNil)
		})

		Convey("When boundaries partition the plays", func() {
			plays := []model.Play{
				scored(1, 1, 2, 0),
				quiet(2, 1),
				scored(3, 1, 4, 0),
				scored(4, 1, 4, 5), // flip cut opens here
				quiet(5, 1),
				scored(6, 1, 4, 7),
			}
			det := cuts(
				boundary.Boundary{Sequence: 1, Kind: boundary.KindPeriodStart},
				boundary.Boundary{Sequence: 4, Kind: boundary.KindFlip},
			)
			moments := moment.Build(plays, det, tiers, testBudget())

			Convey("Then each cut opens a new moment", func() {
				So(len(moments), ShouldEqual, 2)
				So(moments[0].Plays, ShouldResemble, []int{1, 2, 3})
				So(moments[1].Plays, ShouldResemble, []int{4, 5, 6})
			})

			Convey("And the opening boundary sets the category", func() {
				So(moments[0].Category, ShouldEqual, moment.CategoryNeutral)
				So(moments[1].Category, ShouldEqual, moment.CategoryFlip)
				So(moments[1].AlwaysSignificant, ShouldBeTrue)
			})

			Convey("And scores chain across moments", func() {
				So(moments[0].ScoreBefore, ShouldResemble, model.Score{})
				So(moments[0].ScoreAfter, ShouldResemble, model.Score{Home: 4, Away: 0})
				So(moments[1].ScoreBefore, ShouldResemble, moments[0].ScoreAfter)
				So(moments[1].ScoreAfter, ShouldResemble, model.Score{Home: 4, Away: 7})
			})

			Convey("And the clock range spans the moment", func() {
				So(moments[0].Clock.StartPeriod, ShouldEqual, 1)
				So(moments[0].Clock.EndPeriod, ShouldEqual, 1)
			})
		})

		Convey("When a side scores unanswered points past the run floor", func() {
			plays := []model.Play{
				scored(1, 2, 3, 0),
				scored(2, 2, 6, 0),
				scored(3, 2, 9, 0),
				quiet(4, 2),
			}
			det := cuts(boundary.Boundary{Sequence: 1, Kind: boundary.KindPeriodStart})
			moments := moment.Build(plays, det, tiers, testBudget())

			Convey("Then run info is attached", func() {
				So(len(moments), ShouldEqual, 1)
				So(moments[0].Run, ShouldNotBeNil)
				So(moments[0].Run.Side, ShouldEqual, lead.SideHome)
				So(moments[0].Run.Points, ShouldEqual, 9)
				So(moments[0].Run.Unanswered, ShouldBeTrue)
			})
		})

		Convey("When the streak stays under the run floor", func() {
			plays := []model.Play{
				scored(1, 2, 12, 10),
				scored(2, 2, 14, 10),
				scored(3, 2, 14, 12),
			}
			det := cuts(boundary.Boundary{Sequence: 1, Kind: boundary.KindPeriodStart})
			moments := moment.Build(plays, det, tiers, testBudget())

			Convey("Then no run info is reported", func() {
				So(len(moments), ShouldEqual, 1)
				So(moments[0].Run, ShouldBeNil)
			})
		})

		Convey("When a lead-build moment jumps two tiers", func() {
			plays := []model.Play{
				scored(1, 1, 2, 0),
				scored(2, 1, 12, 0), // margin 2 -> 12: tier 0 -> 3
			}
			det := cuts(
				boundary.Boundary{Sequence: 1, Kind: boundary.KindPeriodStart},
				boundary.Boundary{Sequence: 2, Kind: boundary.KindTierUp},
			)
			moments := moment.Build(plays, det, tiers, testBudget())

			Convey("Then the surge is flagged always-significant", func() {
				So(len(moments), ShouldEqual, 2)
				So(moments[1].Category, ShouldEqual, moment.CategoryLeadBuild)
				So(moments[1].AlwaysSignificant, ShouldBeTrue)
			})
		})
	})
}
