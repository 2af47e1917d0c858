package config_test

import (
	"context"
	"testing"
	"time"

	config "github.com/matchreel/matchreel/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("It validates as-is", func() {
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("Derived policies validate too", func() {
			So(cfg.TimingProfile().Validate(), ShouldBeNil)
			So(cfg.BoundaryPolicy().Validate(), ShouldBeNil)
			So(cfg.Budget().Validate(), ShouldBeNil)
		})

		Convey("Durations derive from minute fields", func() {
			So(cfg.TimingProfile().PeriodLength, ShouldEqual, 12*time.Minute)
			So(cfg.BoundaryPolicy().ClosingClockLimit, ShouldEqual, 2*time.Minute)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given configuration validation", t, func() {
		Convey("An empty listen address is rejected", func() {
			cfg := config.New()
			cfg.Addr = ""
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("Non-positive process sizes are rejected", func() {
			cfg := config.New()
			cfg.QueueSize = 0
			So(cfg.Validate(), ShouldNotBeNil)

			cfg = config.New()
			cfg.WorkerCount = -1
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("A broken tier table is rejected", func() {
			cfg := config.New()
			cfg.TierThresholds = []int{6, 3}
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("A broken timing profile is rejected", func() {
			cfg := config.New()
			cfg.PeriodMinutes = 0
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("A broken budget is rejected", func() {
			cfg := config.New()
			cfg.MaxMomentsPerContest = 0
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given the layered loader", t, func() {
		Convey("When nothing overrides the defaults", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the defaults come back validated", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9090")
				So(cfg.MaxMomentsPerContest, ShouldEqual, 25)
			})
		})

		Convey("When environment variables override fields", func() {
			t.Setenv("MATCHREEL_ADDR", ":7070")
			t.Setenv("MATCHREEL_CLOSING_SAFE_MARGIN", "14")
			cfg, err := config.Load(context.Background())

			Convey("Then the overrides win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.ClosingSafeMargin, ShouldEqual, 14)
			})

			Convey("And untouched fields keep their defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.QueueSize, ShouldEqual, 1_000)
			})
		})

		Convey("When an override breaks validation", func() {
			t.Setenv("MATCHREEL_QUEUE_SIZE", "0")
			_, err := config.Load(context.Background())

			Convey("Then loading fails before anything runs", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the config file path does not exist", func() {
			t.Setenv("MATCHREEL_CONFIG", "/nonexistent/matchreel.yaml")
			_, err := config.Load(context.Background())

			Convey("Then loading fails with a wrapped error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
