package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/matchreel/matchreel/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording submissions", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(100))

			Convey("And the submission is new", func() {
				seen := d.SeenAndRecord(context.Background(), "sub-1")

				Convey("Then it should return false and record the id", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the submission was already seen", func() {
				d.SeenAndRecord(context.Background(), "sub-1")
				seen := d.SeenAndRecord(context.Background(), "sub-1")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording a submission", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(100))
			d.SeenAndRecord(context.Background(), "sub-1")
			d.Unrecord(context.Background(), "sub-1")

			Convey("Then the id can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(context.Background(), "sub-1"), ShouldBeFalse)
			})
		})

		Convey("When the bounded cache overflows", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 0; i < 3; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("sub-%d", i))
			}
			d.SeenAndRecord(context.Background(), "sub-3")

			Convey("Then the oldest id is evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(context.Background(), "sub-0"), ShouldBeFalse)
				So(d.SeenAndRecord(context.Background(), "sub-3"), ShouldBeTrue)
			})
		})

		Convey("When used concurrently", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10_000))
			var wg sync.WaitGroup
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						d.SeenAndRecord(context.Background(), fmt.Sprintf("g%d-sub-%d", g, i))
					}
				}(g)
			}
			wg.Wait()

			Convey("Then every id is recorded exactly once", func() {
				So(d.Size(), ShouldEqual, 800)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 500; i++ {
				d.SeenAndRecord(context.Background(), fmt.Sprintf("sub-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 500)
				So(d.SeenAndRecord(context.Background(), "sub-0"), ShouldBeTrue)
			})
		})
	})
}
