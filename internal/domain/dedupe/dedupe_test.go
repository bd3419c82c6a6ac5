package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/climadash/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should be empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording events", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then a new id is not seen and a repeat is", func() {
				So(d.SeenAndRecord(ctx, "emissions/event-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "emissions/event-1"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "sea_level/event-1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})

			Convey("Then an unrecorded id can be recorded again", func() {
				d.SeenAndRecord(ctx, "a")
				d.Unrecord(ctx, "a")
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
				d.Unrecord(ctx, "missing")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the deduper is bounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := range 4 {
				d.SeenAndRecord(ctx, fmt.Sprintf("id-%d", i))
			}

			Convey("Then the oldest id is forgotten first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "id-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "id-1"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "id-0"), ShouldBeFalse)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := range 5000 {
				d.SeenAndRecord(ctx, fmt.Sprintf("id-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 5000)
				So(d.SeenAndRecord(ctx, "id-0"), ShouldBeTrue)
			})
		})

		Convey("When used concurrently", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range 50 {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("id-%d", i)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then every id is recorded exactly once", func() {
				So(fresh, ShouldEqual, 50)
				So(d.Size(), ShouldEqual, 50)
			})
		})
	})
}
