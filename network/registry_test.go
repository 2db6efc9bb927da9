package network

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Registry", t, func() {
		registry := NewRegistry()

		Convey("Abort on an absent key is a no-op", func() {
			So(func() { registry.Abort("missing") }, ShouldNotPanic)
		})

		Convey("Abort cancels every handle under the key and clears it", func() {
			first, second := false, false
			registry.Add("fetch", func() { first = true })
			registry.Add("fetch", func() { second = true })
			So(registry.Count("fetch"), ShouldEqual, 2)

			registry.Abort("fetch")

			So(first, ShouldBeTrue)
			So(second, ShouldBeTrue)
			So(registry.Count("fetch"), ShouldEqual, 0)
		})

		Convey("Abort leaves other keys untouched", func() {
			touched := false
			registry.Add("fetch", func() { touched = true })
			registry.Add("download", func() {})

			registry.Abort("download")

			So(touched, ShouldBeFalse)
			So(registry.Count("fetch"), ShouldEqual, 1)
		})

		Convey("Aborting twice cancels only once", func() {
			calls := 0
			registry.Add("fetch", func() { calls++ })

			registry.Abort("fetch")
			registry.Abort("fetch")

			So(calls, ShouldEqual, 1)
		})

		Convey("AbortAll cancels every key", func() {
			ctxA, cancelA := context.WithCancel(context.Background())
			ctxB, cancelB := context.WithCancel(context.Background())
			registry.Add("a", cancelA)
			registry.Add("b", cancelB)

			registry.AbortAll()

			So(ctxA.Err(), ShouldNotBeNil)
			So(ctxB.Err(), ShouldNotBeNil)
			So(registry.Count("a"), ShouldEqual, 0)
			So(registry.Count("b"), ShouldEqual, 0)
		})
	})
}
