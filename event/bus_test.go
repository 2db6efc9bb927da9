package event

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestChannel(t *testing.T) {
	Convey("Channel", t, func() {
		var ch Channel[int]

		Convey("Emit with no subscribers is a no-op", func() {
			So(func() { ch.Emit(1) }, ShouldNotPanic)
		})

		Convey("delivers to every subscriber in subscription order", func() {
			var order []string
			ch.On(func(v int) { order = append(order, "first") })
			ch.On(func(v int) { order = append(order, "second") })

			ch.Emit(1)

			So(order, ShouldResemble, []string{"first", "second"})
		})

		Convey("delivery is synchronous on the emitter's goroutine", func() {
			var got int
			ch.On(func(v int) { got = v })

			ch.Emit(42)

			So(got, ShouldEqual, 42)
		})

		Convey("the returned function unsubscribes", func() {
			calls := 0
			off := ch.On(func(v int) { calls++ })

			ch.Emit(1)
			off()
			ch.Emit(2)

			So(calls, ShouldEqual, 1)
		})

		Convey("unsubscribing twice is safe", func() {
			off := ch.On(func(v int) {})
			off()
			So(off, ShouldNotPanic)
		})

		Convey("unsubscribing one listener leaves the rest", func() {
			first, second := 0, 0
			off := ch.On(func(v int) { first++ })
			ch.On(func(v int) { second++ })

			off()
			ch.Emit(1)

			So(first, ShouldEqual, 0)
			So(second, ShouldEqual, 1)
		})
	})
}

func TestBus(t *testing.T) {
	Convey("Bus", t, func() {
		bus := NewBus()

		Convey("Start carries the chapter and payload", func() {
			var got StartRequest
			bus.Start.On(func(req StartRequest) { got = req })

			bus.Start.Emit(StartRequest{ChapterID: 36, Payload: &StartPayload{StartFromAyah: 9}})

			So(got.ChapterID, ShouldEqual, 36)
			So(got.Payload.StartFromAyah, ShouldEqual, 9)
		})

		Convey("Play and Pause are independent channels", func() {
			plays, pauses := 0, 0
			bus.Play.On(func(struct{}) { plays++ })
			bus.Pause.On(func(struct{}) { pauses++ })

			bus.Play.Emit(struct{}{})
			bus.Play.Emit(struct{}{})
			bus.Pause.Emit(struct{}{})

			So(plays, ShouldEqual, 2)
			So(pauses, ShouldEqual, 1)
		})
	})
}
