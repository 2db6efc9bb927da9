package util

import (
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("Al-Fatihah?.mp3"), ShouldEqual, "Al-Fatihah_.mp3")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("file__name.mp3"), ShouldEqual, "file_name.mp3")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
	})
}

func TestFormatPlaybackTimer(t *testing.T) {
	Convey("FormatPlaybackTimer", t, func() {
		So(FormatPlaybackTimer(0), ShouldEqual, "00:00")
		So(FormatPlaybackTimer(59), ShouldEqual, "00:59")
		So(FormatPlaybackTimer(65.7), ShouldEqual, "01:05")
		So(FormatPlaybackTimer(3600), ShouldEqual, "01:00:00")
		So(FormatPlaybackTimer(3725), ShouldEqual, "01:02:05")
		So(FormatPlaybackTimer(-3), ShouldEqual, "00:00")
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "chapter", "chapters"), ShouldEqual, "1 chapter")
		So(Quantify(114, "chapter", "chapters"), ShouldEqual, "114 chapters")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
	})
}

func TestDebouncer(t *testing.T) {
	Convey("Debouncer", t, func() {
		Convey("Should coalesce rapid calls into one", func() {
			var calls int32
			d := NewDebouncer(30 * time.Millisecond)

			for i := 0; i < 5; i++ {
				d.Call(func() { atomic.AddInt32(&calls, 1) })
				time.Sleep(5 * time.Millisecond)
			}

			time.Sleep(100 * time.Millisecond)
			So(atomic.LoadInt32(&calls), ShouldEqual, 1)
		})

		Convey("Stop should cancel a pending call", func() {
			var calls int32
			d := NewDebouncer(30 * time.Millisecond)

			d.Call(func() { atomic.AddInt32(&calls, 1) })
			d.Stop()

			time.Sleep(80 * time.Millisecond)
			So(atomic.LoadInt32(&calls), ShouldEqual, 0)
		})
	})
}
