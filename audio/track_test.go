package audio

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// baqarahOpening mirrors the first ayat of the second chapter:
// ayah 1 spans 0ms..5000ms, ayah 2 spans 5000ms..11000ms with three words.
func baqarahOpening() *Track {
	return &Track{
		AudioURL:  "https://audio.example/2.mp3",
		ID:        42,
		ChapterID: 2,
		ReciterID: 7,
		Timestamps: []Timestamp{
			{
				VerseKey: "2:1",
				From:     0,
				To:       5000,
				Duration: 5000,
				Segments: []Segment{{1, 0, 5000}},
			},
			{
				VerseKey: "2:2",
				From:     5000,
				To:       11000,
				Duration: 6000,
				Segments: []Segment{{1, 5000, 6200}, {2, 6200, 7500}, {3, 7500, 11000}},
			},
		},
	}
}

func TestTrackLookup(t *testing.T) {
	Convey("Track position lookup", t, func() {
		track := baqarahOpening()

		Convey("TimestampAt picks the first ayah whose end is past the position", func() {
			So(track.TimestampAt(0), ShouldEqual, 0)
			So(track.TimestampAt(2), ShouldEqual, 0)
			So(track.TimestampAt(4.999), ShouldEqual, 0)
			So(track.TimestampAt(5), ShouldEqual, 1)
			So(track.TimestampAt(6.5), ShouldEqual, 1)
		})

		Convey("TimestampAt returns -1 past the end of the track", func() {
			So(track.TimestampAt(11), ShouldEqual, -1)
			So(track.TimestampAt(300), ShouldEqual, -1)
		})

		Convey("SegmentAt resolves the active word", func() {
			ts := &track.Timestamps[1]
			So(ts.SegmentAt(5.1), ShouldEqual, 0)
			So(ts.SegmentAt(6.5), ShouldEqual, 1)
			So(ts.SegmentAt(8), ShouldEqual, 2)
			So(ts.SegmentAt(11), ShouldEqual, -1)
		})

		Convey("HighlightAt yields verseKey:wordPosition when a word matches", func() {
			So(track.HighlightAt(6.5), ShouldEqual, "2:2:2")
			So(track.HighlightAt(0), ShouldEqual, "2:1:1")
		})

		Convey("HighlightAt falls back to the verse key when the ayah has no segments", func() {
			bare := baqarahOpening()
			bare.Timestamps[0].Segments = nil
			So(bare.HighlightAt(2), ShouldEqual, "2:1")
		})

		Convey("HighlightAt clears past the last word of an ayah with segments", func() {
			trailing := baqarahOpening()
			// The recitation of 2:2 trails off after its last word at 7500ms.
			trailing.Timestamps[1].To = 8000
			trailing.Timestamps[1].Segments = []Segment{
				{1, 5000, 6200}, {2, 6200, 7000}, {3, 7000, 7500},
			}

			So(trailing.HighlightAt(7.2), ShouldEqual, "2:2:3")
			So(trailing.HighlightAt(7.75), ShouldEqual, "")
		})

		Convey("HighlightAt clears past the end of the track", func() {
			So(track.HighlightAt(11), ShouldEqual, "")
		})

		Convey("Contiguous detects timing gaps", func() {
			So(track.Contiguous(), ShouldBeTrue)

			gapped := baqarahOpening()
			gapped.Timestamps[1].From = 5500
			So(gapped.Contiguous(), ShouldBeFalse)
		})
	})
}
