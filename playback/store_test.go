package playback

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/quranku-cli/quranku/filesystem"
	"github.com/quranku-cli/quranku/where"
)

func freshStore() *Store {
	filesystem.SetMemMapFs()
	return NewStore(where.PlayerState())
}

func TestStorePreferences(t *testing.T) {
	Convey("Store preferences", t, func() {
		store := freshStore()

		Convey("default reciter is Mishari al-Afasy", func() {
			So(store.ReciterID(), ShouldEqual, 7)
		})

		Convey("reciter persists", func() {
			So(store.SetReciterID(3), ShouldBeNil)
			So(store.ReciterID(), ShouldEqual, 3)
		})

		Convey("default speed is 1x", func() {
			So(store.Speed(), ShouldEqual, 1.0)
		})

		Convey("speed persists when it is a valid step", func() {
			So(store.SetSpeed(1.5), ShouldBeNil)
			So(store.Speed(), ShouldEqual, 1.5)
		})

		Convey("an invalid speed is rejected", func() {
			So(store.SetSpeed(1.5), ShouldBeNil)
			So(store.SetSpeed(3.0), ShouldBeNil)
			So(store.Speed(), ShouldEqual, 1.5)
		})

		Convey("repeat defaults off, auto scroll and tooltip default on", func() {
			So(store.Repeat(), ShouldBeFalse)
			So(store.AutoScroll(), ShouldBeTrue)
			So(store.ShowTooltip(), ShouldBeTrue)
		})

		Convey("toggles persist", func() {
			So(store.SetRepeat(true), ShouldBeNil)
			So(store.SetAutoScroll(false), ShouldBeNil)
			So(store.SetShowTooltip(false), ShouldBeNil)

			So(store.Repeat(), ShouldBeTrue)
			So(store.AutoScroll(), ShouldBeFalse)
			So(store.ShowTooltip(), ShouldBeFalse)
		})
	})
}

func TestStorePlayingHistory(t *testing.T) {
	Convey("Playing history snapshot", t, func() {
		store := freshStore()

		Convey("absent snapshot reports false", func() {
			_, ok := store.PlayingHistory()
			So(ok, ShouldBeFalse)
		})

		Convey("snapshot round-trips", func() {
			So(store.SetPlayingHistory(PlayingHistory{
				AudioID: 2, ReciterID: 7, Time: 125.5, Duration: 6000,
			}), ShouldBeNil)

			h, ok := store.PlayingHistory()
			So(ok, ShouldBeTrue)
			So(h.AudioID, ShouldEqual, 2)
			So(h.Time, ShouldEqual, 125.5)
		})

		Convey("LastAudioTime matches only the snapshot's chapter", func() {
			So(store.SetPlayingHistory(PlayingHistory{AudioID: 2, Time: 30}), ShouldBeNil)

			So(store.LastAudioTime(2), ShouldEqual, 30)
			So(store.LastAudioTime(3), ShouldEqual, 0)
		})

		Convey("clearing drops the snapshot", func() {
			So(store.SetPlayingHistory(PlayingHistory{AudioID: 2, Time: 30}), ShouldBeNil)
			So(store.ClearPlayingHistory(), ShouldBeNil)

			_, ok := store.PlayingHistory()
			So(ok, ShouldBeFalse)
			So(store.LastAudioTime(2), ShouldEqual, 0)
		})
	})
}

func TestStorePlaybackHistory(t *testing.T) {
	Convey("Recent-playback ring", t, func() {
		store := freshStore()

		Convey("empty by default", func() {
			So(store.History(), ShouldBeEmpty)
		})

		Convey("newest entry comes first", func() {
			So(store.PushPlaybackHistory(1), ShouldBeNil)
			So(store.PushPlaybackHistory(2), ShouldBeNil)
			So(store.PushPlaybackHistory(3), ShouldBeNil)

			history := store.History()
			So(history, ShouldHaveLength, 3)
			So(history[0].ChapterID, ShouldEqual, 3)
			So(history[2].ChapterID, ShouldEqual, 1)
		})

		Convey("replaying a chapter moves it to the front without duplicating", func() {
			So(store.PushPlaybackHistory(1), ShouldBeNil)
			So(store.PushPlaybackHistory(2), ShouldBeNil)
			So(store.PushPlaybackHistory(1), ShouldBeNil)

			history := store.History()
			So(history, ShouldHaveLength, 2)
			So(history[0].ChapterID, ShouldEqual, 1)
			So(history[1].ChapterID, ShouldEqual, 2)
		})

		Convey("the ring caps at five entries", func() {
			for id := 1; id <= 8; id++ {
				So(store.PushPlaybackHistory(id), ShouldBeNil)
			}

			history := store.History()
			So(history, ShouldHaveLength, HistoryCap)
			So(history[0].ChapterID, ShouldEqual, 8)
			So(history[HistoryCap-1].ChapterID, ShouldEqual, 4)
		})

		Convey("invalid chapter ids are dropped on read", func() {
			So(store.PushPlaybackHistory(500), ShouldBeNil)
			So(store.PushPlaybackHistory(2), ShouldBeNil)

			history := store.History()
			So(history, ShouldHaveLength, 1)
			So(history[0].ChapterID, ShouldEqual, 2)
		})
	})
}

func TestStoreSessionState(t *testing.T) {
	Convey("Volatile session state", t, func() {
		store := freshStore()

		Convey("starts idle with cleared positions", func() {
			So(store.AudioID(), ShouldEqual, 0)
			So(store.IsPlaying(), ShouldBeFalse)
			So(store.ActiveTimestamp(), ShouldEqual, -1)
			So(store.ActiveSegment(), ShouldEqual, -1)
			So(store.Highlight(), ShouldEqual, "")
		})

		Convey("accessors round-trip", func() {
			store.SetAudioID(36)
			store.SetIsPlaying(true)
			store.SetCurrentEvent(EventPlaying)
			store.SetActivePosition(4, 2)
			store.SetHighlight("36:5:3")
			store.SetTrackProgress(12.5)
			store.SetDuration(340)

			So(store.AudioID(), ShouldEqual, 36)
			So(store.IsPlaying(), ShouldBeTrue)
			So(store.CurrentEvent(), ShouldEqual, EventPlaying)
			So(store.ActiveTimestamp(), ShouldEqual, 4)
			So(store.ActiveSegment(), ShouldEqual, 2)
			So(store.Highlight(), ShouldEqual, "36:5:3")
			So(store.TrackProgress(), ShouldEqual, 12.5)
			So(store.Duration(), ShouldEqual, 340)
		})
	})
}

func TestEvent(t *testing.T) {
	Convey("Lifecycle events", t, func() {
		Convey("busy stages show a spinner", func() {
			So(EventFetching.Busy(), ShouldBeTrue)
			So(EventLoading.Busy(), ShouldBeTrue)
			So(EventSeeking.Busy(), ShouldBeTrue)
			So(EventWaiting.Busy(), ShouldBeTrue)
			So(EventPlaying.Busy(), ShouldBeFalse)
			So(EventPause.Busy(), ShouldBeFalse)
		})

		Convey("error stages are failures", func() {
			So(EventError.Failed(), ShouldBeTrue)
			So(EventErrorRequestCancel.Failed(), ShouldBeTrue)
			So(EventErrorRequestUnknown.Failed(), ShouldBeTrue)
			So(EventEnded.Failed(), ShouldBeFalse)
		})
	})
}
