package storage

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/quranku-cli/quranku/filesystem"
	"github.com/quranku-cli/quranku/where"
)

type prefs struct {
	ReciterID int     `json:"reciterId"`
	Speed     float64 `json:"speed"`
}

func TestStorage(t *testing.T) {
	Convey("Storage", t, func() {
		filesystem.SetMemMapFs()
		store := New(where.PlayerState())

		Convey("Get on an absent key reports false", func() {
			var p prefs
			So(store.Get("missing", &p), ShouldBeFalse)
		})

		Convey("Set then Get round-trips a document", func() {
			So(store.Set("prefs", prefs{ReciterID: 7, Speed: 1.5}), ShouldBeNil)

			var p prefs
			So(store.Get("prefs", &p), ShouldBeTrue)
			So(p.ReciterID, ShouldEqual, 7)
			So(p.Speed, ShouldEqual, 1.5)
		})

		Convey("Set overwrites the previous document", func() {
			So(store.Set("prefs", prefs{ReciterID: 7}), ShouldBeNil)
			So(store.Set("prefs", prefs{ReciterID: 3}), ShouldBeNil)

			var p prefs
			So(store.Get("prefs", &p), ShouldBeTrue)
			So(p.ReciterID, ShouldEqual, 3)
		})

		Convey("documents under different names are independent", func() {
			So(store.Set("a", 1), ShouldBeNil)
			So(store.Set("b", 2), ShouldBeNil)

			var a, b int
			So(store.Get("a", &a), ShouldBeTrue)
			So(store.Get("b", &b), ShouldBeTrue)
			So(a, ShouldEqual, 1)
			So(b, ShouldEqual, 2)
		})

		Convey("Forget removes a document", func() {
			So(store.Set("prefs", prefs{ReciterID: 7}), ShouldBeNil)
			So(store.Forget("prefs"), ShouldBeNil)

			var p prefs
			So(store.Get("prefs", &p), ShouldBeFalse)
		})

		Convey("Forget on an absent key is a no-op", func() {
			So(store.Forget("missing"), ShouldBeNil)
		})

		Convey("values persist across store instances on the same path", func() {
			So(store.Set("prefs", prefs{ReciterID: 9}), ShouldBeNil)

			reopened := New(where.PlayerState())
			var p prefs
			So(reopened.Get("prefs", &p), ShouldBeTrue)
			So(p.ReciterID, ShouldEqual, 9)
		})
	})
}
