package chapter

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/quranku-cli/quranku/filesystem"
	"github.com/quranku-cli/quranku/key"
)

func sampleChapters() []Chapter {
	return []Chapter{
		{ID: 1, NameSimple: "Al-Fatihah", TranslatedName: "The Opener", VersesCount: 7},
		{ID: 2, NameSimple: "Al-Baqarah", TranslatedName: "The Cow", VersesCount: 286},
		{ID: 36, NameSimple: "Ya-Sin", TranslatedName: "Ya Sin", VersesCount: 83},
		{ID: 112, NameSimple: "Al-Ikhlas", TranslatedName: "The Sincerity", VersesCount: 4},
	}
}

func TestDirectory(t *testing.T) {
	Convey("Directory", t, func() {
		filesystem.SetMemMapFs()
		viper.Set(key.APILanguage, "en")
		viper.Set(key.SearchLimit, 10)

		fetches := 0
		directory := NewDirectory(func(language string) ([]Chapter, error) {
			fetches++
			return sampleChapters(), nil
		})

		Convey("All fetches once and serves the cache afterwards", func() {
			first, err := directory.All()
			So(err, ShouldBeNil)
			So(first, ShouldHaveLength, 4)

			second, err := directory.All()
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
			So(fetches, ShouldEqual, 1)
		})

		Convey("the cache survives a new directory on the same filesystem", func() {
			_, err := directory.All()
			So(err, ShouldBeNil)

			reopened := NewDirectory(func(language string) ([]Chapter, error) {
				return nil, errors.New("must not fetch")
			})
			chapters, err := reopened.All()
			So(err, ShouldBeNil)
			So(chapters, ShouldHaveLength, 4)
		})

		Convey("a language change bypasses the cached listing", func() {
			_, err := directory.All()
			So(err, ShouldBeNil)

			viper.Set(key.APILanguage, "id")
			_, err = directory.All()
			So(err, ShouldBeNil)
			So(fetches, ShouldEqual, 2)
		})

		Convey("fetch errors surface", func() {
			failing := NewDirectory(func(language string) ([]Chapter, error) {
				return nil, errors.New("api down")
			})

			_, err := failing.All()
			So(err, ShouldNotBeNil)
		})

		Convey("Find resolves by id", func() {
			found, err := directory.Find(36)
			So(err, ShouldBeNil)
			So(found.IsPresent(), ShouldBeTrue)
			So(found.MustGet().NameSimple, ShouldEqual, "Ya-Sin")
		})

		Convey("Find rejects out-of-range ids without fetching", func() {
			for _, id := range []int{0, -1, 115} {
				found, err := directory.Find(id)
				So(err, ShouldBeNil)
				So(found.IsAbsent(), ShouldBeTrue)
			}
			So(fetches, ShouldEqual, 0)
		})

		Convey("Search matches names fuzzily", func() {
			matches, err := directory.Search("baqara")
			So(err, ShouldBeNil)
			So(matches, ShouldNotBeEmpty)
			So(matches[0].ID, ShouldEqual, 2)
		})

		Convey("Search matches translated names", func() {
			matches, err := directory.Search("cow")
			So(err, ShouldBeNil)
			So(matches, ShouldNotBeEmpty)
			So(matches[0].ID, ShouldEqual, 2)
		})

		Convey("Search on a blank query yields nothing", func() {
			matches, err := directory.Search("   ")
			So(err, ShouldBeNil)
			So(matches, ShouldBeEmpty)
		})

		Convey("Search honors the configured limit", func() {
			viper.Set(key.SearchLimit, 1)

			matches, err := directory.Search("al")
			So(err, ShouldBeNil)
			So(len(matches), ShouldBeLessThanOrEqualTo, 1)
		})
	})
}

func TestNext(t *testing.T) {
	Convey("Next", t, func() {
		So(Next(1), ShouldEqual, 2)
		So(Next(113), ShouldEqual, 114)

		Convey("wraps the last chapter to the first", func() {
			So(Next(114), ShouldEqual, 1)
		})
	})
}

func TestChapterString(t *testing.T) {
	Convey("Chapter.String", t, func() {
		c := Chapter{ID: 36, NameSimple: "Ya-Sin", TranslatedName: "Ya Sin"}
		So(c.String(), ShouldEqual, "36. Ya-Sin (Ya Sin)")
	})
}
