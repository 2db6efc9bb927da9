package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/quranku-cli/quranku/key"
	"github.com/quranku-cli/quranku/network"
)

func apiServer(handler http.HandlerFunc) (*httptest.Server, *Client) {
	server := httptest.NewServer(handler)
	viper.Set(key.APIBaseURL, server.URL)
	return server, NewClient(network.NewClient(network.NewRegistry()))
}

func TestMakeURL(t *testing.T) {
	Convey("MakeURL", t, func() {
		viper.Set(key.APIBaseURL, "https://api.example/v4/")
		client := NewClient(network.NewClient(network.NewRegistry()))

		Convey("joins base and path without doubled slashes", func() {
			So(client.MakeURL("/chapters"), ShouldEqual, "https://api.example/v4/chapters")
			So(client.MakeURL("chapters"), ShouldEqual, "https://api.example/v4/chapters")
		})
	})
}

func TestDownloadURL(t *testing.T) {
	Convey("DownloadURL", t, func() {
		viper.Set(key.APIDownloadURL, "https://download.example")

		So(DownloadURL(DefaultReciterSlug, 36), ShouldEqual,
			"https://download.example/qdc/mishari_al_afasy/murattal/36.mp3")
	})
}

func TestChapterRecitation(t *testing.T) {
	Convey("ChapterRecitation", t, func() {
		var gotPath, gotQuery string
		server, client := apiServer(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{
				"audio_file": {
					"id": 99,
					"chapter_id": 2,
					"audio_url": "https://audio.example/2.mp3",
					"timestamps": [
						{
							"verse_key": "2:1",
							"timestamp_from": 0,
							"timestamp_to": 5000,
							"duration": 5000,
							"segments": [[1, 0, 5000]]
						}
					]
				}
			}`))
		})
		defer server.Close()

		track, err := client.ChapterRecitation(7, 2, network.RequestConfig{})

		Convey("hits the chapter recitation endpoint with segments enabled", func() {
			So(err, ShouldBeNil)
			So(gotPath, ShouldEqual, "/chapter_recitations/7/2")
			So(gotQuery, ShouldContainSubstring, "segments=true")
		})

		Convey("decodes the track and attaches the reciter", func() {
			So(err, ShouldBeNil)
			So(track.ID, ShouldEqual, 99)
			So(track.ChapterID, ShouldEqual, 2)
			So(track.ReciterID, ShouldEqual, 7)
			So(track.AudioURL, ShouldEqual, "https://audio.example/2.mp3")
			So(track.Timestamps, ShouldHaveLength, 1)
			So(track.Timestamps[0].Segments[0].WordPosition(), ShouldEqual, 1)
		})
	})
}

func TestChapters(t *testing.T) {
	Convey("Chapters", t, func() {
		server, client := apiServer(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"chapters": [
					{
						"id": 1,
						"name_simple": "Al-Fatihah",
						"name_arabic": "الفاتحة",
						"verses_count": 7,
						"revelation_place": "makkah",
						"translated_name": {"name": "The Opener"}
					}
				]
			}`))
		})
		defer server.Close()

		chapters, err := client.Chapters("en")

		So(err, ShouldBeNil)
		So(chapters, ShouldHaveLength, 1)
		So(chapters[0].ID, ShouldEqual, 1)
		So(chapters[0].NameSimple, ShouldEqual, "Al-Fatihah")
		So(chapters[0].TranslatedName, ShouldEqual, "The Opener")
	})
}

func TestRecitations(t *testing.T) {
	Convey("Recitations", t, func() {
		server, client := apiServer(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"recitations": [
					{"id": 2, "reciter_name": "AbdulBaset", "style": "Murattal", "translated_name": {"name": "AbdulBaset"}},
					{"id": 7, "reciter_name": "Mishari Rashid al-Afasy", "style": "", "translated_name": {"name": "Mishari Rashid al-Afasy"}},
					{"id": 1, "reciter_name": "AbdulBaset", "style": "Mujawwad", "translated_name": {"name": "AbdulBaset"}}
				]
			}`))
		})
		defer server.Close()

		reciters, err := client.Recitations("en")

		Convey("sorts by id with the default reciter first", func() {
			So(err, ShouldBeNil)
			So(reciters, ShouldHaveLength, 3)
			So(reciters[0].ID, ShouldEqual, 7)
			So(reciters[1].ID, ShouldEqual, 1)
			So(reciters[2].ID, ShouldEqual, 2)
		})

		Convey("String includes the style when present", func() {
			So(err, ShouldBeNil)
			So(reciters[1].String(), ShouldEqual, "AbdulBaset (Mujawwad)")
			So(reciters[0].String(), ShouldEqual, "Mishari Rashid al-Afasy")
		})
	})
}
