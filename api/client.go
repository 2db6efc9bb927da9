// Package api is the typed client for the recitation API: chapter listings,
// reciters and chapter audio files with word-level timestamps.
package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/quranku-cli/quranku/audio"
	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/key"
	"github.com/quranku-cli/quranku/log"
	"github.com/quranku-cli/quranku/network"
)

// DefaultReciterSlug addresses the download mirror's directory for the
// default reciter.
const DefaultReciterSlug = "mishari_al_afasy"

// Reciter is one recitation style offered by the API.
type Reciter struct {
	ID             int    `json:"id"`
	ReciterName    string `json:"reciter_name"`
	Style          string `json:"style"`
	TranslatedName string `json:"translated_name"`
}

func (r Reciter) String() string {
	if r.Style == "" {
		return r.ReciterName
	}
	return fmt.Sprintf("%s (%s)", r.ReciterName, r.Style)
}

// Client talks to the recitation API through the retrying network client.
type Client struct {
	HTTP *network.Client
}

// NewClient wraps the network client.
func NewClient(http *network.Client) *Client {
	return &Client{HTTP: http}
}

// MakeURL joins the configured API base with the endpoint path.
func (c *Client) MakeURL(path string) string {
	base := strings.TrimRight(viper.GetString(key.APIBaseURL), "/")
	return base + "/" + strings.TrimLeft(path, "/")
}

// DownloadURL resolves the direct MP3 location for a chapter on the
// download mirror.
func DownloadURL(slug string, chapterID int) string {
	base := strings.TrimRight(viper.GetString(key.APIDownloadURL), "/")
	return fmt.Sprintf("%s/qdc/%s/murattal/%d.mp3", base, slug, chapterID)
}

// ChapterRecitation fetches the audio file of a chapter for a reciter,
// including per-ayah timestamps with word segments.
func (c *Client) ChapterRecitation(reciterID, chapterID int, cfg network.RequestConfig) (*audio.Track, error) {
	endpoint := c.MakeURL(fmt.Sprintf("chapter_recitations/%d/%d", reciterID, chapterID))

	if cfg.Params == nil {
		cfg.Params = url.Values{}
	}
	cfg.Params.Set("segments", "true")

	resp, err := c.HTTP.Get(endpoint, cfg)
	if err != nil {
		return nil, err
	}

	var payload struct {
		AudioFile audio.Track `json:"audio_file"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("decode chapter recitation: %w", err)
	}

	track := payload.AudioFile
	track.ReciterID = reciterID
	if track.ChapterID == 0 {
		track.ChapterID = chapterID
	}

	log.Debugf("fetched recitation %d/%d with %d timestamps", reciterID, chapterID, len(track.Timestamps))
	return &track, nil
}

type translatedName struct {
	Name string `json:"name"`
}

type chapterPayload struct {
	ID              int            `json:"id"`
	NameSimple      string         `json:"name_simple"`
	NameArabic      string         `json:"name_arabic"`
	VersesCount     int            `json:"verses_count"`
	RevelationPlace string         `json:"revelation_place"`
	TranslatedName  translatedName `json:"translated_name"`
}

// Chapters fetches the chapter list for a language.
func (c *Client) Chapters(language string) ([]chapter.Chapter, error) {
	resp, err := c.HTTP.Get(c.MakeURL("chapters"), network.RequestConfig{
		Params: url.Values{"language": []string{language}},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Chapters []chapterPayload `json:"chapters"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("decode chapters: %w", err)
	}

	return lo.Map(payload.Chapters, func(raw chapterPayload, _ int) chapter.Chapter {
		return chapter.Chapter{
			ID:              raw.ID,
			NameSimple:      raw.NameSimple,
			NameArabic:      raw.NameArabic,
			VersesCount:     raw.VersesCount,
			RevelationPlace: raw.RevelationPlace,
			TranslatedName:  raw.TranslatedName.Name,
		}
	}), nil
}

type reciterPayload struct {
	ID             int            `json:"id"`
	ReciterName    string         `json:"reciter_name"`
	Style          string         `json:"style"`
	TranslatedName translatedName `json:"translated_name"`
}

// Recitations fetches the available reciters for a language, sorted by id
// with the default reciter first.
func (c *Client) Recitations(language string) ([]Reciter, error) {
	resp, err := c.HTTP.Get(c.MakeURL("resources/recitations"), network.RequestConfig{
		Params: url.Values{"language": []string{language}},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Recitations []reciterPayload `json:"recitations"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("decode recitations: %w", err)
	}

	reciters := lo.Map(payload.Recitations, func(raw reciterPayload, _ int) Reciter {
		return Reciter{
			ID:             raw.ID,
			ReciterName:    raw.ReciterName,
			Style:          raw.Style,
			TranslatedName: raw.TranslatedName.Name,
		}
	})

	sort.Slice(reciters, func(i, j int) bool {
		a, b := reciters[i], reciters[j]
		if (a.ID == 7) != (b.ID == 7) {
			return a.ID == 7
		}
		return a.ID < b.ID
	})

	return reciters, nil
}
