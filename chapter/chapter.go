// Package chapter provides the chapter directory: the canonical list of the
// 114 chapters with lookup and fuzzy search, cached on disk between runs.
package chapter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/quranku-cli/quranku/constant"
	"github.com/quranku-cli/quranku/filesystem"
	"github.com/quranku-cli/quranku/key"
	"github.com/quranku-cli/quranku/log"
	"github.com/quranku-cli/quranku/where"
)

// Chapter is one chapter of the Quran as served by the recitation API.
type Chapter struct {
	ID              int    `json:"id"`
	NameSimple      string `json:"name_simple"`
	NameArabic      string `json:"name_arabic"`
	VersesCount     int    `json:"verses_count"`
	RevelationPlace string `json:"revelation_place"`
	TranslatedName  string `json:"translated_name"`
}

func (c Chapter) String() string {
	return fmt.Sprintf("%d. %s (%s)", c.ID, c.NameSimple, c.TranslatedName)
}

// Fetcher retrieves the chapter list for a language from the API.
type Fetcher func(language string) ([]Chapter, error)

// Directory resolves chapters by id or name, with a disk cache keyed on the
// configured language so repeat runs stay offline.
type Directory struct {
	fetch  Fetcher
	cacher *gache.Cache[map[string][]Chapter]
}

// NewDirectory wires a directory to its fetcher.
func NewDirectory(fetch Fetcher) *Directory {
	return &Directory{
		fetch: fetch,
		cacher: gache.New[map[string][]Chapter](
			&gache.Options{
				Path:       where.Chapters(),
				Lifetime:   time.Hour * 24 * 10,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

// All returns every chapter in canonical order, fetching on a cold or
// expired cache.
func (d *Directory) All() ([]Chapter, error) {
	language := viper.GetString(key.APILanguage)

	data, expired, err := d.cacher.Get()
	if err == nil && !expired && data != nil {
		if chapters, ok := data[language]; ok && len(chapters) > 0 {
			return chapters, nil
		}
	}

	chapters, err := d.fetch(language)
	if err != nil {
		return nil, err
	}

	if data == nil {
		data = make(map[string][]Chapter)
	}
	data[language] = chapters
	if err := d.cacher.Set(data); err != nil {
		log.Warnf("chapter: cache write failed: %v", err)
	}

	return chapters, nil
}

// Find resolves a chapter by id.
func (d *Directory) Find(id int) (mo.Option[Chapter], error) {
	if id < 1 || id > constant.MaxChapterID {
		return mo.None[Chapter](), nil
	}

	chapters, err := d.All()
	if err != nil {
		return mo.None[Chapter](), err
	}

	for _, c := range chapters {
		if c.ID == id {
			return mo.Some(c), nil
		}
	}
	return mo.None[Chapter](), nil
}

// Search ranks chapters against the query by name, best match first,
// bounded by the configured search limit.
func (d *Directory) Search(query string) ([]Chapter, error) {
	chapters, err := d.All()
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	names := lo.Map(chapters, func(c Chapter, _ int) string {
		return c.NameSimple + " " + c.TranslatedName
	})

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	limit := viper.GetInt(key.SearchLimit)
	if limit <= 0 || limit > len(ranks) {
		limit = len(ranks)
	}

	matched := make([]Chapter, 0, limit)
	for _, rank := range ranks[:limit] {
		matched = append(matched, chapters[rank.OriginalIndex])
	}
	return matched, nil
}

// Total returns the number of chapters the directory serves.
func (d *Directory) Total() int {
	return constant.MaxChapterID
}

// Next returns the chapter id that follows the given one, wrapping the last
// chapter around to the first.
func Next(id int) int {
	if id >= constant.MaxChapterID {
		return 1
	}
	return id + 1
}
