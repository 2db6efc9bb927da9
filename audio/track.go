// Package audio models chapter recitation tracks with word-level timing
// and memoizes fetched tracks for the lifetime of the process.
package audio

import "fmt"

// Segment is a word timing triple: word position within the ayah,
// start and end in milliseconds from the beginning of the track.
type Segment [3]int64

func (s Segment) WordPosition() int64 { return s[0] }
func (s Segment) StartMs() int64      { return s[1] }
func (s Segment) EndMs() int64        { return s[2] }

// Timestamp is the timing envelope of one ayah within a chapter track.
type Timestamp struct {
	VerseKey string    `json:"verse_key"`
	Segments []Segment `json:"segments"`
	From     int64     `json:"timestamp_from"`
	To       int64     `json:"timestamp_to"`
	Duration int64     `json:"duration"`
}

// Track is a single chapter recitation: the audio location plus
// per-ayah timestamps with word segments.
type Track struct {
	AudioURL   string      `json:"audio_url"`
	ID         int         `json:"id"`
	ChapterID  int         `json:"chapter_id"`
	ReciterID  int         `json:"reciter_id"`
	Timestamps []Timestamp `json:"timestamps"`
}

// TimestampAt returns the index of the ayah active at the given playback
// position in seconds: the first timestamp whose end lies past the position.
// Returns -1 when the position is past the last ayah.
func (t *Track) TimestampAt(seconds float64) int {
	for i := range t.Timestamps {
		if seconds < float64(t.Timestamps[i].To)/1000 {
			return i
		}
	}
	return -1
}

// SegmentAt returns the index of the word segment active at the given
// position within the timestamp, or -1 when none matches.
func (ts *Timestamp) SegmentAt(seconds float64) int {
	for i, seg := range ts.Segments {
		if seconds < float64(seg.EndMs())/1000 {
			return i
		}
	}
	return -1
}

// HighlightAt resolves the playback position to a highlight target:
// "verseKey:wordPosition" when a word segment matches, the bare verse key
// when the ayah carries no segment timings at all, and "" when the position
// is past the track or past the ayah's last word.
func (t *Track) HighlightAt(seconds float64) string {
	n := t.TimestampAt(seconds)
	if n < 0 {
		return ""
	}
	ts := &t.Timestamps[n]
	if len(ts.Segments) == 0 {
		return ts.VerseKey
	}
	if i := ts.SegmentAt(seconds); i >= 0 {
		return fmt.Sprintf("%s:%d", ts.VerseKey, ts.Segments[i].WordPosition())
	}
	return ""
}

// Contiguous reports whether every timestamp starts where the previous
// one ended. Gaps are tolerated by the lookup logic; this exists for
// diagnostics only.
func (t *Track) Contiguous() bool {
	for i := 1; i < len(t.Timestamps); i++ {
		if t.Timestamps[i].From != t.Timestamps[i-1].To {
			return false
		}
	}
	return true
}
