package playback

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/quranku-cli/quranku/constant"
	"github.com/quranku-cli/quranku/key"
	"github.com/quranku-cli/quranku/log"
	"github.com/quranku-cli/quranku/storage"
)

// Speeds enumerates the valid playback rates, slowest first.
var Speeds = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// HistoryCap bounds the recent-playback ring.
const HistoryCap = 5

// Defaults for the persisted preferences.
const (
	DefaultReciterID = 7
	DefaultSpeed     = 1.0
)

// PlayingHistory is the resumable snapshot of an in-progress recitation.
type PlayingHistory struct {
	AudioID   int     `json:"audioId"`
	ReciterID int     `json:"reciterId"`
	Time      float64 `json:"time"`
	Duration  float64 `json:"duration"`
}

// HistoryEntry is one raw recent-playback record.
type HistoryEntry struct {
	ChapterID int   `json:"id"`
	Timestamp int64 `json:"timestamp"`
}

// Store persists audio-player preferences and histories, and holds the
// volatile per-session playback state the views render from.
type Store struct {
	storage *storage.Storage

	mu sync.RWMutex

	// Volatile session state, never persisted.
	audioID         int
	isPlaying       bool
	currentEvent    Event
	activeTimestamp int
	activeSegment   int
	highlight       string
	trackProgress   float64
	duration        float64
}

// NewStore opens the persisted player state living at path.
func NewStore(path string) *Store {
	return &Store{
		storage:         storage.New(path),
		activeTimestamp: -1,
		activeSegment:   -1,
	}
}

// ReciterID returns the preferred reciter, defaulting to Mishari al-Afasy.
func (s *Store) ReciterID() int {
	var id int
	if !s.storage.Get(key.StoreReciterID, &id) || id <= 0 {
		return DefaultReciterID
	}
	return id
}

// SetReciterID persists the preferred reciter.
func (s *Store) SetReciterID(id int) error {
	return s.storage.Set(key.StoreReciterID, id)
}

// Speed returns the persisted playback rate, falling back to the default
// when the stored value is not one of the valid steps.
func (s *Store) Speed() float64 {
	var speed float64
	if !s.storage.Get(key.StoreSpeed, &speed) {
		return DefaultSpeed
	}
	for _, valid := range Speeds {
		if speed == valid {
			return speed
		}
	}
	return DefaultSpeed
}

// SetSpeed persists the playback rate. Values outside Speeds are rejected.
func (s *Store) SetSpeed(speed float64) error {
	valid := false
	for _, v := range Speeds {
		if speed == v {
			valid = true
			break
		}
	}
	if !valid {
		log.Warnf("playback: rejecting speed %v", speed)
		return nil
	}
	return s.storage.Set(key.StoreSpeed, speed)
}

// Repeat reports whether the current chapter replays on end.
func (s *Store) Repeat() bool {
	var repeat bool
	if !s.storage.Get(key.StoreRepeat, &repeat) {
		return false
	}
	return repeat
}

func (s *Store) SetRepeat(repeat bool) error {
	return s.storage.Set(key.StoreRepeat, repeat)
}

// AutoScroll reports whether the reading view follows the recitation.
func (s *Store) AutoScroll() bool {
	var autoScroll bool
	if !s.storage.Get(key.StoreAutoScroll, &autoScroll) {
		return true
	}
	return autoScroll
}

func (s *Store) SetAutoScroll(autoScroll bool) error {
	return s.storage.Set(key.StoreAutoScroll, autoScroll)
}

// ShowTooltip reports whether word meanings are shown while playing.
func (s *Store) ShowTooltip() bool {
	var show bool
	if !s.storage.Get(key.StoreShowTooltip, &show) {
		return true
	}
	return show
}

func (s *Store) SetShowTooltip(show bool) error {
	return s.storage.Set(key.StoreShowTooltip, show)
}

// PlayingHistory returns the resumable snapshot, if one exists.
func (s *Store) PlayingHistory() (PlayingHistory, bool) {
	var h PlayingHistory
	if !s.storage.Get(key.StorePlayingHistory, &h) || h.AudioID == 0 {
		return PlayingHistory{}, false
	}
	return h, true
}

// SetPlayingHistory persists the resumable snapshot.
func (s *Store) SetPlayingHistory(h PlayingHistory) error {
	return s.storage.Set(key.StorePlayingHistory, h)
}

// ClearPlayingHistory drops the resumable snapshot.
func (s *Store) ClearPlayingHistory() error {
	return s.storage.Forget(key.StorePlayingHistory)
}

// LastAudioTime returns the resume position for the chapter, or zero when
// no snapshot matches.
func (s *Store) LastAudioTime(chapterID int) float64 {
	h, ok := s.PlayingHistory()
	if !ok || h.AudioID != chapterID {
		return 0
	}
	return h.Time
}

// PushPlaybackHistory records the chapter in the recent-playback ring:
// newest first, one entry per chapter, at most HistoryCap entries.
func (s *Store) PushPlaybackHistory(chapterID int) error {
	var raw []HistoryEntry
	s.storage.Get(key.StorePlaybackHistory, &raw)

	raw = append(raw, HistoryEntry{ChapterID: chapterID, Timestamp: time.Now().UnixMilli()})

	return s.storage.Set(key.StorePlaybackHistory, dedupe(raw))
}

// History returns the recent-playback ring, newest first, already
// deduplicated, capped and stripped of invalid chapter ids.
func (s *Store) History() []HistoryEntry {
	var raw []HistoryEntry
	s.storage.Get(key.StorePlaybackHistory, &raw)

	entries := dedupe(raw)
	valid := entries[:0]
	for _, e := range entries {
		if e.ChapterID >= 1 && e.ChapterID <= constant.MaxChapterID {
			valid = append(valid, e)
		}
	}
	return valid
}

// dedupe sorts newest first, keeps the freshest entry per chapter and caps
// the result at HistoryCap. Entries sharing a timestamp keep the later push
// first.
func dedupe(raw []HistoryEntry) []HistoryEntry {
	slices.Reverse(raw)
	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].Timestamp > raw[j].Timestamp
	})

	seen := make(map[int]struct{}, len(raw))
	out := make([]HistoryEntry, 0, HistoryCap)
	for _, e := range raw {
		if _, ok := seen[e.ChapterID]; ok {
			continue
		}
		seen[e.ChapterID] = struct{}{}
		out = append(out, e)
		if len(out) == HistoryCap {
			break
		}
	}
	return out
}

// Volatile session state accessors.

func (s *Store) AudioID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audioID
}

func (s *Store) SetAudioID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audioID = id
}

func (s *Store) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPlaying
}

func (s *Store) SetIsPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPlaying = playing
}

func (s *Store) CurrentEvent() Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentEvent
}

func (s *Store) SetCurrentEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentEvent = e
}

// ActiveTimestamp returns the index of the ayah currently recited, -1 when none.
func (s *Store) ActiveTimestamp() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTimestamp
}

// ActiveSegment returns the index of the word currently recited, -1 when none.
func (s *Store) ActiveSegment() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSegment
}

func (s *Store) SetActivePosition(timestamp, segment int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTimestamp = timestamp
	s.activeSegment = segment
}

// Highlight returns the active highlight target, "" when cleared.
func (s *Store) Highlight() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlight
}

func (s *Store) SetHighlight(h string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = h
}

// TrackProgress returns the playback position in seconds.
func (s *Store) TrackProgress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trackProgress
}

func (s *Store) SetTrackProgress(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackProgress = seconds
}

func (s *Store) Duration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration
}

func (s *Store) SetDuration(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = seconds
}
