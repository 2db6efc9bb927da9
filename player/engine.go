package player

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/quranku-cli/quranku/audio"
	"github.com/quranku-cli/quranku/chapter"
	"github.com/quranku-cli/quranku/constant"
	"github.com/quranku-cli/quranku/event"
	"github.com/quranku-cli/quranku/log"
	"github.com/quranku-cli/quranku/network"
	"github.com/quranku-cli/quranku/playback"
	"github.com/quranku-cli/quranku/util"
)

// SignalAudioRequest keys track fetches in the abort registry. Starting a
// new chapter aborts whatever fetch is still in flight under this key.
const SignalAudioRequest = "AUDIO_PLAYER_REQUEST_AUDIO"

// ErrInvalidChapter rejects chapter ids outside 1..114.
var ErrInvalidChapter = errors.New("invalid chapter id")

// Navigator lets the engine follow playback across chapters.
type Navigator interface {
	// OnChapterRoute reports whether a chapter reading view is active.
	OnChapterRoute() bool
	// NavigateToChapter switches the reading view to the chapter.
	NavigateToChapter(id int)
}

// Notifier surfaces playback failures to the user.
type Notifier interface {
	Error(message string)
}

// startPosition is where a pending load should begin once metadata is ready.
type startPosition struct {
	seconds float64
	ayah    int
}

// Engine drives the media element through the playback lifecycle: it loads
// tracks, reacts to media events, maintains the playback store and follows
// recitation across chapters.
type Engine struct {
	element  Element
	store    *playback.Store
	cache    *audio.Cache
	registry *network.Registry
	bus      *event.Bus
	nav      Navigator
	notify   Notifier

	// SeekedDebounce coalesces bursts of seeked events before resuming.
	SeekedDebounce time.Duration
	// ErrorDebounce coalesces bursts of media errors into one report.
	ErrorDebounce time.Duration
	// ResumeDelay is waited after a settled seek before playback resumes.
	ResumeDelay time.Duration

	seekedDebouncer *util.Debouncer
	errorDebouncer  *util.Debouncer

	// startMu serializes the apply-and-load tail of Start so a stale
	// start can never load over a newer one.
	startMu sync.Mutex

	mu             sync.Mutex
	track          *audio.Track
	startGen       uint64
	pendingStart   *startPosition
	pendingSuccess func(*audio.Track)
	dragging       bool
	dragOrigin     float64
	autoResume     bool
	resumeTimer    *time.Timer

	offs []func()
}

// NewEngine wires an engine to its collaborators. Call Attach to subscribe
// it to the bus and Run to pump media events.
func NewEngine(
	element Element,
	store *playback.Store,
	cache *audio.Cache,
	registry *network.Registry,
	bus *event.Bus,
	nav Navigator,
	notify Notifier,
) *Engine {
	return &Engine{
		element:        element,
		store:          store,
		cache:          cache,
		registry:       registry,
		bus:            bus,
		nav:            nav,
		notify:         notify,
		SeekedDebounce: 500 * time.Millisecond,
		ErrorDebounce:  500 * time.Millisecond,
		ResumeDelay:    200 * time.Millisecond,
		autoResume:     true,
	}
}

// debouncers are created on first use so the durations stay tunable
// between construction and the first media event.
func (e *Engine) seeked() *util.Debouncer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seekedDebouncer == nil {
		e.seekedDebouncer = util.NewDebouncer(e.SeekedDebounce)
	}
	return e.seekedDebouncer
}

func (e *Engine) errored() *util.Debouncer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.errorDebouncer == nil {
		e.errorDebouncer = util.NewDebouncer(e.ErrorDebounce)
	}
	return e.errorDebouncer
}

// Attach subscribes the engine to the control bus.
func (e *Engine) Attach() {
	e.offs = append(e.offs,
		e.bus.Play.On(func(struct{}) { e.PlayCurrent() }),
		e.bus.Pause.On(func(struct{}) { e.PauseCurrent() }),
		e.bus.Start.On(func(req event.StartRequest) {
			go func() {
				_ = e.Start(req.ChapterID, req.Payload)
			}()
		}),
	)
}

// Detach removes the bus subscriptions and stops pending timers.
func (e *Engine) Detach() {
	for _, off := range e.offs {
		off()
	}
	e.offs = nil

	e.mu.Lock()
	if e.seekedDebouncer != nil {
		e.seekedDebouncer.Stop()
	}
	if e.errorDebouncer != nil {
		e.errorDebouncer.Stop()
	}
	if e.resumeTimer != nil {
		e.resumeTimer.Stop()
		e.resumeTimer = nil
	}
	e.mu.Unlock()
}

// Run pumps media element events into the engine until the context ends.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-e.element.Events():
			if !ok {
				return
			}
			e.HandleMediaEvent(ev)
		}
	}
}

// Start loads the chapter's track and begins playback. The payload, when
// present, tunes the starting position and receives the load outcome.
func (e *Engine) Start(chapterID int, payload *event.StartPayload) error {
	if chapterID < 1 || chapterID > constant.MaxChapterID {
		log.Warnf("engine: rejecting chapter id %d", chapterID)
		if payload != nil && payload.Error != nil {
			payload.Error(ErrInvalidChapter)
		}
		return ErrInvalidChapter
	}

	e.mu.Lock()
	e.startGen++
	gen := e.startGen
	e.mu.Unlock()

	// Whatever the previous chapter left behind is torn down before the
	// fetch begins: the element pauses and the session state zeroes out.
	_ = e.element.Pause()
	e.store.SetAudioID(chapterID)
	e.store.SetIsPlaying(false)
	e.store.SetTrackProgress(0)
	e.store.SetActivePosition(-1, -1)
	e.store.SetHighlight("")
	if err := e.store.ClearPlayingHistory(); err != nil {
		log.Warnf("engine: clearing playing history: %v", err)
	}

	track, err := e.loadAudioData(chapterID)
	if err != nil {
		if payload != nil && payload.Error != nil {
			payload.Error(err)
		}
		return err
	}

	pending := &startPosition{}
	if payload != nil {
		pending.seconds = payload.StartFromSeconds
		pending.ayah = payload.StartFromAyah
	}

	e.startMu.Lock()
	defer e.startMu.Unlock()

	e.mu.Lock()
	if gen != e.startGen {
		e.mu.Unlock()
		log.Debugf("engine: discarding stale start of chapter %d", chapterID)
		return nil
	}
	e.track = track
	e.pendingStart = pending
	e.pendingSuccess = nil
	if payload != nil {
		e.pendingSuccess = payload.Success
	}
	e.mu.Unlock()

	return e.element.Load(track.AudioURL)
}

// loadAudioData resolves the track for the chapter under the persisted
// reciter. A track already held for the same chapter and reciter is reused
// without touching the network.
func (e *Engine) loadAudioData(chapterID int) (*audio.Track, error) {
	reciterID := e.store.ReciterID()

	e.mu.Lock()
	held := e.track
	e.mu.Unlock()

	if held != nil && held.ChapterID == chapterID && held.ReciterID == reciterID {
		return held, nil
	}

	e.setEvent(playback.EventFetching)
	e.registry.Abort(SignalAudioRequest)

	track, err := e.cache.Load(audio.CacheKey{ReciterID: reciterID, ChapterID: chapterID})
	if err != nil {
		if network.IsCancel(err) {
			e.setEvent(playback.EventErrorRequestCancel)
		} else {
			e.setEvent(playback.EventErrorRequestUnknown)
			if e.notify != nil {
				e.notify.Error("Failed to load the audio. Please try again.")
			}
		}
		return nil, err
	}

	e.setEvent(playback.EventFetched)
	return track, nil
}

// HandleMediaEvent advances the lifecycle in response to one media event.
func (e *Engine) HandleMediaEvent(ev MediaEvent) {
	switch ev.Type {
	case MediaLoadStart:
		e.setEvent(playback.EventLoading)

	case MediaLoadedMetadata:
		e.setEvent(playback.EventLoaded)
		duration := ev.Duration
		if duration == 0 {
			duration = e.element.Duration()
		}
		e.store.SetDuration(duration)
		e.store.SetTrackProgress(0)
		e.beginPlayback()

	case MediaTimeUpdate:
		e.handleTimeUpdate(ev.Time)

	case MediaSeeking:
		e.setEvent(playback.EventSeeking)

	case MediaSeeked:
		e.handleSeeked(ev.Time)

	case MediaWaiting:
		e.setEvent(playback.EventWaiting)

	case MediaPlaying:
		e.setEvent(playback.EventPlaying)
		e.store.SetIsPlaying(true)
		e.trackPlaying()

	case MediaPause:
		e.setEvent(playback.EventPause)
		e.store.SetIsPlaying(false)

	case MediaEnded:
		e.handleEnded()

	case MediaError:
		e.errored().Call(func() {
			e.setEvent(playback.EventError)
			if e.notify != nil {
				e.notify.Error("Playback failed.")
			}
			log.Errorf("engine: media error: %v", ev.Err)
		})
	}
}

// trackPlaying records the chapter in the recent-playback ring and reports
// a deferred start success now that playback has actually begun.
func (e *Engine) trackPlaying() {
	e.mu.Lock()
	track := e.track
	success := e.pendingSuccess
	e.pendingSuccess = nil
	e.mu.Unlock()

	if track == nil {
		return
	}

	if err := e.store.PushPlaybackHistory(track.ChapterID); err != nil {
		log.Warnf("engine: recording playback history: %v", err)
	}
	if success != nil {
		success(track)
	}
}

// beginPlayback applies the pending start position once metadata is ready.
func (e *Engine) beginPlayback() {
	e.mu.Lock()
	pending := e.pendingStart
	e.pendingStart = nil
	track := e.track
	e.mu.Unlock()

	if err := e.element.SetRate(e.store.Speed()); err != nil {
		log.Warnf("engine: applying speed: %v", err)
	}

	if pending != nil {
		if pending.ayah > 0 && track != nil && pending.ayah <= len(track.Timestamps) {
			target := float64(track.Timestamps[pending.ayah-1].From) / 1000
			if target != e.element.CurrentTime() {
				_ = e.element.Seek(target)
				return
			}
		} else if pending.seconds > 0 {
			_ = e.element.Seek(pending.seconds)
			return
		}
	}

	// No seek needed. A suppressed resume leaves the element paused.
	e.mu.Lock()
	resume := e.autoResume
	e.autoResume = true
	e.mu.Unlock()

	if resume {
		_ = e.element.Play()
	}
}

// handleTimeUpdate advances progress, the active ayah, the word highlight
// and the resumable snapshot. Updates are frozen while the user drags the
// progress control.
func (e *Engine) handleTimeUpdate(seconds float64) {
	e.mu.Lock()
	dragging := e.dragging
	track := e.track
	e.mu.Unlock()

	if dragging || track == nil {
		return
	}

	e.store.SetTrackProgress(seconds)

	n := track.TimestampAt(seconds)
	if n < 0 {
		e.store.SetActivePosition(-1, -1)
		e.store.SetHighlight("")
	} else {
		seg := track.Timestamps[n].SegmentAt(seconds)
		e.store.SetActivePosition(n, seg)

		// The highlight only makes sense on a reading view.
		if e.nav != nil && e.nav.OnChapterRoute() {
			e.store.SetHighlight(track.HighlightAt(seconds))
		} else {
			e.store.SetHighlight("")
		}
	}

	if int(math.Floor(seconds))%5 == 0 {
		e.snapshot(seconds)
	}
}

// handleSeeked settles a seek: snapshot the new position and resume after
// the debounce window, unless the resume was suppressed for this load.
func (e *Engine) handleSeeked(seconds float64) {
	e.setEvent(playback.EventSeeked)
	e.snapshot(seconds)

	e.mu.Lock()
	e.dragging = false
	resume := e.autoResume
	e.autoResume = true
	e.mu.Unlock()

	if !resume {
		return
	}

	e.seeked().Call(func() {
		e.mu.Lock()
		if e.resumeTimer != nil {
			e.resumeTimer.Stop()
		}
		e.resumeTimer = time.AfterFunc(e.ResumeDelay, func() {
			_ = e.element.Play()
		})
		e.mu.Unlock()
	})
}

// handleEnded finishes the chapter: either replay it or move on to the
// next one, wrapping the last chapter around to the first.
func (e *Engine) handleEnded() {
	e.setEvent(playback.EventEnded)
	e.store.SetIsPlaying(false)
	e.store.SetActivePosition(-1, -1)
	e.store.SetHighlight("")

	if err := e.store.ClearPlayingHistory(); err != nil {
		log.Warnf("engine: clearing playing history: %v", err)
	}

	e.mu.Lock()
	track := e.track
	e.mu.Unlock()
	if track == nil {
		return
	}

	if e.store.Repeat() {
		_ = e.Start(track.ChapterID, nil)
		return
	}

	next := chapter.Next(track.ChapterID)
	if e.store.AutoScroll() && e.nav != nil && e.nav.OnChapterRoute() {
		e.nav.NavigateToChapter(next)
	}
	_ = e.Start(next, nil)
}

// snapshot persists the resumable position for the current track.
func (e *Engine) snapshot(seconds float64) {
	e.mu.Lock()
	track := e.track
	e.mu.Unlock()
	if track == nil {
		return
	}

	err := e.store.SetPlayingHistory(playback.PlayingHistory{
		AudioID:   track.ChapterID,
		ReciterID: track.ReciterID,
		Time:      seconds,
		Duration:  e.store.Duration(),
	})
	if err != nil {
		log.Warnf("engine: saving playing history: %v", err)
	}
}

// PlayCurrent resumes the held track, or restarts the last chapter from its
// saved position when nothing is loaded yet.
func (e *Engine) PlayCurrent() {
	e.mu.Lock()
	track := e.track
	e.mu.Unlock()

	if track != nil {
		_ = e.element.Play()
		return
	}

	id := e.store.AudioID()
	if id == 0 {
		if h, ok := e.store.PlayingHistory(); ok {
			id = h.AudioID
		}
	}
	if id == 0 {
		return
	}

	_ = e.Start(id, &event.StartPayload{StartFromSeconds: e.store.LastAudioTime(id)})
}

// PauseCurrent suspends playback.
func (e *Engine) PauseCurrent() {
	_ = e.element.Pause()
}

// SeekTo moves playback to an absolute position in seconds.
func (e *Engine) SeekTo(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	_ = e.element.Seek(seconds)
}

// PointerDown freezes progress updates while the user drags the control.
func (e *Engine) PointerDown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dragging = true
	e.dragOrigin = e.store.TrackProgress()
}

// PointerUp releases the drag. An unchanged value restores live updates
// without seeking. A changed value seeks to it and keeps progress frozen
// until the resulting seeked event lands, so stale time updates emitted
// before the seek settles cannot snap the control back.
func (e *Engine) PointerUp(seconds float64) {
	e.mu.Lock()
	if !e.dragging {
		e.mu.Unlock()
		return
	}
	origin := e.dragOrigin
	if seconds == origin {
		e.dragging = false
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	e.SeekTo(seconds)
}

// SetSpeed persists the playback rate and applies it immediately.
func (e *Engine) SetSpeed(speed float64) {
	if err := e.store.SetSpeed(speed); err != nil {
		log.Warnf("engine: saving speed: %v", err)
	}
	_ = e.element.SetRate(e.store.Speed())
}

// SetReciter switches the recitation style, refetching the current chapter
// at the same position. Playback resumes only if it was playing.
func (e *Engine) SetReciter(reciterID int) {
	if err := e.store.SetReciterID(reciterID); err != nil {
		log.Warnf("engine: saving reciter: %v", err)
	}

	e.mu.Lock()
	track := e.track
	e.track = nil
	e.mu.Unlock()

	if track == nil {
		return
	}

	wasPlaying := e.store.IsPlaying()
	position := e.store.TrackProgress()

	if !wasPlaying {
		e.mu.Lock()
		e.autoResume = false
		e.mu.Unlock()
	}

	_ = e.Start(track.ChapterID, &event.StartPayload{StartFromSeconds: position})
}

// Dismiss saves the resumable position and stops playback, keeping the
// store so the session can be picked up later.
func (e *Engine) Dismiss() {
	e.mu.Lock()
	track := e.track
	e.mu.Unlock()

	if track != nil {
		e.snapshot(e.store.TrackProgress())
	}
	_ = e.element.Pause()
}

// Track returns the currently held track, nil when nothing is loaded.
func (e *Engine) Track() *audio.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.track
}

func (e *Engine) setEvent(ev playback.Event) {
	e.store.SetCurrentEvent(ev)
	log.Debugf("engine: %s", ev)
}
