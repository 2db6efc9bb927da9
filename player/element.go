// Package player abstracts the media element driving audio output.
// The primary implementation targets mpv via its JSON-IPC interface.
package player

// MediaEventType names a raw media element notification.
type MediaEventType string

const (
	MediaLoadStart      MediaEventType = "loadstart"
	MediaLoadedMetadata MediaEventType = "loadedmetadata"
	MediaTimeUpdate     MediaEventType = "timeupdate"
	MediaSeeking        MediaEventType = "seeking"
	MediaSeeked         MediaEventType = "seeked"
	MediaWaiting        MediaEventType = "waiting"
	MediaPlaying        MediaEventType = "playing"
	MediaPause          MediaEventType = "pause"
	MediaEnded          MediaEventType = "ended"
	MediaError          MediaEventType = "error"
)

// MediaEvent is a single media element notification with the playback
// position at the time it fired.
type MediaEvent struct {
	Type     MediaEventType
	Time     float64
	Duration float64
	Err      error
}

// Element encapsulates the required capabilities of a media output backend.
type Element interface {
	// Load replaces the current source with the given URL without playing.
	Load(url string) error

	// Play resumes playback of the loaded source.
	Play() error

	// Pause suspends playback, keeping the position.
	Pause() error

	// Seek moves playback to an absolute position in seconds.
	Seek(seconds float64) error

	// SetRate changes the playback speed multiplier.
	SetRate(rate float64) error

	// CurrentTime reports the playback position in seconds.
	CurrentTime() float64

	// Duration reports the total length of the loaded source in seconds.
	Duration() float64

	// Events streams media notifications until the element closes.
	Events() <-chan MediaEvent

	// Close terminates the backend and releases its resources.
	Close() error
}
