// Package playback holds the audio player's persisted preferences, playback
// histories and the lifecycle vocabulary shared by the engine and its views.
package playback

// Event is a lifecycle stage of the audio player.
type Event string

const (
	// EventFetching marks the start of a track metadata fetch.
	EventFetching Event = "FETCHING"
	// EventFetched marks a completed track metadata fetch.
	EventFetched Event = "FETCHED"
	// EventLoading marks the media element loading the audio source.
	EventLoading Event = "LOADING"
	// EventLoaded marks the media element having its metadata ready.
	EventLoaded Event = "LOADED"

	EventSeeking Event = "SEEKING"
	EventSeeked  Event = "SEEKED"
	EventWaiting Event = "WAITING"
	EventPlaying Event = "PLAYING"
	EventPause   Event = "PAUSE"
	EventEnded   Event = "ENDED"

	// EventError marks a media element playback failure.
	EventError Event = "ERROR"
	// EventErrorRequestCancel marks a track fetch aborted on purpose.
	EventErrorRequestCancel Event = "ERROR_REQUEST_CANCEL"
	// EventErrorRequestUnknown marks a track fetch that failed for any other reason.
	EventErrorRequestUnknown Event = "ERROR_REQUEST_UNKNOWN"
)

// Busy reports whether the event describes a transitional stage during
// which user-visible progress should show a spinner.
func (e Event) Busy() bool {
	switch e {
	case EventFetching, EventLoading, EventSeeking, EventWaiting:
		return true
	default:
		return false
	}
}

// Failed reports whether the event is one of the error stages.
func (e Event) Failed() bool {
	switch e {
	case EventError, EventErrorRequestCancel, EventErrorRequestUnknown:
		return true
	default:
		return false
	}
}
