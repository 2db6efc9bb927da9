// Package event carries the typed channels the playback engine is driven by.
package event

import (
	"slices"
	"sync"

	"github.com/quranku-cli/quranku/audio"
)

// Channel delivers values of one type to its subscribers synchronously,
// in subscription order, on the emitter's goroutine.
type Channel[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

// On subscribes fn and returns a function that removes the subscription.
func (c *Channel[T]) On(fn func(T)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs == nil {
		c.subs = make(map[int]func(T))
	}
	id := c.next
	c.next++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Emit delivers the value to every current subscriber.
func (c *Channel[T]) Emit(value T) {
	c.mu.Lock()
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// StartPayload tunes where playback begins and reports the outcome of the
// load to the requester.
type StartPayload struct {
	StartFromSeconds float64
	StartFromAyah    int
	Success          func(*audio.Track)
	Error            func(error)
}

// StartRequest asks the engine to begin playback of a chapter.
type StartRequest struct {
	ChapterID int
	Payload   *StartPayload
}

// Bus groups the engine's control channels. Channel names follow the
// storage key convention so that log lines correlate.
type Bus struct {
	// Play resumes the current track.
	Play Channel[struct{}]
	// Pause halts the current track.
	Pause Channel[struct{}]
	// Start loads and plays a chapter.
	Start Channel[StartRequest]
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}
