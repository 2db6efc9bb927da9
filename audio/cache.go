package audio

import (
	"context"
	"sync"

	"github.com/samber/mo"

	"github.com/quranku-cli/quranku/log"
)

// Fetcher retrieves a chapter track for a reciter. The context is canceled
// when the fetch is aborted through the registry.
type Fetcher func(ctx context.Context, reciterID, chapterID int) (*Track, error)

// Aborter registers cancellation handles under a signal key.
type Aborter interface {
	Add(key string, cancel context.CancelFunc)
}

// CacheKey identifies a memoized track.
type CacheKey struct {
	ReciterID int
	ChapterID int
}

type cacheEntry struct {
	done  chan struct{}
	ctx   context.Context
	track *Track
	err   error
}

// Cache memoizes fetched tracks per (reciter, chapter) for the process
// lifetime. Concurrent loads of the same key share one fetch; failed or
// aborted fetches are not memoized.
type Cache struct {
	fetch    Fetcher
	aborter  Aborter
	signalID string

	mu      sync.Mutex
	entries map[CacheKey]*cacheEntry
}

// NewCache wires a cache to its fetcher. Every fetch registers its
// cancellation handle with the aborter under signalID.
func NewCache(fetch Fetcher, aborter Aborter, signalID string) *Cache {
	return &Cache{
		fetch:    fetch,
		aborter:  aborter,
		signalID: signalID,
		entries:  make(map[CacheKey]*cacheEntry),
	}
}

// Peek returns the memoized track for the key without fetching.
func (c *Cache) Peek(key CacheKey) mo.Option[*Track] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return mo.None[*Track]()
	}
	select {
	case <-e.done:
		if e.err != nil {
			return mo.None[*Track]()
		}
		return mo.Some(e.track)
	default:
		return mo.None[*Track]()
	}
}

// Load returns the track for the key, fetching it at most once across
// concurrent callers. A waiter joining an in-flight fetch that has already
// been aborted starts a fresh fetch instead of inheriting the abort.
func (c *Cache) Load(key CacheKey) (*Track, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		stale := false
		select {
		case <-e.done:
			stale = e.err != nil
		default:
			stale = e.ctx.Err() != nil
		}
		if !stale {
			c.mu.Unlock()
			<-e.done
			return e.track, e.err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.aborter.Add(c.signalID, cancel)

	e = &cacheEntry{done: make(chan struct{}), ctx: ctx}
	c.entries[key] = e
	c.mu.Unlock()

	go c.run(key, e)

	<-e.done
	return e.track, e.err
}

func (c *Cache) run(key CacheKey, e *cacheEntry) {
	e.track, e.err = c.fetch(e.ctx, key.ReciterID, key.ChapterID)
	if e.err != nil {
		log.Debugf("track fetch %d/%d failed: %v", key.ReciterID, key.ChapterID, e.err)
		c.mu.Lock()
		// A newer fetch for the same key may already own the slot.
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	close(e.done)
}

// Forget evicts the memoized track for the key.
func (c *Cache) Forget(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Len reports the number of entries, in-flight included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
