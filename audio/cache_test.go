package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/quranku-cli/quranku/network"
)

func TestCache(t *testing.T) {
	Convey("Cache", t, func() {
		registry := network.NewRegistry()
		key := CacheKey{ReciterID: 7, ChapterID: 2}

		Convey("memoizes a successful fetch", func() {
			var fetches int32
			cache := NewCache(func(ctx context.Context, reciterID, chapterID int) (*Track, error) {
				atomic.AddInt32(&fetches, 1)
				return &Track{ChapterID: chapterID, ReciterID: reciterID}, nil
			}, registry, "fetch-track")

			first, err := cache.Load(key)
			So(err, ShouldBeNil)
			So(first.ChapterID, ShouldEqual, 2)

			second, err := cache.Load(key)
			So(err, ShouldBeNil)
			So(second, ShouldEqual, first)
			So(atomic.LoadInt32(&fetches), ShouldEqual, 1)
		})

		Convey("distinct reciters are distinct entries", func() {
			var fetches int32
			cache := NewCache(func(ctx context.Context, reciterID, chapterID int) (*Track, error) {
				atomic.AddInt32(&fetches, 1)
				return &Track{ChapterID: chapterID, ReciterID: reciterID}, nil
			}, registry, "fetch-track")

			_, _ = cache.Load(CacheKey{ReciterID: 7, ChapterID: 2})
			_, _ = cache.Load(CacheKey{ReciterID: 3, ChapterID: 2})

			So(atomic.LoadInt32(&fetches), ShouldEqual, 2)
			So(cache.Len(), ShouldEqual, 2)
		})

		Convey("concurrent loads share one fetch", func() {
			var fetches int32
			gate := make(chan struct{})
			cache := NewCache(func(ctx context.Context, reciterID, chapterID int) (*Track, error) {
				atomic.AddInt32(&fetches, 1)
				<-gate
				return &Track{ChapterID: chapterID}, nil
			}, registry, "fetch-track")

			var wg sync.WaitGroup
			results := make([]*Track, 4)
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = cache.Load(key)
				}(i)
			}

			time.Sleep(50 * time.Millisecond)
			close(gate)
			wg.Wait()

			So(atomic.LoadInt32(&fetches), ShouldEqual, 1)
			for _, track := range results {
				So(track, ShouldEqual, results[0])
			}
		})

		Convey("a failed fetch is not memoized", func() {
			var fetches int32
			cache := NewCache(func(ctx context.Context, reciterID, chapterID int) (*Track, error) {
				if atomic.AddInt32(&fetches, 1) == 1 {
					return nil, errors.New("boom")
				}
				return &Track{ChapterID: chapterID}, nil
			}, registry, "fetch-track")

			_, err := cache.Load(key)
			So(err, ShouldNotBeNil)

			track, err := cache.Load(key)
			So(err, ShouldBeNil)
			So(track, ShouldNotBeNil)
			So(atomic.LoadInt32(&fetches), ShouldEqual, 2)
		})

		Convey("an aborted fetch does not poison the memo", func() {
			var fetches int32
			cache := NewCache(func(ctx context.Context, reciterID, chapterID int) (*Track, error) {
				atomic.AddInt32(&fetches, 1)
				<-ctx.Done()
				return nil, ctx.Err()
			}, registry, "fetch-track")

			done := make(chan error, 1)
			go func() {
				_, err := cache.Load(key)
				done <- err
			}()

			for registry.Count("fetch-track") == 0 {
				time.Sleep(time.Millisecond)
			}
			registry.Abort("fetch-track")

			So(<-done, ShouldNotBeNil)
			So(cache.Peek(key).IsAbsent(), ShouldBeTrue)
		})

		Convey("a waiter joining an aborted in-flight fetch starts fresh", func() {
			var fetches int32
			cache := NewCache(func(ctx context.Context, reciterID, chapterID int) (*Track, error) {
				n := atomic.AddInt32(&fetches, 1)
				if n == 1 {
					<-ctx.Done()
					return nil, ctx.Err()
				}
				return &Track{ChapterID: chapterID}, nil
			}, registry, "fetch-track")

			first := make(chan error, 1)
			go func() {
				_, err := cache.Load(key)
				first <- err
			}()

			for registry.Count("fetch-track") == 0 {
				time.Sleep(time.Millisecond)
			}
			registry.Abort("fetch-track")

			// The first fetch's context is now canceled; a new load must not
			// attach to it as a waiter.
			track, err := cache.Load(key)
			So(err, ShouldBeNil)
			So(track, ShouldNotBeNil)
			So(<-first, ShouldNotBeNil)
			So(atomic.LoadInt32(&fetches), ShouldEqual, 2)
		})

		Convey("Peek never triggers a fetch", func() {
			var fetches int32
			cache := NewCache(func(ctx context.Context, reciterID, chapterID int) (*Track, error) {
				atomic.AddInt32(&fetches, 1)
				return &Track{}, nil
			}, registry, "fetch-track")

			So(cache.Peek(key).IsAbsent(), ShouldBeTrue)
			So(atomic.LoadInt32(&fetches), ShouldEqual, 0)

			_, _ = cache.Load(key)
			So(cache.Peek(key).IsPresent(), ShouldBeTrue)
		})

		Convey("Forget evicts the entry", func() {
			cache := NewCache(func(ctx context.Context, reciterID, chapterID int) (*Track, error) {
				return &Track{}, nil
			}, registry, "fetch-track")

			_, _ = cache.Load(key)
			So(cache.Len(), ShouldEqual, 1)

			cache.Forget(key)
			So(cache.Len(), ShouldEqual, 0)
		})
	})
}
