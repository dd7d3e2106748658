package narrate

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// TrackFetcher retrieves an alignment track from the remote API by its
// artifact reference.
type TrackFetcher interface {
	FetchAlignment(ctx context.Context, ref string) (AlignmentTrack, error)
}

// TrackCacheStats holds cache performance counters.
type TrackCacheStats struct {
	Hits    int64
	Misses  int64
	Fetches int64
}

// TrackCache memoizes alignment track fetches per reference for the lifetime
// of the process. Failures are memoized too, so a doomed reference is fetched
// at most once per run. Concurrent first requests for the same reference
// collapse to a single underlying fetch.
//
// Construct one per process and pass it by reference; Reset exists so tests
// can clear state between runs.
type TrackCache struct {
	fetcher TrackFetcher

	mu      sync.RWMutex
	entries map[string]trackEntry
	stats   TrackCacheStats

	group singleflight.Group
}

type trackEntry struct {
	track AlignmentTrack
	err   error
}

// NewTrackCache creates a cache backed by the given fetcher.
func NewTrackCache(fetcher TrackFetcher) *TrackCache {
	return &TrackCache{
		fetcher: fetcher,
		entries: make(map[string]trackEntry),
	}
}

// Track returns the alignment track for ref, fetching it on first request and
// serving the memoized result afterwards. A ref for which no track exists
// returns ErrTrackUnavailable.
func (c *TrackCache) Track(ctx context.Context, ref string) (AlignmentTrack, error) {
	if ref == "" {
		return AlignmentTrack{}, ErrTrackUnavailable
	}

	c.mu.RLock()
	entry, ok := c.entries[ref]
	c.mu.RUnlock()
	if ok {
		c.recordHit()
		return entry.track, entry.err
	}

	// fetched stays false for callers whose flight function never ran: those
	// that joined an in-flight fetch, and leaders whose re-check found the
	// entry already stored. Both count as hits.
	fetched := false
	v, err, _ := c.group.Do(ref, func() (interface{}, error) {
		// Re-check under the group: a previous flight may have stored the
		// entry between our read and Do.
		c.mu.RLock()
		entry, ok := c.entries[ref]
		c.mu.RUnlock()
		if ok {
			return entry, nil
		}

		fetched = true
		track, fetchErr := c.fetcher.FetchAlignment(ctx, ref)
		entry = trackEntry{track: track, err: fetchErr}

		c.mu.Lock()
		c.entries[ref] = entry
		c.stats.Misses++
		c.stats.Fetches++
		c.mu.Unlock()

		return entry, nil
	})
	if !fetched {
		c.recordHit()
	}
	if err != nil {
		// The flight function never returns an error itself; fetch failures
		// travel inside the entry so they memoize like values.
		return AlignmentTrack{}, err
	}

	entry = v.(trackEntry)
	return entry.track, entry.err
}

// Stats returns a copy of the cache counters.
func (c *TrackCache) Stats() TrackCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Reset clears all memoized entries and counters.
func (c *TrackCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]trackEntry)
	c.stats = TrackCacheStats{}
}

func (c *TrackCache) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
}
