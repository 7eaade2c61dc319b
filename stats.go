package trackcache

import "sync/atomic"

// Stats holds fetch statistics using atomic counters for lock-free updates.
type Stats struct {
	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// Hits returns the number of fetches served from cache.
func (s *Stats) Hits() int64 {
	return s.hits.Load()
}

// Misses returns the number of fetches that invoked the upstream.
func (s *Stats) Misses() int64 {
	return s.misses.Load()
}

// Failures returns the number of upstream fetches that failed.
func (s *Stats) Failures() int64 {
	return s.failures.Load()
}

// HitRate returns the cache hit rate as a value between 0 and 1.
// Returns 0 if there have been no fetches.
func (s *Stats) HitRate() float64 {
	hits := s.hits.Load()
	misses := s.misses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func (s *Stats) hit() {
	s.hits.Add(1)
}

func (s *Stats) miss() {
	s.misses.Add(1)
}

func (s *Stats) failure() {
	s.failures.Add(1)
}

// Snapshot is a point-in-time copy of fetch statistics.
type Snapshot struct {
	Hits     int64
	Misses   int64
	Failures int64
}

// HitRate returns the cache hit rate as a value between 0 and 1.
// Returns 0 if there have been no fetches.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Snapshot returns a point-in-time copy of the stats.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Failures: s.failures.Load(),
	}
}
