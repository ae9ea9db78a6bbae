package cache

import "sync/atomic"

// Statistics counts cache operations. It is safe for concurrent use.
type Statistics struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
	rejects   atomic.Int64
}

// NewStatistics returns zeroed statistics.
func NewStatistics() *Statistics {
	return &Statistics{}
}

func (s *Statistics) hit()      { s.hits.Add(1) }
func (s *Statistics) miss()     { s.misses.Add(1) }
func (s *Statistics) set()      { s.sets.Add(1) }
func (s *Statistics) eviction() { s.evictions.Add(1) }
func (s *Statistics) reject()   { s.rejects.Add(1) }

// Hits returns the number of successful lookups.
func (s *Statistics) Hits() int64 { return s.hits.Load() }

// Misses returns the number of failed lookups.
func (s *Statistics) Misses() int64 { return s.misses.Load() }

// Sets returns the number of stored entries.
func (s *Statistics) Sets() int64 { return s.sets.Load() }

// Evictions returns the number of entries dropped to make room.
func (s *Statistics) Evictions() int64 { return s.evictions.Load() }

// Rejects returns the number of entries refused for their cost.
func (s *Statistics) Rejects() int64 { return s.rejects.Load() }

// HitRatio returns hits over total lookups, or 0 before any lookup.
func (s *Statistics) HitRatio() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Summary is a point-in-time copy of Statistics.
type Summary struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Sets      int64   `json:"sets"`
	Evictions int64   `json:"evictions"`
	Rejects   int64   `json:"rejects"`
	HitRatio  float64 `json:"hitRatio"`
}

// Summary returns a snapshot of the counters.
func (s *Statistics) Summary() Summary {
	return Summary{
		Hits:      s.Hits(),
		Misses:    s.Misses(),
		Sets:      s.Sets(),
		Evictions: s.Evictions(),
		Rejects:   s.Rejects(),
		HitRatio:  s.HitRatio(),
	}
}
