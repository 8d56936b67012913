package store

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no probe records match.
	ErrNotFound = errors.New("no upstream probe records")
)

// ProbeRecord is the outcome of one scheduled run of the upstream pipeline.
type ProbeRecord struct {
	Timestamp    time.Time `json:"timestamp"` // always UTC
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	WeatherOK    bool      `json:"weather_ok"`
	AQIOK        bool      `json:"aqi_ok"`
	ErrorMessage *string   `json:"error_message"`
	DurationMs   int64     `json:"duration_ms"`
}

// Healthy reports whether both upstream calls succeeded.
func (r ProbeRecord) Healthy() bool {
	return r.WeatherOK && r.AQIOK
}

// MemoryStore is a concurrency-safe, bounded, time-ordered history of probe records.
type MemoryStore struct {
	mu      sync.RWMutex
	records []ProbeRecord

	// retention configuration
	maxHistory int           // max number of records kept
	maxAge     time.Duration // optional max age for records

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory or maxAge is <= 0, that limit is not applied.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a record and enforces retention.
func (s *MemoryStore) Save(rec ProbeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.records) > s.maxHistory {
		over := len(s.records) - s.maxHistory
		s.records = append([]ProbeRecord(nil), s.records[over:]...)
	}

	// Enforce retention by age. The newest record is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.records)-1; i++ {
			if !s.records[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.records = s.records[i:]
		}
	}
}

// Latest returns the most recent record.
func (s *MemoryStore) Latest() (ProbeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return ProbeRecord{}, ErrNotFound
	}
	return s.records[len(s.records)-1], nil
}

// Range returns all records between from and to (inclusive).
func (s *MemoryStore) Range(from, to time.Time) ([]ProbeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ProbeRecord
	for _, rec := range s.records {
		if !rec.Timestamp.Before(from) && !rec.Timestamp.After(to) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len returns the number of retained records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
