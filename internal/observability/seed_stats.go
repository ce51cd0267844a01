// Package observability provides seeding statistics for the eludia command.
package observability

import (
	"sort"
	"sync"
	"time"
)

// SeedStats tracks generated rows and skipped columns per table.
type SeedStats struct {
	mu     sync.RWMutex
	tables map[string]*TableStats
	window time.Duration
}

// TableStats holds seeding statistics for one table.
type TableStats struct {
	Table      string
	Rows       int64
	Runs       int64
	Duration   time.Duration
	LastSeeded time.Time
	Skipped    map[string]int // column → runs in which it had no generator
}

// NewSeedStats creates a new seeding statistics tracker.
// window: entries not seeded within this duration are dropped by Prune
func NewSeedStats(window time.Duration) *SeedStats {
	return &SeedStats{
		tables: make(map[string]*TableStats),
		window: window,
	}
}

func (s *SeedStats) entry(table string) *TableStats {
	stats, exists := s.tables[table]
	if !exists {
		stats = &TableStats{
			Table:   table,
			Skipped: make(map[string]int),
		}
		s.tables[table] = stats
	}
	return stats
}

// RecordRun records one seeding run of table that inserted rows rows.
// This method is O(1) and thread-safe.
func (s *SeedStats) RecordRun(table string, rows int, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.entry(table)
	stats.Rows += int64(rows)
	stats.Runs++
	stats.Duration += elapsed
	stats.LastSeeded = time.Now()
}

// RecordSkipped records a column left out of a run for lack of a generator.
func (s *SeedStats) RecordSkipped(table, column string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(table).Skipped[column]++
}

// Get returns a copy of the statistics for table.
func (s *SeedStats) Get(table string) (TableStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.tables[table]
	if !ok {
		return TableStats{}, false
	}
	return stats.copy(), true
}

// Top returns the top N tables by generated rows, descending.
func (s *SeedStats) Top(n int) []TableStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || len(s.tables) == 0 {
		return []TableStats{}
	}

	out := make([]TableStats, 0, len(s.tables))
	for _, stats := range s.tables {
		out = append(out, stats.copy())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rows != out[j].Rows {
			return out[i].Rows > out[j].Rows
		}
		return out[i].Table < out[j].Table
	})

	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// Prune removes tables where time.Since(LastSeeded) > window.
func (s *SeedStats) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := time.Now().Add(-s.window)
	for table, stats := range s.tables {
		if stats.LastSeeded.Before(threshold) {
			delete(s.tables, table)
		}
	}
}

func (t *TableStats) copy() TableStats {
	c := *t
	c.Skipped = make(map[string]int, len(t.Skipped))
	for col, n := range t.Skipped {
		c.Skipped[col] = n
	}
	return c
}
