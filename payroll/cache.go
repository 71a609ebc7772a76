package payroll

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// =============================================================================
// RESULT CACHE - Memoized Compute keyed by input fingerprint
// =============================================================================

// Cache memoizes Engine.Compute. A hit returns exactly what a fresh
// computation would, so callers may use it interchangeably with the engine.
// When the cache reaches its limit it is emptied and starts over.
type Cache struct {
	engine *Engine
	limit  int

	mu      sync.RWMutex
	entries map[string]Result
	hits    uint64
	misses  uint64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// NewCache wraps engine (the default engine when nil). limit <= 0 means 1024.
func NewCache(engine *Engine, limit int) *Cache {
	if engine == nil {
		engine = defaultEngine
	}
	if limit <= 0 {
		limit = 1024
	}
	return &Cache{
		engine:  engine,
		limit:   limit,
		entries: make(map[string]Result),
	}
}

// Compute returns the cached result for these inputs or computes it.
func (c *Cache) Compute(schedule WeeklySchedule, rates RateTable, withholding Withholding) Result {
	key := Fingerprint(schedule, rates, withholding)

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return cached.clone()
	}

	result := c.engine.Compute(schedule, rates, withholding)

	c.mu.Lock()
	c.misses++
	if len(c.entries) >= c.limit {
		c.entries = make(map[string]Result)
	}
	c.entries[key] = result.clone()
	c.mu.Unlock()

	return result
}

func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// Fingerprint hashes a canonical encoding of the inputs.
func Fingerprint(schedule WeeklySchedule, rates RateTable, withholding Withholding) string {
	h := sha256.New()
	fmt.Fprintf(h, "rates:%s|%s|%s|%s;", rates.Base, rates.Night, rates.Holiday, rates.Weekend)
	fmt.Fprintf(h, "withholding:%s|%s;", withholding.Percent, withholding.AdditionalPercent)
	for _, d := range schedule.days {
		shift := "-"
		if d.Shift != nil {
			shift = fmt.Sprintf("%d-%d", d.Shift.Start, d.Shift.End)
		}
		fmt.Fprintf(h, "day:%d|%s|%d|%t|%t;", d.Weekday, shift, d.FlexibleMinutes, d.Holiday, d.Weekend)
	}
	return hex.EncodeToString(h.Sum(nil))
}
