// Package optimizer implements the rule-based query optimizer: selectivity
// estimation over catalog statistics, used to drive filter pushdown,
// index selection, and join-order decisions. Grounded on
// original_source/.../query/optimizer/cost/selectivity.rs.
package optimizer

import "sync"

// PropertyStats is the subset of per-property statistics the selectivity
// estimator consults, matching the fields selectivity.rs reads off its
// (unretrieved) StatisticsManager::get_property_stats result: a non-zero
// DistinctValues count is all estimate_equality_selectivity needs.
type PropertyStats struct {
	DistinctValues int64
	MinValue       float64
	MaxValue       float64
	HasBounds      bool
}

// StatisticsProvider is the narrow read surface the optimizer needs from
// the catalog's statistics manager, matching selectivity.rs's single call
// site (get_property_stats(tag_name, property_name)). Kept as an
// interface rather than a concrete dependency on internal/schema so the
// optimizer package can be tested without a live catalog.
type StatisticsProvider interface {
	PropertyStats(tagName, propertyName string) (PropertyStats, bool)
}

// MemoryStatistics is a simple in-process statistics table, populated by
// whatever component maintains catalog statistics (ANALYZE-style
// collection is out of this module's scope; this is the seam it would
// plug into).
type MemoryStatistics struct {
	mu    sync.RWMutex
	stats map[string]PropertyStats
}

func NewMemoryStatistics() *MemoryStatistics {
	return &MemoryStatistics{stats: make(map[string]PropertyStats)}
}

func statsKey(tagName, propertyName string) string { return tagName + "." + propertyName }

func (m *MemoryStatistics) Set(tagName, propertyName string, s PropertyStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[statsKey(tagName, propertyName)] = s
}

func (m *MemoryStatistics) PropertyStats(tagName, propertyName string) (PropertyStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[statsKey(tagName, propertyName)]
	return s, ok
}
