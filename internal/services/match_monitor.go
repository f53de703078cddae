package services

import (
	"log"
	"sort"
	"strings"
)

// MatchMonitor tallies cost-matching outcomes per cascade layer so a run's
// matching performance can be inspected and regressions spotted. One
// monitor belongs to one ingestion run.
type MatchMonitor struct {
	counts       map[MatchMethod]int
	prefixHits   map[string]int
	unmatched    map[string]int
	zeroCostHits int
	total        int
}

// NewMatchMonitor returns an empty monitor.
func NewMatchMonitor() *MatchMonitor {
	return &MatchMonitor{
		counts:     make(map[MatchMethod]int),
		prefixHits: make(map[string]int),
		unmatched:  make(map[string]int),
	}
}

// RecordMatch counts one resolution by the given layer.
func (m *MatchMonitor) RecordMatch(method MatchMethod) {
	m.total++
	m.counts[method]++
}

// RecordPrefixHit counts which discovered prefix satisfied a lookup.
func (m *MatchMonitor) RecordPrefixHit(prefix string) {
	m.prefixHits[prefix]++
}

// RecordUnmatched tallies the SKU pattern (first three dash segments) of a
// SKU that fell through to the fallback, for later catalog triage.
func (m *MatchMonitor) RecordUnmatched(sku string) {
	parts := strings.Split(sku, "-")
	pattern := sku
	if len(parts) >= 3 {
		pattern = strings.Join(parts[:3], "-")
	}
	m.unmatched[pattern]++
}

// RecordZeroCost counts an item that ended the cascade with zero cost
// despite a non-zero price. These are defects, not misses.
func (m *MatchMonitor) RecordZeroCost() {
	m.zeroCostHits++
}

// Count returns how many resolutions the given layer produced.
func (m *MatchMonitor) Count(method MatchMethod) int { return m.counts[method] }

// Total returns the number of resolutions recorded.
func (m *MatchMonitor) Total() int { return m.total }

// ZeroCostCount returns the number of zero-cost defects recorded.
func (m *MatchMonitor) ZeroCostCount() int { return m.zeroCostHits }

// Report logs a per-layer summary of the run's matching performance.
func (m *MatchMonitor) Report() {
	if m.total == 0 {
		log.Println("cost matching: no items resolved")
		return
	}
	log.Printf("cost matching: %d items resolved", m.total)
	for _, method := range []MatchMethod{
		MatchCache, MatchDirect, MatchBaseSKU, MatchBrandPrefix,
		MatchBarcode, MatchNormalized, MatchFallback,
	} {
		count := m.counts[method]
		if count == 0 {
			continue
		}
		log.Printf("  %-13s %6d (%.1f%%)", method, count, float64(count)*100/float64(m.total))
	}
	if m.zeroCostHits > 0 {
		log.Printf("  zero-cost defects: %d", m.zeroCostHits)
	}
	if len(m.unmatched) > 0 {
		patterns := make([]string, 0, len(m.unmatched))
		for p := range m.unmatched {
			patterns = append(patterns, p)
		}
		sort.Slice(patterns, func(i, j int) bool {
			if m.unmatched[patterns[i]] != m.unmatched[patterns[j]] {
				return m.unmatched[patterns[i]] > m.unmatched[patterns[j]]
			}
			return patterns[i] < patterns[j]
		})
		if len(patterns) > 10 {
			patterns = patterns[:10]
		}
		log.Printf("  top unmatched patterns:")
		for _, p := range patterns {
			log.Printf("    %s: %d", p, m.unmatched[p])
		}
	}
}
