package services

import (
	"sort"
	"strings"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

const (
	brandedSKUPrefix   = "BYK-"
	maxDiscoveredCount = 20
)

// DiscoverBrandPrefixes scans the catalog for the season prefixes of the
// branded SKU family ("BYK-25K-303760" -> "BYK-25K") and returns them
// ranked by frequency, most common first, capped at 20. Ties break
// lexicographically so the cascade order is deterministic.
func DiscoverBrandPrefixes(catalog map[string]*models.Product) []string {
	counts := make(map[string]int)
	for sku := range catalog {
		if !strings.HasPrefix(sku, brandedSKUPrefix) {
			continue
		}
		parts := strings.Split(sku, "-")
		if len(parts) < 3 {
			continue
		}
		counts[parts[0]+"-"+parts[1]]++
	}

	prefixes := make([]string, 0, len(counts))
	for prefix := range counts {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if counts[prefixes[i]] != counts[prefixes[j]] {
			return counts[prefixes[i]] > counts[prefixes[j]]
		}
		return prefixes[i] < prefixes[j]
	})

	if len(prefixes) > maxDiscoveredCount {
		prefixes = prefixes[:maxDiscoveredCount]
	}
	return prefixes
}
