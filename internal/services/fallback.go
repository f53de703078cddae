package services

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

const (
	// defaultFallbackRatio estimates cost as 70% of the sale price when no
	// brand-specific ratio has been learned.
	defaultFallbackRatio = 0.70
	// minRatioSamples is how many plausible observations a brand needs
	// before its learned ratio is trusted over the default.
	minRatioSamples = 10
	// Ratios outside this band are treated as data errors, not signal.
	minPlausibleRatio = 0.30
	maxPlausibleRatio = 0.95
)

// BrandRatioEstimator is the statistical cost fallback: it learns a
// cost/price ratio per brand from items the structural cascade matched,
// then estimates unmatched items as unit_price * ratio.
type BrandRatioEstimator struct {
	brandRatios  map[string]float64
	defaultRatio float64
	minSamples   int
}

// NewBrandRatioEstimator returns an estimator with no learned ratios; it
// answers with the default ratio until LearnFromItems feeds it data.
func NewBrandRatioEstimator() *BrandRatioEstimator {
	return &BrandRatioEstimator{
		brandRatios:  make(map[string]float64),
		defaultRatio: defaultFallbackRatio,
		minSamples:   minRatioSamples,
	}
}

// LearnFromItems recomputes per-brand ratios from stored items. Items that
// were themselves fallback-estimated are excluded so the estimator never
// feeds on its own output; ratios outside the plausible band are dropped.
func (e *BrandRatioEstimator) LearnFromItems(items []models.SalesOrderItem) {
	samples := make(map[string][]float64)
	for i := range items {
		item := &items[i]
		if item.CostMatchMethod == string(MatchFallback) {
			continue
		}
		if item.UnitCostWithVAT <= 0 || item.UnitPrice <= 0 {
			continue
		}
		ratio := item.UnitCostWithVAT / item.UnitPrice
		if ratio < minPlausibleRatio || ratio > maxPlausibleRatio {
			continue
		}
		brand := BrandFromSKU(item.ProductSKU)
		if brand == "" {
			continue
		}
		samples[brand] = append(samples[brand], ratio)
	}

	ratios := make(map[string]float64)
	for brand, observed := range samples {
		if len(observed) < e.minSamples {
			continue
		}
		sum := 0.0
		for _, r := range observed {
			sum += r
		}
		avg := sum / float64(len(observed))
		ratios[brand] = math.Round(avg*1000) / 1000
		log.Printf("fallback: learned ratio %s = %.3f (%d samples)", brand, ratios[brand], len(observed))
	}
	e.brandRatios = ratios
}

// FallbackCost estimates a unit cost for an unmatched SKU. The second
// return names which ratio served, for attribution and monitoring.
func (e *BrandRatioEstimator) FallbackCost(unitPrice float64, sku string) (float64, string) {
	if brand := BrandFromSKU(sku); brand != "" {
		if ratio, ok := e.brandRatios[brand]; ok {
			return unitPrice * ratio, fmt.Sprintf("BRAND_%s_%.3f", brand, ratio)
		}
	}
	return unitPrice * e.defaultRatio, fmt.Sprintf("DEFAULT_%.2f", e.defaultRatio)
}

// Report logs the learned ratios.
func (e *BrandRatioEstimator) Report() {
	if len(e.brandRatios) == 0 {
		log.Printf("fallback: no brand ratios learned yet, default %.2f applies", e.defaultRatio)
		return
	}
	brands := make([]string, 0, len(e.brandRatios))
	for brand := range e.brandRatios {
		brands = append(brands, brand)
	}
	sort.Strings(brands)
	log.Printf("fallback: %d brand ratios (default %.2f):", len(e.brandRatios), e.defaultRatio)
	for _, brand := range brands {
		log.Printf("  %s: %.3f", brand, e.brandRatios[brand])
	}
}
