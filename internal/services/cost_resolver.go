package services

import (
	"log"
	"strings"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

// MatchMethod names the cascade layer that produced a cost, persisted with
// each item so every reconciled cost stays attributable.
type MatchMethod string

const (
	MatchCache       MatchMethod = "cache"
	MatchDirect      MatchMethod = "direct"
	MatchBaseSKU     MatchMethod = "base_sku"
	MatchBrandPrefix MatchMethod = "brand_prefix"
	MatchBarcode     MatchMethod = "barcode"
	MatchNormalized  MatchMethod = "normalized"
	MatchFallback    MatchMethod = "fallback"
)

// CostMatch is the outcome of one cascade resolution.
type CostMatch struct {
	Cost       float64 // tax-inclusive unit cost
	Method     MatchMethod
	MatchedKey string // the SKU/barcode/ratio label that satisfied the layer
}

type costQuery struct {
	sku       string
	barcode   string
	baseSKU   string
	unitPrice float64
	name      string
}

// costStrategy is one layer of the cascade. Layers are tried strictly in
// order and the first hit wins; keeping them as a list makes adding or
// removing a layer a local change.
type costStrategy struct {
	method MatchMethod
	match  func(q *costQuery) *CostMatch
}

// CostResolver answers "what did this sold unit cost us" through a fixed
// cascade of matching strategies over the in-memory catalog and the
// persistent cost cache. It is deterministic for a fixed catalog and
// cache state. A resolver belongs to one ingestion run; the maps it owns
// are not safe for concurrent writers.
type CostResolver struct {
	catalog          map[string]*models.Product
	catalogByBarcode map[string]*models.Product
	cache            *CostCache
	prefixes         []string
	estimator        *BrandRatioEstimator
	monitor          *MatchMonitor
	strategies       []costStrategy
}

// NewCostResolver builds a resolver over a catalog snapshot. Brand
// prefixes are discovered from the snapshot at construction time.
func NewCostResolver(products []models.Product, cache *CostCache, estimator *BrandRatioEstimator, monitor *MatchMonitor) *CostResolver {
	catalog := make(map[string]*models.Product, len(products))
	byBarcode := make(map[string]*models.Product)
	for i := range products {
		p := &products[i]
		if p.SKU != "" {
			catalog[p.SKU] = p
		}
		if p.Barcode != "" {
			byBarcode[p.Barcode] = p
		}
	}

	r := &CostResolver{
		catalog:          catalog,
		catalogByBarcode: byBarcode,
		cache:            cache,
		prefixes:         DiscoverBrandPrefixes(catalog),
		estimator:        estimator,
		monitor:          monitor,
	}
	r.strategies = []costStrategy{
		{MatchCache, r.matchCache},
		{MatchDirect, r.matchDirect},
		{MatchBaseSKU, r.matchBaseSKU},
		{MatchBrandPrefix, r.matchBrandPrefix},
		{MatchBarcode, r.matchBarcode},
		{MatchNormalized, r.matchNormalized},
	}
	return r
}

// Prefixes returns the discovered brand prefixes in ranked order.
func (r *CostResolver) Prefixes() []string { return r.prefixes }

// Resolve runs the cascade for one sold item. It always returns a match:
// when every structural layer misses, the statistical fallback estimates
// from the unit price. Structural hits and the fallback estimate both
// populate the cache so repeated lookups short-circuit at layer one.
func (r *CostResolver) Resolve(sku, barcode string, unitPrice float64, productName string) CostMatch {
	q := &costQuery{
		sku:       sku,
		barcode:   barcode,
		baseSKU:   ExtractBaseSKU(sku),
		unitPrice: unitPrice,
		name:      productName,
	}

	for _, s := range r.strategies {
		hit := s.match(q)
		if hit == nil {
			continue
		}
		r.monitor.RecordMatch(s.method)
		if s.method != MatchCache {
			r.cache.Add(q.sku, hit.Cost, q.barcode, q.name)
		}
		if hit.Cost == 0 && unitPrice > 0 {
			r.monitor.RecordZeroCost()
			log.Printf("cost: zero cost from %s match for SKU %s (price %.2f)", s.method, sku, unitPrice)
		}
		return *hit
	}

	cost, source := r.estimator.FallbackCost(unitPrice, sku)
	r.monitor.RecordMatch(MatchFallback)
	r.monitor.RecordUnmatched(sku)
	if cost == 0 && unitPrice > 0 {
		// unitPrice > 0 guarantees a non-zero estimate; reaching here means
		// the ratio table is broken.
		r.monitor.RecordZeroCost()
	}
	r.cache.Add(q.sku, cost, q.barcode, q.name)
	log.Printf("cost: fallback for SKU %s (base %s) -> %.2f (%s)", sku, q.baseSKU, cost, source)
	return CostMatch{Cost: cost, Method: MatchFallback, MatchedKey: source}
}

func (r *CostResolver) matchCache(q *costQuery) *CostMatch {
	if entry, ok := r.cache.Get(q.sku); ok {
		return &CostMatch{Cost: entry.Cost, Method: MatchCache, MatchedKey: q.sku}
	}
	if entry, ok := r.cache.GetByBarcode(q.barcode); ok {
		return &CostMatch{Cost: entry.Cost, Method: MatchCache, MatchedKey: q.barcode}
	}
	return nil
}

func (r *CostResolver) matchDirect(q *costQuery) *CostMatch {
	if q.sku == "" {
		return nil
	}
	if p, ok := r.catalog[q.sku]; ok {
		return &CostMatch{Cost: p.PurchasePriceWithVAT, Method: MatchDirect, MatchedKey: p.SKU}
	}
	return nil
}

func (r *CostResolver) matchBaseSKU(q *costQuery) *CostMatch {
	if q.baseSKU == "" || q.baseSKU == q.sku {
		return nil
	}
	if p, ok := r.catalog[q.baseSKU]; ok {
		return &CostMatch{Cost: p.PurchasePriceWithVAT, Method: MatchBaseSKU, MatchedKey: p.SKU}
	}
	return nil
}

func (r *CostResolver) matchBrandPrefix(q *costQuery) *CostMatch {
	if q.baseSKU == "" || !strings.HasPrefix(q.sku, brandedSKUPrefix) {
		return nil
	}
	for _, prefix := range r.prefixes {
		alt := prefix + "-" + q.baseSKU
		if p, ok := r.catalog[alt]; ok {
			r.monitor.RecordPrefixHit(prefix)
			return &CostMatch{Cost: p.PurchasePriceWithVAT, Method: MatchBrandPrefix, MatchedKey: alt}
		}
	}
	return nil
}

func (r *CostResolver) matchBarcode(q *costQuery) *CostMatch {
	if q.barcode == "" {
		return nil
	}
	if p, ok := r.catalogByBarcode[q.barcode]; ok {
		return &CostMatch{Cost: p.PurchasePriceWithVAT, Method: MatchBarcode, MatchedKey: p.SKU}
	}
	return nil
}

func (r *CostResolver) matchNormalized(q *costQuery) *CostMatch {
	for _, variant := range NormalizeSKUVariants(q.sku) {
		if variant == q.sku {
			continue
		}
		if p, ok := r.catalog[variant]; ok {
			return &CostMatch{Cost: p.PurchasePriceWithVAT, Method: MatchNormalized, MatchedKey: variant}
		}
	}
	return nil
}
