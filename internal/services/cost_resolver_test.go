package services

import (
	"testing"
	"time"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

func newTestResolver(t *testing.T, products []models.Product) (*CostResolver, *CostCache, *MatchMonitor) {
	t.Helper()
	cache, err := NewCostCache(t.TempDir(), 24*time.Hour)
	if err != nil {
		t.Fatalf("NewCostCache: %v", err)
	}
	monitor := NewMatchMonitor()
	resolver := NewCostResolver(products, cache, NewBrandRatioEstimator(), monitor)
	return resolver, cache, monitor
}

func testCatalog() []models.Product {
	return []models.Product{
		{SKU: "303760", Barcode: "8680001", Name: "Basic Tee", PurchasePriceWithVAT: 120},
		{SKU: "BYK-25K-304177", Barcode: "8680002", PurchasePriceWithVAT: 90},
		{SKU: "BYK-24Y-126443", PurchasePriceWithVAT: 75},
		{SKU: "4064", Barcode: "8680003", PurchasePriceWithVAT: 55},
	}
}

func TestResolveDirectMatch(t *testing.T) {
	resolver, _, monitor := newTestResolver(t, testCatalog())

	match := resolver.Resolve("303760", "", 250, "Basic Tee")
	if match.Method != MatchDirect {
		t.Fatalf("method = %s, want %s", match.Method, MatchDirect)
	}
	if match.Cost != 120 {
		t.Fatalf("cost = %v, want 120", match.Cost)
	}
	if monitor.Count(MatchDirect) != 1 {
		t.Errorf("monitor direct count = %d, want 1", monitor.Count(MatchDirect))
	}
}

func TestResolveCacheWinsOverCatalog(t *testing.T) {
	resolver, cache, _ := newTestResolver(t, testCatalog())
	cache.Add("303760", 99, "", "")

	match := resolver.Resolve("303760", "", 250, "")
	if match.Method != MatchCache {
		t.Fatalf("method = %s, want %s", match.Method, MatchCache)
	}
	if match.Cost != 99 {
		t.Fatalf("cost = %v, want cached 99 over catalog 120", match.Cost)
	}
}

func TestResolveBaseSKUMatch(t *testing.T) {
	resolver, cache, _ := newTestResolver(t, testCatalog())

	match := resolver.Resolve("303760-M41-R15", "", 250, "")
	if match.Method != MatchBaseSKU {
		t.Fatalf("method = %s, want %s", match.Method, MatchBaseSKU)
	}
	if match.Cost != 120 {
		t.Fatalf("cost = %v, want 120", match.Cost)
	}
	// the hit must have populated the cache under the sold SKU
	if entry, ok := cache.Get("303760-M41-R15"); !ok || entry.Cost != 120 {
		t.Errorf("cache not populated after base-SKU hit: %v %v", entry, ok)
	}
}

func TestResolveBrandPrefixMatch(t *testing.T) {
	// variant carries season 23K which is absent from the catalog; the
	// discovered prefixes (BYK-25K, BYK-24Y) must recover the base code
	catalog := testCatalog()
	resolver, _, monitor := newTestResolver(t, catalog)

	match := resolver.Resolve("BYK-23K-304177-M41-R15", "", 250, "")
	if match.Method != MatchBrandPrefix {
		t.Fatalf("method = %s, want %s", match.Method, MatchBrandPrefix)
	}
	if match.Cost != 90 {
		t.Fatalf("cost = %v, want 90", match.Cost)
	}
	if match.MatchedKey != "BYK-25K-304177" {
		t.Errorf("matched key = %q, want BYK-25K-304177", match.MatchedKey)
	}
	if monitor.Count(MatchBrandPrefix) != 1 {
		t.Errorf("monitor prefix count = %d, want 1", monitor.Count(MatchBrandPrefix))
	}
}

func TestResolveBarcodeMatch(t *testing.T) {
	resolver, _, _ := newTestResolver(t, testCatalog())

	match := resolver.Resolve("UNKNOWN-SKU", "8680001", 250, "")
	if match.Method != MatchBarcode {
		t.Fatalf("method = %s, want %s", match.Method, MatchBarcode)
	}
	if match.Cost != 120 {
		t.Fatalf("cost = %v, want 120", match.Cost)
	}
}

func TestResolveNormalizedMatch(t *testing.T) {
	resolver, _, _ := newTestResolver(t, testCatalog())

	match := resolver.Resolve("S00004064", "", 250, "")
	if match.Method != MatchNormalized {
		t.Fatalf("method = %s, want %s", match.Method, MatchNormalized)
	}
	if match.Cost != 55 {
		t.Fatalf("cost = %v, want 55", match.Cost)
	}
}

func TestResolveFallback(t *testing.T) {
	resolver, cache, monitor := newTestResolver(t, testCatalog())

	match := resolver.Resolve("NOPE-1-2-3", "", 200, "")
	if match.Method != MatchFallback {
		t.Fatalf("method = %s, want %s", match.Method, MatchFallback)
	}
	if match.Cost != 140 { // 200 * default 0.70
		t.Fatalf("cost = %v, want 140", match.Cost)
	}
	if monitor.Count(MatchFallback) != 1 {
		t.Errorf("monitor fallback count = %d, want 1", monitor.Count(MatchFallback))
	}

	// fallback results are cached too; the second resolve short-circuits
	if _, ok := cache.Get("NOPE-1-2-3"); !ok {
		t.Fatal("fallback result not cached")
	}
	again := resolver.Resolve("NOPE-1-2-3", "", 200, "")
	if again.Method != MatchCache {
		t.Errorf("second resolve method = %s, want %s", again.Method, MatchCache)
	}
	if again.Cost != 140 {
		t.Errorf("second resolve cost = %v, want 140", again.Cost)
	}
}

func TestResolveDeterministic(t *testing.T) {
	resolver, _, _ := newTestResolver(t, testCatalog())

	first := resolver.Resolve("BYK-25K-304177", "", 250, "")
	for i := 0; i < 5; i++ {
		got := resolver.Resolve("BYK-25K-304177", "", 250, "")
		if got.Cost != first.Cost {
			t.Fatalf("resolve not deterministic: %v then %v", first.Cost, got.Cost)
		}
	}
}

func TestResolveZeroCostTracked(t *testing.T) {
	catalog := []models.Product{{SKU: "303760", PurchasePriceWithVAT: 0}}
	resolver, _, monitor := newTestResolver(t, catalog)

	match := resolver.Resolve("303760", "", 250, "")
	if match.Method != MatchDirect {
		t.Fatalf("method = %s, want %s", match.Method, MatchDirect)
	}
	if monitor.ZeroCostCount() != 1 {
		t.Errorf("zero-cost count = %d, want 1", monitor.ZeroCostCount())
	}
}

func TestDiscoverBrandPrefixes(t *testing.T) {
	catalog := map[string]*models.Product{
		"BYK-25K-1": {}, "BYK-25K-2": {}, "BYK-25K-3": {},
		"BYK-24Y-1": {}, "BYK-24Y-2": {},
		"303760": {},
	}
	prefixes := DiscoverBrandPrefixes(catalog)
	if len(prefixes) != 2 {
		t.Fatalf("prefixes = %v, want 2 entries", prefixes)
	}
	if prefixes[0] != "BYK-25K" || prefixes[1] != "BYK-24Y" {
		t.Errorf("prefixes = %v, want [BYK-25K BYK-24Y]", prefixes)
	}
}

func TestBrandRatioEstimator(t *testing.T) {
	e := NewBrandRatioEstimator()

	// 10 plausible samples at ratio 0.5, plus noise that must be ignored
	var items []models.SalesOrderItem
	for i := 0; i < 10; i++ {
		items = append(items, models.SalesOrderItem{
			ProductSKU: "BYK-25K-303760", UnitPrice: 200, UnitCostWithVAT: 100,
			CostMatchMethod: string(MatchDirect),
		})
	}
	items = append(items,
		models.SalesOrderItem{ProductSKU: "BYK-1", UnitPrice: 100, UnitCostWithVAT: 70,
			CostMatchMethod: string(MatchFallback)}, // self-feeding, skipped
		models.SalesOrderItem{ProductSKU: "BYK-2", UnitPrice: 100, UnitCostWithVAT: 5,
			CostMatchMethod: string(MatchDirect)}, // implausible ratio, skipped
	)
	e.LearnFromItems(items)

	cost, source := e.FallbackCost(200, "BYK-25K-999999")
	if cost != 100 {
		t.Fatalf("learned fallback cost = %v, want 100", cost)
	}
	if source != "BRAND_BYK_0.500" {
		t.Errorf("source = %q, want BRAND_BYK_0.500", source)
	}

	cost, source = e.FallbackCost(100, "OTHER-1")
	if cost != 70 {
		t.Fatalf("default fallback cost = %v, want 70", cost)
	}
	if source != "DEFAULT_0.70" {
		t.Errorf("source = %q, want DEFAULT_0.70", source)
	}
}

func TestBrandRatioNeedsMinimumSamples(t *testing.T) {
	e := NewBrandRatioEstimator()
	var items []models.SalesOrderItem
	for i := 0; i < 9; i++ { // one short of the minimum
		items = append(items, models.SalesOrderItem{
			ProductSKU: "LCW-1", UnitPrice: 100, UnitCostWithVAT: 50,
			CostMatchMethod: string(MatchDirect),
		})
	}
	e.LearnFromItems(items)
	cost, _ := e.FallbackCost(100, "LCW-1")
	if cost != 70 {
		t.Errorf("cost = %v, want default 70 with insufficient samples", cost)
	}
}
