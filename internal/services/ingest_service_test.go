package services

import (
	"context"
	"math"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/connectors"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/database"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

// fakeSource serves canned single-page responses in place of the Sentos
// API.
type fakeSource struct {
	ordersByStatus map[int][]connectors.SentosOrder
	products       []connectors.SentosProduct
}

func (f *fakeSource) ListOrders(_ context.Context, p connectors.ListOrdersParams) (*connectors.OrdersPage, error) {
	orders := f.ordersByStatus[p.Status]
	return &connectors.OrdersPage{Orders: orders, Total: len(orders), Page: p.Page, TotalPages: 1}, nil
}

func (f *fakeSource) ListProducts(_ context.Context, page, size int) (*connectors.ProductsPage, error) {
	if page > 1 {
		return &connectors.ProductsPage{Page: page, TotalPages: 1}, nil
	}
	return &connectors.ProductsPage{Products: f.products, Total: len(f.products), Page: page, TotalPages: 1}, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.Initialize: %v", err)
	}
	return db
}

func testIngestService(t *testing.T, db *gorm.DB, source OrderSource) *IngestService {
	t.Helper()
	fetcher := connectors.Fetcher{MinDelay: 0, BaseRetryDelay: time.Millisecond, MaxRetries: 2}
	return NewIngestService(db, source, nil, fetcher, t.TempDir(), 24*time.Hour, nil)
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	products := []models.Product{
		{SourceProductID: 1, SKU: "BYK-25K-303760-M41-R15", Barcode: "8680001", PurchasePriceWithVAT: 120},
		{SourceProductID: 2, SKU: "194938", PurchasePriceWithVAT: 60},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}
}

func testOrders() map[int][]connectors.SentosOrder {
	return map[int][]connectors.SentosOrder{
		2: {{
			ID: 1001, OrderCode: "TY-1", OrderDate: "2026-08-15 14:30:00",
			Source: "TRENDYOL", Status: 2, Total: "299,80",
			Lines: []connectors.SentosItem{
				{ID: 501, SKU: "BYK-25K-303760-M41-R15", Barcode: "8680001",
					Status: "accepted", Quantity: 2, Price: "149,90", Amount: "299,80"},
			},
		}},
		6: {{
			ID: 1002, OrderCode: "HB-1", OrderDate: "2026-08-16 10:00:00",
			Source: "HEPSIBURADA", Status: 6, Total: "89,90",
			Lines: []connectors.SentosItem{
				{ID: 601, SKU: "194938", Status: "accepted", Quantity: 1,
					Price: "89,90", Amount: "89,90"},
			},
		}},
	}
}

var testRange = IngestRequest{StartDate: "2026-08-10", EndDate: "2026-08-20"}

func TestIngestOrders(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	svc := testIngestService(t, db, &fakeSource{ordersByStatus: testOrders()})

	result, err := svc.IngestOrders(context.Background(), testRange)
	if err != nil {
		t.Fatalf("IngestOrders: %v", err)
	}
	if result.OrdersFetched != 2 || result.OrdersStored != 2 || result.ItemsStored != 2 {
		t.Fatalf("counts = %d/%d/%d, want 2/2/2",
			result.OrdersFetched, result.OrdersStored, result.ItemsStored)
	}
	if result.Cache == nil || result.Cache.TotalProducts == 0 || !result.Cache.Valid {
		t.Errorf("cache stats = %+v, want populated and valid", result.Cache)
	}

	var item models.SalesOrderItem
	if err := db.Where("unique_key = ?", "1001_501_BYK-25K-303760-M41-R15").First(&item).Error; err != nil {
		t.Fatalf("stored item lookup: %v", err)
	}
	if item.UnitCostWithVAT != 120 || item.TotalCostWithVAT != 240 {
		t.Errorf("costs = %v/%v, want 120/240", item.UnitCostWithVAT, item.TotalCostWithVAT)
	}
	if item.CostMatchMethod != string(MatchCache) && item.CostMatchMethod != string(MatchDirect) {
		t.Errorf("match method = %q", item.CostMatchMethod)
	}
	wantCommission := 299.80 * 21.5 / 100
	if math.Abs(item.CommissionAmount-wantCommission) > 1e-9 {
		t.Errorf("commission = %v, want %v", item.CommissionAmount, wantCommission)
	}

	// cancelled order's item inherits the flag and carries no commission
	var cancelled models.SalesOrderItem
	if err := db.Where("source_order_id = ?", 1002).First(&cancelled).Error; err != nil {
		t.Fatalf("cancelled item lookup: %v", err)
	}
	if !cancelled.IsCancelled {
		t.Error("cancelled order's item not flagged")
	}
	if cancelled.CommissionAmount != 0 {
		t.Errorf("cancelled commission = %v, want 0", cancelled.CommissionAmount)
	}
}

func TestIngestIdempotence(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	svc := testIngestService(t, db, &fakeSource{ordersByStatus: testOrders()})

	first, err := svc.IngestOrders(context.Background(), testRange)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.IngestOrders(context.Background(), testRange)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.OrdersStored != second.OrdersStored || first.ItemsStored != second.ItemsStored {
		t.Errorf("runs differ: %d/%d then %d/%d",
			first.OrdersStored, first.ItemsStored, second.OrdersStored, second.ItemsStored)
	}

	var orderCount, itemCount int64
	db.Model(&models.SalesOrder{}).Count(&orderCount)
	db.Model(&models.SalesOrderItem{}).Count(&itemCount)
	if orderCount != 2 || itemCount != 2 {
		t.Errorf("stored rows = %d orders / %d items, want 2/2", orderCount, itemCount)
	}
}

func TestIngestRetailFiltered(t *testing.T) {
	db := testDB(t)
	orders := map[int][]connectors.SentosOrder{
		2: {{
			ID: 2001, OrderDate: "2026-08-15 12:00:00", Source: "RETAIL", Status: 2,
			Lines: []connectors.SentosItem{{ID: 1, SKU: "X", Quantity: 1, Price: "10,00"}},
		}},
	}
	svc := testIngestService(t, db, &fakeSource{ordersByStatus: orders})

	result, err := svc.IngestOrders(context.Background(), testRange)
	if err != nil {
		t.Fatalf("IngestOrders: %v", err)
	}
	if result.RetailSkipped != 1 || result.OrdersStored != 0 {
		t.Errorf("retail skipped = %d, stored = %d, want 1/0", result.RetailSkipped, result.OrdersStored)
	}
	var count int64
	db.Model(&models.SalesOrder{}).Count(&count)
	if count != 0 {
		t.Errorf("retail order reached storage")
	}
}

func TestIngestClearExisting(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)

	// pre-seed an order in range that the source no longer returns
	stale := models.SalesOrder{
		SourceOrderID: 9999, OrderDate: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		Marketplace: models.MarketplaceTrendyol, OrderStatus: models.StatusConfirmed,
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("seed stale order: %v", err)
	}

	svc := testIngestService(t, db, &fakeSource{ordersByStatus: testOrders()})
	req := testRange
	req.ClearExisting = true
	if _, err := svc.IngestOrders(context.Background(), req); err != nil {
		t.Fatalf("IngestOrders: %v", err)
	}

	var count int64
	db.Model(&models.SalesOrder{}).Where("source_order_id = ?", 9999).Count(&count)
	if count != 0 {
		t.Error("stale order survived clear_existing")
	}
}

func TestIngestUpdatesInPlace(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)
	orders := testOrders()
	svc := testIngestService(t, db, &fakeSource{ordersByStatus: orders})

	if _, err := svc.IngestOrders(context.Background(), testRange); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// the order progresses to delivered between runs
	moved := orders[2][0]
	moved.Status = 99
	delete(orders, 2)
	orders[99] = []connectors.SentosOrder{moved}

	if _, err := svc.IngestOrders(context.Background(), testRange); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var order models.SalesOrder
	if err := db.Where("source_order_id = ?", 1001).First(&order).Error; err != nil {
		t.Fatalf("order lookup: %v", err)
	}
	if order.OrderStatus != models.StatusDelivered {
		t.Errorf("status = %v, want delivered after update", order.OrderStatus)
	}
	var count int64
	db.Model(&models.SalesOrder{}).Where("source_order_id = ?", 1001).Count(&count)
	if count != 1 {
		t.Errorf("order duplicated on re-ingest: %d rows", count)
	}
}

func TestIngestZeroAmountValidationWarning(t *testing.T) {
	db := testDB(t)
	orders := map[int][]connectors.SentosOrder{
		2: {{
			ID: 3001, OrderDate: "2026-08-15 12:00:00", Source: "SHOPIFY", Status: 2,
			Lines: []connectors.SentosItem{{ID: 1, SKU: "FREEBIE", Quantity: 1, Price: "0", Amount: "0"}},
		}},
	}
	svc := testIngestService(t, db, &fakeSource{ordersByStatus: orders})

	result, err := svc.IngestOrders(context.Background(), testRange)
	if err != nil {
		t.Fatalf("IngestOrders: %v", err)
	}
	if result.Validation == nil || result.Validation.ZeroAmountRows != 1 {
		t.Fatalf("validation = %+v, want one zero-amount row", result.Validation)
	}
	if result.ErrorCategory != CategoryValidationWarning {
		t.Errorf("category = %q, want %q", result.ErrorCategory, CategoryValidationWarning)
	}
}

func TestSyncProducts(t *testing.T) {
	db := testDB(t)
	source := &fakeSource{products: []connectors.SentosProduct{
		{ID: 1, SKU: "303760", Name: "Basic Tee", Barcode: "8680001",
			PurchasePrice: "100,00", VATRate: 10, SalePrice: "249,90"},
		{ID: 2, SKU: "304177", PurchasePrice: "80,00", VATRate: 20},
	}}
	svc := testIngestService(t, db, source)

	result, err := svc.SyncProducts(context.Background(), 0)
	if err != nil {
		t.Fatalf("SyncProducts: %v", err)
	}
	if result.ProductsStored != 2 || result.CacheEntries != 2 {
		t.Fatalf("stored = %d cache = %d, want 2/2", result.ProductsStored, result.CacheEntries)
	}

	var p models.Product
	if err := db.Where("sku = ?", "303760").First(&p).Error; err != nil {
		t.Fatalf("product lookup: %v", err)
	}
	if math.Abs(p.PurchasePriceWithVAT-110) > 1e-9 {
		t.Errorf("cost with VAT = %v, want 110", p.PurchasePriceWithVAT)
	}

	// re-sync updates in place
	if _, err := svc.SyncProducts(context.Background(), 0); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	var count int64
	db.Model(&models.Product{}).Count(&count)
	if count != 2 {
		t.Errorf("product rows = %d, want 2", count)
	}
}

func TestErrorCategory(t *testing.T) {
	transient := &connectors.TransientError{Source: "sentos", StatusCode: 429}
	permanent := &connectors.PermanentError{Source: "sentos", StatusCode: 401}
	if got := ErrorCategory(transient); got != CategoryTransientSource {
		t.Errorf("transient category = %q", got)
	}
	if got := ErrorCategory(permanent); got != CategoryPermanentSource {
		t.Errorf("permanent category = %q", got)
	}
	if got := ErrorCategory(gorm.ErrInvalidDB); got != CategoryStorage {
		t.Errorf("storage category = %q", got)
	}
	if got := ErrorCategory(nil); got != "" {
		t.Errorf("nil category = %q", got)
	}
}

// pagingSource serves a two-page status-2 sweep and pauses the gate while
// handing out the first page.
type pagingSource struct {
	gate   *PauseGate
	pages  int32
	paused chan struct{}
}

func (p *pagingSource) ListOrders(_ context.Context, q connectors.ListOrdersParams) (*connectors.OrdersPage, error) {
	if q.Status != 2 {
		return &connectors.OrdersPage{Page: q.Page, TotalPages: 1}, nil
	}
	atomic.AddInt32(&p.pages, 1)
	if q.Page == 1 {
		p.gate.Pause()
		close(p.paused)
	}
	order := connectors.SentosOrder{
		ID: int64(2000 + q.Page), OrderCode: "TY-P", OrderDate: "2026-08-15 12:00:00",
		Source: "TRENDYOL", Status: 2,
		Lines: []connectors.SentosItem{
			{ID: int64(q.Page), SKU: "194938", Status: "accepted", Quantity: 1,
				Price: "89,90", Amount: "89,90"},
		},
	}
	return &connectors.OrdersPage{Orders: []connectors.SentosOrder{order}, Page: q.Page, TotalPages: 2}, nil
}

func (p *pagingSource) ListProducts(_ context.Context, page, size int) (*connectors.ProductsPage, error) {
	return &connectors.ProductsPage{Page: page, TotalPages: 1}, nil
}

func TestIngestPausesBetweenPages(t *testing.T) {
	db := testDB(t)
	gate := NewPauseGate()
	src := &pagingSource{gate: gate, paused: make(chan struct{})}
	fetcher := connectors.Fetcher{MinDelay: 0, BaseRetryDelay: time.Millisecond, MaxRetries: 2}
	svc := NewIngestService(db, src, nil, fetcher, t.TempDir(), 24*time.Hour, gate)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.IngestOrders(context.Background(), testRange); err != nil {
			t.Errorf("IngestOrders: %v", err)
		}
	}()

	select {
	case <-src.paused:
	case <-time.After(2 * time.Second):
		t.Fatal("first page never served")
	}
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&src.pages); n != 1 {
		t.Fatalf("pages served while paused = %d, want 1", n)
	}

	gate.Resume()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ingest did not finish after resume")
	}
	if n := atomic.LoadInt32(&src.pages); n != 2 {
		t.Errorf("pages served = %d, want 2", n)
	}
}

func TestIngestThenAggregate(t *testing.T) {
	db := testDB(t)
	seedCatalog(t, db)

	orders := testOrders()
	orders[5] = []connectors.SentosOrder{{
		ID: 1003, OrderCode: "TY-2", OrderDate: "2026-08-17 09:00:00",
		Source: "TRENDYOL", Status: 5, Total: "200,00",
		Lines: []connectors.SentosItem{
			{ID: 701, SKU: "ZZZ-9999", Status: "accepted", Quantity: 1,
				Price: "200,00", Amount: "200,00"},
		},
	}}
	svc := testIngestService(t, db, &fakeSource{ordersByStatus: orders})

	result, err := svc.IngestOrders(context.Background(), testRange)
	if err != nil {
		t.Fatalf("IngestOrders: %v", err)
	}
	if result.OrdersStored != 3 || result.ItemsStored != 3 {
		t.Fatalf("stored = %d/%d, want 3/3", result.OrdersStored, result.ItemsStored)
	}

	// the uncatalogued SKU lands on the ratio fallback
	var missed models.SalesOrderItem
	if err := db.Where("product_sku = ?", "ZZZ-9999").First(&missed).Error; err != nil {
		t.Fatalf("fallback item lookup: %v", err)
	}
	if missed.CostMatchMethod != string(MatchFallback) {
		t.Errorf("match method = %q, want %q", missed.CostMatchMethod, MatchFallback)
	}
	if math.Abs(missed.UnitCostWithVAT-200*0.70) > 1e-9 {
		t.Errorf("fallback cost = %v, want %v", missed.UnitCostWithVAT, 200*0.70)
	}

	agg, err := NewAnalyticsService(db).Aggregate(AggregateRequest{
		StartDate: testRange.StartDate, EndDate: testRange.EndDate,
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	sum := agg.Summary
	if sum.Gross.Orders != 3 || sum.Net.Orders != 2 || sum.Cancelled.Orders != 1 {
		t.Errorf("orders = %d/%d/%d, want 3/2/1",
			sum.Gross.Orders, sum.Net.Orders, sum.Cancelled.Orders)
	}
	if math.Abs(sum.Net.Revenue-(299.80+200)) > 1e-9 {
		t.Errorf("net revenue = %v, want 499.80", sum.Net.Revenue)
	}
	if math.Abs(sum.Cancelled.Revenue-89.90) > 1e-9 {
		t.Errorf("cancelled revenue = %v, want 89.90", sum.Cancelled.Revenue)
	}
}
