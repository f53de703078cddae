package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/connectors"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

// Error categories carried in IngestResult so callers can tell a retryable
// source failure from a broken request or a storage fault.
const (
	CategoryTransientSource   = "transient_source"
	CategoryPermanentSource   = "permanent_source"
	CategoryStorage           = "storage"
	CategoryValidationWarning = "validation_warning"
)

// ErrorCategory classifies a run error into one of the result categories.
func ErrorCategory(err error) string {
	switch {
	case err == nil:
		return ""
	case connectors.IsTransient(err):
		return CategoryTransientSource
	case connectors.IsPermanent(err):
		return CategoryPermanentSource
	default:
		return CategoryStorage
	}
}

const (
	ordersPageSize   = 100
	productsPageSize = 100
	batchSize        = 50
	estimatorSample  = 5000
)

// OrderSource is the slice of the Sentos client the ingest service needs.
// Tests substitute an in-memory implementation.
type OrderSource interface {
	ListOrders(ctx context.Context, p connectors.ListOrdersParams) (*connectors.OrdersPage, error)
	ListProducts(ctx context.Context, page, size int) (*connectors.ProductsPage, error)
}

// PackageSource is the slice of the Trendyol client used for the direct
// seller-API ingestion path.
type PackageSource interface {
	ListShipmentPackages(ctx context.Context, p connectors.ListPackagesParams) (*connectors.TrendyolPackagesPage, error)
}

// IngestRequest describes one ingestion run. Dates are inclusive
// YYYY-MM-DD. ClearExisting purges the range before ingesting; it is never
// implied.
type IngestRequest struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Marketplace   string `json:"marketplace"`
	ClearExisting bool   `json:"clear_existing"`
}

// ValidationReport is the post-ingestion storage audit. Findings here are
// warnings; the run has already committed.
type ValidationReport struct {
	OrdersExpected int      `json:"orders_expected"`
	OrdersStored   int      `json:"orders_stored"`
	ItemsExpected  int      `json:"items_expected"`
	ItemsStored    int      `json:"items_stored"`
	DuplicateKeys  []string `json:"duplicate_keys,omitempty"`
	ZeroAmountRows int      `json:"zero_amount_rows"`
	Warnings       []string `json:"warnings,omitempty"`
}

// IngestResult is the structured outcome of one run. A non-empty
// ErrorCategory means the run failed after committing the progress the
// counters describe.
type IngestResult struct {
	OrdersFetched int           `json:"orders_fetched"`
	OrdersStored  int           `json:"orders_stored"`
	ItemsStored   int           `json:"items_stored"`
	RetailSkipped int           `json:"retail_skipped"`
	Skipped       int           `json:"skipped"`
	AnomalyCount  int           `json:"anomaly_count"`
	Duration      time.Duration `json:"duration"`

	Cache         *CacheStats       `json:"cache,omitempty"`
	Validation    *ValidationReport `json:"validation,omitempty"`
	ErrorCategory string            `json:"error_category,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// SyncProductsResult reports one catalog sync.
type SyncProductsResult struct {
	ProductsFetched int           `json:"products_fetched"`
	ProductsStored  int           `json:"products_stored"`
	CacheEntries    int           `json:"cache_entries"`
	Duration        time.Duration `json:"duration"`
}

// IngestService orchestrates order ingestion: fetch, map, reconcile costs,
// upsert in batches, validate. Runs are serialized; concurrent calls queue
// behind the mutex. Reconciliation state (catalog snapshot, resolver,
// ratio estimator) is rebuilt per run so a run always sees a coherent
// catalog.
type IngestService struct {
	db       *gorm.DB
	source   OrderSource
	packages PackageSource // nil when Trendyol credentials are absent
	fetcher  connectors.Fetcher
	cacheDir string
	cacheTTL time.Duration
	gate     *PauseGate

	mu sync.Mutex
}

// NewIngestService wires the orchestrator. packages may be nil.
func NewIngestService(db *gorm.DB, source OrderSource, packages PackageSource, fetcher connectors.Fetcher, cacheDir string, cacheTTL time.Duration, gate *PauseGate) *IngestService {
	if gate == nil {
		gate = NewPauseGate()
	}
	return &IngestService{
		db:       db,
		source:   source,
		packages: packages,
		fetcher:  fetcher,
		cacheDir: cacheDir,
		cacheTTL: cacheTTL,
		gate:     gate,
	}
}

// Gate exposes the pause gate for the scheduler and the API.
func (s *IngestService) Gate() *PauseGate { return s.gate }

// IngestOrders runs one full ingestion for the requested range. Malformed
// records are skipped with anomalies; only source exhaustion or storage
// failure aborts the run, and committed batches stay committed.
func (s *IngestService) IngestOrders(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &IngestResult{}
	fail := func(err error) (*IngestResult, error) {
		result.Duration = time.Since(start)
		result.ErrorCategory = ErrorCategory(err)
		result.Error = err.Error()
		return result, err
	}

	rangeStart, rangeEnd, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return fail(&connectors.PermanentError{Source: "ingest", StatusCode: 400, Err: err})
	}

	log.Printf("ingest: starting run %s..%s marketplace=%q clear=%v",
		req.StartDate, req.EndDate, req.Marketplace, req.ClearExisting)

	if req.ClearExisting {
		if err := s.purgeRange(rangeStart, rangeEnd, req.Marketplace); err != nil {
			return fail(fmt.Errorf("failed to purge existing range: %w", err))
		}
	}

	recon, err := s.buildReconciler()
	if err != nil {
		return fail(err)
	}

	orders, err := s.fetchOrders(ctx, req)
	if err != nil {
		return fail(err)
	}
	result.OrdersFetched = len(orders)
	log.Printf("ingest: fetched %d unique orders", len(orders))

	fetchedAt := time.Now()
	batch := make([]*MappedOrder, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.gate.Wait(ctx); err != nil {
			return err
		}
		stored, items, err := s.storeBatch(batch)
		if err != nil {
			return err
		}
		result.OrdersStored += stored
		result.ItemsStored += items
		batch = batch[:0]
		return nil
	}

	for i := range orders {
		mapped, err := MapSentosOrder(&orders[i], fetchedAt)
		if errors.Is(err, ErrRetailChannel) {
			result.RetailSkipped++
			continue
		}
		if err != nil {
			log.Printf("ingest: skipping order %d: %v", orders[i].ID, err)
			result.Skipped++
			continue
		}
		for _, a := range mapped.Anomalies {
			log.Printf("ingest: anomaly: %s", a)
		}
		result.AnomalyCount += len(mapped.Anomalies)

		s.reconcile(mapped, recon)
		batch = append(batch, mapped)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return fail(err)
			}
		}
	}
	if err := flush(); err != nil {
		return fail(err)
	}

	if err := recon.cache.Save(); err != nil {
		log.Printf("ingest: failed to save cost cache: %v", err)
	}
	recon.monitor.Report()
	stats := recon.cache.Stats()
	result.Cache = &stats

	result.Validation = s.validate(rangeStart, rangeEnd, req.Marketplace, result)
	result.Duration = time.Since(start)
	if len(result.Validation.Warnings) > 0 {
		result.ErrorCategory = CategoryValidationWarning
	}
	log.Printf("ingest: done in %s: %d orders, %d items, %d retail skipped, %d anomalies",
		result.Duration.Round(time.Millisecond), result.OrdersStored, result.ItemsStored,
		result.RetailSkipped, result.AnomalyCount)
	return result, nil
}

// IngestTrendyolPackages pulls shipment packages straight from the seller
// API for the range and upserts them on the same path as Sentos orders.
func (s *IngestService) IngestTrendyolPackages(ctx context.Context, startDate, endDate string) (*IngestResult, error) {
	if s.packages == nil {
		return nil, &connectors.PermanentError{Source: "trendyol", StatusCode: 400,
			Err: fmt.Errorf("trendyol credentials are not configured")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &IngestResult{}
	fail := func(err error) (*IngestResult, error) {
		result.Duration = time.Since(start)
		result.ErrorCategory = ErrorCategory(err)
		result.Error = err.Error()
		return result, err
	}

	rangeStart, rangeEnd, err := parseDateRange(startDate, endDate)
	if err != nil {
		return fail(&connectors.PermanentError{Source: "ingest", StatusCode: 400, Err: err})
	}

	packages, err := connectors.FetchAll(ctx, s.fetcher, func(ctx context.Context, page int) ([]connectors.TrendyolPackage, int, error) {
		if err := s.gate.Wait(ctx); err != nil {
			return nil, 0, err
		}
		// the API pages from 0 and filters on last-modified, not order date
		resp, err := s.packages.ListShipmentPackages(ctx, connectors.ListPackagesParams{
			StartDate: rangeStart,
			EndDate:   rangeEnd,
			Page:      page - 1,
			Size:      200,
		})
		if err != nil {
			return nil, 0, err
		}
		return resp.Packages, resp.TotalPages, nil
	})
	if err != nil {
		return fail(err)
	}
	result.OrdersFetched = len(packages)

	recon, err := s.buildReconciler()
	if err != nil {
		return fail(err)
	}

	fetchedAt := time.Now()
	batch := make([]*MappedOrder, 0, batchSize)
	for i := range packages {
		orderDate := packages[i].OrderDate()
		if !orderDate.IsZero() && (orderDate.Before(rangeStart) || !orderDate.Before(rangeEnd)) {
			result.Skipped++
			continue
		}
		mapped, err := MapTrendyolPackage(&packages[i], fetchedAt)
		if err != nil {
			result.Skipped++
			continue
		}
		result.AnomalyCount += len(mapped.Anomalies)
		s.reconcile(mapped, recon)
		batch = append(batch, mapped)
		if len(batch) >= batchSize {
			if err := s.gate.Wait(ctx); err != nil {
				return fail(err)
			}
			stored, items, err := s.storeBatch(batch)
			if err != nil {
				return fail(err)
			}
			result.OrdersStored += stored
			result.ItemsStored += items
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		stored, items, err := s.storeBatch(batch)
		if err != nil {
			return fail(err)
		}
		result.OrdersStored += stored
		result.ItemsStored += items
	}

	if err := recon.cache.Save(); err != nil {
		log.Printf("ingest: failed to save cost cache: %v", err)
	}
	recon.monitor.Report()
	stats := recon.cache.Stats()
	result.Cache = &stats
	result.Duration = time.Since(start)
	return result, nil
}

// SyncProducts refreshes the product catalog from the source, rebuilds the
// cost cache from scratch, and returns counts. maxPages <= 0 means no cap.
func (s *IngestService) SyncProducts(ctx context.Context, maxPages int) (*SyncProductsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	fetcher := s.fetcher
	fetcher.MaxPages = maxPages

	raw, err := connectors.FetchAll(ctx, fetcher, func(ctx context.Context, page int) ([]connectors.SentosProduct, int, error) {
		if err := s.gate.Wait(ctx); err != nil {
			return nil, 0, err
		}
		resp, err := s.source.ListProducts(ctx, page, productsPageSize)
		if err != nil {
			return nil, 0, err
		}
		return resp.Products, resp.TotalPages, nil
	})
	if err != nil {
		return nil, err
	}

	result := &SyncProductsResult{ProductsFetched: len(raw)}
	for i := range raw {
		p := &raw[i]
		if p.SKU == "" {
			continue
		}
		purchase, err := ParsePrice(p.PurchasePrice.String())
		if err != nil {
			log.Printf("sync-products: bad purchase price for SKU %s: %v", p.SKU, err)
		}
		sale, _ := ParsePrice(p.SalePrice.String())
		vatRate := p.VATRate
		if vatRate == 0 {
			vatRate = 10
		}
		row := models.Product{
			SourceProductID:      p.ID,
			SKU:                  p.SKU,
			Name:                 p.Name,
			Brand:                p.Brand,
			Barcode:              p.Barcode,
			Image:                p.FirstImageURL(),
			PurchasePrice:        purchase,
			VATRate:              vatRate,
			PurchasePriceWithVAT: purchase * (1 + float64(vatRate)/100),
			SalePrice:            sale,
		}
		if err := s.upsertProduct(&row); err != nil {
			return nil, fmt.Errorf("failed to store product %s: %w", p.SKU, err)
		}
		result.ProductsStored++
	}

	// full rebuild: a stale cache is never trusted incrementally
	cache, err := NewCostCache(s.cacheDir, s.cacheTTL)
	if err != nil {
		return nil, err
	}
	cache.Clear()
	var catalog []models.Product
	if err := s.db.Find(&catalog).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	cache.UpdateFromProducts(catalog)
	result.CacheEntries = cache.Len()
	result.Duration = time.Since(start)
	log.Printf("sync-products: %d fetched, %d stored, cache rebuilt with %d entries in %s",
		result.ProductsFetched, result.ProductsStored, result.CacheEntries,
		result.Duration.Round(time.Millisecond))
	return result, nil
}

// reconciler bundles the per-run cost reconciliation state.
type reconciler struct {
	cache     *CostCache
	resolver  *CostResolver
	estimator *BrandRatioEstimator
	monitor   *MatchMonitor
}

func (s *IngestService) buildReconciler() (*reconciler, error) {
	var catalog []models.Product
	if err := s.db.Find(&catalog).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	cache, err := NewCostCache(s.cacheDir, s.cacheTTL)
	if err != nil {
		return nil, err
	}
	if cache.Len() == 0 && len(catalog) > 0 {
		cache.UpdateFromProducts(catalog)
	}

	estimator := NewBrandRatioEstimator()
	var matched []models.SalesOrderItem
	if err := s.db.Where("unit_cost_with_vat > 0 AND unit_price > 0").
		Order("id DESC").Limit(estimatorSample).Find(&matched).Error; err == nil {
		estimator.LearnFromItems(matched)
	}

	monitor := NewMatchMonitor()
	return &reconciler{
		cache:     cache,
		resolver:  NewCostResolver(catalog, cache, estimator, monitor),
		estimator: estimator,
		monitor:   monitor,
	}, nil
}

// reconcile fills cost and commission fields on every item of the order.
func (s *IngestService) reconcile(m *MappedOrder, r *reconciler) {
	for i := range m.Items {
		item := &m.Items[i]
		match := r.resolver.Resolve(item.ProductSKU, item.Barcode, item.UnitPrice, item.ProductName)
		item.UnitCostWithVAT = match.Cost
		item.TotalCostWithVAT = match.Cost * float64(item.Quantity)
		item.CostMatchMethod = string(match.Method)

		item.CommissionRate = models.CommissionRate(m.Order.Marketplace)
		if item.CommissionAmount == 0 && !item.IsCancelled && !item.IsReturn {
			item.CommissionAmount = models.CommissionAmount(m.Order.Marketplace, item.ItemAmount)
		}
	}
}

// fetchOrders pulls every status code for the range and deduplicates by
// source order id; an order can come back under several status queries and
// the last-seen payload wins.
func (s *IngestService) fetchOrders(ctx context.Context, req IngestRequest) ([]connectors.SentosOrder, error) {
	byID := make(map[int64]int)
	var unique []connectors.SentosOrder

	for _, status := range models.KnownOrderStatuses() {
		st := status
		fetched, err := connectors.FetchAll(ctx, s.fetcher, func(ctx context.Context, page int) ([]connectors.SentosOrder, int, error) {
			// pause point between pages, not just between statuses
			if err := s.gate.Wait(ctx); err != nil {
				return nil, 0, err
			}
			resp, err := s.source.ListOrders(ctx, connectors.ListOrdersParams{
				StartDate:   req.StartDate,
				EndDate:     req.EndDate,
				Marketplace: req.Marketplace,
				Status:      int(st),
				Page:        page,
				Size:        ordersPageSize,
			})
			if err != nil {
				return nil, 0, err
			}
			return resp.Orders, resp.TotalPages, nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch status %s: %w", st, err)
		}
		for _, o := range fetched {
			if idx, seen := byID[o.ID]; seen {
				unique[idx] = o
				continue
			}
			byID[o.ID] = len(unique)
			unique = append(unique, o)
		}
	}
	return unique, nil
}

// storeBatch upserts one batch of mapped orders inside a single
// transaction. A failure rolls the whole batch back.
func (s *IngestService) storeBatch(batch []*MappedOrder) (ordersStored, itemsStored int, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range batch {
			items, err := s.upsertOrder(tx, m)
			if err != nil {
				return err
			}
			ordersStored++
			itemsStored += items
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to store batch: %w", err)
	}
	return ordersStored, itemsStored, nil
}

// upsertOrder creates or updates one order row and its items. Identity is
// the source order id for orders and the identity key for items; repeat
// ingestion updates mutable fields in place and logs amount or status
// drift as anomalies.
func (s *IngestService) upsertOrder(tx *gorm.DB, m *MappedOrder) (int, error) {
	order := m.Order

	var existing models.SalesOrder
	res := tx.Where("source_order_id = ?", order.SourceOrderID).First(&existing)
	switch {
	case res.Error == nil:
		if existing.OrderStatus != order.OrderStatus {
			log.Printf("ingest: order %d status changed %s -> %s",
				order.SourceOrderID, existing.OrderStatus, order.OrderStatus)
		}
		order.ID = existing.ID
		order.CreatedAt = existing.CreatedAt
		if err := tx.Save(&order).Error; err != nil {
			return 0, fmt.Errorf("failed to update order %d: %w", order.SourceOrderID, err)
		}
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		if err := tx.Create(&order).Error; err != nil {
			return 0, fmt.Errorf("failed to create order %d: %w", order.SourceOrderID, err)
		}
	default:
		return 0, fmt.Errorf("failed to look up order %d: %w", order.SourceOrderID, res.Error)
	}

	stored := 0
	for i := range m.Items {
		item := m.Items[i]
		item.OrderID = order.ID
		// inherited regardless of what the mapper saw at map time
		item.IsCancelled = order.OrderStatus == models.StatusCancelledOrReturned

		var current models.SalesOrderItem
		res := tx.Where("unique_key = ?", item.UniqueKey).First(&current)
		switch {
		case res.Error == nil:
			if current.ItemAmount != item.ItemAmount {
				log.Printf("ingest: item %s amount changed %.2f -> %.2f",
					item.UniqueKey, current.ItemAmount, item.ItemAmount)
			}
			item.ID = current.ID
			item.CreatedAt = current.CreatedAt
			if err := tx.Save(&item).Error; err != nil {
				return stored, fmt.Errorf("failed to update item %s: %w", item.UniqueKey, err)
			}
		case errors.Is(res.Error, gorm.ErrRecordNotFound):
			if err := tx.Create(&item).Error; err != nil {
				return stored, fmt.Errorf("failed to create item %s: %w", item.UniqueKey, err)
			}
		default:
			return stored, fmt.Errorf("failed to look up item %s: %w", item.UniqueKey, res.Error)
		}
		stored++
	}
	return stored, nil
}

func (s *IngestService) upsertProduct(row *models.Product) error {
	var existing models.Product
	res := s.db.Where("sku = ?", row.SKU).First(&existing)
	switch {
	case res.Error == nil:
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return s.db.Save(row).Error
	case errors.Is(res.Error, gorm.ErrRecordNotFound):
		return s.db.Create(row).Error
	default:
		return res.Error
	}
}

// purgeRange deletes orders in [start, end) and their items.
func (s *IngestService) purgeRange(start, end time.Time, marketplace string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.SalesOrder{}).Where("order_date >= ? AND order_date < ?", start, end)
		if marketplace != "" {
			q = q.Where("marketplace = ?", marketplace)
		}
		var ids []int64
		if err := q.Pluck("source_order_id", &ids).Error; err != nil {
			return fmt.Errorf("failed to list orders for purge: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("source_order_id IN ?", ids).Delete(&models.SalesOrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to purge items: %w", err)
		}
		if err := tx.Where("source_order_id IN ?", ids).Delete(&models.SalesOrder{}).Error; err != nil {
			return fmt.Errorf("failed to purge orders: %w", err)
		}
		log.Printf("ingest: purged %d existing orders in range", len(ids))
		return nil
	})
}

// validate recomputes counts straight from storage and audits identity
// keys and amounts. Findings become warnings on the result, never errors.
func (s *IngestService) validate(start, end time.Time, marketplace string, result *IngestResult) *ValidationReport {
	report := &ValidationReport{
		OrdersExpected: result.OrdersStored,
		ItemsExpected:  result.ItemsStored,
	}

	orderQ := s.db.Model(&models.SalesOrder{}).Where("order_date >= ? AND order_date < ?", start, end)
	if marketplace != "" {
		orderQ = orderQ.Where("marketplace = ?", marketplace)
	}
	var orderCount int64
	if err := orderQ.Count(&orderCount).Error; err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("order count query failed: %v", err))
	}
	report.OrdersStored = int(orderCount)
	if report.OrdersStored < report.OrdersExpected {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("stored order count %d below expected %d", report.OrdersStored, report.OrdersExpected))
	}

	var itemCount int64
	itemQ := s.db.Model(&models.SalesOrderItem{}).
		Joins("JOIN sales_orders ON sales_orders.id = sales_order_items.order_id").
		Where("sales_orders.order_date >= ? AND sales_orders.order_date < ?", start, end)
	if marketplace != "" {
		itemQ = itemQ.Where("sales_orders.marketplace = ?", marketplace)
	}
	if err := itemQ.Count(&itemCount).Error; err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("item count query failed: %v", err))
	}
	report.ItemsStored = int(itemCount)

	// the unique index should make this impossible; finding one means the
	// schema drifted
	var dupes []string
	if err := s.db.Model(&models.SalesOrderItem{}).
		Select("unique_key").
		Group("unique_key").
		Having("COUNT(*) > 1").
		Pluck("unique_key", &dupes).Error; err == nil && len(dupes) > 0 {
		report.DuplicateKeys = dupes
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d duplicate identity keys detected", len(dupes)))
	}

	var zeroRows int64
	if err := itemQ.Session(&gorm.Session{}).
		Where("sales_order_items.item_amount = 0 AND sales_order_items.is_cancelled = ?", false).
		Count(&zeroRows).Error; err == nil {
		report.ZeroAmountRows = int(zeroRows)
		if zeroRows > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%d active items have zero amount", zeroRows))
		}
	}
	for _, w := range report.Warnings {
		log.Printf("ingest: validation: %s", w)
	}
	return report
}

// parseDateRange parses inclusive YYYY-MM-DD bounds into a half-open
// [start, end) interval.
func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	end = end.AddDate(0, 0, 1)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s after end date %s", startDate, endDate)
	}
	return start, end, nil
}
