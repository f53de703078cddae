package services

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

const (
	// ShippingExpensePerOrder is the flat outbound shipping cost applied to
	// every non-cancelled order; carriers are not billed per line.
	ShippingExpensePerOrder = 75.0
	// TopProductLimit caps the per-product breakdown.
	TopProductLimit = 100
)

// AggregateRequest selects the period and optional marketplace to roll up.
// Dates are inclusive YYYY-MM-DD.
type AggregateRequest struct {
	StartDate   string `json:"start_date" form:"start_date"`
	EndDate     string `json:"end_date" form:"end_date"`
	Marketplace string `json:"marketplace" form:"marketplace"`
}

// RevenueBlock is one gross/cancelled/net partition of the period.
type RevenueBlock struct {
	Revenue  float64 `json:"revenue"`
	Quantity int     `json:"quantity"`
	Orders   int     `json:"orders"`
}

// Profitability is the period's cost side. MarginPercent is 0 when net
// revenue is 0, never a division error.
type Profitability struct {
	ProductCost       float64 `json:"product_cost"`
	ShippingExpense   float64 `json:"shipping_expense"`
	CommissionExpense float64 `json:"commission_expense"`
	NetProfit         float64 `json:"net_profit"`
	MarginPercent     float64 `json:"margin_percent"`
}

// CancelledDetail sub-splits the cancelled bucket by line status: revenue
// on lines still marked accepted inside a cancelled order versus lines
// rejected (returned). Both halves belong to cancelled orders only.
type CancelledDetail struct {
	OrderCancelledRevenue float64 `json:"order_cancelled_revenue"`
	ReturnedRevenue       float64 `json:"returned_revenue"`
}

// Summary is the period roll-up, partitioned by the owning order's
// cancellation status: every line of a cancelled order is cancelled,
// every line of a live order is net. Invariant: Gross = Net + Cancelled
// for both revenue and quantity, on a line-amount basis.
// ShippingCollected is the order-level shipping charged to buyers; it
// never enters a revenue block.
type Summary struct {
	Gross             RevenueBlock    `json:"gross"`
	Cancelled         RevenueBlock    `json:"cancelled"`
	CancelledDetail   CancelledDetail `json:"cancelled_detail"`
	Net               RevenueBlock    `json:"net"`
	ShippingCollected float64         `json:"shipping_collected"`
	Profitability     Profitability   `json:"profitability"`
}

// MarketplaceBreakdown is one marketplace's slice of the period.
type MarketplaceBreakdown struct {
	Marketplace      string  `json:"marketplace"`
	NetRevenue       float64 `json:"net_revenue"`
	CancelledRevenue float64 `json:"cancelled_revenue"`
	NetQuantity      int     `json:"net_quantity"`
	Orders           int     `json:"orders"`
	Commission       float64 `json:"commission"`
}

// ProductBreakdown is one SKU's net performance, ranked by net revenue.
// MarginPercent ignores shipping and commission, which are not attributable
// per line.
type ProductBreakdown struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	NetRevenue    float64 `json:"net_revenue"`
	Quantity      int     `json:"quantity"`
	Cost          float64 `json:"cost"`
	Profit        float64 `json:"profit"`
	MarginPercent float64 `json:"margin_percent"`
}

// DayBreakdown is one calendar day. Unlike the summary, its NetRevenue
// includes the day's order-level shipping, so the daily series does not
// sum to the summary's net revenue.
type DayBreakdown struct {
	Date       string  `json:"date"`
	NetRevenue float64 `json:"net_revenue"`
	Orders     int     `json:"orders"`
	Quantity   int     `json:"quantity"`
}

// AggregationResult is the full analytics payload, computed on demand and
// never persisted.
type AggregationResult struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Marketplace string `json:"marketplace,omitempty"`

	Summary       Summary                `json:"summary"`
	ByMarketplace []MarketplaceBreakdown `json:"by_marketplace"`
	ByProduct     []ProductBreakdown     `json:"by_product"`
	ByDay         []DayBreakdown         `json:"by_day"`
}

// AnalyticsService reads normalized records and computes period metrics.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// Aggregate rolls up the requested period. Summary revenue is summed from
// item amounts, so order-level shipping never inflates it; shipping shows
// up separately as collected and as a flat expense.
func (s *AnalyticsService) Aggregate(req AggregateRequest) (*AggregationResult, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	var orders []models.SalesOrder
	orderQ := s.db.Where("order_date >= ? AND order_date < ?", start, end)
	if req.Marketplace != "" {
		orderQ = orderQ.Where("marketplace = ?", req.Marketplace)
	}
	if err := orderQ.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	result := &AggregationResult{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Marketplace: req.Marketplace,
	}
	if len(orders) == 0 {
		result.ByMarketplace = []MarketplaceBreakdown{}
		result.ByProduct = []ProductBreakdown{}
		result.ByDay = []DayBreakdown{}
		return result, nil
	}

	orderByID := make(map[uint]*models.SalesOrder, len(orders))
	ids := make([]uint, 0, len(orders))
	for i := range orders {
		orderByID[orders[i].ID] = &orders[i]
		ids = append(ids, orders[i].ID)
	}

	var items []models.SalesOrderItem
	if err := s.db.Where("order_id IN ?", ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	type dayAgg struct {
		revenue   float64
		shipping  float64
		quantity  int
		netItems  int
		netOrders map[uint]bool
	}
	type mpAgg struct {
		net       float64
		cancelled float64
		quantity  int
		comm      float64
		orders    map[uint]bool
	}
	type prodAgg struct {
		name     string
		revenue  float64
		quantity int
		cost     float64
	}

	days := make(map[string]*dayAgg)
	marketplaces := make(map[string]*mpAgg)
	products := make(map[string]*prodAgg)

	sum := &result.Summary
	cancelledOrderIDs := make(map[uint]bool)
	for i := range orders {
		o := &orders[i]
		sum.ShippingCollected += o.ShippingTotal
		if o.OrderStatus == models.StatusCancelledOrReturned {
			cancelledOrderIDs[o.ID] = true
		}
		day := o.OrderDate.Format("2006-01-02")
		d := days[day]
		if d == nil {
			d = &dayAgg{netOrders: make(map[uint]bool)}
			days[day] = d
		}
		d.shipping += o.ShippingTotal
	}

	netOrderIDs := make(map[uint]bool)
	for i := range items {
		item := &items[i]
		order := orderByID[item.OrderID]
		if order == nil {
			continue
		}

		mp := marketplaces[order.Marketplace]
		if mp == nil {
			mp = &mpAgg{orders: make(map[uint]bool)}
			marketplaces[order.Marketplace] = mp
		}
		mp.orders[order.ID] = true

		sum.Gross.Revenue += item.ItemAmount
		sum.Gross.Quantity += item.Quantity

		if cancelledOrderIDs[order.ID] {
			sum.Cancelled.Revenue += item.ItemAmount
			sum.Cancelled.Quantity += item.Quantity
			if item.IsReturn {
				sum.CancelledDetail.ReturnedRevenue += item.ItemAmount
			} else {
				sum.CancelledDetail.OrderCancelledRevenue += item.ItemAmount
			}
			mp.cancelled += item.ItemAmount
			continue
		}

		// a rejected line of a live order stays in the net partition
		sum.Net.Revenue += item.ItemAmount
		sum.Net.Quantity += item.Quantity
		sum.Profitability.ProductCost += item.TotalCostWithVAT
		sum.Profitability.CommissionExpense += item.CommissionAmount
		netOrderIDs[order.ID] = true

		mp.net += item.ItemAmount
		mp.quantity += item.Quantity
		mp.comm += item.CommissionAmount

		// the per-day and per-product breakdowns filter on line flags
		// instead, so they diverge from the summary partition on
		// rejected lines of live orders
		if item.IsCancelled || item.IsReturn {
			continue
		}

		day := order.OrderDate.Format("2006-01-02")
		d := days[day]
		d.revenue += item.ItemAmount
		d.quantity += item.Quantity
		d.netItems++
		d.netOrders[order.ID] = true

		sku := item.ProductSKU
		if sku == "" {
			sku = "(no sku)"
		}
		p := products[sku]
		if p == nil {
			p = &prodAgg{name: item.ProductName}
			products[sku] = p
		}
		p.revenue += item.ItemAmount
		p.quantity += item.Quantity
		p.cost += item.TotalCostWithVAT
	}

	sum.Gross.Orders = len(orders)
	sum.Cancelled.Orders = len(cancelledOrderIDs)
	sum.Net.Orders = len(netOrderIDs)

	sum.Profitability.ShippingExpense = ShippingExpensePerOrder * float64(sum.Net.Orders)
	sum.Profitability.NetProfit = sum.Net.Revenue -
		sum.Profitability.ProductCost -
		sum.Profitability.ShippingExpense -
		sum.Profitability.CommissionExpense
	if sum.Net.Revenue > 0 {
		sum.Profitability.MarginPercent = sum.Profitability.NetProfit / sum.Net.Revenue * 100
	}

	for name, mp := range marketplaces {
		result.ByMarketplace = append(result.ByMarketplace, MarketplaceBreakdown{
			Marketplace:      name,
			NetRevenue:       mp.net,
			CancelledRevenue: mp.cancelled,
			NetQuantity:      mp.quantity,
			Orders:           len(mp.orders),
			Commission:       mp.comm,
		})
	}
	sort.Slice(result.ByMarketplace, func(i, j int) bool {
		a, b := result.ByMarketplace[i], result.ByMarketplace[j]
		if a.NetRevenue != b.NetRevenue {
			return a.NetRevenue > b.NetRevenue
		}
		return a.Marketplace < b.Marketplace
	})

	for sku, p := range products {
		pb := ProductBreakdown{
			SKU:        sku,
			Name:       p.name,
			NetRevenue: p.revenue,
			Quantity:   p.quantity,
			Cost:       p.cost,
			Profit:     p.revenue - p.cost,
		}
		if pb.NetRevenue > 0 {
			pb.MarginPercent = pb.Profit / pb.NetRevenue * 100
		}
		result.ByProduct = append(result.ByProduct, pb)
	}
	sort.Slice(result.ByProduct, func(i, j int) bool {
		a, b := result.ByProduct[i], result.ByProduct[j]
		if a.NetRevenue != b.NetRevenue {
			return a.NetRevenue > b.NetRevenue
		}
		return a.SKU < b.SKU
	})
	if len(result.ByProduct) > TopProductLimit {
		result.ByProduct = result.ByProduct[:TopProductLimit]
	}

	for day, d := range days {
		db := DayBreakdown{Date: day}
		if d.netItems > 0 {
			// daily net keeps the day's order-level shipping inside
			// revenue, a deviation from the summary carried over from
			// the upstream reports
			db.NetRevenue = d.revenue + d.shipping
			db.Orders = len(d.netOrders)
			db.Quantity = d.quantity
		}
		result.ByDay = append(result.ByDay, db)
	}
	sort.Slice(result.ByDay, func(i, j int) bool {
		return result.ByDay[i].Date < result.ByDay[j].Date
	})

	if result.ByMarketplace == nil {
		result.ByMarketplace = []MarketplaceBreakdown{}
	}
	if result.ByProduct == nil {
		result.ByProduct = []ProductBreakdown{}
	}
	if result.ByDay == nil {
		result.ByDay = []DayBreakdown{}
	}
	return result, nil
}

// LastOrderDate returns the most recent stored order date, zero when the
// store is empty. The scheduler uses it to bound incremental syncs.
func (s *AnalyticsService) LastOrderDate() (time.Time, error) {
	var order models.SalesOrder
	res := s.db.Order("order_date DESC").First(&order)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, res.Error
	}
	return order.OrderDate, nil
}
