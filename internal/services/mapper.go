package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/connectors"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

// ErrRetailChannel marks an order from the in-store sales channel. Such
// orders are filtered out before they reach storage.
var ErrRetailChannel = errors.New("retail channel order")

// AnomalyKind classifies a mapping anomaly.
type AnomalyKind string

const (
	AnomalyPriceParse         AnomalyKind = "price_parse"
	AnomalyAmountParse        AnomalyKind = "amount_parse"
	AnomalyDateParse          AnomalyKind = "date_parse"
	AnomalyUnknownStatus      AnomalyKind = "unknown_status"
	AnomalyUnknownMarketplace AnomalyKind = "unknown_marketplace"
	AnomalyKeyCollision       AnomalyKind = "key_collision"
)

// Anomaly records a malformed or unexpected field encountered while
// mapping. Anomalies never abort a run; the record is stored with a safe
// default and the anomaly travels with the mapping result.
type Anomaly struct {
	Kind    AnomalyKind
	OrderID int64
	SKU     string
	Detail  string
}

func (a Anomaly) String() string {
	if a.SKU != "" {
		return fmt.Sprintf("%s order=%d sku=%s: %s", a.Kind, a.OrderID, a.SKU, a.Detail)
	}
	return fmt.Sprintf("%s order=%d: %s", a.Kind, a.OrderID, a.Detail)
}

// MappedOrder is the canonical form of one source order: the order row,
// its item rows, and every anomaly hit along the way.
type MappedOrder struct {
	Order     models.SalesOrder
	Items     []models.SalesOrderItem
	Anomalies []Anomaly
}

const sentosOrderDateLayout = "2006-01-02 15:04:05"

// MapSentosOrder converts one raw Sentos order into canonical records.
// Retail-channel orders return ErrRetailChannel and must be skipped.
// Source field names and formats stop here; nothing downstream sees them.
func MapSentosOrder(raw *connectors.SentosOrder, fetchedAt time.Time) (*MappedOrder, error) {
	if strings.EqualFold(strings.TrimSpace(raw.Source), models.ChannelRetail) {
		return nil, ErrRetailChannel
	}

	m := &MappedOrder{}

	orderDate := fetchedAt
	if raw.OrderDate != "" {
		parsed, err := time.Parse(sentosOrderDateLayout, raw.OrderDate)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", raw.OrderDate)
		}
		if err != nil {
			m.record(AnomalyDateParse, raw.ID, "", fmt.Sprintf("unparseable order date %q", raw.OrderDate))
		} else {
			orderDate = parsed
		}
	}

	marketplace, known := models.NormalizeMarketplace(raw.Source)
	if !known {
		m.record(AnomalyUnknownMarketplace, raw.ID, "", fmt.Sprintf("marketplace %q kept verbatim", raw.Source))
	}

	status := models.OrderStatus(raw.Status)
	if !status.IsKnown() {
		m.record(AnomalyUnknownStatus, raw.ID, "", fmt.Sprintf("order status %d", raw.Status))
	}

	m.Order = models.SalesOrder{
		SourceOrderID:  raw.ID,
		OrderCode:      raw.OrderCode,
		OrderDate:      orderDate,
		Marketplace:    marketplace,
		Shop:           raw.Shop,
		OrderStatus:    status,
		OrderTotal:     m.price(AnomalyPriceParse, raw.ID, "", "total", raw.Total),
		ShippingTotal:  m.price(AnomalyPriceParse, raw.ID, "", "shipping_total", raw.ShippingTotal),
		CarryingCharge: m.price(AnomalyPriceParse, raw.ID, "", "carrying_charge", raw.CarryingCharge),
		ServiceFee:     m.price(AnomalyPriceParse, raw.ID, "", "service_fee", raw.ServiceFee),
		CargoProvider:  raw.CargoProvider,
		CargoNumber:    raw.CargoNumber,
		HasInvoice:     raw.HasInvoice,
		InvoiceType:    raw.InvoiceType,
		InvoiceNumber:  raw.InvoiceNumber,
		FetchedAt:      fetchedAt,
	}

	cancelled := status == models.StatusCancelledOrReturned
	keys := newKeyBuilder()
	for _, line := range raw.LineItems() {
		sku := strings.TrimSpace(line.SKU)
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		unitPrice := m.price(AnomalyPriceParse, raw.ID, sku, "price", line.Price)
		amount := m.price(AnomalyAmountParse, raw.ID, sku, "amount", line.Amount)
		if amount == 0 && unitPrice > 0 {
			amount = unitPrice * float64(quantity)
		}
		if unitPrice == 0 && amount > 0 {
			unitPrice = amount / float64(quantity)
		}

		key, collided := keys.build(raw.ID, line.ID, sku)
		if collided {
			m.record(AnomalyKeyCollision, raw.ID, sku,
				fmt.Sprintf("line id %d repeated, key disambiguated to %s", line.ID, key))
		}

		itemStatus := models.ItemAccepted
		if strings.EqualFold(strings.TrimSpace(line.Status), string(models.ItemRejected)) {
			itemStatus = models.ItemRejected
		}

		m.Items = append(m.Items, models.SalesOrderItem{
			SourceOrderID: raw.ID,
			SourceItemID:  line.ID,
			UniqueKey:     key,
			ProductName:   line.Name,
			ProductSKU:    sku,
			Barcode:       strings.TrimSpace(line.Barcode),
			Color:         line.Color,
			ModelName:     line.Model.Name,
			ModelValue:    line.Model.Value,
			ItemStatus:    itemStatus,
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			ItemAmount:    amount,
			IsReturn:      itemStatus == models.ItemRejected,
			IsCancelled:   cancelled,
		})
	}
	return m, nil
}

// trendyolStatusCodes maps Trendyol package statuses onto the canonical
// order status codes.
var trendyolStatusCodes = map[string]models.OrderStatus{
	"Created":           models.StatusPendingApproval,
	"Awaiting":          models.StatusPendingApproval,
	"Picking":           models.StatusConfirmed,
	"Invoiced":          models.StatusConfirmed,
	"UnPacked":          models.StatusConfirmed,
	"Shipped":           models.StatusShipped,
	"AtCollectionPoint": models.StatusShipped,
	"Delivered":         models.StatusDelivered,
	"Cancelled":         models.StatusCancelledOrReturned,
	"UnSupplied":        models.StatusCancelledOrReturned,
	"UnDelivered":       models.StatusCancelledOrReturned,
	"Returned":          models.StatusCancelledOrReturned,
}

// MapTrendyolPackage converts one shipment package into canonical records.
// Package ids are stored negated as the source order id so they can never
// collide with Sentos order ids; the native package id is kept alongside.
func MapTrendyolPackage(pkg *connectors.TrendyolPackage, fetchedAt time.Time) (*MappedOrder, error) {
	m := &MappedOrder{}

	status, ok := trendyolStatusCodes[pkg.Status]
	if !ok {
		status = models.StatusConfirmed
		m.record(AnomalyUnknownStatus, -pkg.ID, "", fmt.Sprintf("package status %q", pkg.Status))
	}

	orderDate := pkg.OrderDate()
	if orderDate.IsZero() {
		m.record(AnomalyDateParse, -pkg.ID, "", "package has no order date")
		orderDate = fetchedAt
	}

	packageID := pkg.ID
	m.Order = models.SalesOrder{
		SourceOrderID:             -pkg.ID,
		OrderCode:                 pkg.OrderNumber,
		TrendyolShipmentPackageID: &packageID,
		TrendyolOrderNumber:       pkg.OrderNumber,
		OrderDate:                 orderDate,
		Marketplace:               models.MarketplaceTrendyol,
		OrderStatus:               status,
		OrderTotal:                pkg.GrossAmount,
		CargoProvider:             pkg.CargoProviderName,
		CargoNumber:               pkg.CargoTrackingNumber.String(),
		InvoiceNumber:             pkg.InvoiceLink,
		FetchedAt:                 fetchedAt,
	}

	cancelled := status == models.StatusCancelledOrReturned
	keys := newKeyBuilder()
	for _, line := range pkg.Lines {
		sku := strings.TrimSpace(line.MerchantSKU)
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		amount := line.Amount
		if amount == 0 && line.Price > 0 {
			amount = line.Price * float64(quantity)
		}

		key, collided := keys.buildPrefixed("trendyol", pkg.ID, line.ID, sku)
		if collided {
			m.record(AnomalyKeyCollision, -pkg.ID, sku,
				fmt.Sprintf("line id %d repeated, key disambiguated to %s", line.ID, key))
		}

		itemStatus := models.ItemAccepted
		returned := line.OrderLineItemStatusName == "Returned"
		if returned {
			itemStatus = models.ItemRejected
		}

		lineID := line.ID
		m.Items = append(m.Items, models.SalesOrderItem{
			SourceOrderID:       -pkg.ID,
			SourceItemID:        line.ID,
			TrendyolOrderLineID: &lineID,
			UniqueKey:           key,
			ProductName:         line.ProductName,
			ProductSKU:          sku,
			Barcode:             strings.TrimSpace(line.Barcode),
			Color:               line.ProductColor,
			ModelValue:          line.ProductSize,
			ItemStatus:          itemStatus,
			Quantity:            quantity,
			UnitPrice:           line.Price,
			ItemAmount:          amount,
			CommissionAmount:    line.Commission,
			IsReturn:            returned,
			IsCancelled:         cancelled,
		})
	}
	return m, nil
}

func (m *MappedOrder) record(kind AnomalyKind, orderID int64, sku, detail string) {
	m.Anomalies = append(m.Anomalies, Anomaly{Kind: kind, OrderID: orderID, SKU: sku, Detail: detail})
}

// price parses a money token, recording an anomaly on garbage input. The
// value falls back to 0 so the record survives.
func (m *MappedOrder) price(kind AnomalyKind, orderID int64, sku, field string, token connectors.PriceToken) float64 {
	v, err := ParsePrice(token.String())
	if err != nil {
		m.record(kind, orderID, sku, fmt.Sprintf("%s %q: %v", field, token, err))
	}
	return v
}

// keyBuilder constructs identity keys for one order's lines. A line whose
// source id is zero gets an occurrence counter scoped to its SKU so two
// distinct lines sharing the degenerate id never collapse into one row.
// Any repeated key, degenerate or not, is disambiguated the same way; the
// caller distinguishes expected disambiguation from a real collision via
// the second return value.
type keyBuilder struct {
	seen map[string]int
}

func newKeyBuilder() *keyBuilder {
	return &keyBuilder{seen: make(map[string]int)}
}

func (b *keyBuilder) build(orderID, lineID int64, sku string) (string, bool) {
	return b.finish(fmt.Sprintf("%d_%d_%s", orderID, lineID, sku), lineID)
}

func (b *keyBuilder) buildPrefixed(prefix string, orderID, lineID int64, sku string) (string, bool) {
	return b.finish(fmt.Sprintf("%s_%d_%d_%s", prefix, orderID, lineID, sku), lineID)
}

func (b *keyBuilder) finish(base string, lineID int64) (string, bool) {
	occurrence := b.seen[base]
	b.seen[base]++
	if occurrence == 0 {
		return base, false
	}
	key := fmt.Sprintf("%s_%d", base, occurrence)
	// a zero line id is known-degenerate; the counter is expected there
	return key, lineID != 0
}
