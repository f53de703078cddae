package models

import (
	"time"
)

// Product is the authoritative catalog row holding the tax-inclusive cost
// used by the reconciliation cascade.
type Product struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	SourceProductID int64  `json:"source_product_id" gorm:"uniqueIndex"`
	SKU             string `json:"sku" gorm:"size:100;uniqueIndex;not null"`

	Name    string `json:"name" gorm:"size:500"`
	Brand   string `json:"brand" gorm:"size:200"`
	Barcode string `json:"barcode" gorm:"size:100;index"`
	Image   string `json:"image" gorm:"size:500"`

	PurchasePrice        float64 `json:"purchase_price"` // excl. VAT
	VATRate              int     `json:"vat_rate" gorm:"default:10"`
	PurchasePriceWithVAT float64 `json:"purchase_price_with_vat"` // reconciled unit cost
	SalePrice            float64 `json:"sale_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SalesOrder is one purchase transaction from one marketplace. Rows are
// upserted in place on re-ingestion, keyed by the source order id.
type SalesOrder struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	SourceOrderID int64  `json:"source_order_id" gorm:"uniqueIndex;not null"`
	OrderCode     string `json:"order_code" gorm:"size:100;index"`

	// Trendyol-native identifiers, null for orders from other sources.
	TrendyolShipmentPackageID *int64 `json:"trendyol_shipment_package_id" gorm:"uniqueIndex"`
	TrendyolOrderNumber       string `json:"trendyol_order_number" gorm:"size:50;index"`

	OrderDate   time.Time   `json:"order_date" gorm:"not null;index:idx_order_date_marketplace"`
	Marketplace string      `json:"marketplace" gorm:"size:50;not null;index:idx_order_date_marketplace"`
	Shop        string      `json:"shop" gorm:"size:200"`
	OrderStatus OrderStatus `json:"order_status" gorm:"not null;index"`

	OrderTotal     float64 `json:"order_total"`    // includes shipping
	ShippingTotal  float64 `json:"shipping_total"` // order level only
	CarryingCharge float64 `json:"carrying_charge"`
	ServiceFee     float64 `json:"service_fee"`

	CargoProvider string `json:"cargo_provider" gorm:"size:100"`
	CargoNumber   string `json:"cargo_number" gorm:"size:100"`

	HasInvoice    string `json:"has_invoice" gorm:"size:10"`
	InvoiceType   string `json:"invoice_type" gorm:"size:50"`
	InvoiceNumber string `json:"invoice_number" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SalesOrderItem is one line within an order. UniqueKey is the identity key
// derived from (source order id, source item id, SKU), with an occurrence
// counter when the source item id is degenerate.
type SalesOrderItem struct {
	ID uint `json:"id" gorm:"primaryKey"`

	OrderID       uint  `json:"order_id" gorm:"not null;index:idx_item_order_lookup"`
	SourceOrderID int64 `json:"source_order_id" gorm:"not null;index:idx_item_order_lookup"`
	SourceItemID  int64 `json:"source_item_id" gorm:"index"`

	TrendyolOrderLineID *int64 `json:"trendyol_order_line_id" gorm:"index"`

	UniqueKey string `json:"unique_key" gorm:"size:200;uniqueIndex;not null"`

	ProductName string `json:"product_name" gorm:"size:500"`
	ProductSKU  string `json:"product_sku" gorm:"size:100;index"`
	Barcode     string `json:"barcode" gorm:"size:100"`
	Color       string `json:"color" gorm:"size:100"`
	ModelName   string `json:"model_name" gorm:"size:100"`
	ModelValue  string `json:"model_value" gorm:"size:100"`

	ItemStatus ItemStatus `json:"item_status" gorm:"size:50;index"`

	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	ItemAmount float64 `json:"item_amount"` // quantity * unit price

	UnitCostWithVAT  float64 `json:"unit_cost_with_vat"`
	TotalCostWithVAT float64 `json:"total_cost_with_vat"`
	CostMatchMethod  string  `json:"cost_match_method" gorm:"size:50;index"`

	CommissionRate   float64 `json:"commission_rate"`
	CommissionAmount float64 `json:"commission_amount"`

	IsReturn    bool `json:"is_return"`    // item_status == rejected
	IsCancelled bool `json:"is_cancelled"` // owning order status == 6

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
