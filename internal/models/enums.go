package models

import (
	"fmt"
	"strings"
)

// OrderStatus mirrors the Sentos order status codes. Status 6 is the only
// cancellation signal; item-level "rejected" is a separate quality flag.
type OrderStatus int

const (
	StatusPendingApproval     OrderStatus = 1
	StatusConfirmed           OrderStatus = 2
	StatusSourcing            OrderStatus = 3
	StatusPreparing           OrderStatus = 4
	StatusShipped             OrderStatus = 5
	StatusCancelledOrReturned OrderStatus = 6
	StatusDelivered           OrderStatus = 99
)

// KnownOrderStatuses returns every status code an ingestion run must query.
// A single order can show up under more than one status query, so callers
// deduplicate by source order id afterwards.
func KnownOrderStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPendingApproval,
		StatusConfirmed,
		StatusSourcing,
		StatusPreparing,
		StatusShipped,
		StatusCancelledOrReturned,
		StatusDelivered,
	}
}

func (s OrderStatus) String() string {
	switch s {
	case StatusPendingApproval:
		return "pending_approval"
	case StatusConfirmed:
		return "confirmed"
	case StatusSourcing:
		return "sourcing"
	case StatusPreparing:
		return "preparing"
	case StatusShipped:
		return "shipped"
	case StatusCancelledOrReturned:
		return "cancelled_or_returned"
	case StatusDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// IsKnown reports whether s is one of the closed status codes. Unknown codes
// are stored as-is but must be surfaced as mapping anomalies by the caller.
func (s OrderStatus) IsKnown() bool {
	switch s {
	case StatusPendingApproval, StatusConfirmed, StatusSourcing, StatusPreparing,
		StatusShipped, StatusCancelledOrReturned, StatusDelivered:
		return true
	}
	return false
}

// ItemStatus is the line-level state reported by the source. "rejected"
// marks a real return; it is independent from order-level cancellation.
type ItemStatus string

const (
	ItemAccepted ItemStatus = "accepted"
	ItemRejected ItemStatus = "rejected"
)

// Sales channels reported by Sentos. Retail orders never enter the
// order tables.
const (
	ChannelEcommerce = "ECOMMERCE"
	ChannelRetail    = "RETAIL"
	ChannelB2B       = "B2B"
)

// Marketplaces we actively normalize to. Anything else survives verbatim
// so no revenue is dropped, but NormalizeMarketplace reports it as unknown.
const (
	MarketplaceTrendyol     = "Trendyol"
	MarketplaceShopify      = "Shopify"
	MarketplaceLCWaikiki    = "LCWaikiki"
	MarketplaceHepsiburada  = "Hepsiburada"
	MarketplacePazarama     = "Pazarama"
	MarketplaceN11          = "N11"
	MarketplaceAmazon       = "Amazon"
	MarketplaceCicekSepeti  = "CicekSepeti"
	MarketplaceUnknownLabel = "UNKNOWN"
)

var marketplaceAliases = map[string]string{
	"TRENDYOL":     MarketplaceTrendyol,
	"SHOPIFY":      MarketplaceShopify,
	"LC WAIKIKI":   MarketplaceLCWaikiki,
	"LCWAIKIKI":    MarketplaceLCWaikiki,
	"LCW":          MarketplaceLCWaikiki,
	"HEPSIBURADA":  MarketplaceHepsiburada,
	"HB":           MarketplaceHepsiburada,
	"PAZARAMA":     MarketplacePazarama,
	"N11":          MarketplaceN11,
	"AMAZON":       MarketplaceAmazon,
	"CICEKSEPETI":  MarketplaceCicekSepeti,
	"ÇIÇEKSEPETI":  MarketplaceCicekSepeti,
	"ÇİÇEKSEPETİ":  MarketplaceCicekSepeti,
}

// NormalizeMarketplace maps a source marketplace name onto the closed set.
// The second return reports whether the name was recognized; unrecognized
// names come back verbatim so the record is kept, tagged as unknown.
func NormalizeMarketplace(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return MarketplaceUnknownLabel, false
	}
	if normalized, ok := marketplaceAliases[strings.ToUpper(trimmed)]; ok {
		return normalized, true
	}
	return trimmed, false
}

// commissionRates holds the marketplace commission percentages for the
// apparel category. Shopify and LCWaikiki carry no commission.
var commissionRates = map[string]float64{
	MarketplaceTrendyol:    21.5,
	MarketplaceHepsiburada: 15.0,
	MarketplaceN11:         12.0,
	MarketplacePazarama:    18.0,
	MarketplaceShopify:     0.0,
	MarketplaceLCWaikiki:   0.0,
	MarketplaceAmazon:      15.0,
	MarketplaceCicekSepeti: 10.0,
}

// CommissionRate returns the commission percentage for a normalized
// marketplace name, 0 when no rate is configured.
func CommissionRate(marketplace string) float64 {
	return commissionRates[marketplace]
}

// CommissionAmount computes the commission deducted from the given net
// revenue for a marketplace.
func CommissionAmount(marketplace string, netRevenue float64) float64 {
	return netRevenue * CommissionRate(marketplace) / 100.0
}
