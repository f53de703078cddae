package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// TrendyolLine is one raw order line inside a shipment package.
type TrendyolLine struct {
	ID                      int64   `json:"id"`
	Quantity                int     `json:"quantity"`
	MerchantSKU             string  `json:"merchantSku"`
	Barcode                 string  `json:"barcode"`
	ProductName             string  `json:"productName"`
	ProductColor            string  `json:"productColor"`
	ProductSize             string  `json:"productSize"`
	Price                   float64 `json:"price"`
	Discount                float64 `json:"discount"`
	Amount                  float64 `json:"amount"`
	Commission              float64 `json:"commission"`
	OrderLineItemStatusName string  `json:"orderLineItemStatusName"`
}

// TrendyolPackage is one raw shipment package from the seller orders API.
type TrendyolPackage struct {
	ID                  int64          `json:"id"` // shipmentPackageId
	OrderNumber         string         `json:"orderNumber"`
	Status              string         `json:"status"`
	OrderDateMillis     int64          `json:"orderDate"` // epoch milliseconds, GMT+3
	GrossAmount         float64        `json:"grossAmount"`
	TotalDiscount       float64        `json:"totalDiscount"`
	CargoProviderName   string         `json:"cargoProviderName"`
	CargoTrackingNumber json.Number    `json:"cargoTrackingNumber"`
	InvoiceLink         string         `json:"invoiceLink"`
	Lines               []TrendyolLine `json:"lines"`
}

// OrderDate converts the package's epoch-millisecond order date.
func (p *TrendyolPackage) OrderDate() time.Time {
	if p.OrderDateMillis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(p.OrderDateMillis)
}

// TrendyolPackagesPage is one page of shipment packages.
type TrendyolPackagesPage struct {
	Packages      []TrendyolPackage
	Page          int // 0-based, as the API reports it
	TotalPages    int
	TotalElements int
}

// ListPackagesParams filters the shipment package listing. The API pages
// from 0 and filters on PackageLastModifiedDate, so callers re-filter by
// order date afterwards.
type ListPackagesParams struct {
	Status    string
	StartDate time.Time
	EndDate   time.Time
	Page      int // 0-based
	Size      int // max 200
}

// TrendyolClient talks to the Trendyol seller API directly. It exists next
// to the Sentos aggregator because Trendyol exposes package- and line-level
// identifiers and commissions that the aggregator flattens away.
type TrendyolClient struct {
	http       *resty.Client
	supplierID string
	name       string
}

// NewTrendyolClient builds a client; apiKey/apiSecret feed basic auth and
// supplierID addresses the seller-scoped endpoints.
func NewTrendyolClient(apiURL, supplierID, apiKey, apiSecret string, timeout time.Duration) *TrendyolClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetBasicAuth(apiKey, apiSecret).
		SetTimeout(timeout).
		SetHeader("User-Agent", "SalesAnalytics/2.0").
		SetHeader("Content-Type", "application/json")
	return &TrendyolClient{http: client, supplierID: supplierID, name: "trendyol"}
}

type trendyolEnvelope struct {
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalPages    int               `json:"totalPages"`
	TotalElements int               `json:"totalElements"`
	Content       []TrendyolPackage `json:"content"`
}

// ListShipmentPackages fetches a single page of shipment packages.
func (c *TrendyolClient) ListShipmentPackages(ctx context.Context, p ListPackagesParams) (*TrendyolPackagesPage, error) {
	if c.supplierID == "" {
		return nil, &PermanentError{Source: c.name, StatusCode: 400,
			Err: fmt.Errorf("supplier id is required")}
	}

	size := p.Size
	if size <= 0 || size > 200 {
		size = 200
	}
	req := c.http.R().SetContext(ctx).
		SetQueryParam("page", fmt.Sprint(p.Page)).
		SetQueryParam("size", fmt.Sprint(size)).
		SetQueryParam("orderByField", "PackageLastModifiedDate").
		SetQueryParam("orderByDirection", "DESC")
	if p.Status != "" {
		req.SetQueryParam("status", p.Status)
	}
	if !p.StartDate.IsZero() {
		req.SetQueryParam("startDate", fmt.Sprint(p.StartDate.UnixMilli()))
	}
	if !p.EndDate.IsZero() {
		req.SetQueryParam("endDate", fmt.Sprint(p.EndDate.UnixMilli()))
	}

	resp, err := req.Get(fmt.Sprintf("/integration/order/sellers/%s/orders", c.supplierID))
	if err != nil {
		return nil, wrapNetworkError(c.name, err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus(c.name, resp.StatusCode(), resp.String())
	}

	var env trendyolEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &PermanentError{Source: c.name, StatusCode: resp.StatusCode(),
			Err: fmt.Errorf("failed to decode packages response: %w", err)}
	}
	return &TrendyolPackagesPage{
		Packages:      env.Content,
		Page:          env.Page,
		TotalPages:    env.TotalPages,
		TotalElements: env.TotalElements,
	}, nil
}
