package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// PriceToken keeps a money field exactly as the source sent it. Sentos
// mixes plain numbers with locale-formatted strings ("1.220,50"), so the
// token is parsed by the mapper where a bad value becomes an anomaly
// instead of a silent unmarshal failure.
type PriceToken string

func (p *PriceToken) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*p = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*p = PriceToken(str)
		return nil
	}
	*p = PriceToken(s)
	return nil
}

func (p PriceToken) String() string { return string(p) }

// SentosModel is the nested size/model descriptor on an order line.
type SentosModel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SentosItem is one raw order line as returned by the Sentos orders API.
type SentosItem struct {
	ID       int64       `json:"id"`
	SKU      string      `json:"sku"`
	Barcode  string      `json:"barcode"`
	Name     string      `json:"name"`
	Color    string      `json:"color"`
	Model    SentosModel `json:"model"`
	Status   string      `json:"status"` // accepted / rejected
	Quantity int         `json:"quantity"`
	Price    PriceToken  `json:"price"`
	Amount   PriceToken  `json:"amount"`
}

// SentosOrder is one raw order payload. Field names never leak past the
// canonical mapper.
type SentosOrder struct {
	ID             int64        `json:"id"`
	OrderCode      string       `json:"order_code"`
	OrderDate      string       `json:"order_date"` // "2006-01-02 15:04:05"
	Source         string       `json:"source"`     // marketplace or sales channel
	Shop           string       `json:"shop"`
	Status         int          `json:"status"`
	Total          PriceToken   `json:"total"`
	ShippingTotal  PriceToken   `json:"shipping_total"`
	CarryingCharge PriceToken   `json:"carrying_charge"`
	ServiceFee     PriceToken   `json:"service_fee"`
	CargoProvider  string       `json:"cargo_provider"`
	CargoNumber    string       `json:"cargo_number"`
	HasInvoice     string       `json:"has_invoice"`
	InvoiceType    string       `json:"invoice_type"`
	InvoiceNumber  string       `json:"invoice_number"`
	Lines          []SentosItem `json:"lines"`
	Items          []SentosItem `json:"items"`
}

// LineItems returns the order's lines; some Sentos deployments report them
// under "items" instead of "lines".
func (o *SentosOrder) LineItems() []SentosItem {
	if len(o.Lines) > 0 {
		return o.Lines
	}
	return o.Items
}

// SentosImage is one product image reference.
type SentosImage struct {
	URL      string `json:"url"`
	ImageURL string `json:"image_url"`
}

// SentosVariant is one product variant; only used to backfill images when
// the parent product has none.
type SentosVariant struct {
	SKU    string        `json:"sku"`
	Images []SentosImage `json:"images"`
}

// SentosProduct is one raw catalog row from the products API.
type SentosProduct struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Barcode       string          `json:"barcode"`
	PurchasePrice PriceToken      `json:"purchase_price"` // excl. VAT
	VATRate       int             `json:"vat_rate"`
	SalePrice     PriceToken      `json:"sale_price"`
	Images        []SentosImage   `json:"images"`
	Variants      []SentosVariant `json:"variants"`
}

// FirstImageURL returns the first usable image, falling back to the first
// variant's images when the parent carries none.
func (p *SentosProduct) FirstImageURL() string {
	images := p.Images
	if len(images) == 0 && len(p.Variants) > 0 {
		images = p.Variants[0].Images
	}
	for _, img := range images {
		if img.URL != "" {
			return img.URL
		}
		if img.ImageURL != "" {
			return img.ImageURL
		}
	}
	return ""
}

// OrdersPage is one page of the orders listing.
type OrdersPage struct {
	Orders     []SentosOrder
	Total      int
	Page       int
	TotalPages int
}

// ProductsPage is one page of the product catalog.
type ProductsPage struct {
	Products   []SentosProduct
	Total      int
	Page       int
	TotalPages int
}

// ListOrdersParams filters the orders listing. Dates are YYYY-MM-DD.
type ListOrdersParams struct {
	StartDate   string
	EndDate     string
	Marketplace string
	Status      int // 0 means no status filter
	Page        int
	Size        int
}

// SentosClient talks to the Sentos aggregator API: HTTP basic auth,
// 1-based pages, {data, total_elements, total_pages, page} envelopes.
// It performs no rate limiting itself; the Fetcher owns pacing.
type SentosClient struct {
	http *resty.Client
	name string
}

// NewSentosClient builds a client for the given credentials. The optional
// cookie rides along on every request when set.
func NewSentosClient(apiURL, apiKey, apiSecret, cookie string, timeout time.Duration) *SentosClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(apiURL), "/")).
		SetBasicAuth(apiKey, apiSecret).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cookie != "" {
		client.SetHeader("Cookie", cookie)
	}
	return &SentosClient{http: client, name: "sentos"}
}

type sentosOrdersEnvelope struct {
	Data          []SentosOrder `json:"data"`
	Orders        []SentosOrder `json:"orders"`
	Total         int           `json:"total"`
	TotalElements int           `json:"total_elements"`
	TotalPages    int           `json:"total_pages"`
	Page          int           `json:"page"`
}

type sentosProductsEnvelope struct {
	Data          []SentosProduct `json:"data"`
	TotalElements int             `json:"total_elements"`
	TotalPages    int             `json:"total_pages"`
	Page          int             `json:"page"`
}

// ListOrders fetches a single page of orders.
func (c *SentosClient) ListOrders(ctx context.Context, p ListOrdersParams) (*OrdersPage, error) {
	req := c.http.R().SetContext(ctx).
		SetQueryParam("page", fmt.Sprint(p.Page)).
		SetQueryParam("size", fmt.Sprint(p.Size))
	if p.StartDate != "" {
		req.SetQueryParam("start_date", p.StartDate)
	}
	if p.EndDate != "" {
		req.SetQueryParam("end_date", p.EndDate)
	}
	if p.Marketplace != "" {
		req.SetQueryParam("marketplace", strings.ToUpper(p.Marketplace))
	}
	if p.Status != 0 {
		req.SetQueryParam("status", fmt.Sprint(p.Status))
	}

	resp, err := req.Get("/orders")
	if err != nil {
		return nil, wrapNetworkError(c.name, err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus(c.name, resp.StatusCode(), resp.String())
	}

	var env sentosOrdersEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &PermanentError{Source: c.name, StatusCode: resp.StatusCode(),
			Err: fmt.Errorf("failed to decode orders response: %w", err)}
	}

	orders := env.Data
	if len(orders) == 0 {
		orders = env.Orders
	}
	total := env.TotalElements
	if total == 0 {
		total = env.Total
	}
	totalPages := env.TotalPages
	if totalPages == 0 {
		totalPages = 1
	}
	return &OrdersPage{Orders: orders, Total: total, Page: p.Page, TotalPages: totalPages}, nil
}

// ListProducts fetches a single page of the product catalog.
func (c *SentosClient) ListProducts(ctx context.Context, page, size int) (*ProductsPage, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("page", fmt.Sprint(page)).
		SetQueryParam("size", fmt.Sprint(size)).
		Get("/products")
	if err != nil {
		return nil, wrapNetworkError(c.name, err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus(c.name, resp.StatusCode(), resp.String())
	}

	var env sentosProductsEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &PermanentError{Source: c.name, StatusCode: resp.StatusCode(),
			Err: fmt.Errorf("failed to decode products response: %w", err)}
	}
	totalPages := env.TotalPages
	if totalPages == 0 {
		totalPages = 1
	}
	currentPage := env.Page
	if currentPage == 0 {
		currentPage = page
	}
	return &ProductsPage{
		Products:   env.Data,
		Total:      env.TotalElements,
		Page:       currentPage,
		TotalPages: totalPages,
	}, nil
}

// GetProductBySKU searches the catalog for one product, trying the SKU
// first, then the barcode, then the search-style SKU variants (S prefix
// toggled, leading zeros toggled). Returns nil when nothing matches.
func (c *SentosClient) GetProductBySKU(ctx context.Context, sku, barcode string) (*SentosProduct, error) {
	product, err := c.searchProduct(ctx, "sku", sku)
	if err != nil || product != nil {
		return product, err
	}

	if barcode != "" {
		log.Printf("sentos: SKU %s not found, trying barcode %s", sku, barcode)
		product, err = c.searchProduct(ctx, "barcode", barcode)
		if err != nil || product != nil {
			return product, err
		}
	}

	for _, variant := range skuSearchVariants(sku) {
		if variant == sku {
			continue
		}
		log.Printf("sentos: SKU %s not found, trying normalized variant %s", sku, variant)
		product, err = c.searchProduct(ctx, "sku", variant)
		if err != nil || product != nil {
			return product, err
		}
	}
	return nil, nil
}

func (c *SentosClient) searchProduct(ctx context.Context, param, value string) (*SentosProduct, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam(param, value).
		SetQueryParam("size", "1").
		Get("/products")
	if err != nil {
		return nil, wrapNetworkError(c.name, err)
	}
	if resp.IsError() {
		return nil, classifyHTTPStatus(c.name, resp.StatusCode(), resp.String())
	}

	var env sentosProductsEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &PermanentError{Source: c.name, StatusCode: resp.StatusCode(),
			Err: fmt.Errorf("failed to decode product search response: %w", err)}
	}
	if len(env.Data) == 0 {
		return nil, nil
	}
	return &env.Data[0], nil
}

// skuSearchVariants generates the alternate spellings the upstream search
// uses: S prefix removed or added, leading zeros stripped or padded.
func skuSearchVariants(sku string) []string {
	if sku == "" {
		return nil
	}
	variants := []string{sku}

	if strings.HasPrefix(sku, "S") {
		noS := sku[1:]
		variants = append(variants, noS)
		if trimmed := strings.TrimLeft(noS, "0"); trimmed != noS {
			if trimmed == "" {
				trimmed = "0"
			}
			variants = append(variants, trimmed)
		}
	}
	if strings.HasPrefix(sku, "0") {
		trimmed := strings.TrimLeft(sku, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		variants = append(variants, trimmed)
	}
	if isDigits(sku) {
		variants = append(variants, "S"+sku)
		variants = append(variants, "S"+zeroPad(sku, 5))
		variants = append(variants, zeroPad(sku, 5))
	}

	seen := make(map[string]bool, len(variants))
	unique := variants[:0]
	for _, v := range variants {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return unique
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func zeroPad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}
