package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPriceTokenUnmarshal(t *testing.T) {
	var payload struct {
		A PriceToken `json:"a"`
		B PriceToken `json:"b"`
		C PriceToken `json:"c"`
		D PriceToken `json:"d"`
	}
	raw := `{"a": "1.220,50", "b": 149.9, "c": null, "d": 200}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if payload.A != "1.220,50" {
		t.Errorf("string token = %q", payload.A)
	}
	if payload.B != "149.9" {
		t.Errorf("number token = %q", payload.B)
	}
	if payload.C != "" {
		t.Errorf("null token = %q", payload.C)
	}
	if payload.D != "200" {
		t.Errorf("integer token = %q", payload.D)
	}
}

func TestSentosListOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "key" || pass != "secret" {
			t.Errorf("basic auth = %s/%s", user, pass)
		}
		q := r.URL.Query()
		if q.Get("start_date") != "2026-08-01" || q.Get("status") != "2" {
			t.Errorf("query = %v", q)
		}
		if q.Get("marketplace") != "TRENDYOL" {
			t.Errorf("marketplace = %q, want upper-cased", q.Get("marketplace"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [{"id": 1001, "order_code": "TY-1", "total": "1.220,50", "lines": [{"id": 1, "sku": "A", "price": 149.9}]}],
			"total_elements": 1, "total_pages": 1, "page": 1
		}`))
	}))
	defer srv.Close()

	client := NewSentosClient(srv.URL, "key", "secret", "", 5*time.Second)
	page, err := client.ListOrders(context.Background(), ListOrdersParams{
		StartDate: "2026-08-01", EndDate: "2026-08-20", Marketplace: "Trendyol",
		Status: 2, Page: 1, Size: 100,
	})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(page.Orders) != 1 || page.TotalPages != 1 {
		t.Fatalf("page = %+v", page)
	}
	order := page.Orders[0]
	if order.ID != 1001 || order.Total != "1.220,50" {
		t.Errorf("order = %+v", order)
	}
	if len(order.LineItems()) != 1 || order.LineItems()[0].Price != "149.9" {
		t.Errorf("lines = %+v", order.LineItems())
	}
}

func TestSentosListOrdersAlternateEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders": [{"id": 7}], "total": 1}`))
	}))
	defer srv.Close()

	client := NewSentosClient(srv.URL, "k", "s", "", 5*time.Second)
	page, err := client.ListOrders(context.Background(), ListOrdersParams{Page: 1, Size: 10})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(page.Orders) != 1 || page.Orders[0].ID != 7 {
		t.Errorf("orders = %+v", page.Orders)
	}
	if page.TotalPages != 1 {
		t.Errorf("total pages = %d, want defaulted 1", page.TotalPages)
	}
}

func TestSentosErrorClassification(t *testing.T) {
	status := 429
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	client := NewSentosClient(srv.URL, "k", "s", "", 5*time.Second)
	_, err := client.ListOrders(context.Background(), ListOrdersParams{Page: 1, Size: 10})
	if !IsTransient(err) {
		t.Errorf("429 err = %v, want transient", err)
	}

	status = 401
	_, err = client.ListOrders(context.Background(), ListOrdersParams{Page: 1, Size: 10})
	if !IsPermanent(err) {
		t.Errorf("401 err = %v, want permanent", err)
	}
}

func TestSkuSearchVariants(t *testing.T) {
	got := skuSearchVariants("S00123")
	want := map[string]bool{"S00123": true, "00123": true, "123": true}
	for _, v := range got {
		if !want[v] {
			t.Errorf("unexpected variant %q in %v", v, got)
		}
		delete(want, v)
	}
	if len(want) > 0 {
		t.Errorf("missing variants %v from %v", want, got)
	}

	if vs := skuSearchVariants(""); vs != nil {
		t.Errorf("variants of empty = %v", vs)
	}
}
