package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
)

const costCacheFileName = "product_cost_cache.json"

// CostEntry is one cached cost record, keyed by the SKU a sold item
// carried (which may be a variant SKU resolved through the cascade).
type CostEntry struct {
	SKU       string    `json:"sku"`
	Cost      float64   `json:"cost"` // tax-inclusive unit cost
	Barcode   string    `json:"barcode,omitempty"`
	Name      string    `json:"name,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type costCacheFile struct {
	Timestamp     int64                 `json:"timestamp"` // unix seconds, whole-cache creation time
	CreatedAt     string                `json:"created_at"`
	TotalProducts int                   `json:"total_products"`
	Products      map[string]*CostEntry `json:"products"`
}

// CacheStats describes the cache artifact for monitoring.
type CacheStats struct {
	TotalProducts       int     `json:"total_products"`
	ProductsWithBarcode int     `json:"products_with_barcode"`
	AgeHours            float64 `json:"cache_age_hours"`
	Valid               bool    `json:"cache_valid"`
	Path                string  `json:"cache_file"`
}

// CostCache is the disk-backed SKU -> cost side table with a whole-cache
// TTL. An expired artifact is discarded at load and rebuilt from the
// catalog; partial staleness is never trusted. Instances are owned by a
// single ingestion run and are not safe for concurrent writers.
type CostCache struct {
	path      string
	ttl       time.Duration
	createdAt time.Time
	entries   map[string]*CostEntry
	byBarcode map[string]*CostEntry
}

// NewCostCache loads the cache artifact from cacheDir, starting fresh when
// the file is missing or older than ttl.
func NewCostCache(cacheDir string, ttl time.Duration) (*CostCache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %q: %w", cacheDir, err)
	}
	c := &CostCache{
		path:      filepath.Join(cacheDir, costCacheFileName),
		ttl:       ttl,
		createdAt: time.Now(),
		entries:   make(map[string]*CostEntry),
		byBarcode: make(map[string]*CostEntry),
	}
	c.load()
	return c, nil
}

func (c *CostCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cost cache: failed to read %s: %v", c.path, err)
		}
		return
	}

	var file costCacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("cost cache: corrupt artifact %s, starting fresh: %v", c.path, err)
		return
	}

	created := time.Unix(file.Timestamp, 0)
	age := time.Since(created)
	if age > c.ttl {
		log.Printf("cost cache: expired (%.1fh old), will be rebuilt", age.Hours())
		return
	}

	c.createdAt = created
	for sku, entry := range file.Products {
		if entry == nil {
			continue
		}
		entry.SKU = sku
		c.entries[sku] = entry
		if entry.Barcode != "" {
			c.byBarcode[entry.Barcode] = entry
		}
	}
	log.Printf("cost cache: loaded %d products (%d with barcode), age %.1fh",
		len(c.entries), len(c.byBarcode), age.Hours())
}

// Save writes the cache artifact to disk, preserving the whole-cache
// creation timestamp so the TTL keeps counting from the original build.
func (c *CostCache) Save() error {
	file := costCacheFile{
		Timestamp:     c.createdAt.Unix(),
		CreatedAt:     c.createdAt.Format(time.RFC3339),
		TotalProducts: len(c.entries),
		Products:      c.entries,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cost cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cost cache: %w", err)
	}
	return nil
}

// Get returns the cached entry for an exact SKU.
func (c *CostCache) Get(sku string) (*CostEntry, bool) {
	entry, ok := c.entries[sku]
	return entry, ok
}

// GetByBarcode returns the cached entry via the barcode index.
func (c *CostCache) GetByBarcode(barcode string) (*CostEntry, bool) {
	if barcode == "" {
		return nil, false
	}
	entry, ok := c.byBarcode[barcode]
	return entry, ok
}

// Add inserts or replaces an entry.
func (c *CostCache) Add(sku string, cost float64, barcode, name string) {
	entry := &CostEntry{
		SKU:       sku,
		Cost:      cost,
		Barcode:   barcode,
		Name:      name,
		UpdatedAt: time.Now(),
	}
	c.entries[sku] = entry
	if barcode != "" {
		c.byBarcode[barcode] = entry
	}
}

// UpdateFromProducts refreshes entries whose catalog cost changed and adds
// missing ones. Returns the number of entries touched.
func (c *CostCache) UpdateFromProducts(products []models.Product) int {
	updated := 0
	for i := range products {
		p := &products[i]
		if p.SKU == "" {
			continue
		}
		existing, ok := c.entries[p.SKU]
		if ok && existing.Cost == p.PurchasePriceWithVAT {
			continue
		}
		c.Add(p.SKU, p.PurchasePriceWithVAT, p.Barcode, p.Name)
		updated++
	}
	if updated > 0 {
		if err := c.Save(); err != nil {
			log.Printf("cost cache: save after catalog refresh failed: %v", err)
		}
	}
	return updated
}

// Clear drops the in-memory maps, removes the artifact and resets the
// creation timestamp. Used by the catalog sync before a fresh rebuild.
func (c *CostCache) Clear() {
	c.entries = make(map[string]*CostEntry)
	c.byBarcode = make(map[string]*CostEntry)
	c.createdAt = time.Now()
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		log.Printf("cost cache: failed to remove artifact: %v", err)
	}
}

// Len returns the number of cached SKUs.
func (c *CostCache) Len() int { return len(c.entries) }

// Stats reports the cache's size, age and validity.
func (c *CostCache) Stats() CacheStats {
	age := time.Since(c.createdAt)
	return CacheStats{
		TotalProducts:       len(c.entries),
		ProductsWithBarcode: len(c.byBarcode),
		AgeHours:            age.Hours(),
		Valid:               age <= c.ttl,
		Path:                c.path,
	}
}
