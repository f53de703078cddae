package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/config"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/connectors"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/database"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/services"
)

var maxPages = flag.Int("max-pages", 0, "page cap for the catalog sync, 0 for no cap")

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	fetcher := connectors.DefaultFetcher()
	fetcher.MinDelay = cfg.RateLimitDelay()
	fetcher.MaxRetries = cfg.MaxRetries

	sentos := connectors.NewSentosClient(cfg.SentosAPIURL, cfg.SentosAPIKey,
		cfg.SentosAPISecret, cfg.SentosCookie, cfg.RequestTimeout())
	ingest := services.NewIngestService(db, sentos, nil, fetcher,
		cfg.CacheDir, cfg.CacheTTL(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	result, err := ingest.SyncProducts(ctx, *maxPages)
	if err != nil {
		log.Fatal("Product sync failed: ", err)
	}
	log.Printf("Synced %d products (%d stored), cache holds %d entries",
		result.ProductsFetched, result.ProductsStored, result.CacheEntries)
}
