package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/config"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/connectors"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/database"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/services"
)

var (
	startDate   = flag.String("start", "", "start date (YYYY-MM-DD), defaults to 7 days ago")
	endDate     = flag.String("end", "", "end date (YYYY-MM-DD), defaults to today")
	marketplace = flag.String("marketplace", "", "restrict to one marketplace")
	clear       = flag.Bool("clear", false, "purge existing orders in range first")
	trendyol    = flag.Bool("trendyol", false, "ingest from the Trendyol seller API instead of Sentos")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	now := time.Now()
	if *endDate == "" {
		*endDate = now.Format("2006-01-02")
	}
	if *startDate == "" {
		*startDate = now.AddDate(0, 0, -7).Format("2006-01-02")
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
	var packages services.PackageSource
	if cfg.TrendyolSupplierID != "" {
		packages = connectors.NewTrendyolClient(cfg.TrendyolAPIURL, cfg.TrendyolSupplierID,
			cfg.TrendyolAPIKey, cfg.TrendyolAPISecret, cfg.RequestTimeout())
	}

	ingest := services.NewIngestService(db, sentos, packages, fetcher,
		cfg.CacheDir, cfg.CacheTTL(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Interrupted, finishing current batch")
		cancel()
	}()

	var result *services.IngestResult
	if *trendyol {
		result, err = ingest.IngestTrendyolPackages(ctx, *startDate, *endDate)
	} else {
		result, err = ingest.IngestOrders(ctx, services.IngestRequest{
			StartDate:     *startDate,
			EndDate:       *endDate,
			Marketplace:   *marketplace,
			ClearExisting: *clear,
		})
	}
	if result != nil {
		out, _ := json.MarshalIndent(result, "", "  ")
		os.Stdout.Write(append(out, '\n'))
	}
	if err != nil {
		log.Fatal("Ingestion failed: ", err)
	}
}
