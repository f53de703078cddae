package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/api"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/config"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/connectors"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/database"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/services"
)

func main() {
	// Load environment variables
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

	sentos := connectors.NewSentosClient(cfg.SentosAPIURL, cfg.SentosAPIKey,
		cfg.SentosAPISecret, cfg.SentosCookie, cfg.RequestTimeout())

	var packages services.PackageSource
	if cfg.TrendyolSupplierID != "" && cfg.TrendyolAPIKey != "" {
		packages = connectors.NewTrendyolClient(cfg.TrendyolAPIURL, cfg.TrendyolSupplierID,
			cfg.TrendyolAPIKey, cfg.TrendyolAPISecret, cfg.RequestTimeout())
	} else {
		log.Println("Trendyol credentials not configured, direct seller-API sync disabled")
	}

	fetcher := connectors.DefaultFetcher()
	fetcher.MinDelay = cfg.RateLimitDelay()
	fetcher.MaxRetries = cfg.MaxRetries

	ingest := services.NewIngestService(db, sentos, packages, fetcher,
		cfg.CacheDir, cfg.CacheTTL(), nil)
	analytics := services.NewAnalyticsService(db)
	scheduler := services.NewSyncScheduler(ingest)
	if cfg.SchedulerEnabled {
		scheduler.Start(context.Background())
	}

	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	api.SetupRoutes(apiGroup, db, ingest, analytics, scheduler)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
