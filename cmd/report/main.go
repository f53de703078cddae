package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/config"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/database"
	"github.com/Cnbkrtl/salesv2render-deneme/internal/services"
)

var (
	startDate   = flag.String("start", "", "start date (YYYY-MM-DD), defaults to the 1st of this month")
	endDate     = flag.String("end", "", "end date (YYYY-MM-DD), defaults to today")
	marketplace = flag.String("marketplace", "", "restrict to one marketplace")
	output      = flag.String("o", "", "output path, defaults to sales_report_<start>_<end>.xlsx")
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
		*startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	}
	if *output == "" {
		*output = "sales_report_" + *startDate + "_" + *endDate + ".xlsx"
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	analytics := services.NewAnalyticsService(db)
	result, err := analytics.Aggregate(services.AggregateRequest{
		StartDate:   *startDate,
		EndDate:     *endDate,
		Marketplace: *marketplace,
	})
	if err != nil {
		log.Fatal("Aggregation failed: ", err)
	}

	buf, err := services.ExportReport(result)
	if err != nil {
		log.Fatal("Report export failed: ", err)
	}
	if err := os.WriteFile(*output, buf.Bytes(), 0o644); err != nil {
		log.Fatal("Failed to write report: ", err)
	}

	log.Printf("Report written to %s", *output)
	log.Printf("Net revenue %.2f over %d orders, margin %.1f%%",
		result.Summary.Net.Revenue, result.Summary.Net.Orders,
		result.Summary.Profitability.MarginPercent)
}
