package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"funda-scraper/config"
	"funda-scraper/models"
	"funda-scraper/scraper/funda"
	"funda-scraper/services"
	"funda-scraper/storage"
	"funda-scraper/utils"
)

func main() {
	var (
		area         = flag.String("area", "amsterdam", "area to search, e.g. amsterdam or den-haag")
		wantTo       = flag.String("want-to", "rent", "'buy' or 'rent'")
		pageStart    = flag.Int("page-start", 1, "first search-result page to scrape")
		nPages       = flag.Int("pages", 1, "number of search-result pages to scrape")
		findPast     = flag.Bool("find-past", false, "scrape historical (sold/rented) listings")
		minPrice     = flag.Int("min-price", 0, "minimum price filter")
		maxPrice     = flag.Int("max-price", 0, "maximum price filter")
		daysSince    = flag.Int("days-since", 0, "only listings published in the last N days (1, 3, 5, 10 or 30)")
		propertyType = flag.String("property-type", "", "comma-separated funda object types")
		sortBy       = flag.String("sort", "", "search result ordering")
		rawOnly      = flag.Bool("raw", false, "skip normalization, persist raw data only")
		bootstrap    = flag.Bool("bootstrap-session", false, "open a browser to acquire session cookies, then exit")
		verbose      = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	logger := utils.NewLogger(*verbose)
	cfg := config.Load()

	schema, err := config.LoadSchema()
	if err != nil {
		logger.Error("Broken scraping schema: %v", err)
		os.Exit(1)
	}

	query := &funda.Query{
		Area:         *area,
		WantTo:       *wantTo,
		PageStart:    *pageStart,
		NPages:       *nPages,
		FindPast:     *findPast,
		MinPrice:     *minPrice,
		MaxPrice:     *maxPrice,
		DaysSince:    *daysSince,
		PropertyType: *propertyType,
		Sort:         *sortBy,
	}

	if *bootstrap {
		runBootstrap(cfg, schema, query, logger)
		return
	}

	logger.Info("=== funda scraper starting ===")
	logger.Info("Config — area: %s | want-to: %s | pages: %d | find-past: %v | concurrency: %d | rate: %dms",
		*area, *wantTo, *nPages, *findPast, cfg.MaxConcurrency, cfg.RateLimitMs)

	scraper, err := funda.New(cfg, schema, logger)
	if err != nil {
		logger.Error("Failed to set up scraper: %v", err)
		os.Exit(1)
	}

	rawListings, err := scraper.Run(query)
	if err != nil {
		logger.Error("Scrape failed: %v", err)
		os.Exit(1)
	}
	if len(rawListings) == 0 {
		logger.Error("No listings were scraped. Exiting.")
		os.Exit(1)
	}

	persistRaw(cfg, logger, rawListings)

	if *rawOnly {
		logger.Info("Raw-only mode — skipping normalization")
		return
	}

	dataset := normalize(cfg, schema, logger, rawListings, *findPast)
	if len(dataset.Listings) == 0 {
		logger.Error("All listings were dropped during normalization. Exiting.")
		os.Exit(1)
	}

	persistClean(cfg, logger, dataset)

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(dataset.Listings)
	insightSvc.Print(report)

	fmt.Printf("  Done. %d/%d listings survived — raw CSV → %s | clean CSV → %s | SQLite → %s\n\n",
		len(dataset.Listings), dataset.InputCount, cfg.RawCSVPath, cfg.CleanCSVPath, cfg.SQLitePath)
}

func runBootstrap(cfg *config.Config, schema *config.Schema, query *funda.Query, logger *utils.Logger) {
	startURL, err := query.MainURL(schema.BaseURL)
	if err != nil {
		logger.Error("Cannot build search URL: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	session := funda.NewSession(cfg.CookiePath, cfg.ChromeBin, logger)
	if err := session.Bootstrap(ctx, startURL); err != nil {
		logger.Error("Session bootstrap failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Session ready — run again without -bootstrap-session to scrape")
}

func normalize(cfg *config.Config, schema *config.Schema, logger *utils.Logger, raws []*models.RawListing, findPast bool) *models.Dataset {
	normalizer, err := services.NewNormalizer(logger, cfg.SoldPriceField)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	assembler, err := services.NewAssembler(logger, normalizer, schema.KeepCols, cfg.MaxConcurrency)
	if err != nil {
		logger.Error("Broken column schema: %v", err)
		os.Exit(1)
	}

	dataset, err := assembler.Assemble(raws, findPast, nil)
	if err != nil {
		logger.Error("Assembly failed: %v", err)
		os.Exit(1)
	}
	return dataset
}

func persistRaw(cfg *config.Config, logger *utils.Logger, raws []*models.RawListing) {
	csvWriter, err := storage.NewCSVWriter(cfg.RawCSVPath)
	if err != nil {
		logger.Error("Failed to create raw CSV writer: %v", err)
		return
	}
	defer csvWriter.Close()

	if err := csvWriter.WriteRaw(raws); err != nil {
		logger.Error("Raw CSV write failed: %v", err)
	} else {
		logger.Info("Raw listings saved to %s", cfg.RawCSVPath)
	}

	sqliteWriter, err := storage.NewSQLiteWriter(cfg.SQLitePath)
	if err != nil {
		logger.Error("Failed to open SQLite database: %v", err)
		return
	}
	defer sqliteWriter.Close()

	if err := sqliteWriter.WriteRaw(raws); err != nil {
		logger.Error("SQLite raw write failed: %v", err)
	} else {
		logger.Info("Raw listings stored in SQLite (table: raw)")
	}
}

func persistClean(cfg *config.Config, logger *utils.Logger, dataset *models.Dataset) {
	csvWriter, err := storage.NewCSVWriter(cfg.CleanCSVPath)
	if err != nil {
		logger.Error("Failed to create clean CSV writer: %v", err)
	} else {
		defer csvWriter.Close()
		if err := csvWriter.WriteDataset(dataset); err != nil {
			logger.Error("Clean CSV write failed: %v", err)
		} else {
			logger.Info("Clean dataset saved to %s", cfg.CleanCSVPath)
		}
	}

	sqliteWriter, err := storage.NewSQLiteWriter(cfg.SQLitePath)
	if err != nil {
		logger.Error("Failed to open SQLite database: %v", err)
	} else {
		defer sqliteWriter.Close()
		if err := sqliteWriter.WriteDataset(dataset); err != nil {
			logger.Error("SQLite write failed: %v", err)
		} else {
			logger.Info("Clean dataset stored in SQLite (table: clean)")
		}
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			return
		}
		defer pgWriter.Close()
		if err := pgWriter.Write(dataset.Listings); err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Clean listings stored in PostgreSQL (table: listings)")
		}
	}
}
