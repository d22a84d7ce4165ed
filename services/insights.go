package services

import (
	"fmt"
	"sort"
	"strings"

	"funda-scraper/models"
	"funda-scraper/utils"
)

// MarketReport holds the computed summary over one cleaned batch.
type MarketReport struct {
	TotalListings int
	Apartments    int
	Houses        int

	AveragePrice   float64
	MinPrice       int
	MaxPrice       int
	AveragePriceM2 float64

	MostExpensive *models.Listing
	BestValue     []*models.Listing // lowest price per m², top 5
	ListingsByZip map[string]int
}

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.Listing) *MarketReport {
	report := &MarketReport{
		ListingsByZip: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)
	report.MinPrice = listings[0].Price
	report.MaxPrice = listings[0].Price

	var priceTotal, priceM2Total float64
	ranked := make([]*models.Listing, 0, len(listings))

	for _, l := range listings {
		switch l.HouseType {
		case "appartement":
			report.Apartments++
		case "huis":
			report.Houses++
		}

		priceTotal += float64(l.Price)
		priceM2Total += l.PricePerM2
		ranked = append(ranked, l)

		if l.Price < report.MinPrice {
			report.MinPrice = l.Price
		}
		if l.Price > report.MaxPrice {
			report.MaxPrice = l.Price
			report.MostExpensive = l
		}
		if report.MostExpensive == nil {
			report.MostExpensive = l
		}

		if l.Zip != "" {
			report.ListingsByZip[zipDistrict(l.Zip)]++
		}
	}

	report.AveragePrice = round1(priceTotal / float64(len(listings)))
	report.AveragePriceM2 = round1(priceM2Total / float64(len(listings)))

	// Top 5 by price per m², cheapest first
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].PricePerM2 < ranked[j].PricePerM2
	})
	if len(ranked) > 5 {
		report.BestValue = ranked[:5]
	} else {
		report.BestValue = ranked
	}

	return report
}

// zipDistrict buckets zip codes by their four-digit district.
func zipDistrict(zip string) string {
	if len(zip) > 4 {
		return zip[:4]
	}
	return zip
}

func (s *InsightService) Print(r *MarketReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🏠 FUNDA MARKET REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Listings in dataset : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Apartments          : \033[1m%d\033[0m\n", r.Apartments)
	fmt.Printf("  Houses              : \033[1m%d\033[0m\n", r.Houses)
	fmt.Println()

	// Price stats
	fmt.Printf("\033[1;33m  Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : \033[1;32m€%.0f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m€%d\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m€%d\033[0m\n", r.MaxPrice)
		fmt.Printf("  Average €/m²  : \033[1;32m€%.1f\033[0m\n", r.AveragePriceM2)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Most expensive
	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Address, 50))
		fmt.Printf("  Zip    : %s\n", r.MostExpensive.Zip)
		fmt.Printf("  Price  : \033[1;31m€%d\033[0m (€%.1f/m²)\n",
			r.MostExpensive.Price, r.MostExpensive.PricePerM2)
		fmt.Println()
	}

	// Best value
	fmt.Printf("\033[1;33m  Top 5 Lowest €/m²\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.BestValue) == 0 {
		fmt.Printf("  No listings\n")
	} else {
		for i, l := range r.BestValue {
			addr := truncate(l.Address, 38)
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m€%.1f/m²\033[0m\n",
				i+1, addr, l.PricePerM2)
		}
	}
	fmt.Println()

	// Listings by zip district
	fmt.Printf("\033[1;33m  Listings by Zip District\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ListingsByZip) == 0 {
		fmt.Printf("  No zip data\n")
	} else {
		type zipCount struct {
			zip   string
			count int
		}
		var zips []zipCount
		for zip, cnt := range r.ListingsByZip {
			zips = append(zips, zipCount{zip, cnt})
		}
		sort.Slice(zips, func(i, j int) bool {
			return zips[i].count > zips[j].count
		})
		for _, zc := range zips {
			bar := strings.Repeat("█", zc.count)
			fmt.Printf("  %-10s %s (%d)\n", zc.zip, bar, zc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
