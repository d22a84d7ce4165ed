package models

import (
	"strings"
	"time"
)

var pageNoise = strings.NewReplacer("\n", "", "\r", "")

// RawValue is a scraped field value: either a string that was present on the
// listing page, or absent. The extraction layer marks missing selector matches
// as absent, so the parsing layer never has to thread "na" placeholder strings
// through string operations.
type RawValue struct {
	text    string
	present bool
}

// Present wraps a scraped string. Empty strings and the legacy "na"
// placeholder collapse to Absent.
func Present(s string) RawValue {
	s = trimPage(s)
	if s == "" || s == "na" {
		return RawValue{}
	}
	return RawValue{text: s, present: true}
}

// Absent is the missing-field value.
func Absent() RawValue {
	return RawValue{}
}

// IsPresent reports whether a value was scraped for this field.
func (v RawValue) IsPresent() bool { return v.present }

// Text returns the raw string, or "" when absent.
func (v RawValue) Text() string { return v.text }

// trimPage strips the newlines and carriage returns that page text tends to
// carry, then trims surrounding whitespace.
func trimPage(s string) string {
	return strings.TrimSpace(pageNoise.Replace(s))
}

// RawListing holds the unprocessed field values scraped from one listing
// detail page. All fields follow the fixed funda selector schema; the sold
// fields are only populated when scraping historical (sold/rented) listings.
type RawListing struct {
	URL            RawValue
	Price          RawValue
	Address        RawValue
	Description    RawValue
	ListedSince    RawValue
	ZipCode        RawValue
	Size           RawValue
	YearBuilt      RawValue
	LivingArea     RawValue
	KindOfHouse    RawValue
	BuildingType   RawValue
	NumOfRooms     RawValue
	NumOfBathrooms RawValue
	Layout         RawValue
	EnergyLabel    RawValue
	Insulation     RawValue
	Heating        RawValue
	Ownership      RawValue
	Exteriors      RawValue
	Parking        RawValue
	Neighborhood   RawValue
	Volume         RawValue
	GardenSize     RawValue
	BalconySize    RawValue
	DateList       RawValue
	DateSold       RawValue
	Term           RawValue
	PriceSold      RawValue
	LastAskPrice   RawValue
	City           RawValue
	Photos         RawValue

	ScrapedAt time.Time
}

// Listing is the cleaned, typed record derived from exactly one RawListing.
// It is immutable after derivation.
type Listing struct {
	HouseID   int
	HouseType string
	URL       string
	Address   string
	City      string
	Zip       string

	Price          int
	PricePerM2     float64
	PricePerM2Land float64

	LivingArea   int
	PropertyArea int
	Volume       int
	GardenSize   int
	GardenWidth  float64
	GardenDepth  float64
	BalconySize  int

	KindOfHouse  string
	BuildingType string
	Rooms        int
	Bedrooms     int
	Bathrooms    int
	Toilets      int
	EnergyLabel  string
	HasBalcony   bool
	HasGarden    bool

	YearBuilt int
	HouseAge  int

	DateList time.Time
	YearList int
	YMList   time.Time

	// Populated only for historical (sold/rented) listings.
	DateSold time.Time
	YearSold int
	YMSold   time.Time
	TermDays int
}

// Dataset is the final ordered table handed to the persistence layer:
// the surviving listings projected onto the configured column set.
type Dataset struct {
	Columns  []string
	Rows     [][]any
	Listings []*Listing

	InputCount int
	Dropped    int
}
