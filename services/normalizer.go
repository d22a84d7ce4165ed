package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"funda-scraper/models"
	"funda-scraper/utils"
)

// The two listing categories the dataset covers. Everything else on the site
// (parkeerplaats, bouwgrond, ligplaats, ...) is out of scope and dropped.
var knownHouseTypes = map[string]struct{}{
	"appartement": {},
	"huis":        {},
}

// SoldPriceFields are the accepted values for the historical price source.
const (
	SoldPriceField    = "price_sold"
	LastAskPriceField = "last_ask_price"
)

// Normalizer turns one RawListing into one typed Listing, or decides the
// record should be dropped. Dropping is the only failure mode: missing
// mandatory fields, unparseable price or living area, unknown house types and
// unresolvable dates all end the same way, as absence from the output.
type Normalizer struct {
	logger *utils.Logger

	// soldPriceField picks which raw field supplies the price for
	// historical batches (sold price vs last asking price).
	soldPriceField string

	// now is injected so a whole batch normalizes against one instant and
	// tests can pin the clock.
	now func() time.Time
}

// NewNormalizer creates a Normalizer. soldPriceField must be "price_sold" or
// "last_ask_price".
func NewNormalizer(logger *utils.Logger, soldPriceField string) (*Normalizer, error) {
	if soldPriceField != SoldPriceField && soldPriceField != LastAskPriceField {
		return nil, &ConfigError{Field: "sold price source", Value: soldPriceField}
	}
	return &Normalizer{
		logger:         logger,
		soldPriceField: soldPriceField,
		now:            time.Now,
	}, nil
}

// ConfigError marks a misconfiguration that no amount of input data can
// correct. It propagates instead of being absorbed into the drop count.
type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Field + " = " + strconv.Quote(e.Value)
}

// Normalize derives the typed listing for one raw record. The second return
// value is false when the record is dropped.
func (n *Normalizer) Normalize(raw *models.RawListing, historical bool) (*models.Listing, bool) {
	if !n.hasRequiredFields(raw, historical) {
		return nil, false
	}

	now := n.now()

	houseType, houseID, ok := splitHouseSegment(raw.URL.Text())
	if !ok {
		return nil, false
	}
	if _, known := knownHouseTypes[houseType]; !known {
		n.logger.Debug("[normalizer] Skipping unsupported house type %q: %s", houseType, raw.URL.Text())
		return nil, false
	}

	livingArea := ParseArea(raw.LivingArea)
	if livingArea == 0 {
		return nil, false
	}

	price := ParsePrice(n.priceSource(raw, historical))
	if price == 0 {
		return nil, false
	}

	propertyArea := ParseArea(raw.Size)

	l := &models.Listing{
		HouseID:   houseID,
		HouseType: houseType,
		URL:       raw.URL.Text(),
		Address:   raw.Address.Text(),
		City:      raw.City.Text(),
		Zip:       zipPrefix(raw.ZipCode.Text()),

		Price:          price,
		PricePerM2:     round1(float64(price) / float64(livingArea)),
		PricePerM2Land: pricePerArea(price, propertyArea),

		LivingArea:   livingArea,
		PropertyArea: propertyArea,
		Volume:       ParseVolume(raw.Volume),
		GardenSize:   ParseGardenSize(raw.GardenSize),
		GardenWidth:  FindFloat(raw.GardenSize, GardenWidthPattern),
		GardenDepth:  FindFloat(raw.GardenSize, GardenDepthPattern),
		BalconySize:  ParseArea(raw.BalconySize),

		KindOfHouse:  raw.KindOfHouse.Text(),
		BuildingType: raw.BuildingType.Text(),
		Rooms:        FindCount(raw.NumOfRooms, RoomsPattern),
		Bedrooms:     FindCount(raw.NumOfRooms, BedroomsPattern),
		Bathrooms:    FindCount(raw.NumOfBathrooms, BathroomsPattern),
		Toilets:      FindCount(raw.NumOfBathrooms, ToiletsPattern),
		EnergyLabel:  NormalizeEnergyLabel(raw.EnergyLabel),
		HasBalcony:   containsFold(raw.Exteriors.Text(), "balkon", "balcony"),
		HasGarden:    containsFold(raw.Exteriors.Text(), "tuin", "garden"),
	}

	l.YearBuilt = ParseYear(raw.YearBuilt)
	l.HouseAge = now.Year() - l.YearBuilt

	if historical {
		dateSold, ok := ParseDate(raw.DateSold, now)
		if !ok {
			return nil, false
		}
		dateList, ok := ParseDate(raw.DateList, now)
		if !ok {
			return nil, false
		}
		l.DateSold = dateSold
		l.YearSold = dateSold.Year()
		l.YMSold = YearMonth(dateSold)
		l.DateList = dateList
		l.TermDays = int(dateSold.Sub(dateList).Hours() / 24)
	} else {
		dateList, ok := ParseDate(raw.ListedSince, now)
		if !ok {
			return nil, false
		}
		l.DateList = dateList
	}

	l.YearList = l.DateList.Year()
	l.YMList = YearMonth(l.DateList)

	return l, true
}

// hasRequiredFields rejects records with incomplete source data before any
// parsing starts. Which fields are mandatory depends on the batch kind.
func (n *Normalizer) hasRequiredFields(raw *models.RawListing, historical bool) bool {
	required := []models.RawValue{
		raw.URL,
		raw.ZipCode,
		raw.LivingArea,
		raw.YearBuilt,
		raw.NumOfRooms,
		raw.NumOfBathrooms,
		raw.EnergyLabel,
		raw.Exteriors,
	}
	if historical {
		required = append(required, n.priceSource(raw, true), raw.DateSold, raw.DateList)
	} else {
		required = append(required, raw.Price, raw.ListedSince)
	}
	for _, v := range required {
		if !v.IsPresent() {
			return false
		}
	}
	return true
}

func (n *Normalizer) priceSource(raw *models.RawListing, historical bool) models.RawValue {
	if !historical {
		return raw.Price
	}
	if n.soldPriceField == LastAskPriceField {
		return raw.LastAskPrice
	}
	return raw.PriceSold
}

// splitHouseSegment derives the house type and identifier from the last URL
// path segment, e.g. ".../appartement-43000000-keizersgracht-1/" yields
// ("appartement", 43000000).
func splitHouseSegment(rawURL string) (string, int, bool) {
	segs := strings.Split(strings.TrimSuffix(rawURL, "/"), "/")
	last := segs[len(segs)-1]
	parts := strings.Split(last, "-")
	if len(parts) < 2 {
		return "", 0, false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false
	}
	return parts[0], id, true
}

// zipPrefix keeps the "1234 AB" portion of the zip code line, which usually
// carries the city name as a suffix.
func zipPrefix(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}

func pricePerArea(price, area int) float64 {
	if area == 0 {
		// Apartments routinely have no plot area; that is not an error.
		return 0
	}
	return round1(float64(price) / float64(area))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func containsFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
