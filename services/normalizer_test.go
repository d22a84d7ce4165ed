package services

import (
	"reflect"
	"testing"
	"time"

	"funda-scraper/models"
	"funda-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger(false) }

// 1 August 2023, so year-dependent fields are stable.
var testNow = time.Date(2023, time.August, 1, 12, 0, 0, 0, time.UTC)

func newTestNormalizer(t *testing.T, soldPriceField string) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(newTestLogger(), soldPriceField)
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	n.now = func() time.Time { return testNow }
	return n
}

// soldApartment mirrors a typical historical scrape of an apartment listing.
func soldApartment() *models.RawListing {
	return &models.RawListing{
		URL:            models.Present("https://www.funda.nl/koop/utrecht/appartement-00000000-dummy-100/"),
		Price:          models.Present("na"),
		Address:        models.Present("Dummylaan 10"),
		Description:    models.Present("dummy"),
		ListedSince:    models.Present("Verkocht"),
		ZipCode:        models.Present("1111 AA Utrecht"),
		Size:           models.Present("100 m²"),
		YearBuilt:      models.Present("2000"),
		LivingArea:     models.Present("78 m²"),
		KindOfHouse:    models.Present("Eengezinswoning"),
		BuildingType:   models.Present("Bestaande bouw"),
		NumOfRooms:     models.Present("4 kamers (3 slaapkamers)"),
		NumOfBathrooms: models.Present("1 badkamer en 1 apart toilet"),
		Layout:         models.Present("Aantal kamers 4 kamers (3 slaapkamers)"),
		EnergyLabel:    models.Present("A++++"),
		Exteriors:      models.Present("Balkon aanwezig"),
		DateList:       models.Present("30 juni 2023"),
		DateSold:       models.Present("13 juli 2023"),
		Term:           models.Present("13 dagen"),
		PriceSold:      models.Present("€ 500.000 k.k."),
		LastAskPrice:   models.Present("€ 510.000 kosten koper"),
		City:           models.Present("utrecht"),
	}
}

// listedHouse mirrors an active rental/sale listing.
func listedHouse() *models.RawListing {
	return &models.RawListing{
		URL:            models.Present("https://www.funda.nl/koop/utrecht/huis-12345678-dummystraat-1/"),
		Price:          models.Present("€ 450.000 k.k."),
		Address:        models.Present("Dummystraat 1"),
		ListedSince:    models.Present("2 weken geleden"),
		ZipCode:        models.Present("2222 BB Utrecht"),
		Size:           models.Present("150 m²"),
		YearBuilt:      models.Present("1990-2000"),
		LivingArea:     models.Present("120 m²"),
		NumOfRooms:     models.Present("5 kamers (4 slaapkamers)"),
		NumOfBathrooms: models.Present("2 badkamers"),
		EnergyLabel:    models.Present("B"),
		Exteriors:      models.Present("Achtertuin 45 m² (10,62 meter diep en 4,25 meter breed)"),
		City:           models.Present("utrecht"),
	}
}

func TestNormalizeHistoricalApartment(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	l, ok := n.Normalize(soldApartment(), true)
	if !ok {
		t.Fatal("expected record to survive")
	}

	if l.HouseType != "appartement" {
		t.Errorf("HouseType = %q; want appartement", l.HouseType)
	}
	if l.HouseID != 0 {
		t.Errorf("HouseID = %d; want 0 (all-zero id segment)", l.HouseID)
	}
	if l.Price != 500000 {
		t.Errorf("Price = %d; want 500000", l.Price)
	}
	if l.LivingArea != 78 {
		t.Errorf("LivingArea = %d; want 78", l.LivingArea)
	}
	if l.PricePerM2 != 6410.3 {
		t.Errorf("PricePerM2 = %v; want 6410.3", l.PricePerM2)
	}
	if l.PricePerM2Land != 5000.0 {
		t.Errorf("PricePerM2Land = %v; want 5000.0", l.PricePerM2Land)
	}
	if l.Rooms != 4 || l.Bedrooms != 3 {
		t.Errorf("Rooms/Bedrooms = %d/%d; want 4/3", l.Rooms, l.Bedrooms)
	}
	if l.Bathrooms != 1 || l.Toilets != 1 {
		t.Errorf("Bathrooms/Toilets = %d/%d; want 1/1", l.Bathrooms, l.Toilets)
	}
	if l.EnergyLabel != ">A+" {
		t.Errorf("EnergyLabel = %q; want >A+", l.EnergyLabel)
	}
	if l.Zip != "1111 AA" {
		t.Errorf("Zip = %q; want %q", l.Zip, "1111 AA")
	}
	if !l.HasBalcony {
		t.Error("HasBalcony = false; want true")
	}
	if l.YearBuilt != 2000 || l.HouseAge != 23 {
		t.Errorf("YearBuilt/HouseAge = %d/%d; want 2000/23", l.YearBuilt, l.HouseAge)
	}
	if l.TermDays != 13 {
		t.Errorf("TermDays = %d; want 13", l.TermDays)
	}
	if l.YearSold != 2023 {
		t.Errorf("YearSold = %d; want 2023", l.YearSold)
	}
	wantYM := time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)
	if !l.YMSold.Equal(wantYM) {
		t.Errorf("YMSold = %v; want %v", l.YMSold, wantYM)
	}
}

func TestNormalizeActiveHouse(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	l, ok := n.Normalize(listedHouse(), false)
	if !ok {
		t.Fatal("expected record to survive")
	}

	if l.HouseType != "huis" || l.HouseID != 12345678 {
		t.Errorf("HouseType/HouseID = %q/%d; want huis/12345678", l.HouseType, l.HouseID)
	}
	if l.Price != 450000 {
		t.Errorf("Price = %d; want 450000", l.Price)
	}
	if l.YearBuilt != 1990 {
		t.Errorf("YearBuilt = %d; want 1990 (range start)", l.YearBuilt)
	}
	if !l.HasGarden {
		t.Error("HasGarden = false; want true")
	}
	if l.HasBalcony {
		t.Error("HasBalcony = true; want false")
	}
	wantList := testNow.AddDate(0, 0, -14)
	if !l.DateList.Equal(wantList) {
		t.Errorf("DateList = %v; want %v", l.DateList, wantList)
	}
	if l.YearList != 2023 {
		t.Errorf("YearList = %d; want 2023", l.YearList)
	}
	// Sold fields stay zero for active listings.
	if !l.DateSold.IsZero() || l.TermDays != 0 || l.YearSold != 0 {
		t.Error("sold fields populated on a non-historical record")
	}
}

func TestNormalizeDropsPriceOnRequest(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	raw := listedHouse()
	raw.Price = models.Present("Prijs op aanvraag")

	if _, ok := n.Normalize(raw, false); ok {
		t.Error("record with unparseable price should be dropped")
	}
}

func TestNormalizeDropsUnknownHouseType(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	raw := listedHouse()
	raw.URL = models.Present("https://www.funda.nl/koop/utrecht/parkeerplaats-87654321-dummygarage/")

	if _, ok := n.Normalize(raw, false); ok {
		t.Error("parkeerplaats listing should be dropped")
	}
}

func TestNormalizeDropsZeroLivingArea(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	raw := listedHouse()
	raw.LivingArea = models.Present("onbekend")

	if _, ok := n.Normalize(raw, false); ok {
		t.Error("record with unparseable living area should be dropped")
	}
}

func TestNormalizeDropsMissingRequiredField(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	raw := listedHouse()
	raw.ZipCode = models.Absent()

	if _, ok := n.Normalize(raw, false); ok {
		t.Error("record with missing zip code should be dropped")
	}
}

func TestNormalizeDropsUnresolvableDates(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	raw := soldApartment()
	raw.DateSold = models.Present("binnenkort")

	if _, ok := n.Normalize(raw, true); ok {
		t.Error("historical record with unparseable sold date should be dropped")
	}
}

func TestNormalizeLastAskPriceSource(t *testing.T) {
	n := newTestNormalizer(t, LastAskPriceField)

	l, ok := n.Normalize(soldApartment(), true)
	if !ok {
		t.Fatal("expected record to survive")
	}
	if l.Price != 510000 {
		t.Errorf("Price = %d; want 510000 from last_ask_price", l.Price)
	}
}

func TestNormalizeInvalidPriceSource(t *testing.T) {
	if _, err := NewNormalizer(newTestLogger(), "asking_price"); err == nil {
		t.Error("expected configuration error for unknown price source")
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	a, okA := n.Normalize(soldApartment(), true)
	b, okB := n.Normalize(soldApartment(), true)
	if !okA || !okB {
		t.Fatal("expected both runs to survive")
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs over the same record produced different output")
	}
}

func TestNormalizeActiveIgnoresSoldFields(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)

	raw := listedHouse()
	raw.PriceSold = models.Absent()
	raw.DateSold = models.Absent()

	if _, ok := n.Normalize(raw, false); !ok {
		t.Error("active record without sold fields should survive")
	}
}
