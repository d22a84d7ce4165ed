package services

import (
	"testing"

	"funda-scraper/config"
	"funda-scraper/models"
)

func testColumnSchema() config.ColumnSchema {
	return config.ColumnSchema{
		SellingData: []string{"house_id", "house_type", "url", "city", "price", "living_area", "price_m2"},
		SoldData:    []string{"date_sold", "ym_sold", "year_sold", "term_days"},
	}
}

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	n := newTestNormalizer(t, SoldPriceField)
	a, err := NewAssembler(newTestLogger(), n, testColumnSchema(), 2)
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	return a
}

func TestNewAssemblerRejectsUnknownColumn(t *testing.T) {
	n := newTestNormalizer(t, SoldPriceField)
	schema := testColumnSchema()
	schema.SellingData = append(schema.SellingData, "asking_price")

	if _, err := NewAssembler(newTestLogger(), n, schema, 2); err == nil {
		t.Error("expected constructor error for column without accessor")
	}
}

func TestColumnsContainment(t *testing.T) {
	a := newTestAssembler(t)

	active, err := a.Columns(false, nil)
	if err != nil {
		t.Fatalf("Columns(false): %v", err)
	}
	historical, err := a.Columns(true, nil)
	if err != nil {
		t.Fatalf("Columns(true): %v", err)
	}

	if len(historical) != len(active)+len(testColumnSchema().SoldData) {
		t.Fatalf("historical has %d columns; want %d", len(historical), len(active)+4)
	}
	// The historical list must start with the non-historical list, in order.
	for i, col := range active {
		if historical[i] != col {
			t.Errorf("historical[%d] = %q; want %q", i, historical[i], col)
		}
	}
}

func TestColumnsRejectsUnknownExtra(t *testing.T) {
	a := newTestAssembler(t)
	if _, err := a.Columns(false, []string{"volume", "no_such_column"}); err == nil {
		t.Error("expected error for extra column without accessor")
	}
}

func TestColumnsAppendsExtras(t *testing.T) {
	a := newTestAssembler(t)
	cols, err := a.Columns(false, []string{"volume", "garden_size"})
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if cols[len(cols)-2] != "volume" || cols[len(cols)-1] != "garden_size" {
		t.Errorf("extras not appended in order: %v", cols[len(cols)-2:])
	}
}

func TestAssembleProjectsSurvivors(t *testing.T) {
	a := newTestAssembler(t)

	bad := soldApartment()
	bad.PriceSold = models.Present("Prijs op aanvraag")

	raws := []*models.RawListing{soldApartment(), bad, soldApartment()}
	ds, err := a.Assemble(raws, true, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if ds.InputCount != 3 || ds.Dropped != 1 || len(ds.Listings) != 2 {
		t.Fatalf("counts = in %d, dropped %d, out %d; want 3/1/2",
			ds.InputCount, ds.Dropped, len(ds.Listings))
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("rows = %d; want 2", len(ds.Rows))
	}
	if len(ds.Rows[0]) != len(ds.Columns) {
		t.Fatalf("row width = %d; want %d", len(ds.Rows[0]), len(ds.Columns))
	}

	// Columns line up with accessor output.
	for j, col := range ds.Columns {
		switch col {
		case "price":
			if ds.Rows[0][j] != 500000 {
				t.Errorf("price cell = %v; want 500000", ds.Rows[0][j])
			}
		case "house_type":
			if ds.Rows[0][j] != "appartement" {
				t.Errorf("house_type cell = %v; want appartement", ds.Rows[0][j])
			}
		case "term_days":
			if ds.Rows[0][j] != 13 {
				t.Errorf("term_days cell = %v; want 13", ds.Rows[0][j])
			}
		}
	}
}

func TestAssemblePreservesInputOrder(t *testing.T) {
	a := newTestAssembler(t)

	first := listedHouse()
	second := listedHouse()
	second.URL = models.Present("https://www.funda.nl/koop/utrecht/huis-22222222-dummystraat-2/")
	third := listedHouse()
	third.URL = models.Present("https://www.funda.nl/koop/utrecht/huis-33333333-dummystraat-3/")

	ds, err := a.Assemble([]*models.RawListing{first, second, third}, false, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(ds.Listings) != 3 {
		t.Fatalf("survivors = %d; want 3", len(ds.Listings))
	}

	want := []int{12345678, 22222222, 33333333}
	for i, l := range ds.Listings {
		if l.HouseID != want[i] {
			t.Errorf("listing %d has house id %d; want %d", i, l.HouseID, want[i])
		}
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	a := newTestAssembler(t)
	ds, err := a.Assemble(nil, false, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if ds.InputCount != 0 || len(ds.Listings) != 0 || len(ds.Rows) != 0 {
		t.Error("expected empty dataset for empty input")
	}
}
