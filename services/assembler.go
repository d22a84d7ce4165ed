package services

import (
	"fmt"

	"funda-scraper/config"
	"funda-scraper/models"
	"funda-scraper/utils"
)

// columnAccessors maps every configurable output column to its typed value.
// The assembler constructor validates the configured schema against this
// table, so a column name with no accessor fails at startup instead of
// surfacing as a surprise mid-batch.
var columnAccessors = map[string]func(l *models.Listing) any{
	"house_id":      func(l *models.Listing) any { return l.HouseID },
	"house_type":    func(l *models.Listing) any { return l.HouseType },
	"url":           func(l *models.Listing) any { return l.URL },
	"address":       func(l *models.Listing) any { return l.Address },
	"city":          func(l *models.Listing) any { return l.City },
	"zip":           func(l *models.Listing) any { return l.Zip },
	"price":         func(l *models.Listing) any { return l.Price },
	"price_m2":      func(l *models.Listing) any { return l.PricePerM2 },
	"price_m2_land": func(l *models.Listing) any { return l.PricePerM2Land },
	"living_area":   func(l *models.Listing) any { return l.LivingArea },
	"property_area": func(l *models.Listing) any { return l.PropertyArea },
	"volume":        func(l *models.Listing) any { return l.Volume },
	"garden_size":   func(l *models.Listing) any { return l.GardenSize },
	"garden_width":  func(l *models.Listing) any { return l.GardenWidth },
	"garden_depth":  func(l *models.Listing) any { return l.GardenDepth },
	"balcony_size":  func(l *models.Listing) any { return l.BalconySize },
	"kind_of_house": func(l *models.Listing) any { return l.KindOfHouse },
	"building_type": func(l *models.Listing) any { return l.BuildingType },
	"room":          func(l *models.Listing) any { return l.Rooms },
	"bedroom":       func(l *models.Listing) any { return l.Bedrooms },
	"bathroom":      func(l *models.Listing) any { return l.Bathrooms },
	"toilet":        func(l *models.Listing) any { return l.Toilets },
	"energy_label":  func(l *models.Listing) any { return l.EnergyLabel },
	"has_balcony":   func(l *models.Listing) any { return l.HasBalcony },
	"has_garden":    func(l *models.Listing) any { return l.HasGarden },
	"year_built":    func(l *models.Listing) any { return l.YearBuilt },
	"house_age":     func(l *models.Listing) any { return l.HouseAge },
	"date_list":     func(l *models.Listing) any { return l.DateList },
	"ym_list":       func(l *models.Listing) any { return l.YMList },
	"year_list":     func(l *models.Listing) any { return l.YearList },
	"date_sold":     func(l *models.Listing) any { return l.DateSold },
	"ym_sold":       func(l *models.Listing) any { return l.YMSold },
	"year_sold":     func(l *models.Listing) any { return l.YearSold },
	"term_days":     func(l *models.Listing) any { return l.TermDays },
}

// Assembler runs the normalizer across a batch and projects the survivors
// onto the configured column set.
type Assembler struct {
	logger     *utils.Logger
	normalizer *Normalizer
	schema     config.ColumnSchema
	workers    int
}

// NewAssembler validates the column schema and returns a ready Assembler.
func NewAssembler(logger *utils.Logger, normalizer *Normalizer, schema config.ColumnSchema, workers int) (*Assembler, error) {
	for _, col := range append(append([]string{}, schema.SellingData...), schema.SoldData...) {
		if _, ok := columnAccessors[col]; !ok {
			return nil, fmt.Errorf("assembler: column %q in schema has no accessor", col)
		}
	}
	if workers < 1 {
		workers = 1
	}
	return &Assembler{
		logger:     logger,
		normalizer: normalizer,
		schema:     schema,
		workers:    workers,
	}, nil
}

// Columns returns the ordered output column list for a batch kind. The
// historical list is always the base list plus the sold-only additions, so
// non-historical columns stay a subset of historical ones.
func (a *Assembler) Columns(historical bool, extraCols []string) ([]string, error) {
	cols := append([]string{}, a.schema.SellingData...)
	if historical {
		cols = append(cols, a.schema.SoldData...)
	}
	for _, col := range extraCols {
		if _, ok := columnAccessors[col]; !ok {
			return nil, fmt.Errorf("assembler: extra column %q has no accessor", col)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// Assemble normalizes every raw record and returns the projected table.
// Records are independent, so the pass runs on a worker pool; results keep
// the input order via index addressing.
func (a *Assembler) Assemble(raws []*models.RawListing, historical bool, extraCols []string) (*models.Dataset, error) {
	cols, err := a.Columns(historical, extraCols)
	if err != nil {
		return nil, err
	}

	slots := make([]*models.Listing, len(raws))
	pool := utils.NewWorkerPool(a.workers, 0)
	for i, raw := range raws {
		i, raw := i, raw
		pool.Submit(func() {
			if l, ok := a.normalizer.Normalize(raw, historical); ok {
				slots[i] = l
			}
		})
	}
	pool.Wait()

	listings := make([]*models.Listing, 0, len(raws))
	for _, l := range slots {
		if l != nil {
			listings = append(listings, l)
		}
	}

	rows := make([][]any, len(listings))
	for i, l := range listings {
		row := make([]any, len(cols))
		for j, col := range cols {
			row[j] = columnAccessors[col](l)
		}
		rows[i] = row
	}

	dropped := len(raws) - len(listings)
	a.logger.Info("[assembler] Normalized %d → %d listings (dropped %d)",
		len(raws), len(listings), dropped)

	return &models.Dataset{
		Columns:    cols,
		Rows:       rows,
		Listings:   listings,
		InputCount: len(raws),
		Dropped:    dropped,
	}, nil
}
