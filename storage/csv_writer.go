package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"funda-scraper/models"
)

// rawHeader is the fixed column order for raw CSV dumps, matching the raw
// field schema.
var rawHeader = []string{
	"url", "price", "address", "descrip", "listed_since", "zip_code", "size",
	"year_built", "living_area", "kind_of_house", "building_type",
	"num_of_rooms", "num_of_bathrooms", "layout", "energy_label", "insulation",
	"heating", "ownership", "exteriors", "parking", "neighborhood", "volume",
	"garden_size", "balcony_size", "date_list", "date_sold", "term",
	"price_sold", "last_ask_price", "city", "photo", "scraped_at",
}

// CSVWriter writes raw or cleaned listings to a CSV file. It is safe for
// concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// WriteRaw writes the raw listings with the fixed raw header.
func (c *CSVWriter) WriteRaw(listings []*models.RawListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(rawHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.URL.Text(), l.Price.Text(), l.Address.Text(), l.Description.Text(),
			l.ListedSince.Text(), l.ZipCode.Text(), l.Size.Text(),
			l.YearBuilt.Text(), l.LivingArea.Text(), l.KindOfHouse.Text(),
			l.BuildingType.Text(), l.NumOfRooms.Text(), l.NumOfBathrooms.Text(),
			l.Layout.Text(), l.EnergyLabel.Text(), l.Insulation.Text(),
			l.Heating.Text(), l.Ownership.Text(), l.Exteriors.Text(),
			l.Parking.Text(), l.Neighborhood.Text(), l.Volume.Text(),
			l.GardenSize.Text(), l.BalconySize.Text(), l.DateList.Text(),
			l.DateSold.Text(), l.Term.Text(), l.PriceSold.Text(),
			l.LastAskPrice.Text(), l.City.Text(), l.Photos.Text(),
			l.ScrapedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// WriteDataset writes the projected table: the dataset's own column list as
// header, then one formatted row per surviving listing.
func (c *CSVWriter) WriteDataset(ds *models.Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(ds.Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, row := range ds.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}
