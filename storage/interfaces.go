package storage

import "funda-scraper/models"

// DatasetWriter persists the cleaned, projected table.
type DatasetWriter interface {
	WriteDataset(ds *models.Dataset) error
	Close() error
}

// RawWriter persists unprocessed scraped records.
type RawWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}
