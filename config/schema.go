package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

// Selectors is the CSS selector table for one funda detail page. Every field
// must be set: a blank selector means the schema file is broken, not that the
// field is optional.
type Selectors struct {
	Price          string `yaml:"price"`
	Address        string `yaml:"address"`
	Descrip        string `yaml:"descrip"`
	ListedSince    string `yaml:"listed_since"`
	ZipCode        string `yaml:"zip_code"`
	Size           string `yaml:"size"`
	YearBuilt      string `yaml:"year_built"`
	LivingArea     string `yaml:"living_area"`
	KindOfHouse    string `yaml:"kind_of_house"`
	BuildingType   string `yaml:"building_type"`
	NumOfRooms     string `yaml:"num_of_rooms"`
	NumOfBathrooms string `yaml:"num_of_bathrooms"`
	Layout         string `yaml:"layout"`
	EnergyLabel    string `yaml:"energy_label"`
	Insulation     string `yaml:"insulation"`
	Heating        string `yaml:"heating"`
	Ownership      string `yaml:"ownership"`
	Exteriors      string `yaml:"exteriors"`
	Parking        string `yaml:"parking"`
	Neighborhood   string `yaml:"neighborhood"`
	DateList       string `yaml:"date_list"`
	DateSold       string `yaml:"date_sold"`
	Term           string `yaml:"term"`
	PriceSold      string `yaml:"price_sold"`
	LastAskPrice   string `yaml:"last_ask_price"`
	Volume         string `yaml:"volume"`
	GardenSize     string `yaml:"garden_size"`
	BalconySize    string `yaml:"balcony_size"`
	Photo          string `yaml:"photo"`
}

// ColumnSchema is the column-selection policy: the base column list plus the
// additions that only exist for historical (sold/rented) batches.
type ColumnSchema struct {
	SellingData []string `yaml:"selling_data"`
	SoldData    []string `yaml:"sold_data"`
}

// Schema is the versioned scraping schema embedded in the binary.
type Schema struct {
	BaseURL   string       `yaml:"base_url"`
	Selectors Selectors    `yaml:"css_selector"`
	KeepCols  ColumnSchema `yaml:"keep_cols"`
}

// LoadSchema parses and validates the embedded schema file. A broken schema
// is a programming defect, so validation failures are returned as errors
// rather than patched over per row.
func LoadSchema() (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(schemaYAML, &s); err != nil {
		return nil, fmt.Errorf("schema: parse embedded yaml: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &s, nil
}

func (s *Schema) validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is empty")
	}
	for name, sel := range map[string]string{
		"price":            s.Selectors.Price,
		"address":          s.Selectors.Address,
		"descrip":          s.Selectors.Descrip,
		"listed_since":     s.Selectors.ListedSince,
		"zip_code":         s.Selectors.ZipCode,
		"size":             s.Selectors.Size,
		"year_built":       s.Selectors.YearBuilt,
		"living_area":      s.Selectors.LivingArea,
		"kind_of_house":    s.Selectors.KindOfHouse,
		"building_type":    s.Selectors.BuildingType,
		"num_of_rooms":     s.Selectors.NumOfRooms,
		"num_of_bathrooms": s.Selectors.NumOfBathrooms,
		"layout":           s.Selectors.Layout,
		"energy_label":     s.Selectors.EnergyLabel,
		"insulation":       s.Selectors.Insulation,
		"heating":          s.Selectors.Heating,
		"ownership":        s.Selectors.Ownership,
		"exteriors":        s.Selectors.Exteriors,
		"parking":          s.Selectors.Parking,
		"neighborhood":     s.Selectors.Neighborhood,
		"date_list":        s.Selectors.DateList,
		"date_sold":        s.Selectors.DateSold,
		"term":             s.Selectors.Term,
		"price_sold":       s.Selectors.PriceSold,
		"last_ask_price":   s.Selectors.LastAskPrice,
		"volume":           s.Selectors.Volume,
		"garden_size":      s.Selectors.GardenSize,
		"balcony_size":     s.Selectors.BalconySize,
		"photo":            s.Selectors.Photo,
	} {
		if sel == "" {
			return fmt.Errorf("css_selector.%s is empty", name)
		}
	}
	if len(s.KeepCols.SellingData) == 0 {
		return fmt.Errorf("keep_cols.selling_data is empty")
	}
	if len(s.KeepCols.SoldData) == 0 {
		return fmt.Errorf("keep_cols.sold_data is empty")
	}
	return nil
}
