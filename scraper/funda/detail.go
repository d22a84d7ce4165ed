package funda

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"funda-scraper/config"
	"funda-scraper/models"
	"funda-scraper/services"
	"funda-scraper/utils"
)

// Extractor maps one detail page onto a RawListing via the versioned CSS
// selector table. It produces raw strings only; all typing happens in the
// normalization layer.
type Extractor struct {
	selectors config.Selectors
	logger    *utils.Logger
}

func NewExtractor(selectors config.Selectors, logger *utils.Logger) *Extractor {
	return &Extractor{selectors: selectors, logger: logger}
}

// Extract builds the raw record for one detail page. toBuy and findPast pick
// the listed-since selector variant, matching how the page lays the field out
// per listing kind.
func (e *Extractor) Extract(html string, toBuy, findPast bool) (*models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("extract: parse page: %w", err)
	}

	link, err := canonicalURL(doc)
	if err != nil {
		return nil, err
	}

	raw := &models.RawListing{
		URL:            models.Present(link),
		Price:          e.text(doc, e.selectors.Price),
		Address:        e.text(doc, e.selectors.Address),
		Description:    e.text(doc, e.selectors.Descrip),
		ListedSince:    e.text(doc, e.listedSinceSelector(toBuy, findPast)),
		ZipCode:        e.text(doc, e.selectors.ZipCode),
		Size:           e.text(doc, e.selectors.Size),
		YearBuilt:      e.text(doc, e.selectors.YearBuilt),
		LivingArea:     e.text(doc, e.selectors.LivingArea),
		KindOfHouse:    e.text(doc, e.selectors.KindOfHouse),
		BuildingType:   e.text(doc, e.selectors.BuildingType),
		NumOfRooms:     e.text(doc, e.selectors.NumOfRooms),
		NumOfBathrooms: e.text(doc, e.selectors.NumOfBathrooms),
		Layout:         e.text(doc, e.selectors.Layout),
		EnergyLabel:    e.text(doc, e.selectors.EnergyLabel),
		Insulation:     e.text(doc, e.selectors.Insulation),
		Heating:        e.text(doc, e.selectors.Heating),
		Ownership:      e.text(doc, e.selectors.Ownership),
		Exteriors:      e.text(doc, e.selectors.Exteriors),
		Parking:        e.text(doc, e.selectors.Parking),
		Neighborhood:   e.text(doc, e.selectors.Neighborhood),
		Volume:         e.text(doc, e.selectors.Volume),
		GardenSize:     e.text(doc, e.selectors.GardenSize),
		BalconySize:    e.text(doc, e.selectors.BalconySize),
		DateList:       e.text(doc, e.selectors.DateList),
		DateSold:       e.text(doc, e.selectors.DateSold),
		Term:           e.text(doc, e.selectors.Term),
		PriceSold:      e.text(doc, e.selectors.PriceSold),
		LastAskPrice:   e.text(doc, e.selectors.LastAskPrice),
		City:           models.Present(cityFromURL(link)),
		Photos:         e.photos(doc),
		ScrapedAt:      time.Now(),
	}

	// The listed-since field drifts between sibling positions depending on
	// which optional rows the listing shows, so probe the neighbours until
	// one yields a parseable date.
	if _, ok := services.ParseDate(raw.ListedSince, time.Now()); !ok {
		raw.ListedSince = e.probeListedSince(doc)
	}

	return raw, nil
}

// text runs one selector and returns the first match as a RawValue.
func (e *Extractor) text(doc *goquery.Document, selector string) models.RawValue {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return models.Absent()
	}
	return models.Present(sel.First().Text())
}

func (e *Extractor) listedSinceSelector(toBuy, findPast bool) string {
	if toBuy {
		if findPast {
			return e.selectors.DateList
		}
		return e.selectors.ListedSince
	}
	if findPast {
		return ".fd-align-items-center:nth-child(9) span"
	}
	return ".fd-align-items-center:nth-child(7) span"
}

func (e *Extractor) probeListedSince(doc *goquery.Document) models.RawValue {
	now := time.Now()
	for i := 6; i <= 15; i++ {
		candidate := e.text(doc, fmt.Sprintf(".fd-align-items-center:nth-child(%d) span", i))
		if _, ok := services.ParseDate(candidate, now); ok {
			return candidate
		}
	}
	return models.Absent()
}

func (e *Extractor) photos(doc *goquery.Document) models.RawValue {
	var srcs []string
	doc.Find(e.selectors.Photo).Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("data-lazy-srcset"); ok {
			srcs = append(srcs, src)
		}
	})
	return models.Present(strings.Join(srcs, ", "))
}

// canonicalURL reads the listing's own URL from the JSON-LD block on the
// detail page; the house id and type are later derived from it.
func canonicalURL(doc *goquery.Document) (string, error) {
	script := doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		return "", fmt.Errorf("extract: no JSON-LD script on detail page")
	}
	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil {
		return "", fmt.Errorf("extract: decode detail JSON-LD: %w", err)
	}
	if payload.URL == "" {
		return "", fmt.Errorf("extract: detail JSON-LD has no url")
	}
	return payload.URL, nil
}

// cityFromURL pulls the city segment out of a listing URL
// (https://www.funda.nl/<koop|huur>/<city>/...).
func cityFromURL(link string) string {
	segs := strings.Split(link, "/")
	if len(segs) > 4 {
		return segs[4]
	}
	return ""
}
