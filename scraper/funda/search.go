package funda

import (
	"fmt"
	"strings"
)

// Query describes one funda search. The zero values mean "not set" for the
// optional filters.
type Query struct {
	Area         string
	WantTo       string // buy/koop or rent/huur
	PageStart    int
	NPages       int
	FindPast     bool
	MinPrice     int
	MaxPrice     int
	DaysSince    int
	PropertyType string // comma-separated funda object types
	MinFloorArea string
	MaxFloorArea string
	Sort         string
}

var validDaysSince = map[int]struct{}{1: {}, 3: {}, 5: {}, 10: {}, 30: {}}

var validSorts = map[string]struct{}{
	"relevancy":       {},
	"date_down":       {},
	"date_up":         {},
	"price_up":        {},
	"price_down":      {},
	"floor_area_down": {},
	"plot_area_down":  {},
	"city_up":         {},
	"postal_code_up":  {},
}

// ToBuy reports whether the search is for buying rather than renting.
func (q *Query) ToBuy() (bool, error) {
	switch strings.ToLower(q.WantTo) {
	case "buy", "koop", "b", "k":
		return true, nil
	case "rent", "huur", "r", "h":
		return false, nil
	default:
		return false, fmt.Errorf("want_to must be 'buy' or 'rent', got %q", q.WantTo)
	}
}

// MainURL builds the search-results URL for the query, mirroring the site's
// quirk of URL-encoded JSON-ish filter values.
func (q *Query) MainURL(baseURL string) (string, error) {
	toBuy, err := q.ToBuy()
	if err != nil {
		return "", err
	}

	kind := "huur"
	if toBuy {
		kind = "koop"
	}

	area := strings.ToLower(strings.ReplaceAll(q.Area, " ", "-"))
	url := fmt.Sprintf("%s/zoeken/%s?selected_area=%%5B%%22%s%%22%%5D", baseURL, kind, area)

	if q.PropertyType != "" {
		types := strings.Split(q.PropertyType, ",")
		quoted := make([]string, len(types))
		for i, t := range types {
			quoted[i] = "%22" + strings.TrimSpace(t) + "%22"
		}
		url += fmt.Sprintf("&object_type=%%5B%s%%5D", strings.Join(quoted, ","))
	}

	if q.FindPast {
		url += `&availability=%5B"unavailable"%5D`
	}

	if q.MinPrice > 0 || q.MaxPrice > 0 {
		url += fmt.Sprintf("&price=%%22%s-%s%%22", nonZero(q.MinPrice), nonZero(q.MaxPrice))
	}

	if q.DaysSince > 0 {
		if q.FindPast {
			return "", fmt.Errorf("days_since cannot be combined with find_past")
		}
		if _, ok := validDaysSince[q.DaysSince]; !ok {
			return "", fmt.Errorf("days_since must be 1, 3, 5, 10 or 30, got %d", q.DaysSince)
		}
		url += fmt.Sprintf("&publication_date=%d", q.DaysSince)
	}

	if q.MinFloorArea != "" || q.MaxFloorArea != "" {
		url += fmt.Sprintf("&floor_area=%%22%s-%s%%22", q.MinFloorArea, q.MaxFloorArea)
	}

	if q.Sort != "" {
		if _, ok := validSorts[q.Sort]; !ok {
			return "", fmt.Errorf("unknown sort %q", q.Sort)
		}
		url += fmt.Sprintf("&sort=%%22%s%%22", q.Sort)
	}

	return url, nil
}

// PageURL appends the result-page index to the main search URL.
func PageURL(mainURL string, page int) string {
	return fmt.Sprintf("%s&search_result=%d", mainURL, page)
}

func nonZero(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}
