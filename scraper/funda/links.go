package funda

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// itemList is the JSON-LD payload funda embeds in every search-results page.
type itemList struct {
	ItemListElement []struct {
		URL string `json:"url"`
	} `json:"itemListElement"`
}

// ExtractListingLinks pulls the listing URLs out of the JSON-LD ItemList
// script on one search-results page.
func ExtractListingLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("links: parse page: %w", err)
	}

	script := doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		return nil, fmt.Errorf("links: no JSON-LD script on page")
	}

	var payload itemList
	if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil {
		return nil, fmt.Errorf("links: decode item list: %w", err)
	}

	links := make([]string, 0, len(payload.ItemListElement))
	for _, item := range payload.ItemListElement {
		if item.URL != "" {
			links = append(links, item.URL)
		}
	}
	return links, nil
}

// FixLink rewrites a search-result link to the legacy detail-page form the
// selector schema targets. Search results point at
// /detail/<koop|huur>/<city>/<address>/<id>/ while the extractable page lives
// at /<koop|huur>/<city>/<type>-<id>-<address>/?old_ldp=true.
func FixLink(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("links: parse %q: %w", link, err)
	}

	segs := strings.Split(strings.TrimSuffix(u.Path, "/"), "/")
	// ["", "detail", "koop", "<city>", "<address>", "<id>"]
	if len(segs) < 6 {
		return "", fmt.Errorf("links: unexpected path %q", u.Path)
	}

	id := segs[5]
	addr := strings.Split(segs[4], "-")
	segment := append([]string{addr[0], id}, addr[1:]...)

	fixed := url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     "/" + segs[2] + "/" + segs[3] + "/" + strings.Join(segment, "-") + "/",
		RawQuery: "old_ldp=true",
	}
	return fixed.String(), nil
}
