package funda

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"funda-scraper/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves funda pages over a rate-limited colly collector, sending
// the session cookies acquired by the bootstrap step.
type Fetcher struct {
	collector *colly.Collector
	logger    *utils.Logger
}

// NewFetcher creates a Fetcher. cookies may be empty when a session file has
// not been bootstrapped yet; funda then serves the captcha page and fetches
// fail loudly rather than silently returning challenge HTML forever.
func NewFetcher(baseURL string, cookies []*http.Cookie, parallelism, rateLimitMs int, logger *utils.Logger) (*Fetcher, error) {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*funda.*",
		Parallelism: parallelism,
		Delay:       time.Duration(rateLimitMs) * time.Millisecond,
	}); err != nil {
		return nil, fmt.Errorf("fetcher: set limit rule: %w", err)
	}

	if len(cookies) > 0 {
		if err := c.SetCookies(baseURL, cookies); err != nil {
			return nil, fmt.Errorf("fetcher: set cookies: %w", err)
		}
		logger.Info("[fetcher] Loaded %d session cookies", len(cookies))
	} else {
		logger.Warn("[fetcher] No session cookies — requests may hit the bot wall")
	}

	return &Fetcher{collector: c, logger: logger}, nil
}

// Get fetches one page and returns its HTML.
func (f *Fetcher) Get(pageURL string) (string, error) {
	var (
		body     string
		fetchErr error
	)

	c := f.collector.Clone()
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetcher: %s: %w", pageURL, err)
	})

	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("fetcher: visit %s: %w", pageURL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	if body == "" {
		return "", fmt.Errorf("fetcher: empty response from %s", pageURL)
	}
	return body, nil
}
