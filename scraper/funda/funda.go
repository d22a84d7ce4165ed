package funda

import (
	"fmt"
	"sync"
	"time"

	"funda-scraper/config"
	"funda-scraper/models"
	"funda-scraper/utils"
)

// Scraper drives one search: paginated link discovery, then per-listing
// detail fetching and field extraction.
type Scraper struct {
	cfg       *config.Config
	schema    *config.Schema
	logger    *utils.Logger
	fetcher   *Fetcher
	extractor *Extractor
	pool      *utils.WorkerPool
	retry     *utils.RetryConfig
	links     *utils.LinkSet

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use funda Scraper. Session cookies are loaded from
// the configured cookie file when present.
func New(cfg *config.Config, schema *config.Schema, logger *utils.Logger) (*Scraper, error) {
	cookies, err := LoadCookies(cfg.CookiePath)
	if err != nil {
		return nil, err
	}

	fetcher, err := NewFetcher(schema.BaseURL, cookies, cfg.MaxConcurrency, cfg.RateLimitMs, logger)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:       cfg,
		schema:    schema,
		logger:    logger,
		fetcher:   fetcher,
		extractor: NewExtractor(schema.Selectors, logger),
		pool:      utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		links:    utils.NewLinkSet(),
		listings: make([]*models.RawListing, 0),
	}, nil
}

// Run executes the query and returns the raw listings in discovery order.
func (s *Scraper) Run(q *Query) ([]*models.RawListing, error) {
	toBuy, err := q.ToBuy()
	if err != nil {
		return nil, err
	}

	mainURL, err := q.MainURL(s.schema.BaseURL)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[funda] Main URL: %s", mainURL)

	if err := s.discoverLinks(mainURL, q); err != nil {
		return nil, err
	}

	detailURLs := s.fixLinks()
	if len(detailURLs) == 0 {
		return nil, fmt.Errorf("funda: no listing links discovered")
	}
	s.logger.Info("[funda] Discovered %d unique listings", len(detailURLs))

	s.scrapeDetails(detailURLs, toBuy, q.FindPast)

	s.logger.Info("[funda] Scrape complete — total raw listings: %d", len(s.listings))
	return s.listings, nil
}

// discoverLinks walks the search-result pages and records listing links in
// first-seen order.
func (s *Scraper) discoverLinks(mainURL string, q *Query) error {
	pageStart := q.PageStart
	if pageStart < 1 {
		pageStart = 1
	}
	nPages := q.NPages
	if nPages < 1 {
		nPages = 1
	}

	for page := pageStart; page < pageStart+nPages; page++ {
		pageURL := PageURL(mainURL, page)

		var html string
		err := s.retry.Do(fmt.Sprintf("list page %d", page), func() error {
			var ferr error
			html, ferr = s.fetcher.Get(pageURL)
			return ferr
		})
		if err != nil {
			s.logger.Error("[funda] Page %d failed: %v", page, err)
			break
		}

		links, err := ExtractListingLinks(html)
		if err != nil {
			s.logger.Error("[funda] Page %d had no listing links: %v", page, err)
			break
		}
		if len(links) == 0 {
			s.logger.Warn("[funda] Page %d returned 0 listings — stopping", page)
			break
		}

		added := 0
		for _, link := range links {
			if s.links.Add(link) {
				added++
			}
		}
		s.logger.Info("[funda] Page %d done — %d new links (%d total)", page, added, s.links.Size())
	}

	return nil
}

func (s *Scraper) fixLinks() []string {
	fixed := make([]string, 0, s.links.Size())
	for _, link := range s.links.Links() {
		detailURL, err := FixLink(link)
		if err != nil {
			s.logger.Warn("[funda] Skipping malformed link: %v", err)
			continue
		}
		fixed = append(fixed, detailURL)
	}
	return fixed
}

// scrapeDetails fetches and extracts every detail page on the worker pool.
// Failed pages are logged and skipped; one broken listing never aborts the
// batch.
func (s *Scraper) scrapeDetails(urls []string, toBuy, findPast bool) {
	for _, detailURL := range urls {
		detailURL := detailURL
		s.pool.Submit(func() {
			var html string
			err := s.retry.Do("detail page", func() error {
				var ferr error
				html, ferr = s.fetcher.Get(detailURL)
				return ferr
			})
			if err != nil {
				s.logger.Error("[funda] %v", err)
				return
			}

			raw, err := s.extractor.Extract(html, toBuy, findPast)
			if err != nil {
				s.logger.Warn("[funda] Extraction failed for %s: %v", detailURL, err)
				return
			}

			s.mu.Lock()
			s.listings = append(s.listings, raw)
			s.mu.Unlock()
		})
	}
	s.pool.Wait()
}
