package funda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"funda-scraper/utils"
)

// The challenge page funda serves before a session passes the bot check.
const challengeMarker = "Je bent bijna op de pagina die je zoekt"

// sessionCookie is the on-disk representation of one browser cookie.
type sessionCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// Session acquires and stores the cookies funda hands out after its
// consent/captcha gate. Bootstrap runs a visible browser because the captcha
// needs a human; later runs reuse the saved cookie file.
type Session struct {
	cookiePath string
	chromeBin  string
	logger     *utils.Logger
}

func NewSession(cookiePath, chromeBin string, logger *utils.Logger) *Session {
	return &Session{cookiePath: cookiePath, chromeBin: chromeBin, logger: logger}
}

// Bootstrap opens the search page in a headed browser, accepts the cookie
// banner, waits until the operator has cleared the captcha, then writes the
// session cookies to the cookie file.
func (s *Session) Bootstrap(ctx context.Context, startURL string) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if s.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	s.logger.Info("[session] Opening %s — solve the captcha if one appears", startURL)
	if err := chromedp.Run(browserCtx, chromedp.Navigate(startURL)); err != nil {
		return fmt.Errorf("session: navigate: %w", err)
	}

	// Best effort: the consent banner is not always shown.
	clickCtx, cancelClick := context.WithTimeout(browserCtx, 5*time.Second)
	if err := chromedp.Run(clickCtx,
		chromedp.Click("#didomi-notice-agree-button", chromedp.ByID),
	); err != nil {
		s.logger.Debug("[session] No consent banner clicked: %v", err)
	}
	cancelClick()

	if err := s.waitForChallenge(browserCtx); err != nil {
		return err
	}

	s.logger.Info("[session] Challenge cleared — exporting cookies")
	var cookies []sessionCookie
	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		cs, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cs {
			cookies = append(cookies, sessionCookie{
				Name:   c.Name,
				Value:  c.Value,
				Domain: c.Domain,
				Path:   c.Path,
			})
		}
		return nil
	})); err != nil {
		return fmt.Errorf("session: export cookies: %w", err)
	}

	return s.save(cookies)
}

// waitForChallenge polls the page until the bot-check interstitial is gone.
func (s *Session) waitForChallenge(ctx context.Context) error {
	for {
		var html string
		if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
			return fmt.Errorf("session: read page: %w", err)
		}
		if !strings.Contains(html, challengeMarker) {
			return nil
		}
		s.logger.Info("[session] Waiting for the captcha to be solved...")

		select {
		case <-ctx.Done():
			return fmt.Errorf("session: gave up waiting for captcha: %w", ctx.Err())
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *Session) save(cookies []sessionCookie) error {
	if err := os.MkdirAll(filepath.Dir(s.cookiePath), 0755); err != nil {
		return fmt.Errorf("session: create cookie dir: %w", err)
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode cookies: %w", err)
	}
	if err := os.WriteFile(s.cookiePath, data, 0600); err != nil {
		return fmt.Errorf("session: write %s: %w", s.cookiePath, err)
	}
	s.logger.Info("[session] Saved %d cookies to %s", len(cookies), s.cookiePath)
	return nil
}

// LoadCookies reads a previously bootstrapped cookie file. A missing file is
// not an error; the fetcher just starts without a session.
func LoadCookies(path string) ([]*http.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}

	var stored []sessionCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", path, err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	return cookies, nil
}
