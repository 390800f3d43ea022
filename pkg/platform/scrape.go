package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Scrape extracts a ranked list from an HTML page with a CSS selector.
// Each matched element contributes its text as the title and its href
// (or the href of its first anchor child) as the URL.
type Scrape struct {
	client   *http.Client
	id       string
	url      string
	selector string
	limit    int
}

// NewScrape creates an HTML-scraping platform.
func NewScrape(id, pageURL, selector string, limit int) *Scrape {
	if limit <= 0 {
		limit = 50
	}
	return &Scrape{
		client:   &http.Client{Timeout: 30 * time.Second},
		id:       id,
		url:      pageURL,
		selector: selector,
		limit:    limit,
	}
}

func (s *Scrape) ID() string { return s.id }

func (s *Scrape) Fetch(ctx context.Context) ([]RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create scrape request %s: %w", s.id, err)
	}
	req.Header.Set("User-Agent", "hotradar/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", s.id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: status %d", s.id, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", s.id, err)
	}

	base, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parse base url %s: %w", s.id, err)
	}

	now := time.Now().UTC()
	var items []RawItem
	doc.Find(s.selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(items) >= s.limit {
			return false
		}
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			return true
		}
		items = append(items, RawItem{
			PlatformID: s.id,
			Title:      title,
			URL:        resolveHref(base, sel),
			Rank:       len(items) + 1,
			FetchedAt:  now,
		})
		return true
	})
	return items, nil
}

// resolveHref finds the element's link, looking at the element itself
// first and then its first anchor child, resolved against the page URL.
func resolveHref(base *url.URL, sel *goquery.Selection) string {
	href, ok := sel.Attr("href")
	if !ok {
		href, ok = sel.Find("a").First().Attr("href")
	}
	if !ok || href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
