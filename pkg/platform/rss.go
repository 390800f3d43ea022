package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSS treats an RSS/Atom feed as a ranked list: the feed order is the
// rank position.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	id     string
	url    string
	limit  int
}

// NewRSS creates a feed-backed platform.
func NewRSS(id, feedURL string, limit int) *RSS {
	if limit <= 0 {
		limit = 50
	}
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		id:     id,
		url:    feedURL,
		limit:  limit,
	}
}

func (r *RSS) ID() string { return r.id }

func (r *RSS) Fetch(ctx context.Context) ([]RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", r.id, err)
	}
	req.Header.Set("User-Agent", "hotradar/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", r.id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s: status %d", r.id, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", r.id, err)
	}

	now := time.Now().UTC()
	items := make([]RawItem, 0, len(parsed.Items))
	for i, it := range parsed.Items {
		if i >= r.limit {
			break
		}
		items = append(items, RawItem{
			PlatformID: r.id,
			Title:      it.Title,
			URL:        it.Link,
			Rank:       i + 1,
			FetchedAt:  now,
		})
	}
	return items, nil
}
