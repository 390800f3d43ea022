package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultNewsNowBase = "https://newsnow.busiyi.world"

// NewsNow fetches a hot list from a newsnow-compatible aggregation API.
// One instance covers one platform id (weibo, zhihu, baidu, ...).
type NewsNow struct {
	client  *http.Client
	baseURL string
	id      string
	limit   int
}

// NewNewsNow creates a fetcher for the given platform id. baseURL may
// be empty to use the public instance.
func NewNewsNow(baseURL, id string, limit int) *NewsNow {
	if baseURL == "" {
		baseURL = defaultNewsNowBase
	}
	if limit <= 0 {
		limit = 50
	}
	return &NewsNow{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		id:      id,
		limit:   limit,
	}
}

func (n *NewsNow) ID() string { return n.id }

type newsNowResponse struct {
	Status string `json:"status"`
	Items  []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"items"`
}

func (n *NewsNow) Fetch(ctx context.Context) ([]RawItem, error) {
	u := fmt.Sprintf("%s/api/s?id=%s&latest", n.baseURL, url.QueryEscape(n.id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request %s: %w", n.id, err)
	}
	req.Header.Set("User-Agent", "hotradar/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", n.id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", n.id, resp.StatusCode)
	}

	var body newsNowResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", n.id, err)
	}

	now := time.Now().UTC()
	items := make([]RawItem, 0, len(body.Items))
	for i, it := range body.Items {
		if i >= n.limit {
			break
		}
		items = append(items, RawItem{
			PlatformID: n.id,
			Title:      it.Title,
			URL:        it.URL,
			Rank:       i + 1,
			FetchedAt:  now,
		})
	}
	return items, nil
}
