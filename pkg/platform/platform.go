package platform

import (
	"context"
	"time"
)

// RawItem is one entry of a platform's trending list, as fetched,
// before any normalization.
type RawItem struct {
	PlatformID string    `json:"platform_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Rank       int       `json:"rank"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Platform is the interface every trending-list fetcher implements.
type Platform interface {
	ID() string
	Fetch(ctx context.Context) ([]RawItem, error)
}
