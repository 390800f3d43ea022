package trend

import "time"

// NormalizedItem is a platform entry after title canonicalization.
// Key is the lowercase, punctuation-stripped form used for matching.
type NormalizedItem struct {
	PlatformID string
	Title      string
	Key        string
	Rank       int
	URL        string
	FetchedAt  time.Time
}

// Cluster groups items from different platforms that refer to the same topic.
type Cluster struct {
	Key       string
	Title     string
	Members   []NormalizedItem
	Platforms []string
	FirstSeen time.Time
}

// Scores holds the per-component and composite score for a cluster.
type Scores struct {
	Rank      float64 `json:"rank_score"`
	Frequency float64 `json:"frequency_score"`
	Keyword   float64 `json:"keyword_score"`
	Final     float64 `json:"final_score"`
}

// RankedItem is one row of the final ranked output.
type RankedItem struct {
	Cluster  Cluster
	Scores   Scores
	Position int
}

// MemberKeys returns the distinct normalization keys among the cluster's members.
func (c Cluster) MemberKeys() []string {
	seen := make(map[string]bool, len(c.Members))
	var keys []string
	for _, m := range c.Members {
		if !seen[m.Key] {
			seen[m.Key] = true
			keys = append(keys, m.Key)
		}
	}
	return keys
}
