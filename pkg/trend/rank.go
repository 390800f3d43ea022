package trend

import "sort"

// Rank sorts scored clusters into the final output order and truncates
// to topN (topN <= 0 keeps everything). The order is total: score
// descending, then earlier first-seen, then smaller title, then smaller
// key, so identical input always yields identical output.
func Rank(items []RankedItem, topN int) []RankedItem {
	ranked := make([]RankedItem, len(items))
	copy(ranked, items)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Scores.Final != b.Scores.Final {
			return a.Scores.Final > b.Scores.Final
		}
		if !a.Cluster.FirstSeen.Equal(b.Cluster.FirstSeen) {
			return a.Cluster.FirstSeen.Before(b.Cluster.FirstSeen)
		}
		if a.Cluster.Title != b.Cluster.Title {
			return a.Cluster.Title < b.Cluster.Title
		}
		return a.Cluster.Key < b.Cluster.Key
	})

	for i := range ranked {
		ranked[i].Position = i + 1
	}

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
