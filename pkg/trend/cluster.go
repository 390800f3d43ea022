package trend

import (
	"sort"
	"strings"
)

const defaultSimilarityThreshold = 0.6

// Deduper groups normalized items that refer to the same real-world
// topic into clusters, merging across platforms.
type Deduper struct {
	threshold float64
	priority  map[string]int
}

// NewDeduper creates a deduplicator. threshold is the token
// intersection-over-union above which two keys are considered the same
// topic; priority maps platform ID to its representative-title priority
// (higher wins, unlisted platforms are 0).
func NewDeduper(threshold float64, priority map[string]int) *Deduper {
	if threshold <= 0 || threshold > 1 {
		threshold = defaultSimilarityThreshold
	}
	return &Deduper{threshold: threshold, priority: priority}
}

// Group partitions items into topic clusters for one run.
func (d *Deduper) Group(items []NormalizedItem) []Cluster {
	if len(items) == 0 {
		return nil
	}

	// Exact-key buckets, input order preserved for determinism.
	var keys []string
	buckets := make(map[string][]NormalizedItem)
	for _, it := range items {
		if _, ok := buckets[it.Key]; !ok {
			keys = append(keys, it.Key)
		}
		buckets[it.Key] = append(buckets[it.Key], it)
	}

	// Union-find over bucket indices; merge buckets whose keys overlap
	// enough. Transitive: A~B and B~C puts A, B, C together even when
	// A and C alone are below threshold.
	n := len(keys)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(x, y int) {
		px, py := find(x), find(y)
		if px != py {
			parent[px] = py
		}
	}

	tokens := make([][]string, n)
	for i, k := range keys {
		tokens[i] = strings.Fields(k)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if tokenOverlap(tokens[i], tokens[j]) >= d.threshold {
				union(i, j)
			}
		}
	}

	// Collect merged buckets, keeping first-seen key order.
	groups := make(map[int][]NormalizedItem)
	var roots []int
	for i, k := range keys {
		root := find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], buckets[k]...)
	}

	clusters := make([]Cluster, 0, len(roots))
	for _, root := range roots {
		clusters = append(clusters, d.buildCluster(groups[root]))
	}
	return clusters
}

// buildCluster collapses same-platform duplicates, picks the
// representative title, and derives the platform set.
func (d *Deduper) buildCluster(members []NormalizedItem) Cluster {
	// One membership per (platform, key); keep the lowest rank.
	type memberKey struct{ platform, key string }
	best := make(map[memberKey]NormalizedItem)
	var order []memberKey
	for _, m := range members {
		k := memberKey{m.PlatformID, m.Key}
		cur, ok := best[k]
		if !ok {
			best[k] = m
			order = append(order, k)
			continue
		}
		if m.Rank < cur.Rank {
			best[k] = m
		}
	}

	deduped := make([]NormalizedItem, 0, len(order))
	for _, k := range order {
		deduped = append(deduped, best[k])
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Rank != deduped[j].Rank {
			return deduped[i].Rank < deduped[j].Rank
		}
		return deduped[i].PlatformID < deduped[j].PlatformID
	})

	rep := deduped[0]
	firstSeen := deduped[0].FetchedAt
	platformSet := make(map[string]bool)
	for _, m := range deduped {
		platformSet[m.PlatformID] = true
		if m.FetchedAt.Before(firstSeen) {
			firstSeen = m.FetchedAt
		}
		if d.betterRepresentative(m, rep) {
			rep = m
		}
	}

	platforms := make([]string, 0, len(platformSet))
	for p := range platformSet {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	return Cluster{
		Key:       rep.Key,
		Title:     rep.Title,
		Members:   deduped,
		Platforms: platforms,
		FirstSeen: firstSeen,
	}
}

// betterRepresentative reports whether a should supply the cluster
// title instead of b: higher platform priority, then longer title,
// then lexicographically smaller title.
func (d *Deduper) betterRepresentative(a, b NormalizedItem) bool {
	pa, pb := d.priority[a.PlatformID], d.priority[b.PlatformID]
	if pa != pb {
		return pa > pb
	}
	la, lb := len([]rune(a.Title)), len([]rune(b.Title))
	if la != lb {
		return la > lb
	}
	return a.Title < b.Title
}

// tokenOverlap returns the intersection-over-union of two token sets.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}
	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	unionSize := len(setA) + len(setB) - intersection
	if unionSize == 0 {
		return 0
	}
	return float64(intersection) / float64(unionSize)
}
