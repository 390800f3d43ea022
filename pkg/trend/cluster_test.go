package trend

import (
	"testing"
	"time"
)

func item(platformID, title, key string, rank int) NormalizedItem {
	return NormalizedItem{
		PlatformID: platformID,
		Title:      title,
		Key:        key,
		Rank:       rank,
		FetchedAt:  time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
}

func TestGroupExactKeyAcrossPlatforms(t *testing.T) {
	t.Parallel()

	d := NewDeduper(0.6, nil)
	clusters := d.Group([]NormalizedItem{
		item("weibo", "GPT-5 发布", "gpt 5 发布", 1),
		item("zhihu", "GPT-5发布", "gpt 5 发布", 4),
	})

	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	c := clusters[0]
	if len(c.Platforms) != 2 {
		t.Errorf("platforms seen = %v, want 2 entries", c.Platforms)
	}
	if len(c.Members) != 2 {
		t.Errorf("members = %d, want 2", len(c.Members))
	}
}

func TestGroupTransitiveMerge(t *testing.T) {
	t.Parallel()

	// sim(A,B) = 3/4, sim(B,C) = 3/4, sim(A,C) = 2/4 < 0.6.
	a := item("p1", "alpha beta gamma", "alpha beta gamma", 1)
	b := item("p2", "alpha beta gamma delta", "alpha beta gamma delta", 2)
	c := item("p3", "beta gamma delta", "beta gamma delta", 3)

	if sim := tokenOverlap([]string{"alpha", "beta", "gamma"}, []string{"beta", "gamma", "delta"}); sim >= 0.6 {
		t.Fatalf("test setup broken: sim(A,C) = %v, want < 0.6", sim)
	}

	d := NewDeduper(0.6, nil)
	clusters := d.Group([]NormalizedItem{a, b, c})
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1 (transitive merge)", len(clusters))
	}
	if len(clusters[0].Members) != 3 {
		t.Errorf("members = %d, want 3", len(clusters[0].Members))
	}
}

func TestGroupBelowThresholdStaysApart(t *testing.T) {
	t.Parallel()

	d := NewDeduper(0.6, nil)
	clusters := d.Group([]NormalizedItem{
		item("weibo", "股市大涨", "股市大涨", 1),
		item("zhihu", "alpha beta", "alpha beta", 2),
	})
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}
}

func TestGroupSamePlatformDuplicateKeepsLowestRank(t *testing.T) {
	t.Parallel()

	d := NewDeduper(0.6, nil)
	clusters := d.Group([]NormalizedItem{
		item("weibo", "同一话题", "同一话题", 7),
		item("weibo", "同一话题", "同一话题", 2),
	})

	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	c := clusters[0]
	if len(c.Members) != 1 {
		t.Fatalf("members = %d, want 1 (same platform deduplicated)", len(c.Members))
	}
	if c.Members[0].Rank != 2 {
		t.Errorf("kept rank = %d, want 2", c.Members[0].Rank)
	}
	if len(c.Platforms) != 1 {
		t.Errorf("platforms = %v, want 1 entry", c.Platforms)
	}
}

func TestRepresentativeTitleSelection(t *testing.T) {
	t.Parallel()

	priority := map[string]int{"weibo": 10, "zhihu": 5}

	t.Run("platform priority wins", func(t *testing.T) {
		d := NewDeduper(0.6, priority)
		clusters := d.Group([]NormalizedItem{
			item("zhihu", "长得多的话题标题版本", "热点话题", 1),
			item("weibo", "热点话题", "热点话题", 3),
		})
		if got := clusters[0].Title; got != "热点话题" {
			t.Errorf("title = %q, want weibo's %q", got, "热点话题")
		}
	})

	t.Run("longer title breaks priority tie", func(t *testing.T) {
		d := NewDeduper(0.6, nil)
		clusters := d.Group([]NormalizedItem{
			item("p1", "短标题", "相同关键", 1),
			item("p2", "明显更长的标题", "相同关键", 2),
		})
		if got := clusters[0].Title; got != "明显更长的标题" {
			t.Errorf("title = %q, want longer title", got)
		}
	})

	t.Run("lexicographic final tie-break", func(t *testing.T) {
		d := NewDeduper(0.6, nil)
		clusters := d.Group([]NormalizedItem{
			item("p1", "bbb", "samekey", 1),
			item("p2", "aaa", "samekey", 2),
		})
		if got := clusters[0].Title; got != "aaa" {
			t.Errorf("title = %q, want %q", got, "aaa")
		}
	})
}

func TestGroupEmptyInput(t *testing.T) {
	t.Parallel()

	d := NewDeduper(0.6, nil)
	if clusters := d.Group(nil); clusters != nil {
		t.Errorf("Group(nil) = %v, want nil", clusters)
	}
}

func TestGroupFirstSeenIsEarliestFetch(t *testing.T) {
	t.Parallel()

	early := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC)

	a := item("p1", "话题", "话题", 1)
	a.FetchedAt = late
	b := item("p2", "话题", "话题", 2)
	b.FetchedAt = early

	d := NewDeduper(0.6, nil)
	clusters := d.Group([]NormalizedItem{a, b})
	if !clusters[0].FirstSeen.Equal(early) {
		t.Errorf("first seen = %v, want %v", clusters[0].FirstSeen, early)
	}
}
