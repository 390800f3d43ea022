package trend

import (
	"errors"
	"testing"
	"time"

	"github.com/elonfeng/hotradar/internal/window"
	"github.com/elonfeng/hotradar/pkg/platform"
)

func testOptions() Options {
	return Options{
		RankWeight:          0.6,
		FrequencyWeight:     0.3,
		KeywordWeight:       0.1,
		WindowDays:          7,
		MaxRank:             50,
		SimilarityThreshold: 0.6,
		MaxTitleLength:      80,
	}
}

func rawItem(platformID, title string, rank int, at time.Time) platform.RawItem {
	return platform.RawItem{
		PlatformID: platformID,
		Title:      title,
		Rank:       rank,
		FetchedAt:  at,
	}
}

func TestRunEmptyInput(t *testing.T) {
	t.Parallel()

	e := NewEngine(window.NewMemStore(), testOptions(), nil)
	res, err := e.Run(nil, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Run(nil) error: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("got %d items, want empty output", len(res.Items))
	}
}

func TestRunSkipsAnomalies(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	e := NewEngine(window.NewMemStore(), testOptions(), nil)
	res, err := e.Run([]platform.RawItem{
		rawItem("", "无平台", 1, now),
		rawItem("weibo", "", 1, now),
		rawItem("weibo", "   ", 2, now),
		rawItem("weibo", "有效话题", 0, now),
		rawItem("weibo", "有效话题", 3, now),
	}, now)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.ItemCount != 1 {
		t.Errorf("valid items = %d, want 1", res.ItemCount)
	}
	if len(res.Items) != 1 {
		t.Fatalf("ranked items = %d, want 1", len(res.Items))
	}
}

func TestRunFrequencyFromHistory(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	ws := window.NewMemStore()
	ws.Seed([]string{"热门话题"}, today.AddDate(0, 0, -1))
	ws.Seed([]string{"热门话题"}, today.AddDate(0, 0, -2))

	e := NewEngine(ws, testOptions(), nil)
	res, err := e.Run([]platform.RawItem{
		rawItem("weibo", "热门话题", 1, today),
	}, today)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	got := res.Items[0].Scores.Frequency
	want := 2.0 / 7.0
	if !almostEqual(got, want) {
		t.Errorf("frequency score = %v, want %v (history only, today excluded)", got, want)
	}

	// Today is recorded after scoring.
	if ws.Count("热门话题") != 3 {
		t.Errorf("window count after run = %d, want 3", ws.Count("热门话题"))
	}
}

func TestRunSameDayRerunDoesNotInflate(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	ws := window.NewMemStore()
	e := NewEngine(ws, testOptions(), nil)

	items := []platform.RawItem{rawItem("weibo", "重复运行", 1, today)}
	for i := 0; i < 3; i++ {
		if _, err := e.Run(items, today); err != nil {
			t.Fatalf("run %d error: %v", i, err)
		}
	}
	if ws.Count("重复运行") != 1 {
		t.Errorf("count after reruns = %d, want 1", ws.Count("重复运行"))
	}
}

func TestRunFirstSeenFromWindowHistory(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	ws := window.NewMemStore()
	ws.Seed([]string{"旧话题"}, today.AddDate(0, 0, -3))

	e := NewEngine(ws, testOptions(), nil)
	res, err := e.Run([]platform.RawItem{
		rawItem("weibo", "旧话题", 1, today),
	}, today)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	if got := res.Items[0].Cluster.FirstSeen; !got.Equal(want) {
		t.Errorf("first seen = %v, want earliest window date %v", got, want)
	}
}

// failingStore wraps a MemStore and fails Persist.
type failingStore struct {
	*window.MemStore
}

func (f failingStore) Persist() error { return errors.New("disk full") }

func TestRunDegradedOnPersistFailure(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	e := NewEngine(failingStore{window.NewMemStore()}, testOptions(), nil)

	res, err := e.Run([]platform.RawItem{
		rawItem("weibo", "话题", 1, today),
	}, today)
	if err != nil {
		t.Fatalf("persist failure must not abort the run: %v", err)
	}
	if !res.Degraded {
		t.Error("result not marked degraded after persist failure")
	}
	if len(res.Items) != 1 {
		t.Errorf("ranked items = %d, want 1 despite persist failure", len(res.Items))
	}
}

func TestRunCrossPlatformEndToEnd(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	opts := testOptions()
	opts.PlatformWeights = map[string]float64{"weibo": 1.0, "zhihu": 0.5}
	opts.PlatformPriority = map[string]int{"weibo": 10}

	e := NewEngine(window.NewMemStore(), opts, nil)
	res, err := e.Run([]platform.RawItem{
		rawItem("weibo", "GPT-5 正式发布", 1, today),
		rawItem("zhihu", "GPT 5 正式发布!", 3, today),
		rawItem("weibo", "另一条新闻", 20, today),
	}, today)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if res.ClusterCount != 2 {
		t.Fatalf("clusters = %d, want 2", res.ClusterCount)
	}
	top := res.Items[0]
	if top.Cluster.Title != "GPT-5 正式发布" {
		t.Errorf("top title = %q, want weibo representative", top.Cluster.Title)
	}
	if len(top.Cluster.Platforms) != 2 {
		t.Errorf("top platforms = %v, want 2", top.Cluster.Platforms)
	}
	if top.Position != 1 || res.Items[1].Position != 2 {
		t.Errorf("positions = %d,%d, want 1,2", top.Position, res.Items[1].Position)
	}
}
