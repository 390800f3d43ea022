package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/elonfeng/hotradar/internal/window"
	"github.com/elonfeng/hotradar/pkg/notify"
	"github.com/elonfeng/hotradar/pkg/platform"
	"github.com/elonfeng/hotradar/pkg/report"
	"github.com/elonfeng/hotradar/pkg/trend"
)

type stubPlatform struct {
	id    string
	items []platform.RawItem
	err   error
}

func (s *stubPlatform) ID() string { return s.id }

func (s *stubPlatform) Fetch(context.Context) ([]platform.RawItem, error) {
	return s.items, s.err
}

func newTestEngine() *trend.Engine {
	return trend.NewEngine(window.NewMemStore(), trend.Options{
		RankWeight:      0.6,
		FrequencyWeight: 0.3,
		KeywordWeight:   0.1,
		WindowDays:      7,
		MaxRank:         50,
	}, nil)
}

type captureNotifier struct {
	got *notify.Notification
}

func (c *captureNotifier) Name() string { return "capture" }

func (c *captureNotifier) Send(_ context.Context, n *notify.Notification) error {
	c.got = n
	return nil
}

func TestPipelineRunOnce(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	platforms := []platform.Platform{
		&stubPlatform{id: "weibo", items: []platform.RawItem{
			{PlatformID: "weibo", Title: "AI 芯片发布", Rank: 1, FetchedAt: now},
			{PlatformID: "weibo", Title: "本地新闻", Rank: 2, FetchedAt: now},
		}},
		&stubPlatform{id: "zhihu", err: errors.New("timeout")},
	}

	reportDir := t.TempDir()
	reports, err := report.NewWriter(reportDir)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	sink := &captureNotifier{}
	notifier := notify.NewManager([]notify.Notifier{sink})

	p := NewPipeline(platforms, newTestEngine(), nil, reports, notifier, nil)
	res, err := p.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if res.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2 (failed platform omitted)", res.ItemCount)
	}
	if res.ClusterCount != 2 {
		t.Errorf("ClusterCount = %d, want 2", res.ClusterCount)
	}
	if res.Degraded {
		t.Error("run should not be degraded with in-memory window")
	}

	htmlPath := filepath.Join(reportDir, "2026-08-30", "report.html")
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "AI 芯片发布") {
		t.Errorf("report missing topic title")
	}

	if sink.got == nil {
		t.Fatal("notifier was not invoked")
	}
	if len(sink.got.Items) != 2 {
		t.Errorf("notification items = %d, want 2", len(sink.got.Items))
	}
}

func TestPipelineRunOnceEmptySkipsNotify(t *testing.T) {
	sink := &captureNotifier{}
	p := NewPipeline(nil, newTestEngine(), nil, nil, notify.NewManager([]notify.Notifier{sink}), nil)

	res, err := p.RunOnce(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(res.Items) != 0 {
		t.Fatalf("expected empty result, got %d items", len(res.Items))
	}
	if sink.got != nil {
		t.Error("empty run must not trigger a notification")
	}
}
