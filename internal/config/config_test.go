package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"weights must sum to one",
			func(c *Config) { c.Trend.RankWeight = 0.9 },
			"must sum to 1.0",
		},
		{
			"negative weight",
			func(c *Config) { c.Trend.FrequencyWeight = -0.1; c.Trend.RankWeight = 1.0 },
			"must be in [0, 1]",
		},
		{
			"zero window days",
			func(c *Config) { c.Trend.WindowDays = 0 },
			"window_days must be >= 1",
		},
		{
			"similarity threshold out of range",
			func(c *Config) { c.Trend.SimilarityThreshold = 1.5 },
			"similarity_threshold",
		},
		{
			"max rank below one",
			func(c *Config) { c.Trend.MaxRankConsidered = 0 },
			"max_rank_considered",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePlatforms(t *testing.T) {
	t.Run("duplicate ids rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Platforms = append(cfg.Platforms, PlatformConfig{ID: "weibo"})
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "duplicate platform id") {
			t.Errorf("got %v, want duplicate id error", err)
		}
	})

	t.Run("empty list rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Platforms = nil
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty platform list")
		}
	})

	t.Run("scrape needs selector", func(t *testing.T) {
		cfg := Default()
		cfg.Platforms = []PlatformConfig{{ID: "x", Kind: "scrape", URL: "https://example.com"}}
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "selector") {
			t.Errorf("got %v, want selector error", err)
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		cfg := Default()
		cfg.Platforms = []PlatformConfig{{ID: "x", Kind: "ftp"}}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown platform kind")
		}
	})
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
trend:
  rank_weight: 0.5
  frequency_weight: 0.3
  keyword_weight: 0.2
  window_days: 14
  top_n: 20
  max_rank_considered: 50
  similarity_threshold: 0.6
  max_title_length: 80
keywords:
  - word: AI
    weight: 0.5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trend.WindowDays != 14 {
		t.Errorf("window_days = %d, want 14", cfg.Trend.WindowDays)
	}
	if cfg.Trend.TopN != 20 {
		t.Errorf("top_n = %d, want 20", cfg.Trend.TopN)
	}
	// Defaults survive for sections the file does not mention.
	if len(cfg.Platforms) == 0 {
		t.Error("default platforms were lost")
	}
	if got := cfg.KeywordWeights()["AI"]; got != 0.5 {
		t.Errorf("keyword weight = %v, want 0.5", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOTRADAR_DB_PATH", "/tmp/other.db")
	t.Setenv("FEISHU_WEBHOOK_URL", "https://open.feishu.cn/hook/abc")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/tmp/other.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if !cfg.Notifiers.Feishu.Enabled || cfg.Notifiers.Feishu.WebhookURL == "" {
		t.Errorf("feishu notifier not enabled from env: %+v", cfg.Notifiers.Feishu)
	}
}

func TestParseInterval(t *testing.T) {
	if got := (ScheduleConfig{Interval: "30m"}).ParseInterval().Minutes(); got != 30 {
		t.Errorf("interval = %v minutes, want 30", got)
	}
	if got := (ScheduleConfig{Interval: "bogus"}).ParseInterval().Hours(); got != 1 {
		t.Errorf("fallback interval = %v hours, want 1", got)
	}
}
