package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Log       LogConfig        `yaml:"log"`
	Database  DatabaseConfig   `yaml:"database"`
	Window    WindowConfig     `yaml:"window"`
	Schedule  ScheduleConfig   `yaml:"schedule"`
	Server    ServerConfig     `yaml:"server"`
	Trend     TrendConfig      `yaml:"trend"`
	Platforms []PlatformConfig `yaml:"platforms"`
	Keywords  []KeywordConfig  `yaml:"keywords"`
	Notifiers NotifiersConfig  `yaml:"notifiers"`
	Report    ReportConfig     `yaml:"report"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig configures the SQLite run archive.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WindowConfig configures the frequency window state file.
type WindowConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig configures the run interval of the daemon.
type ScheduleConfig struct {
	Interval string `yaml:"interval"`
}

// ParseInterval returns the run interval as time.Duration.
func (s ScheduleConfig) ParseInterval() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// TrendConfig configures aggregation and scoring.
type TrendConfig struct {
	RankWeight          float64  `yaml:"rank_weight"`
	FrequencyWeight     float64  `yaml:"frequency_weight"`
	KeywordWeight       float64  `yaml:"keyword_weight"`
	WindowDays          int      `yaml:"window_days"`
	TopN                int      `yaml:"top_n"`
	MaxRankConsidered   int      `yaml:"max_rank_considered"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
	MaxTitleLength      int      `yaml:"max_title_length"`
	BoilerplateTokens   []string `yaml:"boilerplate_tokens"`
}

// PlatformConfig describes one trending-list source.
type PlatformConfig struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"` // "newsnow", "rss", or "scrape"
	URL      string  `yaml:"url"`
	Selector string  `yaml:"selector"` // CSS selector, scrape kind only
	Weight   float64 `yaml:"weight"`
	Priority int     `yaml:"priority"`
	Limit    int     `yaml:"limit"`
}

// KeywordConfig is one weighted keyword for the hotness bonus.
type KeywordConfig struct {
	Word   string  `yaml:"word"`
	Weight float64 `yaml:"weight"`
}

// NotifiersConfig configures push destinations.
type NotifiersConfig struct {
	Feishu   WebhookConfig  `yaml:"feishu"`
	Dingtalk WebhookConfig  `yaml:"dingtalk"`
	Wecom    WebhookConfig  `yaml:"wecom"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// WebhookConfig is a single incoming-webhook destination.
type WebhookConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// TelegramConfig configures the Telegram bot notifier.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// ReportConfig configures HTML/text report output.
type ReportConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info"},
		Database: DatabaseConfig{Path: "./hotradar.db"},
		Window:   WindowConfig{Path: "./data/window.json"},
		Schedule: ScheduleConfig{Interval: "1h"},
		Server:   ServerConfig{Port: 8080},
		Trend: TrendConfig{
			RankWeight:          0.6,
			FrequencyWeight:     0.3,
			KeywordWeight:       0.1,
			WindowDays:          7,
			TopN:                50,
			MaxRankConsidered:   50,
			SimilarityThreshold: 0.6,
			MaxTitleLength:      80,
			BoilerplateTokens:   []string{"直播", "热议", "最新消息"},
		},
		Platforms: []PlatformConfig{
			{ID: "weibo", Name: "微博热搜", Kind: "newsnow", Weight: 1.0, Priority: 10, Limit: 50},
			{ID: "zhihu", Name: "知乎热榜", Kind: "newsnow", Weight: 0.9, Priority: 9, Limit: 50},
			{ID: "baidu", Name: "百度热搜", Kind: "newsnow", Weight: 0.8, Priority: 8, Limit: 50},
			{ID: "toutiao", Name: "今日头条", Kind: "newsnow", Weight: 0.8, Priority: 7, Limit: 50},
			{ID: "douyin", Name: "抖音热点", Kind: "newsnow", Weight: 0.7, Priority: 6, Limit: 50},
			{ID: "bilibili", Name: "B站热搜", Kind: "newsnow", Weight: 0.6, Priority: 5, Limit: 50},
		},
		Report: ReportConfig{Enabled: true, OutputDir: "./output"},
	}
}

// Load reads configuration from a YAML file, applies env var
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate rejects invalid shapes before they reach the engine.
func (c *Config) Validate() error {
	t := c.Trend
	weights := []struct {
		name  string
		value float64
	}{
		{"trend.rank_weight", t.RankWeight},
		{"trend.frequency_weight", t.FrequencyWeight},
		{"trend.keyword_weight", t.KeywordWeight},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", w.name, w.value)
		}
	}
	if sum := t.RankWeight + t.FrequencyWeight + t.KeywordWeight; math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("trend weights must sum to 1.0, got %.2f", sum)
	}
	if t.WindowDays < 1 {
		return fmt.Errorf("trend.window_days must be >= 1, got %d", t.WindowDays)
	}
	if t.MaxRankConsidered < 1 {
		return fmt.Errorf("trend.max_rank_considered must be >= 1, got %d", t.MaxRankConsidered)
	}
	if t.SimilarityThreshold <= 0 || t.SimilarityThreshold > 1 {
		return fmt.Errorf("trend.similarity_threshold must be in (0, 1], got %v", t.SimilarityThreshold)
	}

	if len(c.Platforms) == 0 {
		return fmt.Errorf("at least one platform must be configured")
	}
	seen := make(map[string]bool)
	for i, p := range c.Platforms {
		if p.ID == "" {
			return fmt.Errorf("platforms[%d].id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate platform id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Weight < 0 {
			return fmt.Errorf("platforms[%d].weight must be >= 0, got %v", i, p.Weight)
		}
		switch p.Kind {
		case "", "newsnow":
		case "rss":
			if p.URL == "" {
				return fmt.Errorf("platforms[%d]: rss platform needs a url", i)
			}
		case "scrape":
			if p.URL == "" || p.Selector == "" {
				return fmt.Errorf("platforms[%d]: scrape platform needs url and selector", i)
			}
		default:
			return fmt.Errorf("platforms[%d].kind must be \"newsnow\", \"rss\", or \"scrape\", got %q", i, p.Kind)
		}
	}

	for i, k := range c.Keywords {
		if k.Word == "" {
			return fmt.Errorf("keywords[%d].word is required", i)
		}
		if k.Weight < 0 {
			return fmt.Errorf("keywords[%d].weight must be >= 0, got %v", i, k.Weight)
		}
	}

	if c.Notifiers.Telegram.Enabled {
		tg := c.Notifiers.Telegram
		if tg.BotToken == "" || tg.ChatID == "" {
			return fmt.Errorf("notifiers.telegram needs both bot_token and chat_id")
		}
	}
	return nil
}

// PlatformWeights returns the platform_id -> score weight mapping.
func (c *Config) PlatformWeights() map[string]float64 {
	weights := make(map[string]float64, len(c.Platforms))
	for _, p := range c.Platforms {
		weights[p.ID] = p.Weight
	}
	return weights
}

// PlatformPriority returns the platform_id -> title priority mapping.
func (c *Config) PlatformPriority() map[string]int {
	prio := make(map[string]int, len(c.Platforms))
	for _, p := range c.Platforms {
		prio[p.ID] = p.Priority
	}
	return prio
}

// KeywordWeights returns the keyword -> weight mapping.
func (c *Config) KeywordWeights() map[string]float64 {
	kw := make(map[string]float64, len(c.Keywords))
	for _, k := range c.Keywords {
		kw[k.Word] = k.Weight
	}
	return kw
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOTRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("HOTRADAR_WINDOW_PATH"); v != "" {
		cfg.Window.Path = v
	}
	if v := os.Getenv("FEISHU_WEBHOOK_URL"); v != "" {
		cfg.Notifiers.Feishu.WebhookURL = v
		cfg.Notifiers.Feishu.Enabled = true
	}
	if v := os.Getenv("DINGTALK_WEBHOOK_URL"); v != "" {
		cfg.Notifiers.Dingtalk.WebhookURL = v
		cfg.Notifiers.Dingtalk.Enabled = true
	}
	if v := os.Getenv("WECOM_WEBHOOK_URL"); v != "" {
		cfg.Notifiers.Wecom.WebhookURL = v
		cfg.Notifiers.Wecom.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notifiers.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notifiers.Telegram.ChatID = v
	}
	if cfg.Notifiers.Telegram.BotToken != "" && cfg.Notifiers.Telegram.ChatID != "" {
		cfg.Notifiers.Telegram.Enabled = true
	}
}
