package trend

import (
	"testing"
	"time"

	"github.com/elonfeng/hotradar/pkg/platform"
)

func TestCanonicalTitle(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(80, nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trim and collapse", "  AI 模型   发布\t新版本  ", "AI 模型 发布 新版本"},
		{"html entities", "Tom &amp; Jerry &lt;live&gt;", "Tom & Jerry <live>"},
		{"control chars", "breaking\x00 news\x1f now", "breaking news now"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.CanonicalTitle(tt.in); got != tt.want {
				t.Errorf("CanonicalTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalTitleTruncation(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(10, nil)
	got := n.CanonicalTitle("abcdefghijklmnop")
	want := "abcdefghi…"
	if got != want {
		t.Errorf("truncated title = %q, want %q", got, want)
	}
	if len([]rune(got)) != 10 {
		t.Errorf("truncated length = %d runes, want 10", len([]rune(got)))
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(80, []string{"直播", "热议"})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and punctuation", "OpenAI: GPT-5 Released!", "openai gpt 5 released"},
		{"fullwidth folded", "ＡＩ革命！！", "ai革命"},
		{"boilerplate removed", "某明星演唱会直播引热议", "某明星演唱会 引"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Key(tt.in); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyIdempotent(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(60, []string{"直播"})
	titles := []string{
		"OpenAI: GPT-5 Released!",
		"  多  空格   标题 ",
		"Tom &amp; Jerry",
		"某明星演唱会直播",
		"ＦＵＬＬＷＩＤＴＨ　ｔｅｘｔ",
		"",
		"!!!???",
	}
	for _, raw := range titles {
		once := n.Key(n.CanonicalTitle(raw))
		twice := n.Key(n.CanonicalTitle(once))
		if once != twice {
			t.Errorf("key not idempotent for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(80, nil)
	item := n.Normalize(platform.RawItem{
		PlatformID: "weibo",
		Title:      "",
		Rank:       1,
		FetchedAt:  time.Now(),
	})
	if item.Title != "" || item.Key != "" {
		t.Errorf("empty title should normalize to empty fields, got %+v", item)
	}
	if item.PlatformID != "weibo" || item.Rank != 1 {
		t.Errorf("normalize must preserve platform and rank, got %+v", item)
	}
}
