package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends notifications through the Telegram bot API.
type Telegram struct {
	client   *http.Client
	apiBase  string
	botToken string
	chatID   string
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		client:   &http.Client{Timeout: 10 * time.Second},
		apiBase:  telegramAPIBase,
		botToken: botToken,
		chatID:   chatID,
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, n *Notification) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 今日热点榜单 %s\n\n", n.Date.Format("2006-01-02"))
	for i, item := range n.Items {
		if i >= maxLines {
			fmt.Fprintf(&b, "… 共 %d 条", len(n.Items))
			break
		}
		fmt.Fprintf(&b, "%d. %s（%s · %.3f）\n",
			item.Position, item.Cluster.Title,
			strings.Join(item.Cluster.Platforms, "/"),
			item.Scores.Final)
	}

	payload := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     b.String(),
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	u := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}
	return nil
}
