package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Feishu sends notifications via a Feishu (Lark) incoming webhook as
// an interactive card.
type Feishu struct {
	client     *http.Client
	webhookURL string
}

// NewFeishu creates a Feishu notifier.
func NewFeishu(webhookURL string) *Feishu {
	return &Feishu{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

func (f *Feishu) Name() string { return "feishu" }

func (f *Feishu) Send(ctx context.Context, n *Notification) error {
	payload := map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"header": map[string]any{
				"title": map[string]any{
					"tag":     "plain_text",
					"content": fmt.Sprintf("🔥 今日热点榜单 %s", n.Date.Format("2006-01-02")),
				},
				"template": "red",
			},
			"elements": []map[string]any{
				{
					"tag": "markdown",
					"content": fmt.Sprintf("%s\n共 %d 个话题",
						markdownLines(n), len(n.Items)),
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal feishu payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create feishu request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("send feishu webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("feishu webhook status %d", resp.StatusCode)
	}

	// Feishu reports delivery errors in the body with HTTP 200.
	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Code != 0 {
		return fmt.Errorf("feishu webhook code %d: %s", result.Code, result.Msg)
	}
	return nil
}
