package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Dingtalk sends notifications via a DingTalk group robot webhook.
type Dingtalk struct {
	client     *http.Client
	webhookURL string
}

// NewDingtalk creates a DingTalk notifier.
func NewDingtalk(webhookURL string) *Dingtalk {
	return &Dingtalk{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

func (d *Dingtalk) Name() string { return "dingtalk" }

func (d *Dingtalk) Send(ctx context.Context, n *Notification) error {
	title := fmt.Sprintf("今日热点榜单 %s", n.Date.Format("2006-01-02"))
	payload := map[string]any{
		"msgtype": "markdown",
		"markdown": map[string]any{
			"title": title,
			"text":  fmt.Sprintf("### %s\n\n%s", title, markdownLines(n)),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal dingtalk payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create dingtalk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send dingtalk webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("dingtalk webhook status %d", resp.StatusCode)
	}

	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.ErrCode != 0 {
		return fmt.Errorf("dingtalk webhook errcode %d: %s", result.ErrCode, result.ErrMsg)
	}
	return nil
}
