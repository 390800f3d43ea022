package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Wecom sends notifications via a WeCom (企业微信) group robot webhook.
type Wecom struct {
	client     *http.Client
	webhookURL string
}

// NewWecom creates a WeCom notifier.
func NewWecom(webhookURL string) *Wecom {
	return &Wecom{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

func (w *Wecom) Name() string { return "wecom" }

func (w *Wecom) Send(ctx context.Context, n *Notification) error {
	payload := map[string]any{
		"msgtype": "markdown",
		"markdown": map[string]any{
			"content": fmt.Sprintf("**今日热点榜单 %s**\n%s",
				n.Date.Format("2006-01-02"), markdownLines(n)),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal wecom payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create wecom request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send wecom webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("wecom webhook status %d", resp.StatusCode)
	}

	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.ErrCode != 0 {
		return fmt.Errorf("wecom webhook errcode %d: %s", result.ErrCode, result.ErrMsg)
	}
	return nil
}
