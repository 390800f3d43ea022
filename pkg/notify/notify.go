// Package notify delivers ranked run results to push destinations.
// Formatting lives entirely here; the engine only hands over data.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elonfeng/hotradar/internal/metrics"
	"github.com/elonfeng/hotradar/pkg/trend"
)

// maxLines caps the number of topics included in a push message.
const maxLines = 15

// Notification is one run's ranked output to be pushed.
type Notification struct {
	Date  time.Time
	Items []trend.RankedItem
}

// Notifier delivers a notification to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a notification manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends the notification to every destination, collecting
// per-destination failures.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			metrics.NotifyErrorsTotal.WithLabelValues(notifier.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// markdownLines renders the top topics as numbered markdown lines,
// shared by the markdown-based destinations.
func markdownLines(n *Notification) string {
	var b strings.Builder
	for i, item := range n.Items {
		if i >= maxLines {
			fmt.Fprintf(&b, "… 共 %d 条\n", len(n.Items))
			break
		}
		title := item.Cluster.Title
		if url := clusterURL(item.Cluster); url != "" {
			title = fmt.Sprintf("[%s](%s)", title, url)
		}
		fmt.Fprintf(&b, "%d. %s（%s · %.3f）\n",
			item.Position, title,
			strings.Join(item.Cluster.Platforms, "/"),
			item.Scores.Final)
	}
	return b.String()
}

func clusterURL(c trend.Cluster) string {
	for _, m := range c.Members {
		if m.URL != "" {
			return m.URL
		}
	}
	return ""
}
