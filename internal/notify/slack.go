// Package notify posts sync-run summaries to a Slack incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patchwatch/repoboard/internal/syncer"
)

// Slack sends run reports to a Slack incoming webhook URL.
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack creates a Slack notifier. An empty webhook URL yields a notifier
// that reports itself unconfigured and sends nothing.
func NewSlack(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL, client: &http.Client{Timeout: 5 * time.Second}}
}

// IsConfigured reports whether a webhook URL is set.
func (s *Slack) IsConfigured() bool { return s.webhookURL != "" }

// SendReport posts a run summary. A run with errors gets the warning color
// so it stands out in the channel.
func (s *Slack) SendReport(ctx context.Context, report *syncer.RunReport) error {
	if !s.IsConfigured() {
		return nil
	}

	color := "#36A64F"
	title := "Repoboard sync completed"
	if report.Errors > 0 {
		color = "#FF6600"
		title = fmt.Sprintf("Repoboard sync completed with %d errors", report.Errors)
	}

	body := report.Summary()
	for _, org := range report.Organizations {
		if org.ListFailed {
			body += fmt.Sprintf("\n:warning: %s: repository listing failed", org.Organization)
			continue
		}
		if org.Errors > 0 {
			body += fmt.Sprintf("\n%s: %d repositories failed", org.Organization, org.Errors)
		}
	}

	payload := map[string]any{
		"text": title,
		"attachments": []map[string]any{{
			"color":  color,
			"title":  title,
			"text":   body,
			"footer": "repoboard",
			"ts":     report.FinishedAt.Unix(),
		}},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
