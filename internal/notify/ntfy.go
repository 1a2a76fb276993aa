package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/holee9/gx10-dashboard/internal/model"
)

// NtfyProvider sends alert notifications via an ntfy server.
type NtfyProvider struct {
	url    string
	topic  string
	client *http.Client
}

// NewNtfy creates a new ntfy notification provider.
func NewNtfy(url, topic string) *NtfyProvider {
	return &NtfyProvider{
		url:    strings.TrimRight(url, "/"),
		topic:  topic,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *NtfyProvider) Name() string { return "ntfy" }

func (n *NtfyProvider) Send(ctx context.Context, a model.Alert) error {
	endpoint := fmt.Sprintf("%s/%s", n.url, n.topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(a.Message))
	if err != nil {
		return fmt.Errorf("ntfy: build request: %w", err)
	}

	req.Header.Set("Title", alertTitle(a))
	req.Header.Set("Priority", severityToNtfyPriority(a.Severity))
	req.Header.Set("Tags", ntfyTags(a))

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func alertTitle(a model.Alert) string {
	return fmt.Sprintf("%s alert: %s", strings.ToUpper(string(a.Severity)), a.Category)
}

func severityToNtfyPriority(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "5"
	case model.SeverityWarning:
		return "3"
	default:
		return "3"
	}
}

func ntfyTags(a model.Alert) string {
	var tags []string
	switch a.Severity {
	case model.SeverityCritical:
		tags = append(tags, "rotating_light")
	case model.SeverityWarning:
		tags = append(tags, "warning")
	}
	tags = append(tags, string(a.Category))
	return strings.Join(tags, ",")
}
