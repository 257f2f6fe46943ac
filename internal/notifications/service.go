package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"steward/internal/config"
)

const userAgent = "Steward-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyOrganizeCompleted(ctx context.Context, directory, stats string) error
	NotifyFileOrganized(ctx context.Context, filename, destination string) error
	NotifyNamingViolation(ctx context.Context, filename, reason string) error
	NotifyFileHeld(ctx context.Context, filename, reason string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		organization: cfg.Notifications.Organization,
		violations:   cfg.Notifications.Violations,
		errors:       cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	organization bool
	violations   bool
	errors       bool
}

func (n *ntfyService) NotifyOrganizeCompleted(ctx context.Context, directory, stats string) error {
	if !n.organization {
		return nil
	}
	data := payload{
		title:   "Steward - Organize Complete",
		message: fmt.Sprintf("Organized %s: %s", strings.TrimSpace(directory), strings.TrimSpace(stats)),
		tags:    []string{"steward", "organize", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileOrganized(ctx context.Context, filename, destination string) error {
	if !n.organization {
		return nil
	}
	data := payload{
		title:   "Steward - File Organized",
		message: fmt.Sprintf("Filed %s into %s", strings.TrimSpace(filename), strings.TrimSpace(destination)),
		tags:    []string{"steward", "file", "organized"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyNamingViolation(ctx context.Context, filename, reason string) error {
	if !n.violations {
		return nil
	}
	data := payload{
		title:   "Steward - Naming Violation",
		message: fmt.Sprintf("Non-compliant name: %s\n%s", strings.TrimSpace(filename), strings.TrimSpace(reason)),
		tags:    []string{"steward", "naming", "violation"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileHeld(ctx context.Context, filename, reason string) error {
	if !n.violations {
		return nil
	}
	data := payload{
		title:   "Steward - File Held",
		message: fmt.Sprintf("Held for review: %s\n%s", strings.TrimSpace(filename), strings.TrimSpace(reason)),
		tags:    []string{"steward", "holding", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Steward - Error",
		message:  builder.String(),
		tags:     []string{"steward", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Steward - Test",
		message:  "Notification system test",
		tags:     []string{"steward", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyOrganizeCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyFileOrganized(context.Context, string, string) error     { return nil }
func (noopService) NotifyNamingViolation(context.Context, string, string) error   { return nil }
func (noopService) NotifyFileHeld(context.Context, string, string) error          { return nil }
func (noopService) NotifyError(context.Context, error, string) error              { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
