package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bard/internal/config"
)

const userAgent = "Bard/0.1.0"

// Service defines the notification surface exposed to the session layer.
type Service interface {
	NotifySessionStarted(ctx context.Context, name, mode string) error
	NotifySessionEnded(ctx context.Context, name string, duration time.Duration, detections int) error
	NotifySuggestion(ctx context.Context, keyword, emotion, trackName string) error
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
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		suggestions: cfg.Notifications.Suggestions,
		sessions:    cfg.Notifications.Sessions,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	suggestions bool
	sessions    bool
	errors      bool
}

func (n *ntfyService) NotifySessionStarted(ctx context.Context, name, mode string) error {
	if !n.sessions {
		return nil
	}
	data := payload{
		title:   "Bard - Session Started",
		message: fmt.Sprintf("Session started: %s (%s mode)", strings.TrimSpace(name), mode),
		tags:    []string{"bard", "session", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionEnded(ctx context.Context, name string, duration time.Duration, detections int) error {
	if !n.sessions {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	data := payload{
		title: "Bard - Session Ended",
		message: fmt.Sprintf("Session ended: %s after %s with %d detections",
			strings.TrimSpace(name), duration, detections),
		tags: []string{"bard", "session", "ended"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySuggestion(ctx context.Context, keyword, emotion, trackName string) error {
	if !n.suggestions {
		return nil
	}
	message := fmt.Sprintf("Heard %q with %s emotion", strings.TrimSpace(keyword), emotion)
	if trackName = strings.TrimSpace(trackName); trackName != "" {
		message = fmt.Sprintf("%s\nSuggested track: %s", message, trackName)
	}
	data := payload{
		title:    "Bard - Music Suggestion",
		message:  message,
		tags:     []string{"bard", "suggestion"},
		priority: "high",
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
		title:    "Bard - Error",
		message:  builder.String(),
		tags:     []string{"bard", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Bard - Test",
		message:  "Notification system test",
		tags:     []string{"bard", "test"},
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

// NewNop returns a notifier that silently discards everything.
func NewNop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) NotifySessionStarted(context.Context, string, string) error { return nil }
func (noopService) NotifySessionEnded(context.Context, string, time.Duration, int) error {
	return nil
}
func (noopService) NotifySuggestion(context.Context, string, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error               { return nil }
func (noopService) TestNotification(context.Context) error                         { return nil }
