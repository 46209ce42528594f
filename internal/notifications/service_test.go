package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bard/internal/config"
	"bard/internal/notifications"
	"bard/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifySessionStarted(context.Background(), "Friday game", "autonomous"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "session started",
			notify: func(svc notifications.Service) error {
				return svc.NotifySessionStarted(context.Background(), "Friday game", "autonomous")
			},
			expectTitle:   "Bard - Session Started",
			expectMessage: "Session started: Friday game (autonomous mode)",
			expectTags:    "bard,session,started",
		},
		{
			name: "session ended",
			notify: func(svc notifications.Service) error {
				return svc.NotifySessionEnded(context.Background(), "Friday game", 90*time.Minute, 12)
			},
			expectTitle:   "Bard - Session Ended",
			expectMessage: "Session ended: Friday game after 1h30m0s with 12 detections",
			expectTags:    "bard,session,ended",
		},
		{
			name: "suggestion with track",
			notify: func(svc notifications.Service) error {
				return svc.NotifySuggestion(context.Background(), "battle", "angry", "Battle Drums")
			},
			expectTitle:    "Bard - Music Suggestion",
			expectMessage:  "Heard \"battle\" with angry emotion\nSuggested track: Battle Drums",
			expectTags:     "bard,suggestion",
			expectPriority: "high",
		},
		{
			name: "suggestion without track",
			notify: func(svc notifications.Service) error {
				return svc.NotifySuggestion(context.Background(), "treasure", "happy", "")
			},
			expectTitle:    "Bard - Music Suggestion",
			expectMessage:  "Heard \"treasure\" with happy emotion",
			expectTags:     "bard,suggestion",
			expectPriority: "high",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("device lost"), "capture")
			},
			expectTitle:    "Bard - Error",
			expectMessage:  "Error with capture: device lost",
			expectTags:     "bard,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	cfg.Notifications.Suggestions = false
	cfg.Notifications.Sessions = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(cfg)
	ctx := context.Background()
	if err := svc.NotifySessionStarted(ctx, "x", "autonomous"); err != nil {
		t.Fatalf("disabled sessions: %v", err)
	}
	if err := svc.NotifySuggestion(ctx, "battle", "angry", ""); err != nil {
		t.Fatalf("disabled suggestions: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "engine"); err != nil {
		t.Fatalf("disabled errors: %v", err)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))

	svc := notifications.NewService(cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
