package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"steward/internal/config"
	"steward/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyFileOrganized(context.Background(), "bracket.step", "CAD"); err != nil {
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
			name: "organize completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyOrganizeCompleted(context.Background(), "/shop/incoming", "5 processed, 4 categorized, 1 held, 0 renamed, 0 errors")
			},
			expectTitle:   "Steward - Organize Complete",
			expectMessage: "Organized /shop/incoming: 5 processed, 4 categorized, 1 held, 0 renamed, 0 errors",
			expectTags:    "steward,organize,completed",
		},
		{
			name: "file organized",
			notify: func(svc notifications.Service) error {
				return svc.NotifyFileOrganized(context.Background(), "bracket.step", "CAD")
			},
			expectTitle:   "Steward - File Organized",
			expectMessage: "Filed bracket.step into CAD",
			expectTags:    "steward,file,organized",
		},
		{
			name: "naming violation",
			notify: func(svc notifications.Service) error {
				return svc.NotifyNamingViolation(context.Background(), "meeting notes.pdf", "cannot determine part number and revision; manual review required")
			},
			expectTitle:   "Steward - Naming Violation",
			expectMessage: "Non-compliant name: meeting notes.pdf\ncannot determine part number and revision; manual review required",
			expectTags:    "steward,naming,violation",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("disk full"), "organize")
			},
			expectTitle:    "Steward - Error",
			expectMessage:  "Error with organize: disk full",
			expectTags:     "steward,error,alert",
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

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
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
		t.Fatalf("unexpected call for suppressed category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Organization = false
	cfg.Notifications.Violations = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyOrganizeCompleted(ctx, "/shop", "stats"); err != nil {
		t.Fatalf("suppressed organize notification errored: %v", err)
	}
	if err := svc.NotifyFileHeld(ctx, "x.bin", "unknown extension"); err != nil {
		t.Fatalf("suppressed hold notification errored: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "monitor"); err != nil {
		t.Fatalf("suppressed error notification errored: %v", err)
	}
}
