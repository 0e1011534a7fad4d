package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/patchwatch/repoboard/internal/syncer"
)

func testReport(errors int) *syncer.RunReport {
	started := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
	return &syncer.RunReport{
		StartedAt:  started,
		FinishedAt: started.Add(8 * time.Minute),
		Organizations: []syncer.OrgReport{
			{Organization: "acme", Updated: 40, Errors: errors},
		},
		TotalRepos: 42,
		Updated:    40,
		Errors:     errors,
	}
}

func TestSendReportPostsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("payload not JSON: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL)
	if err := s.SendReport(context.Background(), testReport(2)); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	title, _ := got["text"].(string)
	if !strings.Contains(title, "2 errors") {
		t.Fatalf("title = %q, want error count", title)
	}
}

func TestSendReportFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusGone)
	}))
	defer srv.Close()

	if err := NewSlack(srv.URL).SendReport(context.Background(), testReport(0)); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestSendReportNoopWhenUnconfigured(t *testing.T) {
	s := NewSlack("")
	if s.IsConfigured() {
		t.Fatal("empty webhook should be unconfigured")
	}
	if err := s.SendReport(context.Background(), testReport(0)); err != nil {
		t.Fatalf("unconfigured SendReport should be a no-op, got %v", err)
	}
}
