package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndListRuns(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.RecordRun(ctx, Run{
			StartedAt:     base.Add(time.Duration(i) * time.Hour),
			FinishedAt:    base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			Organizations: []string{"acme", "acme-labs"},
			TotalRepos:    120,
			Updated:       118 - i,
			Skipped:       1,
			Errors:        1 + i,
		})
		if err != nil {
			t.Fatalf("RecordRun %d: %v", i, err)
		}
	}

	runs, err := s.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].Errors != 3 || runs[1].Errors != 2 {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if runs[0].Organizations[1] != "acme-labs" {
		t.Fatalf("organizations not preserved: %v", runs[0].Organizations)
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("startedAt = %v", runs[0].StartedAt)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s2.Close()
	if err := s2.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
