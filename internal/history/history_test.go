package history

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	runs := []Run{
		{Op: "structure", StartedAt: base, DurationMs: 42, Created: 9, OK: true},
		{Op: "test", StartedAt: base.Add(time.Minute), DurationMs: 5, Errors: 2, OK: false},
		{Op: "structure", StartedAt: base.Add(2 * time.Minute), DurationMs: 7, Kept: 9, OK: true, DryRun: true},
	}
	for _, r := range runs {
		if err := s.Record(r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(got))
	}
	if got[0].Op != "structure" || !got[0].DryRun {
		t.Errorf("expected most recent run first, got %+v", got[0])
	}
	if !got[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("StartedAt = %v, want %v", got[0].StartedAt, base.Add(2*time.Minute))
	}
	if got[1].Op != "test" || got[1].OK || got[1].Errors != 2 {
		t.Errorf("unexpected middle run: %+v", got[1])
	}
	if got[2].Created != 9 || !got[2].OK {
		t.Errorf("unexpected oldest run: %+v", got[2])
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := Run{Op: "structure", StartedAt: base.Add(time.Duration(i) * time.Second), OK: true}
		if err := s.Record(r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
}

func TestRecentByOps(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	ops := []string{"structure", "test", "cleanup", "structure"}
	for i, op := range ops {
		r := Run{Op: op, StartedAt: base.Add(time.Duration(i) * time.Second), OK: true}
		if err := s.Record(r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.RecentByOps([]string{"structure"}, 10)
	if err != nil {
		t.Fatalf("RecentByOps: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 structure runs, got %d", len(got))
	}
	for _, r := range got {
		if r.Op != "structure" {
			t.Errorf("unexpected op %q", r.Op)
		}
	}

	// Empty filter matches nothing.
	got, err = s.RecentByOps(nil, 10)
	if err != nil {
		t.Fatalf("RecentByOps(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no runs for empty filter, got %d", len(got))
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	r := Run{Op: "backup", StartedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC), OK: true}
	if err := s.Record(r); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Op != "backup" {
		t.Fatalf("expected persisted backup run, got %+v", got)
	}
}
