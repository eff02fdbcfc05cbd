package history

import (
	"path/filepath"
	"testing"
	"time"

	"testwatch/internal/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), "", logging.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndListSessions(t *testing.T) {
	store := openTestStore(t)

	start := time.Now().Add(-time.Minute)
	id, err := store.RecordStart("unit", start)
	if err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a session id")
	}

	if err := store.RecordEnd(id, time.Now(), 4, 1, false, true); err != nil {
		t.Fatalf("RecordEnd: %v", err)
	}

	sessions, err := store.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}

	s := sessions[0]
	if s.ID != id || s.Target != "unit" {
		t.Errorf("unexpected session identity: %+v", s)
	}
	if s.Cycles != 4 || s.Failures != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if !s.Success || s.Stopped {
		t.Errorf("unexpected outcome flags: %+v", s)
	}
	if s.EndedAt == nil {
		t.Errorf("ended session must carry an end time")
	}
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		if _, err := store.RecordStart("unit", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RecordStart %d: %v", i, err)
		}
	}

	sessions, err := store.ListRecent(2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("limit not honored: got %d", len(sessions))
	}
	if !sessions[0].StartedAt.After(sessions[1].StartedAt) {
		t.Errorf("sessions not newest-first: %v then %v", sessions[0].StartedAt, sessions[1].StartedAt)
	}
}

func TestListRecentEmptyStore(t *testing.T) {
	store := openTestStore(t)

	sessions, err := store.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %+v", sessions)
	}
}

func TestOpenCreatesDotDir(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, "", logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	want := filepath.Join(root, ".testwatch", "history.db")
	if store.Path() != want {
		t.Errorf("database at %s, want %s", store.Path(), want)
	}
}

func TestOpenHonorsExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.db")
	store, err := Open("/ignored", path, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if store.Path() != path {
		t.Errorf("database at %s, want %s", store.Path(), path)
	}
}
