package notes

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kraitsura/segment_viewer/pkg/model"
)

func openTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	s, err := NewStore(driver, filepath.Join(t.TempDir(), "sub", "notes.db"), "analyst")
	if err != nil {
		t.Fatalf("NewStore(%s): %v", driver, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreAddAndHistory(t *testing.T) {
	for _, driver := range []string{DriverCgo, DriverPure} {
		t.Run(driver, func(t *testing.T) {
			s := openTestStore(t, driver)
			s.SetMetric("revenue")

			first, err := s.Add("country:USA", "spike starts after launch")
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if first.ID == 0 {
				t.Error("expected ID to be set")
			}
			if _, err := s.Add("country:USA", "confirmed with finance"); err != nil {
				t.Fatalf("Add: %v", err)
			}
			if _, err := s.Add("device:ios", "app release"); err != nil {
				t.Fatalf("Add: %v", err)
			}

			history, err := s.History("country:USA")
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if len(history) != 2 {
				t.Fatalf("expected 2 notes, got %d", len(history))
			}
			if history[0].Body != "confirmed with finance" {
				t.Errorf("expected newest first, got %q", history[0].Body)
			}
			if history[0].Author != "analyst" || history[0].Metric != "revenue" {
				t.Errorf("unexpected note fields: %+v", history[0])
			}
			if time.Since(history[0].CreatedAt) > time.Hour {
				t.Errorf("CreatedAt not round-tripped: %v", history[0].CreatedAt)
			}

			counts, err := s.Counts([]string{"country:USA", "device:ios", "country:UK"})
			if err != nil {
				t.Fatalf("Counts: %v", err)
			}
			if counts["country:USA"] != 2 || counts["device:ios"] != 1 {
				t.Errorf("Counts = %v", counts)
			}
			if _, ok := counts["country:UK"]; ok {
				t.Error("keys without notes should be absent")
			}
		})
	}
}

func TestAddRejectsEmptyNote(t *testing.T) {
	s := openTestStore(t, DriverCgo)
	if _, err := s.Add("country:USA", "   "); err == nil {
		t.Error("expected error for blank body")
	}
	if _, err := s.Add("", "body"); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestDeleteNote(t *testing.T) {
	db, err := OpenDB(DriverCgo, ":memory:")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	n := &model.Note{SegmentKey: "a:1", Body: "x", CreatedAt: time.Now()}
	if err := db.AddNote(n); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteNote(n.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if err := db.DeleteNote(n.ID); err == nil {
		t.Error("expected error deleting a missing note")
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDB("postgres", filepath.Join(t.TempDir(), "x.db")); err == nil {
		t.Error("expected error")
	}
	if TryOpen("postgres", "", "") != nil {
		t.Error("TryOpen should return nil on failure")
	}
}

func TestStoreDeleteLatest(t *testing.T) {
	store, err := NewStore(DriverPure, ":memory:", "analyst")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if n, err := store.DeleteLatest("a:1"); err != nil || n != nil {
		t.Fatalf("DeleteLatest on a segment without notes = %v, %v", n, err)
	}
	for _, body := range []string{"first", "second"} {
		if _, err := store.Add("a:1", body); err != nil {
			t.Fatal(err)
		}
	}

	n, err := store.DeleteLatest("a:1")
	if err != nil {
		t.Fatalf("DeleteLatest: %v", err)
	}
	if n == nil || n.Body != "second" {
		t.Fatalf("deleted %+v, want the newest note", n)
	}
	history, err := store.History("a:1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Body != "first" {
		t.Errorf("history after delete = %+v", history)
	}
}
