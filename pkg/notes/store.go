package notes

import (
	"log"
	"path/filepath"
	"time"

	"github.com/kraitsura/segment_viewer/pkg/model"
)

// Store records notes for one author against the current metric.
type Store struct {
	db     *DB
	author string
	metric string
}

// NewStore opens the notes database.
func NewStore(driver, dbPath, author string) (*Store, error) {
	db, err := OpenDB(driver, dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, author: author}, nil
}

// SetMetric sets the metric recorded on new notes.
func (s *Store) SetMetric(metric string) {
	s.metric = metric
}

// Add stores a note on a segment.
func (s *Store) Add(segmentKey, body string) (*model.Note, error) {
	n := &model.Note{
		SegmentKey: segmentKey,
		Metric:     s.metric,
		Author:     s.author,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	if err := s.db.AddNote(n); err != nil {
		return nil, err
	}
	return n, nil
}

// History returns notes for a segment, newest first.
func (s *Store) History(segmentKey string) ([]model.Note, error) {
	return s.db.NotesFor(segmentKey)
}

// DeleteLatest removes the newest note on a segment and returns it, or nil
// when the segment has no notes.
func (s *Store) DeleteLatest(segmentKey string) (*model.Note, error) {
	history, err := s.db.NotesFor(segmentKey)
	if err != nil || len(history) == 0 {
		return nil, err
	}
	latest := history[0]
	if err := s.db.DeleteNote(latest.ID); err != nil {
		return nil, err
	}
	return &latest, nil
}

// Counts returns note counts for the given segment keys.
func (s *Store) Counts(segmentKeys []string) (map[string]int, error) {
	return s.db.Counts(segmentKeys)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DefaultDBPath returns the default notes database path.
func DefaultDBPath() string {
	return filepath.Join(".sv", "notes.db")
}

// TryOpen opens the store, logging errors instead of failing. Notes are
// optional; the viewer works without them.
func TryOpen(driver, dbPath, author string) *Store {
	if dbPath == "" {
		dbPath = DefaultDBPath()
	}
	s, err := NewStore(driver, dbPath, author)
	if err != nil {
		log.Printf("Warning: could not open notes database: %v", err)
		return nil
	}
	return s
}
