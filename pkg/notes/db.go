// Package notes persists analyst annotations on segments. Notes are keyed
// by canonical segment key so they survive result reloads.
package notes

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/kraitsura/segment_viewer/pkg/model"
)

// Driver names registered by the imported sqlite packages.
const (
	DriverCgo  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// DB handles note persistence.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the notes database at dbPath using driver.
func OpenDB(driver, dbPath string) (*DB, error) {
	if driver != DriverCgo && driver != DriverPure {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases from splitting per connection.
	db.SetMaxOpenConns(1)

	ndb := &DB{db: db}
	if err := ndb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return ndb, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS segment_notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		segment_key TEXT NOT NULL,
		metric TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_segment_notes_key ON segment_notes(segment_key);
	`
	_, err := d.db.Exec(schema)
	return err
}

// AddNote inserts a note and sets its ID.
func (d *DB) AddNote(n *model.Note) error {
	if err := n.Validate(); err != nil {
		return err
	}
	result, err := d.db.Exec(`
		INSERT INTO segment_notes (segment_key, metric, author, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.SegmentKey, n.Metric, n.Author, n.Body, n.CreatedAt.UTC())
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

// NotesFor returns all notes for a segment key, newest first.
func (d *DB) NotesFor(segmentKey string) ([]model.Note, error) {
	rows, err := d.db.Query(`
		SELECT id, segment_key, metric, author, body, created_at
		FROM segment_notes
		WHERE segment_key = ?
		ORDER BY id DESC
	`, segmentKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.SegmentKey, &n.Metric, &n.Author, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Counts returns the number of notes per key for the given keys. Keys
// without notes are absent from the map.
func (d *DB) Counts(segmentKeys []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(segmentKeys) == 0 {
		return counts, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(segmentKeys)), ",")
	args := make([]any, len(segmentKeys))
	for i, k := range segmentKeys {
		args[i] = k
	}
	rows, err := d.db.Query(`
		SELECT segment_key, COUNT(*)
		FROM segment_notes
		WHERE segment_key IN (`+placeholders+`)
		GROUP BY segment_key
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// DeleteNote removes a note by ID.
func (d *DB) DeleteNote(id int64) error {
	res, err := d.db.Exec(`DELETE FROM segment_notes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("note %d not found", id)
	}
	return nil
}
