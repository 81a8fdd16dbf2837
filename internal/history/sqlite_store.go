// ABOUTME: SQLite-backed history store for deployments that want durable context
// ABOUTME: Same Store contract as MemoryStore, selected via HISTORY_BACKEND=sqlite
package history

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/harper/foresight/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const turnsSchema = `
CREATE TABLE IF NOT EXISTS turns (
	seq     INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	role    TEXT NOT NULL,
	content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_user ON turns(user_id, seq);
`

// SQLiteStore persists history in a local SQLite database. The mutex
// serializes writers; SQLite handles durability.
type SQLiteStore struct {
	mu    sync.Mutex
	db    *sql.DB
	depth int
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string, depth int) (*SQLiteStore, error) {
	if depth < 1 {
		depth = DefaultDepth
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := db.Exec(turnsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}

	return &SQLiteStore{db: db, depth: depth}, nil
}

// Get returns the user's turns oldest first
func (s *SQLiteStore) Get(userID string) ([]models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT role, content FROM turns WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", userID, err)
	}
	defer rows.Close()

	turns := []models.Turn{}
	for rows.Next() {
		var t models.Turn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Append stores an exchange pair and trims rows beyond the retention window
func (s *SQLiteStore) Append(userID string, userTurn, assistantTurn models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting history transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO turns (user_id, role, content) VALUES (?, ?, ?)`
	if _, err := tx.Exec(insert, userID, userTurn.Role, userTurn.Content); err != nil {
		return fmt.Errorf("inserting user turn: %w", err)
	}
	if _, err := tx.Exec(insert, userID, assistantTurn.Role, assistantTurn.Content); err != nil {
		return fmt.Errorf("inserting assistant turn: %w", err)
	}

	// Keep only the newest 2×depth rows; oldest pairs fall off first.
	trim := `DELETE FROM turns WHERE user_id = ? AND seq NOT IN (
		SELECT seq FROM turns WHERE user_id = ? ORDER BY seq DESC LIMIT ?)`
	if _, err := tx.Exec(trim, userID, userID, s.depth*2); err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}

	return tx.Commit()
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
