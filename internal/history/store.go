// ABOUTME: Per-user bounded conversation history behind a swappable Store interface
// ABOUTME: MemoryStore is the default backend; entries live for the process lifetime
package history

import (
	"sync"

	"github.com/harper/foresight/internal/models"
)

// DefaultDepth is the number of user/assistant exchange pairs retained per user.
const DefaultDepth = 10

// Store holds ordered conversation turns keyed by user identifier.
// Implementations must be safe for concurrent use. Note that the relay does
// not serialize concurrent requests from the same user: each Get and Append
// is atomic, but two in-flight requests for one user can interleave at the
// read → remote call → append level, and the later append wins.
type Store interface {
	// Get returns the user's turns oldest first, empty if the user has
	// no history yet.
	Get(userID string) ([]models.Turn, error)

	// Append adds one user/assistant exchange, then trims the history to
	// the most recent 2×depth turns (oldest dropped first, pairs intact).
	Append(userID string, userTurn, assistantTurn models.Turn) error
}

// MemoryStore keeps history in a mutex-guarded map. Users are created
// lazily on first append and never evicted, so memory grows with the
// number of distinct users over the process lifetime.
type MemoryStore struct {
	mu    sync.Mutex
	depth int
	turns map[string][]models.Turn
}

// NewMemoryStore creates a MemoryStore retaining depth exchange pairs per user
func NewMemoryStore(depth int) *MemoryStore {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &MemoryStore{
		depth: depth,
		turns: make(map[string][]models.Turn),
	}
}

// Get returns a copy of the user's history, oldest turn first
func (s *MemoryStore) Get(userID string) ([]models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.turns[userID]
	out := make([]models.Turn, len(stored))
	copy(out, stored)
	return out, nil
}

// Append adds an exchange pair and trims to the retention window
func (s *MemoryStore) Append(userID string, userTurn, assistantTurn models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[userID], userTurn, assistantTurn)
	if max := s.depth * 2; len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	s.turns[userID] = turns
	return nil
}
