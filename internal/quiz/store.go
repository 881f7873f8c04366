package quiz

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrAttemptNotFound is returned when an attempt ID is unknown.
var ErrAttemptNotFound = errors.New("attempt not found")

// Attempt is a recorded quiz submission.
type Attempt struct {
	ID          string    `json:"id"`
	Participant string    `json:"participant"`
	Document    string    `json:"document"`
	Selections  []string  `json:"selections"`
	Result      Result    `json:"result"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AttemptStore persists scored attempts.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, a Attempt) (string, error)
	GetAttempt(ctx context.Context, id string) (*Attempt, error)
	ListAttempts(ctx context.Context, limit int) ([]Attempt, error)
}

// MemoryStore is an in-memory implementation of AttemptStore.
type MemoryStore struct {
	attempts map[string]Attempt
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory attempt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string]Attempt),
	}
}

func (s *MemoryStore) SaveAttempt(_ context.Context, a Attempt) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.attempts[a.ID]; exists {
		return "", fmt.Errorf("attempt already exists: %s", a.ID)
	}
	s.attempts[a.ID] = a
	return a.ID, nil
}

func (s *MemoryStore) GetAttempt(_ context.Context, id string) (*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attempts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	return &a, nil
}

// ListAttempts returns attempts newest first. A limit <= 0 returns all.
func (s *MemoryStore) ListAttempts(_ context.Context, limit int) ([]Attempt, error) {
	s.mu.RLock()
	out := make([]Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
