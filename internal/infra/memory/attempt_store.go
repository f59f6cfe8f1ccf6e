package memory

import (
	"context"
	"sort"
	"sync"

	"quizarena-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
	byQuiz   map[string][]string
	byUser   map[string][]string
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.Attempt),
		byQuiz:   make(map[string][]string),
		byUser:   make(map[string][]string),
	}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = cloneAttempt(attempt)
	s.byQuiz[attempt.QuizID] = append(s.byQuiz[attempt.QuizID], attempt.ID)
	s.byUser[attempt.UserID] = append(s.byUser[attempt.UserID], attempt.ID)
	return nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return cloneAttempt(attempt), nil
}

func (s *AttemptStore) ListByUser(_ context.Context, userID string) ([]domain.Attempt, error) {
	attempts := s.collect(s.byUserIDs(userID))
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].AttemptedAt.After(attempts[j].AttemptedAt)
	})
	return attempts, nil
}

// ListByQuiz returns every attempt of the quiz; ranking happens in the service.
func (s *AttemptStore) ListByQuiz(_ context.Context, quizID string, _ int) ([]domain.Attempt, error) {
	s.mu.RLock()
	ids := append([]string(nil), s.byQuiz[quizID]...)
	s.mu.RUnlock()
	return s.collect(ids), nil
}

func (s *AttemptStore) byUserIDs(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.byUser[userID]...)
}

func (s *AttemptStore) collect(ids []string) []domain.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempts := make([]domain.Attempt, 0, len(ids))
	for _, id := range ids {
		attempts = append(attempts, cloneAttempt(s.attempts[id]))
	}
	return attempts
}

func cloneAttempt(a domain.Attempt) domain.Attempt {
	a.Answers = append([]int(nil), a.Answers...)
	return a
}
